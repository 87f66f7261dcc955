package consent

import (
	"context"
	"sync"

	"id5multiplexing/domain"
	"id5multiplexing/helpers"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// PrivacyReader returns the privacy data stored by a previous response, ignoring consent.
// Implemented by storage.Store.
type PrivacyReader interface {
	StoredPrivacy() (domain.PrivacyData, bool)
}

// Management holds the consent data of the page. Until SetConsentData is called, ConsentData blocks
// and LocalStorageGrant falls back to the provisional grant built from stored privacy data.
type Management struct {
	data    *helpers.LazyValue[Data]
	privacy PrivacyReader
	logger  log.Logger

	mu         sync.RWMutex
	forceAllow bool
}

// NewManagement panics on nil privacy or logger. forceAllow grants storage access regardless of consent.
func NewManagement(privacy PrivacyReader, forceAllow bool, logger log.Logger) *Management {
	return &Management{
		data:       helpers.NewLazyValue[Data](),
		privacy:    helpers.NilPanic(privacy, "consent.management.go: privacy is required"),
		logger:     log.With(helpers.NilPanic(logger, "consent.management.go: logger is required"), "component", "consent_management"),
		forceAllow: forceAllow,
	}
}

// SetConsentData replaces the consent data and releases waiters.
func (m *Management) SetConsentData(d Data) {
	level.Debug(m.logger).Log("msg", "consent data set", "source", d.Source, "apis", len(d.APIs))
	m.data.Set(d)
}

// ResetConsentData forgets the consent data. Later ConsentData calls block until the next SetConsentData.
func (m *Management) ResetConsentData(forceAllow bool) {
	m.mu.Lock()
	m.forceAllow = forceAllow
	m.mu.Unlock()
	m.data.Reset()
}

// ConsentData waits until consent data is available.
func (m *Management) ConsentData(ctx context.Context) (Data, error) {
	return m.data.Await(ctx)
}

// HasConsentData reports whether consent data is available.
func (m *Management) HasConsentData() bool {
	return m.data.HasValue()
}

// LocalStorageGrant returns the current storage access decision.
func (m *Management) LocalStorageGrant() LocalStorageGrant {
	m.mu.RLock()
	force := m.forceAllow
	m.mu.RUnlock()
	if force {
		return LocalStorageGrant{Allowed: true, GrantType: GrantForceAllowedByConfig}
	}
	if d, ok := m.data.Peek(); ok {
		return d.LocalStorageGrant()
	}
	return ProvisionalGrant(m.privacy.StoredPrivacy())
}
