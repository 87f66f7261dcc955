package storage

import (
	"encoding/json"
	"strconv"
	"time"

	"id5multiplexing/consent"
	"id5multiplexing/domain"
	"id5multiplexing/helpers"

	"github.com/benbjohnson/clock"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var _ consent.PrivacyReader = (*Store)(nil)

// CacheEntry names one cached response and the fetch configuration it belongs to.
type CacheEntry struct {
	CacheID     string
	FetchIdData domain.FetchIdData
}

// StoredDataState summarizes what storage holds for a set of cache entries at one point in time.
// Responses and Nb are keyed by cache id; absent responses are not in the map.
type StoredDataState struct {
	Responses           map[string]*CachedResponse
	Nb                  map[string]int
	PdHasChanged        bool
	SegmentsHaveChanged bool
	ConsentHasChanged   bool
}

// Store is the SDK's view of storage: responses, change detection hashes, page view counters and
// privacy data. Every read requires an allowing grant, every write a definitive allow. Privacy data
// is exempt: it is what provisional grants are built from.
//
// Responses are read from the versioned keyspace only and written to both keyspaces.
type Store struct {
	local  *LocalStorage
	cfg    Config
	clock  clock.Clock
	logger log.Logger
}

// NewStore panics on nil local, clock or logger.
func NewStore(local *LocalStorage, cfg Config, clk clock.Clock, logger log.Logger) *Store {
	return &Store{
		local:  helpers.NilPanic(local, "storage.store.go: local is required"),
		cfg:    cfg,
		clock:  helpers.NilPanic(clk, "storage.store.go: clock is required"),
		logger: log.With(helpers.NilPanic(logger, "storage.store.go: logger is required"), "component", "store"),
	}
}

// StoredPrivacy returns the privacy data of the last response regardless of consent.
func (s *Store) StoredPrivacy() (domain.PrivacyData, bool) {
	var p domain.PrivacyData
	ok := s.local.GetObjectWithExpiration(s.cfg.Privacy, &p)
	return p, ok
}

// StorePrivacy records the privacy data of a response regardless of consent.
func (s *Store) StorePrivacy(p domain.PrivacyData) {
	s.local.SetObjectWithExpiration(s.cfg.Privacy, p)
}

// CachedResponse returns the stored response for cacheID, nil when absent or not allowed.
func (s *Store) CachedResponse(g consent.LocalStorageGrant, cacheID string) *CachedResponse {
	if !g.Allowed {
		return nil
	}
	var c CachedResponse
	if !s.local.GetObjectWithExpiration(s.cfg.Response.WithSuffix(cacheID), &c) {
		return nil
	}
	return &c
}

// StoreResponse writes a fresh response for cacheID. nbSent is the page view count the fetch
// reported; views counted while the fetch was in flight are kept. Returns false when not allowed.
func (s *Store) StoreResponse(g consent.LocalStorageGrant, cacheID string, partnerID int, resp domain.IdResponse, nbSent int) bool {
	if !g.IsDefinitivelyAllowed() {
		level.Debug(s.logger).Log("msg", "response not stored", "cacheId", cacheID, "grantType", g.GrantType)
		return false
	}
	now := s.clock.Now()
	nb := 0
	if prev := s.CachedResponse(g, cacheID); prev != nil {
		nb = max(prev.Nb-nbSent, 0)
	}
	s.local.SetObjectWithExpiration(s.cfg.Response.WithSuffix(cacheID), CachedResponse{
		Response:  resp,
		Timestamp: now.UnixMilli(),
		Nb:        nb,
	})

	b, err := json.Marshal(resp)
	if err == nil {
		s.local.SetItemWithExpiration(s.cfg.ID5, string(b))
	}
	s.local.SetItemWithExpiration(s.cfg.Last, now.UTC().Format(time.RFC1123))
	s.local.SetItemWithExpiration(s.legacyNbKey(partnerID), strconv.Itoa(nb))
	return true
}

// IncNb counts one page view served from cache. Returns the new count and whether it was written.
func (s *Store) IncNb(g consent.LocalStorageGrant, cacheID string) (int, bool) {
	return s.addNb(g, cacheID, 1)
}

// DecNb takes back n page views counted by IncNb.
func (s *Store) DecNb(g consent.LocalStorageGrant, cacheID string, n int) {
	s.addNb(g, cacheID, -n)
}

func (s *Store) addNb(g consent.LocalStorageGrant, cacheID string, delta int) (int, bool) {
	if !g.IsDefinitivelyAllowed() {
		return 0, false
	}
	c := s.CachedResponse(g, cacheID)
	if c == nil {
		return 0, false
	}
	c.Nb = max(c.Nb+delta, 0)
	s.local.SetObjectWithExpiration(s.cfg.Response.WithSuffix(cacheID), c)
	return c.Nb, true
}

// StoreRequestData records the hashes used to detect partner data, segments and consent changes.
func (s *Store) StoreRequestData(g consent.LocalStorageGrant, consentData *consent.Data, data []domain.FetchIdData) bool {
	if !g.IsDefinitivelyAllowed() {
		return false
	}
	if consentData != nil {
		s.local.SetItemWithExpiration(s.cfg.ConsentData, consentData.Hash())
	}
	for _, d := range data {
		pid := strconv.Itoa(d.PartnerID)
		s.local.SetItemWithExpiration(s.cfg.Pd.WithSuffix(pid), pdHash(d))
		s.local.SetItemWithExpiration(s.cfg.Segments.WithSuffix(pid), segmentsHash(d))
	}
	return true
}

// StoredDataState reads everything needed to decide whether entries need a fresh fetch.
func (s *Store) StoredDataState(g consent.LocalStorageGrant, consentData *consent.Data, entries []CacheEntry) StoredDataState {
	st := StoredDataState{
		Responses: make(map[string]*CachedResponse, len(entries)),
		Nb:        make(map[string]int, len(entries)),
	}
	if !g.Allowed {
		return st
	}
	for _, e := range entries {
		if c := s.CachedResponse(g, e.CacheID); c != nil {
			st.Responses[e.CacheID] = c
			st.Nb[e.CacheID] = c.Nb
		}
		pid := strconv.Itoa(e.FetchIdData.PartnerID)
		if s.hashChanged(s.cfg.Pd.WithSuffix(pid), pdHash(e.FetchIdData)) {
			st.PdHasChanged = true
		}
		if s.hashChanged(s.cfg.Segments.WithSuffix(pid), segmentsHash(e.FetchIdData)) {
			st.SegmentsHaveChanged = true
		}
	}
	if consentData != nil {
		stored, ok := s.local.GetItemWithExpiration(s.cfg.ConsentData)
		st.ConsentHasChanged = !ok || stored != consentData.Hash()
	}
	return st
}

// ClearAll removes everything but privacy data for the given partners and cache ids. A provisional
// grant is not enough to clear.
func (s *Store) ClearAll(g consent.LocalStorageGrant, partnerIDs []int, cacheIDs []string) bool {
	if g.GrantType == consent.GrantProvisional {
		return false
	}
	level.Info(s.logger).Log("msg", "clearing stored identity data", "grantType", g.GrantType)
	s.local.RemoveItemWithExpiration(s.cfg.ID5)
	s.local.RemoveItemWithExpiration(s.cfg.Last)
	s.local.RemoveItemWithExpiration(s.cfg.ConsentData)
	s.local.RemoveItemWithExpiration(s.cfg.Extensions)
	for _, id := range partnerIDs {
		pid := strconv.Itoa(id)
		s.local.RemoveItemWithExpiration(s.cfg.Pd.WithSuffix(pid))
		s.local.RemoveItemWithExpiration(s.cfg.Segments.WithSuffix(pid))
		s.local.RemoveItemWithExpiration(s.legacyNbKey(id))
	}
	for _, id := range cacheIDs {
		s.local.RemoveItemWithExpiration(s.cfg.Response.WithSuffix(id))
	}
	return true
}

// CachedExtensions returns the stored extensions payload.
func (s *Store) CachedExtensions(g consent.LocalStorageGrant) (map[string]any, bool) {
	if !g.Allowed {
		return nil, false
	}
	var ext map[string]any
	ok := s.local.GetObjectWithExpiration(s.cfg.Extensions, &ext)
	return ext, ok
}

// StoreExtensions caches an extensions payload for ttl, or the configured default when ttl is zero.
func (s *Store) StoreExtensions(g consent.LocalStorageGrant, ext map[string]any, ttl time.Duration) bool {
	if !g.IsDefinitivelyAllowed() {
		return false
	}
	if ttl <= 0 {
		ttl = s.cfg.Extensions.TTL
	}
	b, err := json.Marshal(ext)
	if err != nil {
		return false
	}
	s.local.SetItemWithTTL(s.cfg.Extensions, string(b), ttl)
	return true
}

func (s *Store) hashChanged(k KeyConfig, current string) bool {
	stored, ok := s.local.GetItemWithExpiration(k)
	if !ok {
		return current != ""
	}
	return stored != current
}

func (s *Store) legacyNbKey(partnerID int) KeyConfig {
	return s.cfg.LegacyNb.WithSuffix(strconv.Itoa(partnerID) + "_nb")
}

func pdHash(d domain.FetchIdData) string {
	if d.Pd == "" {
		return ""
	}
	return consent.HashBytes([]byte(d.Pd))
}

func segmentsHash(d domain.FetchIdData) string {
	if len(d.Segments) == 0 {
		return ""
	}
	b, err := json.Marshal(d.Segments)
	if err != nil {
		return ""
	}
	return consent.HashBytes(b)
}
