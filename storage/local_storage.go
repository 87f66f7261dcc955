package storage

import (
	"encoding/json"
	"time"

	"id5multiplexing/helpers"
	"id5multiplexing/interfaces"

	"github.com/benbjohnson/clock"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// LocalStorage adds expiration to a StorageApi. Every item written with an expiration has a
// companion key holding the expiry time; reading an expired item removes both keys.
//
// Backend failures are logged and behave as an absent item or a write that did not happen.
type LocalStorage struct {
	api    interfaces.StorageApi
	clock  clock.Clock
	logger log.Logger
}

// NewLocalStorage panics on nil api, clock or logger.
func NewLocalStorage(api interfaces.StorageApi, clk clock.Clock, logger log.Logger) *LocalStorage {
	return &LocalStorage{
		api:    helpers.NilPanic(api, "storage.local_storage.go: api is required"),
		clock:  helpers.NilPanic(clk, "storage.local_storage.go: clock is required"),
		logger: log.With(helpers.NilPanic(logger, "storage.local_storage.go: logger is required"), "component", "local_storage"),
	}
}

// GetItem reads key without looking at expiration.
func (s *LocalStorage) GetItem(key string) (string, bool) {
	v, err := s.api.GetItem(key)
	if err != nil {
		if !IsNotFound(err) {
			level.Warn(s.logger).Log("msg", "storage read failed", "key", key, "err", err)
		}
		return "", false
	}
	return v, true
}

// SetItem writes key without expiration.
func (s *LocalStorage) SetItem(key, value string) {
	if err := s.api.SetItem(key, value); err != nil {
		level.Warn(s.logger).Log("msg", "storage write failed", "key", key, "err", err)
	}
}

// RemoveItem removes key.
func (s *LocalStorage) RemoveItem(key string) {
	if err := s.api.RemoveItem(key); err != nil {
		level.Warn(s.logger).Log("msg", "storage remove failed", "key", key, "err", err)
	}
}

// GetItemWithExpiration returns the item unless its companion says it expired, in which case both
// keys are removed. An item without companion never expires.
func (s *LocalStorage) GetItemWithExpiration(k KeyConfig) (string, bool) {
	if exp, ok := s.GetItem(k.ExpName()); ok {
		t, err := time.Parse(time.RFC3339Nano, exp)
		if err == nil && !t.After(s.clock.Now()) {
			s.RemoveItemWithExpiration(k)
			return "", false
		}
	}
	return s.GetItem(k.Name)
}

// SetItemWithExpiration writes value and its companion, expiring after k.TTL.
func (s *LocalStorage) SetItemWithExpiration(k KeyConfig, value string) {
	s.SetItemWithTTL(k, value, k.TTL)
}

// SetItemWithTTL is SetItemWithExpiration with an explicit lifetime.
func (s *LocalStorage) SetItemWithTTL(k KeyConfig, value string, ttl time.Duration) {
	s.SetItem(k.ExpName(), s.clock.Now().Add(ttl).UTC().Format(time.RFC3339Nano))
	s.SetItem(k.Name, value)
}

// RemoveItemWithExpiration removes the item and its companion.
func (s *LocalStorage) RemoveItemWithExpiration(k KeyConfig) {
	s.RemoveItem(k.Name)
	s.RemoveItem(k.ExpName())
}

// GetObjectWithExpiration decodes a JSON item into out. A malformed item counts as absent.
func (s *LocalStorage) GetObjectWithExpiration(k KeyConfig, out any) bool {
	v, ok := s.GetItemWithExpiration(k)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(v), out); err != nil {
		level.Warn(s.logger).Log("msg", "malformed stored object", "key", k.Name, "err", err)
		return false
	}
	return true
}

// SetObjectWithExpiration stores v as JSON.
func (s *LocalStorage) SetObjectWithExpiration(k KeyConfig, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		level.Error(s.logger).Log("msg", "can't encode object for storage", "key", k.Name, "err", err)
		return
	}
	s.SetItemWithExpiration(k, string(b))
}
