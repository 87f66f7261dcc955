package storage

import "time"

const day = 24 * time.Hour

// KeyConfig is a storage key and the lifetime of what is written under it.
type KeyConfig struct {
	Name string
	TTL  time.Duration
}

// WithSuffix returns the key config for name_suffix.
func (k KeyConfig) WithSuffix(suffix string) KeyConfig {
	return KeyConfig{Name: k.Name + "_" + suffix, TTL: k.TTL}
}

// ExpName is the key of the expiration companion.
func (k KeyConfig) ExpName() string {
	return k.Name + "_exp"
}

// Config lists every key the SDK writes.
type Config struct {
	// ID5 is the legacy page wide response.
	ID5 KeyConfig
	// Last is the timestamp of the last fresh fetch, legacy keyspace.
	Last KeyConfig
	// ConsentData is the hash of the consent data the stored response was fetched with.
	ConsentData KeyConfig
	// Pd is suffixed with the partner id and holds the partner data hash.
	Pd KeyConfig
	// Segments is suffixed with the partner id and holds the segments hash.
	Segments KeyConfig
	// Privacy holds the privacy data of the last response.
	Privacy KeyConfig
	// Extensions holds the cached extensions payload. Its TTL is the default, responses may override it.
	Extensions KeyConfig
	// Response is suffixed with the cache id and holds a CachedResponse.
	Response KeyConfig
	// LegacyNb is suffixed with the partner id and nb, holds the legacy page view counter.
	LegacyNb KeyConfig
}

// DefaultConfig returns the keys used in production.
func DefaultConfig() Config {
	return Config{
		ID5:         KeyConfig{Name: "id5id", TTL: 90 * day},
		Last:        KeyConfig{Name: "id5id_last", TTL: 90 * day},
		ConsentData: KeyConfig{Name: "id5id_cached_consent_data", TTL: 30 * day},
		Pd:          KeyConfig{Name: "id5id_cached_pd", TTL: 30 * day},
		Segments:    KeyConfig{Name: "id5id_cached_segments", TTL: 30 * day},
		Privacy:     KeyConfig{Name: "id5id_privacy", TTL: 30 * day},
		Extensions:  KeyConfig{Name: "id5id_extensions", TTL: 8 * time.Hour},
		Response:    KeyConfig{Name: "id5id_v2", TTL: 15 * day},
		LegacyNb:    KeyConfig{Name: "id5id", TTL: 90 * day},
	}
}
