package storage

import (
	"time"

	"id5multiplexing/domain"
)

// MaxResponseAge is the age after which a stored response is never used, whatever the server said.
const MaxResponseAge = 14 * 24 * time.Hour

// CachedResponse is what the versioned keyspace stores per cache id.
// Timestamp is the time of the fetch that produced Response, in unix milliseconds.
type CachedResponse struct {
	Response  domain.IdResponse `json:"response"`
	Timestamp int64             `json:"responseTimestamp"`
	Nb        int               `json:"nb"`
}

// ResponseTime returns Timestamp as a time.
func (c *CachedResponse) ResponseTime() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// Age is the time elapsed since the response was fetched.
func (c *CachedResponse) Age(now time.Time) time.Duration {
	return now.Sub(c.ResponseTime())
}

// IsStale reports whether the response has reached MaxResponseAge. A missing timestamp is stale.
func (c *CachedResponse) IsStale(now time.Time) bool {
	return c.Timestamp <= 0 || c.Age(now) >= MaxResponseAge
}

// IsValid reports whether the response may be served: it carries a uid and a signature and is not stale.
func (c *CachedResponse) IsValid(now time.Time) bool {
	return c != nil && c.Response.IsWellFormed() && !c.IsStale(now)
}

// IsExpired reports whether the server declared max age has passed. Without a max age the response
// is always expired.
func (c *CachedResponse) IsExpired(now time.Time) bool {
	if c == nil {
		return true
	}
	cc, ok := c.Response.CacheControl()
	if !ok || cc.MaxAgeSec <= 0 {
		return true
	}
	return c.Age(now) > time.Duration(cc.MaxAgeSec)*time.Second
}
