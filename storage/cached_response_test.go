package storage

import (
	"encoding/json"
	"testing"
	"time"

	"id5multiplexing/domain"
	"id5multiplexing/helpers"

	"github.com/stretchr/testify/assert"
)

func testResponse(maxAge int) domain.IdResponse {
	r := domain.IdResponse{
		"universal_uid": json.RawMessage(`"ID5*uid"`),
		"signature":     json.RawMessage(`"sig"`),
	}
	if maxAge > 0 {
		_ = r.Set("cache_control", domain.CacheControl{MaxAgeSec: maxAge})
	}
	return r
}

func TestCachedResponse_IsValid(t *testing.T) {
	now := helpers.TestNow()
	tests := []struct {
		name string
		c    *CachedResponse
		want bool
	}{
		{name: "nil", c: nil, want: false},
		{name: "fresh", c: &CachedResponse{Response: testResponse(0), Timestamp: now.UnixMilli()}, want: true},
		{name: "just_under_14_days", c: &CachedResponse{Response: testResponse(0), Timestamp: now.Add(-MaxResponseAge + time.Second).UnixMilli()}, want: true},
		{name: "exactly_14_days", c: &CachedResponse{Response: testResponse(0), Timestamp: now.Add(-MaxResponseAge).UnixMilli()}, want: false},
		{name: "older_than_14_days", c: &CachedResponse{Response: testResponse(0), Timestamp: now.Add(-MaxResponseAge - time.Millisecond).UnixMilli()}, want: false},
		{name: "missing_timestamp", c: &CachedResponse{Response: testResponse(0)}, want: false},
		{name: "missing_signature", c: &CachedResponse{Response: domain.IdResponse{"universal_uid": json.RawMessage(`"u"`)}, Timestamp: now.UnixMilli()}, want: false},
		{name: "missing_uid", c: &CachedResponse{Response: domain.IdResponse{"signature": json.RawMessage(`"s"`)}, Timestamp: now.UnixMilli()}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.IsValid(now))
		})
	}
}

func TestCachedResponse_IsStale_IgnoresServerTTL(t *testing.T) {
	now := helpers.TestNow()
	c := &CachedResponse{Response: testResponse(30 * 24 * 3600), Timestamp: now.Add(-15 * 24 * time.Hour).UnixMilli()}
	assert.True(t, c.IsStale(now))
	assert.False(t, c.IsExpired(now))
	assert.False(t, c.IsValid(now))
}

func TestCachedResponse_IsExpired(t *testing.T) {
	now := helpers.TestNow()
	tests := []struct {
		name string
		c    *CachedResponse
		want bool
	}{
		{name: "nil", c: nil, want: true},
		{name: "no_max_age", c: &CachedResponse{Response: testResponse(0), Timestamp: now.UnixMilli()}, want: true},
		{name: "within_max_age", c: &CachedResponse{Response: testResponse(3600), Timestamp: now.Add(-59 * time.Minute).UnixMilli()}, want: false},
		{name: "at_max_age", c: &CachedResponse{Response: testResponse(3600), Timestamp: now.Add(-time.Hour).UnixMilli()}, want: false},
		{name: "past_max_age", c: &CachedResponse{Response: testResponse(3600), Timestamp: now.Add(-time.Hour - time.Second).UnixMilli()}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.IsExpired(now))
		})
	}
}
