package domain

import (
	"encoding/json"
	"time"
)

// UserID is what an integration receives once an identity is available.
type UserID struct {
	ID                string          `json:"uid"`
	Ext               json.RawMessage `json:"ext,omitempty"`
	Signature         string          `json:"signature,omitempty"`
	ResponseTimestamp time.Time       `json:"responseTimestamp"`
	IsFromCache       bool            `json:"isFromCache"`
}

// NotificationContext accompanies a uid notification.
type NotificationContext struct {
	Timestamp time.Time         `json:"timestamp"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// FetchCancel is delivered to followers when the leader could not fetch a fresh identity.
type FetchCancel struct {
	Reason string `json:"reason"`
}

// CascadeData is what the elected follower needs to fire a cascade pixel.
type CascadeData struct {
	PartnerID     int    `json:"partnerId"`
	UserID        string `json:"userId"`
	GdprApplies   bool   `json:"gdprApplies"`
	ConsentString string `json:"consentString,omitempty"`
	GppString     string `json:"gppString,omitempty"`
	GppSid        string `json:"gppSid,omitempty"`
}

// RefreshOptions parametrize a refreshUid call.
type RefreshOptions struct {
	ResetConsent                bool `json:"resetConsent,omitempty"`
	ForceFetch                  bool `json:"forceFetch,omitempty"`
	ForceAllowLocalStorageGrant bool `json:"forceAllowLocalStorageGrant,omitempty"`
}

// Merge coalesces two pending refresh requests into one.
func (o RefreshOptions) Merge(other RefreshOptions) RefreshOptions {
	return RefreshOptions{
		ResetConsent:                o.ResetConsent || other.ResetConsent,
		ForceFetch:                  o.ForceFetch || other.ForceFetch,
		ForceAllowLocalStorageGrant: o.ForceAllowLocalStorageGrant || other.ForceAllowLocalStorageGrant,
	}
}
