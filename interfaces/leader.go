package interfaces

import (
	"id5multiplexing/consent"
	"id5multiplexing/domain"
	"id5multiplexing/messaging"
)

// Follower is the leader's view of one registered integration. The leader calls it to deliver
// identities, cancellations and cascade requests, and reads its fetch configuration.
//
// Implemented by leader.DirectFollower (same window, plain method calls) and leader.ProxyFollower
// (another window, remote method calls through messaging).
//
//go:generate moq -stub -out mock/follower.go -pkg mock . Follower
type Follower interface {
	// ID returns the instance id of the integration.
	ID() string
	// Window returns the window the integration runs in.
	Window() *messaging.Window
	// FetchIdData returns the latest fetch configuration known to the leader.
	FetchIdData() domain.FetchIdData
	// UpdateFetchIdData replaces the fetch configuration known to the leader.
	UpdateFetchIdData(data domain.FetchIdData)
	// CacheID identifies the cache entry this follower reads and writes.
	CacheID() string
	// CanDoCascade reports whether the follower may fire a cascade pixel.
	CanDoCascade() bool
	// NotifyUidReady delivers an identity.
	NotifyUidReady(uid domain.UserID, ctx domain.NotificationContext)
	// NotifyFetchUidCanceled reports a failed fetch.
	NotifyFetchUidCanceled(cancel domain.FetchCancel)
	// NotifyCascadeNeeded asks the follower to fire a cascade pixel.
	NotifyCascadeNeeded(data domain.CascadeData)
	// Storage returns the storage of the follower's window, used for replication.
	Storage() StorageApi
}

// AddFollowerResult is what Leader.AddFollower reports.
// Added is false for an already registered follower. Unique is false when another follower shares its cache id.
type AddFollowerResult struct {
	Added  bool
	Unique bool
}

// Leader owns the page's fetch/cache lifecycle.
//
// Implemented by leader.ActualLeader, leader.ProxyLeader (remote method calls) and leader.AwaitedLeader
// (buffers calls until election completes).
//
//go:generate moq -stub -out mock/leader.go -pkg mock . Leader
type Leader interface {
	// RefreshUid asks for a refresh cycle. Calls made while a fetch is in flight coalesce into one follow-up.
	RefreshUid(opts domain.RefreshOptions, requester string)
	// UpdateConsent replaces the consent data used by the leader.
	UpdateConsent(data consent.Data, requester string)
	// UpdateFetchIdData replaces the fetch configuration of one follower.
	UpdateFetchIdData(instanceID string, data domain.FetchIdData)
	// AddFollower registers a follower and serves it from cache when possible.
	AddFollower(f Follower) AddFollowerResult
	// Properties returns the leader instance properties.
	Properties() domain.Properties
}
