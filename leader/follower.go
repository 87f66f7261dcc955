package leader

import (
	"sync"

	"id5multiplexing/consent"
	"id5multiplexing/domain"
	"id5multiplexing/events"
	"id5multiplexing/helpers"
	"id5multiplexing/interfaces"
	"id5multiplexing/messaging"
	"id5multiplexing/storage"
)

// LocalFollower is what an integration holds: it receives identities from the leader and forwards
// the integration's requests to it.
type LocalFollower struct {
	window     *messaging.Window
	storage    interfaces.StorageApi
	dispatcher *events.Dispatcher
	leader     interfaces.Leader

	mu     sync.RWMutex
	props  domain.Properties
	userID *domain.UserID
}

// NewLocalFollower panics on nil window, storage, dispatcher or leader.
func NewLocalFollower(props domain.Properties, window *messaging.Window, storageApi interfaces.StorageApi, dispatcher *events.Dispatcher, leader interfaces.Leader) *LocalFollower {
	return &LocalFollower{
		props:      props,
		window:     helpers.NilPanic(window, "leader.follower.go: window is required"),
		storage:    helpers.NilPanic(storageApi, "leader.follower.go: storage is required"),
		dispatcher: helpers.NilPanic(dispatcher, "leader.follower.go: dispatcher is required"),
		leader:     helpers.NilPanic(leader, "leader.follower.go: leader is required"),
	}
}

func (f *LocalFollower) ID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.props.ID
}

func (f *LocalFollower) Window() *messaging.Window {
	return f.window
}

func (f *LocalFollower) Storage() interfaces.StorageApi {
	return f.storage
}

func (f *LocalFollower) Properties() domain.Properties {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.props
}

func (f *LocalFollower) FetchIdData() domain.FetchIdData {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.props.FetchIdData
}

// UpdateFetchIdData replaces the local copy of the fetch configuration. It does not tell the leader;
// use UpdateConfig for that.
func (f *LocalFollower) UpdateFetchIdData(data domain.FetchIdData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.props.FetchIdData = data
}

// UpdateConfig merges u into the follower properties and forwards new fetch data to the leader.
func (f *LocalFollower) UpdateConfig(u domain.ConfigUpdate) {
	f.mu.Lock()
	f.props = f.props.WithUpdate(u)
	id, data := f.props.ID, f.props.FetchIdData
	f.mu.Unlock()
	if u.FetchIdData != nil {
		f.leader.UpdateFetchIdData(id, data)
	}
}

// UserID returns the last identity received.
func (f *LocalFollower) UserID() (domain.UserID, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.userID == nil {
		return domain.UserID{}, false
	}
	return *f.userID, true
}

// On subscribes h to follower events.
func (f *LocalFollower) On(e events.Event, h events.Handler) {
	f.dispatcher.On(e, h)
}

func (f *LocalFollower) NotifyUidReady(uid domain.UserID, ctx domain.NotificationContext) {
	f.mu.Lock()
	f.userID = &uid
	f.mu.Unlock()
	f.dispatcher.Emit(events.UserIDReady, events.UserIDReadyEvent{UserID: uid, Context: ctx})
}

func (f *LocalFollower) NotifyFetchUidCanceled(cancel domain.FetchCancel) {
	f.dispatcher.Emit(events.UserIDFetchCanceled, cancel)
}

func (f *LocalFollower) NotifyCascadeNeeded(data domain.CascadeData) {
	f.dispatcher.Emit(events.CascadeNeeded, data)
}

// RefreshUid asks the leader for a refresh cycle.
func (f *LocalFollower) RefreshUid(opts domain.RefreshOptions) {
	f.leader.RefreshUid(opts, f.ID())
}

// UpdateConsent hands consent data found by the integration to the leader.
func (f *LocalFollower) UpdateConsent(data consent.Data) {
	f.leader.UpdateConsent(data, f.ID())
}

var _ interfaces.Follower = (*DirectFollower)(nil)

// DirectFollower is the leader's view of a follower living in the leader's window.
type DirectFollower struct {
	local *LocalFollower
}

func NewDirectFollower(local *LocalFollower) *DirectFollower {
	return &DirectFollower{local: helpers.NilPanic(local, "leader.follower.go: local follower is required")}
}

func (d *DirectFollower) ID() string                                { return d.local.ID() }
func (d *DirectFollower) Window() *messaging.Window                 { return d.local.Window() }
func (d *DirectFollower) FetchIdData() domain.FetchIdData           { return d.local.FetchIdData() }
func (d *DirectFollower) UpdateFetchIdData(data domain.FetchIdData) { d.local.UpdateFetchIdData(data) }
func (d *DirectFollower) CacheID() string                           { return storage.CacheIDFor(d.FetchIdData()) }
func (d *DirectFollower) CanDoCascade() bool                        { return d.FetchIdData().CanDoCascade() }
func (d *DirectFollower) Storage() interfaces.StorageApi            { return d.local.Storage() }

func (d *DirectFollower) NotifyUidReady(uid domain.UserID, ctx domain.NotificationContext) {
	d.local.NotifyUidReady(uid, ctx)
}

func (d *DirectFollower) NotifyFetchUidCanceled(cancel domain.FetchCancel) {
	d.local.NotifyFetchUidCanceled(cancel)
}

func (d *DirectFollower) NotifyCascadeNeeded(data domain.CascadeData) {
	d.local.NotifyCascadeNeeded(data)
}
