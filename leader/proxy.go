package leader

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"id5multiplexing/consent"
	"id5multiplexing/domain"
	"id5multiplexing/helpers"
	"id5multiplexing/interfaces"
	"id5multiplexing/messaging"
	"id5multiplexing/storage"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Remote method names.
const (
	MethodRefreshUid             = "refreshUid"
	MethodUpdateConsent          = "updateConsent"
	MethodUpdateFetchIdData      = "updateFetchIdData"
	MethodAddFollower            = "addFollower"
	MethodNotifyUidReady         = "notifyUidReady"
	MethodNotifyFetchUidCanceled = "notifyFetchUidCanceled"
	MethodNotifyCascadeNeeded    = "notifyCascadeNeeded"
	MethodSetItem                = "setItem"
	MethodRemoveItem             = "removeItem"
)

var (
	// ErrUnknownMethod is returned by receivers for a method they do not implement.
	ErrUnknownMethod = errors.New("unknown remote method")
	// ErrRemoteRead is returned by ProxyStorage.GetItem: remote calls carry no return value.
	ErrRemoteRead = errors.New("remote storage can't be read")
)

// ProxyCaller sends remote method calls. Implemented by messaging.Messenger.
type ProxyCaller interface {
	CallProxyMethod(dst string, target messaging.ProxyMethodCallTarget, method string, args ...any) error
}

var _ interfaces.Follower = (*ProxyFollower)(nil)

// ProxyFollower is the leader's view of a follower in another window. Notifications become remote
// method calls; the fetch configuration is the copy last reported by the follower.
type ProxyFollower struct {
	id     string
	window *messaging.Window
	caller ProxyCaller
	logger log.Logger

	mu   sync.RWMutex
	data domain.FetchIdData
}

// NewProxyFollower panics on empty id or nil window, caller or logger.
func NewProxyFollower(props domain.Properties, window *messaging.Window, caller ProxyCaller, logger log.Logger) *ProxyFollower {
	return &ProxyFollower{
		id:     helpers.StrPanic(props.ID, "leader.proxy.go: follower id is required"),
		window: helpers.NilPanic(window, "leader.proxy.go: window is required"),
		caller: helpers.NilPanic(caller, "leader.proxy.go: caller is required"),
		logger: log.With(helpers.NilPanic(logger, "leader.proxy.go: logger is required"), "component", "proxy_follower", "followerId", props.ID),
		data:   props.FetchIdData,
	}
}

func (p *ProxyFollower) ID() string                { return p.id }
func (p *ProxyFollower) Window() *messaging.Window { return p.window }
func (p *ProxyFollower) CacheID() string           { return storage.CacheIDFor(p.FetchIdData()) }
func (p *ProxyFollower) CanDoCascade() bool        { return p.FetchIdData().CanDoCascade() }

func (p *ProxyFollower) FetchIdData() domain.FetchIdData {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data
}

func (p *ProxyFollower) UpdateFetchIdData(data domain.FetchIdData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = data
}

func (p *ProxyFollower) NotifyUidReady(uid domain.UserID, ctx domain.NotificationContext) {
	p.call(MethodNotifyUidReady, uid, ctx)
}

func (p *ProxyFollower) NotifyFetchUidCanceled(cancel domain.FetchCancel) {
	p.call(MethodNotifyFetchUidCanceled, cancel)
}

func (p *ProxyFollower) NotifyCascadeNeeded(data domain.CascadeData) {
	p.call(MethodNotifyCascadeNeeded, data)
}

func (p *ProxyFollower) Storage() interfaces.StorageApi {
	return NewProxyStorage(p.id, p.caller)
}

func (p *ProxyFollower) call(method string, args ...any) {
	if err := p.caller.CallProxyMethod(p.id, messaging.TargetFollower, method, args...); err != nil {
		level.Warn(p.logger).Log("msg", "remote follower call failed", "method", method, "err", err)
	}
}

var _ interfaces.StorageApi = (*ProxyStorage)(nil)

// ProxyStorage writes to the storage of another window. It is write only.
type ProxyStorage struct {
	dst    string
	caller ProxyCaller
}

func NewProxyStorage(dst string, caller ProxyCaller) *ProxyStorage {
	return &ProxyStorage{dst: dst, caller: caller}
}

func (s *ProxyStorage) GetItem(key string) (string, error) {
	return "", ErrRemoteRead
}

func (s *ProxyStorage) SetItem(key string, value string) error {
	return s.caller.CallProxyMethod(s.dst, messaging.TargetStorage, MethodSetItem, key, value)
}

func (s *ProxyStorage) RemoveItem(key string) error {
	return s.caller.CallProxyMethod(s.dst, messaging.TargetStorage, MethodRemoveItem, key)
}

var _ interfaces.Leader = (*ProxyLeader)(nil)

// ProxyLeader is a follower's view of a leader in another window. Calls are fire-and-forget.
type ProxyLeader struct {
	props  domain.Properties
	caller ProxyCaller
	logger log.Logger
}

// NewProxyLeader panics on empty leader id or nil caller or logger.
func NewProxyLeader(props domain.Properties, caller ProxyCaller, logger log.Logger) *ProxyLeader {
	return &ProxyLeader{
		props:  props,
		caller: helpers.NilPanic(caller, "leader.proxy.go: caller is required"),
		logger: log.With(helpers.NilPanic(logger, "leader.proxy.go: logger is required"), "component", "proxy_leader", "leaderId", helpers.StrPanic(props.ID, "leader.proxy.go: leader id is required")),
	}
}

func (p *ProxyLeader) RefreshUid(opts domain.RefreshOptions, requester string) {
	p.call(MethodRefreshUid, opts, requester)
}

func (p *ProxyLeader) UpdateConsent(data consent.Data, requester string) {
	p.call(MethodUpdateConsent, data, requester)
}

func (p *ProxyLeader) UpdateFetchIdData(instanceID string, data domain.FetchIdData) {
	p.call(MethodUpdateFetchIdData, instanceID, data)
}

// AddFollower asks the leader to add f. The outcome is not known to the caller, the result is optimistic.
func (p *ProxyLeader) AddFollower(f interfaces.Follower) interfaces.AddFollowerResult {
	p.call(MethodAddFollower, f.ID())
	return interfaces.AddFollowerResult{Added: true, Unique: true}
}

func (p *ProxyLeader) Properties() domain.Properties {
	return p.props
}

func (p *ProxyLeader) call(method string, args ...any) {
	if err := p.caller.CallProxyMethod(p.props.ID, messaging.TargetLeader, method, args...); err != nil {
		level.Warn(p.logger).Log("msg", "remote leader call failed", "method", method, "err", err)
	}
}

// LeaderCallReceiver executes remote calls addressed to a leader. resolve turns a follower id into
// the leader side view of that follower; it returns false for unknown ids.
type LeaderCallReceiver struct {
	leader  interfaces.Leader
	resolve func(id string) (interfaces.Follower, bool)
}

func NewLeaderCallReceiver(leader interfaces.Leader, resolve func(id string) (interfaces.Follower, bool)) *LeaderCallReceiver {
	return &LeaderCallReceiver{
		leader:  helpers.NilPanic(leader, "leader.proxy.go: leader is required"),
		resolve: helpers.NilPanic(resolve, "leader.proxy.go: resolve is required"),
	}
}

func (r *LeaderCallReceiver) HandleProxyMethodCall(method string, args []json.RawMessage) error {
	switch method {
	case MethodRefreshUid:
		var opts domain.RefreshOptions
		var requester string
		if err := messaging.DecodeArgs(args, &opts, &requester); err != nil {
			return err
		}
		r.leader.RefreshUid(opts, requester)
	case MethodUpdateConsent:
		var data consent.Data
		var requester string
		if err := messaging.DecodeArgs(args, &data, &requester); err != nil {
			return err
		}
		r.leader.UpdateConsent(data, requester)
	case MethodUpdateFetchIdData:
		var id string
		var data domain.FetchIdData
		if err := messaging.DecodeArgs(args, &id, &data); err != nil {
			return err
		}
		r.leader.UpdateFetchIdData(id, data)
	case MethodAddFollower:
		var id string
		if err := messaging.DecodeArgs(args, &id); err != nil {
			return err
		}
		f, ok := r.resolve(id)
		if !ok {
			return fmt.Errorf("add follower %q: instance not discovered", id)
		}
		r.leader.AddFollower(f)
	default:
		return fmt.Errorf("%w: leader.%s", ErrUnknownMethod, method)
	}
	return nil
}

// FollowerCallReceiver executes remote calls addressed to a follower.
type FollowerCallReceiver struct {
	follower interfaces.Follower
}

func NewFollowerCallReceiver(f interfaces.Follower) *FollowerCallReceiver {
	return &FollowerCallReceiver{follower: helpers.NilPanic(f, "leader.proxy.go: follower is required")}
}

func (r *FollowerCallReceiver) HandleProxyMethodCall(method string, args []json.RawMessage) error {
	switch method {
	case MethodNotifyUidReady:
		var uid domain.UserID
		var ctx domain.NotificationContext
		if err := messaging.DecodeArgs(args, &uid, &ctx); err != nil {
			return err
		}
		r.follower.NotifyUidReady(uid, ctx)
	case MethodNotifyFetchUidCanceled:
		var cancel domain.FetchCancel
		if err := messaging.DecodeArgs(args, &cancel); err != nil {
			return err
		}
		r.follower.NotifyFetchUidCanceled(cancel)
	case MethodNotifyCascadeNeeded:
		var data domain.CascadeData
		if err := messaging.DecodeArgs(args, &data); err != nil {
			return err
		}
		r.follower.NotifyCascadeNeeded(data)
	default:
		return fmt.Errorf("%w: follower.%s", ErrUnknownMethod, method)
	}
	return nil
}

// StorageCallReceiver applies remote writes to a window's storage.
type StorageCallReceiver struct {
	storage interfaces.StorageApi
}

func NewStorageCallReceiver(s interfaces.StorageApi) *StorageCallReceiver {
	return &StorageCallReceiver{storage: helpers.NilPanic(s, "leader.proxy.go: storage is required")}
}

func (r *StorageCallReceiver) HandleProxyMethodCall(method string, args []json.RawMessage) error {
	var key, value string
	switch method {
	case MethodSetItem:
		if err := messaging.DecodeArgs(args, &key, &value); err != nil {
			return err
		}
		return r.storage.SetItem(key, value)
	case MethodRemoveItem:
		if err := messaging.DecodeArgs(args, &key); err != nil {
			return err
		}
		return r.storage.RemoveItem(key)
	default:
		return fmt.Errorf("%w: storage.%s", ErrUnknownMethod, method)
	}
}
