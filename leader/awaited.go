package leader

import (
	"sync"

	"id5multiplexing/consent"
	"id5multiplexing/domain"
	"id5multiplexing/helpers"
	"id5multiplexing/interfaces"
)

var _ interfaces.Leader = (*AwaitedLeader)(nil)

// AwaitedLeader stands in for the leader until the election completes. Calls made before
// AssignLeader are buffered and replayed to the assigned leader in call order.
type AwaitedLeader struct {
	mu      sync.Mutex
	leader  interfaces.Leader
	pending []func(interfaces.Leader)
}

func NewAwaitedLeader() *AwaitedLeader {
	return &AwaitedLeader{}
}

// AssignLeader replays the buffered calls to l. Later calls go straight to l. Reassignment
// replaces the target without replaying anything.
func (a *AwaitedLeader) AssignLeader(l interfaces.Leader) {
	helpers.NilPanic(l, "leader.awaited.go: leader is required")
	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	for _, call := range pending {
		call(l)
	}

	a.mu.Lock()
	// calls made while replaying were buffered behind the replayed ones
	for len(a.pending) > 0 {
		more := a.pending
		a.pending = nil
		a.mu.Unlock()
		for _, call := range more {
			call(l)
		}
		a.mu.Lock()
	}
	a.leader = l
	a.mu.Unlock()
}

// Assigned returns the leader if one was assigned.
func (a *AwaitedLeader) Assigned() (interfaces.Leader, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.leader, a.leader != nil
}

func (a *AwaitedLeader) RefreshUid(opts domain.RefreshOptions, requester string) {
	a.do(func(l interfaces.Leader) { l.RefreshUid(opts, requester) })
}

func (a *AwaitedLeader) UpdateConsent(data consent.Data, requester string) {
	a.do(func(l interfaces.Leader) { l.UpdateConsent(data, requester) })
}

func (a *AwaitedLeader) UpdateFetchIdData(instanceID string, data domain.FetchIdData) {
	a.do(func(l interfaces.Leader) { l.UpdateFetchIdData(instanceID, data) })
}

// AddFollower is delegated when a leader is assigned, otherwise it is buffered and reported as added.
func (a *AwaitedLeader) AddFollower(f interfaces.Follower) interfaces.AddFollowerResult {
	a.mu.Lock()
	l := a.leader
	if l == nil {
		a.pending = append(a.pending, func(l interfaces.Leader) { l.AddFollower(f) })
		a.mu.Unlock()
		return interfaces.AddFollowerResult{Added: true, Unique: true}
	}
	a.mu.Unlock()
	return l.AddFollower(f)
}

// Properties of the assigned leader, or zero properties while the election is running.
func (a *AwaitedLeader) Properties() domain.Properties {
	if l, ok := a.Assigned(); ok {
		return l.Properties()
	}
	return domain.Properties{}
}

func (a *AwaitedLeader) do(call func(interfaces.Leader)) {
	a.mu.Lock()
	l := a.leader
	if l == nil {
		a.pending = append(a.pending, call)
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()
	call(l)
}
