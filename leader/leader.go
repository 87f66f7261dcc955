package leader

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"id5multiplexing/consent"
	"id5multiplexing/domain"
	"id5multiplexing/fetcher"
	"id5multiplexing/helpers"
	"id5multiplexing/interfaces"
	"id5multiplexing/messaging"
	"id5multiplexing/storage"

	"github.com/benbjohnson/clock"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Refresh reasons sent with a fetch.
const (
	ReasonForceFetch      = "force_fetch"
	ReasonConsentChanged  = "consent_changed"
	ReasonPdChanged       = "pd_changed"
	ReasonSegmentsChanged = "segments_changed"
	ReasonNoValidCache    = "no_valid_cache"
	ReasonCacheExpired    = "cache_expired"
)

// UidFetcher is implemented by fetcher.UidFetcher.
type UidFetcher interface {
	FetchId(ctx context.Context, requests []domain.FetchIdRequestData) (*fetcher.RefreshedResponse, error)
}

// ConsentManagement is implemented by consent.Management.
type ConsentManagement interface {
	SetConsentData(d consent.Data)
	ResetConsentData(forceAllow bool)
	ConsentData(ctx context.Context) (consent.Data, error)
	LocalStorageGrant() consent.LocalStorageGrant
}

var _ interfaces.Leader = (*ActualLeader)(nil)

// ActualLeader coordinates identity fetches for every follower on the page. At most one fetch is in
// flight; refreshes requested meanwhile are merged into a single follow-up cycle.
type ActualLeader struct {
	window      *messaging.Window
	props       domain.Properties
	replicating *storage.ReplicatingStorage
	store       *storage.Store
	consent     ConsentManagement
	fetcher     UidFetcher
	meter       interfaces.MeterRegistry
	clock       clock.Clock
	logger      log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	followers     []interfaces.Follower
	requestCounts map[string]int
	pendingNb     map[string]int
	notified      map[string]string
	replicated    map[*messaging.Window]bool
	started       bool
	inProgress    bool
	queued        *domain.RefreshOptions
	consentHash   string
}

// NewActualLeader panics on any nil dependency. replicating must be the storage store writes to.
func NewActualLeader(window *messaging.Window, props domain.Properties, replicating *storage.ReplicatingStorage, store *storage.Store,
	consentManagement ConsentManagement, uidFetcher UidFetcher, meter interfaces.MeterRegistry, clk clock.Clock, logger log.Logger) *ActualLeader {
	ctx, cancel := context.WithCancel(context.Background())
	return &ActualLeader{
		window:        helpers.NilPanic(window, "leader.leader.go: window is required"),
		props:         props,
		replicating:   helpers.NilPanic(replicating, "leader.leader.go: replicating storage is required"),
		store:         helpers.NilPanic(store, "leader.leader.go: store is required"),
		consent:       helpers.NilPanic(consentManagement, "leader.leader.go: consent is required"),
		fetcher:       helpers.NilPanic(uidFetcher, "leader.leader.go: fetcher is required"),
		meter:         helpers.NilPanic(meter, "leader.leader.go: meter is required"),
		clock:         helpers.NilPanic(clk, "leader.leader.go: clock is required"),
		logger:        log.With(helpers.NilPanic(logger, "leader.leader.go: logger is required"), "component", "leader", "leaderId", props.ID),
		ctx:           ctx,
		cancel:        cancel,
		requestCounts: make(map[string]int),
		pendingNb:     make(map[string]int),
		notified:      make(map[string]string),
		replicated:    map[*messaging.Window]bool{window: true},
	}
}

// Start runs the first refresh cycle for the followers added so far, merged with any refresh
// requested before the start.
func (l *ActualLeader) Start() {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return
	}
	l.started = true
	opts := domain.RefreshOptions{}
	if l.queued != nil {
		opts = *l.queued
		l.queued = nil
	}
	l.inProgress = true
	l.mu.Unlock()

	level.Info(l.logger).Log("msg", "leader started", "followers", len(l.Followers()))
	go l.run(opts)
}

// Close stops waiting for consent. A fetch already sent is not aborted.
func (l *ActualLeader) Close() {
	l.cancel()
}

func (l *ActualLeader) Properties() domain.Properties {
	return l.props
}

// Followers returns a snapshot of the follower list in join order.
func (l *ActualLeader) Followers() []interfaces.Follower {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]interfaces.Follower(nil), l.followers...)
}

// InProgress reports whether a refresh cycle is running.
func (l *ActualLeader) InProgress() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inProgress
}

// AddFollower registers f. A follower joining a started leader is served from cache right away and
// triggers a refresh when it has no valid cache, or when its cache expired and no other follower
// shares its cache id. Unique is false when another follower already uses the same cache id.
func (l *ActualLeader) AddFollower(f interfaces.Follower) interfaces.AddFollowerResult {
	cacheID := f.CacheID()
	l.mu.Lock()
	unique := true
	for _, existing := range l.followers {
		if existing.ID() == f.ID() {
			l.mu.Unlock()
			return interfaces.AddFollowerResult{Added: false, Unique: false}
		}
		if existing.CacheID() == cacheID {
			unique = false
		}
	}
	l.followers = append(l.followers, f)
	started := l.started
	replicate := !l.replicated[f.Window()]
	if replicate {
		l.replicated[f.Window()] = true
	}
	l.mu.Unlock()

	if replicate {
		l.replicating.AddReplica(f.Storage())
	}
	level.Debug(l.logger).Log("msg", "follower added", "followerId", f.ID(), "cacheId", cacheID, "unique", unique)
	if !started {
		return interfaces.AddFollowerResult{Added: true, Unique: unique}
	}

	grant := l.consent.LocalStorageGrant()
	cached := l.store.CachedResponse(grant, cacheID)
	now := l.clock.Now()
	refresh := !cached.IsValid(now) || cached.IsExpired(now)
	if cached.IsValid(now) && l.notify(f, userIDFromCache(cached), "cache") && unique {
		if _, ok := l.store.IncNb(grant, cacheID); ok && refresh {
			// reverted by the refresh cycle if its fetch fails
			l.mu.Lock()
			l.pendingNb[cacheID]++
			l.mu.Unlock()
		}
	}
	if refresh {
		l.RefreshUid(domain.RefreshOptions{}, f.ID())
	}
	return interfaces.AddFollowerResult{Added: true, Unique: unique}
}

// RefreshUid runs a refresh cycle, or queues one when a cycle is running. Queued requests are merged.
func (l *ActualLeader) RefreshUid(opts domain.RefreshOptions, requester string) {
	if opts.ResetConsent {
		l.consent.ResetConsentData(opts.ForceAllowLocalStorageGrant)
	}
	l.mu.Lock()
	if !l.started || l.inProgress {
		if l.queued != nil {
			merged := l.queued.Merge(opts)
			l.queued = &merged
			l.meter.Counter("id5.leader.refresh.coalesced", nil).Inc()
		} else {
			l.queued = &opts
		}
		l.mu.Unlock()
		level.Debug(l.logger).Log("msg", "refresh queued", "requester", requester)
		return
	}
	l.inProgress = true
	l.mu.Unlock()
	go l.run(opts)
}

// UpdateConsent applies consent data found by a follower. A change after consent was already
// applied refreshes the identity.
func (l *ActualLeader) UpdateConsent(data consent.Data, requester string) {
	hash := data.Hash()
	l.mu.Lock()
	prev := l.consentHash
	l.consentHash = hash
	l.mu.Unlock()

	l.consent.SetConsentData(data)
	if prev != "" && prev != hash {
		level.Info(l.logger).Log("msg", "consent changed", "requester", requester)
		l.RefreshUid(domain.RefreshOptions{}, requester)
	}
}

func (l *ActualLeader) UpdateFetchIdData(instanceID string, data domain.FetchIdData) {
	for _, f := range l.Followers() {
		if f.ID() == instanceID {
			f.UpdateFetchIdData(data)
			return
		}
	}
	level.Warn(l.logger).Log("msg", "fetch data update for unknown follower", "followerId", instanceID)
}

func (l *ActualLeader) run(opts domain.RefreshOptions) {
	for {
		l.cycle(opts)

		l.mu.Lock()
		if l.queued == nil {
			l.inProgress = false
			l.mu.Unlock()
			return
		}
		opts = *l.queued
		l.queued = nil
		l.mu.Unlock()
	}
}

type cycleEntry struct {
	follower interfaces.Follower
	cacheID  string
	first    bool
}

func (l *ActualLeader) cycle(opts domain.RefreshOptions) {
	followers := l.Followers()
	if len(followers) == 0 {
		return
	}
	entries := make([]cycleEntry, 0, len(followers))
	seen := make(map[string]bool, len(followers))
	for _, f := range followers {
		id := f.CacheID()
		entries = append(entries, cycleEntry{follower: f, cacheID: id, first: !seen[id]})
		seen[id] = true
	}

	l.mu.Lock()
	incremented := l.pendingNb
	l.pendingNb = make(map[string]int)
	l.mu.Unlock()

	served := l.serveFromCache(entries, l.consent.LocalStorageGrant())

	data, err := l.consent.ConsentData(l.ctx)
	if err != nil {
		level.Warn(l.logger).Log("msg", "refresh abandoned while waiting for consent", "err", err)
		return
	}
	grant := l.consent.LocalStorageGrant()
	for _, cacheID := range served {
		if _, ok := l.store.IncNb(grant, cacheID); ok {
			incremented[cacheID]++
		}
	}

	cacheEntries := make([]storage.CacheEntry, 0, len(entries))
	for _, e := range entries {
		if e.first {
			cacheEntries = append(cacheEntries, storage.CacheEntry{CacheID: e.cacheID, FetchIdData: e.follower.FetchIdData()})
		}
	}
	state := l.store.StoredDataState(grant, &data, cacheEntries)
	reason := refreshReason(opts, state, cacheEntries, l.clock.Now())
	if reason == "" {
		level.Debug(l.logger).Log("msg", "cached responses are up to date")
		return
	}

	requests := l.buildRequests(entries, state, reason)
	level.Info(l.logger).Log("msg", "fetching uid", "reason", reason, "requests", len(requests))
	resp, err := l.fetcher.FetchId(l.ctx, requests)
	if err != nil {
		for cacheID, n := range incremented {
			l.store.DecNb(grant, cacheID, n)
		}
		level.Warn(l.logger).Log("msg", "uid fetch failed", "err", err)
		for _, e := range entries {
			e.follower.NotifyFetchUidCanceled(domain.FetchCancel{Reason: err.Error()})
		}
		return
	}
	l.handleResponse(entries, state, data, resp)
}

// serveFromCache notifies followers holding a valid cached response and returns the cache ids that
// delivered a new uid.
func (l *ActualLeader) serveFromCache(entries []cycleEntry, grant consent.LocalStorageGrant) []string {
	now := l.clock.Now()
	var served []string
	delivered := make(map[string]bool)
	for _, e := range entries {
		cached := l.store.CachedResponse(grant, e.cacheID)
		if !cached.IsValid(now) {
			continue
		}
		if l.notify(e.follower, userIDFromCache(cached), "cache") && !delivered[e.cacheID] {
			delivered[e.cacheID] = true
			served = append(served, e.cacheID)
		}
	}
	return served
}

func (l *ActualLeader) buildRequests(entries []cycleEntry, state storage.StoredDataState, reason string) []domain.FetchIdRequestData {
	l.mu.Lock()
	defer l.mu.Unlock()
	requests := make([]domain.FetchIdRequestData, 0, len(entries))
	for _, e := range entries {
		id := e.follower.ID()
		l.requestCounts[id]++
		role := domain.RoleFollower
		if id == l.props.ID {
			role = domain.RoleLeader
		}
		r := domain.FetchIdRequestData{
			RequestID:     id,
			Role:          role,
			CacheID:       e.cacheID,
			RequestCount:  l.requestCounts[id],
			FetchIdData:   e.follower.FetchIdData(),
			Href:          l.props.Href,
			Domain:        l.props.Domain,
			RefreshReason: reason,
		}
		if e.first {
			r.NbPage = state.Nb[e.cacheID]
		}
		if cached, ok := state.Responses[e.cacheID]; ok {
			r.CachedResponse = cached.Response
		}
		requests = append(requests, r)
	}
	return requests
}

func (l *ActualLeader) handleResponse(entries []cycleEntry, state storage.StoredDataState, data consent.Data, resp *fetcher.RefreshedResponse) {
	if privacy, ok := resp.Generic.Privacy(); ok {
		l.store.StorePrivacy(privacy)
	}
	grant := l.consent.LocalStorageGrant()

	switch {
	case grant.IsDefinitivelyAllowed():
		fetchData := make([]domain.FetchIdData, 0, len(entries))
		for _, e := range entries {
			if !e.first {
				continue
			}
			fd := e.follower.FetchIdData()
			fetchData = append(fetchData, fd)
			l.store.StoreResponse(grant, e.cacheID, fd.PartnerID, resp.ResponseFor(e.follower.ID()), state.Nb[e.cacheID])
		}
		l.store.StoreRequestData(grant, &data, fetchData)
	case grant.IsDefinitivelyDenied():
		partnerIDs := make([]int, 0, len(entries))
		cacheIDs := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.first {
				partnerIDs = append(partnerIDs, e.follower.FetchIdData().PartnerID)
				cacheIDs = append(cacheIDs, e.cacheID)
			}
		}
		l.store.ClearAll(grant, partnerIDs, cacheIDs)
	}

	for _, e := range entries {
		r := resp.ResponseFor(e.follower.ID())
		l.notify(e.follower, domain.UserID{
			ID:                r.UniversalUID(),
			Ext:               r.Ext(),
			Signature:         r.Signature(),
			ResponseTimestamp: resp.Timestamp,
		}, "fetch")
	}

	if grant.IsDefinitivelyAllowed() {
		l.cascade(entries, data, resp)
	}
}

// cascade notifies the top most follower able to cascade among those whose response asks for it.
func (l *ActualLeader) cascade(entries []cycleEntry, data consent.Data, resp *fetcher.RefreshedResponse) {
	var target interfaces.Follower
	depth := 0
	for _, e := range entries {
		f := e.follower
		if !f.CanDoCascade() || !resp.ResponseFor(f.ID()).CascadeNeeded() {
			continue
		}
		if d := f.Window().Depth(); target == nil || d < depth {
			target, depth = f, d
		}
	}
	if target == nil {
		return
	}
	cd := domain.CascadeData{
		PartnerID:     target.FetchIdData().PartnerID,
		UserID:        resp.ResponseFor(target.ID()).UniversalUID(),
		GdprApplies:   data.GdprApplies,
		ConsentString: data.ConsentString,
	}
	if data.GppData != nil {
		cd.GppString = data.GppData.GppString
		sids := make([]string, 0, len(data.GppData.ApplicableSections))
		for _, s := range data.GppData.ApplicableSections {
			sids = append(sids, strconv.Itoa(s))
		}
		cd.GppSid = strings.Join(sids, ",")
	}
	level.Debug(l.logger).Log("msg", "cascade needed", "followerId", target.ID())
	target.NotifyCascadeNeeded(cd)
}

// notify delivers uid to f unless f already received that uid. Returns whether it was delivered.
func (l *ActualLeader) notify(f interfaces.Follower, uid domain.UserID, source string) bool {
	l.mu.Lock()
	if l.notified[f.ID()] == uid.ID {
		l.mu.Unlock()
		l.meter.Counter("id5.leader.uid.duplicate", map[string]string{"source": source}).Inc()
		return false
	}
	l.notified[f.ID()] = uid.ID
	l.mu.Unlock()

	f.NotifyUidReady(uid, domain.NotificationContext{
		Timestamp: l.clock.Now(),
		Tags:      map[string]string{"source": source},
	})
	return true
}

func userIDFromCache(c *storage.CachedResponse) domain.UserID {
	return domain.UserID{
		ID:                c.Response.UniversalUID(),
		Ext:               c.Response.Ext(),
		Signature:         c.Response.Signature(),
		ResponseTimestamp: c.ResponseTime(),
		IsFromCache:       true,
	}
}

func refreshReason(opts domain.RefreshOptions, state storage.StoredDataState, entries []storage.CacheEntry, now time.Time) string {
	if opts.ForceFetch {
		return ReasonForceFetch
	}
	for _, e := range entries {
		if !state.Responses[e.CacheID].IsValid(now) {
			return ReasonNoValidCache
		}
	}
	switch {
	case state.ConsentHasChanged:
		return ReasonConsentChanged
	case state.PdHasChanged:
		return ReasonPdChanged
	case state.SegmentsHaveChanged:
		return ReasonSegmentsChanged
	}
	for _, e := range entries {
		if state.Responses[e.CacheID].IsExpired(now) {
			return ReasonCacheExpired
		}
	}
	return ""
}
