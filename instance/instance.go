package instance

import (
	"net/url"
	"sync"
	"time"

	"id5multiplexing/consent"
	"id5multiplexing/domain"
	"id5multiplexing/events"
	"id5multiplexing/fetcher"
	"id5multiplexing/helpers"
	"id5multiplexing/interfaces"
	"id5multiplexing/leader"
	"id5multiplexing/messaging"
	"id5multiplexing/storage"

	"github.com/benbjohnson/clock"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

// ElectionState is the progress of an instance's leader election.
type ElectionState string

const (
	AwaitingSchedule ElectionState = "AWAITING_SCHEDULE"
	Scheduled        ElectionState = "SCHEDULED"
	Completed        ElectionState = "COMPLETED"
	Canceled         ElectionState = "CANCELED"
)

// DefaultElectionDelay is how long an instance listens for peers before electing.
const DefaultElectionDelay = 3 * time.Second

// Options configure an Instance. Transport and Meter are required; the rest have defaults.
type Options struct {
	Properties    domain.Properties
	OperatingMode domain.OperatingMode

	Transport          interfaces.HTTPTransport
	Fetcher            fetcher.Config
	ExtensionEndpoints []string
	ExtensionsTimeout  time.Duration

	Storage                     *storage.Config
	ForceAllowLocalStorageGrant bool

	Meter    interfaces.MeterRegistry
	Topology messaging.Topology
	Clock    clock.Clock
	Logger   log.Logger
}

// Instance is one integration of the SDK on a page. It discovers its peers, takes part in the
// election and exposes the follower the integration talks to.
type Instance struct {
	id         string
	window     *messaging.Window
	storage    interfaces.StorageApi
	opts       Options
	mode       domain.OperatingMode
	clock      clock.Clock
	logger     log.Logger
	messenger  *messaging.Messenger
	dispatcher *events.Dispatcher
	awaited    *leader.AwaitedLeader
	follower   *leader.LocalFollower

	mu       sync.Mutex
	props    domain.Properties
	state    ElectionState
	role     domain.Role
	known    []*DiscoveredInstance
	leaderID string
	timer    *clock.Timer
	actual   *leader.ActualLeader
}

// New panics on nil window, storage, transport or meter. An empty instance id is replaced by a
// random one, the domain is derived from the href and the frame depth from the window.
func New(window *messaging.Window, storageApi interfaces.StorageApi, opts Options) *Instance {
	helpers.NilPanic(window, "instance.instance.go: window is required")
	helpers.NilPanic(storageApi, "instance.instance.go: storage is required")
	helpers.NilPanic(opts.Transport, "instance.instance.go: transport is required")
	helpers.NilPanic(opts.Meter, "instance.instance.go: meter is required")
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.OperatingMode == "" {
		opts.OperatingMode = domain.OperatingModeMultiplexing
	}
	if opts.ExtensionsTimeout <= 0 {
		opts.ExtensionsTimeout = time.Second
	}

	props := opts.Properties
	if props.ID == "" {
		props.ID = uuid.NewString()
	}
	if props.Version == "" {
		props.Version = domain.ProtocolVersion
	}
	if props.Domain == "" {
		props.Domain = domainOf(props.Href)
	}
	if props.FetchIdData.RefererInfo.NumIframes == nil {
		props.FetchIdData.RefererInfo.NumIframes = helpers.Ptr(window.Depth())
	}

	logger := log.With(opts.Logger, "component", "instance", "instanceId", props.ID)
	dispatcher := events.NewDispatcher(logger)
	awaited := leader.NewAwaitedLeader()
	i := &Instance{
		id:         props.ID,
		window:     window,
		storage:    storageApi,
		opts:       opts,
		mode:       opts.OperatingMode,
		clock:      opts.Clock,
		logger:     logger,
		messenger:  messaging.NewMessenger(props.ID, window, opts.Topology, opts.Clock, logger),
		dispatcher: dispatcher,
		awaited:    awaited,
		follower:   leader.NewLocalFollower(props, window, storageApi, dispatcher, awaited),
		props:      props,
		state:      AwaitingSchedule,
	}
	return i
}

func domainOf(href string) string {
	u, err := url.Parse(href)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(u.Hostname())
	if err != nil {
		return u.Hostname()
	}
	return d
}

func (i *Instance) ID() string { return i.id }

// Properties returns the current instance properties.
func (i *Instance) Properties() domain.Properties {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.props
}

func (i *Instance) OperatingMode() domain.OperatingMode { return i.mode }

// Leader returns the leader this instance talks to. Calls made before the election completes are
// replayed once it does.
func (i *Instance) Leader() *leader.AwaitedLeader { return i.awaited }

// Follower returns the integration facing follower.
func (i *Instance) Follower() *leader.LocalFollower { return i.follower }

// Role is empty until the election completes.
func (i *Instance) Role() domain.Role {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.role
}

func (i *Instance) ElectionState() ElectionState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// LeaderID returns the id of the elected leader, empty while unknown.
func (i *Instance) LeaderID() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.leaderID
}

// KnownInstances returns the discovered peers in discovery order.
func (i *Instance) KnownInstances() []DiscoveredInstance {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]DiscoveredInstance, 0, len(i.known))
	for _, d := range i.known {
		out = append(out, *d)
	}
	return out
}

// On subscribes h to instance and follower events.
func (i *Instance) On(e events.Event, h events.Handler) {
	i.dispatcher.On(e, h)
}

// UpdateConfig merges u into the instance properties and forwards new fetch data to the leader.
func (i *Instance) UpdateConfig(u domain.ConfigUpdate) {
	i.mu.Lock()
	i.props = i.props.WithUpdate(u)
	i.mu.Unlock()
	i.follower.UpdateConfig(u)
}

// Register announces the instance and schedules the election after electionDelay. A singleton
// instance skips discovery and leads itself right away.
func (i *Instance) Register(electionDelay time.Duration) {
	i.mu.Lock()
	if i.state != AwaitingSchedule {
		i.mu.Unlock()
		return
	}
	if i.mode == domain.OperatingModeSingleton {
		i.state = Completed
		i.mu.Unlock()
		level.Info(i.logger).Log("msg", "singleton instance leads itself")
		i.becomeLeader()
		return
	}
	i.state = Scheduled
	i.mu.Unlock()

	i.window.Registry().Register(i.id, i)
	i.messenger.OnMessage(domain.HelloMessageType, i.onHello)
	i.messenger.OnAnyMessage(func(env messaging.Envelope, _ *messaging.Window) {
		i.dispatcher.Emit(events.InstanceMessageReceived, env)
	})
	// calls reaching this instance before the election completes wait in the awaited leader
	i.onProxyMethodCall(messaging.TargetLeader, leader.NewLeaderCallReceiver(i.awaited, i.resolveFollower))
	i.onProxyMethodCall(messaging.TargetFollower, leader.NewFollowerCallReceiver(leader.NewDirectFollower(i.follower)))
	i.onProxyMethodCall(messaging.TargetStorage, leader.NewStorageCallReceiver(i.storage))

	if err := i.messenger.BroadcastMessage(i.hello(false), domain.HelloMessageType); err != nil {
		level.Error(i.logger).Log("msg", "can't announce instance", "err", err)
	}

	i.mu.Lock()
	if i.state == Scheduled {
		i.timer = i.clock.AfterFunc(electionDelay, i.elect)
	}
	i.mu.Unlock()
	level.Debug(i.logger).Log("msg", "election scheduled", "delay", electionDelay)
}

// Unregister stops the instance: the election is canceled, messages are no longer received and a
// leader run by the instance stops waiting for consent.
func (i *Instance) Unregister() {
	i.mu.Lock()
	if i.timer != nil {
		i.timer.Stop()
	}
	if i.state == Scheduled {
		i.state = Canceled
	}
	actual := i.actual
	i.mu.Unlock()

	i.window.Registry().Unregister(i.id)
	i.messenger.Close()
	if actual != nil {
		actual.Close()
	}
}

func (i *Instance) onProxyMethodCall(target messaging.ProxyMethodCallTarget, r messaging.ProxyMethodCallReceiver) {
	if err := i.messenger.OnProxyMethodCall(target, r); err != nil {
		level.Error(i.logger).Log("msg", "can't register remote call receiver", "target", target, "err", err)
	}
}

func (i *Instance) hello(isResponse bool) domain.HelloMessage {
	i.mu.Lock()
	defer i.mu.Unlock()
	known := make([]string, 0, len(i.known))
	for _, d := range i.known {
		known = append(known, d.Properties.ID)
	}
	return domain.HelloMessage{
		Instance:   i.props,
		IsResponse: isResponse,
		InstanceState: domain.InstanceState{
			OperatingMode:  i.mode,
			KnownInstances: known,
			LeaderID:       i.leaderID,
		},
	}
}

func (i *Instance) onHello(env messaging.Envelope, source *messaging.Window) {
	var h domain.HelloMessage
	if err := env.DecodePayload(&h); err != nil || h.Instance.ID == "" {
		level.Debug(i.logger).Log("msg", "malformed hello dropped", "src", env.Src, "err", err)
		return
	}

	i.mu.Lock()
	d, isNew := i.discover(h, source)
	state, role, leaderID := i.state, i.role, i.leaderID
	i.mu.Unlock()

	if isNew {
		level.Debug(i.logger).Log("msg", "instance discovered", "peerId", d.Properties.ID, "mode", d.State.OperatingMode)
		i.dispatcher.Emit(events.InstanceJoined, d.Properties)
	}
	if !h.IsResponse {
		if err := i.messenger.SendResponseMessage(env, i.hello(true), domain.HelloMessageType); err != nil {
			level.Warn(i.logger).Log("msg", "can't answer hello", "err", err)
		}
	}

	switch {
	case h.InstanceState.LeaderID != "" && (state == Scheduled || state == Completed && leaderID == ""):
		i.joinElectedLeader(h.InstanceState.LeaderID)
	case isNew && state == Completed && role == domain.RoleLeader && d.IsCandidate():
		i.addLateFollower(d.Properties.ID)
	}
}

// discover records the peer described by h. Must be called with mu held.
func (i *Instance) discover(h domain.HelloMessage, source *messaging.Window) (DiscoveredInstance, bool) {
	for _, d := range i.known {
		if d.Properties.ID == h.Instance.ID {
			d.Properties = h.Instance
			d.State = h.InstanceState
			return *d, false
		}
	}
	d := &DiscoveredInstance{Properties: h.Instance, State: h.InstanceState, Window: source}
	i.known = append(i.known, d)
	return *d, true
}

func (i *Instance) elect() {
	i.mu.Lock()
	if i.state != Scheduled {
		i.mu.Unlock()
		return
	}
	i.state = Completed
	var candidates []domain.Properties
	if i.mode.IsMultiplexingCapable() {
		candidates = append(candidates, i.props)
	}
	for _, d := range i.known {
		if d.IsCandidate() {
			candidates = append(candidates, d.Properties)
		}
	}
	i.mu.Unlock()

	winner, ok := ElectLeader(candidates)
	if !ok {
		level.Info(i.logger).Log("msg", "no leader candidate, waiting for one to announce itself")
		return
	}
	level.Info(i.logger).Log("msg", "leader elected", "leaderId", winner.ID, "candidates", len(candidates))
	if winner.ID == i.id {
		i.becomeLeader()
		return
	}
	i.followLeader(winner.ID)
}

// joinElectedLeader follows a leader elected without this instance: the own election is canceled
// if still pending. An instance whose election found no candidate follows the first leader announced.
func (i *Instance) joinElectedLeader(leaderID string) {
	i.mu.Lock()
	switch {
	case i.state == Scheduled:
		i.state = Canceled
		if i.timer != nil {
			i.timer.Stop()
		}
	case i.state == Completed && i.leaderID == "":
	default:
		i.mu.Unlock()
		return
	}
	i.leaderID = leaderID
	i.mu.Unlock()
	level.Info(i.logger).Log("msg", "joining elected leader", "leaderId", leaderID)
	i.followLeader(leaderID)
}

func (i *Instance) followLeader(leaderID string) {
	props := domain.Properties{ID: leaderID}
	if d, ok := i.knownInstance(leaderID); ok {
		props = d.Properties
	}
	var target interfaces.Leader
	if peer, ok := i.sameWindowInstance(leaderID); ok {
		target = peer.Leader()
	} else {
		target = leader.NewProxyLeader(props, i.messenger, i.logger)
	}

	i.mu.Lock()
	i.role = domain.RoleFollower
	i.leaderID = leaderID
	i.mu.Unlock()

	i.awaited.AssignLeader(target)
	if !i.mode.IsMultiplexingCapable() {
		i.awaited.AddFollower(leader.NewDirectFollower(i.follower))
	}
	i.dispatcher.Emit(events.LeaderElected, props)
}

func (i *Instance) becomeLeader() {
	props := i.Properties()
	cfg := storage.DefaultConfig()
	if i.opts.Storage != nil {
		cfg = *i.opts.Storage
	}
	replicating := storage.NewReplicatingStorage(i.storage, i.logger)
	store := storage.NewStore(storage.NewLocalStorage(replicating, i.clock, i.logger), cfg, i.clock, i.logger)
	cm := consent.NewManagement(store, i.opts.ForceAllowLocalStorageGrant, i.logger)
	var ext *fetcher.Extensions
	if len(i.opts.ExtensionEndpoints) > 0 {
		ext = fetcher.NewExtensions(i.opts.Transport, store, i.opts.ExtensionEndpoints, i.opts.ExtensionsTimeout, i.logger)
	}
	fetcherCfg := i.opts.Fetcher
	if fetcherCfg.Version == "" {
		fetcherCfg.Version = props.SourceVersion
	}
	uf := fetcher.NewUidFetcher(fetcherCfg, i.opts.Transport, cm, ext, i.opts.Meter, i.clock, i.logger)
	actual := leader.NewActualLeader(i.window, props, replicating, store, cm, uf, i.opts.Meter, i.clock, i.logger)

	i.mu.Lock()
	i.role = domain.RoleLeader
	i.leaderID = i.id
	i.actual = actual
	var peers []string
	for _, d := range i.known {
		if d.IsCandidate() {
			peers = append(peers, d.Properties.ID)
		}
	}
	passive := i.passivePeers()
	i.mu.Unlock()

	actual.AddFollower(leader.NewDirectFollower(i.follower))
	for _, id := range peers {
		if f, ok := i.resolveFollower(id); ok {
			actual.AddFollower(f)
		}
	}
	i.awaited.AssignLeader(actual)
	actual.Start()
	i.dispatcher.Emit(events.LeaderElected, props)

	for _, id := range passive {
		if err := i.messenger.UnicastMessage(id, i.hello(true), domain.HelloMessageType); err != nil {
			level.Warn(i.logger).Log("msg", "can't ping passive instance", "peerId", id, "err", err)
		}
	}
}

// passivePeers must be called with mu held.
func (i *Instance) passivePeers() []string {
	var out []string
	for _, d := range i.known {
		if d.State.OperatingMode == domain.OperatingModePassive {
			out = append(out, d.Properties.ID)
		}
	}
	return out
}

func (i *Instance) addLateFollower(id string) {
	i.mu.Lock()
	actual := i.actual
	i.mu.Unlock()
	if actual == nil {
		return
	}
	if f, ok := i.resolveFollower(id); ok {
		level.Info(i.logger).Log("msg", "late joiner added", "followerId", id)
		actual.AddFollower(f)
	}
}

// resolveFollower returns the leader side view of instance id: a direct follower when it lives in
// the same window, a proxy otherwise.
func (i *Instance) resolveFollower(id string) (interfaces.Follower, bool) {
	if peer, ok := i.sameWindowInstance(id); ok {
		return leader.NewDirectFollower(peer.Follower()), true
	}
	d, ok := i.knownInstance(id)
	if !ok {
		return nil, false
	}
	return leader.NewProxyFollower(d.Properties, d.Window, i.messenger, i.logger), true
}

func (i *Instance) sameWindowInstance(id string) (*Instance, bool) {
	v, ok := i.window.Registry().Lookup(id)
	if !ok {
		return nil, false
	}
	peer, ok := v.(*Instance)
	return peer, ok
}

func (i *Instance) knownInstance(id string) (DiscoveredInstance, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, d := range i.known {
		if d.Properties.ID == id {
			return *d, true
		}
	}
	return DiscoveredInstance{}, false
}
