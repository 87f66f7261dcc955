package messaging

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"id5multiplexing/helpers"

	"github.com/benbjohnson/clock"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Handler is called for every accepted envelope of a subscribed type. source is the window the
// envelope was posted from and is the address used to answer.
type Handler func(env Envelope, source *Window)

// Messenger sends and receives multiplexing envelopes on behalf of one instance.
//
// Every send is a broadcast to all windows returned by the topology: unicast only sets Dst and
// relies on receivers dropping envelopes addressed to someone else. Receivers also drop their own
// loopback and anything not marked as a multiplexing envelope. Handler panics are recovered and
// logged; the other handlers of the same envelope still run.
type Messenger struct {
	id       string
	window   *Window
	topology Topology
	clock    clock.Clock
	logger   log.Logger

	seq atomic.Int64

	mu          sync.RWMutex
	handlers    map[string][]Handler
	anyHandlers []Handler
	leader      ProxyMethodCallReceiver
	follower    ProxyMethodCallReceiver
	storage     ProxyMethodCallReceiver

	unlisten func()
}

// NewMessenger attaches a messenger for instance id to window. A nil topology means AllFrames.
// Panics on empty id, nil window, nil clock or nil logger.
func NewMessenger(id string, window *Window, topology Topology, clk clock.Clock, logger log.Logger) *Messenger {
	if topology == nil {
		topology = AllFrames
	}
	m := &Messenger{
		id:       helpers.StrPanic(id, "messaging.messenger.go: id is required"),
		window:   helpers.NilPanic(window, "messaging.messenger.go: window is required"),
		topology: topology,
		clock:    helpers.NilPanic(clk, "messaging.messenger.go: clock is required"),
		logger:   log.With(helpers.NilPanic(logger, "messaging.messenger.go: logger is required"), "component", "messenger", "instanceId", id),
		handlers: make(map[string][]Handler),
	}
	m.OnMessage(ProxyMethodCallType, m.handleProxyMethodCall)
	m.unlisten = window.AddListener(m.onWindowMessage)
	return m
}

// ID returns the instance id the messenger sends as.
func (m *Messenger) ID() string {
	return m.id
}

// Window returns the window the messenger listens on.
func (m *Messenger) Window() *Window {
	return m.window
}

// BroadcastMessage sends payload to every instance on the page.
func (m *Messenger) BroadcastMessage(payload any, typ string) error {
	return m.send("", typ, payload, nil)
}

// UnicastMessage sends payload to instance dst only.
func (m *Messenger) UnicastMessage(dst string, payload any, typ string) error {
	return m.send(dst, typ, payload, nil)
}

// SendResponseMessage answers request. The answer is addressed to the request sender and carries
// the request envelope.
func (m *Messenger) SendResponseMessage(request Envelope, payload any, typ string) error {
	req := request
	req.Request = nil
	return m.send(request.Src, typ, payload, &req)
}

// CallProxyMethod asks instance dst to run method on target. The call is fire-and-forget: errors on
// the receiving side are only logged there.
func (m *Messenger) CallProxyMethod(dst string, target ProxyMethodCallTarget, method string, args ...any) error {
	call, err := NewProxyMethodCall(target, method, args...)
	if err != nil {
		return err
	}
	return m.UnicastMessage(dst, call, ProxyMethodCallType)
}

// OnMessage subscribes h to envelopes of type typ.
func (m *Messenger) OnMessage(typ string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[typ] = append(m.handlers[typ], h)
}

// OnAnyMessage subscribes h to every accepted envelope.
func (m *Messenger) OnAnyMessage(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anyHandlers = append(m.anyHandlers, h)
}

// OnProxyMethodCall installs the receiver for target, replacing any previous one.
func (m *Messenger) OnProxyMethodCall(target ProxyMethodCallTarget, r ProxyMethodCallReceiver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch target {
	case TargetLeader:
		m.leader = r
	case TargetFollower:
		m.follower = r
	case TargetStorage:
		m.storage = r
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTarget, string(target))
	}
	return nil
}

// Close detaches the messenger from its window. Sends after Close still work.
func (m *Messenger) Close() {
	m.unlisten()
}

func (m *Messenger) send(dst, typ string, payload any, request *Envelope) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", typ, err)
	}
	env := Envelope{
		IsID5Message: true,
		ID:           m.seq.Add(1),
		Timestamp:    m.clock.Now().UnixMilli(),
		Src:          m.id,
		Dst:          dst,
		Type:         typ,
		Payload:      body,
		Request:      request,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", typ, err)
	}
	for _, w := range m.topology(m.window.Top()) {
		w.PostMessage(data, m.window)
	}
	return nil
}

func (m *Messenger) onWindowMessage(ev MessageEvent) {
	env, ok := decodeEnvelope(ev.Data)
	if !ok {
		return
	}
	if env.Src == m.id {
		return
	}
	if env.Dst != "" && env.Dst != m.id {
		return
	}

	m.mu.RLock()
	handlers := make([]Handler, 0, len(m.handlers[env.Type])+len(m.anyHandlers))
	handlers = append(handlers, m.handlers[env.Type]...)
	handlers = append(handlers, m.anyHandlers...)
	m.mu.RUnlock()

	for _, h := range handlers {
		m.dispatch(h, env, ev.Source)
	}
}

func (m *Messenger) dispatch(h Handler, env Envelope, source *Window) {
	defer func() {
		if r := recover(); r != nil {
			level.Error(m.logger).Log("msg", "message handler panicked", "type", env.Type, "src", env.Src, "panic", r)
		}
	}()
	h(env, source)
}

func (m *Messenger) handleProxyMethodCall(env Envelope, _ *Window) {
	var call ProxyMethodCall
	if err := env.DecodePayload(&call); err != nil {
		level.Warn(m.logger).Log("msg", "malformed remote method call", "src", env.Src, "err", err)
		return
	}

	m.mu.RLock()
	var r ProxyMethodCallReceiver
	switch call.Target {
	case TargetLeader:
		r = m.leader
	case TargetFollower:
		r = m.follower
	case TargetStorage:
		r = m.storage
	default:
		m.mu.RUnlock()
		level.Warn(m.logger).Log("msg", "remote method call to unknown target", "target", call.Target, "src", env.Src)
		return
	}
	m.mu.RUnlock()

	if r == nil {
		level.Debug(m.logger).Log("msg", "no receiver for remote method call", "target", call.Target, "method", call.MethodName)
		return
	}
	if err := r.HandleProxyMethodCall(call.MethodName, call.MethodArguments); err != nil {
		level.Warn(m.logger).Log("msg", "remote method call failed", "target", call.Target, "method", call.MethodName, "src", env.Src, "err", err)
	}
}
