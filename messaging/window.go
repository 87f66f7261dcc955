package messaging

import (
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// MessageEvent is one delivery to a window: the raw posted data and the window that posted it.
type MessageEvent struct {
	Data   []byte
	Source *Window
}

// Listener receives every message posted to the window it is attached to.
type Listener func(ev MessageEvent)

type listenerEntry struct {
	id int
	fn Listener
}

// Window is a browsing context: the top page or a nested frame. Messages posted to a window are
// delivered to its listeners one at a time, in posting order, on the window's own dispatch
// goroutine. PostMessage never blocks.
type Window struct {
	name     string
	parent   *Window
	registry *Registry
	logger   log.Logger

	mu           sync.Mutex
	frames       []*Window
	listeners    []listenerEntry
	nextListener int
	mailbox      []MessageEvent
	closed       bool

	signal chan struct{}
	done   chan struct{}
}

// NewTopWindow creates the top window of a page.
func NewTopWindow(name string, logger log.Logger) *Window {
	return newWindow(name, nil, logger)
}

func newWindow(name string, parent *Window, logger log.Logger) *Window {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	w := &Window{
		name:     name,
		parent:   parent,
		registry: NewRegistry(),
		logger:   log.With(logger, "component", "window", "window", name),
		signal:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w
}

// AddFrame creates a nested frame of w.
func (w *Window) AddFrame(name string) *Window {
	f := newWindow(name, w, w.logger)
	w.mu.Lock()
	w.frames = append(w.frames, f)
	w.mu.Unlock()
	return f
}

// Name returns the window name.
func (w *Window) Name() string {
	return w.name
}

// Parent returns the parent window, nil for the top window.
func (w *Window) Parent() *Window {
	return w.parent
}

// Top returns the top window of the page w belongs to.
func (w *Window) Top() *Window {
	top := w
	for top.parent != nil {
		top = top.parent
	}
	return top
}

// Depth returns the number of frames between w and the top window.
func (w *Window) Depth() int {
	d := 0
	for p := w.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Frames returns a snapshot of the direct child frames.
func (w *Window) Frames() []*Window {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Window, len(w.frames))
	copy(out, w.frames)
	return out
}

// Registry returns the registry of instances living in this window.
func (w *Window) Registry() *Registry {
	return w.registry
}

// AddListener attaches l and returns a function detaching it.
func (w *Window) AddListener(l Listener) (remove func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextListener++
	id := w.nextListener
	w.listeners = append(w.listeners, listenerEntry{id: id, fn: l})
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		for i, e := range w.listeners {
			if e.id == id {
				w.listeners = append(w.listeners[:i:i], w.listeners[i+1:]...)
				return
			}
		}
	}
}

// PostMessage queues data for delivery to the window's listeners. Posting to a closed window is a no-op.
func (w *Window) PostMessage(data []byte, source *Window) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.mailbox = append(w.mailbox, MessageEvent{Data: data, Source: source})
	w.mu.Unlock()

	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// Close stops delivery in w and in all its frames. Queued messages are dropped.
func (w *Window) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mailbox = nil
	frames := w.frames
	w.mu.Unlock()

	close(w.done)
	for _, f := range frames {
		f.Close()
	}
}

func (w *Window) loop() {
	for {
		select {
		case <-w.done:
			return
		case <-w.signal:
		}
		for {
			w.mu.Lock()
			if w.closed || len(w.mailbox) == 0 {
				w.mu.Unlock()
				break
			}
			ev := w.mailbox[0]
			w.mailbox = w.mailbox[1:]
			listeners := make([]listenerEntry, len(w.listeners))
			copy(listeners, w.listeners)
			w.mu.Unlock()

			for _, l := range listeners {
				w.deliver(l.fn, ev)
			}
		}
	}
}

func (w *Window) deliver(fn Listener, ev MessageEvent) {
	defer func() {
		if r := recover(); r != nil {
			level.Error(w.logger).Log("msg", "message listener panicked", "panic", r)
		}
	}()
	fn(ev)
}
