package messaging

import (
	"sync"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_Tree(t *testing.T) {
	top := NewTopWindow("top", log.NewNopLogger())
	defer top.Close()
	f1 := top.AddFrame("f1")
	f11 := f1.AddFrame("f1.1")
	f2 := top.AddFrame("f2")

	assert.Equal(t, 0, top.Depth())
	assert.Equal(t, 1, f1.Depth())
	assert.Equal(t, 2, f11.Depth())
	assert.Same(t, top, f11.Top())
	assert.Same(t, f1, f11.Parent())
	assert.Nil(t, top.Parent())

	var names []string
	for _, w := range AllFrames(top) {
		names = append(names, w.Name())
	}
	assert.Equal(t, []string{"top", "f1", "f1.1", "f2"}, names)
	assert.Equal(t, []*Window{f1, f2}, top.Frames())
}

func TestWindow_PostMessage_PreservesOrder(t *testing.T) {
	w := NewTopWindow("top", nil)
	defer w.Close()

	var mu sync.Mutex
	var got []string
	w.AddListener(func(ev MessageEvent) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, string(ev.Data))
	})
	want := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		s := string(rune('a' + i%26))
		want = append(want, s)
		w.PostMessage([]byte(s), w)
	}
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == len(want)
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, want, got)
}

func TestWindow_ListenerPanicDoesNotStopDelivery(t *testing.T) {
	w := NewTopWindow("top", nil)
	defer w.Close()

	received := make(chan string, 2)
	w.AddListener(func(ev MessageEvent) { panic("boom") })
	w.AddListener(func(ev MessageEvent) { received <- string(ev.Data) })

	w.PostMessage([]byte("one"), nil)
	w.PostMessage([]byte("two"), nil)
	assert.Equal(t, "one", <-received)
	assert.Equal(t, "two", <-received)
}

func TestWindow_RemoveListener(t *testing.T) {
	w := NewTopWindow("top", nil)
	defer w.Close()

	removed := make(chan struct{}, 1)
	kept := make(chan struct{}, 1)
	remove := w.AddListener(func(ev MessageEvent) { removed <- struct{}{} })
	w.AddListener(func(ev MessageEvent) { kept <- struct{}{} })
	remove()

	w.PostMessage([]byte("x"), nil)
	<-kept
	select {
	case <-removed:
		t.Fatal("removed listener was called")
	default:
	}
}

func TestWindow_Close(t *testing.T) {
	top := NewTopWindow("top", nil)
	frame := top.AddFrame("f")
	called := make(chan struct{}, 1)
	frame.AddListener(func(ev MessageEvent) { called <- struct{}{} })

	top.Close()
	frame.PostMessage([]byte("x"), nil)
	select {
	case <-called:
		t.Fatal("closed window delivered a message")
	case <-time.After(20 * time.Millisecond):
	}
	require.NotPanics(t, top.Close)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("b", 2)
	r.Register("a", 1)

	v, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"a", "b"}, r.IDs())

	r.Unregister("a")
	_, ok = r.Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, r.IDs())
}
