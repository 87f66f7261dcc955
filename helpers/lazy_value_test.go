package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyValue_AwaitAfterSet(t *testing.T) {
	l := NewLazyValue[string]()
	assert.False(t, l.HasValue())

	l.Set("a")
	got, err := l.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", got)
	assert.True(t, l.HasValue())
}

func TestLazyValue_WaiterReleasedBySet(t *testing.T) {
	l := NewLazyValue[int]()
	done := make(chan int, 1)
	go func() {
		v, err := l.Await(context.Background())
		if err == nil {
			done <- v
		}
	}()

	l.Set(7)
	select {
	case v := <-done:
		assert.Equal(t, 7, v)
	case <-time.After(time.Second):
		t.Fatal("waiter was not released")
	}
}

func TestLazyValue_SetOverwrites(t *testing.T) {
	l := NewLazyValue[int]()
	l.Set(1)
	l.Set(2)
	v, ok := l.Peek()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestLazyValue_ResetThenSet(t *testing.T) {
	l := NewLazyValue[int]()
	l.Set(1)
	l.Reset()
	assert.False(t, l.HasValue())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := l.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	done := make(chan int, 1)
	go func() {
		v, err := l.Await(context.Background())
		if err == nil {
			done <- v
		}
	}()
	l.Set(3)
	select {
	case v := <-done:
		assert.Equal(t, 3, v)
	case <-time.After(time.Second):
		t.Fatal("waiter was not released after reset+set")
	}
}

func TestLazyValue_ResetWithoutValueIsNoop(t *testing.T) {
	l := NewLazyValue[int]()
	l.Reset()
	assert.False(t, l.HasValue())
	l.Set(5)
	v, err := l.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}
