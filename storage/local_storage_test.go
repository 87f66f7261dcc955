package storage

import (
	"errors"
	"testing"
	"time"

	"id5multiplexing/helpers"
	"id5multiplexing/interfaces/mock"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalStorage_Panics(t *testing.T) {
	clk := helpers.TestClock()
	logger := log.NewNopLogger()
	t.Run("api_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "storage.local_storage.go: api is required", func() {
			NewLocalStorage(nil, clk, logger)
		})
	})
	t.Run("clock_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "storage.local_storage.go: clock is required", func() {
			NewLocalStorage(NewMemoryStorage(), nil, logger)
		})
	})
	t.Run("logger_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "storage.local_storage.go: logger is required", func() {
			NewLocalStorage(NewMemoryStorage(), clk, nil)
		})
	})
}

func TestLocalStorage_Expiration(t *testing.T) {
	clk := helpers.TestClock()
	mem := NewMemoryStorage()
	ls := NewLocalStorage(mem, clk, log.NewNopLogger())
	k := KeyConfig{Name: "id5id_test", TTL: time.Hour}

	ls.SetItemWithExpiration(k, "value")
	assert.Equal(t, []string{"id5id_test", "id5id_test_exp"}, mem.Keys())

	t.Run("fresh_item_read", func(t *testing.T) {
		v, ok := ls.GetItemWithExpiration(k)
		require.True(t, ok)
		assert.Equal(t, "value", v)
	})

	t.Run("expired_item_removes_both", func(t *testing.T) {
		clk.Add(time.Hour)
		_, ok := ls.GetItemWithExpiration(k)
		assert.False(t, ok)
		assert.Empty(t, mem.Keys())
	})

	t.Run("item_without_companion_never_expires", func(t *testing.T) {
		ls.SetItem("plain", "p")
		clk.Add(1000 * time.Hour)
		v, ok := ls.GetItemWithExpiration(KeyConfig{Name: "plain"})
		require.True(t, ok)
		assert.Equal(t, "p", v)
	})
}

func TestLocalStorage_Objects(t *testing.T) {
	ls := NewLocalStorage(NewMemoryStorage(), helpers.TestClock(), log.NewNopLogger())
	k := KeyConfig{Name: "obj", TTL: time.Hour}

	ls.SetObjectWithExpiration(k, map[string]int{"a": 1})
	var out map[string]int
	require.True(t, ls.GetObjectWithExpiration(k, &out))
	assert.Equal(t, map[string]int{"a": 1}, out)

	ls.SetItem(k.Name, "{not json")
	assert.False(t, ls.GetObjectWithExpiration(k, &out))
}

func TestLocalStorage_BackendErrors(t *testing.T) {
	failing := &mock.StorageApiMock{
		GetItemFunc:    func(key string) (string, error) { return "", errors.New("quota") },
		SetItemFunc:    func(key string, value string) error { return errors.New("quota") },
		RemoveItemFunc: func(key string) error { return errors.New("quota") },
	}
	ls := NewLocalStorage(failing, helpers.TestClock(), log.NewNopLogger())
	k := KeyConfig{Name: "k", TTL: time.Hour}

	assert.NotPanics(t, func() { ls.SetItemWithExpiration(k, "v") })
	_, ok := ls.GetItemWithExpiration(k)
	assert.False(t, ok)
	assert.Len(t, failing.SetItemCalls(), 2)
}
