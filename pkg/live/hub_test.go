package live

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Key int
	Val string
}

// table is a tiny in-memory medium for exercising the hub.
type table struct {
	mu    sync.Mutex
	rows  map[int]string
	loads int
	fail  error
}

func (tb *table) loader() Loader[int, row] {
	return Loader[int, row]{
		All: func(ctx context.Context) ([]row, error) {
			tb.mu.Lock()
			defer tb.mu.Unlock()
			tb.loads++
			if tb.fail != nil {
				return nil, tb.fail
			}
			out := make([]row, 0, len(tb.rows))
			for k, v := range tb.rows {
				out = append(out, row{k, v})
			}
			sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
			return out, nil
		},
		One: func(ctx context.Context, key int) (*row, error) {
			tb.mu.Lock()
			defer tb.mu.Unlock()
			tb.loads++
			if tb.fail != nil {
				return nil, tb.fail
			}
			v, ok := tb.rows[key]
			if !ok {
				return nil, nil
			}
			return &row{key, v}, nil
		},
	}
}

func (tb *table) set(k int, v string) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.rows[k] = v
}

func (tb *table) loadCount() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.loads
}

func TestHub_ObserveAndNotify(t *testing.T) {
	tb := &table{rows: map[int]string{1: "a"}}
	h := NewHub(tb.loader(), nil)
	defer h.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	all, err := h.ObserveAll(ctx)
	require.NoError(t, err)
	one, err := h.ObserveOne(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, []row{{1, "a"}}, recv(t, all))
	assert.Nil(t, recv(t, one))

	tb.set(2, "b")
	h.Notify(ctx, 2)

	assert.Equal(t, []row{{2, "b"}, {1, "a"}}, recv(t, all))
	assert.Equal(t, &row{2, "b"}, recv(t, one))
}

func TestHub_UnobservedQueriesAreNotReloaded(t *testing.T) {
	tb := &table{rows: map[int]string{}}
	h := NewHub(tb.loader(), nil)
	defer h.Close()

	h.Notify(context.Background(), 1, 2, 3)
	assert.Equal(t, 0, tb.loadCount())
}

func TestHub_IdleKeyIsDropped(t *testing.T) {
	tb := &table{rows: map[int]string{}}
	h := NewHub(tb.loader(), nil)
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	one, err := h.ObserveOne(ctx, 5)
	require.NoError(t, err)
	recv(t, one)

	_, keys := h.Observers()
	require.Equal(t, 1, keys)

	cancel()
	closed(t, one)
	assert.Eventually(t, func() bool {
		_, keys := h.Observers()
		return keys == 0
	}, time.Second, 10*time.Millisecond)
}

func TestHub_LoadFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	tb := &table{rows: map[int]string{}, fail: boom}
	h := NewHub(tb.loader(), nil)
	defer h.Close()

	_, err := h.ObserveAll(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = h.ObserveOne(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
}

func TestHub_NotifyIgnoresCallerCancellation(t *testing.T) {
	tb := &table{rows: map[int]string{}}
	h := NewHub(tb.loader(), nil)
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	all, err := h.ObserveAll(ctx)
	require.NoError(t, err)
	recv(t, all)

	writeCtx, writeCancel := context.WithCancel(context.Background())
	writeCancel()
	tb.set(1, "x")
	h.Notify(writeCtx, 1)

	assert.Equal(t, []row{{1, "x"}}, recv(t, all))
}

func TestHub_Close(t *testing.T) {
	tb := &table{rows: map[int]string{}}
	h := NewHub(tb.loader(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	all, err := h.ObserveAll(ctx)
	require.NoError(t, err)
	h.Close()
	closed(t, all)

	_, err = h.ObserveAll(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	h.Notify(ctx, 1)
}
