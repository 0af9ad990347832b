// Package storetest holds the behaviour every core.Store adapter must share.
// Adapter packages call Run from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/aretw0/quill/pkg/core"
)

// Timeout bounds every wait on a stream.
const Timeout = 2 * time.Second

// Factory returns a fresh, initialized store. Run closes it.
type Factory func(t *testing.T) core.Store

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	open := func(t *testing.T) (core.Store, context.Context) {
		t.Helper()
		s := newStore(t)
		t.Cleanup(func() { _ = s.Close() })
		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)
		return s, ctx
	}

	t.Run("Insert assigns increasing ids", func(t *testing.T) {
		s, ctx := open(t)

		first, err := s.Insert(ctx, core.Record{Title: "a", ColorKey: "YELLOW"})
		require.NoError(t, err)
		second, err := s.Insert(ctx, core.Record{Title: "b", ColorKey: "GREEN"})
		require.NoError(t, err)

		assert.NotZero(t, first)
		assert.Greater(t, second, first)
	})

	t.Run("Insert ignores caller id", func(t *testing.T) {
		s, ctx := open(t)

		id, err := s.Insert(ctx, core.Record{ID: 999, Title: "x"})
		require.NoError(t, err)
		assert.NotEqual(t, core.ID(999), id)

		rec := Next(t, ObserveOne(t, ctx, s, id))
		require.NotNil(t, rec)
		assert.Equal(t, id, rec.ID)
	})

	t.Run("ObserveAll is ordered by id descending", func(t *testing.T) {
		s, ctx := open(t)
		for _, title := range []string{"one", "two", "three"} {
			_, err := s.Insert(ctx, core.Record{Title: title, ColorKey: "WHITE"})
			require.NoError(t, err)
		}

		rows := Next(t, ObserveAll(t, ctx, s))
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"three", "two", "one"}, titles(rows))
		assert.Greater(t, rows[0].ID, rows[1].ID)
		assert.Greater(t, rows[1].ID, rows[2].ID)
	})

	t.Run("ObserveAll starts empty", func(t *testing.T) {
		s, ctx := open(t)
		assert.Empty(t, Next(t, ObserveAll(t, ctx, s)))
	})

	t.Run("ObserveOne yields nil for absent id", func(t *testing.T) {
		s, ctx := open(t)
		assert.Nil(t, Next(t, ObserveOne(t, ctx, s, 42)))
	})

	t.Run("ObserveAll re-emits after every mutation", func(t *testing.T) {
		s, ctx := open(t)
		stream := ObserveAll(t, ctx, s)
		require.Empty(t, Next(t, stream))

		id, err := s.Insert(ctx, core.Record{Title: "Groceries", Body: "milk", ColorKey: "PINK"})
		require.NoError(t, err)
		rows := WaitFor(t, stream, func(rows []core.Record) bool { return len(rows) == 1 })
		assert.Equal(t, core.Record{ID: id, Title: "Groceries", Body: "milk", ColorKey: "PINK"}, rows[0])

		require.NoError(t, s.Update(ctx, core.Record{ID: id, Title: "Groceries", Body: "milk, eggs", ColorKey: "PINK"}))
		rows = WaitFor(t, stream, func(rows []core.Record) bool {
			return len(rows) == 1 && rows[0].Body == "milk, eggs"
		})
		assert.Equal(t, id, rows[0].ID)

		require.NoError(t, s.Delete(ctx, core.Record{ID: id}))
		WaitFor(t, stream, func(rows []core.Record) bool { return len(rows) == 0 })
	})

	t.Run("ObserveOne follows the row until deletion", func(t *testing.T) {
		s, ctx := open(t)
		id, err := s.Insert(ctx, core.Record{Title: "T", Body: "b", ColorKey: "GREEN"})
		require.NoError(t, err)

		stream := ObserveOne(t, ctx, s, id)
		rec := Next(t, stream)
		require.NotNil(t, rec)
		assert.Equal(t, "T", rec.Title)

		require.NoError(t, s.Update(ctx, core.Record{ID: id, Title: "T2", Body: "b", ColorKey: "GREEN"}))
		rec = WaitFor(t, stream, func(r *core.Record) bool { return r != nil && r.Title == "T2" })
		assert.Equal(t, id, rec.ID)

		require.NoError(t, s.Delete(ctx, core.Record{ID: id}))
		WaitFor(t, stream, func(r *core.Record) bool { return r == nil })
	})

	t.Run("Update of missing row is a no-op", func(t *testing.T) {
		s, ctx := open(t)
		require.NoError(t, s.Update(ctx, core.Record{ID: 7, Title: "ghost"}))

		assert.Empty(t, Next(t, ObserveAll(t, ctx, s)))
		assert.Nil(t, Next(t, ObserveOne(t, ctx, s, 7)))
	})

	t.Run("Delete of missing row is a no-op", func(t *testing.T) {
		s, ctx := open(t)
		keep, err := s.Insert(ctx, core.Record{Title: "keep"})
		require.NoError(t, err)
		gone, err := s.Insert(ctx, core.Record{Title: "gone"})
		require.NoError(t, err)

		ids := func() []core.ID {
			sub, cancel := context.WithCancel(ctx)
			defer cancel()
			rows := Next(t, ObserveAll(t, sub, s))
			out := make([]core.ID, len(rows))
			for i, r := range rows {
				out[i] = r.ID
			}
			return out
		}

		require.NoError(t, s.Delete(ctx, core.Record{ID: gone + 100}))
		assert.Equal(t, []core.ID{gone, keep}, ids())

		require.NoError(t, s.Delete(ctx, core.Record{ID: gone}))
		assert.Equal(t, []core.ID{keep}, ids())

		require.NoError(t, s.Delete(ctx, core.Record{ID: gone}))
		assert.Equal(t, []core.ID{keep}, ids())
	})

	t.Run("Ids are never reused", func(t *testing.T) {
		s, ctx := open(t)
		first, err := s.Insert(ctx, core.Record{Title: "a"})
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, core.Record{ID: first}))

		second, err := s.Insert(ctx, core.Record{Title: "b"})
		require.NoError(t, err)
		assert.Greater(t, second, first)
	})

	t.Run("Cancelling ctx closes the stream", func(t *testing.T) {
		s, ctx := open(t)
		subCtx, cancel := context.WithCancel(ctx)
		stream := ObserveAll(t, subCtx, s)
		Next(t, stream)

		cancel()
		Closed(t, stream)
	})

	t.Run("Close ends open streams", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		all := ObserveAll(t, ctx, s)
		one := ObserveOne(t, ctx, s, 1)
		Next(t, all)
		Next(t, one)

		require.NoError(t, s.Close())
		Closed(t, all)
		Closed(t, one)
	})

	t.Run("Unknown color keys are kept verbatim", func(t *testing.T) {
		s, ctx := open(t)
		id, err := s.Insert(ctx, core.Record{Title: "odd", ColorKey: "MAUVE"})
		require.NoError(t, err)

		rec := Next(t, ObserveOne(t, ctx, s, id))
		require.NotNil(t, rec)
		assert.Equal(t, "MAUVE", rec.ColorKey)
		assert.Equal(t, core.FallbackColor, rec.ToNote().Color)
	})

	t.Run("Slow observer does not block writers", func(t *testing.T) {
		s, ctx := open(t)
		stream := ObserveAll(t, ctx, s)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 20; i++ {
				_, _ = s.Insert(ctx, core.Record{Title: "burst"})
			}
		}()

		select {
		case <-done:
		case <-time.After(Timeout):
			t.Fatal("writers blocked on an unread stream")
		}
		WaitFor(t, stream, func(rows []core.Record) bool { return len(rows) == 20 })
	})

	t.Run("Round trip", func(t *testing.T) {
		s, ctx := open(t)
		rapid.Check(t, func(rt *rapid.T) {
			want := core.Record{
				Title:    TitleGen().Draw(rt, "title"),
				Body:     BodyGen().Draw(rt, "body"),
				ColorKey: rapid.SampledFrom(colorKeys()).Draw(rt, "color"),
			}
			id, err := s.Insert(ctx, want)
			if err != nil {
				rt.Fatalf("Insert failed: %v", err)
			}
			want.ID = id

			got, err := s.ObserveOne(ctx, id)
			if err != nil {
				rt.Fatalf("ObserveOne failed: %v", err)
			}
			subCtx, cancel := context.WithTimeout(ctx, Timeout)
			defer cancel()
			select {
			case rec := <-got:
				if rec == nil {
					rt.Fatalf("note %d missing after insert", id)
				}
				if *rec != want {
					rt.Fatalf("round trip mismatch: want %+v, got %+v", want, *rec)
				}
			case <-subCtx.Done():
				rt.Fatalf("no snapshot for note %d", id)
			}
		})
	})
}

// TitleGen generates note titles, including the empty one.
func TitleGen() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z0-9 .,!?#-]{0,40}`)
}

// BodyGen generates multi-line note bodies, bullets included.
func BodyGen() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.Just(""),
		rapid.StringMatching(`[A-Za-z0-9 .,!?#•\n-]{1,200}`),
	)
}

func colorKeys() []string {
	keys := make([]string, 0, len(core.Palette()))
	for _, c := range core.Palette() {
		keys = append(keys, c.Key())
	}
	return keys
}

func titles(rows []core.Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Title
	}
	return out
}

// ObserveAll subscribes or fails the test.
func ObserveAll(t *testing.T, ctx context.Context, s core.Store) <-chan []core.Record {
	t.Helper()
	ch, err := s.ObserveAll(ctx)
	require.NoError(t, err)
	return ch
}

// ObserveOne subscribes or fails the test.
func ObserveOne(t *testing.T, ctx context.Context, s core.Store, id core.ID) <-chan *core.Record {
	t.Helper()
	ch, err := s.ObserveOne(ctx, id)
	require.NoError(t, err)
	return ch
}

// Next receives one value or fails after Timeout.
func Next[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "stream closed unexpectedly")
		return v
	case <-time.After(Timeout):
		t.Fatal("timed out waiting for snapshot")
	}
	var zero T
	return zero
}

// WaitFor receives until ok(v) holds. Intermediate or repeated snapshots are
// skipped.
func WaitFor[T any](t *testing.T, ch <-chan T, ok func(T) bool) T {
	t.Helper()
	deadline := time.After(Timeout)
	for {
		select {
		case v, open := <-ch:
			require.True(t, open, "stream closed before condition held")
			if ok(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timed out waiting for condition")
		}
	}
}

// Closed asserts that ch is closed within Timeout, draining pending values.
func Closed[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	deadline := time.After(Timeout)
	for {
		select {
		case _, open := <-ch:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("stream still open")
		}
	}
}
