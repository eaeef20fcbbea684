// Package tokenstoretest holds the behaviour every tokenstore driver must
// satisfy, run from each driver's own tests.
package tokenstoretest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/tokenstore"
	"github.com/stretchr/testify/require"
)

// Harness builds a fresh store for a sub-test. Advance moves the store's
// notion of time forward so TTL expiry can be observed without sleeping.
type Harness struct {
	New     func(t *testing.T) tokenstore.Store
	Advance func(d time.Duration)
}

// Run executes the contract suite against the harness.
func Run(t *testing.T, h Harness) {
	t.Helper()

	t.Run("put then get", func(t *testing.T) {
		s := h.New(t)
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "k", "v1", time.Minute))
		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "v1", got)

		ok, err := s.Exists(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("get missing", func(t *testing.T) {
		s := h.New(t)

		_, err := s.Get(context.Background(), "missing")
		require.ErrorIs(t, err, tokenstore.ErrNotFound)

		ok, err := s.Exists(context.Background(), "missing")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("put overwrites and resets ttl", func(t *testing.T) {
		s := h.New(t)
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "k", "old", 10*time.Second))
		h.Advance(8 * time.Second)
		require.NoError(t, s.Put(ctx, "k", "new", 10*time.Second))
		h.Advance(8 * time.Second)

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "new", got)
	})

	t.Run("entries expire", func(t *testing.T) {
		s := h.New(t)
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "k", "v", 5*time.Second))
		h.Advance(6 * time.Second)

		_, err := s.Get(ctx, "k")
		require.ErrorIs(t, err, tokenstore.ErrNotFound)

		_, err = s.TakeOnce(ctx, "k")
		require.ErrorIs(t, err, tokenstore.ErrNotFound)

		ok, err := s.Exists(ctx, "k")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		s := h.New(t)
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "k", "v", 0))
		h.Advance(365 * 24 * time.Hour)

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "v", got)
	})

	t.Run("take once", func(t *testing.T) {
		s := h.New(t)
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "k", "v", time.Minute))

		got, err := s.TakeOnce(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "v", got)

		_, err = s.TakeOnce(ctx, "k")
		require.ErrorIs(t, err, tokenstore.ErrNotFound)

		_, err = s.Get(ctx, "k")
		require.ErrorIs(t, err, tokenstore.ErrNotFound)
	})

	t.Run("take once under contention", func(t *testing.T) {
		s := h.New(t)
		ctx := context.Background()

		const rounds = 5
		const callers = 64

		for round := range rounds {
			key := fmt.Sprintf("contended-%d", round)
			require.NoError(t, s.Put(ctx, key, "prize", time.Minute))

			var (
				wg      sync.WaitGroup
				start   = make(chan struct{})
				winners atomic.Int32
				misses  atomic.Int32
				other   atomic.Int32
			)
			for range callers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					v, err := s.TakeOnce(ctx, key)
					switch {
					case err == nil && v == "prize":
						winners.Add(1)
					case errors.Is(err, tokenstore.ErrNotFound):
						misses.Add(1)
					default:
						other.Add(1)
					}
				}()
			}
			close(start)
			wg.Wait()

			require.EqualValues(t, 1, winners.Load(), "round %d", round)
			require.EqualValues(t, callers-1, misses.Load(), "round %d", round)
			require.Zero(t, other.Load())
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := h.New(t)
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "k", "v", time.Minute))
		require.NoError(t, s.Delete(ctx, "k"))
		require.NoError(t, s.Delete(ctx, "k"))
		require.NoError(t, s.Delete(ctx, "never-existed"))

		_, err := s.Get(ctx, "k")
		require.ErrorIs(t, err, tokenstore.ErrNotFound)
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := h.New(t)
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, "session:alice", "a", time.Minute))
		require.NoError(t, s.Put(ctx, "session:bob", "b", time.Minute))
		require.NoError(t, s.Delete(ctx, "session:alice"))

		got, err := s.Get(ctx, "session:bob")
		require.NoError(t, err)
		require.Equal(t, "b", got)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, h.New(t).Ping(context.Background()))
	})
}
