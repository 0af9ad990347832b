package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quill/pkg/adapters/memory"
	"github.com/aretw0/quill/pkg/adapters/storetest"
	"github.com/aretw0/quill/pkg/core"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.Store {
		return memory.NewStore(nil)
	})
}

func TestCancelledContextRejectsWrites(t *testing.T) {
	s := memory.NewStore(nil)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Insert(ctx, core.Record{Title: "late"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, core.ID(0), s.State().(memory.StoreState).LastID)
}

func TestIdleKeyIsReleased(t *testing.T) {
	s := memory.NewStore(nil)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	storetest.Next(t, storetest.ObserveOne(t, ctx, s, 1))
	require.Equal(t, 1, s.State().(memory.StoreState).ObservedIDs)

	cancel()
	require.Eventually(t, func() bool {
		return s.State().(memory.StoreState).ObservedIDs == 0
	}, storetest.Timeout, 10*time.Millisecond)
}
