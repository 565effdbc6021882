package tts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPendingRegistryOwnership(t *testing.T) {
	t.Parallel()

	registry := newPendingRegistry()

	first, owner := registry.begin("key")
	require.True(t, owner)

	second, owner := registry.begin("key")
	require.False(t, owner)
	require.Same(t, first, second)

	other, owner := registry.begin("other")
	require.True(t, owner)
	require.NotSame(t, first, other)
}

func TestPendingRegistrySettleReleasesWaiters(t *testing.T) {
	t.Parallel()

	registry := newPendingRegistry()
	call, owner := registry.begin("key")
	require.True(t, owner)

	want := &SynthesisResult{URL: "https://cdn.test/audio.mp3", Format: "mp3"}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := call.wait(context.Background())
			require.NoError(t, err)
			require.Same(t, want, got)
		}()
	}

	registry.settle("key", call, want, nil)
	wg.Wait()

	require.Zero(t, registry.size())

	// A later request with the same key starts a fresh call.
	fresh, owner := registry.begin("key")
	require.True(t, owner)
	require.NotSame(t, call, fresh)
}

func TestPendingRegistrySettlePropagatesError(t *testing.T) {
	t.Parallel()

	registry := newPendingRegistry()
	call, _ := registry.begin("key")

	boom := errors.New("synthesis exploded")
	registry.settle("key", call, nil, boom)

	res, err := call.wait(context.Background())
	require.Nil(t, res)
	require.ErrorIs(t, err, boom)
	require.Zero(t, registry.size())
}

func TestPendingWaitHonorsContext(t *testing.T) {
	t.Parallel()

	registry := newPendingRegistry()
	call, _ := registry.begin("key")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := call.wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
