package service

import (
	"context"
	"sync"
	"testing"
	"time"
	"treasure_hunt_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySubmissionGuard(t *testing.T) {
	g := NewMemorySubmissionGuard()
	ctx := context.Background()
	key := SubmissionLockKey("1", "quest1", 2)
	assert.Equal(t, "hunt:submit:1:quest1:2", key)

	release, err := g.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)

	_, err = g.Acquire(ctx, key, time.Minute)
	assert.ErrorIs(t, err, util.ErrSubmissionInProgress)

	_, err = g.Acquire(ctx, SubmissionLockKey("1", "quest1", 3), time.Minute)
	assert.NoError(t, err, "other tasks are independent")

	release()
	release2, err := g.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	release2()
}

func TestMemorySubmissionGuard_Expiry(t *testing.T) {
	g := NewMemorySubmissionGuard()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	g.clock = func() time.Time { return now }
	ctx := context.Background()

	staleRelease, err := g.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	release, err := g.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	// the expired holder must not free the new holder's lock
	staleRelease()
	_, err = g.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, util.ErrSubmissionInProgress)

	release()
}

func TestMemorySubmissionGuard_Concurrent(t *testing.T) {
	g := NewMemorySubmissionGuard()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		acquired int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.Acquire(context.Background(), "k", time.Minute); err == nil {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, acquired)
}
