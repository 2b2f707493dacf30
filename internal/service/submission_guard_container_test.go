//go:build container
// +build container

package service

import (
	"context"
	"testing"
	"time"
	"treasure_hunt_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisSubmissionGuard(t *testing.T) {
	ctx := context.Background()

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer container.Terminate(ctx)

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	defer rdb.Close()

	g := NewRedisSubmissionGuard(rdb)
	key := SubmissionLockKey("1", "quest1", 1)

	release, err := g.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)

	_, err = g.Acquire(ctx, key, time.Minute)
	assert.ErrorIs(t, err, util.ErrSubmissionInProgress)

	release()
	release2, err := g.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)

	// a stale token leaves the current holder alone
	require.NoError(t, rdb.Set(ctx, key, "someone-else", time.Minute).Err())
	release2()
	assert.Equal(t, "someone-else", rdb.Get(ctx, key).Val())
}
