package service

import (
	"context"
	"fmt"
	"sync"
	"time"
	"treasure_hunt_backend/internal/util"
	"treasure_hunt_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmissionGuard serializes submissions for the same participant and task.
// Acquire fails with ErrSubmissionInProgress while another holder has the key;
// the lock expires after ttl if release is never called.
type SubmissionGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

func SubmissionLockKey(participantID, questID string, taskID int) string {
	return fmt.Sprintf("hunt:submit:%s:%s:%d", participantID, questID, taskID)
}

// releaseScript deletes the key only if it still holds our token, so an expired
// lock taken over by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisSubmissionGuard struct {
	rdb *redis.Client
}

func NewRedisSubmissionGuard(rdb *redis.Client) *RedisSubmissionGuard {
	return &RedisSubmissionGuard{rdb: rdb}
}

func (g *RedisSubmissionGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()

	ok, err := g.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire submission lock: %w", err)
	}
	if !ok {
		return nil, util.ErrSubmissionInProgress
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, g.rdb, []string{key}, token).Err(); err != nil {
			logger.Log.Warn("Failed to release submission lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// MemorySubmissionGuard is the single-process fallback when redis is disabled.
type MemorySubmissionGuard struct {
	mu    sync.Mutex
	held  map[string]memoryLock
	clock func() time.Time
}

type memoryLock struct {
	token   string
	expires time.Time
}

func NewMemorySubmissionGuard() *MemorySubmissionGuard {
	return &MemorySubmissionGuard{
		held:  make(map[string]memoryLock),
		clock: time.Now,
	}
}

func (g *MemorySubmissionGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock()
	if lock, ok := g.held[key]; ok && now.Before(lock.expires) {
		return nil, util.ErrSubmissionInProgress
	}

	token := uuid.NewString()
	g.held[key] = memoryLock{token: token, expires: now.Add(ttl)}

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if lock, ok := g.held[key]; ok && lock.token == token {
			delete(g.held, key)
		}
	}, nil
}
