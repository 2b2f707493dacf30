//go:build container
// +build container

package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
	"treasure_hunt_backend/internal/model"
	"treasure_hunt_backend/internal/util"
	"treasure_hunt_backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "hunt",
			"POSTGRES_PASSWORD": "hunt",
			"POSTGRES_DB":       "hunt",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://hunt:hunt@%s:%s/hunt?sslmode=disable", host, port.Port())
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	url := startPostgres(t, ctx)

	require.NoError(t, database.RunMigrations(url))
	// running twice is a no-op
	require.NoError(t, database.RunMigrations(url))

	pool, err := database.NewPool(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	store := NewPostgresStore(pool)
	require.NoError(t, store.Ping(ctx))

	require.NoError(t, store.CreateParticipant(ctx, "Ada"))
	require.NoError(t, store.CreateParticipant(ctx, "Grace"))

	participants, err := store.ListParticipants(ctx)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, "Ada", participants[0].Name)
	assert.Empty(t, participants[0].Submissions)
	assert.False(t, participants[0].CreatedAt.IsZero())

	ada := participants[0].ID
	sub := &model.Submission{
		ParticipantID: ada,
		QuestID:       "quest1",
		TaskID:        1,
		FileName:      "team.png",
		FileURL:       "https://x/team.png",
	}
	require.NoError(t, store.CreateSubmission(ctx, sub))

	err = store.CreateSubmission(ctx, sub)
	assert.ErrorIs(t, err, util.ErrRecordSubmissionFailed)
	assert.ErrorIs(t, err, util.ErrDuplicateSubmission)

	// same task id in another quest is a different key
	other := *sub
	other.QuestID = "quest2"
	require.NoError(t, store.CreateSubmission(ctx, &other))

	p, err := store.GetParticipant(ctx, ada)
	require.NoError(t, err)
	require.Len(t, p.Submissions, 2)
	assert.True(t, p.HasSubmission("quest1", 1))
	assert.False(t, p.Submissions[0].SubmittedAt.IsZero())

	_, err = store.GetParticipant(ctx, "999999")
	assert.ErrorIs(t, err, util.ErrParticipantNotFound)
	_, err = store.GetParticipant(ctx, "not-a-number")
	assert.ErrorIs(t, err, util.ErrParticipantNotFound)

	err = store.CreateSubmission(ctx, &model.Submission{ParticipantID: "999999", QuestID: "quest1", TaskID: 2, FileName: "a", FileURL: "b"})
	assert.ErrorIs(t, err, util.ErrRecordSubmissionFailed)
}

func TestPostgresStore_ConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	url := startPostgres(t, ctx)
	require.NoError(t, database.RunMigrations(url))

	pool, err := database.NewPool(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	store := NewPostgresStore(pool)
	require.NoError(t, store.CreateParticipant(ctx, "Ada"))
	participants, err := store.ListParticipants(ctx)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.CreateSubmission(ctx, &model.Submission{
				ParticipantID: participants[0].ID,
				QuestID:       "quest1",
				TaskID:        3,
				FileName:      fmt.Sprintf("plan-%d.pdf", i),
				FileURL:       "https://x/plan.pdf",
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, success)
}
