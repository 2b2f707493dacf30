package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	"treasure_hunt_backend/internal/model"
	"treasure_hunt_backend/internal/util"
	"treasure_hunt_backend/pkg/monitoring"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresStore keeps participants in a Postgres database this service owns.
// The unique key on (participant_id, quest_id, task_id) rejects duplicate
// submissions.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) ListParticipants(ctx context.Context) (participants []model.Participant, err error) {
	defer func(start time.Time) { monitoring.ObserveBackend("fetch_participants", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, `SELECT id, name, created_at FROM participants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}
	participants, err = pgx.CollectRows(rows, scanParticipant)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT id, participant_id, quest_id, task_id, file_name, file_url, submitted_at
		FROM submissions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}
	submissions, err := pgx.CollectRows(rows, scanSubmission)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}

	index := make(map[model.ID]int, len(participants))
	for i := range participants {
		participants[i].Submissions = []model.Submission{}
		index[participants[i].ID] = i
	}
	for _, sub := range submissions {
		if i, ok := index[sub.ParticipantID]; ok {
			participants[i].Submissions = append(participants[i].Submissions, sub)
		}
	}

	return participants, nil
}

func (s *PostgresStore) GetParticipant(ctx context.Context, id model.ID) (p *model.Participant, err error) {
	defer func(start time.Time) { monitoring.ObserveBackend("get_participant", start, err) }(time.Now())

	key, convErr := strconv.ParseInt(id.String(), 10, 64)
	if convErr != nil {
		return nil, fmt.Errorf("%w: %s", util.ErrParticipantNotFound, id)
	}

	rows, err := s.pool.Query(ctx, `SELECT id, name, created_at FROM participants WHERE id = $1`, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}
	participant, err := pgx.CollectExactlyOneRow(rows, scanParticipant)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", util.ErrParticipantNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT id, participant_id, quest_id, task_id, file_name, file_url, submitted_at
		FROM submissions WHERE participant_id = $1 ORDER BY id`, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}
	participant.Submissions, err = pgx.CollectRows(rows, scanSubmission)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}
	if participant.Submissions == nil {
		participant.Submissions = []model.Submission{}
	}

	return &participant, nil
}

func (s *PostgresStore) CreateParticipant(ctx context.Context, name string) (err error) {
	defer func(start time.Time) { monitoring.ObserveBackend("create_participant", start, err) }(time.Now())

	if _, err = s.pool.Exec(ctx, `INSERT INTO participants (name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("%w: %w", util.ErrCreateParticipantFailed, err)
	}
	return nil
}

func (s *PostgresStore) CreateSubmission(ctx context.Context, sub *model.Submission) (err error) {
	defer func(start time.Time) { monitoring.ObserveBackend("record_submission", start, err) }(time.Now())

	participantID, convErr := strconv.ParseInt(sub.ParticipantID.String(), 10, 64)
	if convErr != nil {
		return fmt.Errorf("%w: %w: %s", util.ErrRecordSubmissionFailed, util.ErrParticipantNotFound, sub.ParticipantID)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO submissions (participant_id, quest_id, task_id, file_name, file_url)
		VALUES ($1, $2, $3, $4, $5)`,
		participantID, sub.QuestID, sub.TaskID, sub.FileName, sub.FileURL)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %w: %w", util.ErrRecordSubmissionFailed, util.ErrDuplicateSubmission, err)
	}
	return fmt.Errorf("%w: %w", util.ErrRecordSubmissionFailed, err)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanParticipant(row pgx.CollectableRow) (model.Participant, error) {
	var (
		p         model.Participant
		id        int64
		createdAt time.Time
	)
	if err := row.Scan(&id, &p.Name, &createdAt); err != nil {
		return p, err
	}
	p.ID = model.ID(strconv.FormatInt(id, 10))
	p.CreatedAt = model.NewTimestamp(createdAt)
	return p, nil
}

func scanSubmission(row pgx.CollectableRow) (model.Submission, error) {
	var (
		sub               model.Submission
		id, participantID int64
		submittedAt       time.Time
	)
	if err := row.Scan(&id, &participantID, &sub.QuestID, &sub.TaskID, &sub.FileName, &sub.FileURL, &submittedAt); err != nil {
		return sub, err
	}
	sub.ID = model.ID(strconv.FormatInt(id, 10))
	sub.ParticipantID = model.ID(strconv.FormatInt(participantID, 10))
	sub.SubmittedAt = model.NewTimestamp(submittedAt)
	return sub, nil
}
