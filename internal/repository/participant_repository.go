package repository

import (
	"context"
	"fmt"
	"net/url"
	"treasure_hunt_backend/internal/model"
	"treasure_hunt_backend/internal/util"
	"treasure_hunt_backend/pkg/supabase"
)

// ParticipantStore persists participants and their submissions. Errors are
// wrapped with the util kinds: ErrFetchFailed for reads,
// ErrCreateParticipantFailed and ErrRecordSubmissionFailed for writes.
type ParticipantStore interface {
	ListParticipants(ctx context.Context) ([]model.Participant, error)
	GetParticipant(ctx context.Context, id model.ID) (*model.Participant, error)
	CreateParticipant(ctx context.Context, name string) error
	CreateSubmission(ctx context.Context, sub *model.Submission) error
	Ping(ctx context.Context) error
}

const (
	participantsTable = "participants"
	submissionsTable  = "submissions"
	participantSelect = "*,submissions(*)"
)

// submissionRow is what gets inserted; id and submitted_at are left to the store.
type submissionRow struct {
	ParticipantID model.ID `json:"participant_id"`
	QuestID       string   `json:"quest_id"`
	TaskID        int      `json:"task_id"`
	FileName      string   `json:"file_name"`
	FileURL       string   `json:"file_url"`
}

// PostgRESTStore talks to the hosted data API.
type PostgRESTStore struct {
	client *supabase.Client
}

func NewPostgRESTStore(client *supabase.Client) *PostgRESTStore {
	return &PostgRESTStore{client: client}
}

func (s *PostgRESTStore) ListParticipants(ctx context.Context) ([]model.Participant, error) {
	var participants []model.Participant
	query := url.Values{"select": {participantSelect}}
	if err := s.client.Select(ctx, "fetch_participants", participantsTable, query, &participants); err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}
	return participants, nil
}

func (s *PostgRESTStore) GetParticipant(ctx context.Context, id model.ID) (*model.Participant, error) {
	var participants []model.Participant
	query := url.Values{
		"select": {participantSelect},
		"id":     {"eq." + id.String()},
	}
	if err := s.client.Select(ctx, "get_participant", participantsTable, query, &participants); err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: %s", util.ErrParticipantNotFound, id)
	}
	return &participants[0], nil
}

func (s *PostgRESTStore) CreateParticipant(ctx context.Context, name string) error {
	row := map[string]string{"name": name}
	if err := s.client.Insert(ctx, "create_participant", participantsTable, row, supabase.PreferMinimal, nil); err != nil {
		return fmt.Errorf("%w: %w", util.ErrCreateParticipantFailed, err)
	}
	return nil
}

func (s *PostgRESTStore) CreateSubmission(ctx context.Context, sub *model.Submission) error {
	row := submissionRow{
		ParticipantID: sub.ParticipantID,
		QuestID:       sub.QuestID,
		TaskID:        sub.TaskID,
		FileName:      sub.FileName,
		FileURL:       sub.FileURL,
	}
	err := s.client.Insert(ctx, "record_submission", submissionsTable, row, supabase.PreferMinimal, nil)
	if err == nil {
		return nil
	}
	if supabase.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %w: %w", util.ErrRecordSubmissionFailed, util.ErrDuplicateSubmission, err)
	}
	return fmt.Errorf("%w: %w", util.ErrRecordSubmissionFailed, err)
}

func (s *PostgRESTStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, participantsTable)
}
