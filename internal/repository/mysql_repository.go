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

	"gorm.io/gorm"
)

type participantRecord struct {
	ID          uint               `gorm:"primaryKey"`
	Name        string             `gorm:"size:255;not null"`
	CreatedAt   time.Time          `gorm:"autoCreateTime"`
	Submissions []submissionRecord `gorm:"foreignKey:ParticipantID;constraint:OnDelete:CASCADE"`
}

func (participantRecord) TableName() string { return participantsTable }

type submissionRecord struct {
	ID            uint      `gorm:"primaryKey"`
	ParticipantID uint      `gorm:"not null;uniqueIndex:idx_submission_participant_quest_task,priority:1"`
	QuestID       string    `gorm:"size:64;not null;default:'';uniqueIndex:idx_submission_participant_quest_task,priority:2"`
	TaskID        int       `gorm:"not null;uniqueIndex:idx_submission_participant_quest_task,priority:3"`
	FileName      string    `gorm:"size:255;not null"`
	FileURL       string    `gorm:"size:1024;not null"`
	SubmittedAt   time.Time `gorm:"autoCreateTime"`
}

func (submissionRecord) TableName() string { return submissionsTable }

func (r *participantRecord) toModel() model.Participant {
	p := model.Participant{
		ID:          model.ID(strconv.FormatUint(uint64(r.ID), 10)),
		Name:        r.Name,
		CreatedAt:   model.NewTimestamp(r.CreatedAt),
		Submissions: make([]model.Submission, 0, len(r.Submissions)),
	}
	for _, s := range r.Submissions {
		p.Submissions = append(p.Submissions, model.Submission{
			ID:            model.ID(strconv.FormatUint(uint64(s.ID), 10)),
			ParticipantID: p.ID,
			QuestID:       s.QuestID,
			TaskID:        s.TaskID,
			FileName:      s.FileName,
			FileURL:       s.FileURL,
			SubmittedAt:   model.NewTimestamp(s.SubmittedAt),
		})
	}
	return p
}

// MySQLStore keeps participants in a MySQL database through gorm.
type MySQLStore struct {
	DB *gorm.DB
}

func NewMySQLStore(db *gorm.DB) *MySQLStore {
	return &MySQLStore{DB: db}
}

// Migrate creates or updates both tables and the unique submission index.
func (s *MySQLStore) Migrate() error {
	return s.DB.AutoMigrate(&participantRecord{}, &submissionRecord{})
}

func (s *MySQLStore) ListParticipants(ctx context.Context) (participants []model.Participant, err error) {
	defer func(start time.Time) { monitoring.ObserveBackend("fetch_participants", start, err) }(time.Now())

	var records []participantRecord
	err = s.DB.WithContext(ctx).
		Preload("Submissions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}

	participants = make([]model.Participant, 0, len(records))
	for i := range records {
		participants = append(participants, records[i].toModel())
	}
	return participants, nil
}

func (s *MySQLStore) GetParticipant(ctx context.Context, id model.ID) (p *model.Participant, err error) {
	defer func(start time.Time) { monitoring.ObserveBackend("get_participant", start, err) }(time.Now())

	key, convErr := strconv.ParseUint(id.String(), 10, 64)
	if convErr != nil {
		return nil, fmt.Errorf("%w: %s", util.ErrParticipantNotFound, id)
	}

	var record participantRecord
	err = s.DB.WithContext(ctx).
		Preload("Submissions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&record, key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", util.ErrParticipantNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
	}

	participant := record.toModel()
	return &participant, nil
}

func (s *MySQLStore) CreateParticipant(ctx context.Context, name string) (err error) {
	defer func(start time.Time) { monitoring.ObserveBackend("create_participant", start, err) }(time.Now())

	if err = s.DB.WithContext(ctx).Create(&participantRecord{Name: name}).Error; err != nil {
		return fmt.Errorf("%w: %w", util.ErrCreateParticipantFailed, err)
	}
	return nil
}

func (s *MySQLStore) CreateSubmission(ctx context.Context, sub *model.Submission) (err error) {
	defer func(start time.Time) { monitoring.ObserveBackend("record_submission", start, err) }(time.Now())

	participantID, convErr := strconv.ParseUint(sub.ParticipantID.String(), 10, 64)
	if convErr != nil {
		return fmt.Errorf("%w: %w: %s", util.ErrRecordSubmissionFailed, util.ErrParticipantNotFound, sub.ParticipantID)
	}

	record := &submissionRecord{
		ParticipantID: uint(participantID),
		QuestID:       sub.QuestID,
		TaskID:        sub.TaskID,
		FileName:      sub.FileName,
		FileURL:       sub.FileURL,
	}
	err = s.DB.WithContext(ctx).Create(record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w: %w", util.ErrRecordSubmissionFailed, util.ErrDuplicateSubmission, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", util.ErrRecordSubmissionFailed, err)
	}
	return nil
}

func (s *MySQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
