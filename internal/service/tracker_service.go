package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"treasure_hunt_backend/internal/config"
	"treasure_hunt_backend/internal/model"
	"treasure_hunt_backend/internal/repository"
	"treasure_hunt_backend/internal/util"
	"treasure_hunt_backend/pkg/logger"
	"treasure_hunt_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// videoGrace absorbs container rounding when checking video length.
const videoGrace = time.Second

const compensateTimeout = 10 * time.Second

// TaskUpload is one file submitted as evidence for a task.
type TaskUpload struct {
	ParticipantID model.ID
	QuestID       string
	TaskID        int
	FileName      string
	Size          int64
	Content       io.Reader
}

type TrackerService struct {
	cfg      config.TrackerConfig
	store    repository.ParticipantStore
	storage  StorageProvider
	progress *ProgressService
	guard    SubmissionGuard
	prober   util.VideoProber
	notifier Notifier
}

// NewTrackerService wires the submission flow. guard and notifier fall back to
// in-memory and no-op implementations when nil; a nil prober skips the video
// length check.
func NewTrackerService(
	cfg config.TrackerConfig,
	store repository.ParticipantStore,
	storage StorageProvider,
	progress *ProgressService,
	guard SubmissionGuard,
	prober util.VideoProber,
	notifier Notifier,
) *TrackerService {
	if guard == nil {
		guard = NewMemorySubmissionGuard()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &TrackerService{
		cfg:      cfg,
		store:    store,
		storage:  storage,
		progress: progress,
		guard:    guard,
		prober:   prober,
		notifier: notifier,
	}
}

func (s *TrackerService) Progress() *ProgressService {
	return s.progress
}

func (s *TrackerService) ListParticipants(ctx context.Context) ([]model.Participant, error) {
	return s.store.ListParticipants(ctx)
}

func (s *TrackerService) GetParticipant(ctx context.Context, id model.ID) (*model.Participant, error) {
	return s.store.GetParticipant(ctx, id)
}

func (s *TrackerService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// RegisterParticipant creates a participant. Blank names are rejected without
// touching the store.
func (s *TrackerService) RegisterParticipant(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return util.ErrBlankName
	}

	if err := s.store.CreateParticipant(ctx, name); err != nil {
		return err
	}

	monitoring.Registrations.Inc()
	logger.Log.Info("Participant registered", zap.String("name", name))
	s.notifier.ParticipantRegistered(ctx, name)
	return nil
}

// SubmitTask uploads the file and records the submission. If recording fails
// after a successful upload the object is deleted again, unless the store
// reports a duplicate: that object backs the row already recorded.
func (s *TrackerService) SubmitTask(ctx context.Context, upload TaskUpload) (*model.Submission, error) {
	sub, err := s.submit(ctx, upload)

	questLabel := upload.QuestID
	if _, ok := s.progress.Catalog().Quest(questLabel); !ok {
		questLabel = "unknown"
	}
	monitoring.Submissions.WithLabelValues(questLabel, submissionOutcome(err)).Inc()
	return sub, err
}

func (s *TrackerService) submit(ctx context.Context, upload TaskUpload) (*model.Submission, error) {
	quest, ok := s.progress.Catalog().Quest(upload.QuestID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", util.ErrQuestNotFound, upload.QuestID)
	}
	task, ok := quest.Task(upload.TaskID)
	if !ok {
		return nil, fmt.Errorf("%w: %d in %s", util.ErrTaskNotFound, upload.TaskID, quest.ID)
	}

	fileName := util.SanitizeFileName(upload.FileName)
	if fileName == "" {
		return nil, fmt.Errorf("%w: %q", util.ErrInvalidFileName, upload.FileName)
	}

	if limit := s.cfg.MaxUploadMB << 20; limit > 0 && upload.Size > limit {
		return nil, fmt.Errorf("%w: %d bytes", util.ErrFileTooLarge, upload.Size)
	}

	detected, content, err := util.SniffContent(upload.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %w", util.ErrUploadFailed, err)
	}
	if !util.ParseAccept(task.AcceptedFiles).Allows(fileName, detected) {
		return nil, fmt.Errorf("%w: %s is %s, want %s", util.ErrFileTypeNotAccepted, fileName, detected.String(), task.AcceptedFiles)
	}

	release, err := s.guard.Acquire(ctx, SubmissionLockKey(upload.ParticipantID.String(), quest.ID, task.ID), s.lockTTL())
	if err != nil {
		return nil, err
	}
	defer release()

	// gating runs under the guard so a concurrent submit for the same task
	// sees the other's row once it gets the lock
	participantID := upload.ParticipantID
	var participant *model.Participant
	if s.cfg.EnforceGating {
		participant, err = s.store.GetParticipant(ctx, upload.ParticipantID)
		if err != nil {
			return nil, err
		}

		// the store may resolve "007" to participant 7; lock and record
		// under the id it hands back
		if participant.ID != "" && participant.ID != participantID {
			participantID = participant.ID
			releaseCanonical, err := s.guard.Acquire(ctx, SubmissionLockKey(participantID.String(), quest.ID, task.ID), s.lockTTL())
			if err != nil {
				return nil, err
			}
			defer releaseCanonical()
		}

		if s.progress.locked(participant, &quest) {
			return nil, fmt.Errorf("%w: %s", util.ErrQuestLocked, quest.ID)
		}
		if participant.HasSubmission(quest.ID, task.ID) {
			return nil, fmt.Errorf("%w: task %d in %s", util.ErrTaskAlreadyCompleted, task.ID, quest.ID)
		}
	}

	if task.MaxDurationSeconds > 0 && s.prober != nil && util.IsVideo(detected.String()) {
		spooled, cleanup, err := s.checkVideoLength(ctx, content, task)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		content = spooled
	}

	key := SubmissionKey(participantID.String(), quest.ID, task.ID, fileName)
	fileURL, err := s.storage.Upload(ctx, key, content, upload.Size, contentType(detected.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrUploadFailed, err)
	}

	sub := &model.Submission{
		ParticipantID: participantID,
		QuestID:       quest.ID,
		TaskID:        task.ID,
		FileName:      fileName,
		FileURL:       fileURL,
		SubmittedAt:   model.NewTimestamp(time.Now().UTC()),
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		// a duplicate shares its key with the row already recorded, so the
		// object belongs to that row and must stay
		if s.cfg.CompensateOrphans && !errors.Is(err, util.ErrDuplicateSubmission) {
			s.compensate(ctx, key)
		}
		if !errors.Is(err, util.ErrRecordSubmissionFailed) {
			err = fmt.Errorf("%w: %w", util.ErrRecordSubmissionFailed, err)
		}
		return nil, err
	}

	logger.Log.Info("Task submitted",
		zap.String("participant_id", participantID.String()),
		zap.String("quest_id", quest.ID),
		zap.Int("task_id", task.ID),
		zap.String("file_url", fileURL))

	if participant != nil {
		s.notifyCompletion(ctx, participant, &quest, *sub)
	}

	return sub, nil
}

func (s *TrackerService) lockTTL() time.Duration {
	if s.cfg.SubmitLockTTL > 0 {
		return s.cfg.SubmitLockTTL
	}
	return time.Minute
}

// checkVideoLength spools the upload to a temp file so ffprobe can read it,
// then hands back the file for the upload itself.
func (s *TrackerService) checkVideoLength(ctx context.Context, content io.Reader, task model.Task) (io.Reader, func(), error) {
	tmp, err := os.CreateTemp("", "hunt-upload-*")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: spool upload: %w", util.ErrUploadFailed, err)
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	if _, err := io.Copy(tmp, content); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("%w: spool upload: %w", util.ErrUploadFailed, err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("%w: spool upload: %w", util.ErrUploadFailed, err)
	}

	limit := time.Duration(task.MaxDurationSeconds) * time.Second
	duration, err := s.prober.Duration(ctx, tmp.Name())
	switch {
	case err != nil:
		// no ffprobe on the host should not block the hunt
		logger.Log.Warn("Video probe failed, skipping length check", zap.Int("task_id", task.ID), zap.Error(err))
	case duration > limit+videoGrace:
		cleanup()
		return nil, nil, fmt.Errorf("%w: %s > %s", util.ErrVideoTooLong, duration.Round(time.Millisecond), limit)
	}

	return tmp, cleanup, nil
}

func (s *TrackerService) compensate(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()

	if err := s.storage.Delete(ctx, key); err != nil {
		logger.Log.Error("Failed to delete orphaned upload", zap.String("key", key), zap.Error(err))
		return
	}
	logger.Log.Info("Deleted orphaned upload", zap.String("key", key))
}

func (s *TrackerService) notifyCompletion(ctx context.Context, p *model.Participant, quest *model.Quest, sub model.Submission) {
	if completion(p, quest) == 100 {
		return
	}

	after := *p
	after.Submissions = append(append([]model.Submission(nil), p.Submissions...), sub)
	if completion(&after, quest) == 100 {
		s.notifier.QuestCompleted(ctx, p.Name, quest.Name)
	}
}

func contentType(detected string) string {
	if detected == "" {
		return util.MimeOctetStream
	}
	return detected
}

func submissionOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, util.ErrUploadFailed):
		return "upload_failed"
	case errors.Is(err, util.ErrRecordSubmissionFailed):
		return "record_failed"
	case errors.Is(err, util.ErrFetchFailed):
		return "fetch_failed"
	default:
		return "rejected"
	}
}
