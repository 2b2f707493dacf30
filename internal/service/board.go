package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"treasure_hunt_backend/internal/model"
	"treasure_hunt_backend/internal/util"
	"treasure_hunt_backend/pkg/logger"

	"go.uber.org/zap"
)

// Board is the shared tracker state: the participant list as last fetched, the
// quest being viewed, and a single user-facing error slot. Every successful
// mutation is followed by a full refetch; nothing is patched locally.
type Board struct {
	tracker *TrackerService

	mu           sync.RWMutex
	participants []model.Participant
	activeQuest  string
	loading      int
	errMsg       string
	loadedAt     time.Time
	applied      uint64 // seq of the newest fetch that has finished
	issued       uint64
}

func NewBoard(tracker *TrackerService) *Board {
	return &Board{
		tracker:     tracker,
		activeQuest: tracker.Progress().Catalog().First().ID,
	}
}

// Load refetches every participant. On failure the previous list is kept and
// the error slot says so.
func (b *Board) Load(ctx context.Context) error {
	b.mu.Lock()
	b.loading++
	b.issued++
	seq := b.issued
	b.mu.Unlock()

	participants, err := b.tracker.ListParticipants(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading--

	// an older fetch finishing late must not overwrite what a newer one left,
	// neither the list nor the error slot
	fresh := seq > b.applied
	if fresh {
		b.applied = seq
	}

	if err != nil {
		logger.Log.Error("Failed to load participants", zap.Error(err))
		if fresh {
			b.errMsg = util.MsgLoadFailed
		}
		return err
	}

	if fresh {
		b.participants = participants
		b.loadedAt = time.Now().UTC()
		b.errMsg = ""
	}
	return nil
}

// Register adds a participant and reloads the board. Blank names are ignored
// and reported as ErrBlankName without touching the error slot.
func (b *Board) Register(ctx context.Context, name string) error {
	err := b.tracker.RegisterParticipant(ctx, name)
	if errors.Is(err, util.ErrBlankName) {
		return err
	}
	if err != nil {
		logger.Log.Error("Failed to add participant", zap.Error(err))
		b.setError(util.MsgRegisterFailed)
		return err
	}

	b.Load(ctx)
	return nil
}

// Submit runs the submission flow and reloads the board on success.
func (b *Board) Submit(ctx context.Context, upload TaskUpload) (*model.Submission, error) {
	sub, err := b.tracker.SubmitTask(ctx, upload)
	if err != nil {
		logger.Log.Error("Failed to submit task",
			zap.String("participant_id", upload.ParticipantID.String()),
			zap.String("quest_id", upload.QuestID),
			zap.Int("task_id", upload.TaskID),
			zap.Error(err))
		b.setError(util.MsgSubmitFailed)
		return nil, err
	}

	b.Load(ctx)
	return sub, nil
}

func (b *Board) SelectQuest(questID string) error {
	if _, ok := b.tracker.Progress().Catalog().Quest(questID); !ok {
		return fmt.Errorf("%w: %s", util.ErrQuestNotFound, questID)
	}

	b.mu.Lock()
	b.activeQuest = questID
	b.mu.Unlock()
	return nil
}

func (b *Board) ActiveQuest() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.activeQuest
}

// Snapshot renders the board for questID, or for the active quest when empty.
func (b *Board) Snapshot(questID string) (model.BoardView, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if questID == "" {
		questID = b.activeQuest
	}

	progress := b.tracker.Progress()
	quest, ok := progress.Catalog().Quest(questID)
	if !ok {
		return model.BoardView{}, fmt.Errorf("%w: %s", util.ErrQuestNotFound, questID)
	}

	view := model.BoardView{
		ActiveQuest: b.activeQuest,
		Quest: model.QuestView{
			QuestID:     quest.ID,
			Name:        quest.Name,
			Description: quest.Description,
		},
		Loading:      b.loading > 0,
		Error:        b.errMsg,
		Participants: make([]model.BoardRow, 0, len(b.participants)),
	}
	if !b.loadedAt.IsZero() {
		ts := model.NewTimestamp(b.loadedAt)
		view.LoadedAt = &ts
	}

	for i := range b.participants {
		p := &b.participants[i]
		view.Participants = append(view.Participants, model.BoardRow{
			ParticipantID: p.ID,
			Name:          p.Name,
			Quest:         progress.questView(p, &quest, true),
		})
	}

	return view, nil
}

func (b *Board) setError(msg string) {
	b.mu.Lock()
	b.errMsg = msg
	b.mu.Unlock()
}
