package service

import (
	"fmt"
	"treasure_hunt_backend/internal/catalog"
	"treasure_hunt_backend/internal/model"
	"treasure_hunt_backend/internal/util"

	"github.com/shopspring/decimal"
)

// ProgressService derives completion and lock state from a participant's
// submissions. It holds no state besides the catalog and never calls out.
type ProgressService struct {
	catalog *catalog.Catalog
}

func NewProgressService(c *catalog.Catalog) *ProgressService {
	return &ProgressService{catalog: c}
}

func (s *ProgressService) Catalog() *catalog.Catalog {
	return s.catalog
}

// QuestCompletion is the rounded percentage of the quest's tasks that have a
// matching submission, 0 to 100.
func (s *ProgressService) QuestCompletion(p *model.Participant, questID string) (int, error) {
	quest, ok := s.catalog.Quest(questID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", util.ErrQuestNotFound, questID)
	}
	return completion(p, &quest), nil
}

func completion(p *model.Participant, quest *model.Quest) int {
	total := len(quest.Tasks)
	if total == 0 || p == nil {
		return 0
	}

	completed := 0
	for _, t := range quest.Tasks {
		if p.HasSubmission(quest.ID, t.ID) {
			completed++
		}
	}

	return int(decimal.NewFromInt(int64(completed)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 0).
		IntPart())
}

// IsQuestLocked reports whether any quest the given one requires is below 100%.
// The first quest is never locked.
func (s *ProgressService) IsQuestLocked(p *model.Participant, questID string) (bool, error) {
	quest, ok := s.catalog.Quest(questID)
	if !ok {
		return false, fmt.Errorf("%w: %s", util.ErrQuestNotFound, questID)
	}
	return s.locked(p, &quest), nil
}

func (s *ProgressService) locked(p *model.Participant, quest *model.Quest) bool {
	if s.catalog.IsFirst(quest.ID) {
		return false
	}
	for _, req := range quest.Requires {
		required, ok := s.catalog.Quest(req)
		if !ok || completion(p, &required) < 100 {
			return true
		}
	}
	return false
}

func (s *ProgressService) TaskStatus(p *model.Participant, questID string, taskID int) model.TaskStatus {
	if p != nil && p.HasSubmission(questID, taskID) {
		return model.TaskCompleted
	}
	return model.TaskPending
}

// QuestView builds the per-quest view of one participant. Task rows are
// included only when withTasks is set.
func (s *ProgressService) QuestView(p *model.Participant, questID string, withTasks bool) (model.QuestView, error) {
	quest, ok := s.catalog.Quest(questID)
	if !ok {
		return model.QuestView{}, fmt.Errorf("%w: %s", util.ErrQuestNotFound, questID)
	}
	return s.questView(p, &quest, withTasks), nil
}

func (s *ProgressService) questView(p *model.Participant, quest *model.Quest, withTasks bool) model.QuestView {
	view := model.QuestView{
		QuestID:     quest.ID,
		Name:        quest.Name,
		Description: quest.Description,
		Completion:  completion(p, quest),
		Locked:      s.locked(p, quest),
	}
	if !withTasks {
		return view
	}

	view.Tasks = make([]model.TaskView, 0, len(quest.Tasks))
	for _, t := range quest.Tasks {
		row := model.TaskView{
			TaskID:        t.ID,
			Name:          t.Name,
			Description:   t.Description,
			Hint:          t.Hint,
			AcceptedFiles: t.AcceptedFiles,
			Status:        model.TaskPending,
		}
		if p != nil {
			if sub := p.FindSubmission(quest.ID, t.ID); sub != nil {
				row.Status = model.TaskCompleted
				row.FileName = sub.FileName
				row.FileURL = sub.FileURL
				if !sub.SubmittedAt.IsZero() {
					ts := sub.SubmittedAt
					row.SubmittedAt = &ts
				}
			}
		}
		row.Actionable = !view.Locked && row.Status == model.TaskPending
		view.Tasks = append(view.Tasks, row)
	}
	return view
}

// ParticipantProgress is the full view of one participant over every quest.
func (s *ProgressService) ParticipantProgress(p *model.Participant) model.ParticipantView {
	view := model.ParticipantView{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}

	quests := s.catalog.Quests()
	view.Quests = make([]model.QuestView, 0, len(quests))
	for i := range quests {
		view.Quests = append(view.Quests, s.questView(p, &quests[i], true))
	}
	return view
}
