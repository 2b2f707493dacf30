package service

import (
	"testing"
	"time"
	"treasure_hunt_backend/internal/catalog"
	"treasure_hunt_backend/internal/model"
	"treasure_hunt_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func participantWith(id string, tasks map[string][]int) *model.Participant {
	p := &model.Participant{ID: model.ID(id), Name: "P" + id}
	for questID, ids := range tasks {
		for _, taskID := range ids {
			p.Submissions = append(p.Submissions, model.Submission{
				ParticipantID: p.ID,
				QuestID:       questID,
				TaskID:        taskID,
				FileName:      "file.bin",
				FileURL:       "https://x/file.bin",
			})
		}
	}
	return p
}

func TestQuestCompletion(t *testing.T) {
	svc := NewProgressService(catalog.Default())

	testCases := []struct {
		name   string
		tasks  map[string][]int
		quest1 int
		quest2 int
	}{
		{name: "no submissions", tasks: nil, quest1: 0, quest2: 0},
		{name: "one task", tasks: map[string][]int{"quest1": {1}}, quest1: 33, quest2: 0},
		{name: "two tasks round up", tasks: map[string][]int{"quest1": {1, 2}}, quest1: 67, quest2: 0},
		{name: "all of quest1", tasks: map[string][]int{"quest1": {1, 2, 3}}, quest1: 100, quest2: 0},
		{name: "everything", tasks: map[string][]int{"quest1": {1, 2, 3}, "quest2": {4, 5, 6}}, quest1: 100, quest2: 100},
		{name: "task filed under the wrong quest", tasks: map[string][]int{"quest2": {1}}, quest1: 0, quest2: 0},
		{name: "unknown task ids ignored", tasks: map[string][]int{"quest1": {1, 99}}, quest1: 33, quest2: 0},
		{name: "legacy rows without quest id", tasks: map[string][]int{"": {1, 2, 3, 4}}, quest1: 100, quest2: 33},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := participantWith("1", tc.tasks)

			got1, err := svc.QuestCompletion(p, "quest1")
			require.NoError(t, err)
			got2, err := svc.QuestCompletion(p, "quest2")
			require.NoError(t, err)

			assert.Equal(t, tc.quest1, got1)
			assert.Equal(t, tc.quest2, got2)
			assert.GreaterOrEqual(t, got1, 0)
			assert.LessOrEqual(t, got1, 100)
		})
	}
}

func TestQuestCompletion_DuplicatesCountOnce(t *testing.T) {
	svc := NewProgressService(catalog.Default())
	p := participantWith("1", map[string][]int{"quest1": {1}})
	p.Submissions = append(p.Submissions, p.Submissions[0], p.Submissions[0])

	got, err := svc.QuestCompletion(p, "quest1")
	require.NoError(t, err)
	assert.Equal(t, 33, got)
}

func TestQuestCompletion_UnknownQuest(t *testing.T) {
	svc := NewProgressService(catalog.Default())

	_, err := svc.QuestCompletion(participantWith("1", nil), "quest9")
	assert.ErrorIs(t, err, util.ErrQuestNotFound)

	_, err = svc.IsQuestLocked(participantWith("1", nil), "quest9")
	assert.ErrorIs(t, err, util.ErrQuestNotFound)
}

func TestIsQuestLocked(t *testing.T) {
	svc := NewProgressService(catalog.Default())

	testCases := []struct {
		name   string
		tasks  map[string][]int
		locked bool
	}{
		{name: "empty participant", tasks: nil, locked: true},
		{name: "two of three", tasks: map[string][]int{"quest1": {1, 2}}, locked: true},
		{name: "quest2 work alone does not unlock", tasks: map[string][]int{"quest2": {4, 5, 6}}, locked: true},
		{name: "quest1 complete", tasks: map[string][]int{"quest1": {1, 2, 3}}, locked: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := participantWith("1", tc.tasks)

			locked1, err := svc.IsQuestLocked(p, "quest1")
			require.NoError(t, err)
			assert.False(t, locked1, "the first quest is never locked")

			locked2, err := svc.IsQuestLocked(p, "quest2")
			require.NoError(t, err)
			assert.Equal(t, tc.locked, locked2)

			completion1, _ := svc.QuestCompletion(p, "quest1")
			assert.Equal(t, completion1 < 100, locked2)
		})
	}
}

func TestIsQuestLocked_CustomRequirements(t *testing.T) {
	c, err := catalog.Parse([]byte(`
quests:
  - {id: a, name: A, tasks: [{id: 1, name: one}]}
  - {id: b, name: B, tasks: [{id: 2, name: two}]}
  - {id: c, name: C, requires: [a, b], tasks: [{id: 3, name: three}]}
  - {id: d, name: D, requires: [], tasks: [{id: 4, name: four}]}
`))
	require.NoError(t, err)
	svc := NewProgressService(c)

	p := participantWith("1", map[string][]int{"a": {1}})
	locked, _ := svc.IsQuestLocked(p, "b")
	assert.False(t, locked)
	locked, _ = svc.IsQuestLocked(p, "c")
	assert.True(t, locked)
	locked, _ = svc.IsQuestLocked(p, "d")
	assert.False(t, locked)

	p = participantWith("1", map[string][]int{"a": {1}, "b": {2}})
	locked, _ = svc.IsQuestLocked(p, "c")
	assert.False(t, locked)
}

func TestTaskStatus(t *testing.T) {
	svc := NewProgressService(catalog.Default())
	p := participantWith("1", map[string][]int{"quest1": {2}})

	assert.Equal(t, model.TaskCompleted, svc.TaskStatus(p, "quest1", 2))
	assert.Equal(t, model.TaskPending, svc.TaskStatus(p, "quest1", 1))
	assert.Equal(t, model.TaskPending, svc.TaskStatus(p, "quest2", 2))
	assert.Equal(t, model.TaskPending, svc.TaskStatus(nil, "quest1", 2))
}

func TestParticipantProgress(t *testing.T) {
	svc := NewProgressService(catalog.Default())
	submitted := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	p := participantWith("7", map[string][]int{"quest1": {1, 2}})
	p.Submissions[0].SubmittedAt = model.NewTimestamp(submitted)
	p.Submissions[1].SubmittedAt = model.NewTimestamp(submitted)

	view := svc.ParticipantProgress(p)
	assert.Equal(t, model.ID("7"), view.ID)
	require.Len(t, view.Quests, 2)

	q1 := view.Quests[0]
	assert.Equal(t, 67, q1.Completion)
	assert.False(t, q1.Locked)
	require.Len(t, q1.Tasks, 3)
	assert.Equal(t, model.TaskCompleted, q1.Tasks[0].Status)
	assert.False(t, q1.Tasks[0].Actionable)
	assert.Equal(t, "file.bin", q1.Tasks[0].FileName)
	require.NotNil(t, q1.Tasks[0].SubmittedAt)
	assert.Equal(t, submitted, q1.Tasks[0].SubmittedAt.Time)
	assert.Equal(t, model.TaskPending, q1.Tasks[2].Status)
	assert.True(t, q1.Tasks[2].Actionable)
	assert.NotEmpty(t, q1.Tasks[2].Hint)

	q2 := view.Quests[1]
	assert.True(t, q2.Locked)
	for _, task := range q2.Tasks {
		assert.False(t, task.Actionable)
	}

	// pure: same input, same output, input untouched
	before := len(p.Submissions)
	assert.Equal(t, view, svc.ParticipantProgress(p))
	assert.Len(t, p.Submissions, before)
}
