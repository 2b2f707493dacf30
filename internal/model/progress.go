package model

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// TaskView is a task row as a participant sees it.
type TaskView struct {
	TaskID        int        `json:"taskId"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Hint          string     `json:"hint"`
	AcceptedFiles string     `json:"acceptedFiles"`
	Status        TaskStatus `json:"status"`
	// Actionable is true when an upload is currently allowed for the task.
	Actionable  bool       `json:"actionable"`
	FileName    string     `json:"fileName,omitempty"`
	FileURL     string     `json:"fileUrl,omitempty"`
	SubmittedAt *Timestamp `json:"submittedAt,omitempty"`
}

type QuestView struct {
	QuestID     string     `json:"questId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Completion  int        `json:"completion"`
	Locked      bool       `json:"locked"`
	Tasks       []TaskView `json:"tasks,omitempty"`
}

type ParticipantView struct {
	ID        ID          `json:"id"`
	Name      string      `json:"name"`
	CreatedAt Timestamp   `json:"createdAt"`
	Quests    []QuestView `json:"quests"`
}

// BoardRow is one participant's line on the board for the selected quest.
type BoardRow struct {
	ParticipantID ID        `json:"participantId"`
	Name          string    `json:"name"`
	Quest         QuestView `json:"quest"`
}

// BoardView is a read-only snapshot of the tracker board.
type BoardView struct {
	ActiveQuest  string     `json:"activeQuest"`
	Quest        QuestView  `json:"quest"`
	Loading      bool       `json:"loading"`
	Error        string     `json:"error,omitempty"`
	LoadedAt     *Timestamp `json:"loadedAt,omitempty"`
	Participants []BoardRow `json:"participants"`
}
