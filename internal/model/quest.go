package model

// Task is one piece of evidence a participant has to upload.
type Task struct {
	ID                 int    `yaml:"id" json:"id"`
	Name               string `yaml:"name" json:"name"`
	Description        string `yaml:"description" json:"description"`
	AcceptedFiles      string `yaml:"accepted_files" json:"acceptedFiles"`
	Hint               string `yaml:"hint" json:"hint"`
	MaxDurationSeconds int    `yaml:"max_duration_seconds" json:"maxDurationSeconds,omitempty"`
}

// Quest groups tasks. A quest stays locked until every quest in Requires is
// fully complete.
type Quest struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Requires    []string `yaml:"requires" json:"requires,omitempty"`
	Tasks       []Task   `yaml:"tasks" json:"tasks"`
}

func (q *Quest) Task(taskID int) (Task, bool) {
	for _, t := range q.Tasks {
		if t.ID == taskID {
			return t, true
		}
	}
	return Task{}, false
}
