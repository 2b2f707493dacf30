package model

import (
	"encoding/json"
	"strconv"
)

// ID is a store-assigned identifier. Hosted backends hand out either integer or
// uuid keys, so both JSON numbers and strings decode into it.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes integer ids back as numbers so the store receives the type
// it handed out.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsNumeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// IsNumeric reports whether id is an integer in canonical form. "007" and "+7"
// are not: they would not survive being written as a JSON number.
func (id ID) IsNumeric() bool {
	if id == "" {
		return false
	}
	n, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == string(id)
}

func (id ID) String() string {
	return string(id)
}

// Participant is a registered hunter together with the submissions the store
// joined onto it.
type Participant struct {
	ID          ID           `json:"id"`
	Name        string       `json:"name"`
	CreatedAt   Timestamp    `json:"created_at"`
	Submissions []Submission `json:"submissions"`
}

// Submission is immutable evidence for one task.
type Submission struct {
	ID            ID        `json:"id,omitempty"`
	ParticipantID ID        `json:"participant_id"`
	QuestID       string    `json:"quest_id"`
	TaskID        int       `json:"task_id"`
	FileName      string    `json:"file_name"`
	FileURL       string    `json:"file_url"`
	SubmittedAt   Timestamp `json:"submitted_at"`
}

// Matches reports whether the submission is evidence for the task. Rows written
// without a quest id match on the task id alone.
func (s *Submission) Matches(questID string, taskID int) bool {
	if s.TaskID != taskID {
		return false
	}
	return s.QuestID == "" || s.QuestID == questID
}

// FindSubmission returns the first submission matching the task, or nil.
func (p *Participant) FindSubmission(questID string, taskID int) *Submission {
	for i := range p.Submissions {
		if p.Submissions[i].Matches(questID, taskID) {
			return &p.Submissions[i]
		}
	}
	return nil
}

func (p *Participant) HasSubmission(questID string, taskID int) bool {
	return p.FindSubmission(questID, taskID) != nil
}
