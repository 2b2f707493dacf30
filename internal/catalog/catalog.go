// Package catalog holds the quest and task table. It is loaded once at start
// and never changes afterwards; every accessor hands out copies.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"treasure_hunt_backend/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

type Catalog struct {
	quests []model.Quest
	index  map[string]int
}

type document struct {
	Quests []model.Quest `yaml:"quests"`
}

// Default returns the built-in two-quest hunt.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file, or returns the default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	return build(doc.Quests)
}

func build(quests []model.Quest) (*Catalog, error) {
	if len(quests) == 0 {
		return nil, errors.New("catalog has no quests")
	}

	c := &Catalog{
		quests: make([]model.Quest, 0, len(quests)),
		index:  make(map[string]int, len(quests)),
	}

	for i, q := range quests {
		q.ID = strings.TrimSpace(q.ID)
		if q.ID == "" {
			return nil, fmt.Errorf("quest #%d has no id", i+1)
		}
		if _, dup := c.index[q.ID]; dup {
			return nil, fmt.Errorf("duplicate quest id %q", q.ID)
		}
		if len(q.Tasks) == 0 {
			return nil, fmt.Errorf("quest %q has no tasks", q.ID)
		}

		if i == 0 && len(q.Requires) > 0 {
			return nil, fmt.Errorf("first quest %q cannot require other quests", q.ID)
		}
		if i > 0 && q.Requires == nil {
			q.Requires = []string{quests[0].ID}
		}
		for _, req := range q.Requires {
			// only earlier quests are known at this point, which also rules out cycles
			if _, ok := c.index[req]; !ok {
				return nil, fmt.Errorf("quest %q requires %q, which is not an earlier quest", q.ID, req)
			}
		}

		seen := make(map[int]struct{}, len(q.Tasks))
		for _, t := range q.Tasks {
			if t.ID <= 0 {
				return nil, fmt.Errorf("quest %q has a task with non-positive id %d", q.ID, t.ID)
			}
			if _, dup := seen[t.ID]; dup {
				return nil, fmt.Errorf("quest %q has duplicate task id %d", q.ID, t.ID)
			}
			seen[t.ID] = struct{}{}

			if strings.TrimSpace(t.Name) == "" {
				return nil, fmt.Errorf("task %d in quest %q has no name", t.ID, q.ID)
			}
			for _, token := range strings.Split(t.AcceptedFiles, ",") {
				if t.AcceptedFiles != "" && strings.TrimSpace(token) == "" {
					return nil, fmt.Errorf("task %d in quest %q has an empty accepted_files entry", t.ID, q.ID)
				}
			}
			if t.MaxDurationSeconds < 0 {
				return nil, fmt.Errorf("task %d in quest %q has negative max_duration_seconds", t.ID, q.ID)
			}
		}

		c.index[q.ID] = len(c.quests)
		c.quests = append(c.quests, copyQuest(q))
	}

	return c, nil
}

func copyQuest(q model.Quest) model.Quest {
	out := q
	out.Tasks = append([]model.Task(nil), q.Tasks...)
	if q.Requires != nil {
		out.Requires = append([]string{}, q.Requires...)
	}
	return out
}

// Quests returns every quest in catalog order.
func (c *Catalog) Quests() []model.Quest {
	out := make([]model.Quest, len(c.quests))
	for i, q := range c.quests {
		out[i] = copyQuest(q)
	}
	return out
}

func (c *Catalog) Quest(id string) (model.Quest, bool) {
	i, ok := c.index[id]
	if !ok {
		return model.Quest{}, false
	}
	return copyQuest(c.quests[i]), true
}

func (c *Catalog) Task(questID string, taskID int) (model.Task, bool) {
	i, ok := c.index[questID]
	if !ok {
		return model.Task{}, false
	}
	return c.quests[i].Task(taskID)
}

// First is the entry quest, which is never locked.
func (c *Catalog) First() model.Quest {
	return copyQuest(c.quests[0])
}

func (c *Catalog) IsFirst(questID string) bool {
	return c.quests[0].ID == questID
}

// SharedTaskIDs lists task ids that appear in more than one quest.
func (c *Catalog) SharedTaskIDs() []int {
	owners := make(map[int]int)
	var shared []int
	for _, q := range c.quests {
		for _, t := range q.Tasks {
			owners[t.ID]++
			if owners[t.ID] == 2 {
				shared = append(shared, t.ID)
			}
		}
	}
	return shared
}
