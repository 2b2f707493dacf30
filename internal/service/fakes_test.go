package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
	"treasure_hunt_backend/internal/model"
	"treasure_hunt_backend/internal/util"
)

// memoryStore is an in-process ParticipantStore with switchable failures.
type memoryStore struct {
	mu           sync.Mutex
	participants []model.Participant
	nextID       int

	failList   error
	failCreate error
	failRecord error

	// unique rejects a second row for the same (participant, quest, task) the
	// way the postgres and mysql indexes do
	unique bool
	// aliases maps a requested id to the stored one, as PostgREST does for
	// id=eq.007 against an integer column
	aliases map[model.ID]model.ID
	// afterGet runs once a participant was fetched, outside the lock
	afterGet func(id model.ID)

	listCalls   int
	createCalls int
	recordCalls int
}

func newMemoryStore(names ...string) *memoryStore {
	s := &memoryStore{nextID: 1}
	for _, n := range names {
		s.add(n)
	}
	return s
}

func (s *memoryStore) add(name string) model.ID {
	id := model.ID(strconv.Itoa(s.nextID))
	s.nextID++
	s.participants = append(s.participants, model.Participant{
		ID:          id,
		Name:        name,
		CreatedAt:   model.NewTimestamp(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)),
		Submissions: []model.Submission{},
	})
	return id
}

func (s *memoryStore) seed(id model.ID, questID string, taskIDs ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.participants {
		if s.participants[i].ID != id {
			continue
		}
		for _, taskID := range taskIDs {
			s.participants[i].Submissions = append(s.participants[i].Submissions, model.Submission{
				ParticipantID: id, QuestID: questID, TaskID: taskID, FileName: "seed", FileURL: "https://x/seed",
			})
		}
	}
}

func cloneParticipant(p model.Participant) model.Participant {
	p.Submissions = append([]model.Submission{}, p.Submissions...)
	return p
}

func (s *memoryStore) ListParticipants(ctx context.Context) ([]model.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.failList != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, s.failList)
	}
	out := make([]model.Participant, len(s.participants))
	for i, p := range s.participants {
		out[i] = cloneParticipant(p)
	}
	return out, nil
}

func (s *memoryStore) GetParticipant(ctx context.Context, id model.ID) (*model.Participant, error) {
	p, err := s.getParticipant(id)
	if err == nil && s.afterGet != nil {
		s.afterGet(id)
	}
	return p, err
}

func (s *memoryStore) getParticipant(id model.ID) (*model.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, s.failList)
	}
	if stored, ok := s.aliases[id]; ok {
		id = stored
	}
	for _, p := range s.participants {
		if p.ID == id {
			c := cloneParticipant(p)
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", util.ErrParticipantNotFound, id)
}

func (s *memoryStore) CreateParticipant(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.failCreate != nil {
		return fmt.Errorf("%w: %w", util.ErrCreateParticipantFailed, s.failCreate)
	}
	s.add(name)
	return nil
}

func (s *memoryStore) CreateSubmission(ctx context.Context, sub *model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordCalls++
	if s.failRecord != nil {
		return fmt.Errorf("%w: %w", util.ErrRecordSubmissionFailed, s.failRecord)
	}
	for i := range s.participants {
		if s.participants[i].ID != sub.ParticipantID {
			continue
		}
		if s.unique && s.participants[i].HasSubmission(sub.QuestID, sub.TaskID) {
			return fmt.Errorf("%w: %w", util.ErrRecordSubmissionFailed, util.ErrDuplicateSubmission)
		}
		s.participants[i].Submissions = append(s.participants[i].Submissions, *sub)
		return nil
	}
	return fmt.Errorf("%w: %w", util.ErrRecordSubmissionFailed, util.ErrParticipantNotFound)
}

func (s *memoryStore) Ping(ctx context.Context) error {
	return s.failList
}

// parkedListStore holds its first ListParticipants call until release
// delivers that call's outcome; later calls go straight through.
type parkedListStore struct {
	*memoryStore
	entered chan struct{}
	release chan error
	once    sync.Once
}

func newParkedListStore(inner *memoryStore) *parkedListStore {
	return &parkedListStore{memoryStore: inner, entered: make(chan struct{}), release: make(chan error)}
}

func (s *parkedListStore) ListParticipants(ctx context.Context) ([]model.Participant, error) {
	parked := false
	s.once.Do(func() { parked = true })
	if parked {
		close(s.entered)
		if err := <-s.release; err != nil {
			return nil, fmt.Errorf("%w: %w", util.ErrFetchFailed, err)
		}
	}
	return s.memoryStore.ListParticipants(ctx)
}

// memoryStorage records uploads and deletes.
type memoryStorage struct {
	mu         sync.Mutex
	objects    map[string][]byte
	types      map[string]string
	deleted    []string
	failUpload error
	failDelete error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if m.failUpload != nil {
		return "", m.failUpload
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.types[key] = contentType
	return m.GetURL(key), nil
}

func (m *memoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	if m.failDelete != nil {
		return m.failDelete
	}
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) GetURL(key string) string {
	return "https://files.example/" + key
}

type recordingNotifier struct {
	mu         sync.Mutex
	registered []string
	completed  []string
}

func (n *recordingNotifier) ParticipantRegistered(ctx context.Context, name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.registered = append(n.registered, name)
}

func (n *recordingNotifier) QuestCompleted(ctx context.Context, participantName, questName string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, participantName+"/"+questName)
}

type fixedProber struct {
	duration time.Duration
	err      error
	paths    []string
}

func (p *fixedProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	p.paths = append(p.paths, path)
	return p.duration, p.err
}
