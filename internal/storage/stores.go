package storage

import (
	"context"
	"sync"

	"github.com/PoluyanbIch/exambot/internal/service"
)

// UserStore keeps registered users, unique by id.
type UserStore struct {
	doc *document[[]service.User]
}

var _ service.UserRepository = (*UserStore)(nil)

func NewUserStore(backend Backend) *UserStore {
	return &UserStore{doc: newDocument[[]service.User](backend, UsersCollection)}
}

func (s *UserStore) Find(ctx context.Context, id int64) (service.User, bool, error) {
	users, err := s.doc.read(ctx)
	if err != nil {
		return service.User{}, false, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, true, nil
		}
	}
	return service.User{}, false, nil
}

// Save inserts the user or replaces the stored one with the same id.
func (s *UserStore) Save(ctx context.Context, user service.User) error {
	return s.doc.update(ctx, func(users *[]service.User) error {
		for i := range *users {
			if (*users)[i].ID == user.ID {
				(*users)[i] = user
				return nil
			}
		}
		*users = append(*users, user)
		return nil
	})
}

func (s *UserStore) List(ctx context.Context) ([]service.User, error) {
	return s.doc.read(ctx)
}

// AnswerStore is the append-only answer log.
type AnswerStore struct {
	doc *document[[]service.AnswerRecord]
}

var _ service.AnswerLog = (*AnswerStore)(nil)

func NewAnswerStore(backend Backend) *AnswerStore {
	return &AnswerStore{doc: newDocument[[]service.AnswerRecord](backend, AnswersCollection)}
}

func (s *AnswerStore) Append(ctx context.Context, record service.AnswerRecord) error {
	return s.doc.update(ctx, func(records *[]service.AnswerRecord) error {
		*records = append(*records, record)
		return nil
	})
}

// Recent returns up to limit records, oldest first.
func (s *AnswerStore) Recent(ctx context.Context, limit int) ([]service.AnswerRecord, error) {
	records, err := s.doc.read(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

type questionSetDoc struct {
	Questions []string `json:"questions"`
}

// QuestionSetStore holds the single active question set. The set is cached
// after the first read; the cache only changes after a successful write.
type QuestionSetStore struct {
	doc *document[questionSetDoc]

	mu     sync.Mutex
	cached []string
	loaded bool
}

var _ service.QuestionSetRepository = (*QuestionSetStore)(nil)

func NewQuestionSetStore(backend Backend) *QuestionSetStore {
	return &QuestionSetStore{doc: newDocument[questionSetDoc](backend, QuestionsCollection)}
}

func (s *QuestionSetStore) Replace(ctx context.Context, questions []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneStrings(questions)
	if err := s.doc.put(ctx, questionSetDoc{Questions: next}); err != nil {
		return err
	}
	s.cached = next
	s.loaded = true
	return nil
}

// Current returns a copy of the active set, empty when nothing was ingested.
func (s *QuestionSetStore) Current(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		doc, err := s.doc.read(ctx)
		if err != nil {
			return nil, err
		}
		s.cached = cloneStrings(doc.Questions)
		s.loaded = true
	}
	return cloneStrings(s.cached), nil
}

func (s *QuestionSetStore) Clear(ctx context.Context) error {
	return s.Replace(ctx, nil)
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
