package service

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"
)

var errBackendDown = errors.New("backend down")

type fakeUsers struct {
	mu      sync.Mutex
	users   map[int64]User
	failGet bool
	failPut bool
}

func newFakeUsers(users ...User) *fakeUsers {
	f := &fakeUsers{users: make(map[int64]User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Find(_ context.Context, id int64) (User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return User{}, false, errBackendDown
	}
	u, ok := f.users[id]
	return u, ok, nil
}

func (f *fakeUsers) Save(_ context.Context, user User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut {
		return errBackendDown
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) List(_ context.Context) ([]User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return nil, errBackendDown
	}
	out := make([]User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

type fakeAnswers struct {
	mu      sync.Mutex
	records []AnswerRecord
	fail    bool
}

func (f *fakeAnswers) Append(_ context.Context, record AnswerRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errBackendDown
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeAnswers) Recent(_ context.Context, limit int) ([]AnswerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errBackendDown
	}
	start := len(f.records) - limit
	if start < 0 {
		start = 0
	}
	return append([]AnswerRecord(nil), f.records[start:]...), nil
}

func (f *fakeAnswers) all() []AnswerRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]AnswerRecord(nil), f.records...)
}

type fakeQuestions struct {
	mu        sync.Mutex
	questions []string
	fail      bool
	replaced  int
}

func (f *fakeQuestions) Replace(_ context.Context, questions []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errBackendDown
	}
	f.questions = append([]string(nil), questions...)
	f.replaced++
	return nil
}

func (f *fakeQuestions) Current(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errBackendDown
	}
	return append([]string(nil), f.questions...), nil
}

func (f *fakeQuestions) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errBackendDown
	}
	f.questions = nil
	return nil
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	args := m.Called(ctx, fileID)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, content []byte, filename string) (string, error) {
	args := m.Called(ctx, content, filename)
	return args.String(0), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, n Notification) error {
	return m.Called(ctx, n).Error(0)
}
