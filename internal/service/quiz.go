package service

import "context"

// User is a registered participant.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
}

// AnswerRecord is one submitted answer. Records are only ever appended.
type AnswerRecord struct {
	ID        string `json:"id"`
	UserID    int64  `json:"userId"`
	Name      string `json:"name"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// Sender identifies whoever triggered an update.
type Sender struct {
	ID        int64
	FirstName string
	Username  string
}

// UserRepository persists registered users keyed by id.
type UserRepository interface {
	Find(ctx context.Context, id int64) (User, bool, error)
	Save(ctx context.Context, user User) error
	List(ctx context.Context) ([]User, error)
}

// AnswerLog is the append-only answer store.
type AnswerLog interface {
	Append(ctx context.Context, record AnswerRecord) error
	Recent(ctx context.Context, limit int) ([]AnswerRecord, error)
}

// QuestionSetRepository holds the single active question set.
type QuestionSetRepository interface {
	Replace(ctx context.Context, questions []string) error
	Current(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}
