package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/PoluyanbIch/exambot/internal/metrics"
)

const unknownName = "Unknown"

// AnswerRecorder appends answers and hands the admin notification to the queue.
type AnswerRecorder struct {
	users   UserRepository
	answers AnswerLog
	notify  *NotificationQueue
	adminID int64
	now     func() time.Time
	logger  zerolog.Logger
}

func NewAnswerRecorder(users UserRepository, answers AnswerLog, notify *NotificationQueue, adminID int64, logger zerolog.Logger) *AnswerRecorder {
	return &AnswerRecorder{
		users:   users,
		answers: answers,
		notify:  notify,
		adminID: adminID,
		now:     time.Now,
		logger:  logger.With().Str("component", "answer_recorder").Logger(),
	}
}

// Record persists one answer. The admin notification is enqueued whether or
// not the write succeeded.
func (r *AnswerRecorder) Record(ctx context.Context, from Sender, question, answer string) error {
	name := unknownName
	if user, ok, err := r.users.Find(ctx, from.ID); err != nil {
		r.logger.Warn().Err(err).Int64("user_id", from.ID).Msg("user lookup failed while recording answer")
	} else if ok {
		name = user.Name
	}

	record := AnswerRecord{
		ID:        uuid.NewString(),
		UserID:    from.ID,
		Name:      name,
		Question:  question,
		Answer:    answer,
		Timestamp: r.now().UTC().Format(time.RFC3339Nano),
	}

	var persistErr error
	if err := r.answers.Append(ctx, record); err != nil {
		persistErr = fmt.Errorf("%w: append answer: %w", ErrPersistenceFailure, err)
	} else {
		metrics.AnswersRecorded.Inc()
	}

	if r.notify != nil && r.adminID != 0 {
		r.notify.Enqueue(Notification{
			ChatID: r.adminID,
			Text:   answerNotification(from, question, answer),
		})
	}

	return persistErr
}

func answerNotification(from Sender, question, answer string) string {
	username := from.Username
	if username == "" {
		username = "n/a"
	}
	return fmt.Sprintf("📩 New answer:\n👤 %s (@%s)\n❓ Question: %s\n💬 Answer: %s",
		from.FirstName, username, question, answer)
}
