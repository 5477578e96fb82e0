package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAnswerRecorder_Record(t *testing.T) {
	users := newFakeUsers(User{ID: testUserID, Name: "Sam Student"})
	answers := &fakeAnswers{}
	queue := NewNotificationQueue(&mockNotifier{}, 4, zerolog.Nop())
	r := NewAnswerRecorder(users, answers, queue, testAdminID, zerolog.Nop())
	r.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600)) }

	require.NoError(t, r.Record(context.Background(), student, "1. Q?", "yes"))

	records := answers.all()
	require.Len(t, records, 1)
	assert.Equal(t, "Sam Student", records[0].Name)
	assert.Equal(t, "2024-03-01T11:00:00Z", records[0].Timestamp)
	assert.Len(t, records[0].ID, 36)

	require.Len(t, queue.queue, 1)
	n := <-queue.queue
	assert.Equal(t, testAdminID, n.ChatID)
	assert.Equal(t, "📩 New answer:\n👤 Sam (@sam)\n❓ Question: 1. Q?\n💬 Answer: yes", n.Text)
}

func TestAnswerRecorder_UnknownUser(t *testing.T) {
	answers := &fakeAnswers{}
	r := NewAnswerRecorder(newFakeUsers(), answers, nil, testAdminID, zerolog.Nop())

	require.NoError(t, r.Record(context.Background(), intruder, "Q", "A"))
	assert.Equal(t, unknownName, answers.all()[0].Name)
}

func TestAnswerRecorder_UserLookupFailureStillRecords(t *testing.T) {
	users := newFakeUsers()
	users.failGet = true
	answers := &fakeAnswers{}
	r := NewAnswerRecorder(users, answers, nil, testAdminID, zerolog.Nop())

	require.NoError(t, r.Record(context.Background(), student, "Q", "A"))
	assert.Equal(t, unknownName, answers.all()[0].Name)
}

func TestAnswerRecorder_PersistenceFailureStillNotifies(t *testing.T) {
	answers := &fakeAnswers{fail: true}
	queue := NewNotificationQueue(&mockNotifier{}, 4, zerolog.Nop())
	r := NewAnswerRecorder(newFakeUsers(), answers, queue, testAdminID, zerolog.Nop())

	err := r.Record(context.Background(), student, "Q", "A")
	assert.ErrorIs(t, err, ErrPersistenceFailure)
	assert.ErrorIs(t, err, errBackendDown)
	assert.Len(t, queue.queue, 1)
}

func TestAnswerRecorder_NoAdminNoNotification(t *testing.T) {
	queue := NewNotificationQueue(&mockNotifier{}, 4, zerolog.Nop())
	r := NewAnswerRecorder(newFakeUsers(), &fakeAnswers{}, queue, 0, zerolog.Nop())

	require.NoError(t, r.Record(context.Background(), student, "Q", "A"))
	assert.Empty(t, queue.queue)
}

func TestNotificationQueue_DeliversAndSurvivesFailures(t *testing.T) {
	notifier := &mockNotifier{}
	first := Notification{ChatID: 1, Text: "first"}
	second := Notification{ChatID: 1, Text: "second"}
	delivered := make(chan struct{})
	notifier.On("Notify", mock.Anything, first).Return(errors.New("telegram unavailable")).Once()
	notifier.On("Notify", mock.Anything, second).Return(nil).Once().Run(func(mock.Arguments) {
		close(delivered)
	})

	queue := NewNotificationQueue(notifier, 4, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- queue.Run(ctx) }()

	queue.Enqueue(first)
	queue.Enqueue(second)

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("second notification was not delivered")
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	notifier.AssertExpectations(t)
}

func TestNotificationQueue_DropsWhenFull(t *testing.T) {
	queue := NewNotificationQueue(&mockNotifier{}, 1, zerolog.Nop())

	queue.Enqueue(Notification{ChatID: 1, Text: "kept"})
	queue.Enqueue(Notification{ChatID: 1, Text: "dropped"})

	require.Len(t, queue.queue, 1)
	assert.Equal(t, "kept", (<-queue.queue).Text)
}

func TestNotificationQueue_FlushesOnShutdown(t *testing.T) {
	notifier := &mockNotifier{}
	n := Notification{ChatID: 9, Text: "late"}
	notifier.On("Notify", mock.Anything, n).Return(nil).Once()

	queue := NewNotificationQueue(notifier, 2, zerolog.Nop())
	queue.Enqueue(n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = queue.Run(ctx)

	notifier.AssertExpectations(t)
}
