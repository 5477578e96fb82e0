package telegram

import (
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestDispatcher_KeepsPerUserOrder(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = map[int64][]int{}
	)
	d := newDispatcher(func(u tgbotapi.Update) {
		mu.Lock()
		defer mu.Unlock()
		id := u.Message.From.ID
		seen[id] = append(seen[id], u.UpdateID)
	})

	for i := 0; i < 200; i++ {
		user := &tgbotapi.User{ID: int64(i % 3)}
		d.dispatch(user.ID, tgbotapi.Update{UpdateID: i, Message: &tgbotapi.Message{From: user}})
	}
	d.wait()

	for id := int64(0); id < 3; id++ {
		updates := seen[id]
		assert.NotEmpty(t, updates)
		assert.IsIncreasing(t, updates)
	}
	assert.Empty(t, d.queues)
}
