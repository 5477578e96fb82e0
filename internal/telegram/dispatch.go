package telegram

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// dispatcher runs at most one worker per user. Each worker drains that
// user's queue in arrival order and exits when it is empty.
type dispatcher struct {
	mu     sync.Mutex
	queues map[int64][]tgbotapi.Update
	handle func(tgbotapi.Update)
	wg     sync.WaitGroup
}

func newDispatcher(handle func(tgbotapi.Update)) *dispatcher {
	return &dispatcher{
		queues: make(map[int64][]tgbotapi.Update),
		handle: handle,
	}
}

func (d *dispatcher) dispatch(userID int64, update tgbotapi.Update) {
	d.mu.Lock()
	queue, running := d.queues[userID]
	d.queues[userID] = append(queue, update)
	d.mu.Unlock()

	if !running {
		d.wg.Add(1)
		go d.drain(userID)
	}
}

func (d *dispatcher) drain(userID int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		queue := d.queues[userID]
		if len(queue) == 0 {
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		}
		update := queue[0]
		d.queues[userID] = queue[1:]
		d.mu.Unlock()

		d.handle(update)
	}
}

func (d *dispatcher) wait() {
	d.wg.Wait()
}
