package bot

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrOutboxClosed is returned for jobs submitted after Close.
var ErrOutboxClosed = errors.New("outbox closed")

// Sender is the part of the Telegram API the outbox calls.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type job struct {
	c tgbotapi.Chattable
	// request marks calls without a message result, like callback answers.
	request bool
	// delay is waited before the call; media replay uses it for pacing.
	delay time.Duration
	done  chan error
}

type chatQueue struct {
	jobs []job
}

// Outbox delivers outbound calls in order per chat. Every chat gets its own
// queue and goroutine, created on first use and retired once the queue drains,
// so a slow chat never holds back the others.
type Outbox struct {
	api        Sender
	retryDelay time.Duration

	mu     sync.Mutex
	queues map[int64]*chatQueue
	closed bool
	wg     sync.WaitGroup
}

func NewOutbox(api Sender, retryDelay time.Duration) *Outbox {
	return &Outbox{
		api:        api,
		retryDelay: retryDelay,
		queues:     make(map[int64]*chatQueue),
	}
}

// Send queues a message-producing call.
func (o *Outbox) Send(chatID int64, c tgbotapi.Chattable) {
	o.push(chatID, job{c: c})
}

// SendPaced queues a call that waits delay before it goes out.
func (o *Outbox) SendPaced(chatID int64, c tgbotapi.Chattable, delay time.Duration) {
	o.push(chatID, job{c: c, delay: delay})
}

// Request queues a call whose result is not a message.
func (o *Outbox) Request(chatID int64, c tgbotapi.Chattable) {
	o.push(chatID, job{c: c, request: true})
}

// SendWait queues a call and waits for its outcome, including the retry.
func (o *Outbox) SendWait(ctx context.Context, chatID int64, c tgbotapi.Chattable) error {
	done := make(chan error, 1)
	if !o.push(chatID, job{c: c, done: done}) {
		return ErrOutboxClosed
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs and waits until every queue is drained.
func (o *Outbox) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.wg.Wait()
}

func (o *Outbox) push(chatID int64, j job) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		log.Printf("[warn] outbox closed, dropping call to chat %d", chatID)
		if j.done != nil {
			j.done <- ErrOutboxClosed
		}
		return false
	}

	if q, ok := o.queues[chatID]; ok {
		q.jobs = append(q.jobs, j)
		return true
	}

	o.queues[chatID] = &chatQueue{jobs: []job{j}}
	o.wg.Add(1)
	go o.run(chatID)
	return true
}

func (o *Outbox) run(chatID int64) {
	defer o.wg.Done()
	for {
		j, ok := o.next(chatID)
		if !ok {
			return
		}
		err := o.deliver(chatID, j)
		if j.done != nil {
			j.done <- err
		}
	}
}

// next pops the head of a chat queue and retires the queue when it is empty.
func (o *Outbox) next(chatID int64) (job, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	q := o.queues[chatID]
	if q == nil || len(q.jobs) == 0 {
		delete(o.queues, chatID)
		return job{}, false
	}
	j := q.jobs[0]
	q.jobs[0] = job{}
	q.jobs = q.jobs[1:]
	return j, true
}

func (o *Outbox) deliver(chatID int64, j job) error {
	if j.delay > 0 {
		time.Sleep(j.delay)
	}
	err := o.call(j)
	if err == nil {
		return nil
	}

	log.Printf("[warn] send to chat %d failed, retrying: %v", chatID, err)
	time.Sleep(o.retryDelay)
	if err = o.call(j); err != nil {
		log.Printf("send to chat %d: %v", chatID, err)
		return err
	}
	return nil
}

func (o *Outbox) call(j job) error {
	if j.request {
		_, err := o.api.Request(j.c)
		return err
	}
	_, err := o.api.Send(j.c)
	return err
}
