package utils

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"yideng/models"

	"github.com/go-resty/resty/v2"
)

const webhookQueueSize = 1024

// EventWebhook forwards committed ledger events, in order, to an indexer endpoint.
// Delivery is at most once; indexers backfill gaps from GET /events?afterSeq=.
type EventWebhook struct {
	client *resty.Client
	url    string

	mu       sync.RWMutex
	closed   bool
	queue    chan models.LedgerEvent
	done     chan struct{}
	stopOnce sync.Once
}

func NewEventWebhook(url string) *EventWebhook {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Content-Type", "application/json")

	return &EventWebhook{
		client: client,
		url:    url,
		queue:  make(chan models.LedgerEvent, webhookQueueSize),
		done:   make(chan struct{}),
	}
}

// Start launches the delivery worker.
func (w *EventWebhook) Start() {
	go w.run()
	log.Printf("[WEBHOOK] Forwarding ledger events to %s", w.url)
}

// Enqueue is a ledger subscriber. It never blocks; events are dropped when the queue
// is full or the webhook has been stopped.
func (w *EventWebhook) Enqueue(event models.LedgerEvent) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		log.Printf("[WEBHOOK] Stopped, dropped %s #%d", event.Name, event.Seq)
		return
	}
	select {
	case w.queue <- event:
	default:
		log.Printf("[WEBHOOK] Queue full, dropped %s #%d", event.Name, event.Seq)
	}
}

// Stop drains the queue and waits for the worker. Later events are dropped.
func (w *EventWebhook) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.queue)
		w.mu.Unlock()
		<-w.done
	})
}

func (w *EventWebhook) run() {
	defer close(w.done)
	for event := range w.queue {
		if err := w.deliver(event); err != nil {
			log.Printf("[WEBHOOK] Delivery of %s #%d failed: %v", event.Name, event.Seq, err)
		}
	}
}

func (w *EventWebhook) deliver(event models.LedgerEvent) error {
	resp, err := w.client.R().
		SetHeader("X-Event-Seq", strconv.FormatUint(event.Seq, 10)).
		SetHeader("X-Event-Name", event.Name).
		SetBody(event).
		Post(w.url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("indexer returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
