package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"yideng/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type delivery struct {
	seq   string
	name  string
	event models.LedgerEvent
}

func TestEventWebhookDeliversInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []delivery

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event models.LedgerEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		got = append(got, delivery{
			seq:   r.Header.Get("X-Event-Seq"),
			name:  r.Header.Get("X-Event-Name"),
			event: event,
		})
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	webhook := NewEventWebhook(srv.URL)
	webhook.Start()

	webhook.Enqueue(models.LedgerEvent{Seq: 1, Name: "Transfer", Payload: datatypes.JSON(`{"value":100}`)})
	webhook.Enqueue(models.LedgerEvent{Seq: 2, Name: "CoursePurchased", Payload: datatypes.JSON(`{}`)})
	webhook.Enqueue(models.LedgerEvent{Seq: 3, Name: "CourseCompleted", Payload: datatypes.JSON(`{}`)})
	webhook.Stop()
	webhook.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0].seq)
	assert.Equal(t, "Transfer", got[0].name)
	assert.JSONEq(t, `{"value":100}`, string(got[0].event.Payload))
	assert.Equal(t, "CoursePurchased", got[1].name)
	assert.Equal(t, uint64(3), got[2].event.Seq)
}

func TestEventWebhookSurvivesIndexerErrors(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	webhook := NewEventWebhook(srv.URL)
	webhook.Start()
	webhook.Enqueue(models.LedgerEvent{Seq: 1, Name: "Transfer"})
	webhook.Enqueue(models.LedgerEvent{Seq: 2, Name: "Transfer"})
	webhook.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls, "a failed delivery does not stop the worker")
}

func TestEventWebhookDropsWhenFull(t *testing.T) {
	webhook := NewEventWebhook("http://127.0.0.1:0")

	// worker not started, so nothing drains the queue
	for i := 0; i < webhookQueueSize+10; i++ {
		webhook.Enqueue(models.LedgerEvent{Seq: uint64(i + 1), Name: "Transfer"})
	}
	assert.Len(t, webhook.queue, webhookQueueSize)
}

func TestEventWebhookDropsAfterStop(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	webhook := NewEventWebhook(srv.URL)
	webhook.Start()
	webhook.Enqueue(models.LedgerEvent{Seq: 1, Name: "Transfer"})
	webhook.Stop()

	assert.NotPanics(t, func() {
		webhook.Enqueue(models.LedgerEvent{Seq: 2, Name: "Transfer"})
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}
