package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"yideng/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Runner executes ledger operations one at a time. Each operation runs inside a single
// database transaction together with the events it emits, so a failure leaves every
// component untouched and emits nothing.
type Runner struct {
	db *gorm.DB
	mu sync.Mutex

	subsMu      sync.RWMutex
	subscribers []func(models.LedgerEvent)
}

func newRunner(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

// Tx is the handle an operation mutates state through.
type Tx struct {
	db      *gorm.DB
	ctx     context.Context
	events  []models.LedgerEvent
	nextSeq uint64
}

// DB exposes the underlying transaction for components outside this package.
func (t *Tx) DB() *gorm.DB {
	return t.db
}

func (t *Tx) Context() context.Context {
	return t.ctx
}

// Emit appends an event to the log as part of the current transaction.
func (t *Tx) Emit(contract Address, name string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", name, err)
	}

	if t.nextSeq == 0 {
		var last uint64
		if err := t.db.Model(&models.LedgerEvent{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
			return fmt.Errorf("read event sequence: %w", err)
		}
		t.nextSeq = last + 1
	}

	event := models.LedgerEvent{
		ID:        uuid.NewString(),
		Seq:       t.nextSeq,
		Contract:  string(contract),
		Name:      name,
		Payload:   datatypes.JSON(raw),
		CreatedAt: time.Now(),
	}
	if err := t.db.Create(&event).Error; err != nil {
		return fmt.Errorf("store %s event: %w", name, err)
	}

	t.nextSeq++
	t.events = append(t.events, event)
	return nil
}

// payoutKey marks contexts handed to an outside party during a value transfer.
type payoutKey struct{}

func inPayout(ctx context.Context) bool {
	marked, _ := ctx.Value(payoutKey{}).(bool)
	return marked
}

// Run executes fn atomically. Other callers wait for the running operation; calls
// made with the context of an in-flight payout are rejected with ErrReentrantCall.
func (r *Runner) Run(ctx context.Context, fn func(tx *Tx) error) error {
	if inPayout(ctx) {
		return ErrReentrantCall
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var emitted []models.LedgerEvent
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		tx := &Tx{db: db, ctx: ctx}
		if err := fn(tx); err != nil {
			return err
		}
		emitted = tx.events
		return nil
	})
	if err != nil {
		return err
	}

	r.publish(emitted)
	return nil
}

// interact runs an outbound value transfer under the reentrancy guard: for the
// duration of fn, tx.Context() is marked so ledger calls made with it fail instead
// of waiting on the lock the operation holds. State must already be fully updated.
func (r *Runner) interact(tx *Tx, fn func() error) error {
	if inPayout(tx.ctx) {
		return ErrReentrantCall
	}
	outer := tx.ctx
	tx.ctx = context.WithValue(outer, payoutKey{}, true)
	defer func() { tx.ctx = outer }()
	return fn()
}

// Subscribe registers fn to receive every committed event in emission order.
func (r *Runner) Subscribe(fn func(models.LedgerEvent)) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

func (r *Runner) publish(events []models.LedgerEvent) {
	if len(events) == 0 {
		return
	}

	r.subsMu.RLock()
	subs := make([]func(models.LedgerEvent), len(r.subscribers))
	copy(subs, r.subscribers)
	r.subsMu.RUnlock()

	for _, event := range events {
		for _, fn := range subs {
			deliver(fn, event)
		}
	}
}

func deliver(fn func(models.LedgerEvent), event models.LedgerEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[EVENTS] subscriber panicked on %s #%d: %v", event.Name, event.Seq, rec)
		}
	}()
	fn(event)
}
