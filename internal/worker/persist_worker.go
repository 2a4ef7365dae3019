package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/SamOhrenberg/AboutSamuel/internal/platform/logger"
)

// StoreFunc persists one decoded payload.
type StoreFunc[T any] func(ctx context.Context, v *T) error

// PersistWorker drains a queue of JSON payloads into the database. Messages that
// fail to decode or store are dropped with a nack so a poison message never loops.
type PersistWorker[T any] struct {
	conn      *amqp.Connection
	queueName string
	store     StoreFunc[T]
	log       *logger.Logger
	onResult  func(queue string, ok bool)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPersistWorker[T any](conn *amqp.Connection, queueName string, store StoreFunc[T], log *logger.Logger) *PersistWorker[T] {
	return &PersistWorker[T]{
		conn:      conn,
		queueName: queueName,
		store:     store,
		log:       log.With("queue", queueName),
		onResult:  func(string, bool) {},
	}
}

// OnResult registers a callback invoked after every delivery, typically a metrics counter.
func (w *PersistWorker[T]) OnResult(fn func(queue string, ok bool)) {
	if fn != nil {
		w.onResult = fn
	}
}

func (w *PersistWorker[T]) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	ch, err := w.conn.Channel()
	if err != nil {
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.log.Warn("delivery channel closed")
					return
				}
				if w.handle(workerCtx, d.Body) {
					_ = d.Ack(false)
				} else {
					_ = d.Nack(false, false)
				}
			}
		}
	}()

	w.log.Info("persist worker started")
	return nil
}

func (w *PersistWorker[T]) handle(ctx context.Context, body []byte) bool {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		w.log.Error("worker decode payload failed", "error", err)
		w.onResult(w.queueName, false)
		return false
	}
	if err := w.store(ctx, &v); err != nil {
		w.log.Error("worker persist payload failed", "error", err)
		w.onResult(w.queueName, false)
		return false
	}
	w.onResult(w.queueName, true)
	return true
}

func (w *PersistWorker[T]) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
