package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"foodgram/internal/logging"
	"foodgram/internal/metrics"
	"foodgram/internal/model"
	"foodgram/internal/platform/rabbitmq"
)

type activityStore interface {
	Create(ctx context.Context, event *model.ActivityEvent) error
}

// ActivityPersistWorker drains the activity queue into the database.
type ActivityPersistWorker struct {
	conn      *amqp.Connection
	store     activityStore
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewActivityPersistWorker(conn *amqp.Connection, store activityStore, queueName string) *ActivityPersistWorker {
	return &ActivityPersistWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
	}
}

func (w *ActivityPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	ch, err := w.conn.Channel()
	if err != nil {
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		return err
	}
	if err := ch.Qos(32, 0, false); err != nil {
		_ = ch.Close()
		return fmt.Errorf("set worker prefetch failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
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
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	logging.Info().Str("queue", w.queueName).Msg("activity worker started")
	return nil
}

func (w *ActivityPersistWorker) handle(ctx context.Context, d amqp.Delivery) {
	if err := w.persist(ctx, d.Body); err != nil {
		logging.Error().Err(err).Str("queue", w.queueName).Msg("activity worker dropped message")
		metrics.ActivityEvents.WithLabelValues("failed").Inc()
		_ = d.Nack(false, false)
		return
	}
	metrics.ActivityEvents.WithLabelValues("persisted").Inc()
	_ = d.Ack(false)
}

func (w *ActivityPersistWorker) persist(ctx context.Context, body []byte) error {
	var event model.ActivityEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode activity event failed: %w", err)
	}
	if event.UserID == 0 || event.Kind == "" {
		return fmt.Errorf("activity event missing user or kind")
	}
	event.ID = 0
	return w.store.Create(ctx, &event)
}

func (w *ActivityPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
