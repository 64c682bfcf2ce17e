package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"ocrqa/internal/model"
	"ocrqa/internal/repository"
)

// DocumentPersistWorker consumes upload events and writes the registry
// rows, so the upload endpoint does not wait on MySQL.
type DocumentPersistWorker struct {
	conn      *amqp.Connection
	repo      *repository.DocumentRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDocumentPersistWorker(conn *amqp.Connection, repo *repository.DocumentRepository, queueName string) *DocumentPersistWorker {
	return &DocumentPersistWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *DocumentPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
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
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

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

				var doc model.Document
				if err := json.Unmarshal(d.Body, &doc); err != nil {
					log.Printf("worker decode document event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.repo.Create(&doc); err != nil {
					log.Printf("worker persist document %s failed: %v", doc.UUID, err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *DocumentPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
