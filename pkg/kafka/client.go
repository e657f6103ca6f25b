// Package kafka provides the ingestion task queue.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docquery-go/internal/config"
	"docquery-go/pkg/database"
	"docquery-go/pkg/log"
	"docquery-go/pkg/tasks"

	"github.com/segmentio/kafka-go"
)

// TaskProcessor is any service that can process an ingestion task. It
// decouples the consumer from the concrete pipeline implementation.
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.IngestTask) error
}

var producer *kafka.Writer

// InitProducer initializes the Kafka producer.
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka producer initialized successfully")
}

// ProduceIngestTask publishes a document ingestion task.
func ProduceIngestTask(task tasks.IngestTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}

	err = producer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(task.DocumentID),
			Value: taskBytes,
		},
	)
	return err
}

// StartConsumer runs a consumer loop that feeds tasks to the processor.
// Documents are independent, so each message is one unit of work; all
// pipeline writes are idempotent, which makes redelivery safe.
func StartConsumer(cfg config.KafkaConfig, processor TaskProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  "docquery-ingest",
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	log.Infof("Kafka consumer started, listening on topic '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(context.Background())
		if err != nil {
			log.Error("failed to read message from Kafka", err)
			break
		}

		var task tasks.IngestTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("cannot parse Kafka message: %v, value: %s", err, string(m.Value))
			// Malformed message: commit so it does not block the queue.
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("failed to commit malformed message: %v", err)
			}
			continue
		}

		log.Infof("processing ingest task: docID=%s, file=%s", task.DocumentID, task.FileName)
		if err := processor.Process(context.Background(), task); err != nil {
			log.Errorf("ingest task failed: docID=%s, error: %v", task.DocumentID, err)
			// Count delivery attempts in Redis; commit the offset once the
			// budget is exhausted so the task stops cycling.
			attemptsKey := fmt.Sprintf("ingest:attempts:%s", task.DocumentID)
			attempts, incErr := database.RDB.Incr(context.Background(), attemptsKey).Result()
			if incErr == nil {
				_ = database.RDB.Expire(context.Background(), attemptsKey, 24*time.Hour).Err()
			}
			if incErr != nil {
				// Redis unavailable: leave the offset uncommitted and let
				// Kafka redeliver.
				continue
			}
			if attempts >= 3 {
				log.Errorf("ingest task failed repeatedly (>=3), committing offset: docID=%s", task.DocumentID)
				if err := r.CommitMessages(context.Background(), m); err != nil {
					log.Errorf("failed to commit Kafka offset: %v", err)
				}
			}
		} else {
			log.Infof("ingest task completed: docID=%s", task.DocumentID)
			_ = database.RDB.Del(context.Background(), fmt.Sprintf("ingest:attempts:%s", task.DocumentID)).Err()
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("failed to commit Kafka offset: %v", err)
			}
		}
	}

	if err := r.Close(); err != nil {
		log.Fatalf("failed to close Kafka consumer: %v", err)
	}
}
