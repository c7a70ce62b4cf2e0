package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"alloia/internal/logger"
)

// Topic carries both background exports and auto-sync events.
const Topic = "alloia-export-tasks"

// KafkaScheduler publishes tasks to the export topic. The delay is
// encoded as a not-before timestamp on the task itself since Kafka has
// no native delayed delivery.
type KafkaScheduler struct {
	writer *kafka.Writer
	log    *logger.Logger
}

func NewKafkaScheduler(brokers string, log *logger.Logger) *KafkaScheduler {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaScheduler{writer: writer, log: log}
}

func (s *KafkaScheduler) Schedule(ctx context.Context, delay time.Duration, task Task) error {
	now := time.Now().UTC()
	task.EnqueuedAt = now
	task.NotBefore = now.Add(delay)

	value, err := json.Marshal(task)
	if err != nil {
		return err
	}

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.Type),
		Value: value,
	})
	if err != nil {
		return err
	}

	s.log.Debug("Scheduled %s task (delay %s)", task.Type, delay)
	return nil
}

func (s *KafkaScheduler) Close() error {
	return s.writer.Close()
}
