// Package worker consumes scheduled export tasks from Kafka and runs
// them through the pipeline.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"alloia/internal/config"
	"alloia/internal/logger"
	"alloia/internal/queue"
)

type Worker struct {
	config    *config.Config
	logger    *logger.Logger
	reader    *kafka.Reader
	processor *Processor
}

func New(cfg *config.Config, log *logger.Logger, processor *Processor) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "alloia-worker",
		Topic:          queue.Topic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config:    cfg,
		logger:    log,
		reader:    reader,
		processor: processor,
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for export tasks...")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		w.logger.Debug("Received task: %s", string(message.Value))

		var task queue.Task
		if err := json.Unmarshal(message.Value, &task); err != nil {
			w.logger.Error("Failed to parse task: %v", err)
			continue
		}

		if err := w.processor.Process(context.Background(), task); err != nil {
			w.logger.Error("Failed to process %s task: %v", task.Type, err)
			continue
		}

		w.logger.Debug("Task processed successfully")
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
