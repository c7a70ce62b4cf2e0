// Package queue is the deferred-execution boundary: callers submit a
// task now, a worker executes it later, at least once.
package queue

import (
	"context"
	"time"
)

// Task types consumed by the worker.
const (
	TaskBackgroundExport = "background_export"
	TaskAutoSync         = "auto_sync"
)

// Task is the serialized job payload. NotBefore carries the requested
// delay; the worker waits it out before executing.
type Task struct {
	Type       string    `json:"type"`
	ExportID   string    `json:"export_id,omitempty"`
	ProductID  int64     `json:"product_id,omitempty"`
	NotBefore  time.Time `json:"not_before"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Scheduler submits a task for execution after a delay.
type Scheduler interface {
	Schedule(ctx context.Context, delay time.Duration, task Task) error
}
