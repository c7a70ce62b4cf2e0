package export

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"alloia/internal/kvstore"
)

// Background run statuses.
const (
	RunStatusPending    = "pending"
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

const runKeyPrefix = "alloia_background_export_"

// ErrRunNotFound is returned for unknown export ids; only background
// runs are queryable, synchronous runs return their outcome directly.
var ErrRunNotFound = errors.New("export not found")

// Run is the persisted state of one background export, keyed by its
// export id in the option store. Filters are kept so the worker
// re-extracts a fresh snapshot at execution time.
type Run struct {
	ID             string    `json:"id"`
	Filters        Filters   `json:"filters"`
	Status         string    `json:"status"`
	TotalCount     int       `json:"total_count"`
	ProcessedCount int       `json:"processed_count"`
	ExportedCount  int       `json:"exported_count"`
	FailedCount    int       `json:"failed_count"`
	Errors         []string  `json:"errors,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	CompletedAt    time.Time `json:"completed_at,omitempty"`
}

// RunStore persists background runs as single option rows.
type RunStore struct {
	kv kvstore.Store
}

func NewRunStore(kv kvstore.Store) *RunStore {
	return &RunStore{kv: kv}
}

// Create persists a new pending run and returns it.
func (s *RunStore) Create(ctx context.Context, filters Filters, total int) (*Run, error) {
	run := &Run{
		ID:         "export_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:13],
		Filters:    filters,
		Status:     RunStatusPending,
		TotalCount: total,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Save(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *RunStore) Get(ctx context.Context, exportID string) (*Run, error) {
	raw, err := s.kv.Get(ctx, runKeyPrefix+exportID)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	var run Run
	if err := json.Unmarshal([]byte(raw), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *RunStore) Save(ctx context.Context, run *Run) error {
	value, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, runKeyPrefix+run.ID, string(value))
}
