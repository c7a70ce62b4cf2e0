package export

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"alloia/internal/alloia"
	"alloia/internal/kvstore"
	"alloia/internal/logger"
)

// Option keys backing the ledger.
const (
	keyProductsExported    = "alloia_products_exported"
	keyProductsFailed      = "alloia_products_export_failed"
	keyLastExportTimestamp = "alloia_last_export_timestamp"
	keyLastExportID        = "alloia_last_export_id"
	keyBatchSize           = "alloia_export_batch_size"
	keyClientID            = "alloia_client_id"
)

// Batch size bounds enforced on updates.
const (
	MinBatchSize     = 10
	MaxBatchSize     = 1000
	DefaultBatchSize = 50
)

// ErrInvalidBatchSize rejects sizes outside [MinBatchSize, MaxBatchSize];
// the stored value is left unchanged.
var ErrInvalidBatchSize = fmt.Errorf("batch size must be between %d and %d", MinBatchSize, MaxBatchSize)

// Statistics is the cumulative export summary shown to admins. Source
// says whether TotalExported came from the remote graph or the local
// counter.
type Statistics struct {
	TotalExported int    `json:"total_exported"`
	TotalFailed   int    `json:"total_failed"`
	LastExport    string `json:"last_export"`
	LastExportID  string `json:"last_export_id"`
	BatchSize     int    `json:"batch_size"`
	Source        string `json:"source"`
}

// Ledger persists the cumulative counters through the option store.
// Counters only ever grow; chunk results are added after each run.
type Ledger struct {
	kv          kvstore.Store
	gateway     Gateway
	defaultSize int
	log         *logger.Logger
}

// NewLedger builds a ledger whose BatchSize falls back to
// defaultBatchSize when no size has been stored; non-positive values
// fall back to DefaultBatchSize.
func NewLedger(kv kvstore.Store, gateway Gateway, defaultBatchSize int, log *logger.Logger) *Ledger {
	if defaultBatchSize <= 0 {
		defaultBatchSize = DefaultBatchSize
	}
	return &Ledger{kv: kv, gateway: gateway, defaultSize: defaultBatchSize, log: log}
}

// RecordRun adds one run's exported/failed counts to the cumulative
// totals and stamps the last-export time.
func (l *Ledger) RecordRun(ctx context.Context, exported, failed int) error {
	if err := l.addCounter(ctx, keyProductsExported, exported); err != nil {
		return err
	}
	if err := l.addCounter(ctx, keyProductsFailed, failed); err != nil {
		return err
	}
	return l.kv.Set(ctx, keyLastExportTimestamp, time.Now().UTC().Format(time.RFC3339))
}

// SetLastExportID records the generated export id for the latest run.
func (l *Ledger) SetLastExportID(ctx context.Context, exportID string) error {
	return l.kv.Set(ctx, keyLastExportID, exportID)
}

// BatchSize returns the configured chunk size, falling back to the
// constructor default when unset or unreadable.
func (l *Ledger) BatchSize(ctx context.Context) int {
	raw, err := l.kv.Get(ctx, keyBatchSize)
	if err != nil {
		return l.defaultSize
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size <= 0 {
		return l.defaultSize
	}
	return size
}

// SetBatchSize stores a new chunk size after bounds-checking it.
func (l *Ledger) SetBatchSize(ctx context.Context, size int) error {
	if size < MinBatchSize || size > MaxBatchSize {
		return ErrInvalidBatchSize
	}
	return l.kv.Set(ctx, keyBatchSize, strconv.Itoa(size))
}

// Statistics returns the cumulative counters. The exported total is
// reconciled at read time against the remote graph's product count when
// a client id is available; any failure falls back to the local value.
func (l *Ledger) Statistics(ctx context.Context) Statistics {
	stats := Statistics{
		TotalExported: l.counter(ctx, keyProductsExported),
		TotalFailed:   l.counter(ctx, keyProductsFailed),
		BatchSize:     l.BatchSize(ctx),
		Source:        "local",
	}
	if v, err := l.kv.Get(ctx, keyLastExportTimestamp); err == nil {
		stats.LastExport = v
	}
	if v, err := l.kv.Get(ctx, keyLastExportID); err == nil {
		stats.LastExportID = v
	}

	if count, ok := l.remoteCount(ctx); ok {
		stats.TotalExported = count
		stats.Source = "api"
	}
	return stats
}

// remoteCount fetches the synced-product count from the graph, caching
// the client id on first resolution.
func (l *Ledger) remoteCount(ctx context.Context) (int, bool) {
	if l.gateway == nil {
		return 0, false
	}

	clientID, err := l.kv.Get(ctx, keyClientID)
	if err != nil || clientID == "" {
		validation, verr := l.gateway.ValidateDomainForSync(ctx, "")
		if verr != nil || validation == nil || validation.ClientID == "" {
			return 0, false
		}
		clientID = validation.ClientID
		if serr := l.kv.Set(ctx, keyClientID, clientID); serr != nil {
			l.log.Warn("Failed to cache client id: %v", serr)
		}
	}

	resp, err := l.gateway.GetProductsCount(ctx, clientID)
	if err != nil {
		l.log.Debug("Remote product count unavailable: %v", err)
		return 0, false
	}
	return resp.Count, true
}

func (l *Ledger) counter(ctx context.Context, key string) int {
	raw, err := l.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			l.log.Warn("Failed to read %s: %v", key, err)
		}
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func (l *Ledger) addCounter(ctx context.Context, key string, delta int) error {
	current := l.counter(ctx, key)
	return l.kv.Set(ctx, key, strconv.Itoa(current+delta))
}

// Gateway is the slice of the remote API the pipeline depends on.
type Gateway interface {
	ValidateDomainForSync(ctx context.Context, domain string) (*alloia.DomainValidation, error)
	BulkIngest(ctx context.Context, products []alloia.ProductPayload) (*alloia.IngestResponse, error)
	GetProductsCount(ctx context.Context, clientID string) (*alloia.CountResponse, error)
}
