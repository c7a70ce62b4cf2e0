package models

import "time"

// Per-product export bookkeeping, written by the batch submitter after
// every ingest response.
const (
	ExportStatusExported = "exported"
	ExportStatusFailed   = "failed"
)

type ProductExportMeta struct {
	ProductID  int64     `json:"product_id" gorm:"primaryKey"`
	Status     string    `json:"status"`
	Error      string    `json:"error"`
	ExportID   string    `json:"export_id"`
	RemoteID   string    `json:"remote_id"`
	ExportedAt time.Time `json:"exported_at"`
}

// Option is a single key/value row in the shared option store. The
// export ledger and background run blobs live here.
type Option struct {
	Key   string `json:"key" gorm:"primaryKey;column:key"`
	Value string `json:"value" gorm:"column:value"`
}
