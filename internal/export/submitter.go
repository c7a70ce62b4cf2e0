package export

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"alloia/internal/alloia"
	"alloia/internal/catalog"
	"alloia/internal/logger"
	"alloia/internal/models"
)

// Result is the aggregate outcome of a submission run.
type Result struct {
	Success       bool     `json:"success"`
	ExportedCount int      `json:"exported_count"`
	FailedCount   int      `json:"failed_count"`
	TotalCount    int      `json:"total_count"`
	ExportID      string   `json:"export_id,omitempty"`
	Errors        []string `json:"errors,omitempty"`
	Message       string   `json:"message"`
}

// Submitter chunks a validated payload and submits each chunk to the
// ingestion endpoint in order, pausing one second between chunks. A
// failed chunk marks its items failed and the run continues.
type Submitter struct {
	gateway Gateway
	meta    catalog.MetaStore
	ledger  *Ledger
	log     *logger.Logger

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

func NewSubmitter(gateway Gateway, meta catalog.MetaStore, ledger *Ledger, log *logger.Logger) *Submitter {
	return &Submitter{
		gateway: gateway,
		meta:    meta,
		ledger:  ledger,
		log:     log,
		sleep:   time.Sleep,
	}
}

// Submit pushes every node to the remote service in consecutive chunks
// of the configured batch size, records per-product outcomes, updates
// the ledger and returns the aggregate result.
func (s *Submitter) Submit(ctx context.Context, payload *Payload) (*Result, error) {
	exportID := newExportID()
	batchSize := s.ledger.BatchSize(ctx)
	chunks := chunkNodes(payload.Nodes, batchSize)

	var exported, failed int
	var errs []string

	for i, chunk := range chunks {
		chunkExported, chunkFailed, chunkErrs := s.submitChunk(ctx, chunk, exportID)
		exported += chunkExported
		failed += chunkFailed
		if len(chunkErrs) > 0 {
			for _, e := range chunkErrs {
				errs = append(errs, fmt.Sprintf("Batch %d: %s", i+1, e))
			}
		}

		if i < len(chunks)-1 {
			s.sleep(time.Second)
		}
	}

	if err := s.ledger.RecordRun(ctx, exported, failed); err != nil {
		s.log.Error("Failed to update export ledger: %v", err)
	}
	if err := s.ledger.SetLastExportID(ctx, exportID); err != nil {
		s.log.Error("Failed to record export id: %v", err)
	}

	message := fmt.Sprintf("Exported %d products successfully", exported)
	if failed > 0 {
		message += fmt.Sprintf(", %d failed", failed)
	}

	return &Result{
		Success:       failed == 0,
		ExportedCount: exported,
		FailedCount:   failed,
		TotalCount:    len(payload.Nodes),
		ExportID:      exportID,
		Errors:        errs,
		Message:       message,
	}, nil
}

// submitChunk sends one chunk. When the response carries per-item
// results each item succeeds or fails on its own flag; a response
// without detail means the whole chunk was accepted. A transport or
// remote error fails every item in the chunk with the translated
// message.
func (s *Submitter) submitChunk(ctx context.Context, chunk []Node, exportID string) (exported, failed int, errs []string) {
	products := make([]alloia.ProductPayload, 0, len(chunk))
	for i := range chunk {
		products = append(products, toProductPayload(&chunk[i]))
	}

	resp, err := s.gateway.BulkIngest(ctx, products)
	if err != nil {
		message := TranslateIngestError(err.Error())
		for i := range chunk {
			s.recordFailure(ctx, &chunk[i], exportID, message)
		}
		return 0, len(chunk), []string{"Batch export failed: " + message}
	}

	if len(resp.Results) == 0 {
		for i := range chunk {
			s.recordSuccess(ctx, &chunk[i], exportID, "")
		}
		return len(chunk), 0, nil
	}

	for i, result := range resp.Results {
		if i >= len(chunk) {
			break
		}
		node := &chunk[i]
		if result.Success {
			s.recordSuccess(ctx, node, exportID, result.ProductID)
			exported++
			continue
		}
		message := result.Error
		if message == "" {
			message = "Unknown error"
		}
		s.recordFailure(ctx, node, exportID, message)
		failed++
		errs = append(errs, fmt.Sprintf("Product %s: %s", node.Properties.Name, message))
	}
	return exported, failed, errs
}

func (s *Submitter) recordSuccess(ctx context.Context, node *Node, exportID, remoteID string) {
	err := s.meta.SetExportMeta(ctx, models.ProductExportMeta{
		ProductID:  node.Properties.SourceID,
		Status:     models.ExportStatusExported,
		ExportID:   exportID,
		RemoteID:   remoteID,
		ExportedAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("Failed to record export status for product %d: %v", node.Properties.SourceID, err)
	}
}

func (s *Submitter) recordFailure(ctx context.Context, node *Node, exportID, message string) {
	err := s.meta.SetExportMeta(ctx, models.ProductExportMeta{
		ProductID:  node.Properties.SourceID,
		Status:     models.ExportStatusFailed,
		Error:      message,
		ExportID:   exportID,
		ExportedAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("Failed to record export status for product %d: %v", node.Properties.SourceID, err)
	}
}

// toProductPayload flattens a graph node into the ingest shape. The
// external id is the catalog id so re-exports upsert instead of
// duplicating.
func toProductPayload(node *Node) alloia.ProductPayload {
	props := &node.Properties

	description := props.Description
	if description == "" {
		description = props.ShortDescription
	}

	p := alloia.ProductPayload{
		Name:        props.Name,
		Description: description,
		Category:    strings.Join(props.Category, ", "),
		SKU:         props.SKU,
		Price:       props.Price,
	}

	if props.Manufacturer != "" {
		p.Manufacturer = props.Manufacturer
	}
	if len(props.Images) > 0 {
		p.Images = props.Images
	}
	if len(props.Attributes) > 0 {
		p.Attributes = props.Attributes
	}
	p.Currency = props.Currency

	p.SourceID = props.SourceID
	p.ExternalID = strconv.FormatInt(props.SourceID, 10)
	p.Permalink = props.Permalink
	p.Slug = props.Slug
	p.StockQuantity = props.StockQuantity

	inStock := props.Availability
	p.InStock = &inStock

	return p
}

func chunkNodes(nodes []Node, size int) [][]Node {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var chunks [][]Node
	for start := 0; start < len(nodes); start += size {
		end := start + size
		if end > len(nodes) {
			end = len(nodes)
		}
		chunks = append(chunks, nodes[start:end])
	}
	return chunks
}

// newExportID builds a run token like "export-1724800000-1a2b3c4d".
func newExportID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("export-%d-%s", time.Now().Unix(), random)
}
