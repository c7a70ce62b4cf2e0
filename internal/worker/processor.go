package worker

import (
	"context"
	"fmt"
	"time"

	"alloia/internal/catalog"
	"alloia/internal/export"
	"alloia/internal/logger"
	"alloia/internal/models"
	"alloia/internal/queue"
)

// Processor executes scheduled tasks. It honors each task's not-before
// timestamp so the 60s export delay and the 5s auto-sync debounce
// survive the trip through the queue.
type Processor struct {
	exporter *export.Exporter
	gateway  export.Gateway
	store    catalog.Store
	log      *logger.Logger

	// wait is swapped out in tests.
	wait func(time.Duration)
}

func NewProcessor(exporter *export.Exporter, gateway export.Gateway, store catalog.Store, log *logger.Logger) *Processor {
	return &Processor{
		exporter: exporter,
		gateway:  gateway,
		store:    store,
		log:      log,
		wait:     time.Sleep,
	}
}

func (p *Processor) Process(ctx context.Context, task queue.Task) error {
	if delay := time.Until(task.NotBefore); delay > 0 {
		p.log.Debug("Holding %s task for %s", task.Type, delay)
		p.wait(delay)
	}

	switch task.Type {
	case queue.TaskBackgroundExport:
		return p.processBackgroundExport(ctx, task.ExportID)
	case queue.TaskAutoSync:
		return p.processAutoSync(ctx, task.ProductID)
	default:
		return fmt.Errorf("unknown task type: %s", task.Type)
	}
}

func (p *Processor) processBackgroundExport(ctx context.Context, exportID string) error {
	p.log.Info("Processing background export %s", exportID)
	return p.exporter.RunBackground(ctx, exportID)
}

// processAutoSync exports one product after a catalog change. Products
// that are not published, not visible, or gone are skipped silently;
// a failed domain validation skips rather than errors so a transient
// remote outage doesn't poison the consumer group.
func (p *Processor) processAutoSync(ctx context.Context, productID int64) error {
	validation, err := p.gateway.ValidateDomainForSync(ctx, "")
	if err != nil || validation == nil || !validation.Valid {
		p.log.Debug("Auto-sync: domain not validated for product %d, skipping", productID)
		return nil
	}

	product, err := p.store.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		p.log.Debug("Auto-sync: product %d not found, skipping", productID)
		return nil
	}
	if product.Status != models.StatusPublished {
		p.log.Debug("Auto-sync: product %d not published, skipping", productID)
		return nil
	}
	if product.Visibility == "hidden" || product.Visibility == "private" {
		p.log.Debug("Auto-sync: product %d not visible, skipping", productID)
		return nil
	}

	result, err := p.exporter.ExportProducts(ctx, export.SingleProductFilters(productID), false)
	if err != nil {
		p.log.Warn("Auto-sync: failed to sync product %d: %v", productID, err)
		return nil
	}
	p.log.Info("Auto-sync: product %d synced (%s)", productID, result.Message)
	return nil
}
