package export

import (
	"context"

	"alloia/internal/catalog"
	"alloia/internal/logger"
	"alloia/internal/models"
)

// Extractor reads catalog products through the filter rules. It never
// writes to the catalog.
type Extractor struct {
	store catalog.Store
	log   *logger.Logger
}

func NewExtractor(store catalog.Store, log *logger.Logger) *Extractor {
	return &Extractor{store: store, log: log}
}

// Extract returns the products matching the filters. Status defaults to
// published only; IncludeInactive widens it. The virtual and
// out-of-stock gates are applied after the catalog read. Rows the
// catalog cannot resolve are skipped without counting as failures.
func (e *Extractor) Extract(ctx context.Context, filters Filters) ([]models.Product, error) {
	statuses := []string{models.StatusPublished}
	if filters.IncludeInactive {
		statuses = append(statuses, models.StatusDraft, models.StatusPrivate, models.StatusPending)
	}

	rows, err := e.store.ListProducts(ctx, catalog.Query{
		Statuses:           statuses,
		ExcludeCategoryIDs: filters.ExcludeCategories,
		IncludeIDs:         filters.IncludeIDs,
		MinPrice:           filters.MinPrice,
		MaxPrice:           filters.MaxPrice,
	})
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(rows))
	for _, p := range rows {
		if !filters.IncludeVirtual && p.Virtual {
			e.log.Debug("Excluding virtual product %d (%s)", p.ID, p.Name)
			continue
		}
		if !filters.IncludeOutOfStock && !p.InStock {
			e.log.Debug("Excluding out-of-stock product %d (%s)", p.ID, p.Name)
			continue
		}
		products = append(products, p)
	}

	e.log.Debug("Extracted %d of %d catalog products", len(products), len(rows))
	return products, nil
}
