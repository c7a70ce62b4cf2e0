package export

import (
	"context"
	"errors"
	"sync"
	"time"

	"alloia/internal/alloia"
	"alloia/internal/catalog"
	"alloia/internal/logger"
	"alloia/internal/models"
	"alloia/internal/queue"
)

func testLogger() *logger.Logger {
	return logger.New("error")
}

// fakeCatalog serves a fixed product list and counts reads so tests
// can assert the pre-flight short-circuit.
type fakeCatalog struct {
	products  []models.Product
	listCalls int
}

func (f *fakeCatalog) ListProducts(ctx context.Context, q catalog.Query) ([]models.Product, error) {
	f.listCalls++

	statuses := make(map[string]bool, len(q.Statuses))
	for _, s := range q.Statuses {
		statuses[s] = true
	}
	include := make(map[int64]bool, len(q.IncludeIDs))
	for _, id := range q.IncludeIDs {
		include[id] = true
	}

	var out []models.Product
	for _, p := range f.products {
		if len(statuses) > 0 && !statuses[p.Status] {
			continue
		}
		if len(include) > 0 && !include[p.ID] {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

func (f *fakeCatalog) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].Slug == slug {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

// fakeMeta records export outcomes in memory.
type fakeMeta struct {
	mu    sync.Mutex
	metas map[int64]models.ProductExportMeta
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{metas: make(map[int64]models.ProductExportMeta)}
}

func (f *fakeMeta) SetExportMeta(ctx context.Context, meta models.ProductExportMeta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metas[meta.ProductID] = meta
	return nil
}

func (f *fakeMeta) GetExportMeta(ctx context.Context, productID int64) (*models.ProductExportMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if meta, ok := f.metas[productID]; ok {
		return &meta, nil
	}
	return nil, nil
}

// fakeGateway scripts the remote service. ingestErrs maps a call index
// (0-based) to an error for that chunk.
type fakeGateway struct {
	validation    *alloia.DomainValidation
	validationErr error
	ingestErrs    map[int]error
	responses     map[int]*alloia.IngestResponse
	count         *alloia.CountResponse
	countErr      error

	ingestCalls [][]alloia.ProductPayload
}

func okValidation() *alloia.DomainValidation {
	return &alloia.DomainValidation{
		Valid:    true,
		Domain:   "example.com",
		ClientID: "client-1",
		Checks: alloia.DomainChecks{
			APIKeyValid:      true,
			DomainAssociated: true,
			DomainValidated:  true,
		},
	}
}

func (f *fakeGateway) ValidateDomainForSync(ctx context.Context, domain string) (*alloia.DomainValidation, error) {
	if f.validationErr != nil {
		return nil, f.validationErr
	}
	if f.validation != nil {
		return f.validation, nil
	}
	return okValidation(), nil
}

func (f *fakeGateway) BulkIngest(ctx context.Context, products []alloia.ProductPayload) (*alloia.IngestResponse, error) {
	call := len(f.ingestCalls)
	f.ingestCalls = append(f.ingestCalls, products)
	if err, ok := f.ingestErrs[call]; ok {
		return nil, err
	}
	if resp, ok := f.responses[call]; ok {
		return resp, nil
	}
	return &alloia.IngestResponse{Success: true}, nil
}

func (f *fakeGateway) GetProductsCount(ctx context.Context, clientID string) (*alloia.CountResponse, error) {
	if f.countErr != nil {
		return nil, f.countErr
	}
	if f.count != nil {
		return f.count, nil
	}
	return nil, errors.New("count unavailable")
}

// fakeScheduler captures scheduled tasks.
type fakeScheduler struct {
	tasks  []queue.Task
	delays []time.Duration
}

func (f *fakeScheduler) Schedule(ctx context.Context, delay time.Duration, task queue.Task) error {
	f.tasks = append(f.tasks, task)
	f.delays = append(f.delays, delay)
	return nil
}

func testProduct(id int64, name string) models.Product {
	return models.Product{
		ID:        id,
		Name:      name,
		Status:    models.StatusPublished,
		Type:      models.TypeSimple,
		Price:     19.99,
		Currency:  "USD",
		InStock:   true,
		Slug:      name,
		Permalink: "https://example.com/product/" + name + "/",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 3, 3, 4, 5, 0, time.UTC),
	}
}
