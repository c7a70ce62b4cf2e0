package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alloia/internal/models"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ListProducts(ctx context.Context, q Query) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{}).
		Preload("Categories").
		Preload("Tags").
		Preload("Attributes").
		Preload("Variants")

	if len(q.Statuses) > 0 {
		query = query.Where("status IN ?", q.Statuses)
	}
	if len(q.IncludeIDs) > 0 {
		query = query.Where("id IN ?", q.IncludeIDs)
	}
	if len(q.ExcludeCategoryIDs) > 0 {
		query = query.Where(
			"id NOT IN (?)",
			s.db.Table("product_categories").
				Select("product_id").
				Where("category_id IN ?", q.ExcludeCategoryIDs),
		)
	}
	if q.MinPrice != nil {
		query = query.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		query = query.Where("price <= ?", *q.MaxPrice)
	}

	var products []models.Product
	if err := query.Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *GormStore) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Categories").
		Preload("Tags").
		Preload("Attributes").
		Preload("Variants").
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *GormStore) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Categories").
		Preload("Tags").
		Preload("Attributes").
		Preload("Variants").
		First(&product, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GormMetaStore persists export outcomes next to the catalog.
type GormMetaStore struct {
	db *gorm.DB
}

func NewGormMetaStore(db *gorm.DB) *GormMetaStore {
	return &GormMetaStore{db: db}
}

func (s *GormMetaStore) SetExportMeta(ctx context.Context, meta models.ProductExportMeta) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		UpdateAll: true,
	}).Create(&meta).Error
}

func (s *GormMetaStore) GetExportMeta(ctx context.Context, productID int64) (*models.ProductExportMeta, error) {
	var meta models.ProductExportMeta
	err := s.db.WithContext(ctx).First(&meta, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}
