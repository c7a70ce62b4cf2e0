package models

import (
	"time"
)

// Product statuses mirror the store's publication states.
const (
	StatusPublished = "publish"
	StatusDraft     = "draft"
	StatusPrivate   = "private"
	StatusPending   = "pending"
)

// Product types. Variable products carry configurable options and a
// variant set; everything else is treated as simple.
const (
	TypeSimple   = "simple"
	TypeVariable = "variable"
)

type Product struct {
	ID               int64    `json:"id" gorm:"primaryKey"`
	SKU              string   `json:"sku" gorm:"index"`
	Name             string   `json:"name" gorm:"not null"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	Slug             string   `json:"slug" gorm:"index"`
	Permalink        string   `json:"permalink"`
	Status           string   `json:"status" gorm:"default:publish;index"`
	Type             string   `json:"type" gorm:"default:simple"`
	Virtual          bool     `json:"virtual"`
	Price            float64  `json:"price" gorm:"type:decimal(10,2)"`
	RegularPrice     float64  `json:"regular_price" gorm:"type:decimal(10,2)"`
	SalePrice        *float64 `json:"sale_price" gorm:"type:decimal(10,2)"`
	Currency         string   `json:"currency" gorm:"default:USD"`
	InStock          bool     `json:"in_stock" gorm:"default:true"`
	StockQuantity    *int     `json:"stock_quantity"`
	Visibility       string   `json:"visibility" gorm:"default:visible"`

	// Media: main image first, then gallery.
	ImageURL string   `json:"image_url"`
	Gallery  []string `json:"gallery" gorm:"serializer:json"`

	// Manufacturer metadata fallback when no brand attribute exists.
	Manufacturer string `json:"manufacturer"`

	Length *float64 `json:"length"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Weight *float64 `json:"weight"`

	Categories []Category         `json:"categories" gorm:"many2many:product_categories"`
	Tags       []Tag              `json:"tags" gorm:"many2many:product_tags"`
	Attributes []ProductAttribute `json:"attributes" gorm:"foreignKey:ProductID"`
	Variants   []Variant          `json:"variants" gorm:"foreignKey:ProductID"`

	// Average rating data used for structured product metadata.
	RatingCount   int     `json:"rating_count"`
	AverageRating float64 `json:"average_rating"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsVariable reports whether the product carries configurable options.
func (p *Product) IsVariable() bool {
	return p.Type == TypeVariable
}

// Images returns the capped, ordered image list: main image first, then
// gallery entries, never exceeding max entries total.
func (p *Product) Images(max int) []string {
	images := make([]string, 0, max)
	if p.ImageURL != "" {
		images = append(images, p.ImageURL)
	}
	for _, url := range p.Gallery {
		if len(images) >= max {
			break
		}
		if url != "" {
			images = append(images, url)
		}
	}
	return images
}

type Category struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null"`
	Slug string `json:"slug" gorm:"index"`
}

type Tag struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null"`
}

type ProductAttribute struct {
	ID        int64    `json:"id" gorm:"primaryKey"`
	ProductID int64    `json:"product_id" gorm:"index"`
	Name      string   `json:"name" gorm:"not null"`
	Values    []string `json:"values" gorm:"serializer:json"`
}

type Variant struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	ProductID int64  `json:"product_id" gorm:"index"`
	SKU       string `json:"sku"`
	Title     string `json:"title"`

	Price        float64  `json:"price" gorm:"type:decimal(10,2)"`
	RegularPrice float64  `json:"regular_price" gorm:"type:decimal(10,2)"`
	SalePrice    *float64 `json:"sale_price" gorm:"type:decimal(10,2)"`

	InStock           bool `json:"in_stock" gorm:"default:true"`
	StockQuantity     *int `json:"stock_quantity"`
	BackordersAllowed bool `json:"backorders_allowed"`

	// Raw option selections keyed by the store's attribute names, e.g.
	// "attribute_pa_color" -> "blue".
	Attributes map[string]string `json:"attributes" gorm:"serializer:json"`

	ImageURL string `json:"image_url"`

	Length *float64 `json:"length"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Weight *float64 `json:"weight"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
