// Package export implements the catalog-to-AlloIA pipeline: extraction,
// graph transformation, validation, chunked batch submission and the
// cumulative export ledger.
package export

// Edge relationship types understood by the remote graph.
const (
	EdgeBelongsTo      = "BELONGS_TO"
	EdgeManufacturedBy = "MANUFACTURED_BY"
)

// Payload is the transient graph built per export invocation. It is
// never persisted as a whole; it lives for one submission and is gone.
type Payload struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one product in graph form. ID is "product-<catalog id>".
type Node struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Labels     []string   `json:"labels"`
	Properties Properties `json:"properties"`
}

// Properties carries the full product shape the graph service indexes.
// ClientID is the exporting site's host so one graph can serve many
// storefronts.
type Properties struct {
	ClientID         string              `json:"clientId"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	ShortDescription string              `json:"short_description"`
	SKU              string              `json:"sku"`
	Category         []string            `json:"category"`
	Price            float64             `json:"price"`
	RegularPrice     float64             `json:"regular_price"`
	SalePrice        *float64            `json:"sale_price"`
	Currency         string              `json:"currency"`
	Availability     bool                `json:"availability"`
	StockQuantity    *int                `json:"stock_quantity"`
	Manufacturer     string              `json:"manufacturer,omitempty"`
	Model            string              `json:"model"`
	Images           []string            `json:"images"`
	Tags             []string            `json:"tags"`
	Attributes       map[string][]string `json:"attributes"`
	Dimensions       Dimensions          `json:"dimensions"`
	CreatedAt        string              `json:"createdAt"`
	UpdatedAt        string              `json:"updatedAt"`
	SourceID         int64               `json:"woocommerce_id"`
	Permalink        string              `json:"permalink"`
	Slug             string              `json:"slug"`
	ProductType      string              `json:"product_type"`

	// Populated for variable products only.
	Variants       []VariantRecord `json:"variants,omitempty"`
	HasVariations  bool            `json:"has_variations,omitempty"`
	VariationCount int             `json:"variation_count,omitempty"`
	PriceRange     *PriceRange     `json:"price_range,omitempty"`
}

type Dimensions struct {
	Length *float64 `json:"length"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
	Unit   string   `json:"unit,omitempty"`
}

// PriceRange spans all variant prices of a variable product.
type PriceRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// Edge links a product node to a category or manufacturer node.
type Edge struct {
	Source     string            `json:"source"`
	Target     string            `json:"target"`
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
}

// VariantRecord is one purchasable configuration of a variable product.
// Attributes holds the normalized (lowercased, prefix-stripped) option
// map; RawAttributes keeps the store's original keys for debugging.
type VariantRecord struct {
	ID              string            `json:"id"`
	ProductID       string            `json:"product_id"`
	SKU             string            `json:"sku"`
	Title           string            `json:"title"`
	Price           float64           `json:"price"`
	RegularPrice    float64           `json:"regular_price"`
	SalePrice       *float64          `json:"sale_price"`
	Currency        string            `json:"currency"`
	Attributes      map[string]string `json:"attributes"`
	RawAttributes   map[string]string `json:"raw_attributes"`
	InStock         bool              `json:"in_stock"`
	InventoryQty    *int              `json:"inventory_quantity"`
	InventoryPolicy string            `json:"inventory_policy"`
	Images          []string          `json:"images"`
	CheckoutURL     string            `json:"checkout_url"`
	Weight          *float64          `json:"weight"`
	WeightUnit      string            `json:"weight_unit,omitempty"`
	Dimensions      Dimensions        `json:"dimensions"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
}
