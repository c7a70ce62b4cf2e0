package export

// Filters narrow an export run. Virtual and out-of-stock products are
// excluded unless explicitly included; published-only unless
// IncludeInactive widens the status set.
type Filters struct {
	IncludeInactive   bool     `json:"include_inactive"`
	IncludeVirtual    bool     `json:"include_virtual"`
	IncludeOutOfStock bool     `json:"include_out_of_stock"`
	ExcludeCategories []int64  `json:"exclude_category,omitempty"`
	IncludeIDs        []int64  `json:"include,omitempty"`
	MinPrice          *float64 `json:"min_price,omitempty"`
	MaxPrice          *float64 `json:"max_price,omitempty"`
}

// SyncAllFilters is the fixed filter set behind "sync all products":
// everything published, virtual and out-of-stock included.
func SyncAllFilters() Filters {
	return Filters{
		IncludeVirtual:    true,
		IncludeOutOfStock: true,
	}
}

// SingleProductFilters targets one product for auto-sync.
func SingleProductFilters(productID int64) Filters {
	return Filters{
		IncludeVirtual:    true,
		IncludeOutOfStock: true,
		IncludeIDs:        []int64{productID},
	}
}
