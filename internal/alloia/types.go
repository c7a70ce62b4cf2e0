package alloia

// DashboardURL is surfaced in user-facing error messages that require
// action in the hosted dashboard.
const DashboardURL = "https://alloia.io/dashboard/domain-settings"

// ErrorEnvelope is the remote error shape: {"error": {"code", "message"}}.
type ErrorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Limits mirrors the usage limits block on the client record.
type Limits struct {
	MonthlyQueries int `json:"monthly_queries"`
	CurrentUsage   int `json:"current_usage"`
	MaxProducts    int `json:"max_products"`
}

// ClientInfo is the subscription/limits record returned by /clients/validate.
type ClientInfo struct {
	ID                 string   `json:"id"`
	Domain             string   `json:"domain"`
	Domains            []string `json:"domains"`
	DomainVerified     *bool    `json:"domain_verified"`
	SubscriptionStatus string   `json:"subscription_status"`
	SubscriptionTier   string   `json:"subscription_tier"`
	SubscriptionPlan   string   `json:"subscription_plan"`
	Features           []string `json:"features"`
	Limits             Limits   `json:"limits"`
}

// ValidateResponse is the /clients/validate response body.
type ValidateResponse struct {
	Success bool           `json:"success"`
	Valid   bool           `json:"valid"`
	Client  *ClientInfo    `json:"client"`
	Error   *ErrorEnvelope `json:"error"`
}

// DomainChecks itemizes the three gates a sync must pass.
type DomainChecks struct {
	APIKeyValid      bool `json:"api_key_valid"`
	DomainAssociated bool `json:"domain_associated"`
	DomainValidated  bool `json:"domain_validated"`
}

// DomainValidation is the aggregate pre-flight result.
type DomainValidation struct {
	Valid    bool         `json:"valid"`
	Domain   string       `json:"domain"`
	ClientID string       `json:"client_id,omitempty"`
	Error    string       `json:"error,omitempty"`
	Checks   DomainChecks `json:"checks"`
}

// ProductPayload is the flat product-submission shape accepted by the
// bulk ingest endpoint. ExternalID carries the catalog item id so the
// remote upsert stays stable across re-exports.
type ProductPayload struct {
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Category      string              `json:"category,omitempty"`
	SKU           string              `json:"sku,omitempty"`
	Price         float64             `json:"price,omitempty"`
	Manufacturer  string              `json:"manufacturer,omitempty"`
	Images        []string            `json:"images,omitempty"`
	Attributes    map[string][]string `json:"attributes,omitempty"`
	Currency      string              `json:"currency,omitempty"`
	SourceID      int64               `json:"woocommerce_id,omitempty"`
	ExternalID    string              `json:"external_id,omitempty"`
	Permalink     string              `json:"permalink,omitempty"`
	Slug          string              `json:"slug,omitempty"`
	StockQuantity *int                `json:"stock_quantity,omitempty"`
	InStock       *bool               `json:"in_stock,omitempty"`
}

// IngestResult is the per-item outcome inside an ingest response.
type IngestResult struct {
	Success   bool   `json:"success"`
	ProductID string `json:"product_id"`
	Error     string `json:"error"`
}

// IngestResponse is the bulk ingest response. Results may be absent,
// in which case the whole batch is treated as accepted.
type IngestResponse struct {
	Success bool           `json:"success"`
	Results []IngestResult `json:"results"`
	Error   *ErrorEnvelope `json:"error"`
}

// CountResponse is the synced-product count for a client.
type CountResponse struct {
	Count int `json:"count"`
}

// SubscriptionStatus is re-derived from /clients/validate; there is no
// dedicated endpoint for it.
type SubscriptionStatus struct {
	Status   string      `json:"status"`
	Plan     string      `json:"plan"`
	Features []string    `json:"features"`
	Limits   Limits      `json:"limits"`
	IsActive bool        `json:"is_active"`
	Client   *ClientInfo `json:"client,omitempty"`
}

// NotSupported is returned by operations the documented API does not
// expose (individual product status/deletion).
type NotSupported struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}
