// Package alloia is the HTTP gateway to the AlloIA.io service: one
// bearer-token JSON channel and a fixed set of typed operations.
package alloia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"alloia/internal/logger"
)

// Version identifies this integration in the User-Agent header.
const Version = "2.1.0"

// APIError carries the remote error envelope alongside the HTTP status.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API request failed with status %d", e.StatusCode)
}

type Client struct {
	baseURL    string
	apiKey     string
	siteDomain string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL, apiKey, siteDomain string, logger *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		siteDomain: siteDomain,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// request issues one JSON call and decodes the response into out. A
// non-2xx status or a non-JSON body is returned as *APIError.
func (c *Client) request(ctx context.Context, method, endpoint string, body interface{}, headers map[string]string, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "AlloIA-Sync/"+Version)
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Decode the envelope first so error bodies surface their message.
	var envelope struct {
		Error *ErrorEnvelope `json:"error"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    "Invalid JSON response from API: " + err.Error(),
		}
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if envelope.Error != nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &APIError{
				StatusCode: resp.StatusCode,
				Message:    "Invalid JSON response from API: " + err.Error(),
			}
		}
	}

	return nil
}

// ValidateAPIKey checks the bearer token against /clients/validate and
// returns the client record with subscription and limit data.
func (c *Client) ValidateAPIKey(ctx context.Context) (*ValidateResponse, error) {
	var resp ValidateResponse
	if err := c.request(ctx, http.MethodGet, "/clients/validate", nil, nil, &resp); err != nil {
		return nil, err
	}
	// Some responses omit "valid" on success; infer it.
	if resp.Success && !resp.Valid && resp.Error == nil {
		resp.Valid = true
	}
	return &resp, nil
}

// ValidateDomainForSync runs the three pre-flight checks for a catalog
// sync: key validity, domain association and domain verification. The
// domain checks are evaluated against the client record when the API
// supplies domain data; a record without domain data passes with a
// logged warning so older server versions keep working.
func (c *Client) ValidateDomainForSync(ctx context.Context, domain string) (*DomainValidation, error) {
	if domain == "" {
		domain = c.siteDomain
	}
	if domain == "" {
		domain = "unknown"
	}

	clientData, err := c.ValidateAPIKey(ctx)
	if err != nil {
		return &DomainValidation{
			Valid:  false,
			Domain: domain,
			Error:  "API validation failed: " + err.Error(),
		}, nil
	}

	if !clientData.Success || !clientData.Valid {
		message := "Invalid API key"
		if clientData.Error != nil && clientData.Error.Message != "" {
			message = clientData.Error.Message
		}
		return &DomainValidation{
			Valid:  false,
			Domain: domain,
			Error:  message,
		}, nil
	}

	result := &DomainValidation{
		Domain: domain,
		Checks: DomainChecks{APIKeyValid: true},
	}
	if clientData.Client != nil {
		result.ClientID = clientData.Client.ID
	}

	associated, validated := c.checkDomain(clientData.Client, domain)
	result.Checks.DomainAssociated = associated
	result.Checks.DomainValidated = validated
	result.Valid = associated && validated

	if !associated {
		result.Error = "DOMAIN_MISMATCH: domain " + domain + " is not associated with this account"
	} else if !validated {
		result.Error = "EMAIL_NOT_VERIFIED: domain not verified"
	}

	return result, nil
}

// checkDomain compares the configured site domain against the domains
// registered on the client record. Records that carry no domain data at
// all are accepted, with a warning, rather than blocking every sync.
func (c *Client) checkDomain(client *ClientInfo, domain string) (associated, validated bool) {
	if client == nil || (client.Domain == "" && len(client.Domains) == 0) {
		c.logger.Warn("client record carries no domain data; skipping domain checks for %s", domain)
		return true, true
	}

	want := normalizeDomain(domain)
	if normalizeDomain(client.Domain) == want {
		associated = true
	}
	for _, d := range client.Domains {
		if normalizeDomain(d) == want {
			associated = true
		}
	}

	if client.DomainVerified == nil {
		c.logger.Warn("client record carries no verification flag for %s; treating as verified", domain)
		validated = true
	} else {
		validated = *client.DomainVerified
	}
	return associated, validated
}

func normalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "www.")
	return domain
}

// BulkIngest submits one batch of products to the ingestion endpoint.
// The platform header tells the server which flat shape to expect.
func (c *Client) BulkIngest(ctx context.Context, products []ProductPayload) (*IngestResponse, error) {
	body := map[string]interface{}{
		"products": products,
	}
	headers := map[string]string{
		"X-Platform": "woocommerce",
	}

	var resp IngestResponse
	if err := c.request(ctx, http.MethodPost, "/ingest", body, headers, &resp); err != nil {
		return nil, fmt.Errorf("failed to ingest products: %w", err)
	}
	return &resp, nil
}

// GetProductsCount reads the synced-product count for a client from the
// remote graph.
func (c *Client) GetProductsCount(ctx context.Context, clientID string) (*CountResponse, error) {
	var resp CountResponse
	endpoint := "/clients/" + url.PathEscape(clientID) + "/products/count"
	if err := c.request(ctx, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAIVisits reads AI bot visit analytics.
func (c *Client) GetAIVisits(ctx context.Context, params url.Values) (map[string]interface{}, error) {
	return c.getJSON(ctx, "/analytics/ai-visits", params)
}

// GetPrompts reads prompt management data.
func (c *Client) GetPrompts(ctx context.Context, params url.Values) (map[string]interface{}, error) {
	return c.getJSON(ctx, "/prompts", params)
}

// GetPromptLeaderboard reads the prompt leaderboard.
func (c *Client) GetPromptLeaderboard(ctx context.Context) (map[string]interface{}, error) {
	return c.getJSON(ctx, "/prompts/leaderboard", nil)
}

// GetRobotsScan reads robots.txt scan results.
func (c *Client) GetRobotsScan(ctx context.Context) (map[string]interface{}, error) {
	return c.getJSON(ctx, "/robots/scan-results", nil)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values) (map[string]interface{}, error) {
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	var resp map[string]interface{}
	if err := c.request(ctx, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetSubscriptionStatus derives subscription data from the validate
// call; there is no dedicated endpoint.
func (c *Client) GetSubscriptionStatus(ctx context.Context) (*SubscriptionStatus, error) {
	clientData, err := c.ValidateAPIKey(ctx)
	if err != nil {
		return nil, err
	}
	if clientData.Client == nil {
		return &SubscriptionStatus{Status: "inactive"}, nil
	}

	plan := clientData.Client.SubscriptionPlan
	if plan == "" {
		plan = clientData.Client.SubscriptionTier
	}
	return &SubscriptionStatus{
		Status:   clientData.Client.SubscriptionStatus,
		Plan:     plan,
		Features: clientData.Client.Features,
		Limits:   clientData.Client.Limits,
		IsActive: clientData.Client.SubscriptionStatus == "active",
		Client:   clientData.Client,
	}, nil
}

// GetUsageInfo derives usage limits from the validate call.
func (c *Client) GetUsageInfo(ctx context.Context) (*Limits, error) {
	clientData, err := c.ValidateAPIKey(ctx)
	if err != nil {
		return nil, err
	}
	if clientData.Client == nil {
		return &Limits{}, nil
	}
	limits := clientData.Client.Limits
	return &limits, nil
}

// RegisterSite registers the website with the service.
func (c *Client) RegisterSite(ctx context.Context, siteURL, domain string) (map[string]interface{}, error) {
	body := map[string]string{
		"url":    siteURL,
		"domain": domain,
	}
	var resp map[string]interface{}
	if err := c.request(ctx, http.MethodPost, "/websites", body, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ProvisionTracking provisions bot tracking for a registered website.
func (c *Client) ProvisionTracking(ctx context.Context, websiteID string) (map[string]interface{}, error) {
	body := map[string]string{
		"websiteId": websiteID,
	}
	var resp map[string]interface{}
	if err := c.request(ctx, http.MethodPost, "/tracking/provision", body, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetProductStatus is not exposed by the documented API.
func (c *Client) GetProductStatus(productID string) *NotSupported {
	return &NotSupported{
		Success:        false,
		Message:        "Individual product status not supported by documented API.",
		Recommendation: "Use client validation for general status information",
	}
}

// DeleteProduct is not exposed by the documented API.
func (c *Client) DeleteProduct(productID string) *NotSupported {
	return &NotSupported{
		Success:        false,
		Message:        "Individual product deletion not supported by documented API. Use bulk re-sync instead.",
		Recommendation: "Re-sync all products to update the knowledge graph",
	}
}

// HealthCheck checks connectivity through the validate endpoint; the
// service exposes no dedicated health route.
func (c *Client) HealthCheck(ctx context.Context) map[string]interface{} {
	validation, err := c.ValidateAPIKey(ctx)
	if err != nil {
		return map[string]interface{}{
			"status":        "unhealthy",
			"api_connected": false,
			"client_valid":  false,
			"message":       "API connection failed: " + err.Error(),
		}
	}
	return map[string]interface{}{
		"status":        "healthy",
		"api_connected": true,
		"client_valid":  validation.Valid,
		"message":       "API connection successful via client validation",
	}
}
