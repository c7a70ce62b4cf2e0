package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alloia/internal/alloia"
	"alloia/internal/kvstore"
	"alloia/internal/logger"
	"alloia/internal/robots"
)

type analyticsFixture struct {
	router *gin.Engine
	kv     kvstore.Store
}

// newAnalyticsRouter wires the handler against an httptest stand-in for
// the remote service.
func newAnalyticsRouter(remoteURL string) *analyticsFixture {
	log := logger.New("error")
	kv := kvstore.NewMemory()
	client := alloia.NewClient(remoteURL, "test-key", "shop.example.com", log)
	provisioner := robots.NewProvisioner(client, kv, "https://shop.example.com", log)
	h := NewAnalyticsHandler(client, provisioner, log)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.GET("/usage", h.Usage)
	v1.POST("/tracking/provision", h.ProvisionTracking)
	v1.GET("/products/:slug/status", h.ProductStatus)
	v1.DELETE("/products/:id", h.DeleteProduct)

	return &analyticsFixture{router: router, kv: kv}
}

func TestUsageEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/clients/validate", r.URL.Path)
		w.Write([]byte(`{"success": true, "valid": true, "client": {"id": "client-1", "limits": {"monthly_queries": 1000, "current_usage": 250, "max_products": 500}}}`))
	}))
	defer srv.Close()

	w := perform(newAnalyticsRouter(srv.URL).router, http.MethodGet, "/api/v1/usage", "")
	require.Equal(t, http.StatusOK, w.Code)

	var limits alloia.Limits
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &limits))
	assert.Equal(t, 1000, limits.MonthlyQueries)
	assert.Equal(t, 250, limits.CurrentUsage)
}

func TestProvisionTrackingEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/websites":
			w.Write([]byte(`{"success": true, "id": "site-42"}`))
		case "/tracking/provision":
			w.Write([]byte(`{"success": true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := newAnalyticsRouter(srv.URL)
	w := perform(f.router, http.MethodPost, "/api/v1/tracking/provision", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "site-42", resp["website_id"])

	// The stored id makes the audit count the graph as enabled.
	stored, err := f.kv.Get(context.Background(), robots.KeyTrackingSite)
	require.NoError(t, err)
	assert.Equal(t, "site-42", stored)
}

func TestProvisionTrackingEndpointRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"code": "SERVER_ERROR", "message": "try later"}}`))
	}))
	defer srv.Close()

	w := perform(newAnalyticsRouter(srv.URL).router, http.MethodPost, "/api/v1/tracking/provision", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestProductStatusAndDeleteEndpoints(t *testing.T) {
	f := newAnalyticsRouter("http://127.0.0.1:1")

	w := perform(f.router, http.MethodGet, "/api/v1/products/widget/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var status alloia.NotSupported
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.Success)
	assert.Contains(t, status.Message, "not supported")

	w = perform(f.router, http.MethodDelete, "/api/v1/products/42", "")
	require.Equal(t, http.StatusOK, w.Code)
	var del alloia.NotSupported
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &del))
	assert.False(t, del.Success)
	assert.Contains(t, del.Recommendation, "Re-sync")
}
