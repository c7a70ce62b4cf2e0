package handlers

import (
	"net/http"

	"alloia/internal/alloia"
	"alloia/internal/logger"
	"alloia/internal/robots"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler passes the hosted dashboard's read-only analytics
// through to the remote service and exposes the tracking provisioning
// trigger.
type AnalyticsHandler struct {
	client      *alloia.Client
	provisioner *robots.Provisioner
	logger      *logger.Logger
}

func NewAnalyticsHandler(client *alloia.Client, provisioner *robots.Provisioner, logger *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{client: client, provisioner: provisioner, logger: logger}
}

func (h *AnalyticsHandler) ValidateKey(c *gin.Context) {
	resp, err := h.client.ValidateAPIKey(c.Request.Context())
	if err != nil {
		h.logger.Error("API key validation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalyticsHandler) AIVisits(c *gin.Context) {
	data, err := h.client.GetAIVisits(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *AnalyticsHandler) Prompts(c *gin.Context) {
	data, err := h.client.GetPrompts(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *AnalyticsHandler) PromptLeaderboard(c *gin.Context) {
	data, err := h.client.GetPromptLeaderboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *AnalyticsHandler) RobotsScan(c *gin.Context) {
	data, err := h.client.GetRobotsScan(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *AnalyticsHandler) Subscription(c *gin.Context) {
	status, err := h.client.GetSubscriptionStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *AnalyticsHandler) Usage(c *gin.Context) {
	limits, err := h.client.GetUsageInfo(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, limits)
}

// ProvisionTracking registers the site and enables bot tracking. The
// call is idempotent; re-running it returns the stored website id.
func (h *AnalyticsHandler) ProvisionTracking(c *gin.Context) {
	id, err := h.provisioner.Ensure(c.Request.Context())
	if err != nil {
		h.logger.Error("Tracking provisioning failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "website_id": id})
}

func (h *AnalyticsHandler) ProductStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.client.GetProductStatus(c.Param("slug")))
}

func (h *AnalyticsHandler) DeleteProduct(c *gin.Context) {
	c.JSON(http.StatusOK, h.client.DeleteProduct(c.Param("id")))
}
