package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"alloia/internal/export"
	"alloia/internal/logger"
	"alloia/internal/queue"

	"github.com/gin-gonic/gin"
)

// autoSyncDelay debounces single-product syncs after catalog changes.
const autoSyncDelay = 5 * time.Second

type ExportHandler struct {
	exporter  *export.Exporter
	ledger    *export.Ledger
	scheduler queue.Scheduler
	logger    *logger.Logger
}

func NewExportHandler(exporter *export.Exporter, ledger *export.Ledger, scheduler queue.Scheduler, logger *logger.Logger) *ExportHandler {
	return &ExportHandler{
		exporter:  exporter,
		ledger:    ledger,
		scheduler: scheduler,
		logger:    logger,
	}
}

type exportRequest struct {
	export.Filters
	Background bool `json:"background"`
}

// Export runs the full pipeline, synchronously or scheduled.
func (h *ExportHandler) Export(c *gin.Context) {
	// An empty body means default filters.
	var req exportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	result, err := h.exporter.ExportProducts(c.Request.Context(), req.Filters, req.Background)
	if err != nil {
		if errors.Is(err, export.ErrExportInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Export failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SyncAll exports the entire catalog, virtual and out-of-stock
// products included.
func (h *ExportHandler) SyncAll(c *gin.Context) {
	result, err := h.exporter.ExportProducts(c.Request.Context(), export.SyncAllFilters(), false)
	if err != nil {
		if errors.Is(err, export.ErrExportInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Sync-all failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SyncProduct schedules a debounced single-product sync.
func (h *ExportHandler) SyncProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	task := queue.Task{Type: queue.TaskAutoSync, ProductID: productID}
	if err := h.scheduler.Schedule(c.Request.Context(), autoSyncDelay, task); err != nil {
		h.logger.Error("Failed to schedule product sync: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule product sync"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":    "Product sync scheduled",
		"product_id": productID,
	})
}

// Status resolves a background run by export id. Synchronous runs are
// not tracked.
func (h *ExportHandler) Status(c *gin.Context) {
	run, err := h.exporter.ExportStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, export.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "not_found",
				"message": "Export not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load export status"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// Statistics returns the cumulative ledger counters.
func (h *ExportHandler) Statistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Statistics(c.Request.Context()))
}

type batchSizeRequest struct {
	BatchSize int `json:"batch_size"`
}

// UpdateBatchSize bounds-checks and stores a new chunk size. Rejected
// values leave the stored size unchanged.
func (h *ExportHandler) UpdateBatchSize(c *gin.Context) {
	var req batchSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing batch size parameter"})
		return
	}

	if err := h.ledger.SetBatchSize(c.Request.Context(), req.BatchSize); err != nil {
		if errors.Is(err, export.ErrInvalidBatchSize) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch size. Must be between 10 and 1000."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store batch size"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Batch size updated successfully!",
		"batch_size": req.BatchSize,
	})
}
