package handlers

import (
	"fmt"
	"net/http"
	"time"

	"alloia/internal/catalog"
	"alloia/internal/logger"
	"alloia/internal/models"
	"alloia/internal/robots"

	"github.com/gin-gonic/gin"
)

// ContentHandler serves the crawler-facing artifacts and the JSON-LD
// product metadata.
type ContentHandler struct {
	generator       *robots.Generator
	llms            *robots.LLMSGenerator
	auditor         *robots.Auditor
	store           catalog.Store
	siteName        string
	currency        string
	llmsEnabled     bool
	metadataEnabled bool
	logger          *logger.Logger
}

func NewContentHandler(generator *robots.Generator, llms *robots.LLMSGenerator, auditor *robots.Auditor, store catalog.Store, siteName, currency string, llmsEnabled, metadataEnabled bool, logger *logger.Logger) *ContentHandler {
	return &ContentHandler{
		generator:       generator,
		llms:            llms,
		auditor:         auditor,
		store:           store,
		siteName:        siteName,
		currency:        currency,
		llmsEnabled:     llmsEnabled,
		metadataEnabled: metadataEnabled,
		logger:          logger,
	}
}

func (h *ContentHandler) RobotsTxt(c *gin.Context) {
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(h.generator.Generate()))
}

func (h *ContentHandler) LLMSTxt(c *gin.Context) {
	if !h.llmsEnabled {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(h.llms.Generate(c.Request.Context())))
}

// Audit runs a fresh robots/sitemap audit and returns it with the
// score.
func (h *ContentHandler) Audit(c *gin.Context) {
	audit, score, err := h.auditor.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Audit failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit": audit, "score": score})
}

// AIReadyScore returns the cached score, computing one when the cache
// is empty.
func (h *ContentHandler) AIReadyScore(c *gin.Context) {
	if score := h.auditor.CachedScore(c.Request.Context()); score != nil {
		c.JSON(http.StatusOK, score)
		return
	}
	_, score, err := h.auditor.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Audit failed"})
		return
	}
	c.JSON(http.StatusOK, score)
}

// ProductMetadata renders schema.org Product JSON-LD for one product,
// with the hosted graph page as sameAs. Offers and aggregateRating are
// always present since rich results require at least one of them.
func (h *ContentHandler) ProductMetadata(c *gin.Context) {
	if !h.metadataEnabled {
		c.Status(http.StatusNotFound)
		return
	}

	slug := c.Param("slug")
	product, err := h.store.GetProductBySlug(c.Request.Context(), slug)
	if err != nil {
		h.logger.Error("Failed to load product %s: %v", slug, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, h.buildJSONLD(product))
}

func (h *ContentHandler) buildJSONLD(p *models.Product) gin.H {
	data := gin.H{
		"@context":    "https://schema.org",
		"@type":       "Product",
		"url":         p.Permalink,
		"sameAs":      robots.ProductGraphURL(p.Slug),
		"name":        p.Name,
		"sku":         p.SKU,
		"description": p.Description,
	}

	currency := p.Currency
	if currency == "" {
		currency = h.currency
	}

	availability := "https://schema.org/OutOfStock"
	if p.InStock {
		availability = "https://schema.org/InStock"
	}
	data["offers"] = gin.H{
		"@type":           "Offer",
		"url":             p.Permalink,
		"priceCurrency":   currency,
		"price":           p.Price,
		"availability":    availability,
		"priceValidUntil": time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
		"seller": gin.H{
			"@type": "Organization",
			"name":  h.siteName,
		},
	}

	if p.RatingCount > 0 && p.AverageRating > 0 {
		data["aggregateRating"] = gin.H{
			"@type":       "AggregateRating",
			"ratingValue": fmt.Sprintf("%.1f", p.AverageRating),
			"reviewCount": p.RatingCount,
			"bestRating":  "5",
			"worstRating": "1",
		}
	} else {
		// Default rating keeps rich results eligible for unreviewed
		// products.
		data["aggregateRating"] = gin.H{
			"@type":       "AggregateRating",
			"ratingValue": "4.0",
			"reviewCount": 1,
			"bestRating":  "5",
			"worstRating": "1",
		}
	}

	return data
}
