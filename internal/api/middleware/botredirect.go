package middleware

import (
	"net/http"

	"alloia/internal/logger"
	"alloia/internal/robots"

	"github.com/gin-gonic/gin"
)

// BotDetector is the slice of the AI-bot detector the redirect needs.
type BotDetector interface {
	IsTraditionalGooglebot(userAgent string) bool
	IsAIBot(userAgent string) bool
	ExtractProductSlug(path string) string
}

// BotRedirect sends detected AI bots requesting product pages to the
// hosted graph with a 301. Traditional Googlebot is never redirected:
// it gets the normal page so SEO rankings are untouched.
func BotRedirect(detector BotDetector, enabled bool, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		userAgent := c.Request.UserAgent()
		if userAgent == "" || detector.IsTraditionalGooglebot(userAgent) {
			c.Next()
			return
		}
		if !detector.IsAIBot(userAgent) {
			c.Next()
			return
		}

		slug := detector.ExtractProductSlug(c.Request.URL.Path)
		if slug == "" {
			c.Next()
			return
		}

		host := c.Request.Host
		graphURL := robots.GraphURL(slug, host)
		log.Debug("Redirecting AI bot to graph: %s -> %s", userAgent, graphURL)

		c.Header("X-Original-Host", host)
		c.Header("X-Original-Path", c.Request.URL.Path)
		c.Header("X-Forwarded-Host", host)
		c.Header("X-AI-Bot", "true")
		c.Header("X-AlloIA-Redirect", "AI-Optimized")
		c.Redirect(http.StatusMovedPermanently, graphURL)
		c.Abort()
	}
}
