package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"alloia/internal/logger"
)

const llmsToolURL = "https://www.alloia.io/api/tools/llms-txt"

// minimum length for remote llms.txt content to be trusted
const minLLMSContentLength = 50

// LLMSGenerator produces llms.txt, preferring the hosted generator and
// falling back to a locally built summary when it is unavailable or
// returns junk.
type LLMSGenerator struct {
	siteURL  string
	siteName string
	toolURL  string
	client   *http.Client
	log      *logger.Logger
}

func NewLLMSGenerator(siteURL, siteName string, log *logger.Logger) *LLMSGenerator {
	return &LLMSGenerator{
		siteURL:  strings.TrimRight(siteURL, "/"),
		siteName: siteName,
		toolURL:  llmsToolURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      log,
	}
}

func (g *LLMSGenerator) Generate(ctx context.Context) string {
	if content, ok := g.fromRemote(ctx); ok {
		return content
	}
	return g.basic()
}

func (g *LLMSGenerator) fromRemote(ctx context.Context) (string, bool) {
	reqURL := g.toolURL + "?url=" + url.QueryEscape(g.siteURL+"/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Debug("llms.txt generator unreachable: %v", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.log.Debug("llms.txt generator returned status %d", resp.StatusCode)
		return "", false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil || len(body) < minLLMSContentLength {
		return "", false
	}
	return string(body), true
}

// basic is the locally generated fallback: site identity plus pointers
// to the machine-readable catalog endpoints.
func (g *LLMSGenerator) basic() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# LLMs.txt for %s\n", g.siteName)
	b.WriteString("# Generated by AlloIA Catalog Sync\n\n")
	fmt.Fprintf(&b, "# Site URL: %s/\n", g.siteURL)
	fmt.Fprintf(&b, "# Generated: %s\n\n", time.Now().UTC().Format("2006-01-02 15:04:05"))

	b.WriteString("# AI Training Data Sources\n")
	fmt.Fprintf(&b, "llm-graph: %s/api/v1/products\n", g.siteURL)
	fmt.Fprintf(&b, "llm-graph: %s/api/v1/categories\n", g.siteURL)

	b.WriteString("\n# Sitemap\n")
	fmt.Fprintf(&b, "llm-sitemap: %s/sitemap.xml\n", g.siteURL)

	b.WriteString("\n# Contact Information\n")
	fmt.Fprintf(&b, "llm-contact: %s/contact\n", g.siteURL)

	return b.String()
}
