package robots

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// LLM-training settings.
const (
	TrainingAllow = "allow"
	TrainingBlock = "block"
)

// Block markers used by the audit to detect our section.
const (
	blockStart = "# Start AlloIA block"
	blockEnd   = "# End AlloIA block"
)

// sitemapCacheTTL bounds how often the sitemap check hits the site;
// robots.txt is requested by every crawler visit.
const sitemapCacheTTL = 15 * time.Minute

// Generator renders the dynamic robots.txt: a base block, an optional
// sitemap line, then the AlloIA section with the two bot lists. The
// sitemap-existence check is cached for sitemapCacheTTL.
type Generator struct {
	siteURL     string
	subdomain   string
	llmTraining string
	client      *http.Client
	now         func() time.Time

	mu             sync.Mutex
	sitemapFound   bool
	sitemapChecked time.Time
}

func NewGenerator(siteURL, subdomain, llmTraining string) *Generator {
	return &Generator{
		siteURL:     strings.TrimRight(siteURL, "/"),
		subdomain:   subdomain,
		llmTraining: llmTraining,
		client:      &http.Client{Timeout: 8 * time.Second},
		now:         time.Now,
	}
}

func (g *Generator) Generate() string {
	var b strings.Builder

	b.WriteString("User-agent: *\n")
	b.WriteString("Disallow: /admin/\n")
	b.WriteString("Allow: /api/v1/\n\n")

	sitemapURL := g.siteURL + "/sitemap.xml"
	if g.sitemapExists(sitemapURL) {
		b.WriteString("Sitemap: " + sitemapURL + "\n\n")
	}

	b.WriteString(blockStart + "\n")
	if g.subdomain != "" {
		b.WriteString("# Crawl " + g.subdomain + " for content optimized for AI\n")
	}

	b.WriteString("# AI Search & Browsing Bots (Always Allowed)\n")
	for _, bot := range SearchBots {
		b.WriteString("User-agent: " + bot + "\nAllow: /\n")
	}
	b.WriteString("\n")

	b.WriteString("# AI Training Bots (User Controlled)\n")
	directive := "Disallow: /\n"
	if g.llmTraining == TrainingAllow {
		directive = "Allow: /\n"
	}
	for _, bot := range TrainingBots {
		b.WriteString("User-agent: " + bot + "\n")
		b.WriteString(directive)
	}

	b.WriteString(blockEnd + "\n")
	return b.String()
}

// sitemapExists returns the cached result, re-checking the URL once the
// TTL has elapsed.
func (g *Generator) sitemapExists(url string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.sitemapChecked.IsZero() && g.now().Sub(g.sitemapChecked) < sitemapCacheTTL {
		return g.sitemapFound
	}
	g.sitemapFound = g.urlExists(url)
	g.sitemapChecked = g.now()
	return g.sitemapFound
}

// urlExists tries HEAD then GET, accepting 2xx/3xx.
func (g *Generator) urlExists(url string) bool {
	if resp, err := g.client.Head(url); err == nil {
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 400 {
			return true
		}
	}
	resp, err := g.client.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 400
}
