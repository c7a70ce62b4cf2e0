package robots

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"alloia/internal/logger"
)

const (
	patternsURL      = "https://www.alloia.io/api/ai-bot-patterns/simple"
	patternsCacheTTL = 5 * time.Minute
	graphBaseURL     = "https://www.alloia.io/product/%s?domain=%s"
)

// Detector identifies AI bots by user agent. Patterns are fetched from
// the remote endpoint and cached for five minutes; the hardcoded
// fallback list covers outages. Traditional Googlebot is never treated
// as an AI bot so SEO crawls are left alone.
type Detector struct {
	patternsURL  string
	productBases []string
	client       *http.Client
	log          *logger.Logger

	mu        sync.Mutex
	patterns  []string
	fetchedAt time.Time

	// now is swapped out in tests.
	now func() time.Time
}

func NewDetector(productBases []string, log *logger.Logger) *Detector {
	if len(productBases) == 0 {
		productBases = []string{"product"}
	}
	return &Detector{
		patternsURL:  patternsURL,
		productBases: productBases,
		client:       &http.Client{Timeout: 5 * time.Second},
		log:          log,
		now:          time.Now,
	}
}

// IsTraditionalGooglebot reports whether the user agent is Google's
// SEO crawler. Google-Extended, the AI training bot, is not.
func (d *Detector) IsTraditionalGooglebot(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	return strings.Contains(ua, "googlebot") && !strings.Contains(ua, "google-extended")
}

// IsAIBot matches the user agent against the current pattern set,
// case-insensitively on substrings.
func (d *Detector) IsAIBot(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	ua := strings.ToLower(userAgent)
	for _, pattern := range d.currentPatterns() {
		if strings.Contains(ua, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

func (d *Detector) currentPatterns() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.patterns != nil && d.now().Sub(d.fetchedAt) < patternsCacheTTL {
		return d.patterns
	}

	patterns, err := d.fetchPatterns()
	if err != nil {
		d.log.Debug("AI bot pattern fetch failed, using fallback list: %v", err)
		patterns = fallbackAIBotPatterns
	}
	d.patterns = patterns
	d.fetchedAt = d.now()
	return d.patterns
}

func (d *Detector) fetchPatterns() ([]string, error) {
	resp, err := d.client.Get(d.patternsURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pattern endpoint returned status %d", resp.StatusCode)
	}

	var patterns []string
	if err := json.NewDecoder(resp.Body).Decode(&patterns); err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("pattern endpoint returned empty list")
	}
	d.log.Debug("Fetched %d AI bot patterns", len(patterns))
	return patterns, nil
}

// IsProductURL reports whether the path looks like a product page under
// any configured base, e.g. /product/blue-widget.
func (d *Detector) IsProductURL(path string) bool {
	return d.ExtractProductSlug(path) != ""
}

// ExtractProductSlug pulls the slug out of a product-page path, or
// returns "" when the path matches no configured base.
func (d *Detector) ExtractProductSlug(path string) string {
	for _, base := range d.productBases {
		re := regexp.MustCompile(`(?i)/` + regexp.QuoteMeta(base) + `/([^/?]+)`)
		if m := re.FindStringSubmatch(path); m != nil {
			return strings.ToLower(m[1])
		}
	}
	return ""
}

// GraphURL is the hosted graph page for a product, with the original
// host carried as a query parameter since AI bots rarely forward
// headers across redirects.
func GraphURL(slug, host string) string {
	return fmt.Sprintf(graphBaseURL, url.QueryEscape(slug), url.QueryEscape(host))
}

// ProductGraphURL is the plain hosted graph page, used as the sameAs
// target in product metadata.
func ProductGraphURL(slug string) string {
	return "https://www.alloia.io/product/" + url.QueryEscape(slug)
}
