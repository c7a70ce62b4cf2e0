package robots

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newOfflineDetector points the pattern fetch at a dead endpoint so the
// fallback list is always used.
func newOfflineDetector(bases ...string) *Detector {
	d := NewDetector(bases, testLog())
	d.patternsURL = "http://127.0.0.1:1/patterns"
	return d
}

func TestIsAIBotFallbackPatterns(t *testing.T) {
	d := newOfflineDetector()

	for _, ua := range []string{
		"Mozilla/5.0 (compatible; GPTBot/1.0; +https://openai.com/gptbot)",
		"ClaudeBot/1.0",
		"PerplexityBot/1.0 (+https://perplexity.ai/bot)",
		"mozilla/5.0 anthropic-ai",
	} {
		assert.True(t, d.IsAIBot(ua), ua)
	}

	for _, ua := range []string{
		"",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0",
		"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
	} {
		assert.False(t, d.IsAIBot(ua), ua)
	}
}

func TestIsTraditionalGooglebot(t *testing.T) {
	d := newOfflineDetector()

	assert.True(t, d.IsTraditionalGooglebot("Mozilla/5.0 (compatible; Googlebot/2.1)"))
	assert.True(t, d.IsTraditionalGooglebot("GOOGLEBOT-Image/1.0"))
	assert.False(t, d.IsTraditionalGooglebot("Mozilla/5.0 (compatible; Google-Extended)"))
	assert.False(t, d.IsTraditionalGooglebot("Mozilla/5.0 Chrome/120.0"))
}

func TestRemotePatternsCached(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`["custom-bot"]`))
	}))
	defer srv.Close()

	d := NewDetector(nil, testLog())
	d.patternsURL = srv.URL
	current := time.Now()
	d.now = func() time.Time { return current }

	assert.True(t, d.IsAIBot("Custom-Bot/2.0"))
	assert.False(t, d.IsAIBot("GPTBot/1.0")) // not in the remote list
	assert.Equal(t, 1, calls)

	// After the TTL the list is fetched again.
	current = current.Add(patternsCacheTTL + time.Second)
	assert.True(t, d.IsAIBot("custom-bot"))
	assert.Equal(t, 2, calls)
}

func TestRemotePatternsEmptyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	d := NewDetector(nil, testLog())
	d.patternsURL = srv.URL

	assert.True(t, d.IsAIBot("GPTBot/1.0"))
}

func TestExtractProductSlug(t *testing.T) {
	d := newOfflineDetector()

	assert.Equal(t, "blue-widget", d.ExtractProductSlug("/product/blue-widget"))
	assert.Equal(t, "blue-widget", d.ExtractProductSlug("/product/Blue-Widget/"))
	assert.Equal(t, "blue-widget", d.ExtractProductSlug("/shop/product/blue-widget?utm=x"))
	assert.Equal(t, "", d.ExtractProductSlug("/category/widgets"))
	assert.Equal(t, "", d.ExtractProductSlug("/"))

	assert.True(t, d.IsProductURL("/product/blue-widget"))
	assert.False(t, d.IsProductURL("/about"))
}

func TestExtractProductSlugCustomBases(t *testing.T) {
	d := newOfflineDetector("shop", "boutique")

	assert.Equal(t, "thing", d.ExtractProductSlug("/shop/thing"))
	assert.Equal(t, "chose", d.ExtractProductSlug("/boutique/chose"))
	assert.Equal(t, "", d.ExtractProductSlug("/product/thing"))
}

func TestGraphURLs(t *testing.T) {
	got := GraphURL("blue-widget", "shop.example.com")
	require.Equal(t, "https://www.alloia.io/product/blue-widget?domain=shop.example.com", got)

	assert.Equal(t, "https://www.alloia.io/product/blue-widget", ProductGraphURL("blue-widget"))
}
