package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alloia/internal/logger"
)

func testLog() *logger.Logger {
	return logger.New("error")
}

func TestGenerateBlocksTrainingBots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sitemap.xml" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	out := NewGenerator(srv.URL, "ai.shop.example.com", TrainingBlock).Generate()

	assert.True(t, strings.HasPrefix(out, "User-agent: *\nDisallow: /admin/\nAllow: /api/v1/\n"))
	assert.Contains(t, out, "Sitemap: "+srv.URL+"/sitemap.xml\n")
	assert.Contains(t, out, blockStart)
	assert.Contains(t, out, blockEnd)
	assert.Contains(t, out, "# Crawl ai.shop.example.com for content optimized for AI\n")

	for _, bot := range SearchBots {
		assert.Contains(t, out, "User-agent: "+bot+"\nAllow: /\n", bot)
	}
	for _, bot := range TrainingBots {
		assert.Contains(t, out, "User-agent: "+bot+"\nDisallow: /\n", bot)
	}
}

func TestGenerateCachesSitemapCheck(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	now := time.Now()
	g := NewGenerator(srv.URL, "", TrainingBlock)
	g.now = func() time.Time { return now }

	first := g.Generate()
	assert.Contains(t, first, "Sitemap: "+srv.URL+"/sitemap.xml\n")
	checked := atomic.LoadInt32(&hits)
	assert.GreaterOrEqual(t, checked, int32(1))

	// Repeated requests inside the TTL must not hit the site again.
	for i := 0; i < 5; i++ {
		g.Generate()
	}
	assert.Equal(t, checked, atomic.LoadInt32(&hits))

	// Once the TTL elapses the check runs once more.
	now = now.Add(sitemapCacheTTL + time.Second)
	g.Generate()
	assert.Greater(t, atomic.LoadInt32(&hits), checked)
}

func TestGenerateAllowsTrainingBots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	out := NewGenerator(srv.URL, "", TrainingAllow).Generate()

	assert.NotContains(t, out, "Sitemap:")
	assert.NotContains(t, out, "# Crawl ")
	for _, bot := range TrainingBots {
		assert.Contains(t, out, "User-agent: "+bot+"\nAllow: /\n", bot)
	}
	assert.NotContains(t, out, "Disallow: /\n")
}

func TestGeneratedRobotsPassesAudit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	// The audit must recognize every directive the generator writes.
	out := NewGenerator(srv.URL, "", TrainingBlock).Generate()

	for _, bot := range SearchBots {
		assert.True(t, directiveFollows(out, bot, "Allow: /"), bot)
	}
	for _, bot := range TrainingBots {
		assert.True(t, directiveFollows(out, bot, "Disallow: /"), bot)
	}
}

func TestDirectiveFollows(t *testing.T) {
	body := "User-agent: GPTBot\nDisallow: /\n\nUser-agent: claude-web\nAllow: /\n"

	assert.True(t, directiveFollows(body, "GPTBot", "Disallow: /"))
	assert.True(t, directiveFollows(body, "gptbot", "Disallow: /"))
	assert.True(t, directiveFollows(body, "claude-web", "Allow: /"))
	// The directive must sit in the bot's own section.
	assert.False(t, directiveFollows(body, "GPTBot", "Allow: /"))
	assert.False(t, directiveFollows(body, "PerplexityBot", "Disallow: /"))
}

func TestLLMSGeneratorRemote(t *testing.T) {
	remote := "# LLMs.txt\n" + strings.Repeat("remote content line\n", 5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("url"))
		w.Write([]byte(remote))
	}))
	defer srv.Close()

	g := NewLLMSGenerator("https://shop.example.com", "Example Shop", testLog())
	g.toolURL = srv.URL

	assert.Equal(t, remote, g.Generate(context.Background()))
}

func TestLLMSGeneratorFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Too short to be trusted.
		w.Write([]byte("nope"))
	}))
	defer srv.Close()

	g := NewLLMSGenerator("https://shop.example.com", "Example Shop", testLog())
	g.toolURL = srv.URL

	out := g.Generate(context.Background())
	assert.Contains(t, out, "# LLMs.txt for Example Shop")
	assert.Contains(t, out, "llm-graph: https://shop.example.com/api/v1/products")
	assert.Contains(t, out, "llm-graph: https://shop.example.com/api/v1/categories")
	assert.Contains(t, out, "llm-sitemap: https://shop.example.com/sitemap.xml")
	assert.Contains(t, out, "llm-contact: https://shop.example.com/contact")
	require.GreaterOrEqual(t, len(out), minLLMSContentLength)
}
