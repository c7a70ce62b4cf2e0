package robots

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"alloia/internal/kvstore"
	"alloia/internal/logger"
)

// Option keys for the cached audit and score, refreshed hourly by the
// worker.
const (
	keyLastAudit    = "alloia_last_robots_audit"
	keyAIReadyScore = "alloia_ai_ready_score"
	auditBodySample = 1000
)

// KeyTrackingSite stores the website id the tracking provisioner
// obtained; the audit treats its presence as graph-enabled.
const KeyTrackingSite = "alloia_tracking_website_id"

// Audit is a snapshot of how AI-ready the site's public surface is.
type Audit struct {
	Home                string `json:"home"`
	RobotsURL           string `json:"robots_url"`
	RobotsExists        bool   `json:"robots_exists"`
	SitemapURL          string `json:"sitemap_url"`
	SitemapExists       bool   `json:"sitemap_exists"`
	BlockPresent        bool   `json:"alloia_block_present"`
	RobotsSample        string `json:"robots_sample"`
	TrainingBotsBlocked int    `json:"training_bots_blocked"`
	TrainingBotsTotal   int    `json:"training_bots_total"`
	SearchBotsAllowed   int    `json:"search_bots_allowed"`
	SearchBotsTotal     int    `json:"search_bots_total"`
	GraphEnabled        bool   `json:"graph_enabled"`
}

// ScoreCheck is one pass/fail entry in the score breakdown.
type ScoreCheck struct {
	OK bool `json:"ok"`
}

// Score is the AI-ready percentage over five checks: sitemap, robots,
// AlloIA block, all search bots allowed, graph enabled.
type Score struct {
	Score              int                   `json:"score"`
	Max                int                   `json:"max"`
	Percentage         int                   `json:"percentage"`
	Breakdown          map[string]ScoreCheck `json:"breakdown"`
	TrainingBotSummary *TrainingBotSummary   `json:"robots_ai_blocked,omitempty"`
	Timestamp          string                `json:"timestamp"`
}

type TrainingBotSummary struct {
	Blocked int `json:"blocked"`
	Total   int `json:"total"`
}

// Auditor fetches the site's robots.txt and sitemap and scores the
// result. Cached results live in the option store.
type Auditor struct {
	siteURL   string
	subdomain string
	kv        kvstore.Store
	client    *http.Client
	log       *logger.Logger
}

func NewAuditor(siteURL, subdomain string, kv kvstore.Store, log *logger.Logger) *Auditor {
	return &Auditor{
		siteURL:   strings.TrimRight(siteURL, "/"),
		subdomain: subdomain,
		kv:        kv,
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log,
	}
}

// Run fetches robots.txt and the sitemap and builds the audit.
func (a *Auditor) Run(ctx context.Context) *Audit {
	audit := &Audit{
		Home:              a.siteURL + "/",
		RobotsURL:         a.siteURL + "/robots.txt",
		SitemapURL:        a.siteURL + "/sitemap.xml",
		TrainingBotsTotal: len(TrainingBots),
		SearchBotsTotal:   len(SearchBots),
	}

	body, ok := a.fetch(ctx, audit.RobotsURL)
	audit.RobotsExists = ok
	if ok && body != "" {
		audit.BlockPresent = strings.Contains(body, blockStart)
		if len(body) > auditBodySample {
			audit.RobotsSample = body[:auditBodySample]
		} else {
			audit.RobotsSample = body
		}
		for _, bot := range TrainingBots {
			if directiveFollows(body, bot, "Disallow: /") {
				audit.TrainingBotsBlocked++
			}
		}
		for _, bot := range SearchBots {
			if directiveFollows(body, bot, "Allow: /") {
				audit.SearchBotsAllowed++
			}
		}
	}

	_, audit.SitemapExists = a.fetch(ctx, audit.SitemapURL)

	if a.subdomain != "" {
		audit.GraphEnabled = true
	} else if id, err := a.kv.Get(ctx, KeyTrackingSite); err == nil && id != "" {
		audit.GraphEnabled = true
	}

	return audit
}

// ComputeScore scores an audit over the five checks.
func ComputeScore(audit *Audit) *Score {
	checks := map[string]bool{
		"sitemap":         audit.SitemapExists,
		"robots":          audit.RobotsExists,
		"alloia_block":    audit.BlockPresent,
		"robots_ai_allow": audit.SearchBotsTotal > 0 && audit.SearchBotsAllowed == audit.SearchBotsTotal,
		"graph":           audit.GraphEnabled,
	}

	passes := 0
	breakdown := make(map[string]ScoreCheck, len(checks))
	for name, ok := range checks {
		if ok {
			passes++
		}
		breakdown[name] = ScoreCheck{OK: ok}
	}
	percentage := passes * 100 / len(checks)

	return &Score{
		Score:      percentage,
		Max:        100,
		Percentage: percentage,
		Breakdown:  breakdown,
		TrainingBotSummary: &TrainingBotSummary{
			Blocked: audit.TrainingBotsBlocked,
			Total:   audit.TrainingBotsTotal,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Refresh runs the audit, scores it and caches both.
func (a *Auditor) Refresh(ctx context.Context) (*Audit, *Score, error) {
	audit := a.Run(ctx)
	score := ComputeScore(audit)

	if raw, err := json.Marshal(audit); err == nil {
		if serr := a.kv.Set(ctx, keyLastAudit, string(raw)); serr != nil {
			a.log.Warn("Failed to cache robots audit: %v", serr)
		}
	}
	if raw, err := json.Marshal(score); err == nil {
		if serr := a.kv.Set(ctx, keyAIReadyScore, string(raw)); serr != nil {
			a.log.Warn("Failed to cache AI-ready score: %v", serr)
		}
	}
	return audit, score, nil
}

// CachedScore returns the last stored score, or nil when none exists.
func (a *Auditor) CachedScore(ctx context.Context) *Score {
	raw, err := a.kv.Get(ctx, keyAIReadyScore)
	if err != nil {
		return nil
	}
	var score Score
	if err := json.Unmarshal([]byte(raw), &score); err != nil {
		return nil
	}
	return &score
}

func (a *Auditor) fetch(ctx context.Context, url string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return "", false
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true
	}
	return string(body), true
}

// directiveFollows reports whether a user-agent section for the bot is
// followed by the given directive before the next User-agent line.
func directiveFollows(body, bot, directive string) bool {
	pattern := `(?i)User-agent:\s*` + regexp.QuoteMeta(bot) + `\s*(?:\r?\n)+[^U]*?` + regexp.QuoteMeta(directive)
	matched, err := regexp.MatchString(pattern, body)
	return err == nil && matched
}
