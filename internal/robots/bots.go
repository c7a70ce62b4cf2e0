// Package robots owns the crawler-facing artifacts: robots.txt and
// llms.txt generation, AI-bot detection and the AI-readiness audit.
package robots

// SearchBots are AI search and browsing crawlers that are always
// allowed; they help users find the store's content.
var SearchBots = []string{
	"ChatGPT-User",
	"OAI-SearchBot",
	"claude-web",
	"PerplexityBot",
	"YouBot",
	"DuckAssistBot",
	"meta-externalagent",
	"meta-externalfetcher",
	"facebookexternalhit",
	"Googlebot",
	"Applebot",
}

// TrainingBots are AI training crawlers whose access follows the
// site's LLM-training setting.
var TrainingBots = []string{
	"GPTBot",
	"ClaudeBot",
	"anthropic-ai",
	"CCBot",
	"Google-Extended",
	"Googlebot-extended",
	"GrokBot",
	"xAI-Grok",
	"Grok-DeepSearch",
	"Applebot-Extended",
	"cohere-ai",
}

// fallbackAIBotPatterns is the hardcoded detection list used when the
// pattern API is unreachable. Production patterns come from the remote
// endpoint.
var fallbackAIBotPatterns = []string{
	"gptbot",
	"chatgpt-user",
	"claude",
	"anthropic",
	"perplexity",
	"perplexitybot",
	"gemini",
	"bard",
	"google-extended",
	"grokbot",
	"xai-grok",
	"deepseekbot",
	"cohere",
	"you.com",
	"meta-externalagent",
	"applebot-extended",
}
