// Package ai asks an LLM for the next console steps, grounded on a scan of
// the current page and the steps already recorded.
package ai

import (
	"context"
	"fmt"
	"os"

	"github.com/v0xg/stepforge/internal/action"
	"github.com/v0xg/stepforge/internal/browser"
)

// Provider suggests action requests for a natural language goal
type Provider interface {
	Suggest(ctx context.Context, page *browser.PageMap, goal string, done []action.Action) ([]action.Request, error)
}

// Options selects and configures a provider
type Options struct {
	Provider  string // claude or openai
	Model     string // provider default when empty
	APIKey    string // falls back to the provider's environment variables
	BaseURL   string // API endpoint override
	MaxTokens int
}

// NewProvider creates a provider by name
func NewProvider(opts Options) (Provider, error) {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	switch opts.Provider {
	case "", "claude", "anthropic":
		return NewClaudeProvider(opts)
	case "openai", "gpt":
		return NewOpenAIProvider(opts)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: claude, openai)", opts.Provider)
	}
}

func apiKey(explicit string, envVars ...string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("one of %v must be set", envVars)
}
