package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/v0xg/stepforge/internal/action"
	"github.com/v0xg/stepforge/internal/browser"
)

// OpenAIProvider implements Provider using OpenAI chat completions
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(opts Options) (*OpenAIProvider, error) {
	key, err := apiKey(opts.APIKey, "STEPFORGE_OPENAI_KEY", "OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}
	cfg := openai.DefaultConfig(key)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	model := opts.Model
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg), model: model, maxTokens: opts.MaxTokens}, nil
}

func (p *OpenAIProvider) Suggest(ctx context.Context, page *browser.PageMap, goal string, done []action.Action) ([]action.Request, error) {
	userPrompt, err := buildUserPrompt(page, goal, done)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}
	return parseSuggestions(resp.Choices[0].Message.Content)
}
