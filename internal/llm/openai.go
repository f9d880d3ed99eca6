package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	fallbackModel     = openai.GPT4oMini
	fallbackMaxTokens = 1000
	fallbackTimeout   = 30 * time.Second

	// Low temperature keeps the narrative close to the figures it is given
	summaryTemperature = 0.3

	auditorRole = "You write executive summaries of claim audits and cite only the sources you are given."
)

// ErrCitationLeak is returned when a summary cites a URL outside the allowlist
var ErrCitationLeak = errors.New("citation leak")

var citationPattern = regexp.MustCompile(`https?://[^\s\)]+`)

// OpenAIProvider talks to any endpoint that speaks the OpenAI chat API
type OpenAIProvider struct {
	client *openai.Client
	config Config
	name   string
	logger *zap.Logger
}

// NewOpenAIProvider builds a client for config. A nil logger discards
// availability warnings.
func NewOpenAIProvider(config Config, logger *zap.Logger) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cc := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		cc.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cc),
		config: config,
		name:   "openai",
		logger: logger,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable lists models as an authenticated round trip. The API error is
// logged so a bad key or base URL can be diagnosed.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	if err == nil {
		return true
	}
	p.logger.Warn("llm availability check failed",
		zap.String("provider", p.name),
		zap.String("base_url", p.config.BaseURL),
		zap.Error(err))
	return false
}

// Summarize asks the chat endpoint for a narrative of req.Report
func (p *OpenAIProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	chat := p.chatRequest(req)

	callCtx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	resp, err := p.client.CreateChatCompletion(callCtx, chat)
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", p.name)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	cited := extractURLs(text)
	if p.config.StrictEvidence {
		if err := verifyCitations(cited, req.EvidenceURLs); err != nil {
			return nil, err
		}
	}

	return &SummarizeResponse{
		Summary:    text,
		CitedURLs:  cited,
		Model:      chat.Model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// chatRequest resolves the model, token budget and prompt for one call.
// Request values win over provider config, which wins over the fallbacks.
func (p *OpenAIProvider) chatRequest(req SummarizeRequest) openai.ChatCompletionRequest {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Report, req.EvidenceURLs)
	}

	return openai.ChatCompletionRequest{
		Model: firstNonZero(req.Model, p.config.Model, fallbackModel),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: auditorRole},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   firstNonZero(req.MaxTokens, p.config.MaxTokens, fallbackMaxTokens),
		Temperature: summaryTemperature,
	}
}

func (p *OpenAIProvider) timeout() time.Duration {
	if p.config.Timeout > 0 {
		return time.Duration(p.config.Timeout) * time.Second
	}
	return fallbackTimeout
}

func firstNonZero[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// verifyCitations fails on the first cited URL missing from allowed
func verifyCitations(cited, allowed []string) error {
	for _, u := range cited {
		if !slices.Contains(allowed, u) {
			return fmt.Errorf("%w: disallowed URL %s", ErrCitationLeak, u)
		}
	}
	return nil
}

// extractURLs returns the distinct http(s) URLs in text in order of first
// appearance, with trailing sentence punctuation dropped
func extractURLs(text string) []string {
	var out []string
	for _, m := range citationPattern.FindAllString(text, -1) {
		m = strings.TrimRight(m, ".,;:!?")
		if !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}
