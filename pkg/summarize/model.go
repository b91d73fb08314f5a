package summarize

import (
	"context"
	"errors"
	"strings"

	"github.com/beam-cloud/emailreader/pkg/types"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-2.0-flash"
)

var errEmptyCompletion = errors.New("model returned no choices")

// Model generates text for a prompt
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIModel talks to any OpenAI-compatible chat completions endpoint
type OpenAIModel struct {
	client openai.Client
	name   string
}

// NewOpenAIModel creates a model client. Returns nil when no API key is configured.
func NewOpenAIModel(cfg types.ModelConfig, opts ...option.RequestOption) *OpenAIModel {
	if !cfg.Enabled() {
		return nil
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	name := cfg.Name
	if name == "" {
		name = DefaultModel
	}

	opts = append([]option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}, opts...)

	return &OpenAIModel{
		client: openai.NewClient(opts...),
		name:   name,
	}
}

// Generate sends a single user message and returns the first choice
func (m *OpenAIModel) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(m.name),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errEmptyCompletion
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
