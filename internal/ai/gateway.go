// Package ai generates replacement note content through an external
// completion model. The suggestion is destructive: callers swap it in for
// the current editor content and persist it through the normal save path.
package ai

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/inkpad/inkpad/internal/errs"
	"github.com/inkpad/inkpad/internal/obs"
)

const (
	maxCompletionTokens = 1000
	temperature         = 0.7
)

// Suggester produces replacement content for a note.
type Suggester interface {
	Suggest(ctx context.Context, content string, kind Kind) (string, error)
}

// chatCompleter is the slice of the OpenAI client the gateway uses.
type chatCompleter interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Gateway calls the OpenAI chat completion API. One upstream call per
// invocation; retries are left to the caller.
type Gateway struct {
	completions chatCompleter
	model       string
}

// NewGateway builds a gateway for the given API key and model. The key may
// be empty; calls then fail with a misconfiguration error rather than at
// construction time.
func NewGateway(apiKey, model string) *Gateway {
	if apiKey == "" {
		return &Gateway{model: model}
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Gateway{completions: &client.Chat.Completions, model: model}
}

// newGatewayForTest wires a stub completer.
func newGatewayForTest(completions chatCompleter, model string) *Gateway {
	return &Gateway{completions: completions, model: model}
}

// Suggest returns model-generated replacement content for the note.
func (g *Gateway) Suggest(ctx context.Context, content string, kind Kind) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", errs.New(errs.InvalidArgument, "content is required")
	}
	if _, ok := kindInstructions[kind]; !ok {
		return "", errs.New(errs.InvalidArgument, "unknown suggestion type: "+string(kind))
	}
	if g.completions == nil {
		return "", errs.New(errs.ProviderMissing, "OpenAI API key not configured")
	}

	completion, err := g.completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt(kind, content)),
		},
		MaxTokens:   openai.Int(maxCompletionTokens),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", errs.Wrap(errs.ProviderError, "completion request failed", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", errs.New(errs.ProviderError, "model returned no suggestion")
	}
	suggestion := completion.Choices[0].Message.Content

	obs.From(ctx).Debug("ai_suggestion_generated", "pkg", "ai",
		"kind", string(kind), "content_len", len(content), "suggestion_len", len(suggestion))
	return suggestion, nil
}
