// Package anthropic provides an Invoker implementation backed by the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/llmcouncil/model"
)

// Options configures the Anthropic invoker (temperature, fallback model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	// FallbackModel is used when a request carries no model id.
	FallbackModel anthropic.Model
	Temperature   float64
	MaxTokens     int64
	APIKey        string
}

// Invoker wraps the Anthropic Messages API behind the generic model.Invoker
// interface.
type Invoker struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic invoker using the official client.
func New(optFns ...func(o *Options)) *Invoker {
	opts := Options{
		FallbackModel: anthropic.ModelClaude3_5Sonnet20241022,
		Temperature:   0.7,
		MaxTokens:     4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Invoker{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic invoker from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Invoker {
	opts := Options{
		FallbackModel: anthropic.ModelClaude3_5Sonnet20241022,
		Temperature:   0.7,
		MaxTokens:     4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Invoker{client: client, opts: opts}
}

// Invoke implements model.Invoker with a single non-streaming message.
// A reply ended by the refusal stop reason is surfaced as a refusal.
func (i *Invoker) Invoke(ctx context.Context, req model.Request) (model.Reply, error) {
	modelID := anthropic.Model(req.ModelID)
	if req.ModelID == "" {
		modelID = i.opts.FallbackModel
	}

	params := anthropic.MessageNewParams{
		Model:       modelID,
		MaxTokens:   i.opts.MaxTokens,
		Temperature: anthropic.Float(i.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := i.client.Messages.New(ctx, params)
	if err != nil {
		return model.Reply{}, fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	if string(resp.StopReason) == "refusal" {
		return model.Reply{Refused: true, Text: sb.String()}, nil
	}

	return model.Reply{Text: strings.TrimSpace(sb.String())}, nil
}

// Info implements model.Invoker.
func (i *Invoker) Info() model.Info { return model.Info{Provider: "anthropic"} }
