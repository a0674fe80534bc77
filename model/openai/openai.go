// Package openai provides an Invoker implementation backed by the OpenAI
// Chat Completions API. The engine's Request.ModelID selects the chat model
// per call, so one adapter serves a whole council of OpenAI-hosted members.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/hupe1980/llmcouncil/model"
)

// Options configure the OpenAI invoker. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal; extend via functional
// options without breaking callers.
type Options struct {
	// FallbackModel is used when a request carries no model id.
	FallbackModel       string
	Temperature         float64
	MaxCompletionTokens int64
}

// Invoker wraps the OpenAI Chat Completions API behind the generic
// model.Invoker interface.
type Invoker struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI invoker using the official client.
func New(optFns ...func(o *Options)) *Invoker {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI invoker from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Invoker {
	opts := Options{
		FallbackModel:       openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Invoker{client: client, opts: opts}
}

// Invoke implements model.Invoker with a single non-streaming completion.
// A completion cut off by the content filter is surfaced as a refusal.
func (i *Invoker) Invoke(ctx context.Context, req model.Request) (model.Reply, error) {
	modelID := req.ModelID
	if modelID == "" {
		modelID = i.opts.FallbackModel
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	resp, err := i.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               modelID,
		Temperature:         openai.Float(i.opts.Temperature),
		MaxCompletionTokens: openai.Int(i.opts.MaxCompletionTokens),
	})
	if err != nil {
		return model.Reply{}, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.Reply{}, fmt.Errorf("openai api returned no choices")
	}

	choice := resp.Choices[0]
	text := strings.TrimSpace(choice.Message.Content)
	if choice.FinishReason == "content_filter" || (choice.Message.Refusal != "" && text == "") {
		return model.Reply{Refused: true, Text: choice.Message.Refusal}, nil
	}

	return model.Reply{Text: text}, nil
}

// Info implements model.Invoker.
func (i *Invoker) Info() model.Info { return model.Info{Provider: "openai"} }
