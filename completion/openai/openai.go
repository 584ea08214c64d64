// Package openai adapts the OpenAI Chat Completions API to the
// completion.Completer contract. API failures are mapped into classified
// *completion.Error values via the response status code.
package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/randool/chatmesh/completion"
	"github.com/randool/chatmesh/core"
)

const providerName = "openai"

// Options configure the OpenAI adapter.
type Options struct {
	// APIKey overrides the OPENAI_API_KEY environment variable.
	APIKey string
	// BaseURL points the client at a compatible alternative endpoint.
	BaseURL string
}

// Completer wraps the OpenAI Chat Completions API.
type Completer struct {
	client *openai.Client
}

// New creates an adapter using the official client.
func New(optFns ...func(o *Options)) *Completer {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := openai.NewClient(clientOpts...)
	return NewFromClient(&client)
}

// NewFromClient creates an adapter from an existing client.
func NewFromClient(client *openai.Client) *Completer {
	return &Completer{client: client}
}

// Complete implements completion.Completer.
func (c *Completer) Complete(ctx context.Context, turns []core.Turn, params completion.Params) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(t.Content))
		case core.RoleUser:
			messages = append(messages, openai.UserMessage(t.Content))
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(t.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               params.Model,
		Messages:            messages,
		Temperature:         openai.Float(params.Temperature),
		TopP:                openai.Float(params.TopP),
		N:                   openai.Int(int64(params.N)),
		MaxCompletionTokens: openai.Int(int64(params.MaxTokens)),
	})
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &completion.Error{
			Kind:     completion.KindProvider,
			Provider: providerName,
			Message:  "no choices returned",
		}
	}
	return resp.Choices[0].Message.Content, nil
}

func mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return &completion.Error{
			Kind:     completion.KindFromStatus(apiErr.StatusCode),
			Provider: providerName,
			Message:  msg,
			Cause:    err,
		}
	}
	kind := completion.KindProvider
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = completion.KindTimeout
	}
	return &completion.Error{Kind: kind, Provider: providerName, Message: err.Error(), Cause: err}
}
