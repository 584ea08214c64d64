// Package anthropic adapts the Anthropic Messages API to the
// completion.Completer contract. System turns become the request's system
// blocks; API failures are mapped into classified *completion.Error values.
package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/randool/chatmesh/completion"
	"github.com/randool/chatmesh/core"
)

const providerName = "anthropic"

// Options configure the Anthropic adapter.
type Options struct {
	// APIKey overrides the ANTHROPIC_API_KEY environment variable.
	APIKey string
}

// Completer wraps the Anthropic Messages API.
type Completer struct {
	client *anthropic.Client
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

	client := anthropic.NewClient(clientOpts...)
	return NewFromClient(&client)
}

// NewFromClient creates an adapter from an existing client.
func NewFromClient(client *anthropic.Client) *Completer {
	return &Completer{client: client}
}

// Complete implements completion.Completer. The N parameter has no Messages
// API equivalent and is ignored.
func (c *Completer) Complete(ctx context.Context, turns []core.Turn, params completion.Params) (string, error) {
	var system []anthropic.TextBlockParam
	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case core.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: t.Content})
		case core.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		case core.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		}
	}

	req := anthropic.MessageNewParams{
		Model:       anthropic.Model(params.Model),
		Messages:    messages,
		MaxTokens:   int64(params.MaxTokens),
		Temperature: anthropic.Float(params.Temperature),
		TopP:        anthropic.Float(params.TopP),
	}
	if len(system) > 0 {
		req.System = system
	}

	resp, err := c.client.Messages.New(ctx, req)
	if err != nil {
		return "", mapError(err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if b.Len() == 0 {
		return "", &completion.Error{
			Kind:     completion.KindProvider,
			Provider: providerName,
			Message:  "no text content returned",
		}
	}
	return b.String(), nil
}

func mapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Error()
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
