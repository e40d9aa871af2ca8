package mlclassify

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// messagesClient narrows the Anthropic SDK client to the one call this
// provider needs, the same narrowing the teacher's anthropic adapter
// applies with its own MessagesClient interface.
type messagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// AnthropicProvider classifies buffers by asking a Claude model to name a
// single-word label for the given bytes and reports its own confidence.
type AnthropicProvider struct {
	msg   messagesClient
	model string
}

// NewAnthropicProvider builds a Provider backed by the Anthropic Messages
// API, using model (for example string(sdk.ModelClaudeHaiku4_5)).
func NewAnthropicProvider(msg messagesClient, model string) *AnthropicProvider {
	return &AnthropicProvider{msg: msg, model: model}
}

// NewAnthropicProviderFromAPIKey constructs a provider using the default
// Anthropic HTTP client, authenticated with apiKey.
func NewAnthropicProviderFromAPIKey(apiKey, model string) *AnthropicProvider {
	ac := sdk.NewClient(option.WithAPIKey(apiKey))
	return NewAnthropicProvider(&ac.Messages, model)
}

func (p *AnthropicProvider) Classify(ctx context.Context, data []byte) (Result, error) {
	prompt := fmt.Sprintf("Classify the following data with a single lowercase label, then a confidence score from 0 to 1 separated by a space. Data: %q", string(data))
	msg, err := p.msg.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(p.model),
		MaxTokens: 32,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("mlclassify: anthropic classify: %w", err)
	}
	var text strings.Builder
	for _, block := range msg.Content {
		text.WriteString(block.Text)
	}
	return parseLabelScore(text.String())
}
