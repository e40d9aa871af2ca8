package mlclassify

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// chatClient narrows the OpenAI SDK client to the single call this
// provider needs.
type chatClient interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAIProvider classifies buffers via a Chat Completions call, the
// same "single-word label plus confidence" prompt the Anthropic and
// Bedrock providers in this package use.
type OpenAIProvider struct {
	chat  chatClient
	model string
}

// NewOpenAIProvider builds a Provider backed by the OpenAI Chat
// Completions API.
func NewOpenAIProvider(chat chatClient, model string) *OpenAIProvider {
	return &OpenAIProvider{chat: chat, model: model}
}

// NewOpenAIProviderFromAPIKey constructs a provider using the default
// OpenAI HTTP client, authenticated with apiKey.
func NewOpenAIProviderFromAPIKey(apiKey, model string) *OpenAIProvider {
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return NewOpenAIProvider(&c.Chat.Completions, model)
}

func (p *OpenAIProvider) Classify(ctx context.Context, data []byte) (Result, error) {
	prompt := fmt.Sprintf("Classify the following data with a single lowercase label, then a confidence score from 0 to 1 separated by a space. Data: %q", string(data))
	resp, err := p.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("mlclassify: openai classify: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("mlclassify: openai classify: empty response")
	}
	return parseLabelScore(resp.Choices[0].Message.Content)
}
