package mlclassify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// converseClient narrows the Bedrock runtime client to the one call this
// provider needs, mirroring the teacher's RuntimeClient interface.
type converseClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockProvider classifies buffers via the AWS Bedrock Converse API.
type BedrockProvider struct {
	runtime converseClient
	modelID string
}

// NewBedrockProvider builds a Provider backed by Bedrock Converse, using
// modelID (for example an Anthropic-on-Bedrock model ARN/ID).
func NewBedrockProvider(runtime converseClient, modelID string) *BedrockProvider {
	return &BedrockProvider{runtime: runtime, modelID: modelID}
}

func (p *BedrockProvider) Classify(ctx context.Context, data []byte) (Result, error) {
	prompt := fmt.Sprintf("Classify the following data with a single lowercase label, then a confidence score from 0 to 1 separated by a space. Data: %q", string(data))
	out, err := p.runtime.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: &p.modelID,
		Messages: []brtypes.Message{
			{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: prompt},
				},
			},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("mlclassify: bedrock classify: %w", err)
	}
	output, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return Result{}, fmt.Errorf("mlclassify: bedrock classify: unexpected output shape")
	}
	var text string
	for _, block := range output.Value.Content {
		if tb, ok := block.(*brtypes.ContentBlockMemberText); ok {
			text += tb.Value
		}
	}
	return parseLabelScore(text)
}
