package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/ignite/leadroom/internal/domain"
)

// BedrockGenerator invokes Claude through AWS Bedrock. All traffic
// stays inside AWS, which some client contracts require.
type BedrockGenerator struct {
	client    *bedrockruntime.Client
	modelID   string
	maxTokens int
}

type bedrockMessage struct {
	Role    string                `json:"role"`
	Content []bedrockContentBlock `json:"content"`
}

type bedrockContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	Messages         []bedrockMessage `json:"messages"`
}

type bedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewBedrockGenerator loads the default AWS credential chain for the
// given region and targets the given model.
func NewBedrockGenerator(ctx context.Context, modelID, region string, maxTokens int) (*BedrockGenerator, error) {
	if region == "" {
		region = "us-east-1"
	}
	if modelID == "" {
		modelID = "anthropic.claude-3-sonnet-20240229-v1:0"
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &BedrockGenerator{
		client:    bedrockruntime.NewFromConfig(cfg),
		modelID:   modelID,
		maxTokens: maxTokens,
	}, nil
}

// Generate invokes the model and parses the JSON envelope out of the
// reply text.
func (g *BedrockGenerator) Generate(ctx context.Context, prompt string) (*Result, error) {
	request := bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        g.maxTokens,
		Messages: []bedrockMessage{
			{
				Role: "user",
				Content: []bedrockContentBlock{
					{Type: "text", Text: prompt + outputInstructions},
				},
			},
		},
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	output, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        requestBody,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: bedrock: %v", domain.ErrGenerationFailed, err)
	}

	var response bedrockResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", domain.ErrGenerationFailed, err)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrGenerationFailed)
	}

	result, err := parseEnvelope(text)
	if err != nil {
		return nil, err
	}
	result.PromptTokens = response.Usage.InputTokens
	result.CompletionTokens = response.Usage.OutputTokens
	return result, nil
}
