// services/anthropic_provider.go
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/brandsight/brandsight-workflows/internal/config"
)

type anthropicProvider struct {
	client      *anthropic.Client
	model       string
	brandName   string
	costService CostService
}

// NewAnthropicProvider serves the Claude platform.
func NewAnthropicProvider(cfg *config.Config, model string, costService CostService) AIProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.AnthropicAPIKey),
	)

	return &anthropicProvider{
		client:      &client,
		model:       model,
		brandName:   cfg.BrandName,
		costService: costService,
	}
}

func (p *anthropicProvider) GetProviderName() string {
	return "anthropic"
}

func (p *anthropicProvider) AnalyzeQuery(ctx context.Context, keyword, query string, analysisContext map[string]interface{}) (*AIResponse, error) {
	contextJSON, err := json.Marshal(analysisContext)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis context: %w", err)
	}

	systemPrompt := fmt.Sprintf(`You are an AI assistant that analyzes search queries and provides comprehensive responses.
Pay special attention to mentions of '%s' (the gambling and cryptocurrency platform).
Analyze the sentiment towards %s if mentioned, and provide detailed analysis.

Context: %s`, p.brandName, p.brandName, string(contextJSON))

	messages := []anthropic.MessageParam{{
		Content: []anthropic.ContentBlockParamUnion{{
			OfText: &anthropic.TextBlockParam{
				Text: fmt.Sprintf("Analyze this query about %q: %s", keyword, query),
			},
		}},
		Role: anthropic.MessageParamRoleUser,
	}}

	response, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 1500,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages:    messages,
		Temperature: anthropic.Float(0.7),
	})
	if err != nil {
		return nil, fmt.Errorf("message creation failed: %w", err)
	}

	fullResponse := p.extractResponseText(*response)
	if fullResponse == "" {
		return nil, fmt.Errorf("no text content in response")
	}

	return &AIResponse{
		Response:     fullResponse,
		Model:        p.model,
		InputTokens:  int(response.Usage.InputTokens),
		OutputTokens: int(response.Usage.OutputTokens),
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, int(response.Usage.InputTokens), int(response.Usage.OutputTokens)),
	}, nil
}

// extractResponseText concatenates all text blocks from the response
func (p *anthropicProvider) extractResponseText(response anthropic.Message) string {
	text := ""
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text
}
