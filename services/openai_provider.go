// services/openai_provider.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/brandsight/brandsight-workflows/internal/config"
)

type openAIProvider struct {
	client      *openai.Client
	model       string
	brandName   string
	costService CostService
}

// NewOpenAIProvider serves the ChatGPT, Gemini and Google AI platforms.
func NewOpenAIProvider(cfg *config.Config, model string, costService CostService) *openAIProvider {
	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
	)

	return &openAIProvider{
		client:      &client,
		model:       model,
		brandName:   cfg.BrandName,
		costService: costService,
	}
}

func (p *openAIProvider) GetProviderName() string {
	return "openai"
}

// SuggestionResponse is the structured output for keyword suggestions
type SuggestionResponse struct {
	Suggestions []string `json:"suggestions" jsonschema_description:"Keyword suggestions, one phrase each, no numbering"`
}

// Generate the JSON schema at initialization time
var suggestionResponseSchema = GenerateSchema[SuggestionResponse]()

// GenerateSchema generates a JSON schema for structured outputs
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// AnalyzeQuery runs one tracked query against the platform and returns the
// raw answer text plus usage metadata.
func (p *openAIProvider) AnalyzeQuery(ctx context.Context, keyword, query string, analysisContext map[string]interface{}) (*AIResponse, error) {
	contextJSON, err := json.Marshal(analysisContext)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis context: %w", err)
	}

	systemPrompt := fmt.Sprintf(`You are an AI assistant that analyzes search queries and provides comprehensive responses.
Pay special attention to mentions of '%s' (the gambling and cryptocurrency platform).
Analyze the sentiment towards %s if mentioned, and provide detailed analysis.

Context: %s`, p.brandName, p.brandName, string(contextJSON))

	response, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(fmt.Sprintf("Analyze this query about %q: %s", keyword, query)),
		},
		Model:       openai.ChatModel(p.model),
		MaxTokens:   openai.Int(1500),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	return &AIResponse{
		Response:     response.Choices[0].Message.Content,
		Model:        p.model,
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, int(response.Usage.PromptTokens), int(response.Usage.CompletionTokens)),
	}, nil
}

// GenerateKeywordSuggestions implements SuggestionProvider using structured
// outputs, so no line-format scraping is needed.
func (p *openAIProvider) GenerateKeywordSuggestions(ctx context.Context, seed string, count int, category string) ([]string, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "keyword_suggestions",
		Description: openai.String("Keyword suggestions for the seed keyword"),
		Schema:      suggestionResponseSchema,
		Strict:      openai.Bool(true),
	}

	systemPrompt := fmt.Sprintf(`You are a keyword research expert specializing in %s keywords.
Generate relevant keyword suggestions for SEO and content marketing that would be valuable for %s.
%s`, strings.ToLower(category), p.brandName, categoryContext(category))

	response, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(fmt.Sprintf("Generate %d relevant keyword suggestions related to %q.", count, seed)),
		},
		Model: openai.ChatModel(p.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		MaxTokens:   openai.Int(800),
		Temperature: openai.Float(0.8),
	})
	if err != nil {
		return nil, fmt.Errorf("keyword suggestions failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	var parsed SuggestionResponse
	if err := json.Unmarshal([]byte(response.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}

	suggestions := make([]string, 0, count)
	for _, s := range parsed.Suggestions {
		s = strings.TrimSpace(s)
		if s == "" || len(s) > 100 {
			continue
		}
		suggestions = append(suggestions, s)
		if len(suggestions) == count {
			break
		}
	}
	return suggestions, nil
}

func categoryContext(category string) string {
	contexts := map[string]string{
		"Gambling":       "Focus on gambling, betting, casino games, sports betting, and related terms.",
		"Cryptocurrency": "Focus on crypto, bitcoin, digital currencies, blockchain, and crypto gambling.",
		"Sports Betting": "Focus on sports betting, odds, matches, tournaments, and specific sports.",
		"Casino Games":   "Focus on slot games, poker, blackjack, roulette, and other casino games.",
		"Promotions":     "Focus on bonuses, promotions, offers, rewards, and loyalty programs.",
		"Banking":        "Focus on deposits, withdrawals, payment methods, and financial transactions.",
		"Support":        "Focus on customer service, help, tutorials, and user guidance.",
	}

	if ctx, ok := contexts[category]; ok {
		return ctx
	}
	return "Generate general keywords related to online gaming and gambling."
}
