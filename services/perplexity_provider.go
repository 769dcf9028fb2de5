// services/perplexity_provider.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brandsight/brandsight-workflows/internal/config"
)

type perplexityProvider struct {
	apiKey      string
	model       string
	brandName   string
	baseURL     string
	costService CostService
	httpClient  *http.Client
}

// NewPerplexityProvider serves the Perplexity platform via its
// chat-completions API.
func NewPerplexityProvider(cfg *config.Config, model string, costService CostService) AIProvider {
	return &perplexityProvider{
		apiKey:      cfg.PerplexityAPIKey,
		model:       model,
		brandName:   cfg.BrandName,
		baseURL:     "https://api.perplexity.ai",
		costService: costService,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (p *perplexityProvider) GetProviderName() string {
	return "perplexity"
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityRequest struct {
	Model       string              `json:"model"`
	Messages    []perplexityMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float64             `json:"temperature"`
}

type perplexityResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (p *perplexityProvider) AnalyzeQuery(ctx context.Context, keyword, query string, analysisContext map[string]interface{}) (*AIResponse, error) {
	contextJSON, err := json.Marshal(analysisContext)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis context: %w", err)
	}

	systemPrompt := fmt.Sprintf(`You are an AI assistant that analyzes search queries and provides comprehensive responses.
Pay special attention to mentions of '%s' (the gambling and cryptocurrency platform).
Analyze the sentiment towards %s if mentioned, and provide detailed analysis.

Context: %s`, p.brandName, p.brandName, string(contextJSON))

	requestBody := perplexityRequest{
		Model: p.model,
		Messages: []perplexityMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Analyze this query about %q: %s", keyword, query)},
		},
		MaxTokens:   1500,
		Temperature: 0.7,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perplexity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("perplexity API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed perplexityResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode perplexity response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	return &AIResponse{
		Response:     parsed.Choices[0].Message.Content,
		Model:        p.model,
		InputTokens:  parsed.Usage.PromptTokens,
		OutputTokens: parsed.Usage.CompletionTokens,
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, parsed.Usage.PromptTokens, parsed.Usage.CompletionTokens),
	}, nil
}
