// services/cost_service.go
package services

import "strings"

type costService struct{}

func NewCostService() CostService {
	return &costService{}
}

// Cost per 1M tokens
var costPerToken = map[string]struct{ input, output float64 }{
	"gpt-4.1":                  {input: 3.00, output: 12.00},
	"gpt-4.1-mini":             {input: 0.80, output: 3.20},
	"gpt-4o":                   {input: 2.50, output: 10.00},
	"claude-sonnet-4-20250514": {input: 3.00, output: 15.00},
	"sonar":                    {input: 1.00, output: 1.00}, // Perplexity Sonar pricing (estimated)
	"sonar-pro":                {input: 3.00, output: 15.00},
}

func (s *costService) CalculateCost(provider string, model string, inputTokens int, outputTokens int) float64 {
	modelCosts, exists := costPerToken[model]
	if !exists {
		modelCosts = s.defaultCosts(provider)
	}

	inputCost := (float64(inputTokens) / 1_000_000.0) * modelCosts.input
	outputCost := (float64(outputTokens) / 1_000_000.0) * modelCosts.output

	return inputCost + outputCost
}

func (s *costService) defaultCosts(provider string) struct{ input, output float64 } {
	provider = strings.ToLower(provider)
	if strings.Contains(provider, "anthropic") || strings.Contains(provider, "claude") {
		return costPerToken["claude-sonnet-4-20250514"]
	}
	if strings.Contains(provider, "perplexity") || strings.Contains(provider, "sonar") {
		return costPerToken["sonar"]
	}
	return costPerToken["gpt-4.1"]
}
