// services/analysis_service.go
package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brandsight/brandsight-workflows/internal/apperrors"
	"github.com/brandsight/brandsight-workflows/internal/classifier"
	"github.com/brandsight/brandsight-workflows/internal/config"
	"github.com/brandsight/brandsight-workflows/internal/models"
)

type analysisService struct {
	cfg        *config.Config
	repos      *RepositoryManager
	classifier *classifier.Classifier
	scorer     VisibilityScorer
	providers  map[models.Platform]AIProvider
}

// NewAnalysisService wires one provider per platform. ChatGPT, Gemini and
// Google AI share the OpenAI provider; the platform label on the record
// still distinguishes them.
func NewAnalysisService(cfg *config.Config, repos *RepositoryManager, cls *classifier.Classifier, costService CostService, scorer VisibilityScorer) AnalysisService {
	openAI := NewOpenAIProvider(cfg, cfg.OpenAIModel, costService)
	anthropic := NewAnthropicProvider(cfg, cfg.AnthropicModel, costService)
	perplexity := NewPerplexityProvider(cfg, cfg.PerplexityModel, costService)

	return &analysisService{
		cfg:        cfg,
		repos:      repos,
		classifier: cls,
		scorer:     scorer,
		providers: map[models.Platform]AIProvider{
			models.PlatformChatGPT:    openAI,
			models.PlatformGemini:     openAI,
			models.PlatformGoogleAI:   openAI,
			models.PlatformClaude:     anthropic,
			models.PlatformPerplexity: perplexity,
		},
	}
}

// AnalyzeKeyword runs the full pipeline for one observation: provider
// call, classification, one immutable analytics row, then the visibility
// update on the owning keyword.
func (s *analysisService) AnalyzeKeyword(ctx context.Context, keywordID uuid.UUID, platform models.Platform, query string, analysisContext map[string]interface{}) (*AnalysisResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "query is required")
	}
	if !platform.Valid() {
		return nil, apperrors.New(apperrors.KindInvalidInput, "unsupported platform %q", platform)
	}

	keyword, err := s.repos.KeywordRepo.GetByID(ctx, keywordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword: %w", err)
	}
	if keyword == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "keyword %s not found", keywordID)
	}

	provider, ok := s.providers[platform]
	if !ok {
		return nil, apperrors.New(apperrors.KindInvalidInput, "no provider for platform %q", platform)
	}

	clientName := "Unknown"
	if client, err := s.repos.ClientRepo.GetByID(ctx, keyword.ClientID); err == nil && client != nil {
		clientName = client.Name
	}

	enrichedContext := map[string]interface{}{
		"keyword":  keyword.Keyword,
		"category": keyword.Category,
		"client":   clientName,
		"platform": platform,
	}
	for k, v := range analysisContext {
		enrichedContext[k] = v
	}

	fmt.Printf("[AnalyzeKeyword] Running %s analysis for keyword %q\n", platform, keyword.Keyword)

	startTime := time.Now()
	aiResponse, err := provider.AnalyzeQuery(ctx, keyword.Keyword, query, enrichedContext)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindProvider, err,
			"provider call failed for keyword %q on %s", keyword.Keyword, platform)
	}
	responseTime := int(time.Since(startTime).Milliseconds())

	signals := s.classifier.Analyze(aiResponse.Response)
	now := time.Now().UTC()

	analytic := &models.Analytic{
		AnalyticID:       uuid.New(),
		KeywordID:        keyword.KeywordID,
		Platform:         platform,
		Query:            query,
		Response:         aiResponse.Response,
		Citations:        models.CitationList(signals.Citations),
		BrandMentioned:   signals.BrandMentioned,
		BrandSentiment:   signals.BrandSentiment,
		OverallSentiment: signals.OverallSentiment,
		WordCount:        signals.WordCount,
		ConfidenceScore:  signals.ConfidenceScore,
		ResponseTimeMS:   responseTime,
		Metadata: models.AnalysisMetadata{
			KeyTopics: signals.KeyTopics,
			Model:     aiResponse.Model,
			Timestamp: now,
		},
		CreatedAt: now,
	}

	if err := s.repos.AnalyticsRepo.Create(ctx, analytic); err != nil {
		return nil, fmt.Errorf("failed to store analytic: %w", err)
	}

	score := s.scorer.Score(signals.BrandMentioned)
	if err := s.repos.KeywordRepo.UpdateVisibility(ctx, keyword.KeywordID, platform, score, now); err != nil {
		return nil, fmt.Errorf("failed to update visibility: %w", err)
	}

	fmt.Printf("[AnalyzeKeyword] Completed %s analysis for keyword %q - mentioned: %v, sentiment: %s, visibility: %d\n",
		platform, keyword.Keyword, signals.BrandMentioned, signals.BrandSentiment, score)

	return &AnalysisResult{
		Keyword:        keyword.Keyword,
		Platform:       platform,
		Query:          query,
		Response:       aiResponse.Response,
		ResponseTimeMS: responseTime,
		Analytic:       analytic,
		Visibility: VisibilityUpdate{
			Platform: platform,
			Score:    score,
		},
		Usage: map[string]interface{}{
			"input_tokens":  aiResponse.InputTokens,
			"output_tokens": aiResponse.OutputTokens,
			"cost":          aiResponse.Cost,
		},
	}, nil
}

// randomVisibilityScorer draws mention scores uniformly in [60,100) and
// non-mention scores in [0,30), rounded to the nearest integer.
type randomVisibilityScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomVisibilityScorer() VisibilityScorer {
	return &randomVisibilityScorer{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *randomVisibilityScorer) Score(mentioned bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mentioned {
		v := 60 + s.rng.Float64()*40
		if v > 100 {
			v = 100
		}
		return int(math.Round(v))
	}
	return int(math.Round(s.rng.Float64() * 30))
}
