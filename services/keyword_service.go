// services/keyword_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/brandsight/brandsight-workflows/internal/apperrors"
	"github.com/brandsight/brandsight-workflows/internal/models"
)

const defaultSuggestionCount = 10

type keywordService struct {
	repos       *RepositoryManager
	suggestions SuggestionProvider
	seo         SEOService
}

// NewKeywordService manages the tracked keyword set. SEO enrichment is
// best effort; a failing SEO lookup never blocks keyword creation.
func NewKeywordService(repos *RepositoryManager, suggestions SuggestionProvider, seo SEOService) KeywordService {
	return &keywordService{
		repos:       repos,
		suggestions: suggestions,
		seo:         seo,
	}
}

func (s *keywordService) AddKeyword(ctx context.Context, clientName, keyword, category string) (*models.Keyword, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "keyword is required")
	}
	if category == "" {
		category = "General"
	}
	if !models.ValidCategory(category) {
		return nil, apperrors.New(apperrors.KindInvalidInput, "unknown category %q", category)
	}

	client, created, err := s.repos.ClientRepo.GetOrCreateByName(ctx, clientName, defaultIndustry)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve client: %w", err)
	}
	if created {
		fmt.Printf("[AddKeyword] Created client %q\n", clientName)
	}

	existing, err := s.repos.KeywordRepo.FindByText(ctx, client.ClientID, keyword)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate keyword: %w", err)
	}
	if existing != nil {
		return nil, apperrors.New(apperrors.KindInvalidInput, "keyword %q is already tracked for %s", keyword, clientName)
	}

	kw := &models.Keyword{
		KeywordID: uuid.New(),
		ClientID:  client.ClientID,
		Keyword:   keyword,
		Category:  category,
		Status:    models.KeywordActive,
	}
	s.enrichFromSEO(ctx, kw)

	if err := s.repos.KeywordRepo.Create(ctx, kw); err != nil {
		return nil, fmt.Errorf("failed to create keyword: %w", err)
	}

	fmt.Printf("[AddKeyword] Tracking keyword %q (%s) for %s\n", keyword, category, clientName)
	return kw, nil
}

func (s *keywordService) AddKeywords(ctx context.Context, clientName string, keywords []KeywordInput) (*BulkKeywordResult, error) {
	if len(keywords) == 0 {
		return nil, apperrors.New(apperrors.KindInvalidInput, "at least one keyword is required")
	}

	result := &BulkKeywordResult{Total: len(keywords)}
	for _, input := range keywords {
		kw, err := s.AddKeyword(ctx, clientName, input.Keyword, input.Category)
		if err != nil {
			result.Errors++
			result.ErrorDetails = append(result.ErrorDetails, fmt.Sprintf("%s: %v", input.Keyword, err))
			continue
		}
		result.Success++
		result.Keywords = append(result.Keywords, kw)
	}

	fmt.Printf("[AddKeywords] Imported %d/%d keywords for %s\n", result.Success, result.Total, clientName)
	return result, nil
}

// DeleteKeyword removes the keyword and returns how many analytics rows
// the cascade takes with it.
func (s *keywordService) DeleteKeyword(ctx context.Context, keywordID uuid.UUID) (int, error) {
	keyword, err := s.repos.KeywordRepo.GetByID(ctx, keywordID)
	if err != nil {
		return 0, fmt.Errorf("failed to load keyword: %w", err)
	}
	if keyword == nil {
		return 0, apperrors.New(apperrors.KindNotFound, "keyword %s not found", keywordID)
	}

	analyticsCount, err := s.repos.AnalyticsRepo.CountForKeyword(ctx, keywordID)
	if err != nil {
		return 0, fmt.Errorf("failed to count analytics: %w", err)
	}

	if err := s.repos.KeywordRepo.Delete(ctx, keywordID); err != nil {
		return 0, fmt.Errorf("failed to delete keyword: %w", err)
	}

	fmt.Printf("[DeleteKeyword] Deleted keyword %q and %d analytics rows\n", keyword.Keyword, analyticsCount)
	return analyticsCount, nil
}

func (s *keywordService) GetKeywordSuggestions(ctx context.Context, clientName, seed string, count int, category, source string) ([]string, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "seed keyword is required")
	}
	if count <= 0 {
		count = defaultSuggestionCount
	}

	client, err := s.repos.ClientRepo.GetByName(ctx, clientName)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "client %q not found", clientName)
	}

	var raw []string
	switch source {
	case "dataforseo":
		seoData, err := s.seo.GetKeywordSuggestions(ctx, seed, count*2)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindProvider, err, "dataforseo suggestions failed for %q", seed)
		}
		for _, item := range seoData {
			raw = append(raw, item.Keyword)
		}
	case "", "openai":
		raw, err = s.suggestions.GenerateKeywordSuggestions(ctx, seed, count*2, category)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindProvider, err, "suggestion generation failed for %q", seed)
		}
	default:
		return nil, apperrors.New(apperrors.KindInvalidInput, "unknown suggestion source %q", source)
	}

	return s.filterSuggestions(ctx, client.ClientID, raw, count)
}

// filterSuggestions drops suggestions already tracked for the client and
// duplicates within the batch, case-insensitively.
func (s *keywordService) filterSuggestions(ctx context.Context, clientID uuid.UUID, raw []string, count int) ([]string, error) {
	tracked, err := s.repos.KeywordRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked keywords: %w", err)
	}

	seen := map[string]bool{}
	for _, kw := range tracked {
		seen[strings.ToLower(kw.Keyword)] = true
	}

	suggestions := make([]string, 0, count)
	for _, candidate := range raw {
		candidate = strings.TrimSpace(candidate)
		key := strings.ToLower(candidate)
		if candidate == "" || seen[key] {
			continue
		}
		seen[key] = true
		suggestions = append(suggestions, candidate)
		if len(suggestions) == count {
			break
		}
	}
	return suggestions, nil
}

// enrichFromSEO fills search volume, CPC and competition from the SEO
// collaborator when an exact match comes back.
func (s *keywordService) enrichFromSEO(ctx context.Context, kw *models.Keyword) {
	if s.seo == nil {
		return
	}
	data, err := s.seo.GetKeywordData(ctx, kw.Keyword)
	if err != nil {
		fmt.Printf("[AddKeyword] SEO enrichment failed for %q: %v\n", kw.Keyword, err)
		return
	}
	for _, item := range data {
		if !strings.EqualFold(item.Keyword, kw.Keyword) {
			continue
		}
		kw.SearchVolume = item.SearchVolume
		kw.CPC = item.CPC
		kw.Competition = item.CompetitionLevel
		kw.Difficulty = item.CompetitionIndex
		return
	}
}
