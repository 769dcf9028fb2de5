// services/keyword_service_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/brandsight/brandsight-workflows/internal/apperrors"
	"github.com/brandsight/brandsight-workflows/internal/models"
)

type fakeSuggestionProvider struct {
	suggestions []string
	err         error
}

func (p *fakeSuggestionProvider) GenerateKeywordSuggestions(ctx context.Context, seed string, count int, category string) ([]string, error) {
	return p.suggestions, p.err
}

type fakeSEOService struct {
	data []KeywordSEOData
	err  error
}

func (s *fakeSEOService) GetKeywordData(ctx context.Context, keyword string) ([]KeywordSEOData, error) {
	return s.data, s.err
}

func (s *fakeSEOService) GetKeywordSuggestions(ctx context.Context, seed string, limit int) ([]KeywordSEOData, error) {
	return s.data, s.err
}

func newKeywordFixture(suggestions SuggestionProvider, seo SEOService) (*keywordService, *fakeClientRepo, *fakeKeywordRepo, *fakeAnalyticsRepo) {
	clients := &fakeClientRepo{}
	keywords := &fakeKeywordRepo{}
	analytics := newFakeAnalyticsRepo()
	svc := &keywordService{
		repos:       testRepos(clients, keywords, analytics),
		suggestions: suggestions,
		seo:         seo,
	}
	return svc, clients, keywords, analytics
}

func TestAddKeywordValidation(t *testing.T) {
	svc, _, _, _ := newKeywordFixture(nil, nil)

	if _, err := svc.AddKeyword(context.Background(), "Stake", "  ", "Gambling"); !apperrors.IsInvalidInput(err) {
		t.Errorf("blank keyword: expected invalid input error, got %v", err)
	}
	if _, err := svc.AddKeyword(context.Background(), "Stake", "crypto casino", "Astrology"); !apperrors.IsInvalidInput(err) {
		t.Errorf("unknown category: expected invalid input error, got %v", err)
	}
}

func TestAddKeywordCreatesClientAndKeyword(t *testing.T) {
	seo := &fakeSEOService{data: []KeywordSEOData{
		{Keyword: "Crypto Casino", SearchVolume: 5400, CPC: 2.3, CompetitionLevel: "HIGH", CompetitionIndex: 78},
		{Keyword: "crypto casino bonus", SearchVolume: 900},
	}}
	svc, clients, keywords, _ := newKeywordFixture(nil, seo)

	kw, err := svc.AddKeyword(context.Background(), "Stake", "crypto casino", "Gambling")
	if err != nil {
		t.Fatalf("AddKeyword failed: %v", err)
	}

	if clients.created != 1 {
		t.Errorf("clients created = %d, want 1", clients.created)
	}
	if kw.Status != models.KeywordActive {
		t.Errorf("status = %q, want active", kw.Status)
	}
	// Enrichment matches case-insensitively on the exact keyword.
	if kw.SearchVolume != 5400 || kw.CPC != 2.3 || kw.Competition != "HIGH" || kw.Difficulty != 78 {
		t.Errorf("SEO enrichment not applied: %+v", kw)
	}
	if len(keywords.keywords) != 1 {
		t.Fatalf("stored keywords = %d, want 1", len(keywords.keywords))
	}
}

func TestAddKeywordRejectsDuplicate(t *testing.T) {
	svc, _, _, _ := newKeywordFixture(nil, nil)

	if _, err := svc.AddKeyword(context.Background(), "Stake", "crypto casino", "Gambling"); err != nil {
		t.Fatalf("first AddKeyword failed: %v", err)
	}
	_, err := svc.AddKeyword(context.Background(), "Stake", "CRYPTO CASINO", "Gambling")
	if !apperrors.IsInvalidInput(err) {
		t.Fatalf("duplicate keyword: expected invalid input error, got %v", err)
	}
}

func TestAddKeywordSurvivesSEOFailure(t *testing.T) {
	svc, _, _, _ := newKeywordFixture(nil, &fakeSEOService{err: errors.New("quota exceeded")})

	kw, err := svc.AddKeyword(context.Background(), "Stake", "crypto casino", "Gambling")
	if err != nil {
		t.Fatalf("AddKeyword failed: %v", err)
	}
	if kw.SearchVolume != 0 {
		t.Errorf("search volume = %d, want 0 when enrichment fails", kw.SearchVolume)
	}
}

func TestAddKeywordsCollectsErrors(t *testing.T) {
	svc, _, _, _ := newKeywordFixture(nil, nil)

	result, err := svc.AddKeywords(context.Background(), "Stake", []KeywordInput{
		{Keyword: "crypto casino", Category: "Gambling"},
		{Keyword: "", Category: "Gambling"},
		{Keyword: "crypto casino", Category: "Gambling"},
	})
	if err != nil {
		t.Fatalf("AddKeywords failed: %v", err)
	}

	if result.Success != 1 || result.Errors != 2 || result.Total != 3 {
		t.Errorf("result = %+v, want 1 success and 2 errors out of 3", result)
	}
	if len(result.ErrorDetails) != 2 {
		t.Errorf("error details = %v, want 2 entries", result.ErrorDetails)
	}
}

func TestDeleteKeywordReturnsCascadeCount(t *testing.T) {
	svc, _, keywords, analytics := newKeywordFixture(nil, nil)

	kw := &models.Keyword{KeywordID: uuid.New(), ClientID: uuid.New(), Keyword: "crypto casino", Status: models.KeywordActive}
	keywords.keywords = []*models.Keyword{kw}
	for i := 0; i < 3; i++ {
		analytics.add(kw.ClientID, &models.AnalyticWithKeyword{
			Analytic: models.Analytic{AnalyticID: uuid.New(), KeywordID: kw.KeywordID},
		})
	}

	count, err := svc.DeleteKeyword(context.Background(), kw.KeywordID)
	if err != nil {
		t.Fatalf("DeleteKeyword failed: %v", err)
	}
	if count != 3 {
		t.Errorf("cascade count = %d, want 3", count)
	}
	if len(keywords.deleted) != 1 || keywords.deleted[0] != kw.KeywordID {
		t.Errorf("deleted = %v, want the keyword id", keywords.deleted)
	}
}

func TestDeleteKeywordNotFound(t *testing.T) {
	svc, _, _, _ := newKeywordFixture(nil, nil)

	_, err := svc.DeleteKeyword(context.Background(), uuid.New())
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestGetKeywordSuggestionsFiltersTracked(t *testing.T) {
	provider := &fakeSuggestionProvider{suggestions: []string{
		"crypto casino",
		"stake bonus codes",
		"Stake Bonus Codes",
		"best bitcoin casino",
		"  ",
	}}
	svc, clients, keywords, _ := newKeywordFixture(provider, nil)

	client := &models.Client{ClientID: uuid.New(), Name: "Stake", Active: true}
	clients.clients = []*models.Client{client}
	keywords.keywords = []*models.Keyword{
		{KeywordID: uuid.New(), ClientID: client.ClientID, Keyword: "Crypto Casino", Status: models.KeywordActive},
	}

	got, err := svc.GetKeywordSuggestions(context.Background(), "Stake", "crypto casino", 10, "Gambling", "openai")
	if err != nil {
		t.Fatalf("GetKeywordSuggestions failed: %v", err)
	}

	want := []string{"stake bonus codes", "best bitcoin casino"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestGetKeywordSuggestionsUnknownSource(t *testing.T) {
	svc, clients, _, _ := newKeywordFixture(nil, nil)
	clients.clients = []*models.Client{{ClientID: uuid.New(), Name: "Stake", Active: true}}

	_, err := svc.GetKeywordSuggestions(context.Background(), "Stake", "crypto casino", 10, "Gambling", "bing")
	if !apperrors.IsInvalidInput(err) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
