// services/aggregation_service_test.go
package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/brandsight/brandsight-workflows/internal/apperrors"
	"github.com/brandsight/brandsight-workflows/internal/models"
)

type aggFixture struct {
	svc       *aggregationService
	clients   *fakeClientRepo
	keywords  *fakeKeywordRepo
	analytics *fakeAnalyticsRepo
	client    *models.Client
	now       time.Time
}

func newAggFixture(t *testing.T) *aggFixture {
	t.Helper()

	client := &models.Client{
		ClientID: uuid.New(),
		Name:     "Stake",
		Industry: "Gambling & Cryptocurrency",
		Active:   true,
	}
	clients := &fakeClientRepo{clients: []*models.Client{client}}
	keywords := &fakeKeywordRepo{}
	analytics := newFakeAnalyticsRepo()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc := &aggregationService{
		repos: testRepos(clients, keywords, analytics),
		now:   func() time.Time { return now },
	}
	return &aggFixture{
		svc:       svc,
		clients:   clients,
		keywords:  keywords,
		analytics: analytics,
		client:    client,
		now:       now,
	}
}

func (f *aggFixture) addRow(keywordID uuid.UUID, keywordText string, platform models.Platform, createdAt time.Time, mentioned bool, sentiment models.BrandSentiment, confidence float64, citations models.CitationList) {
	f.analytics.add(f.client.ClientID, &models.AnalyticWithKeyword{
		Analytic: models.Analytic{
			AnalyticID:      uuid.New(),
			KeywordID:       keywordID,
			Platform:        platform,
			BrandMentioned:  mentioned,
			BrandSentiment:  sentiment,
			ConfidenceScore: confidence,
			Citations:       citations,
			CreatedAt:       createdAt,
		},
		KeywordText:     keywordText,
		KeywordCategory: "Gambling",
	})
}

func TestGetOverviewValidation(t *testing.T) {
	f := newAggFixture(t)

	if _, err := f.svc.GetOverview(context.Background(), "Stake", 0); !apperrors.IsInvalidInput(err) {
		t.Errorf("days=0: expected invalid input error, got %v", err)
	}
	if _, err := f.svc.GetOverview(context.Background(), "Nobody", 30); !apperrors.IsNotFound(err) {
		t.Errorf("unknown client: expected not found error, got %v", err)
	}
}

func TestGetOverviewEmptyWindow(t *testing.T) {
	f := newAggFixture(t)

	report, err := f.svc.GetOverview(context.Background(), "Stake", 30)
	if err != nil {
		t.Fatalf("GetOverview failed: %v", err)
	}

	want := models.OverviewStats{}
	if diff := cmp.Diff(want, report.Overview); diff != "" {
		t.Errorf("overview stats mismatch (-want +got):\n%s", diff)
	}
	if len(report.Sentiment) != 0 {
		t.Errorf("sentiment = %v, want empty map", report.Sentiment)
	}
	if len(report.Platforms) != len(models.AllPlatforms) {
		t.Errorf("platform count = %d, want %d", len(report.Platforms), len(models.AllPlatforms))
	}
	for _, ps := range report.Platforms {
		if ps.TotalAnalyses != 0 || ps.MentionRate != 0 || ps.AvgConfidence != 0 {
			t.Errorf("platform %s stats = %+v, want zeros", ps.Platform, ps)
		}
	}
	if len(report.TrendingKeywords) != 0 {
		t.Errorf("trending keywords = %v, want none", report.TrendingKeywords)
	}
}

func TestGetOverview(t *testing.T) {
	f := newAggFixture(t)
	recent := f.now.Add(-time.Hour)

	k1 := &models.Keyword{KeywordID: uuid.New(), ClientID: f.client.ClientID, Keyword: "crypto casino", Status: models.KeywordActive,
		VisibilityChatGPT: 80, VisibilityPerplexity: 60, VisibilityClaude: 70, VisibilityGemini: 90, LastAnalyzed: &recent}
	k2 := &models.Keyword{KeywordID: uuid.New(), ClientID: f.client.ClientID, Keyword: "stake bonus", Status: models.KeywordActive,
		VisibilityChatGPT: 40, VisibilityPerplexity: 20, VisibilityClaude: 30, VisibilityGemini: 10}
	k3 := &models.Keyword{KeywordID: uuid.New(), ClientID: f.client.ClientID, Keyword: "old keyword", Status: models.KeywordPaused}
	f.keywords.keywords = []*models.Keyword{k1, k2, k3}

	f.addRow(k1.KeywordID, "crypto casino", models.PlatformChatGPT, f.now.Add(-2*time.Hour), true, models.SentimentVeryPositive, 0.8, nil)
	f.addRow(k1.KeywordID, "crypto casino", models.PlatformChatGPT, f.now.Add(-3*time.Hour), false, models.SentimentNeutral, 0.6, nil)
	f.addRow(k2.KeywordID, "stake bonus", models.PlatformClaude, f.now.Add(-4*time.Hour), true, models.SentimentPositive, 0.5, nil)

	report, err := f.svc.GetOverview(context.Background(), "Stake", 30)
	if err != nil {
		t.Fatalf("GetOverview failed: %v", err)
	}

	wantOverview := models.OverviewStats{
		TotalKeywords:      2,
		AnalyzedKeywords:   1,
		RecentAnalytics:    3,
		BrandMentions:      2,
		AvgVisibilityScore: 33,
		MentionRate:        66.7,
	}
	if diff := cmp.Diff(wantOverview, report.Overview); diff != "" {
		t.Errorf("overview stats mismatch (-want +got):\n%s", diff)
	}

	wantVisibility := models.PlatformVisibility{ChatGPT: 40, Perplexity: 27, Claude: 33, Gemini: 33}
	if diff := cmp.Diff(wantVisibility, report.Visibility); diff != "" {
		t.Errorf("visibility mismatch (-want +got):\n%s", diff)
	}

	wantSentiment := map[models.BrandSentiment]int{
		models.SentimentVeryPositive: 1,
		models.SentimentPositive:     1,
		models.SentimentNeutral:      1,
	}
	if diff := cmp.Diff(wantSentiment, report.Sentiment); diff != "" {
		t.Errorf("sentiment mismatch (-want +got):\n%s", diff)
	}

	wantPlatforms := []models.PlatformStats{
		{Platform: models.PlatformChatGPT, TotalAnalyses: 2, Mentions: 1, MentionRate: 50, AvgConfidence: 0.7},
		{Platform: models.PlatformPerplexity},
		{Platform: models.PlatformClaude, TotalAnalyses: 1, Mentions: 1, MentionRate: 100, AvgConfidence: 0.5},
		{Platform: models.PlatformGemini},
		{Platform: models.PlatformGoogleAI},
	}
	if diff := cmp.Diff(wantPlatforms, report.Platforms); diff != "" {
		t.Errorf("platform breakdown mismatch (-want +got):\n%s", diff)
	}

	wantTrending := []models.TrendingKeyword{
		{KeywordID: k1.KeywordID, Keyword: "crypto casino", Category: "Gambling", AnalysisCount: 2, MentionCount: 1, MentionRate: 50},
		{KeywordID: k2.KeywordID, Keyword: "stake bonus", Category: "Gambling", AnalysisCount: 1, MentionCount: 1, MentionRate: 100},
	}
	if diff := cmp.Diff(wantTrending, report.TrendingKeywords); diff != "" {
		t.Errorf("trending keywords mismatch (-want +got):\n%s", diff)
	}

	if report.Period.Days != 30 || !report.Period.To.Equal(f.now) {
		t.Errorf("period = %+v, want 30 days ending at %v", report.Period, f.now)
	}
}

func TestGetOverviewAvgVisibilityRoundsOnce(t *testing.T) {
	f := newAggFixture(t)

	// Platform means 0.6, 0.6, 0.6, 0: the displayed per-platform values
	// round to 1,1,1,0, but the average rounds over the raw means.
	f.keywords.keywords = []*models.Keyword{
		{KeywordID: uuid.New(), ClientID: f.client.ClientID, Keyword: "a", Status: models.KeywordActive, VisibilityChatGPT: 3},
		{KeywordID: uuid.New(), ClientID: f.client.ClientID, Keyword: "b", Status: models.KeywordActive, VisibilityPerplexity: 3},
		{KeywordID: uuid.New(), ClientID: f.client.ClientID, Keyword: "c", Status: models.KeywordActive, VisibilityClaude: 3},
		{KeywordID: uuid.New(), ClientID: f.client.ClientID, Keyword: "d", Status: models.KeywordActive},
		{KeywordID: uuid.New(), ClientID: f.client.ClientID, Keyword: "e", Status: models.KeywordActive},
	}

	report, err := f.svc.GetOverview(context.Background(), "Stake", 30)
	if err != nil {
		t.Fatalf("GetOverview failed: %v", err)
	}

	wantVisibility := models.PlatformVisibility{ChatGPT: 1, Perplexity: 1, Claude: 1, Gemini: 0}
	if diff := cmp.Diff(wantVisibility, report.Visibility); diff != "" {
		t.Errorf("visibility mismatch (-want +got):\n%s", diff)
	}
	if report.Overview.AvgVisibilityScore != 0 {
		t.Errorf("avg visibility score = %d, want 0 (mean of 0.6,0.6,0.6,0 is 0.45)", report.Overview.AvgVisibilityScore)
	}
}

func TestTrendingKeywordsCapAndTieOrder(t *testing.T) {
	f := newAggFixture(t)

	ids := make([]uuid.UUID, 12)
	for i := range ids {
		ids[i] = uuid.New()
		f.addRow(ids[i], fmt.Sprintf("keyword %02d", i), models.PlatformChatGPT, f.now.Add(-time.Duration(i+1)*time.Hour), false, models.SentimentNeutral, 0.5, nil)
	}

	report, err := f.svc.GetOverview(context.Background(), "Stake", 30)
	if err != nil {
		t.Fatalf("GetOverview failed: %v", err)
	}

	if len(report.TrendingKeywords) != 10 {
		t.Fatalf("trending count = %d, want 10", len(report.TrendingKeywords))
	}
	// All counts tie at one, so discovery order decides.
	for i, tk := range report.TrendingKeywords {
		if tk.KeywordID != ids[i] {
			t.Errorf("position %d: got keyword %s, want %s", i, tk.KeywordID, ids[i])
		}
	}
}

func TestGetVisibilityTrendsMergesPlatformsPerDay(t *testing.T) {
	f := newAggFixture(t)
	kw := uuid.New()

	f.addRow(kw, "crypto casino", models.PlatformChatGPT, time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC), true, models.SentimentPositive, 0.8, nil)
	f.addRow(kw, "crypto casino", models.PlatformClaude, time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC), false, models.SentimentNeutral, 0.6, nil)
	f.addRow(kw, "crypto casino", models.PlatformChatGPT, time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC), true, models.SentimentPositive, 0.4, nil)

	report, err := f.svc.GetVisibilityTrends(context.Background(), "Stake", 7, nil)
	if err != nil {
		t.Fatalf("GetVisibilityTrends failed: %v", err)
	}

	wantTrends := []models.DailyTrend{
		{
			Date:          "2026-08-30",
			TotalAnalyses: 2,
			TotalMentions: 1,
			MentionRate:   50,
			Platforms: map[models.Platform]models.PlatformDayStats{
				models.PlatformChatGPT: {Analyses: 1, Mentions: 1, MentionRate: 100, AvgConfidence: 0.4},
				models.PlatformClaude:  {Analyses: 1, Mentions: 0, MentionRate: 0, AvgConfidence: 0.6},
			},
		},
		{
			Date:          "2026-08-31",
			TotalAnalyses: 1,
			TotalMentions: 1,
			MentionRate:   100,
			Platforms: map[models.Platform]models.PlatformDayStats{
				models.PlatformChatGPT: {Analyses: 1, Mentions: 1, MentionRate: 100, AvgConfidence: 0.8},
			},
		},
	}
	if diff := cmp.Diff(wantTrends, report.Trends); diff != "" {
		t.Errorf("trends mismatch (-want +got):\n%s", diff)
	}

	wantSummary := models.TrendSummary{
		TotalDays:        2,
		AvgDailyAnalyses: 2,
		AvgMentionRate:   75,
		Platforms:        []models.Platform{models.PlatformChatGPT, models.PlatformClaude},
	}
	if diff := cmp.Diff(wantSummary, report.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestGetVisibilityTrendsPlatformFilter(t *testing.T) {
	f := newAggFixture(t)
	kw := uuid.New()

	f.addRow(kw, "crypto casino", models.PlatformChatGPT, time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC), true, models.SentimentPositive, 0.8, nil)
	f.addRow(kw, "crypto casino", models.PlatformClaude, time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC), false, models.SentimentNeutral, 0.6, nil)

	platform := models.PlatformClaude
	report, err := f.svc.GetVisibilityTrends(context.Background(), "Stake", 7, &platform)
	if err != nil {
		t.Fatalf("GetVisibilityTrends failed: %v", err)
	}

	if len(report.Trends) != 1 || report.Trends[0].TotalAnalyses != 1 {
		t.Fatalf("trends = %+v, want one Claude-only day", report.Trends)
	}
	if _, ok := report.Trends[0].Platforms[models.PlatformChatGPT]; ok {
		t.Error("ChatGPT rows should be filtered out")
	}
	if diff := cmp.Diff([]models.Platform{models.PlatformClaude}, report.Summary.Platforms); diff != "" {
		t.Errorf("summary platforms mismatch (-want +got):\n%s", diff)
	}
}

func TestGetVisibilityTrendsEmptyWindow(t *testing.T) {
	f := newAggFixture(t)

	report, err := f.svc.GetVisibilityTrends(context.Background(), "Stake", 7, nil)
	if err != nil {
		t.Fatalf("GetVisibilityTrends failed: %v", err)
	}
	if len(report.Trends) != 0 {
		t.Errorf("trends = %+v, want none", report.Trends)
	}
	if report.Summary.TotalDays != 0 || report.Summary.AvgDailyAnalyses != 0 || report.Summary.AvgMentionRate != 0 {
		t.Errorf("summary = %+v, want zeros", report.Summary)
	}
}

func TestGetCitationAnalysisDomains(t *testing.T) {
	f := newAggFixture(t)
	kw := uuid.New()

	f.addRow(kw, "crypto casino", models.PlatformPerplexity, f.now.Add(-time.Hour), true, models.SentimentPositive, 0.8, models.CitationList{
		{URL: "https://www.example.com/a", Position: 1, Title: "Citation 1"},
		{URL: "not a url", Position: 2, Title: "Citation 2"},
	})
	f.addRow(kw, "crypto casino", models.PlatformPerplexity, f.now.Add(-2*time.Hour), false, models.SentimentNeutral, 0.6, models.CitationList{
		{URL: "https://example.com/b", Position: 1, Title: "Citation 1"},
	})
	f.addRow(kw, "crypto casino", models.PlatformChatGPT, f.now.Add(-3*time.Hour), false, models.SentimentNeutral, 0.5, nil)

	report, err := f.svc.GetCitationAnalysis(context.Background(), "Stake", 30)
	if err != nil {
		t.Fatalf("GetCitationAnalysis failed: %v", err)
	}

	wantSummary := models.CitationSummary{
		TotalCitations:          3,
		UniqueDomains:           1,
		AnalysesWithCitations:   2,
		AvgCitationsPerAnalysis: 1.5,
	}
	if diff := cmp.Diff(wantSummary, report.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	wantDomains := []models.DomainCount{{Domain: "example.com", Count: 2}}
	if diff := cmp.Diff(wantDomains, report.TopDomains); diff != "" {
		t.Errorf("top domains mismatch (-want +got):\n%s", diff)
	}

	if len(report.RecentAnalyses) != 2 {
		t.Fatalf("recent analyses = %d, want 2", len(report.RecentAnalyses))
	}
	if report.RecentAnalyses[0].CitationCount != 2 {
		t.Errorf("newest entry citation count = %d, want 2", report.RecentAnalyses[0].CitationCount)
	}

	for _, ps := range report.PlatformBreakdown {
		switch ps.Platform {
		case models.PlatformPerplexity:
			if ps.TotalAnalyses != 2 || ps.WithCitations != 2 || ps.TotalCitations != 3 || ps.CitationRate != 100 {
				t.Errorf("perplexity stats = %+v", ps)
			}
		case models.PlatformChatGPT:
			if ps.TotalAnalyses != 1 || ps.WithCitations != 0 || ps.CitationRate != 0 {
				t.Errorf("chatgpt stats = %+v", ps)
			}
		default:
			if ps.TotalAnalyses != 0 {
				t.Errorf("%s stats = %+v, want zeros", ps.Platform, ps)
			}
		}
	}
}

func TestGetCitationAnalysisCapsPlatformStatsAtRecentHundred(t *testing.T) {
	f := newAggFixture(t)
	kw := uuid.New()

	// 101 cited rows, newest first; the oldest must fall off the cap.
	for i := 0; i < 101; i++ {
		f.addRow(kw, "crypto casino", models.PlatformChatGPT, f.now.Add(-time.Duration(i+1)*time.Minute), false, models.SentimentNeutral, 0.5, models.CitationList{
			{URL: "https://example.com/source", Position: 1, Title: "Citation 1"},
		})
	}

	report, err := f.svc.GetCitationAnalysis(context.Background(), "Stake", 30)
	if err != nil {
		t.Fatalf("GetCitationAnalysis failed: %v", err)
	}

	if report.Summary.AnalysesWithCitations != 100 {
		t.Errorf("analyses with citations = %d, want 100", report.Summary.AnalysesWithCitations)
	}
	if report.Summary.TotalCitations != 100 {
		t.Errorf("total citations = %d, want 100", report.Summary.TotalCitations)
	}

	for _, ps := range report.PlatformBreakdown {
		if ps.Platform != models.PlatformChatGPT {
			continue
		}
		// Denominator counts the whole window, numerators only the capped set.
		if ps.TotalAnalyses != 101 {
			t.Errorf("total analyses = %d, want 101", ps.TotalAnalyses)
		}
		if ps.WithCitations != 100 {
			t.Errorf("with citations = %d, want 100", ps.WithCitations)
		}
		if ps.TotalCitations != 100 {
			t.Errorf("platform total citations = %d, want 100", ps.TotalCitations)
		}
		if ps.CitationRate != 99 {
			t.Errorf("citation rate = %v, want 99", ps.CitationRate)
		}
	}
}

func TestGetCitationAnalysisEmptyWindow(t *testing.T) {
	f := newAggFixture(t)

	report, err := f.svc.GetCitationAnalysis(context.Background(), "Stake", 30)
	if err != nil {
		t.Fatalf("GetCitationAnalysis failed: %v", err)
	}
	if diff := cmp.Diff(models.CitationSummary{}, report.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if len(report.TopDomains) != 0 || len(report.RecentAnalyses) != 0 {
		t.Errorf("expected no domains or recent analyses, got %+v", report)
	}
}

func TestGetKeywordAnalytics(t *testing.T) {
	f := newAggFixture(t)

	kw := &models.Keyword{KeywordID: uuid.New(), ClientID: f.client.ClientID, Keyword: "crypto casino", Status: models.KeywordActive}
	f.keywords.keywords = []*models.Keyword{kw}

	f.addRow(kw.KeywordID, "crypto casino", models.PlatformChatGPT, f.now.Add(-time.Hour), true, models.SentimentPositive, 0.8, nil)
	f.addRow(kw.KeywordID, "crypto casino", models.PlatformClaude, f.now.Add(-2*time.Hour), false, models.SentimentNeutral, 0.6, nil)

	report, err := f.svc.GetKeywordAnalytics(context.Background(), kw.KeywordID, 30, nil, 0)
	if err != nil {
		t.Fatalf("GetKeywordAnalytics failed: %v", err)
	}

	wantStats := models.KeywordAnalyticsStats{
		TotalAnalyses:      2,
		BrandMentions:      1,
		AvgConfidenceScore: 0.7,
		SentimentBreakdown: map[models.BrandSentiment]int{
			models.SentimentVeryPositive: 0,
			models.SentimentPositive:     1,
			models.SentimentNeutral:      1,
			models.SentimentNegative:     0,
			models.SentimentVeryNegative: 0,
		},
		PlatformBreakdown: map[models.Platform]int{
			models.PlatformChatGPT: 1,
			models.PlatformClaude:  1,
		},
	}
	if diff := cmp.Diff(wantStats, report.Stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
	if len(report.Analytics) != 2 {
		t.Errorf("analytics = %d rows, want 2", len(report.Analytics))
	}
}

func TestGetKeywordAnalyticsUnknownKeyword(t *testing.T) {
	f := newAggFixture(t)

	_, err := f.svc.GetKeywordAnalytics(context.Background(), uuid.New(), 30, nil, 0)
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}
