// services/aggregation_service.go
package services

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brandsight/brandsight-workflows/internal/apperrors"
	"github.com/brandsight/brandsight-workflows/internal/models"
)

const (
	maxTrendingKeywords   = 10
	maxTopDomains         = 10
	maxRecentCitations    = 20
	maxCitationAnalyses   = 100
	defaultAnalyticsLimit = 50
)

type aggregationService struct {
	repos *RepositoryManager
	now   func() time.Time
}

// NewAggregationService builds the report reducer. All reductions happen
// in memory over windowed scans, so the same row set feeds every section
// of a report.
func NewAggregationService(repos *RepositoryManager) AggregationService {
	return &aggregationService{
		repos: repos,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// GetOverview assembles the dashboard overview: keyword counts, visibility
// averages, sentiment distribution, per-platform stats and trending
// keywords for one client window.
func (s *aggregationService) GetOverview(ctx context.Context, clientName string, days int) (*models.OverviewReport, error) {
	if days <= 0 {
		return nil, apperrors.New(apperrors.KindInvalidInput, "days must be positive, got %d", days)
	}

	client, err := s.repos.ClientRepo.GetByName(ctx, clientName)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "client %q not found", clientName)
	}

	now := s.now()
	since := windowSince(now, days)

	totalKeywords, err := s.repos.KeywordRepo.CountByStatus(ctx, client.ClientID, models.KeywordActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count keywords: %w", err)
	}

	analyzedKeywords, err := s.repos.KeywordRepo.CountAnalyzedSince(ctx, client.ClientID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count analyzed keywords: %w", err)
	}

	keywords, err := s.repos.KeywordRepo.ListByClient(ctx, client.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}

	analytics, err := s.repos.AnalyticsRepo.ListForClientSince(ctx, client.ClientID, since, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list analytics: %w", err)
	}

	brandMentions := 0
	for _, a := range analytics {
		if a.BrandMentioned {
			brandMentions++
		}
	}

	mentionRate := 0.0
	if len(analytics) > 0 {
		mentionRate = round1(float64(brandMentions) / float64(len(analytics)) * 100)
	}

	chatgpt, perplexity, claude, gemini := visibilityMeans(keywords)
	visibility := models.PlatformVisibility{
		ChatGPT:    int(math.Round(chatgpt)),
		Perplexity: int(math.Round(perplexity)),
		Claude:     int(math.Round(claude)),
		Gemini:     int(math.Round(gemini)),
	}
	// Rounded once over the raw means, not over the per-platform integers.
	avgVisibilityScore := int(math.Round((chatgpt + perplexity + claude + gemini) / 4))

	return &models.OverviewReport{
		Overview: models.OverviewStats{
			TotalKeywords:      totalKeywords,
			AnalyzedKeywords:   analyzedKeywords,
			RecentAnalytics:    len(analytics),
			BrandMentions:      brandMentions,
			AvgVisibilityScore: avgVisibilityScore,
			MentionRate:        mentionRate,
		},
		Visibility:       visibility,
		Sentiment:        sentimentDistribution(analytics),
		Platforms:        platformBreakdown(analytics),
		TrendingKeywords: trendingKeywords(analytics),
		Period: models.Period{
			Days: days,
			From: since,
			To:   now,
		},
	}, nil
}

// GetVisibilityTrends buckets in-window analytics by UTC calendar date and
// platform. Dates are ascending; days with no analytics do not appear.
func (s *aggregationService) GetVisibilityTrends(ctx context.Context, clientName string, days int, platform *models.Platform) (*models.TrendReport, error) {
	if days <= 0 {
		return nil, apperrors.New(apperrors.KindInvalidInput, "days must be positive, got %d", days)
	}
	if platform != nil && !platform.Valid() {
		return nil, apperrors.New(apperrors.KindInvalidInput, "unsupported platform %q", *platform)
	}

	client, err := s.repos.ClientRepo.GetByName(ctx, clientName)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "client %q not found", clientName)
	}

	now := s.now()
	since := windowSince(now, days)

	analytics, err := s.repos.AnalyticsRepo.ListForClientSince(ctx, client.ClientID, since, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to list analytics: %w", err)
	}

	type dayPlatformAccum struct {
		analyses   int
		mentions   int
		confidence float64
	}

	buckets := map[string]map[models.Platform]*dayPlatformAccum{}
	seenPlatforms := []models.Platform{}
	seen := map[models.Platform]bool{}

	for _, a := range analytics {
		date := a.CreatedAt.UTC().Format("2006-01-02")
		if buckets[date] == nil {
			buckets[date] = map[models.Platform]*dayPlatformAccum{}
		}
		acc := buckets[date][a.Platform]
		if acc == nil {
			acc = &dayPlatformAccum{}
			buckets[date][a.Platform] = acc
		}
		acc.analyses++
		if a.BrandMentioned {
			acc.mentions++
		}
		acc.confidence += a.ConfidenceScore

		if !seen[a.Platform] {
			seen[a.Platform] = true
			seenPlatforms = append(seenPlatforms, a.Platform)
		}
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	trends := make([]models.DailyTrend, 0, len(dates))
	totalAnalyses := 0
	rateSum := 0.0

	for _, date := range dates {
		trend := models.DailyTrend{
			Date:      date,
			Platforms: map[models.Platform]models.PlatformDayStats{},
		}
		for p, acc := range buckets[date] {
			stats := models.PlatformDayStats{
				Analyses: acc.analyses,
				Mentions: acc.mentions,
			}
			if acc.analyses > 0 {
				stats.MentionRate = round1(float64(acc.mentions) / float64(acc.analyses) * 100)
				stats.AvgConfidence = round2(acc.confidence / float64(acc.analyses))
			}
			trend.Platforms[p] = stats
			trend.TotalAnalyses += acc.analyses
			trend.TotalMentions += acc.mentions
		}
		if trend.TotalAnalyses > 0 {
			trend.MentionRate = round1(float64(trend.TotalMentions) / float64(trend.TotalAnalyses) * 100)
		}
		totalAnalyses += trend.TotalAnalyses
		rateSum += trend.MentionRate
		trends = append(trends, trend)
	}

	summary := models.TrendSummary{
		TotalDays: len(trends),
		Platforms: seenPlatforms,
	}
	if platform != nil {
		summary.Platforms = []models.Platform{*platform}
	}
	if len(trends) > 0 {
		summary.AvgDailyAnalyses = int(math.Round(float64(totalAnalyses) / float64(len(trends))))
		summary.AvgMentionRate = round1(rateSum / float64(len(trends)))
	}

	return &models.TrendReport{Trends: trends, Summary: summary}, nil
}

// GetCitationAnalysis reports source-domain usage across the most recent
// analyses that carried at least one citation. Unparseable URLs count
// toward citation totals but never toward domain stats.
func (s *aggregationService) GetCitationAnalysis(ctx context.Context, clientName string, days int) (*models.CitationReport, error) {
	if days <= 0 {
		return nil, apperrors.New(apperrors.KindInvalidInput, "days must be positive, got %d", days)
	}

	client, err := s.repos.ClientRepo.GetByName(ctx, clientName)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "client %q not found", clientName)
	}

	now := s.now()
	since := windowSince(now, days)

	analytics, err := s.repos.AnalyticsRepo.ListForClientSince(ctx, client.ClientID, since, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list analytics: %w", err)
	}

	// Rows arrive newest first, so the cap keeps the most recent ones.
	withCitations := make([]*models.AnalyticWithKeyword, 0, maxCitationAnalyses)
	for _, a := range analytics {
		if len(a.Citations) == 0 {
			continue
		}
		withCitations = append(withCitations, a)
		if len(withCitations) == maxCitationAnalyses {
			break
		}
	}

	totalCitations := 0
	domainCounts := map[string]int{}
	domainOrder := []string{}

	for _, a := range withCitations {
		totalCitations += len(a.Citations)
		for _, c := range a.Citations {
			domain, ok := citationDomain(c.URL)
			if !ok {
				continue
			}
			if _, exists := domainCounts[domain]; !exists {
				domainOrder = append(domainOrder, domain)
			}
			domainCounts[domain]++
		}
	}

	topDomains := make([]models.DomainCount, 0, len(domainOrder))
	for _, domain := range domainOrder {
		topDomains = append(topDomains, models.DomainCount{Domain: domain, Count: domainCounts[domain]})
	}
	sort.SliceStable(topDomains, func(i, j int) bool {
		return topDomains[i].Count > topDomains[j].Count
	})
	if len(topDomains) > maxTopDomains {
		topDomains = topDomains[:maxTopDomains]
	}

	platformStats := citationPlatformBreakdown(analytics, withCitations)

	recent := withCitations
	if len(recent) > maxRecentCitations {
		recent = recent[:maxRecentCitations]
	}
	recentEntries := make([]models.CitationEntry, 0, len(recent))
	for _, a := range recent {
		recentEntries = append(recentEntries, models.CitationEntry{
			AnalyticID:     a.AnalyticID,
			Keyword:        a.KeywordText,
			Category:       a.KeywordCategory,
			Platform:       a.Platform,
			CitationCount:  len(a.Citations),
			BrandMentioned: a.BrandMentioned,
			CreatedAt:      a.CreatedAt,
		})
	}

	summary := models.CitationSummary{
		TotalCitations:        totalCitations,
		UniqueDomains:         len(domainCounts),
		AnalysesWithCitations: len(withCitations),
	}
	if len(withCitations) > 0 {
		summary.AvgCitationsPerAnalysis = round1(float64(totalCitations) / float64(len(withCitations)))
	}

	return &models.CitationReport{
		Summary:           summary,
		TopDomains:        topDomains,
		PlatformBreakdown: platformStats,
		RecentAnalyses:    recentEntries,
	}, nil
}

// GetKeywordAnalytics returns recent analyses for one keyword plus stats
// with a zero-filled sentiment breakdown.
func (s *aggregationService) GetKeywordAnalytics(ctx context.Context, keywordID uuid.UUID, days int, platform *models.Platform, limit int) (*models.KeywordAnalyticsReport, error) {
	if days <= 0 {
		return nil, apperrors.New(apperrors.KindInvalidInput, "days must be positive, got %d", days)
	}
	if platform != nil && !platform.Valid() {
		return nil, apperrors.New(apperrors.KindInvalidInput, "unsupported platform %q", *platform)
	}
	if limit <= 0 {
		limit = defaultAnalyticsLimit
	}

	keyword, err := s.repos.KeywordRepo.GetByID(ctx, keywordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword: %w", err)
	}
	if keyword == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "keyword %s not found", keywordID)
	}

	since := windowSince(s.now(), days)
	analytics, err := s.repos.AnalyticsRepo.ListForKeyword(ctx, keywordID, since, platform, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analytics: %w", err)
	}

	stats := models.KeywordAnalyticsStats{
		TotalAnalyses:      len(analytics),
		SentimentBreakdown: map[models.BrandSentiment]int{},
		PlatformBreakdown:  map[models.Platform]int{},
	}
	for _, sentiment := range models.AllBrandSentiments {
		stats.SentimentBreakdown[sentiment] = 0
	}

	confidenceSum := 0.0
	for _, a := range analytics {
		if a.BrandMentioned {
			stats.BrandMentions++
		}
		stats.SentimentBreakdown[a.BrandSentiment]++
		stats.PlatformBreakdown[a.Platform]++
		confidenceSum += a.ConfidenceScore
	}
	if len(analytics) > 0 {
		stats.AvgConfidenceScore = round2(confidenceSum / float64(len(analytics)))
	}

	return &models.KeywordAnalyticsReport{
		Analytics: analytics,
		Stats:     stats,
	}, nil
}

// visibilityMeans computes unrounded per-platform means over all client
// keywords. An empty keyword list yields zeros.
func visibilityMeans(keywords []*models.Keyword) (chatgpt, perplexity, claude, gemini float64) {
	if len(keywords) == 0 {
		return 0, 0, 0, 0
	}
	var sumChatGPT, sumPerplexity, sumClaude, sumGemini int
	for _, k := range keywords {
		sumChatGPT += k.VisibilityChatGPT
		sumPerplexity += k.VisibilityPerplexity
		sumClaude += k.VisibilityClaude
		sumGemini += k.VisibilityGemini
	}
	n := float64(len(keywords))
	return float64(sumChatGPT) / n, float64(sumPerplexity) / n, float64(sumClaude) / n, float64(sumGemini) / n
}

// sentimentDistribution counts in-window analyses per sentiment class.
// Classes with no analyses are omitted.
func sentimentDistribution(analytics []*models.AnalyticWithKeyword) map[models.BrandSentiment]int {
	dist := map[models.BrandSentiment]int{}
	for _, a := range analytics {
		dist[a.BrandSentiment]++
	}
	return dist
}

// platformBreakdown reports per-platform stats in canonical platform
// order, including platforms with no in-window analyses.
func platformBreakdown(analytics []*models.AnalyticWithKeyword) []models.PlatformStats {
	type accum struct {
		analyses   int
		mentions   int
		confidence float64
	}
	byPlatform := map[models.Platform]*accum{}
	for _, a := range analytics {
		acc := byPlatform[a.Platform]
		if acc == nil {
			acc = &accum{}
			byPlatform[a.Platform] = acc
		}
		acc.analyses++
		if a.BrandMentioned {
			acc.mentions++
		}
		acc.confidence += a.ConfidenceScore
	}

	stats := make([]models.PlatformStats, 0, len(models.AllPlatforms))
	for _, p := range models.AllPlatforms {
		ps := models.PlatformStats{Platform: p}
		if acc := byPlatform[p]; acc != nil {
			ps.TotalAnalyses = acc.analyses
			ps.Mentions = acc.mentions
			ps.MentionRate = round1(float64(acc.mentions) / float64(acc.analyses) * 100)
			ps.AvgConfidence = round2(acc.confidence / float64(acc.analyses))
		}
		stats = append(stats, ps)
	}
	return stats
}

// trendingKeywords ranks keywords by in-window analysis count, ties kept
// in discovery order, capped at ten.
func trendingKeywords(analytics []*models.AnalyticWithKeyword) []models.TrendingKeyword {
	byKeyword := map[uuid.UUID]*models.TrendingKeyword{}
	order := []uuid.UUID{}

	for _, a := range analytics {
		tk := byKeyword[a.KeywordID]
		if tk == nil {
			tk = &models.TrendingKeyword{
				KeywordID: a.KeywordID,
				Keyword:   a.KeywordText,
				Category:  a.KeywordCategory,
			}
			byKeyword[a.KeywordID] = tk
			order = append(order, a.KeywordID)
		}
		tk.AnalysisCount++
		if a.BrandMentioned {
			tk.MentionCount++
		}
	}

	trending := make([]models.TrendingKeyword, 0, len(order))
	for _, id := range order {
		tk := byKeyword[id]
		if tk.AnalysisCount > 0 {
			tk.MentionRate = round1(float64(tk.MentionCount) / float64(tk.AnalysisCount) * 100)
		}
		trending = append(trending, *tk)
	}

	sort.SliceStable(trending, func(i, j int) bool {
		return trending[i].AnalysisCount > trending[j].AnalysisCount
	})
	if len(trending) > maxTrendingKeywords {
		trending = trending[:maxTrendingKeywords]
	}
	return trending
}

// citationPlatformBreakdown measures citation usage per platform. The
// numerators come from the capped cited set while the denominator counts
// every in-window analysis for the platform.
func citationPlatformBreakdown(analytics, withCitations []*models.AnalyticWithKeyword) []models.PlatformCitationStats {
	type accum struct {
		analyses       int
		withCitations  int
		totalCitations int
	}
	byPlatform := map[models.Platform]*accum{}
	for _, a := range analytics {
		acc := byPlatform[a.Platform]
		if acc == nil {
			acc = &accum{}
			byPlatform[a.Platform] = acc
		}
		acc.analyses++
	}
	for _, a := range withCitations {
		acc := byPlatform[a.Platform]
		if acc == nil {
			acc = &accum{}
			byPlatform[a.Platform] = acc
		}
		acc.withCitations++
		acc.totalCitations += len(a.Citations)
	}

	stats := make([]models.PlatformCitationStats, 0, len(models.AllPlatforms))
	for _, p := range models.AllPlatforms {
		ps := models.PlatformCitationStats{Platform: p}
		if acc := byPlatform[p]; acc != nil {
			ps.TotalAnalyses = acc.analyses
			ps.WithCitations = acc.withCitations
			ps.TotalCitations = acc.totalCitations
			ps.CitationRate = round1(float64(acc.withCitations) / float64(acc.analyses) * 100)
		}
		stats = append(stats, ps)
	}
	return stats
}

// citationDomain extracts the registrable host from a citation URL with a
// leading "www." stripped. Returns false for URLs without a usable host.
func citationDomain(rawURL string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return "", false
	}
	return strings.TrimPrefix(parsed.Hostname(), "www."), true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
