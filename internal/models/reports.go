// internal/models/reports.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Report payloads returned by the aggregation service. Shapes mirror the
// dashboard API: camelCase keys, one-decimal rates, two-decimal confidence.

type OverviewReport struct {
	Overview         OverviewStats          `json:"overview"`
	Visibility       PlatformVisibility     `json:"visibility"`
	Sentiment        map[BrandSentiment]int `json:"sentiment"`
	Platforms        []PlatformStats        `json:"platforms"`
	TrendingKeywords []TrendingKeyword      `json:"trendingKeywords"`
	Period           Period                 `json:"period"`
}

type OverviewStats struct {
	TotalKeywords      int     `json:"totalKeywords"`
	AnalyzedKeywords   int     `json:"analyzedKeywords"`
	RecentAnalytics    int     `json:"recentAnalytics"`
	BrandMentions      int     `json:"brandMentions"`
	AvgVisibilityScore int     `json:"avgVisibilityScore"`
	MentionRate        float64 `json:"mentionRate"`
}

type PlatformVisibility struct {
	ChatGPT    int `json:"chatgpt"`
	Perplexity int `json:"perplexity"`
	Claude     int `json:"claude"`
	Gemini     int `json:"gemini"`
}

type PlatformStats struct {
	Platform      Platform `json:"platform"`
	TotalAnalyses int      `json:"totalAnalyses"`
	Mentions      int      `json:"mentions"`
	MentionRate   float64  `json:"mentionRate"`
	AvgConfidence float64  `json:"avgConfidence"`
}

type TrendingKeyword struct {
	KeywordID     uuid.UUID `json:"id"`
	Keyword       string    `json:"keyword"`
	Category      string    `json:"category"`
	AnalysisCount int       `json:"analysisCount"`
	MentionCount  int       `json:"mentionCount"`
	MentionRate   float64   `json:"mentionRate"`
}

type Period struct {
	Days int       `json:"days"`
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type TrendReport struct {
	Trends  []DailyTrend `json:"trends"`
	Summary TrendSummary `json:"summary"`
}

// DailyTrend is one calendar-date bucket. TotalAnalyses and TotalMentions
// sum across platforms; Platforms keeps the per-platform breakdown.
type DailyTrend struct {
	Date          string                        `json:"date"`
	TotalAnalyses int                           `json:"totalAnalyses"`
	TotalMentions int                           `json:"totalMentions"`
	MentionRate   float64                       `json:"mentionRate"`
	Platforms     map[Platform]PlatformDayStats `json:"platforms"`
}

type PlatformDayStats struct {
	Analyses      int     `json:"analyses"`
	Mentions      int     `json:"mentions"`
	MentionRate   float64 `json:"mentionRate"`
	AvgConfidence float64 `json:"avgConfidence"`
}

type TrendSummary struct {
	TotalDays        int        `json:"totalDays"`
	AvgDailyAnalyses int        `json:"avgDailyAnalyses"`
	AvgMentionRate   float64    `json:"avgMentionRate"`
	Platforms        []Platform `json:"platforms"`
}

type CitationReport struct {
	Summary           CitationSummary         `json:"summary"`
	TopDomains        []DomainCount           `json:"topDomains"`
	PlatformBreakdown []PlatformCitationStats `json:"platformBreakdown"`
	RecentAnalyses    []CitationEntry         `json:"recentAnalyses"`
}

type CitationSummary struct {
	TotalCitations          int     `json:"totalCitations"`
	UniqueDomains           int     `json:"uniqueDomains"`
	AnalysesWithCitations   int     `json:"analysesWithCitations"`
	AvgCitationsPerAnalysis float64 `json:"avgCitationsPerAnalysis"`
}

type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

type PlatformCitationStats struct {
	Platform       Platform `json:"platform"`
	TotalAnalyses  int      `json:"totalAnalyses"`
	WithCitations  int      `json:"withCitations"`
	TotalCitations int      `json:"totalCitations"`
	CitationRate   float64  `json:"citationRate"`
}

type CitationEntry struct {
	AnalyticID     uuid.UUID `json:"id"`
	Keyword        string    `json:"keyword"`
	Category       string    `json:"category"`
	Platform       Platform  `json:"platform"`
	CitationCount  int       `json:"citationCount"`
	BrandMentioned bool      `json:"brandMentioned"`
	CreatedAt      time.Time `json:"createdAt"`
}

type KeywordAnalyticsReport struct {
	Analytics []*AnalyticWithKeyword `json:"analytics"`
	Stats     KeywordAnalyticsStats  `json:"stats"`
}

// KeywordAnalyticsStats zero-fills the sentiment breakdown so dashboards
// always see all five classes for a single keyword.
type KeywordAnalyticsStats struct {
	TotalAnalyses      int                    `json:"totalAnalyses"`
	BrandMentions      int                    `json:"brandMentions"`
	AvgConfidenceScore float64                `json:"avgConfidenceScore"`
	SentimentBreakdown map[BrandSentiment]int `json:"sentimentBreakdown"`
	PlatformBreakdown  map[Platform]int       `json:"platformBreakdown"`
}
