// services/interfaces.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brandsight/brandsight-workflows/internal/models"
	"github.com/brandsight/brandsight-workflows/internal/repositories"
	"github.com/brandsight/brandsight-workflows/internal/repositories/postgresql"
)

// RepositoryManager manages all database repositories
type RepositoryManager struct {
	db            *sqlx.DB
	ClientRepo    repositories.ClientRepository
	KeywordRepo   repositories.KeywordRepository
	AnalyticsRepo repositories.AnalyticsRepository
}

// NewRepositoryManager creates a new repository manager with all repositories
func NewRepositoryManager(db *sqlx.DB) *RepositoryManager {
	return &RepositoryManager{
		db:            db,
		ClientRepo:    postgresql.NewClientRepo(db),
		KeywordRepo:   postgresql.NewKeywordRepo(db),
		AnalyticsRepo: postgresql.NewAnalyticsRepo(db),
	}
}

// BeginTx starts a database transaction
func (rm *RepositoryManager) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return rm.db.BeginTxx(ctx, nil)
}

// AIProvider interface for the answer-engine platforms
type AIProvider interface {
	AnalyzeQuery(ctx context.Context, keyword, query string, analysisContext map[string]interface{}) (*AIResponse, error)
	GetProviderName() string
}

// AIResponse contains the raw answer from an AI provider plus usage metadata
type AIResponse struct {
	Response     string
	Model        string
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// SuggestionProvider generates keyword suggestions from a seed keyword
type SuggestionProvider interface {
	GenerateKeywordSuggestions(ctx context.Context, seed string, count int, category string) ([]string, error)
}

// VisibilityScorer draws the post-hoc visibility score for one analysis.
// The draw is the only non-deterministic step in the pipeline, so it sits
// behind this interface and tests inject a fixed source.
type VisibilityScorer interface {
	Score(mentioned bool) int
}

// AnalysisResult is returned to callers after a single keyword analysis
type AnalysisResult struct {
	Keyword        string                 `json:"keyword"`
	Platform       models.Platform        `json:"platform"`
	Query          string                 `json:"query"`
	Response       string                 `json:"response"`
	ResponseTimeMS int                    `json:"responseTime"`
	Analytic       *models.Analytic       `json:"analytics"`
	Visibility     VisibilityUpdate       `json:"visibility"`
	Usage          map[string]interface{} `json:"usage,omitempty"`
}

// VisibilityUpdate reports the visibility score written for the
// (keyword, platform) pair by one analysis
type VisibilityUpdate struct {
	Platform models.Platform `json:"platform"`
	Score    int             `json:"score"`
}

// BulkKeywordResult summarizes a bulk keyword import
type BulkKeywordResult struct {
	Success      int               `json:"success"`
	Errors       int               `json:"errors"`
	Total        int               `json:"total"`
	Keywords     []*models.Keyword `json:"keywords"`
	ErrorDetails []string          `json:"errorDetails"`
}

// KeywordSEOData is the enrichment handed back by the SEO collaborator
type KeywordSEOData struct {
	Keyword          string  `json:"keyword"`
	SearchVolume     int     `json:"search_volume"`
	CPC              float64 `json:"cpc"`
	CompetitionLevel string  `json:"competition_level"`
	CompetitionIndex int     `json:"competition_index"`
}

// AnalysisService is the Analysis Record Builder: one provider call, one
// immutable analytics row, one visibility update.
type AnalysisService interface {
	AnalyzeKeyword(ctx context.Context, keywordID uuid.UUID, platform models.Platform, query string, analysisContext map[string]interface{}) (*AnalysisResult, error)
}

// AggregationService reduces in-window analytics into report payloads.
// Every operation tolerates an empty window.
type AggregationService interface {
	GetOverview(ctx context.Context, clientName string, days int) (*models.OverviewReport, error)
	GetVisibilityTrends(ctx context.Context, clientName string, days int, platform *models.Platform) (*models.TrendReport, error)
	GetCitationAnalysis(ctx context.Context, clientName string, days int) (*models.CitationReport, error)
	GetKeywordAnalytics(ctx context.Context, keywordID uuid.UUID, days int, platform *models.Platform, limit int) (*models.KeywordAnalyticsReport, error)
}

// KeywordService manages tracked keywords for a client
type KeywordService interface {
	AddKeyword(ctx context.Context, clientName, keyword, category string) (*models.Keyword, error)
	AddKeywords(ctx context.Context, clientName string, keywords []KeywordInput) (*BulkKeywordResult, error)
	DeleteKeyword(ctx context.Context, keywordID uuid.UUID) (int, error)
	GetKeywordSuggestions(ctx context.Context, clientName, seed string, count int, category, source string) ([]string, error)
}

// KeywordInput is one entry of a bulk keyword import
type KeywordInput struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

// SEOService is the SEO-data collaborator (search volume, CPC,
// competition). Consumed only by keyword-creation flows.
type SEOService interface {
	GetKeywordData(ctx context.Context, keyword string) ([]KeywordSEOData, error)
	GetKeywordSuggestions(ctx context.Context, seed string, limit int) ([]KeywordSEOData, error)
}

type CostService interface {
	CalculateCost(provider, model string, inputTokens, outputTokens int) float64
}

// ClientService resolves and bootstraps tenant clients
type ClientService interface {
	GetOrCreateClient(ctx context.Context, name string) (*models.Client, error)
	ListActiveClients(ctx context.Context) ([]*models.Client, error)
}

// windowSince is the shared lower-bound rule for day windows
func windowSince(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}
