// internal/repositories/postgresql/analytics_repo.go
package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brandsight/brandsight-workflows/internal/models"
	"github.com/brandsight/brandsight-workflows/internal/repositories"
)

type analyticsRepo struct {
	db *sqlx.DB
}

func NewAnalyticsRepo(db *sqlx.DB) repositories.AnalyticsRepository {
	return &analyticsRepo{db: db}
}

const analyticWithKeywordColumns = `
	a.analytic_id, a.keyword_id, a.platform, a.query, a.response, a.citations,
	a.brand_mentioned, a.brand_sentiment, a.overall_sentiment,
	a.word_count, a.confidence_score, a.response_time, a.analysis_metadata, a.created_at,
	k.keyword AS keyword_text, k.category AS keyword_category`

func (r *analyticsRepo) Create(ctx context.Context, analytic *models.Analytic) error {
	if analytic.AnalyticID == uuid.Nil {
		analytic.AnalyticID = uuid.New()
	}
	if analytic.CreatedAt.IsZero() {
		analytic.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO analytics (
			analytic_id, keyword_id, platform, query, response, citations,
			brand_mentioned, brand_sentiment, overall_sentiment,
			word_count, confidence_score, response_time, analysis_metadata, created_at
		) VALUES (
			:analytic_id, :keyword_id, :platform, :query, :response, :citations,
			:brand_mentioned, :brand_sentiment, :overall_sentiment,
			:word_count, :confidence_score, :response_time, :analysis_metadata, :created_at
		)`, analytic)
	if err != nil {
		return fmt.Errorf("insert analytic: %w", err)
	}
	return nil
}

func (r *analyticsRepo) ListForClientSince(ctx context.Context, clientID uuid.UUID, since time.Time, platform *models.Platform) ([]*models.AnalyticWithKeyword, error) {
	query := `
		SELECT ` + analyticWithKeywordColumns + `
		FROM analytics a
		JOIN keywords k ON k.keyword_id = a.keyword_id
		WHERE k.client_id = $1 AND a.created_at >= $2`
	args := []interface{}{clientID, since}

	if platform != nil {
		query += ` AND a.platform = $3`
		args = append(args, *platform)
	}
	query += ` ORDER BY a.created_at DESC`

	var rows []*models.AnalyticWithKeyword
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list analytics for client %s: %w", clientID, err)
	}
	return rows, nil
}

func (r *analyticsRepo) ListForKeyword(ctx context.Context, keywordID uuid.UUID, since time.Time, platform *models.Platform, limit int) ([]*models.AnalyticWithKeyword, error) {
	query := `
		SELECT ` + analyticWithKeywordColumns + `
		FROM analytics a
		JOIN keywords k ON k.keyword_id = a.keyword_id
		WHERE a.keyword_id = $1 AND a.created_at >= $2`
	args := []interface{}{keywordID, since}

	if platform != nil {
		query += fmt.Sprintf(` AND a.platform = $%d`, len(args)+1)
		args = append(args, *platform)
	}
	query += ` ORDER BY a.created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	var rows []*models.AnalyticWithKeyword
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list analytics for keyword %s: %w", keywordID, err)
	}
	return rows, nil
}

func (r *analyticsRepo) CountForKeyword(ctx context.Context, keywordID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM analytics WHERE keyword_id = $1`, keywordID)
	if err != nil {
		return 0, fmt.Errorf("count analytics for keyword %s: %w", keywordID, err)
	}
	return count, nil
}
