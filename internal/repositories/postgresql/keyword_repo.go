// internal/repositories/postgresql/keyword_repo.go
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brandsight/brandsight-workflows/internal/models"
	"github.com/brandsight/brandsight-workflows/internal/repositories"
)

type keywordRepo struct {
	db *sqlx.DB
}

func NewKeywordRepo(db *sqlx.DB) repositories.KeywordRepository {
	return &keywordRepo{db: db}
}

// visibilityColumn maps a platform to its keyword column. Google AI
// analyses land on the ChatGPT column.
func visibilityColumn(platform models.Platform) string {
	switch platform {
	case models.PlatformPerplexity:
		return "visibility_perplexity"
	case models.PlatformClaude:
		return "visibility_claude"
	case models.PlatformGemini:
		return "visibility_gemini"
	default:
		return "visibility_chatgpt"
	}
}

func (r *keywordRepo) Create(ctx context.Context, keyword *models.Keyword) error {
	if keyword.KeywordID == uuid.Nil {
		keyword.KeywordID = uuid.New()
	}
	now := time.Now().UTC()
	keyword.CreatedAt = now
	keyword.UpdatedAt = now
	if keyword.Status == "" {
		keyword.Status = models.KeywordActive
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO keywords (
			keyword_id, client_id, keyword, category,
			search_volume, competition, cpc, difficulty, status,
			visibility_chatgpt, visibility_perplexity, visibility_claude, visibility_gemini,
			last_analyzed, created_at, updated_at
		) VALUES (
			:keyword_id, :client_id, :keyword, :category,
			:search_volume, :competition, :cpc, :difficulty, :status,
			:visibility_chatgpt, :visibility_perplexity, :visibility_claude, :visibility_gemini,
			:last_analyzed, :created_at, :updated_at
		)`, keyword)
	if err != nil {
		return fmt.Errorf("insert keyword: %w", err)
	}
	return nil
}

func (r *keywordRepo) GetByID(ctx context.Context, keywordID uuid.UUID) (*models.Keyword, error) {
	var keyword models.Keyword
	err := r.db.GetContext(ctx, &keyword,
		`SELECT * FROM keywords WHERE keyword_id = $1`, keywordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get keyword %s: %w", keywordID, err)
	}
	return &keyword, nil
}

func (r *keywordRepo) FindByText(ctx context.Context, clientID uuid.UUID, text string) (*models.Keyword, error) {
	var keyword models.Keyword
	err := r.db.GetContext(ctx, &keyword,
		`SELECT * FROM keywords WHERE client_id = $1 AND LOWER(keyword) = LOWER($2)`,
		clientID, text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find keyword %q: %w", text, err)
	}
	return &keyword, nil
}

func (r *keywordRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Keyword, error) {
	var keywords []*models.Keyword
	err := r.db.SelectContext(ctx, &keywords,
		`SELECT * FROM keywords WHERE client_id = $1 ORDER BY created_at`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list keywords for client %s: %w", clientID, err)
	}
	return keywords, nil
}

func (r *keywordRepo) ListActiveByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Keyword, error) {
	var keywords []*models.Keyword
	err := r.db.SelectContext(ctx, &keywords,
		`SELECT * FROM keywords WHERE client_id = $1 AND status = 'active' ORDER BY created_at`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list active keywords for client %s: %w", clientID, err)
	}
	return keywords, nil
}

func (r *keywordRepo) CountByStatus(ctx context.Context, clientID uuid.UUID, status models.KeywordStatus) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM keywords WHERE client_id = $1 AND status = $2`, clientID, status)
	if err != nil {
		return 0, fmt.Errorf("count keywords: %w", err)
	}
	return count, nil
}

func (r *keywordRepo) CountAnalyzedSince(ctx context.Context, clientID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM keywords WHERE client_id = $1 AND last_analyzed >= $2`, clientID, since)
	if err != nil {
		return 0, fmt.Errorf("count analyzed keywords: %w", err)
	}
	return count, nil
}

func (r *keywordRepo) UpdateVisibility(ctx context.Context, keywordID uuid.UUID, platform models.Platform, score int, analyzedAt time.Time) error {
	column := visibilityColumn(platform)

	query := fmt.Sprintf(
		`UPDATE keywords SET %s = $1, last_analyzed = $2, updated_at = $2 WHERE keyword_id = $3`,
		column)
	result, err := r.db.ExecContext(ctx, query, score, analyzedAt, keywordID)
	if err != nil {
		return fmt.Errorf("update visibility for keyword %s: %w", keywordID, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("keyword %s not found", keywordID)
	}
	return nil
}

func (r *keywordRepo) Delete(ctx context.Context, keywordID uuid.UUID) error {
	// analytics rows go with it via ON DELETE CASCADE
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM keywords WHERE keyword_id = $1`, keywordID)
	if err != nil {
		return fmt.Errorf("delete keyword %s: %w", keywordID, err)
	}
	return nil
}
