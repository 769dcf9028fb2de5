// internal/repositories/interfaces.go

// Package repositories defines the persistence contracts consumed by the
// services layer. Implementations live in the postgresql subpackage.
package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brandsight/brandsight-workflows/internal/models"
)

type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, clientID uuid.UUID) (*models.Client, error)
	GetByName(ctx context.Context, name string) (*models.Client, error)
	// GetOrCreateByName returns the existing client or creates it with the
	// given defaults. The second return value reports creation.
	GetOrCreateByName(ctx context.Context, name, industry string) (*models.Client, bool, error)
	ListActive(ctx context.Context) ([]*models.Client, error)
}

type KeywordRepository interface {
	Create(ctx context.Context, keyword *models.Keyword) error
	GetByID(ctx context.Context, keywordID uuid.UUID) (*models.Keyword, error)
	// FindByText matches case-insensitively within one client.
	FindByText(ctx context.Context, clientID uuid.UUID, text string) (*models.Keyword, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Keyword, error)
	ListActiveByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Keyword, error)
	CountByStatus(ctx context.Context, clientID uuid.UUID, status models.KeywordStatus) (int, error)
	CountAnalyzedSince(ctx context.Context, clientID uuid.UUID, since time.Time) (int, error)
	// UpdateVisibility writes the per-platform visibility score and the
	// last-analyzed timestamp. Last writer wins on concurrent analyses.
	UpdateVisibility(ctx context.Context, keywordID uuid.UUID, platform models.Platform, score int, analyzedAt time.Time) error
	// Delete removes the keyword and cascades to its analytics rows.
	Delete(ctx context.Context, keywordID uuid.UUID) error
}

type AnalyticsRepository interface {
	// Create inserts one immutable analysis record in a single statement.
	Create(ctx context.Context, analytic *models.Analytic) error
	// ListForClientSince returns analytics joined with their keyword for
	// all keywords of the client, bounded by created_at >= since, newest
	// first. A nil platform means no platform filter.
	ListForClientSince(ctx context.Context, clientID uuid.UUID, since time.Time, platform *models.Platform) ([]*models.AnalyticWithKeyword, error)
	ListForKeyword(ctx context.Context, keywordID uuid.UUID, since time.Time, platform *models.Platform, limit int) ([]*models.AnalyticWithKeyword, error)
	CountForKeyword(ctx context.Context, keywordID uuid.UUID) (int, error)
}
