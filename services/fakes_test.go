// services/fakes_test.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brandsight/brandsight-workflows/internal/models"
)

// In-memory repositories for service tests. Filtering mirrors the SQL
// predicates; ordering is whatever the test inserted, so tests insert
// newest first like the real scans return.

type fakeClientRepo struct {
	clients []*models.Client
	created int
}

func (r *fakeClientRepo) Create(ctx context.Context, client *models.Client) error {
	r.clients = append(r.clients, client)
	r.created++
	return nil
}

func (r *fakeClientRepo) GetByID(ctx context.Context, clientID uuid.UUID) (*models.Client, error) {
	for _, c := range r.clients {
		if c.ClientID == clientID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeClientRepo) GetByName(ctx context.Context, name string) (*models.Client, error) {
	for _, c := range r.clients {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeClientRepo) GetOrCreateByName(ctx context.Context, name, industry string) (*models.Client, bool, error) {
	if existing, _ := r.GetByName(ctx, name); existing != nil {
		return existing, false, nil
	}
	client := &models.Client{
		ClientID: uuid.New(),
		Name:     name,
		Industry: industry,
		Active:   true,
	}
	if err := r.Create(ctx, client); err != nil {
		return nil, false, err
	}
	return client, true, nil
}

func (r *fakeClientRepo) ListActive(ctx context.Context) ([]*models.Client, error) {
	active := []*models.Client{}
	for _, c := range r.clients {
		if c.Active {
			active = append(active, c)
		}
	}
	return active, nil
}

type visibilityCall struct {
	keywordID uuid.UUID
	platform  models.Platform
	score     int
}

type fakeKeywordRepo struct {
	keywords        []*models.Keyword
	visibilityCalls []visibilityCall
	deleted         []uuid.UUID
}

func (r *fakeKeywordRepo) Create(ctx context.Context, keyword *models.Keyword) error {
	r.keywords = append(r.keywords, keyword)
	return nil
}

func (r *fakeKeywordRepo) GetByID(ctx context.Context, keywordID uuid.UUID) (*models.Keyword, error) {
	for _, k := range r.keywords {
		if k.KeywordID == keywordID {
			return k, nil
		}
	}
	return nil, nil
}

func (r *fakeKeywordRepo) FindByText(ctx context.Context, clientID uuid.UUID, text string) (*models.Keyword, error) {
	for _, k := range r.keywords {
		if k.ClientID == clientID && strings.EqualFold(k.Keyword, text) {
			return k, nil
		}
	}
	return nil, nil
}

func (r *fakeKeywordRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Keyword, error) {
	out := []*models.Keyword{}
	for _, k := range r.keywords {
		if k.ClientID == clientID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (r *fakeKeywordRepo) ListActiveByClient(ctx context.Context, clientID uuid.UUID) ([]*models.Keyword, error) {
	out := []*models.Keyword{}
	for _, k := range r.keywords {
		if k.ClientID == clientID && k.Status == models.KeywordActive {
			out = append(out, k)
		}
	}
	return out, nil
}

func (r *fakeKeywordRepo) CountByStatus(ctx context.Context, clientID uuid.UUID, status models.KeywordStatus) (int, error) {
	count := 0
	for _, k := range r.keywords {
		if k.ClientID == clientID && k.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakeKeywordRepo) CountAnalyzedSince(ctx context.Context, clientID uuid.UUID, since time.Time) (int, error) {
	count := 0
	for _, k := range r.keywords {
		if k.ClientID == clientID && k.LastAnalyzed != nil && !k.LastAnalyzed.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeKeywordRepo) UpdateVisibility(ctx context.Context, keywordID uuid.UUID, platform models.Platform, score int, analyzedAt time.Time) error {
	r.visibilityCalls = append(r.visibilityCalls, visibilityCall{keywordID: keywordID, platform: platform, score: score})
	for _, k := range r.keywords {
		if k.KeywordID == keywordID {
			k.LastAnalyzed = &analyzedAt
		}
	}
	return nil
}

func (r *fakeKeywordRepo) Delete(ctx context.Context, keywordID uuid.UUID) error {
	r.deleted = append(r.deleted, keywordID)
	kept := r.keywords[:0]
	for _, k := range r.keywords {
		if k.KeywordID != keywordID {
			kept = append(kept, k)
		}
	}
	r.keywords = kept
	return nil
}

type fakeAnalyticsRepo struct {
	rows    []*models.AnalyticWithKeyword
	byOwner map[uuid.UUID]uuid.UUID // keyword -> client
	created []*models.Analytic
}

func newFakeAnalyticsRepo() *fakeAnalyticsRepo {
	return &fakeAnalyticsRepo{byOwner: map[uuid.UUID]uuid.UUID{}}
}

func (r *fakeAnalyticsRepo) add(clientID uuid.UUID, row *models.AnalyticWithKeyword) {
	r.byOwner[row.KeywordID] = clientID
	r.rows = append(r.rows, row)
}

func (r *fakeAnalyticsRepo) Create(ctx context.Context, analytic *models.Analytic) error {
	r.created = append(r.created, analytic)
	return nil
}

func (r *fakeAnalyticsRepo) ListForClientSince(ctx context.Context, clientID uuid.UUID, since time.Time, platform *models.Platform) ([]*models.AnalyticWithKeyword, error) {
	out := []*models.AnalyticWithKeyword{}
	for _, row := range r.rows {
		if r.byOwner[row.KeywordID] != clientID {
			continue
		}
		if row.CreatedAt.Before(since) {
			continue
		}
		if platform != nil && row.Platform != *platform {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *fakeAnalyticsRepo) ListForKeyword(ctx context.Context, keywordID uuid.UUID, since time.Time, platform *models.Platform, limit int) ([]*models.AnalyticWithKeyword, error) {
	out := []*models.AnalyticWithKeyword{}
	for _, row := range r.rows {
		if row.KeywordID != keywordID {
			continue
		}
		if row.CreatedAt.Before(since) {
			continue
		}
		if platform != nil && row.Platform != *platform {
			continue
		}
		out = append(out, row)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeAnalyticsRepo) CountForKeyword(ctx context.Context, keywordID uuid.UUID) (int, error) {
	count := 0
	for _, row := range r.rows {
		if row.KeywordID == keywordID {
			count++
		}
	}
	return count, nil
}

type fakeProvider struct {
	name     string
	response *AIResponse
	err      error
	lastCtx  map[string]interface{}
}

func (p *fakeProvider) AnalyzeQuery(ctx context.Context, keyword, query string, analysisContext map[string]interface{}) (*AIResponse, error) {
	p.lastCtx = analysisContext
	if p.err != nil {
		return nil, p.err
	}
	return p.response, nil
}

func (p *fakeProvider) GetProviderName() string {
	return p.name
}

// fixedScorer returns queued scores in order.
type fixedScorer struct {
	scores []int
	calls  []bool
}

func (s *fixedScorer) Score(mentioned bool) int {
	s.calls = append(s.calls, mentioned)
	score := s.scores[0]
	if len(s.scores) > 1 {
		s.scores = s.scores[1:]
	}
	return score
}

func testRepos(clients *fakeClientRepo, keywords *fakeKeywordRepo, analytics *fakeAnalyticsRepo) *RepositoryManager {
	return &RepositoryManager{
		ClientRepo:    clients,
		KeywordRepo:   keywords,
		AnalyticsRepo: analytics,
	}
}
