// services/seo_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/brandsight/brandsight-workflows/internal/config"
)

type seoService struct {
	login      string
	password   string
	baseURL    string
	httpClient *http.Client
}

// NewSEOService creates the DataForSEO collaborator used by
// keyword-creation flows for search volume and competition enrichment.
func NewSEOService(cfg *config.Config) SEOService {
	return &seoService{
		login:    cfg.DataForSEOLogin,
		password: cfg.DataForSEOPassword,
		baseURL:  "https://api.dataforseo.com/v3",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type dataForSEORequest struct {
	Keyword      string `json:"keyword"`
	LocationCode int    `json:"location_code"`
	LanguageCode string `json:"language_code"`
	Limit        int    `json:"limit"`
}

type dataForSEOResponse struct {
	Tasks []struct {
		Result []struct {
			Keyword          string  `json:"keyword"`
			SearchVolume     int     `json:"search_volume"`
			CPC              float64 `json:"cpc"`
			CompetitionLevel string  `json:"competition_level"`
			CompetitionIndex int     `json:"competition_index"`
		} `json:"result"`
	} `json:"tasks"`
}

func (s *seoService) GetKeywordData(ctx context.Context, keyword string) ([]KeywordSEOData, error) {
	return s.fetchSuggestions(ctx, keyword, 100)
}

func (s *seoService) GetKeywordSuggestions(ctx context.Context, seed string, limit int) ([]KeywordSEOData, error) {
	return s.fetchSuggestions(ctx, seed, limit)
}

func (s *seoService) fetchSuggestions(ctx context.Context, keyword string, limit int) ([]KeywordSEOData, error) {
	// DataForSEO expects an array of task payloads; location 2840 is the US.
	requestData := []dataForSEORequest{{
		Keyword:      keyword,
		LocationCode: 2840,
		LanguageCode: "en",
		Limit:        limit,
	}}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		s.baseURL+"/dataforseo_labs/google/keyword_suggestions/live", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.login, s.password)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataforseo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataforseo API returned status %d", resp.StatusCode)
	}

	var parsed dataForSEOResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode dataforseo response: %w", err)
	}

	if len(parsed.Tasks) == 0 {
		return nil, nil
	}

	results := make([]KeywordSEOData, 0, len(parsed.Tasks[0].Result))
	for _, item := range parsed.Tasks[0].Result {
		results = append(results, KeywordSEOData{
			Keyword:          item.Keyword,
			SearchVolume:     item.SearchVolume,
			CPC:              item.CPC,
			CompetitionLevel: item.CompetitionLevel,
			CompetitionIndex: item.CompetitionIndex,
		})
	}
	return results, nil
}
