// handlers.go
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/brandsight/brandsight-workflows/internal/apperrors"
	"github.com/brandsight/brandsight-workflows/internal/config"
	"github.com/brandsight/brandsight-workflows/internal/models"
	"github.com/brandsight/brandsight-workflows/services"
)

// apiHandlers exposes the dashboard API: analytics reports plus keyword
// management. Analysis itself runs through Inngest, not these routes.
type apiHandlers struct {
	cfg         *config.Config
	aggregation services.AggregationService
	keywords    services.KeywordService
}

func newAPIHandlers(cfg *config.Config, aggregation services.AggregationService, keywords services.KeywordService) *apiHandlers {
	return &apiHandlers{
		cfg:         cfg,
		aggregation: aggregation,
		keywords:    keywords,
	}
}

func (h *apiHandlers) register(mux *http.ServeMux) {
	mux.HandleFunc("/api/analytics/overview", h.handleOverview)
	mux.HandleFunc("/api/analytics/trends", h.handleTrends)
	mux.HandleFunc("/api/analytics/citations", h.handleCitations)
	mux.HandleFunc("/api/analytics/keyword", h.handleKeywordAnalytics)
	mux.HandleFunc("/api/keywords", h.handleKeywords)
	mux.HandleFunc("/api/keywords/suggestions", h.handleSuggestions)
}

func (h *apiHandlers) handleOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	report, err := h.aggregation.GetOverview(r.Context(), h.clientParam(r), intParam(r, "days", 30))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func (h *apiHandlers) handleTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	report, err := h.aggregation.GetVisibilityTrends(r.Context(), h.clientParam(r), intParam(r, "days", 7), platformParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func (h *apiHandlers) handleCitations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	report, err := h.aggregation.GetCitationAnalysis(r.Context(), h.clientParam(r), intParam(r, "days", 30))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func (h *apiHandlers) handleKeywordAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	keywordID, err := uuid.Parse(r.URL.Query().Get("keyword_id"))
	if err != nil {
		writeError(w, apperrors.New(apperrors.KindInvalidInput, "invalid keyword_id"))
		return
	}
	report, err := h.aggregation.GetKeywordAnalytics(r.Context(), keywordID, intParam(r, "days", 30), platformParam(r), intParam(r, "limit", 50))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

type addKeywordsRequest struct {
	Client   string                  `json:"client"`
	Keyword  string                  `json:"keyword"`
	Category string                  `json:"category"`
	Keywords []services.KeywordInput `json:"keywords"`
}

func (h *apiHandlers) handleKeywords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req addKeywordsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperrors.New(apperrors.KindInvalidInput, "invalid request body"))
			return
		}
		clientName := req.Client
		if clientName == "" {
			clientName = h.cfg.DefaultClient
		}
		if len(req.Keywords) > 0 {
			result, err := h.keywords.AddKeywords(r.Context(), clientName, req.Keywords)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, result)
			return
		}
		kw, err := h.keywords.AddKeyword(r.Context(), clientName, req.Keyword, req.Category)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, kw)

	case http.MethodDelete:
		keywordID, err := uuid.Parse(r.URL.Query().Get("keyword_id"))
		if err != nil {
			writeError(w, apperrors.New(apperrors.KindInvalidInput, "invalid keyword_id"))
			return
		}
		deleted, err := h.keywords.DeleteKeyword(r.Context(), keywordID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]interface{}{"deletedAnalytics": deleted})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *apiHandlers) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	suggestions, err := h.keywords.GetKeywordSuggestions(
		r.Context(),
		h.clientParam(r),
		q.Get("seed"),
		intParam(r, "count", 10),
		q.Get("category"),
		q.Get("source"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"suggestions": suggestions})
}

func (h *apiHandlers) clientParam(r *http.Request) string {
	if client := r.URL.Query().Get("client"); client != "" {
		return client
	}
	return h.cfg.DefaultClient
}

func platformParam(r *http.Request) *models.Platform {
	if raw := r.URL.Query().Get("platform"); raw != "" {
		platform := models.Platform(raw)
		return &platform
	}
	return nil
}

func intParam(r *http.Request, name string, fallback int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.KindOf(err) {
	case apperrors.KindInvalidInput:
		status = http.StatusBadRequest
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindProvider:
		status = http.StatusBadGateway
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
