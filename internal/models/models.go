// internal/models/models.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Platform identifies the AI answer engine that produced a response.
type Platform string

const (
	PlatformChatGPT    Platform = "ChatGPT"
	PlatformPerplexity Platform = "Perplexity"
	PlatformClaude     Platform = "Claude"
	PlatformGemini     Platform = "Gemini"
	PlatformGoogleAI   Platform = "Google AI"
)

// AllPlatforms lists every supported platform in canonical order.
var AllPlatforms = []Platform{
	PlatformChatGPT,
	PlatformPerplexity,
	PlatformClaude,
	PlatformGemini,
	PlatformGoogleAI,
}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	for _, known := range AllPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// BrandSentiment is the 5-point sentiment class toward the tracked brand.
type BrandSentiment string

const (
	SentimentVeryPositive BrandSentiment = "Very Positive"
	SentimentPositive     BrandSentiment = "Positive"
	SentimentNeutral      BrandSentiment = "Neutral"
	SentimentNegative     BrandSentiment = "Negative"
	SentimentVeryNegative BrandSentiment = "Very Negative"
)

// AllBrandSentiments lists the 5-point scale in display order.
var AllBrandSentiments = []BrandSentiment{
	SentimentVeryPositive,
	SentimentPositive,
	SentimentNeutral,
	SentimentNegative,
	SentimentVeryNegative,
}

// OverallSentiment is the 3-point sentiment class of the whole answer.
type OverallSentiment string

const (
	OverallPositive OverallSentiment = "Positive"
	OverallNeutral  OverallSentiment = "Neutral"
	OverallNegative OverallSentiment = "Negative"
)

// KeywordStatus is the lifecycle state of a tracked keyword.
type KeywordStatus string

const (
	KeywordActive   KeywordStatus = "active"
	KeywordPaused   KeywordStatus = "paused"
	KeywordArchived KeywordStatus = "archived"
)

// KeywordCategories is the fixed set of keyword categories.
var KeywordCategories = []string{
	"General",
	"Gambling",
	"Cryptocurrency",
	"Sports Betting",
	"Casino Games",
	"Promotions",
	"Banking",
	"Support",
}

// ValidCategory reports whether category is in the fixed set.
func ValidCategory(category string) bool {
	for _, c := range KeywordCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Client is the tenant boundary. A client owns zero or more keywords.
type Client struct {
	ClientID    uuid.UUID `db:"client_id" json:"client_id"`
	Name        string    `db:"name" json:"name"`
	Industry    string    `db:"industry" json:"industry"`
	Website     *string   `db:"website" json:"website,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Keyword is a tracked search phrase scoped to a client. The (keyword,
// client) pair is unique case-insensitively. Visibility fields are only
// written after a new analysis, never decremented on their own.
type Keyword struct {
	KeywordID    uuid.UUID     `db:"keyword_id" json:"keyword_id"`
	ClientID     uuid.UUID     `db:"client_id" json:"client_id"`
	Keyword      string        `db:"keyword" json:"keyword"`
	Category     string        `db:"category" json:"category"`
	SearchVolume int           `db:"search_volume" json:"search_volume"`
	Competition  string        `db:"competition" json:"competition"`
	CPC          float64       `db:"cpc" json:"cpc"`
	Difficulty   int           `db:"difficulty" json:"difficulty"`
	Status       KeywordStatus `db:"status" json:"status"`

	VisibilityChatGPT    int `db:"visibility_chatgpt" json:"visibility_chatgpt"`
	VisibilityPerplexity int `db:"visibility_perplexity" json:"visibility_perplexity"`
	VisibilityClaude     int `db:"visibility_claude" json:"visibility_claude"`
	VisibilityGemini     int `db:"visibility_gemini" json:"visibility_gemini"`

	LastAnalyzed *time.Time `db:"last_analyzed" json:"last_analyzed,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Visibility returns the stored visibility score for the given platform.
// Google AI shares the ChatGPT column, mirroring how analyses on that
// platform are routed.
func (k *Keyword) Visibility(p Platform) int {
	switch p {
	case PlatformPerplexity:
		return k.VisibilityPerplexity
	case PlatformClaude:
		return k.VisibilityClaude
	case PlatformGemini:
		return k.VisibilityGemini
	default:
		return k.VisibilityChatGPT
	}
}

// Citation is a URL extracted from an answer, in appearance order.
// Positions are 1-based. URLs are never dereferenced.
type Citation struct {
	URL      string `json:"url"`
	Position int    `json:"position"`
	Title    string `json:"title"`
}

// CitationList stores citations as a JSON column.
type CitationList []Citation

func (c CitationList) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal citations: %w", err)
	}
	return string(b), nil
}

func (c *CitationList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("unsupported citations type %T", src)
	}
}

// AnalysisMetadata is the free-form metadata stored with each analysis.
type AnalysisMetadata struct {
	KeyTopics []string  `json:"keyTopics"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
}

func (m AnalysisMetadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis metadata: %w", err)
	}
	return string(b), nil
}

func (m *AnalysisMetadata) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = AnalysisMetadata{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}
}

// Analytic is one observation: a single platform answer for a tracked
// keyword, with its classification signals. Created exactly once per
// analysis and immutable thereafter; deleted with its owning keyword.
type Analytic struct {
	AnalyticID       uuid.UUID        `db:"analytic_id" json:"analytic_id"`
	KeywordID        uuid.UUID        `db:"keyword_id" json:"keyword_id"`
	Platform         Platform         `db:"platform" json:"platform"`
	Query            string           `db:"query" json:"query"`
	Response         string           `db:"response" json:"response"`
	Citations        CitationList     `db:"citations" json:"citations"`
	BrandMentioned   bool             `db:"brand_mentioned" json:"brand_mentioned"`
	BrandSentiment   BrandSentiment   `db:"brand_sentiment" json:"brand_sentiment"`
	OverallSentiment OverallSentiment `db:"overall_sentiment" json:"overall_sentiment"`
	WordCount        int              `db:"word_count" json:"word_count"`
	ConfidenceScore  float64          `db:"confidence_score" json:"confidence_score"`
	ResponseTimeMS   int              `db:"response_time" json:"response_time"`
	Metadata         AnalysisMetadata `db:"analysis_metadata" json:"analysis_metadata"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
}

// AnalyticWithKeyword is an analytic row joined with its owning keyword,
// as returned by windowed scans for aggregation.
type AnalyticWithKeyword struct {
	Analytic
	KeywordText     string `db:"keyword_text" json:"keyword_text"`
	KeywordCategory string `db:"keyword_category" json:"keyword_category"`
}

// AggregationWindow bounds every aggregation to one client and a recent
// day range, with an optional platform filter. Not persisted.
type AggregationWindow struct {
	ClientID uuid.UUID
	Days     int
	Platform *Platform
}

// Since returns the lower bound of the window relative to now.
func (w AggregationWindow) Since(now time.Time) time.Time {
	return now.AddDate(0, 0, -w.Days)
}
