// internal/classifier/classifier.go

// Package classifier turns one raw AI answer into structured signals:
// brand mention, brand and overall sentiment, confidence score, topics
// and citations. All functions are pure and deterministic given the
// injected Lexicon.
package classifier

import (
	"fmt"
	"strings"

	"github.com/brandsight/brandsight-workflows/internal/models"
)

type Classifier struct {
	lex *Lexicon
}

func New(lex *Lexicon) *Classifier {
	return &Classifier{lex: lex}
}

// Result bundles every signal extracted from a single answer.
type Result struct {
	BrandMentioned   bool
	BrandSentiment   models.BrandSentiment
	OverallSentiment models.OverallSentiment
	ConfidenceScore  float64
	KeyTopics        []string
	Citations        []models.Citation
	WordCount        int
}

// Analyze runs the full classification pipeline over one answer.
func (c *Classifier) Analyze(text string) *Result {
	return &Result{
		BrandMentioned:   c.DetectMention(text),
		BrandSentiment:   c.ClassifyBrandSentiment(text),
		OverallSentiment: c.ClassifyOverallSentiment(text),
		ConfidenceScore:  c.ConfidenceScore(text),
		KeyTopics:        c.ExtractTopics(text),
		Citations:        c.ExtractCitations(text),
		WordCount:        len(strings.Fields(text)),
	}
}

// DetectMention reports whether any brand pattern matches the text.
func (c *Classifier) DetectMention(text string) bool {
	for _, pattern := range c.lex.BrandPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// ClassifyBrandSentiment scores the text against the four brand word
// lists. Each distinct list entry found counts once; very-lists carry
// weight 2. Neutral whenever the brand is not mentioned at all.
//
// The decision order matters on ties: a nonzero very-negative weight
// yields Very Negative only when the positive score does not exceed the
// negative score.
func (c *Classifier) ClassifyBrandSentiment(text string) models.BrandSentiment {
	if !c.DetectMention(text) {
		return models.SentimentNeutral
	}

	lower := strings.ToLower(text)

	veryPositive := countDistinct(lower, c.lex.VeryPositiveWords) * 2
	positive := countDistinct(lower, c.lex.PositiveWords)
	negative := countDistinct(lower, c.lex.NegativeWords)
	veryNegative := countDistinct(lower, c.lex.VeryNegativeWords) * 2

	totalPositive := veryPositive + positive
	totalNegative := negative + veryNegative

	switch {
	case veryPositive > 0 && totalPositive > totalNegative:
		return models.SentimentVeryPositive
	case totalPositive > totalNegative:
		return models.SentimentPositive
	case totalNegative > totalPositive:
		return models.SentimentNegative
	case veryNegative > 0:
		return models.SentimentVeryNegative
	default:
		return models.SentimentNeutral
	}
}

// ClassifyOverallSentiment compares unweighted counts from the overall
// word lists. Ties are Neutral.
func (c *Classifier) ClassifyOverallSentiment(text string) models.OverallSentiment {
	lower := strings.ToLower(text)

	positive := countDistinct(lower, c.lex.OverallPositiveWords)
	negative := countDistinct(lower, c.lex.OverallNegativeWords)

	switch {
	case positive > negative:
		return models.OverallPositive
	case negative > positive:
		return models.OverallNegative
	default:
		return models.OverallNeutral
	}
}

// ConfidenceScore measures assertiveness: base 0.5, +0.1 per confidence
// indicator occurrence, -0.05 per uncertainty indicator occurrence,
// clamped to [0,1]. Every occurrence counts, not just presence.
func (c *Classifier) ConfidenceScore(text string) float64 {
	score := 0.5
	for _, pattern := range c.lex.ConfidenceIndicators {
		score += float64(len(pattern.FindAllStringIndex(text, -1))) * 0.1
	}

	penalty := 0.0
	for _, pattern := range c.lex.UncertaintyIndicators {
		penalty += float64(len(pattern.FindAllStringIndex(text, -1))) * 0.05
	}

	score -= penalty
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// ExtractTopics emits "<Vocabulary>: <topic>" for every vocabulary entry
// the text contains, in vocabulary-then-list order. Each entry is tested
// once, so duplicates cannot occur.
func (c *Classifier) ExtractTopics(text string) []string {
	lower := strings.ToLower(text)

	var topics []string
	for _, vocab := range c.lex.TopicVocabularies {
		for _, topic := range vocab.Topics {
			if strings.Contains(lower, topic) {
				topics = append(topics, fmt.Sprintf("%s: %s", vocab.Label, topic))
			}
		}
	}
	return topics
}

// ExtractCitations scans for URL-shaped substrings in appearance order.
// Positions are 1-based; titles are synthetic placeholders. URLs are not
// validated against anything live.
func (c *Classifier) ExtractCitations(text string) []models.Citation {
	urls := c.lex.CitationPattern.FindAllString(text, -1)

	citations := make([]models.Citation, 0, len(urls))
	for i, u := range urls {
		citations = append(citations, models.Citation{
			URL:      u,
			Position: i + 1,
			Title:    fmt.Sprintf("Citation %d", i+1),
		})
	}
	return citations
}

// countDistinct counts how many list entries appear in the lowercased
// text. Repetition of one entry in the text still counts once.
func countDistinct(lower string, words []string) int {
	count := 0
	for _, word := range words {
		if strings.Contains(lower, word) {
			count++
		}
	}
	return count
}
