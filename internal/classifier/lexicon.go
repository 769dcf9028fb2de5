// internal/classifier/lexicon.go
package classifier

import (
	"fmt"
	"regexp"
	"strings"
)

// TopicVocabulary is one labeled list of topic substrings. Topics are
// emitted as "<Label>: <topic>" in list order.
type TopicVocabulary struct {
	Label  string
	Topics []string
}

// Lexicon holds every word list and pattern set the classifier scores
// against. It is immutable configuration data: swap the value, not the
// classification code.
type Lexicon struct {
	// BrandPatterns match brand-identifying text, word-boundary anchored.
	BrandPatterns []*regexp.Regexp

	// Brand sentiment word lists. Very-lists carry weight 2.
	VeryPositiveWords []string
	PositiveWords     []string
	NegativeWords     []string
	VeryNegativeWords []string

	// Overall sentiment word lists, unweighted.
	OverallPositiveWords []string
	OverallNegativeWords []string

	// Assertive and hedging phrase patterns. Every match counts, not just
	// presence.
	ConfidenceIndicators  []*regexp.Regexp
	UncertaintyIndicators []*regexp.Regexp

	TopicVocabularies []TopicVocabulary

	// CitationPattern matches URL-shaped substrings.
	CitationPattern *regexp.Regexp
}

// DefaultLexicon builds the standard lexicon for the given brand name.
// Brand patterns cover the bare name, name.com, "<name> casino" and
// "<name> platform".
func DefaultLexicon(brand string) *Lexicon {
	name := regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(brand)))

	return &Lexicon{
		BrandPatterns: []*regexp.Regexp{
			regexp.MustCompile(fmt.Sprintf(`(?i)\b%s\b`, name)),
			regexp.MustCompile(fmt.Sprintf(`(?i)\b%s\.com\b`, name)),
			regexp.MustCompile(fmt.Sprintf(`(?i)\b%s casino\b`, name)),
			regexp.MustCompile(fmt.Sprintf(`(?i)\b%s platform\b`, name)),
		},

		VeryPositiveWords: []string{"excellent", "outstanding", "amazing", "exceptional", "superior", "best"},
		PositiveWords:     []string{"good", "great", "solid", "reliable", "trusted", "popular", "recommended"},
		NegativeWords:     []string{"bad", "poor", "terrible", "awful", "unreliable", "risky"},
		VeryNegativeWords: []string{"scam", "fraud", "dangerous", "avoid", "illegal", "banned"},

		OverallPositiveWords: []string{"good", "great", "excellent", "amazing", "wonderful", "fantastic", "outstanding", "positive", "beneficial"},
		OverallNegativeWords: []string{"bad", "terrible", "awful", "horrible", "poor", "disappointing", "negative", "problematic", "concerning"},

		ConfidenceIndicators: compileAll(
			"definitely", "certainly", "clearly", "obviously",
			"according to", "research shows", "studies indicate",
			"data suggests", "evidence shows",
		),
		UncertaintyIndicators: compileAll(
			"maybe", "perhaps", "possibly", "might", "could",
			"seems", "appears", "allegedly", "reportedly",
		),

		TopicVocabularies: []TopicVocabulary{
			{Label: "Gambling", Topics: []string{"betting", "casino", "gambling", "poker", "slots", "sports betting"}},
			{Label: "Crypto", Topics: []string{"bitcoin", "cryptocurrency", "crypto", "blockchain", "digital currency"}},
		},

		CitationPattern: regexp.MustCompile(`(?i)https?://[^\s]+`),
	}
}

func compileAll(phrases ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(phrases))
	for _, phrase := range phrases {
		patterns = append(patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(phrase)))
	}
	return patterns
}
