// workflows/analysis_processor.go
package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/brandsight/brandsight-workflows/internal/models"
	"github.com/brandsight/brandsight-workflows/services"
)

type AnalysisProcessor struct {
	analysisService services.AnalysisService
	client          inngestgo.Client
}

func NewAnalysisProcessor(analysisService services.AnalysisService) *AnalysisProcessor {
	return &AnalysisProcessor{
		analysisService: analysisService,
	}
}

func (p *AnalysisProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// AnalyzeKeyword runs one tracked keyword across answer-engine platforms.
// An empty platform in the event fans out to every supported platform,
// each in its own idempotent step so retries skip completed platforms.
func (p *AnalysisProcessor) AnalyzeKeyword() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "analyze-keyword",
			Name:    "Analyze Keyword - Answer Engine Brand Visibility",
			Retries: inngestgo.IntPtr(3),
		},
		inngestgo.EventTrigger("keyword.analyze", nil),
		func(ctx context.Context, input inngestgo.Input[KeywordAnalyzeEvent]) (any, error) {
			keywordID, err := uuid.Parse(input.Event.Data.KeywordID)
			if err != nil {
				return nil, fmt.Errorf("invalid keyword ID %q: %w", input.Event.Data.KeywordID, err)
			}

			platforms := models.AllPlatforms
			if input.Event.Data.Platform != "" {
				platform := models.Platform(input.Event.Data.Platform)
				if !platform.Valid() {
					return nil, fmt.Errorf("unsupported platform %q", input.Event.Data.Platform)
				}
				platforms = []models.Platform{platform}
			}

			fmt.Printf("[AnalyzeKeyword] Starting analysis for keyword %s across %d platforms\n", keywordID, len(platforms))

			analysisContext := map[string]interface{}{
				"triggered_by": input.Event.Data.TriggeredBy,
			}

			completed := 0
			failed := []string{}
			for _, platform := range platforms {
				stepName := fmt.Sprintf("analyze-%s", platformSlug(platform))

				_, err := step.Run(ctx, stepName, func(ctx context.Context) (*services.AnalysisResult, error) {
					return p.analysisService.AnalyzeKeyword(ctx, keywordID, platform, input.Event.Data.Query, analysisContext)
				})
				if err != nil {
					// Keep going so one flaky platform never blocks the rest.
					fmt.Printf("Warning: %s analysis failed for keyword %s: %v\n", platform, keywordID, err)
					failed = append(failed, string(platform))
					continue
				}
				completed++
			}

			return map[string]interface{}{
				"keyword_id":       keywordID.String(),
				"status":           "completed",
				"platforms_run":    completed,
				"platforms_failed": failed,
				"completed_at":     time.Now().UTC(),
			}, nil
		},
	)
	if err != nil {
		panic(fmt.Errorf("failed to create AnalyzeKeyword function: %w", err))
	}
	return fn
}

func platformSlug(platform models.Platform) string {
	return strings.ToLower(strings.ReplaceAll(string(platform), " ", "-"))
}

// KeywordAnalyzeEvent triggers analysis of one keyword. Platform is
// optional; empty means all platforms.
type KeywordAnalyzeEvent struct {
	KeywordID   string `json:"keyword_id"`
	Platform    string `json:"platform,omitempty"`
	Query       string `json:"query"`
	TriggeredBy string `json:"triggered_by"`
}
