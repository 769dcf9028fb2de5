// workflows/scheduled_processor.go
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/brandsight/brandsight-workflows/internal/models"
	"github.com/brandsight/brandsight-workflows/services"
)

type ScheduledProcessor struct {
	clientService services.ClientService
	repos         *services.RepositoryManager
	client        inngestgo.Client
}

func NewScheduledProcessor(clientService services.ClientService, repos *services.RepositoryManager) *ScheduledProcessor {
	return &ScheduledProcessor{
		clientService: clientService,
		repos:         repos,
	}
}

func (p *ScheduledProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// DailyKeywordProcessor fans out one keyword.analyze event per active
// keyword of every active client. Each send runs in its own idempotent
// step so a failed run only retries the sends that did not complete.
func (p *ScheduledProcessor) DailyKeywordProcessor() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "daily-keyword-processor",
			Name: "Daily Keyword Processor - Brand Visibility Sweep",
		},
		inngestgo.CronTrigger("0 6 * * *"), // Every day at 6 AM UTC
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {
			now := time.Now().UTC()

			activeClients, err := step.Run(ctx, "list-active-clients", func(ctx context.Context) ([]*models.Client, error) {
				return p.clientService.ListActiveClients(ctx)
			})
			if err != nil {
				return nil, fmt.Errorf("failed to list active clients: %w", err)
			}

			totalKeywords := 0
			for _, client := range activeClients {
				keywords, err := p.repos.KeywordRepo.ListActiveByClient(ctx, client.ClientID)
				if err != nil {
					fmt.Printf("Warning: failed to list keywords for client %s: %v\n", client.Name, err)
					continue
				}

				for _, kw := range keywords {
					stepName := fmt.Sprintf("trigger-analysis-%s", kw.KeywordID.String())
					keywordID := kw.KeywordID.String()
					query := fmt.Sprintf("What should I know about %s?", kw.Keyword)

					_, err := step.Run(ctx, stepName, func(ctx context.Context) (interface{}, error) {
						evt := inngestgo.Event{
							Name: "keyword.analyze",
							Data: map[string]interface{}{
								"keyword_id":   keywordID,
								"query":        query,
								"triggered_by": "daily_scheduler",
							},
						}
						return p.client.Send(ctx, evt)
					})
					if err != nil {
						fmt.Printf("Warning: failed to send event for keyword %s: %v\n", keywordID, err)
						continue
					}
					totalKeywords++
				}
			}

			return map[string]interface{}{
				"execution_date":  now.Format("2006-01-02"),
				"clients_found":   len(activeClients),
				"keywords_queued": totalKeywords,
				"message":         fmt.Sprintf("Queued %d keyword analyses across %d clients", totalKeywords, len(activeClients)),
			}, nil
		},
	)
	if err != nil {
		panic(fmt.Errorf("failed to create DailyKeywordProcessor function: %w", err))
	}
	return fn
}
