package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/garage-labs/carscope/internal/analysis"
	"github.com/garage-labs/carscope/internal/batch"
	"github.com/garage-labs/carscope/internal/damage"
	"github.com/garage-labs/carscope/internal/gate"
	"github.com/garage-labs/carscope/internal/images"
	"github.com/garage-labs/carscope/internal/models"
	"github.com/garage-labs/carscope/internal/providers"
	"github.com/garage-labs/carscope/internal/ratelimit"
	"github.com/garage-labs/carscope/internal/report"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var provider string
	var model string
	var format string
	var output string
	var detectorURL string
	var rate float64
	var burst int
	var delay time.Duration
	var skipGate bool

	cmd := &cobra.Command{
		Use:   "analyze IMAGE...",
		Short: "Analyze one or more vehicle photos",
		Long: `Analyzes vehicle photos in strict order, one remote call at a time.

Each image is first run through the admission checks (vehicle presence,
then consistency against the first analyzed photo), then identified and
assessed for damage. A failure on one image never aborts the batch: the
failed image gets a placeholder result and the run continues.

Calls are paced with a token bucket (--rate/--burst) or, when --delay
is set, a fixed interval between calls.`,
		Example: `  # Analyze photos of one vehicle with the default provider
  carscope analyze front.jpg rear.jpg side.jpg

  # Pace calls to a hosted API and save a YAML report
  carscope analyze --provider gemini --rate 0.33 *.jpg --output report.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" {
				provider = providers.DefaultProvider()
			}

			service, err := analysis.NewService(provider, model)
			if err != nil {
				return err
			}

			var limiter ratelimit.Limiter
			if delay > 0 {
				limiter = ratelimit.NewFixedInterval(delay)
			} else {
				limiter = ratelimit.NewTokenBucket(burst, rate)
			}

			ctx := cmd.Context()
			fetcher := images.NewFetcher()
			admission := gate.New(service)
			driver := batch.NewDriver(service, limiter)

			var detector *damage.Client
			if detectorURL != "" {
				detector = damage.NewClient(detectorURL)
				if !detector.Healthy(ctx) {
					slog.Warn("External damage detector unreachable, continuing without it", "url", detectorURL)
					detector = nil
				}
			}

			run := report.NewRun(provider, service.Model(), detectorURL)
			session := &models.InspectionSession{ID: "cli"}

			// Images go through one at a time so the consistency check
			// can compare each photo against the ones already analyzed.
			for _, ref := range args {
				payload, err := fetcher.Fetch(ref)
				if err != nil {
					slog.Warn("Skipping unreadable image", "ref", ref, "error", err)
					run.Results = append(run.Results, report.ImageResult{
						Source: ref,
						Reason: fmt.Sprintf("Could not read image: %v", err),
					})
					continue
				}

				if !skipGate {
					decision := admission.Admit(ctx, payload, session)
					if !decision.Admitted {
						slog.Info("Image rejected by admission checks", "ref", ref, "reason", decision.Reason)
						run.Results = append(run.Results, report.ImageResult{
							Source: ref,
							Reason: decision.Reason,
						})
						continue
					}
				}

				result := driver.Run(ctx, []models.ImagePayload{payload})[0]
				if detector != nil {
					attachDetectorReport(ctx, detector, payload, result)
				}

				session.Images = append(session.Images, models.ImageItem{Source: payload.Source})
				session.Results = append(session.Results, result)
				run.Results = append(run.Results, report.ImageResult{
					Source:   ref,
					Admitted: true,
					Analysis: result,
				})
			}

			if output != "" {
				if err := run.Save(output); err != nil {
					return err
				}
				fmt.Printf("Report saved to: %s\n", output)
				return nil
			}

			data, err := run.Format(format)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider: ollama, openai, or gemini (default from CARSCOPE_PROVIDER)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (default per provider)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&detectorURL, "detector-url", "", "Base URL of an external damage-detection service (optional)")
	cmd.Flags().Float64Var(&rate, "rate", 1, "Sustained calls per second for the token bucket")
	cmd.Flags().IntVar(&burst, "burst", 1, "Burst size for the token bucket")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Fixed delay between calls (overrides the token bucket)")
	cmd.Flags().BoolVar(&skipGate, "skip-checks", false, "Skip the vehicle presence and consistency checks")

	return cmd
}

// attachDetectorReport merges the external detector's findings into
// the vision-model result.
func attachDetectorReport(ctx context.Context, detector *damage.Client, payload models.ImagePayload, result *models.VehicleAnalysis) {
	reportData, err := detector.Detect(ctx, payload.Source, payload.Data, 0.5)
	if err != nil {
		slog.Warn("External damage detector unavailable", "error", err)
		return
	}

	reportData.MergeInto(result)
}
