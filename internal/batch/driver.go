package batch

import (
	"context"
	"log/slog"

	"github.com/garage-labs/carscope/internal/analysis"
	"github.com/garage-labs/carscope/internal/models"
	"github.com/garage-labs/carscope/internal/ratelimit"
)

// Driver analyzes a list of images in strict order, one in-flight
// request at a time, consulting the limiter between calls so the
// remote service's request-rate ceiling is respected. A failure on one
// image is recorded as a placeholder and the loop continues; there is
// no retry.
type Driver struct {
	service *analysis.Service
	limiter ratelimit.Limiter
}

// NewDriver creates a Driver. A nil limiter means no pacing.
func NewDriver(service *analysis.Service, limiter ratelimit.Limiter) *Driver {
	if limiter == nil {
		limiter = ratelimit.None{}
	}
	return &Driver{service: service, limiter: limiter}
}

// Run analyzes every image and returns one result per input, in input
// order. The returned slice always has len(images) entries; entries
// for failed analyses are placeholders, never nil.
func (d *Driver) Run(ctx context.Context, images []models.ImagePayload) []*models.VehicleAnalysis {
	results := make([]*models.VehicleAnalysis, len(images))

	for i, img := range images {
		if err := d.limiter.Wait(ctx); err != nil {
			// Context is gone; Analyze still produces a placeholder
			// for each remaining image so the slice stays aligned.
			slog.Warn("Batch pacing interrupted", "index", i, "error", err)
		}

		slog.Info("Analyzing image", "index", i, "total", len(images), "source", img.Source)
		results[i] = d.service.Analyze(ctx, img)
	}

	return results
}
