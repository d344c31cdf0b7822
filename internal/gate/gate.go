package gate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/garage-labs/carscope/internal/analysis"
	"github.com/garage-labs/carscope/internal/models"
)

// Decision is the outcome of the admission checks for one image.
type Decision struct {
	Admitted bool   `json:"admitted"`
	Reason   string `json:"reason,omitempty"`
}

// Gate runs the two pre-admission checks on an image before it joins
// an inspection session: first the vehicle-presence check, then, when
// the session already has an analyzed record, the cross-image
// consistency check. Both checks fail open: a check that cannot be
// completed never blocks the user.
type Gate struct {
	service *analysis.Service
}

func New(service *analysis.Service) *Gate {
	return &Gate{service: service}
}

// Admit decides whether the image may join the session. The checks
// run strictly in sequence; a rejection carries the reason reported by
// the model.
func (g *Gate) Admit(ctx context.Context, img models.ImagePayload, session *models.InspectionSession) Decision {
	validation, err := g.service.Validate(ctx, img)
	if err != nil {
		slog.Warn("Presence check failed, admitting image", "source", img.Source, "error", err)
	} else if !validation.ContainsVehicle {
		return Decision{
			Admitted: false,
			Reason:   fmt.Sprintf("No vehicle detected in the image: %s", validation.Reason),
		}
	}

	if session == nil {
		return Decision{Admitted: true}
	}
	expected, ok := session.Reference()
	if !ok {
		// First image of the session; nothing to compare against.
		return Decision{Admitted: true}
	}

	consistency, err := g.service.CheckConsistency(ctx, img, expected)
	if err != nil {
		slog.Warn("Consistency check failed, admitting image", "source", img.Source, "error", err)
		return Decision{Admitted: true}
	}

	// Only a confident mismatch blocks the image; a low-confidence
	// mismatch is inconclusive.
	if !consistency.MatchesExpected && isConfident(consistency.Confidence) {
		return Decision{
			Admitted: false,
			Reason: fmt.Sprintf("This appears to be a different vehicle (%s %s, %s): %s",
				consistency.Brand, consistency.Model, consistency.Color, consistency.Reason),
		}
	}

	return Decision{Admitted: true}
}

func isConfident(confidence string) bool {
	return confidence == models.ConfidenceHigh || confidence == models.ConfidenceMedium
}
