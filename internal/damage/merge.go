package damage

import (
	"fmt"
	"strings"

	"github.com/garage-labs/carscope/internal/models"
)

// MergeInto folds the detector's findings into a vision-model result.
// An empty report leaves the result untouched; merged damage types are
// deduplicated case-insensitively against the model's own findings.
func (r *Report) MergeInto(result *models.VehicleAnalysis) {
	if r.TotalDamages == 0 {
		return
	}

	result.DamageDetected = true
	for damageType := range r.DamageSummary {
		if !containsFold(result.DamageTypes, damageType) {
			result.DamageTypes = append(result.DamageTypes, damageType)
		}
	}

	detail := fmt.Sprintf("External detector found %d damage region(s), severity %s", r.TotalDamages, r.SeverityAssessment)
	if result.DamageDescription == "" {
		result.DamageDescription = detail
	} else {
		result.DamageDescription += ". " + detail
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
