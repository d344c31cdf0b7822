package analysis

import (
	"strings"

	"github.com/garage-labs/carscope/internal/models"
)

const (
	unknownField     = "Unknown"
	rawPrefixLimit   = 500
	fallbackNote     = "The model reply could not be parsed as JSON; showing the raw reply instead"
	noteNetwork      = "Could not reach the vision service. Check your network connection and try again"
	noteAuth         = "The vision service rejected the request credentials. Check the configured API key"
	noteRateLimit    = "The vision service rate limit or quota was exceeded. Try again later"
	noteGenericStub  = "Vehicle analysis failed: "
	reasonUnverified = "The check could not be completed"
)

// failureClass buckets a provider error by its likely origin.
type failureClass int

const (
	failureOther failureClass = iota
	failureNetwork
	failureAuth
	failureRateLimit
)

// classifyFailure matches known substrings in the error message. The
// providers wrap heterogeneous transport and API errors, so substring
// matching on the message is the only signal available.
func classifyFailure(err error) failureClass {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "network") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "dial tcp"):
		return failureNetwork
	case strings.Contains(msg, "api key") ||
		strings.Contains(msg, "api_key") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "401"):
		return failureAuth
	case strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "429"):
		return failureRateLimit
	default:
		return failureOther
	}
}

// failureNote returns the user-facing note for a classified failure.
func failureNote(err error) string {
	switch classifyFailure(err) {
	case failureNetwork:
		return noteNetwork
	case failureAuth:
		return noteAuth
	case failureRateLimit:
		return noteRateLimit
	default:
		return noteGenericStub + err.Error()
	}
}

// analysisPlaceholder is the fixed record returned when the remote
// call itself fails. It satisfies the shape invariant so the caller
// always has something to render.
func analysisPlaceholder(err error) *models.VehicleAnalysis {
	return &models.VehicleAnalysis{
		Brand:           unknownField,
		Model:           unknownField,
		ConfidenceLevel: models.ConfidenceLow,
		DamageSeverity:  models.SeverityNone,
		Note:            failureNote(err),
	}
}

// analysisFallback synthesizes a partial record from an unparseable
// reply: a truncated prefix of the raw text plus a substring guess for
// the damage flag, so the caller still has something to render.
func analysisFallback(raw string) *models.VehicleAnalysis {
	return &models.VehicleAnalysis{
		Brand:               unknownField,
		Model:               unknownField,
		ConfidenceLevel:     models.ConfidenceMedium,
		DamageDetected:      guessDamage(raw),
		DamageSeverity:      models.SeverityNone,
		ConditionAssessment: truncate(raw, rawPrefixLimit),
		Note:                fallbackNote,
	}
}

// guessDamage is the heuristic boolean guess applied when the reply
// cannot be parsed: any mention of damage or a crash counts.
func guessDamage(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.Contains(lower, "damage") || strings.Contains(lower, "crash")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
