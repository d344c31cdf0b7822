package models

import "time"

// Confidence levels reported by the vision model.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Damage severity levels for a full analysis.
const (
	SeverityNone     = "none"
	SeverityMinor    = "minor"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// ImagePayload is one image ready to send to a vision model.
type ImagePayload struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
	Source   string `json:"source,omitempty"` // file path or URL the bytes came from
}

// VehicleAnalysis is the full analysis record for one vehicle image.
// Every field is present even when the remote call fails; placeholders
// carry a human-readable Note explaining what went wrong.
type VehicleAnalysis struct {
	Brand                   string   `json:"brand" yaml:"brand"`
	Model                   string   `json:"model" yaml:"model"`
	Year                    string   `json:"year,omitempty" yaml:"year,omitempty"`
	BodyType                string   `json:"body_type,omitempty" yaml:"bodytype,omitempty"`
	Color                   string   `json:"color,omitempty" yaml:"color,omitempty"`
	ConfidenceLevel         string   `json:"confidence_level" yaml:"confidencelevel"`
	DamageDetected          bool     `json:"damage_detected" yaml:"damagedetected"`
	DamageSeverity          string   `json:"damage_severity" yaml:"damageseverity"`
	EstimatedValueUndamaged string   `json:"estimated_value_undamaged,omitempty" yaml:"estimatedvalueundamaged,omitempty"`
	EstimatedValueCurrent   string   `json:"estimated_value_current,omitempty" yaml:"estimatedvaluecurrent,omitempty"`
	ValueFactors            string   `json:"value_factors,omitempty" yaml:"valuefactors,omitempty"`
	DamageTypes             []string `json:"damage_types,omitempty" yaml:"damagetypes,omitempty"`
	DamageDescription       string   `json:"damage_description,omitempty" yaml:"damagedescription,omitempty"`
	ConditionAssessment     string   `json:"condition_assessment,omitempty" yaml:"conditionassessment,omitempty"`
	Note                    string   `json:"note,omitempty" yaml:"note,omitempty"`
}

// ValidationResult is the vehicle-presence check result.
type ValidationResult struct {
	ContainsVehicle bool   `json:"contains_vehicle"`
	VehicleType     string `json:"vehicle_type,omitempty"`
	Confidence      string `json:"confidence"`
	Reason          string `json:"reason"`
}

// ConsistencyResult is the cross-image consistency check result.
type ConsistencyResult struct {
	Brand           string `json:"brand"`
	Model           string `json:"model"`
	Color           string `json:"color"`
	MatchesExpected bool   `json:"matches_expected"`
	Confidence      string `json:"confidence"`
	Reason          string `json:"reason"`
}

// ExpectedVehicle is what a consistency check compares against,
// taken from the first analyzed image of a session.
type ExpectedVehicle struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Color string `json:"color"`
}

// ImageItem is one image admitted to an inspection session.
type ImageItem struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	MIMEType string `json:"mime_type"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// InspectionSession holds the ordered images and analysis results for
// one vehicle inspection. Results is index-aligned with Images.
type InspectionSession struct {
	ID        string             `json:"id"`
	Images    []ImageItem        `json:"images"`
	Results   []*VehicleAnalysis `json:"results"`
	Provider  string             `json:"provider,omitempty"`
	Model     string             `json:"model,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// Reference returns the expected vehicle for consistency checks, or
// false when no image has been successfully analyzed yet. Placeholder
// and fallback records (marked by a non-empty Note) never anchor the
// comparison: a failed analysis must not turn into an "Unknown
// Unknown" reference that rejects later valid photos.
func (s *InspectionSession) Reference() (ExpectedVehicle, bool) {
	for _, r := range s.Results {
		if r == nil || r.Note != "" {
			continue
		}
		return ExpectedVehicle{Brand: r.Brand, Model: r.Model, Color: r.Color}, true
	}
	return ExpectedVehicle{}, false
}
