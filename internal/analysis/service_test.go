package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/garage-labs/carscope/internal/models"
	"github.com/garage-labs/carscope/internal/providers"
)

// stubProvider replays a canned reply or error and records the config
// it was called with.
type stubProvider struct {
	reply string
	err   error
	last  providers.Config
}

func (p *stubProvider) AnalyzeImage(_ context.Context, config providers.Config) (string, error) {
	p.last = config
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func testImage() models.ImagePayload {
	return models.ImagePayload{Data: []byte{0xFF, 0xD8, 0xFF}, MIMEType: "image/jpeg", Source: "front.jpg"}
}

func TestAnalyzeParsesFencedReply(t *testing.T) {
	stub := &stubProvider{reply: "```json\n{\"brand\":\"Toyota\",\"model\":\"Camry\",\"damage_detected\":false}\n```"}
	svc := NewServiceWith(stub, "test-model")

	result := svc.Analyze(context.Background(), testImage())

	if result.Brand != "Toyota" {
		t.Errorf("Expected brand Toyota, got %q", result.Brand)
	}
	if result.Model != "Camry" {
		t.Errorf("Expected model Camry, got %q", result.Model)
	}
	if result.DamageDetected {
		t.Error("Expected damage_detected false")
	}
	if result.Note != "" {
		t.Errorf("Expected no note on a clean parse, got %q", result.Note)
	}
	if result.Year != "" || result.Color != "" || len(result.DamageTypes) != 0 {
		t.Error("Expected no invented fields beyond the reply")
	}
}

func TestAnalyzeSendsImageAndPrompt(t *testing.T) {
	stub := &stubProvider{reply: `{"brand":"Ford","model":"Focus"}`}
	svc := NewServiceWith(stub, "test-model")

	svc.Analyze(context.Background(), testImage())

	if len(stub.last.Image) == 0 {
		t.Error("Expected image bytes to be sent to the provider")
	}
	if stub.last.MIMEType != "image/jpeg" {
		t.Errorf("Expected image/jpeg MIME type, got %q", stub.last.MIMEType)
	}
	if !strings.Contains(stub.last.Prompt, "JSON object") {
		t.Error("Expected the prompt to mandate a JSON object")
	}
	if stub.last.Model != "test-model" {
		t.Errorf("Expected model test-model, got %q", stub.last.Model)
	}
}

func TestAnalyzeFallbackOnUnparseableReply(t *testing.T) {
	tests := []struct {
		name         string
		reply        string
		expectDamage bool
	}{
		{
			name:         "plain prose without braces",
			reply:        "This image shows a sedan in good condition.",
			expectDamage: false,
		},
		{
			name:         "prose mentioning damage",
			reply:        "The vehicle has significant damage on the rear bumper.",
			expectDamage: true,
		},
		{
			name:         "prose mentioning crash",
			reply:        "Looks like this car was in a CRASH recently.",
			expectDamage: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubProvider{reply: tt.reply}
			svc := NewServiceWith(stub, "test-model")

			result := svc.Analyze(context.Background(), testImage())

			if result.Brand != unknownField || result.Model != unknownField {
				t.Errorf("Expected Unknown brand/model, got %q/%q", result.Brand, result.Model)
			}
			if result.ConfidenceLevel != models.ConfidenceMedium {
				t.Errorf("Expected medium confidence, got %q", result.ConfidenceLevel)
			}
			if result.DamageDetected != tt.expectDamage {
				t.Errorf("Expected damage_detected=%v, got %v", tt.expectDamage, result.DamageDetected)
			}
			if result.ConditionAssessment != tt.reply {
				t.Errorf("Expected raw reply echoed, got %q", result.ConditionAssessment)
			}
			if result.Note == "" {
				t.Error("Expected a note explaining the fallback")
			}
		})
	}
}

func TestAnalyzeFallbackTruncatesLongReplies(t *testing.T) {
	long := strings.Repeat("damage ", 200) // well past the prefix limit
	stub := &stubProvider{reply: long}
	svc := NewServiceWith(stub, "test-model")

	result := svc.Analyze(context.Background(), testImage())

	if len([]rune(result.ConditionAssessment)) > rawPrefixLimit {
		t.Errorf("Expected prefix of at most %d characters, got %d", rawPrefixLimit, len([]rune(result.ConditionAssessment)))
	}
	if !result.DamageDetected {
		t.Error("Expected damage heuristic to fire")
	}
}

func TestAnalyzeFallbackWhenEssentialFieldsMissing(t *testing.T) {
	stub := &stubProvider{reply: `{"color":"red","confidence_level":"high"}`}
	svc := NewServiceWith(stub, "test-model")

	result := svc.Analyze(context.Background(), testImage())

	if result.Note == "" {
		t.Error("Expected a fallback note when brand and model are both missing")
	}
	if result.ConfidenceLevel != models.ConfidenceMedium {
		t.Errorf("Expected medium confidence on fallback, got %q", result.ConfidenceLevel)
	}
}

func TestAnalyzeKeepsPartialIdentification(t *testing.T) {
	stub := &stubProvider{reply: `{"brand":"Tesla"}`}
	svc := NewServiceWith(stub, "test-model")

	result := svc.Analyze(context.Background(), testImage())

	if result.Brand != "Tesla" {
		t.Errorf("Expected brand Tesla, got %q", result.Brand)
	}
	if result.Model != unknownField {
		t.Errorf("Expected missing model filled with placeholder, got %q", result.Model)
	}
	if result.Note != "" {
		t.Errorf("Expected no fallback note for a partial parse, got %q", result.Note)
	}
}

func TestAnalyzePlaceholderClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantNote string
	}{
		{
			name:     "network failure",
			err:      errors.New("failed to send request: network is unreachable"),
			wantNote: noteNetwork,
		},
		{
			name:     "dial failure",
			err:      errors.New("dial tcp 10.0.0.1:443: connect: connection refused"),
			wantNote: noteNetwork,
		},
		{
			name:     "authentication failure",
			err:      errors.New("received non-200 status code: 401 - invalid api key"),
			wantNote: noteAuth,
		},
		{
			name:     "quota failure",
			err:      errors.New("received non-200 status code: 429 - rate limit exceeded"),
			wantNote: noteRateLimit,
		},
		{
			name:     "unclassified failure",
			err:      errors.New("something odd happened"),
			wantNote: noteGenericStub + "something odd happened",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubProvider{err: tt.err}
			svc := NewServiceWith(stub, "test-model")

			result := svc.Analyze(context.Background(), testImage())

			if result.Note != tt.wantNote {
				t.Errorf("Expected note %q, got %q", tt.wantNote, result.Note)
			}
			if result.Brand != unknownField || result.Model != unknownField {
				t.Error("Expected placeholder brand/model")
			}
			if result.ConfidenceLevel != models.ConfidenceLow {
				t.Errorf("Expected low confidence on placeholder, got %q", result.ConfidenceLevel)
			}
		})
	}
}

func TestValidateSurfacesFailures(t *testing.T) {
	stub := &stubProvider{err: errors.New("connection refused")}
	svc := NewServiceWith(stub, "test-model")

	_, err := svc.Validate(context.Background(), testImage())
	if err == nil {
		t.Fatal("Expected error from failed presence check")
	}
}

func TestValidateParsesReply(t *testing.T) {
	stub := &stubProvider{reply: `{"contains_vehicle":false,"confidence":"high","reason":"the image shows a cat"}`}
	svc := NewServiceWith(stub, "test-model")

	result, err := svc.Validate(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if result.ContainsVehicle {
		t.Error("Expected contains_vehicle false")
	}
	if result.Reason != "the image shows a cat" {
		t.Errorf("Expected remote reason echoed, got %q", result.Reason)
	}
}

func TestCheckConsistencyIncludesExpectedVehicle(t *testing.T) {
	stub := &stubProvider{reply: `{"brand":"Toyota","model":"Camry","color":"blue","matches_expected":true,"confidence":"high","reason":"same vehicle"}`}
	svc := NewServiceWith(stub, "test-model")

	expected := models.ExpectedVehicle{Brand: "Toyota", Model: "Camry", Color: "blue"}
	result, err := svc.CheckConsistency(context.Background(), testImage(), expected)
	if err != nil {
		t.Fatalf("CheckConsistency failed: %v", err)
	}
	if !result.MatchesExpected {
		t.Error("Expected matches_expected true")
	}
	if !strings.Contains(stub.last.Prompt, "Toyota") || !strings.Contains(stub.last.Prompt, "Camry") {
		t.Error("Expected the prompt to name the expected vehicle")
	}
}

func TestCheckConsistencyErrOnMalformedReply(t *testing.T) {
	stub := &stubProvider{reply: "no json here"}
	svc := NewServiceWith(stub, "test-model")

	_, err := svc.CheckConsistency(context.Background(), testImage(), models.ExpectedVehicle{Brand: "VW"})
	if err == nil {
		t.Fatal("Expected error for a reply without JSON")
	}
}

func TestNewServiceUnsupportedProvider(t *testing.T) {
	_, err := NewService("watson", "")
	if err == nil {
		t.Error("Expected error for unsupported provider")
	}
}
