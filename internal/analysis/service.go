package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/garage-labs/carscope/internal/gemini"
	"github.com/garage-labs/carscope/internal/models"
	"github.com/garage-labs/carscope/internal/ollama"
	"github.com/garage-labs/carscope/internal/openai"
	"github.com/garage-labs/carscope/internal/providers"
)

// Low temperature for consistent, factual output
const defaultTemperature = 0.1

// Service turns one vehicle image plus one fixed instruction into one
// structured result. Analyze never returns an error: every failure is
// converted into a schema-conformant placeholder before it crosses
// the service boundary.
type Service struct {
	provider    providers.Provider
	model       string
	temperature float64
}

// NewService creates a Service for the named provider, resolving the
// model from the environment when not given.
func NewService(providerName, model string) (*Service, error) {
	if providerName == "" {
		providerName = providers.DefaultProvider()
	}
	if model == "" {
		model = providers.DefaultModel(providerName)
	}

	var provider providers.Provider
	switch providerName {
	case "gemini":
		provider = gemini.New()
	case "openai":
		provider = openai.New()
	case "ollama":
		provider = ollama.New()
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}

	return NewServiceWith(provider, model), nil
}

// NewServiceWith creates a Service bound to an explicit provider.
func NewServiceWith(provider providers.Provider, model string) *Service {
	return &Service{
		provider:    provider,
		model:       model,
		temperature: defaultTemperature,
	}
}

// Model returns the model the service sends requests to.
func (s *Service) Model() string {
	return s.model
}

// Analyze runs the full identification and damage assessment on one
// image. The returned record is always well-shaped: a parsed model
// reply, a synthesized fallback when the reply was unparseable, or a
// fixed placeholder when the remote call failed.
func (s *Service) Analyze(ctx context.Context, img models.ImagePayload) *models.VehicleAnalysis {
	raw, err := s.provider.AnalyzeImage(ctx, s.request(buildAnalysisPrompt(), img))
	if err != nil {
		slog.Warn("Vehicle analysis call failed", "source", img.Source, "error", err)
		return analysisPlaceholder(err)
	}

	candidate, ok := ExtractJSONObject(raw)
	if !ok {
		slog.Warn("No JSON object in model reply, synthesizing fallback", "length", len(raw))
		return analysisFallback(raw)
	}

	var result models.VehicleAnalysis
	if err := json.Unmarshal([]byte(candidate), &result); err != nil {
		slog.Warn("Failed to parse extracted JSON, synthesizing fallback", "error", err)
		return analysisFallback(raw)
	}

	// Both essential fields absent means the model answered something
	// else entirely; treat it like an unparseable reply.
	if result.Brand == "" && result.Model == "" {
		slog.Warn("Parsed reply missing brand and model, synthesizing fallback")
		return analysisFallback(raw)
	}

	if result.Brand == "" {
		result.Brand = unknownField
	}
	if result.Model == "" {
		result.Model = unknownField
	}

	slog.Info("Vehicle analysis complete", "brand", result.Brand, "model", result.Model, "damage", result.DamageDetected)
	return &result
}

// Validate asks whether the image's main subject is a motor vehicle.
// Unlike Analyze it surfaces failures, so the admission gate can apply
// its own fail-open policy.
func (s *Service) Validate(ctx context.Context, img models.ImagePayload) (*models.ValidationResult, error) {
	raw, err := s.provider.AnalyzeImage(ctx, s.request(buildValidationPrompt(), img))
	if err != nil {
		return nil, fmt.Errorf("vehicle presence check failed: %w", err)
	}

	candidate, ok := ExtractJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON object in presence check reply")
	}

	var result models.ValidationResult
	if err := json.Unmarshal([]byte(candidate), &result); err != nil {
		return nil, fmt.Errorf("failed to parse presence check reply: %w", err)
	}

	return &result, nil
}

// CheckConsistency asks whether the image shows the same vehicle as
// the session's first analyzed record. Failures are surfaced for the
// gate's fail-open policy, like Validate.
func (s *Service) CheckConsistency(ctx context.Context, img models.ImagePayload, expected models.ExpectedVehicle) (*models.ConsistencyResult, error) {
	prompt := buildConsistencyPrompt(expected.Brand, expected.Model, expected.Color)

	raw, err := s.provider.AnalyzeImage(ctx, s.request(prompt, img))
	if err != nil {
		return nil, fmt.Errorf("consistency check failed: %w", err)
	}

	candidate, ok := ExtractJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON object in consistency check reply")
	}

	var result models.ConsistencyResult
	if err := json.Unmarshal([]byte(candidate), &result); err != nil {
		return nil, fmt.Errorf("failed to parse consistency check reply: %w", err)
	}

	return &result, nil
}

func (s *Service) request(prompt string, img models.ImagePayload) providers.Config {
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return providers.Config{
		Model:       s.model,
		Temperature: s.temperature,
		Prompt:      prompt,
		Image:       img.Data,
		MIMEType:    mimeType,
	}
}
