package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/garage-labs/carscope/internal/analysis"
	"github.com/garage-labs/carscope/internal/models"
	"github.com/garage-labs/carscope/internal/providers"
	"github.com/garage-labs/carscope/internal/ratelimit"
)

// scriptedProvider returns one scripted reply (or error) per call, in
// order.
type scriptedProvider struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (p *scriptedProvider) AnalyzeImage(_ context.Context, config providers.Config) (string, error) {
	i := p.calls
	p.calls++
	p.prompts = append(p.prompts, config.Prompt)
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	if i < len(p.replies) {
		return p.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

func images(n int) []models.ImagePayload {
	imgs := make([]models.ImagePayload, n)
	for i := range imgs {
		imgs[i] = models.ImagePayload{Data: []byte{byte(i)}, MIMEType: "image/jpeg"}
	}
	return imgs
}

func TestRunKeepsOrderAcrossMidBatchFailure(t *testing.T) {
	provider := &scriptedProvider{
		replies: []string{
			`{"brand":"Toyota","model":"Camry"}`,
			"",
			`{"brand":"Honda","model":"Civic"}`,
		},
		errs: []error{nil, errors.New("network is unreachable"), nil},
	}
	driver := NewDriver(analysis.NewServiceWith(provider, "test-model"), nil)

	results := driver.Run(context.Background(), images(3))

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].Brand != "Toyota" {
		t.Errorf("Expected index 0 to hold Toyota, got %q", results[0].Brand)
	}
	if results[1].Note == "" || results[1].Brand != "Unknown" {
		t.Errorf("Expected index 1 to hold a failure placeholder, got %+v", results[1])
	}
	if results[2].Brand != "Honda" {
		t.Errorf("Expected index 2 to hold Honda, got %q", results[2].Brand)
	}
}

func TestRunProducesOneResultPerImage(t *testing.T) {
	provider := &scriptedProvider{}
	driver := NewDriver(analysis.NewServiceWith(provider, "test-model"), ratelimit.None{})

	results := driver.Run(context.Background(), images(5))

	if len(results) != 5 {
		t.Fatalf("Expected 5 results, got %d", len(results))
	}
	for i, r := range results {
		if r == nil {
			t.Errorf("Result %d is nil", i)
		}
	}
	if provider.calls != 5 {
		t.Errorf("Expected 5 sequential provider calls, got %d", provider.calls)
	}
}

func TestRunEmptyBatch(t *testing.T) {
	driver := NewDriver(analysis.NewServiceWith(&scriptedProvider{}, "test-model"), nil)

	results := driver.Run(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("Expected empty result list, got %d entries", len(results))
	}
}
