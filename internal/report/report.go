package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/garage-labs/carscope/internal/models"
	"gopkg.in/yaml.v3"
)

// RunConfig records how a batch run was executed.
type RunConfig struct {
	Provider  string `yaml:"provider" json:"provider"`
	Model     string `yaml:"model" json:"model"`
	Detector  string `yaml:"detector,omitempty" json:"detector,omitempty"`
	Timestamp string `yaml:"timestamp" json:"timestamp"`
}

// ImageResult is one image's outcome within a run.
type ImageResult struct {
	Source   string                  `yaml:"source" json:"source"`
	Admitted bool                    `yaml:"admitted" json:"admitted"`
	Reason   string                  `yaml:"reason,omitempty" json:"reason,omitempty"`
	Analysis *models.VehicleAnalysis `yaml:"analysis,omitempty" json:"analysis,omitempty"`
}

// Run is the complete report for one batch invocation.
type Run struct {
	Config  RunConfig     `yaml:"config" json:"config"`
	Results []ImageResult `yaml:"results" json:"results"`
}

// NewRun stamps a run report with the current time.
func NewRun(provider, model, detector string) *Run {
	return &Run{
		Config: RunConfig{
			Provider:  provider,
			Model:     model,
			Detector:  detector,
			Timestamp: time.Now().Format("2006-01-02_15-04-05"),
		},
	}
}

// Format renders the run as "yaml" or "json".
func (r *Run) Format(format string) ([]byte, error) {
	switch format {
	case "yaml":
		return yaml.Marshal(r)
	case "json":
		return json.MarshalIndent(r, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported format: %s (expected yaml or json)", format)
	}
}

// Save writes the run to path, picking the format from the extension.
func (r *Run) Save(path string) error {
	format := "yaml"
	if filepath.Ext(path) == ".json" {
		format = "json"
	}

	data, err := r.Format(format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
