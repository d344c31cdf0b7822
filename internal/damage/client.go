package damage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// Client talks to the optional external damage-detection endpoint, a
// separately deployed object-detection server. The endpoint may be
// absent in any given deployment; callers are expected to keep the
// vision-model-only result when Detect fails.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// Detail is one detected damage region.
type Detail struct {
	Type       string    `json:"type"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox"` // [x1, y1, x2, y2] in pixels
}

// Report is the detector's assessment of one image.
type Report struct {
	Success            bool           `json:"success"`
	Filename           string         `json:"filename"`
	TotalDamages       int            `json:"total_damages"`
	DamageSummary      map[string]int `json:"damage_summary"`
	DetailedDamages    []Detail       `json:"detailed_damages"`
	SeverityAssessment string         `json:"severity_assessment"`
}

// NewClient creates a detector client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Healthy probes the detector's root endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Detect posts the image as multipart form data and decodes the
// damage report. confidence is the detection threshold in [0,1].
func (c *Client) Detect(ctx context.Context, filename string, image []byte, confidence float64) (*Report, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := c.BaseURL + "/detect-damage"
	if confidence > 0 {
		url += "?confidence=" + strconv.FormatFloat(confidence, 'f', -1, 64)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create detect request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call damage detector: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("damage detector returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var report Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode damage report: %w", err)
	}

	return &report, nil
}
