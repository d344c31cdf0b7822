package images

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/garage-labs/carscope/internal/models"
)

// MaxImageSize caps how much image data a single analysis accepts.
const MaxImageSize = 10 * 1024 * 1024

// Some image hosts answer tiny placeholder images instead of a 404.
const minDownloadSize = 1000

// Fetcher resolves image references into payloads ready for analysis
type Fetcher struct {
	HTTPClient *http.Client
}

// NewFetcher creates a new image fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch resolves a local file path or an http(s) URL into image bytes
// plus a MIME type.
func (f *Fetcher) Fetch(ref string) (models.ImagePayload, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return f.fetchURL(ref)
	}
	return f.fetchFile(ref)
}

func (f *Fetcher) fetchFile(path string) (models.ImagePayload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.ImagePayload{}, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.Size() > MaxImageSize {
		return models.ImagePayload{}, fmt.Errorf("image file too large: %d bytes (max %d)", info.Size(), MaxImageSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.ImagePayload{}, fmt.Errorf("failed to read image file: %w", err)
	}

	return models.ImagePayload{
		Data:     data,
		MIMEType: SniffMIMEType(data, path),
		Source:   path,
	}, nil
}

func (f *Fetcher) fetchURL(url string) (models.ImagePayload, error) {
	resp, err := f.HTTPClient.Get(url)
	if err != nil {
		return models.ImagePayload{}, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ImagePayload{}, fmt.Errorf("image URL returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize+1))
	if err != nil {
		return models.ImagePayload{}, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > MaxImageSize {
		return models.ImagePayload{}, fmt.Errorf("downloaded image too large (max %d bytes)", MaxImageSize)
	}
	if len(data) < minDownloadSize {
		return models.ImagePayload{}, fmt.Errorf("downloaded image too small (likely placeholder), size: %d bytes", len(data))
	}

	return models.ImagePayload{
		Data:     data,
		MIMEType: SniffMIMEType(data, url),
		Source:   url,
	}, nil
}

// SniffMIMEType determines the image MIME type from the content,
// falling back to the file extension and finally to image/jpeg.
func SniffMIMEType(data []byte, ref string) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}

	switch strings.ToLower(filepath.Ext(ref)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
