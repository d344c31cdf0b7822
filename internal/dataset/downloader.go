package dataset

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const (
	// HuggingFace dataset repository with vehicle damage annotations
	HFDatasetRepo = "garage-labs/vehicle-damage-annotations"

	// HuggingFace resolve URL pattern
	HFResolveURL = "https://huggingface.co/datasets/%s/resolve/main/%s"

	// Default cache directory (mirrors the Python datasets library)
	DefaultCacheDir = "~/.cache/huggingface/datasets"
)

// DownloadConfig configures dataset downloading
type DownloadConfig struct {
	Repo          string
	CacheDir      string
	ForceDownload bool
	Token         string // HuggingFace token for private datasets
}

// Downloader handles downloading and caching annotation files from HuggingFace
type Downloader struct {
	config DownloadConfig
}

// NewDownloader creates a new dataset downloader
func NewDownloader(config DownloadConfig) *Downloader {
	if config.Repo == "" {
		config.Repo = HFDatasetRepo
	}
	if config.CacheDir == "" {
		config.CacheDir = DefaultCacheDir
	}

	// Expand ~ to home directory
	if strings.HasPrefix(config.CacheDir, "~") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			config.CacheDir = filepath.Join(homeDir, config.CacheDir[1:])
		}
	}

	return &Downloader{
		config: config,
	}
}

// Download fetches one dataset file from HuggingFace, or reuses the
// cached copy. Returns the path to the local file.
func (d *Downloader) Download(filename string) (string, error) {
	cacheDir := filepath.Join(d.config.CacheDir, d.config.Repo)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	cachedPath := filepath.Join(cacheDir, filename)

	if !d.config.ForceDownload {
		if _, err := os.Stat(cachedPath); err == nil {
			slog.Info("Using cached dataset", "path", cachedPath)
			return cachedPath, nil
		}
	}

	slog.Info("Downloading dataset from HuggingFace", "repo", d.config.Repo, "file", filename)

	url := fmt.Sprintf(HFResolveURL, d.config.Repo, filename)

	if err := d.downloadFile(url, cachedPath); err != nil {
		return "", fmt.Errorf("failed to download dataset: %w", err)
	}

	slog.Info("Dataset downloaded successfully", "path", cachedPath)
	return cachedPath, nil
}

// downloadFile downloads a file from a URL to a local path
func (d *Downloader) downloadFile(url, destPath string) error {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if d.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+d.config.Token)
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	// Write to a temp file first so a partial download never shadows
	// a good cached copy.
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := destPath + ".tmp"
	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := out.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move file: %w", err)
	}

	return nil
}

// GetCachePath returns the path where a dataset file would be cached
func (d *Downloader) GetCachePath(filename string) string {
	return filepath.Join(d.config.CacheDir, d.config.Repo, filename)
}

// ClearCache removes all cached dataset files
func (d *Downloader) ClearCache() error {
	cacheDir := filepath.Join(d.config.CacheDir, d.config.Repo)
	slog.Info("Clearing cache", "path", cacheDir)
	return os.RemoveAll(cacheDir)
}

// LoadOrDownload loads an annotation file from cache or downloads it
// if not present.
func LoadOrDownload(filename string, config DownloadConfig) (*Loader, error) {
	downloader := NewDownloader(config)

	datasetPath, err := downloader.Download(filename)
	if err != nil {
		return nil, err
	}

	return NewLoader(datasetPath), nil
}
