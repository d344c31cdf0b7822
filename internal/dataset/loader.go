package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader reads damage annotation records from JSONL or Parquet files
type Loader struct {
	datasetPath string
}

// NewLoader creates a new annotation loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load loads all records from the annotation file
func (l *Loader) Load() ([]AnnotationRecord, error) {
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	switch ext {
	case ".parquet":
		return l.loadParquet(0)
	case ".jsonl", ".json":
		return l.loadJSONL(0)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

// LoadSample loads at most limit records (useful for dry runs)
func (l *Loader) LoadSample(limit int) ([]AnnotationRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("sample limit must be positive, got %d", limit)
	}

	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	switch ext {
	case ".parquet":
		return l.loadParquet(limit)
	case ".jsonl", ".json":
		return l.loadJSONL(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

// loadJSONL loads records from a JSONL file. limit 0 means no limit.
func (l *Loader) loadJSONL(limit int) ([]AnnotationRecord, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation file: %w", err)
	}
	defer file.Close()

	var records []AnnotationRecord
	scanner := bufio.NewScanner(file)

	// Images with many regions produce long lines
	const maxCapacity = 10 * 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		if limit > 0 && len(records) >= limit {
			break
		}
		lineNum++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var record AnnotationRecord
		if err := json.Unmarshal(line, &record); err != nil {
			// Skip malformed lines but keep loading
			slog.Warn("Skipping malformed annotation line", "line", lineNum, "error", err)
			continue
		}

		records = append(records, record)

		if lineNum%1000 == 0 {
			slog.Debug("Reading JSONL", "lines_read", lineNum)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading annotations: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(records), "total_lines", lineNum)

	return records, nil
}

// loadParquet loads records from a Parquet file. limit 0 means no limit.
func (l *Loader) loadParquet(limit int) ([]AnnotationRecord, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[AnnotationRecord](pf)
	defer reader.Close()

	var records []AnnotationRecord
	rows := make([]AnnotationRecord, 128)

	for limit == 0 || len(records) < limit {
		n, err := reader.Read(rows)
		if n > 0 {
			if limit > 0 && len(records)+n > limit {
				n = limit - len(records)
			}
			records = append(records, rows[:n]...)
		}
		if err != nil {
			break
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(records))

	return records, nil
}

// LoadWithFilter loads records matching a filter function
func (l *Loader) LoadWithFilter(filterFn func(*AnnotationRecord) bool) ([]AnnotationRecord, error) {
	records, err := l.Load()
	if err != nil {
		return nil, err
	}

	var filtered []AnnotationRecord
	for i := range records {
		if filterFn(&records[i]) {
			filtered = append(filtered, records[i])
		}
	}

	return filtered, nil
}
