package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewLoader(t *testing.T) {
	path := "./annotations.parquet"
	loader := NewLoader(path)

	if loader.datasetPath != path {
		t.Errorf("Expected path %s, got %s", path, loader.datasetPath)
	}
}

func TestHasKnownDamage(t *testing.T) {
	tests := []struct {
		name     string
		record   AnnotationRecord
		expected bool
	}{
		{
			name: "known damage type",
			record: AnnotationRecord{
				Damages: []Annotation{{Type: "scratch", BBox: []float64{0, 0, 10, 10}}},
			},
			expected: true,
		},
		{
			name: "unknown damage type only",
			record: AnnotationRecord{
				Damages: []Annotation{{Type: "alien_damage", BBox: []float64{0, 0, 10, 10}}},
			},
			expected: false,
		},
		{
			name:     "no damages",
			record:   AnnotationRecord{},
			expected: false,
		},
		{
			name: "mixed known and unknown",
			record: AnnotationRecord{
				Damages: []Annotation{
					{Type: "alien_damage"},
					{Type: "rust", BBox: []float64{5, 5, 20, 20}},
				},
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.HasKnownDamage(); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSplitOrDefault(t *testing.T) {
	tests := []struct {
		split    string
		expected string
	}{
		{"train", "train"},
		{"val", "val"},
		{"test", "test"},
		{"", "train"},
		{"validation", "train"},
	}

	for _, tt := range tests {
		record := AnnotationRecord{Split: tt.split}
		if got := record.SplitOrDefault(); got != tt.expected {
			t.Errorf("Split %q: expected %s, got %s", tt.split, tt.expected, got)
		}
	}
}

func TestClassNames(t *testing.T) {
	names := ClassNames()

	if len(names) != len(DamageClasses) {
		t.Fatalf("Expected %d class names, got %d", len(DamageClasses), len(names))
	}

	if names[0] != "scratch" {
		t.Errorf("Expected class 0 to be scratch, got %s", names[0])
	}

	if names[9] != "broken_part" {
		t.Errorf("Expected class 9 to be broken_part, got %s", names[9])
	}
}

func TestLoadJSONL(t *testing.T) {
	tmpDir := t.TempDir()
	jsonlPath := filepath.Join(tmpDir, "annotations.jsonl")

	testData := `{"filename":"car1.jpg","width":640,"height":480,"split":"train","damages":[{"type":"dent","bbox":[10,20,110,120]}]}
{"filename":"car2.jpg","width":800,"height":600,"split":"val","damages":[]}
`
	err := os.WriteFile(jsonlPath, []byte(testData), 0644)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	loader := NewLoader(jsonlPath)

	records, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if records[0].Filename != "car1.jpg" {
		t.Errorf("Expected filename car1.jpg, got %s", records[0].Filename)
	}

	if len(records[0].Damages) != 1 || records[0].Damages[0].Type != "dent" {
		t.Errorf("Expected one dent annotation, got %+v", records[0].Damages)
	}

	if records[1].Split != "val" {
		t.Errorf("Expected split val, got %s", records[1].Split)
	}
}

func TestLoadJSONLSkipsMalformedLines(t *testing.T) {
	tmpDir := t.TempDir()
	jsonlPath := filepath.Join(tmpDir, "annotations.jsonl")

	testData := `{"filename":"car1.jpg","width":640,"height":480}
not valid json at all
{"filename":"car2.jpg","width":800,"height":600}
`
	err := os.WriteFile(jsonlPath, []byte(testData), 0644)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	records, err := NewLoader(jsonlPath).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(records) != 2 {
		t.Errorf("Expected 2 records after skipping bad line, got %d", len(records))
	}
}

func TestLoadSample(t *testing.T) {
	tmpDir := t.TempDir()
	jsonlPath := filepath.Join(tmpDir, "annotations.jsonl")

	testData := `{"filename":"a.jpg","width":640,"height":480}
{"filename":"b.jpg","width":640,"height":480}
{"filename":"c.jpg","width":640,"height":480}
`
	err := os.WriteFile(jsonlPath, []byte(testData), 0644)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	loader := NewLoader(jsonlPath)

	records, err := loader.LoadSample(2)
	if err != nil {
		t.Fatalf("LoadSample failed: %v", err)
	}

	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}

	if _, err := loader.LoadSample(0); err == nil {
		t.Error("Expected error for non-positive sample limit, got nil")
	}
}

func TestLoadWithFilter(t *testing.T) {
	tmpDir := t.TempDir()
	jsonlPath := filepath.Join(tmpDir, "annotations.jsonl")

	testData := `{"filename":"damaged.jpg","width":640,"height":480,"damages":[{"type":"crack","bbox":[0,0,50,50]}]}
{"filename":"clean.jpg","width":640,"height":480}
`
	err := os.WriteFile(jsonlPath, []byte(testData), 0644)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	records, err := NewLoader(jsonlPath).LoadWithFilter(func(r *AnnotationRecord) bool {
		return r.HasKnownDamage()
	})
	if err != nil {
		t.Fatalf("LoadWithFilter failed: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	if records[0].Filename != "damaged.jpg" {
		t.Errorf("Expected damaged.jpg, got %s", records[0].Filename)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	loader := NewLoader("annotations.txt")

	if _, err := loader.Load(); err == nil {
		t.Error("Expected error for unsupported format, got nil")
	}

	if _, err := loader.LoadSample(10); err == nil {
		t.Error("Expected error for unsupported format in LoadSample, got nil")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	loader := NewLoader("/nonexistent/path/annotations.jsonl")

	if _, err := loader.Load(); err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}
