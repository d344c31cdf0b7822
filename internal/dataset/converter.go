package dataset

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var splits = []string{"train", "val", "test"}

// Converter writes annotation records out as a YOLO training layout:
//
//	output/
//	  train/images/  train/labels/
//	  val/images/    val/labels/
//	  test/images/   test/labels/
//	  data.yaml
type Converter struct {
	imageDir   string
	outputPath string
}

// ConversionStats summarizes one conversion run
type ConversionStats struct {
	Converted int
	Skipped   int
	PerSplit  map[string]int
}

// NewConverter creates a converter reading images from imageDir and
// writing the YOLO layout under outputPath.
func NewConverter(imageDir, outputPath string) *Converter {
	return &Converter{
		imageDir:   imageDir,
		outputPath: outputPath,
	}
}

// Convert processes all records into the YOLO layout and writes
// data.yaml. Records whose image is missing or whose dimensions are
// unset are skipped, not fatal.
func (c *Converter) Convert(records []AnnotationRecord) (*ConversionStats, error) {
	if err := c.setupLayout(); err != nil {
		return nil, err
	}

	stats := &ConversionStats{PerSplit: make(map[string]int)}

	for i := range records {
		record := &records[i]

		if record.Width <= 0 || record.Height <= 0 {
			slog.Warn("Skipping record with unknown dimensions", "filename", record.Filename)
			stats.Skipped++
			continue
		}

		split := record.SplitOrDefault()

		srcImage := filepath.Join(c.imageDir, record.Filename)
		if _, err := os.Stat(srcImage); err != nil {
			slog.Warn("Skipping record with missing image", "filename", record.Filename)
			stats.Skipped++
			continue
		}

		destImage := filepath.Join(c.outputPath, split, "images", record.Filename)
		if err := copyFile(srcImage, destImage); err != nil {
			return nil, fmt.Errorf("failed to copy image %s: %w", record.Filename, err)
		}

		labelName := strings.TrimSuffix(record.Filename, filepath.Ext(record.Filename)) + ".txt"
		labelPath := filepath.Join(c.outputPath, split, "labels", labelName)
		if err := os.WriteFile(labelPath, []byte(LabelLines(record)), 0644); err != nil {
			return nil, fmt.Errorf("failed to write label %s: %w", labelName, err)
		}

		stats.Converted++
		stats.PerSplit[split]++

		if stats.Converted%100 == 0 {
			slog.Info("Conversion progress", "converted", stats.Converted)
		}
	}

	if err := c.writeDataYAML(); err != nil {
		return nil, err
	}

	slog.Info("Conversion finished",
		"converted", stats.Converted,
		"skipped", stats.Skipped,
		"output", c.outputPath)

	return stats, nil
}

// LabelLines renders a record's annotations as YOLO label lines:
// "class_id x_center y_center width height", one per region, all
// coordinates normalized to [0,1]. Unknown damage types are dropped.
func LabelLines(record *AnnotationRecord) string {
	var b strings.Builder
	for _, damage := range record.Damages {
		classID, ok := DamageClasses[damage.Type]
		if !ok || len(damage.BBox) != 4 {
			continue
		}

		cx, cy, w, h := normalizeBBox(damage.BBox, record.Width, record.Height)
		fmt.Fprintf(&b, "%d %.6f %.6f %.6f %.6f\n", classID, cx, cy, w, h)
	}
	return b.String()
}

// normalizeBBox converts [x_min, y_min, x_max, y_max] pixel
// coordinates to normalized center/size form.
func normalizeBBox(bbox []float64, imgWidth, imgHeight int) (cx, cy, w, h float64) {
	xMin, yMin, xMax, yMax := bbox[0], bbox[1], bbox[2], bbox[3]

	cx = (xMin + xMax) / 2.0 / float64(imgWidth)
	cy = (yMin + yMax) / 2.0 / float64(imgHeight)
	w = (xMax - xMin) / float64(imgWidth)
	h = (yMax - yMin) / float64(imgHeight)

	return cx, cy, w, h
}

func (c *Converter) setupLayout() error {
	for _, split := range splits {
		for _, folder := range []string{"images", "labels"} {
			dir := filepath.Join(c.outputPath, split, folder)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}
	}
	return nil
}

type dataConfig struct {
	Path       string   `yaml:"path"`
	Train      string   `yaml:"train"`
	Val        string   `yaml:"val"`
	Test       string   `yaml:"test"`
	ClassCount int      `yaml:"nc"`
	Names      []string `yaml:"names"`
}

func (c *Converter) writeDataYAML() error {
	absPath, err := filepath.Abs(c.outputPath)
	if err != nil {
		absPath = c.outputPath
	}

	config := dataConfig{
		Path:       absPath,
		Train:      "train/images",
		Val:        "val/images",
		Test:       "test/images",
		ClassCount: len(DamageClasses),
		Names:      ClassNames(),
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal data.yaml: %w", err)
	}

	yamlPath := filepath.Join(c.outputPath, "data.yaml")
	if err := os.WriteFile(yamlPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write data.yaml: %w", err)
	}

	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
