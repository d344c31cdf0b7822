package dataset

// AnnotationRecord represents one annotated vehicle photo from a
// damage-detection dataset. Bounding boxes are pixel coordinates
// [x_min, y_min, x_max, y_max].
type AnnotationRecord struct {
	Filename string       `json:"filename" parquet:"filename"`
	Width    int          `json:"width" parquet:"width"`
	Height   int          `json:"height" parquet:"height"`
	Split    string       `json:"split" parquet:"split"` // train, val, or test
	Damages  []Annotation `json:"damages" parquet:"damages,list"`
}

// Annotation is a single labelled damage region.
type Annotation struct {
	Type string    `json:"type" parquet:"type"`
	BBox []float64 `json:"bbox" parquet:"bbox,list"`
}

// DamageClasses maps damage type names to YOLO class IDs. The order
// is fixed: annotation files written with one mapping are unreadable
// under another.
var DamageClasses = map[string]int{
	"scratch":          0,
	"dent":             1,
	"crack":            2,
	"glass_damage":     3,
	"paint_damage":     4,
	"bumper_damage":    5,
	"headlight_damage": 6,
	"tire_damage":      7,
	"rust":             8,
	"broken_part":      9,
}

// ClassNames returns damage type names ordered by class ID.
func ClassNames() []string {
	names := make([]string, len(DamageClasses))
	for name, id := range DamageClasses {
		names[id] = name
	}
	return names
}

// HasKnownDamage reports whether the record carries at least one
// annotation with a recognized damage type.
func (r *AnnotationRecord) HasKnownDamage() bool {
	for _, d := range r.Damages {
		if _, ok := DamageClasses[d.Type]; ok {
			return true
		}
	}
	return false
}

// SplitOrDefault returns the record's split, defaulting to train.
func (r *AnnotationRecord) SplitOrDefault() string {
	switch r.Split {
	case "train", "val", "test":
		return r.Split
	default:
		return "train"
	}
}
