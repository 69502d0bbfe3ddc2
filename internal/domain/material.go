package domain

// MaterialCategory enumerates the fixed set of physical product categories.
type MaterialCategory string

const (
	CategoryCanvasMotif MaterialCategory = "canvas_motif"
	CategoryPaintPot    MaterialCategory = "paint_pot"
	CategoryBrush       MaterialCategory = "brush"
	CategoryCanvas      MaterialCategory = "canvas"
	CategoryFrame       MaterialCategory = "frame"
	CategoryTool        MaterialCategory = "tool"
	CategoryPackaging   MaterialCategory = "packaging"
	CategoryAccessory   MaterialCategory = "accessory"
)

// MaterialStatus describes whether a material is eligible for generation.
type MaterialStatus string

const (
	MaterialStatusIdle    MaterialStatus = "idle"
	MaterialStatusEngaged MaterialStatus = "engaged"
)

// MaterialImage is one reference photograph of a material, labeled with the
// camera perspective it depicts.
type MaterialImage struct {
	ID          string
	MaterialID  string
	Path        string
	Perspective string
	IsPrimary   bool
	Position    int
}

// Material is a physical prop (paint pot, brush, canvas, ...) usable in a
// scene. The core pipeline reads materials but never mutates them.
type Material struct {
	ID         string
	Name       string
	Category   MaterialCategory
	Status     MaterialStatus
	Dimensions string
	Surface    string
	Weight     string
	Color      string
	FormatCode string
	Images     []MaterialImage
}

// IsActive reports whether the material may participate in generation.
func (m Material) IsActive() bool {
	return m.Status == MaterialStatusEngaged
}

// ActiveMaterials filters out idle materials, preserving input order. Idle
// materials must never reach the generation pipeline.
func ActiveMaterials(materials []Material) []Material {
	out := make([]Material, 0, len(materials))
	for _, m := range materials {
		if m.IsActive() {
			out = append(out, m)
		}
	}
	return out
}
