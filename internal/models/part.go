// Package models contains domain types for the CircuitBench designer backend.
package models

// PartType identifies a placeable circuit part.
type PartType string

const (
	PartController PartType = "controller"
	PartLed        PartType = "led"
	PartButton     PartType = "button"
)

// AllPartTypes returns the fixed part type set in palette order.
func AllPartTypes() []PartType {
	return []PartType{PartController, PartLed, PartButton}
}

// Point is a canvas-local coordinate in pixels.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns the point shifted by the given offset.
func (p Point) Add(off Point) Point {
	return Point{X: p.X + off.X, Y: p.Y + off.Y}
}

// PlacedPart is a single part instance on the canvas.
// The id is generated at placement time and never reused; only the position
// changes afterwards.
type PlacedPart struct {
	ID       string   `json:"id"`
	Type     PartType `json:"type"`
	Position Point    `json:"position"`
}

// PartDef describes one placeable part type in the catalog. DropOffset is
// the shift applied to the drop point so the graphic lands aligned under
// the cursor.
type PartDef struct {
	Type       PartType `json:"type" yaml:"type"`
	Label      string   `json:"label" yaml:"label"`
	DropOffset Point    `json:"dropOffset" yaml:"dropOffset"`
}
