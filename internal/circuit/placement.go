// Package circuit holds the authoritative circuit state of one workspace:
// the placed parts, the pin assignment, and the derived anchor connections.
package circuit

import (
	"errors"

	"github.com/google/uuid"

	"github.com/circuitbench/backend/internal/catalog"
	"github.com/circuitbench/backend/internal/models"
)

var (
	// ErrUnknownPartType means the dropped payload named a type the catalog does not define.
	ErrUnknownPartType = errors.New("unknown part type")
	// ErrPartAlreadyPlaced means a part of the same type is already on the canvas.
	ErrPartAlreadyPlaced = errors.New("part already placed")
)

// Placement is the ordered collection of placed parts. At most one part of
// each type exists, and parts are never removed while the workspace lives,
// so presence flags only ever flip from false to true.
type Placement struct {
	catalog *catalog.Catalog
	parts   []*models.PlacedPart
	byID    map[string]*models.PlacedPart
	byType  map[models.PartType]*models.PlacedPart
}

// NewPlacement creates an empty placement validating types against the
// given catalog.
func NewPlacement(cat *catalog.Catalog) *Placement {
	return &Placement{
		catalog: cat,
		byID:    make(map[string]*models.PlacedPart),
		byType:  make(map[models.PartType]*models.PlacedPart),
	}
}

// Place adds a new part of the given type. The stored position is the drop
// point shifted by the catalog's per-type offset so the graphic lands
// aligned under the cursor. Rejected when the type is unknown or a part of
// that type is already placed; the collection is untouched either way.
func (p *Placement) Place(t models.PartType, dropPoint models.Point) (models.PlacedPart, error) {
	def, ok := p.catalog.Lookup(t)
	if !ok {
		return models.PlacedPart{}, ErrUnknownPartType
	}
	if _, exists := p.byType[t]; exists {
		return models.PlacedPart{}, ErrPartAlreadyPlaced
	}

	part := &models.PlacedPart{
		ID:       uuid.New().String(),
		Type:     t,
		Position: dropPoint.Add(def.DropOffset),
	}
	p.parts = append(p.parts, part)
	p.byID[part.ID] = part
	p.byType[t] = part
	return *part, nil
}

// Move replaces the position of the part with the given id. Unknown ids
// leave the collection untouched; the return value reports whether the
// part was found. Insertion order never changes.
func (p *Placement) Move(id string, pos models.Point) bool {
	part, ok := p.byID[id]
	if !ok {
		return false
	}
	part.Position = pos
	return true
}

// Has reports whether a part of the given type is placed.
func (p *Placement) Has(t models.PartType) bool {
	_, ok := p.byType[t]
	return ok
}

// HasButton reports whether a button part is placed. It satisfies the
// simulation machine's part probe.
func (p *Placement) HasButton() bool {
	return p.Has(models.PartButton)
}

// Get returns a copy of the part with the given id.
func (p *Placement) Get(id string) (models.PlacedPart, bool) {
	part, ok := p.byID[id]
	if !ok {
		return models.PlacedPart{}, false
	}
	return *part, true
}

// Parts returns copies of the placed parts in insertion order.
func (p *Placement) Parts() []models.PlacedPart {
	out := make([]models.PlacedPart, 0, len(p.parts))
	for _, part := range p.parts {
		out = append(out, *part)
	}
	return out
}

// Len returns the number of placed parts.
func (p *Placement) Len() int {
	return len(p.parts)
}
