// Package catalog defines the placeable part types and their drop offsets.
package catalog

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/circuitbench/backend/internal/models"
)

// Catalog is the set of placeable part definitions, in palette order.
type Catalog struct {
	defs   []models.PartDef
	byType map[models.PartType]models.PartDef
}

// Default returns the built-in catalog: one controller board, one LED and
// one push button. The offsets center each graphic under the drop cursor.
func Default() *Catalog {
	cat, _ := build([]models.PartDef{
		{Type: models.PartController, Label: "Microcontroller", DropOffset: models.Point{X: -100, Y: -60}},
		{Type: models.PartLed, Label: "LED", DropOffset: models.Point{X: -20, Y: -28}},
		{Type: models.PartButton, Label: "Push Button", DropOffset: models.Point{X: -24, Y: -24}},
	})
	return cat
}

// Load reads a catalog override file. A missing file is not an error and
// yields the built-in defaults; a malformed file is.
func Load(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return FromReader(file)
}

// FromReader parses part definitions from YAML.
func FromReader(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Parts) == 0 {
		return nil, fmt.Errorf("catalog defines no parts")
	}

	return build(file.Parts)
}

type catalogFile struct {
	Parts []models.PartDef `yaml:"parts"`
}

func build(defs []models.PartDef) (*Catalog, error) {
	cat := &Catalog{byType: make(map[models.PartType]models.PartDef, len(defs))}
	for _, def := range defs {
		switch def.Type {
		case models.PartController, models.PartLed, models.PartButton:
		default:
			return nil, fmt.Errorf("unknown part type %q", def.Type)
		}
		if _, dup := cat.byType[def.Type]; dup {
			return nil, fmt.Errorf("duplicate part type %q", def.Type)
		}
		cat.byType[def.Type] = def
		cat.defs = append(cat.defs, def)
	}
	return cat, nil
}

// Parts returns the definitions in palette order.
func (c *Catalog) Parts() []models.PartDef {
	out := make([]models.PartDef, len(c.defs))
	copy(out, c.defs)
	return out
}

// Lookup returns the definition for a part type.
func (c *Catalog) Lookup(t models.PartType) (models.PartDef, bool) {
	def, ok := c.byType[t]
	return def, ok
}

// DropOffset returns the canvas offset applied when a part of the given
// type is dropped. Unknown types get a zero offset.
func (c *Catalog) DropOffset(t models.PartType) models.Point {
	return c.byType[t].DropOffset
}

// Len returns the number of part definitions.
func (c *Catalog) Len() int {
	return len(c.defs)
}
