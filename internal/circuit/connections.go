package circuit

import "github.com/circuitbench/backend/internal/models"

// DeriveConnections computes the wire list from the current placement and
// pin assignment. It is a pure function of its inputs: callers re-derive
// after every placement, position, or pin change instead of patching a
// stored list.
//
// A wire exists between the LED anchor and its pin only while both the
// controller and the LED are placed, and likewise for the button. Results
// are ordered LED first, then button.
func DeriveConnections(p *Placement, a *Assignment) []models.Connection {
	connections := make([]models.Connection, 0, 2)
	if !p.Has(models.PartController) {
		return connections
	}
	if p.Has(models.PartLed) {
		connections = append(connections, models.Connection{
			From: models.LedAnchor,
			To:   models.PinAnchor(a.LedPin()),
		})
	}
	if p.Has(models.PartButton) {
		connections = append(connections, models.Connection{
			From: models.ButtonAnchor,
			To:   models.PinAnchor(a.ButtonPin()),
		})
	}
	return connections
}
