// Package sim runs the two-state simulation of the designed circuit.
//
// The machine only stores the inputs it cannot derive: whether the
// simulation runs and whether the button is held. The LED level is
// recomputed from those on every read so it can never drift out of sync.
package sim

import "github.com/circuitbench/backend/internal/models"

// PartProbe reports which parts exist on the canvas. Satisfied by
// *circuit.Placement.
type PartProbe interface {
	HasButton() bool
}

// Machine is the simulation state machine for one workspace.
type Machine struct {
	probe         PartProbe
	mode          models.SimulationMode
	buttonPressed bool
}

// NewMachine returns a stopped machine over the given part probe.
func NewMachine(probe PartProbe) *Machine {
	return &Machine{
		probe: probe,
		mode:  models.SimStopped,
	}
}

// Start switches the machine to running. Starting an already running
// machine changes nothing.
func (m *Machine) Start() {
	m.mode = models.SimRunning
}

// Stop halts the simulation and releases the button. It is idempotent, and
// clears a held button even when the machine is already stopped, so an
// in-flight press never survives a stop.
func (m *Machine) Stop() {
	m.mode = models.SimStopped
	m.buttonPressed = false
}

// PressButton latches the button down. Ignored unless the simulation is
// running and a button part is placed.
func (m *Machine) PressButton() {
	if m.mode != models.SimRunning || !m.probe.HasButton() {
		return
	}
	m.buttonPressed = true
}

// ReleaseButton lifts the button. Always applies, so a release issued
// after a stop or a part change cannot leave the button stuck.
func (m *Machine) ReleaseButton() {
	m.buttonPressed = false
}

// Mode returns the current simulation mode.
func (m *Machine) Mode() models.SimulationMode {
	return m.mode
}

// Running reports whether the simulation is running.
func (m *Machine) Running() bool {
	return m.mode == models.SimRunning
}

// ButtonPressed reports whether the button is held.
func (m *Machine) ButtonPressed() bool {
	return m.buttonPressed
}

// LedOn derives the LED level: lit while the simulation runs with the
// button held.
func (m *Machine) LedOn() bool {
	return m.mode == models.SimRunning && m.buttonPressed
}

// State returns the simulation snapshot sent to clients.
func (m *Machine) State() models.SimulationState {
	brightness := 0
	if m.LedOn() {
		brightness = 1
	}
	return models.SimulationState{
		Mode:          m.mode,
		ButtonPressed: m.buttonPressed,
		LedOn:         m.LedOn(),
		LedBrightness: brightness,
	}
}
