package models

// SimulationMode is the run/stop mode of a workspace simulation.
type SimulationMode string

const (
	SimStopped SimulationMode = "stopped"
	SimRunning SimulationMode = "running"
)

// SimulationState is the live simulation snapshot sent to clients.
// LedOn is derived from mode and button state, never stored on its own;
// LedBrightness is the 0/1 property the LED graphic binds to.
type SimulationState struct {
	Mode          SimulationMode `json:"mode"`
	ButtonPressed bool           `json:"buttonPressed"`
	LedOn         bool           `json:"ledOn"`
	LedBrightness int            `json:"ledBrightness"`
}
