package models

// ViewMode selects which pane the frontend shows. Switching it is purely
// presentational and never touches circuit or simulation state.
type ViewMode string

const (
	ViewComponent ViewMode = "component"
	ViewCode      ViewMode = "code"
)

// WorkspaceInfo is the API-facing metadata of one circuit-editing session.
type WorkspaceInfo struct {
	ID         string   `json:"id"`
	ViewMode   ViewMode `json:"viewMode"`
	PartCount  int      `json:"partCount"`
	CreatedAt  int64    `json:"createdAt"` // Unix ms
	Traced     bool     `json:"traced"`
	EventCount int      `json:"eventCount,omitempty"`
}

// Snapshot is the full workspace state, sent on fetch and WebSocket join.
type Snapshot struct {
	Workspace   WorkspaceInfo   `json:"workspace"`
	Parts       []PlacedPart    `json:"parts"`
	Circuit     CircuitState    `json:"circuit"`
	Connections []Connection    `json:"connections"`
	Simulation  SimulationState `json:"simulation"`
	Firmware    string          `json:"firmware"`
}

// Update describes what changed after one applied command. Connections are
// always re-derived and included so the line overlay can refresh without
// diffing; the other fields are set only when the command touched them.
type Update struct {
	Event       string           `json:"event"`
	Part        *PlacedPart      `json:"part,omitempty"`
	Circuit     *CircuitState    `json:"circuit,omitempty"`
	Connections []Connection     `json:"connections"`
	Simulation  *SimulationState `json:"simulation,omitempty"`
	Firmware    string           `json:"firmware,omitempty"`
	ViewMode    ViewMode         `json:"viewMode,omitempty"`
}
