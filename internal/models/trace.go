package models

import "time"

// Simulation signals recorded to the trace store.
const (
	SignalRun    = "run"
	SignalButton = "button"
	SignalLed    = "led"
)

// SignalEvent is one recorded boolean transition of a simulation signal.
type SignalEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Signal    string    `json:"signal"`
	Value     bool      `json:"value"`
}

// TimeRange is the span covered by recorded events.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
