// Package workspace ties one design session together: part placement, pin
// assignment, the simulation machine, and the view mode, all mutated
// through a single command dispatcher so every caller (REST or WebSocket)
// shares the same semantics.
package workspace

import (
	"errors"
	"sync"
	"time"

	"github.com/circuitbench/backend/internal/catalog"
	"github.com/circuitbench/backend/internal/circuit"
	"github.com/circuitbench/backend/internal/firmware"
	"github.com/circuitbench/backend/internal/models"
	"github.com/circuitbench/backend/internal/sim"
	"github.com/circuitbench/backend/internal/trace"
)

// CommandType identifies a workspace mutation.
type CommandType string

const (
	CmdPlacePart     CommandType = "part:place"
	CmdMovePart      CommandType = "part:move"
	CmdSetLedPin     CommandType = "pin:led"
	CmdSetButtonPin  CommandType = "pin:button"
	CmdStartSim      CommandType = "sim:start"
	CmdStopSim       CommandType = "sim:stop"
	CmdPressButton   CommandType = "button:press"
	CmdReleaseButton CommandType = "button:release"
	CmdSetViewMode   CommandType = "view:set"
)

// Command is one mutation request. Only the fields the command type needs
// are read; the rest are ignored.
type Command struct {
	Type     CommandType     `json:"type"`
	PartType models.PartType `json:"partType,omitempty"`
	PartID   string          `json:"partId,omitempty"`
	Position *models.Point   `json:"position,omitempty"`
	Pin      int             `json:"pin,omitempty"`
	View     models.ViewMode `json:"view,omitempty"`
}

func (c Command) position() models.Point {
	if c.Position == nil {
		return models.Point{}
	}
	return *c.Position
}

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrUnknownPart     = errors.New("unknown part")
	ErrInvalidViewMode = errors.New("invalid view mode")
)

// Workspace is one live design session. A rejected command leaves every
// piece of state untouched; the error only reports why nothing happened.
type Workspace struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	placement *circuit.Placement
	pins      *circuit.Assignment
	machine   *sim.Machine
	viewMode  models.ViewMode
	tracer    *trace.Store // nil when the workspace runs untraced
}

// New creates a workspace over the given catalog. tracer may be nil, in
// which case signal transitions are simply not recorded.
func New(id string, cat *catalog.Catalog, tracer *trace.Store) *Workspace {
	placement := circuit.NewPlacement(cat)
	return &Workspace{
		ID:        id,
		CreatedAt: time.Now(),
		placement: placement,
		pins:      circuit.NewAssignment(placement),
		machine:   sim.NewMachine(placement),
		viewMode:  models.ViewComponent,
		tracer:    tracer,
	}
}

// Apply runs one command against the workspace and returns the update to
// push to clients. The returned error is one of the circuit or workspace
// sentinels; state is unchanged when it is non-nil.
func (w *Workspace) Apply(cmd Command) (*models.Update, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch cmd.Type {
	case CmdPlacePart:
		return w.placePart(cmd)
	case CmdMovePart:
		return w.movePart(cmd)
	case CmdSetLedPin, CmdSetButtonPin:
		return w.setPin(cmd)
	case CmdStartSim:
		return w.startSim()
	case CmdStopSim:
		return w.stopSim()
	case CmdPressButton:
		return w.pressButton()
	case CmdReleaseButton:
		return w.releaseButton()
	case CmdSetViewMode:
		return w.setViewMode(cmd)
	default:
		return nil, ErrUnknownCommand
	}
}

func (w *Workspace) placePart(cmd Command) (*models.Update, error) {
	part, err := w.placement.Place(cmd.PartType, cmd.position())
	if err != nil {
		return nil, err
	}
	u := w.updateLocked(cmd.Type)
	u.Part = &part
	state := w.pins.State()
	u.Circuit = &state
	return u, nil
}

func (w *Workspace) movePart(cmd Command) (*models.Update, error) {
	if !w.placement.Move(cmd.PartID, cmd.position()) {
		return nil, ErrUnknownPart
	}
	part, _ := w.placement.Get(cmd.PartID)
	u := w.updateLocked(cmd.Type)
	u.Part = &part
	return u, nil
}

func (w *Workspace) setPin(cmd Command) (*models.Update, error) {
	var err error
	if cmd.Type == CmdSetLedPin {
		err = w.pins.SetLedPin(cmd.Pin)
	} else {
		err = w.pins.SetButtonPin(cmd.Pin)
	}
	if err != nil {
		return nil, err
	}
	u := w.updateLocked(cmd.Type)
	state := w.pins.State()
	u.Circuit = &state
	u.Firmware = w.firmwareLocked()
	return u, nil
}

func (w *Workspace) startSim() (*models.Update, error) {
	if !w.machine.Running() {
		w.machine.Start()
		w.record(models.SignalRun, true)
	}
	return w.simUpdateLocked(CmdStartSim), nil
}

func (w *Workspace) stopSim() (*models.Update, error) {
	wasRunning := w.machine.Running()
	wasPressed := w.machine.ButtonPressed()
	ledBefore := w.machine.LedOn()
	w.machine.Stop()
	if wasRunning {
		w.record(models.SignalRun, false)
	}
	if wasPressed {
		w.record(models.SignalButton, false)
	}
	w.recordLedChange(ledBefore)
	return w.simUpdateLocked(CmdStopSim), nil
}

func (w *Workspace) pressButton() (*models.Update, error) {
	wasPressed := w.machine.ButtonPressed()
	ledBefore := w.machine.LedOn()
	w.machine.PressButton()
	if w.machine.ButtonPressed() && !wasPressed {
		w.record(models.SignalButton, true)
	}
	w.recordLedChange(ledBefore)
	return w.simUpdateLocked(CmdPressButton), nil
}

func (w *Workspace) releaseButton() (*models.Update, error) {
	wasPressed := w.machine.ButtonPressed()
	ledBefore := w.machine.LedOn()
	w.machine.ReleaseButton()
	if wasPressed && !w.machine.ButtonPressed() {
		w.record(models.SignalButton, false)
	}
	w.recordLedChange(ledBefore)
	return w.simUpdateLocked(CmdReleaseButton), nil
}

func (w *Workspace) setViewMode(cmd Command) (*models.Update, error) {
	switch cmd.View {
	case models.ViewComponent, models.ViewCode:
	default:
		return nil, ErrInvalidViewMode
	}
	w.viewMode = cmd.View
	u := w.updateLocked(cmd.Type)
	u.ViewMode = w.viewMode
	if w.viewMode == models.ViewCode {
		u.Firmware = w.firmwareLocked()
	}
	return u, nil
}

// updateLocked seeds an update with the event name and the freshly derived
// connection list. Connections are always recomputed, never patched.
func (w *Workspace) updateLocked(event CommandType) *models.Update {
	return &models.Update{
		Event:       string(event),
		Connections: circuit.DeriveConnections(w.placement, w.pins),
	}
}

func (w *Workspace) simUpdateLocked(event CommandType) *models.Update {
	u := w.updateLocked(event)
	state := w.machine.State()
	u.Simulation = &state
	return u
}

func (w *Workspace) firmwareLocked() string {
	return firmware.Generate(w.pins.LedPin(), w.pins.ButtonPin())
}

// record appends one signal transition to the tracer, if any.
func (w *Workspace) record(signal string, value bool) {
	if w.tracer == nil {
		return
	}
	w.tracer.Append(models.SignalEvent{
		Timestamp: time.Now(),
		Signal:    signal,
		Value:     value,
	})
}

// recordLedChange emits an LED transition when the derived level moved
// away from its value before the command.
func (w *Workspace) recordLedChange(before bool) {
	if after := w.machine.LedOn(); after != before {
		w.record(models.SignalLed, after)
	}
}

// Snapshot returns the complete client-facing state in one consistent
// read.
func (w *Workspace) Snapshot() models.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	circuitState := w.pins.State()
	simState := w.machine.State()
	return models.Snapshot{
		Workspace:   w.infoLocked(),
		Parts:       w.placement.Parts(),
		Circuit:     circuitState,
		Connections: circuit.DeriveConnections(w.placement, w.pins),
		Simulation:  simState,
		Firmware:    w.firmwareLocked(),
	}
}

// Info returns the workspace's listing entry.
func (w *Workspace) Info() models.WorkspaceInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.infoLocked()
}

func (w *Workspace) infoLocked() models.WorkspaceInfo {
	info := models.WorkspaceInfo{
		ID:        w.ID,
		ViewMode:  w.viewMode,
		PartCount: w.placement.Len(),
		CreatedAt: w.CreatedAt.UnixMilli(),
		Traced:    w.tracer != nil,
	}
	if w.tracer != nil {
		info.EventCount = w.tracer.Len()
	}
	return info
}

// Firmware renders the sketch for the current pin assignment.
func (w *Workspace) Firmware() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.firmwareLocked()
}

// Connections returns the current derived wire list.
func (w *Workspace) Connections() []models.Connection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return circuit.DeriveConnections(w.placement, w.pins)
}

// Circuit returns the current pin assignment state.
func (w *Workspace) Circuit() models.CircuitState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pins.State()
}

// Simulation returns the current simulation state.
func (w *Workspace) Simulation() models.SimulationState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.machine.State()
}

// Parts returns the placed parts in placement order.
func (w *Workspace) Parts() []models.PlacedPart {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.placement.Parts()
}

// ViewMode returns the current editor view.
func (w *Workspace) ViewMode() models.ViewMode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewMode
}

// Tracer returns the trace store, or nil when the workspace runs
// untraced.
func (w *Workspace) Tracer() *trace.Store {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tracer
}

// Close releases the trace store and its backing file. The workspace
// stays usable afterwards, just untraced.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tracer != nil {
		w.tracer.Close()
		w.tracer = nil
	}
	return nil
}
