// handlers_circuit.go - Part placement and pin assignment handlers
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/circuitbench/backend/internal/circuit"
	"github.com/circuitbench/backend/internal/models"
	"github.com/circuitbench/backend/internal/workspace"
)

// CircuitHandlerImpl implements the CircuitHandler interface
type CircuitHandlerImpl struct {
	manager WorkspaceManager
	hub     *hub
}

// NewCircuitHandler creates a new circuit handler
func NewCircuitHandler(manager WorkspaceManager, h *hub) CircuitHandler {
	return &CircuitHandlerImpl{
		manager: manager,
		hub:     h,
	}
}

// applyCommand resolves the workspace, applies one command, and broadcasts
// the resulting update to WebSocket subscribers. Shared by the circuit and
// simulation handlers so both paths behave identically.
func applyCommand(c echo.Context, manager WorkspaceManager, h *hub, cmd workspace.Command) (*models.Update, error) {
	id := c.Param("id")
	ws, ok := manager.Get(id)
	if !ok {
		return nil, NewNotFoundError("workspace", id)
	}
	manager.Touch(id)

	update, err := ws.Apply(cmd)
	if err != nil {
		return nil, mapCommandError(cmd, err)
	}

	h.broadcastUpdate(id, update)
	return update, nil
}

// mapCommandError translates engine sentinels to the HTTP error envelope
func mapCommandError(cmd workspace.Command, err error) error {
	switch {
	case errors.Is(err, circuit.ErrPartAlreadyPlaced):
		return NewConflictError(fmt.Sprintf("a %s part is already placed", cmd.PartType))
	case errors.Is(err, circuit.ErrUnknownPartType):
		return NewBadRequestError(fmt.Sprintf("unknown part type: %s", cmd.PartType), nil)
	case errors.Is(err, circuit.ErrPartNotPlaced):
		return NewConflictError("place the part before assigning its pin")
	case errors.Is(err, circuit.ErrInvalidPin):
		return NewUnprocessableError(fmt.Sprintf("pin %d is not available", cmd.Pin), err)
	case errors.Is(err, workspace.ErrUnknownPart):
		return NewNotFoundError("part", cmd.PartID)
	case errors.Is(err, workspace.ErrInvalidViewMode):
		return NewBadRequestError(fmt.Sprintf("invalid view mode: %s", cmd.View), nil)
	default:
		return NewBadRequestError("command rejected", err)
	}
}

// HandlePlacePart drops a new part onto the canvas
func (h *CircuitHandlerImpl) HandlePlacePart(c echo.Context) error {
	var req placePartRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	update, err := applyCommand(c, h.manager, h.hub, workspace.Command{
		Type:     workspace.CmdPlacePart,
		PartType: req.Type,
		Position: &models.Point{X: req.X, Y: req.Y},
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, update)
}

// HandleMovePart repositions an already placed part
func (h *CircuitHandlerImpl) HandleMovePart(c echo.Context) error {
	var req movePartRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	update, err := applyCommand(c, h.manager, h.hub, workspace.Command{
		Type:     workspace.CmdMovePart,
		PartID:   c.Param("partId"),
		Position: &models.Point{X: req.X, Y: req.Y},
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, update)
}

// HandleGetPins returns the pin assignment and per-role option lists
func (h *CircuitHandlerImpl) HandleGetPins(c echo.Context) error {
	id := c.Param("id")
	ws, ok := h.manager.Get(id)
	if !ok {
		return NewNotFoundError("workspace", id)
	}
	h.manager.Touch(id)
	return c.JSON(http.StatusOK, ws.Circuit())
}

// HandleSetLedPin assigns the LED pin
func (h *CircuitHandlerImpl) HandleSetLedPin(c echo.Context) error {
	return h.setPin(c, workspace.CmdSetLedPin)
}

// HandleSetButtonPin assigns the button pin
func (h *CircuitHandlerImpl) HandleSetButtonPin(c echo.Context) error {
	return h.setPin(c, workspace.CmdSetButtonPin)
}

func (h *CircuitHandlerImpl) setPin(c echo.Context, cmdType workspace.CommandType) error {
	var req setPinRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	update, err := applyCommand(c, h.manager, h.hub, workspace.Command{
		Type: cmdType,
		Pin:  req.Pin,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, update)
}

// HandleGetConnections returns the derived wire list
func (h *CircuitHandlerImpl) HandleGetConnections(c echo.Context) error {
	id := c.Param("id")
	ws, ok := h.manager.Get(id)
	if !ok {
		return NewNotFoundError("workspace", id)
	}
	h.manager.Touch(id)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"connections": ws.Connections(),
	})
}

// HandleSetViewMode switches between the component canvas and the code
// view
func (h *CircuitHandlerImpl) HandleSetViewMode(c echo.Context) error {
	var req setViewRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.View == "" {
		return NewValidationError("view")
	}

	update, err := applyCommand(c, h.manager, h.hub, workspace.Command{
		Type: workspace.CmdSetViewMode,
		View: req.View,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, update)
}

// Request types

type placePartRequest struct {
	Type models.PartType `json:"type"`
	X    int             `json:"x"`
	Y    int             `json:"y"`
}

func (r *placePartRequest) validate() error {
	if r.Type == "" {
		return NewValidationError("type")
	}
	return nil
}

type movePartRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type setPinRequest struct {
	Pin int `json:"pin"`
}

func (r *setPinRequest) validate() error {
	if r.Pin == 0 {
		return NewValidationError("pin")
	}
	return nil
}

type setViewRequest struct {
	View models.ViewMode `json:"view"`
}
