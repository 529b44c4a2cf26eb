// handlers_sim.go - Simulation control handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/circuitbench/backend/internal/workspace"
)

// SimulationHandlerImpl implements the SimulationHandler interface
type SimulationHandlerImpl struct {
	manager WorkspaceManager
	hub     *hub
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(manager WorkspaceManager, h *hub) SimulationHandler {
	return &SimulationHandlerImpl{
		manager: manager,
		hub:     h,
	}
}

// HandleStartSim starts the simulation
func (h *SimulationHandlerImpl) HandleStartSim(c echo.Context) error {
	return h.applySim(c, workspace.CmdStartSim)
}

// HandleStopSim halts the simulation and releases the button
func (h *SimulationHandlerImpl) HandleStopSim(c echo.Context) error {
	return h.applySim(c, workspace.CmdStopSim)
}

// HandlePressButton holds the simulated button down. While the simulation
// is stopped or no button is placed this succeeds without changing
// anything, mirroring a click on a dead control.
func (h *SimulationHandlerImpl) HandlePressButton(c echo.Context) error {
	return h.applySim(c, workspace.CmdPressButton)
}

// HandleReleaseButton lifts the simulated button
func (h *SimulationHandlerImpl) HandleReleaseButton(c echo.Context) error {
	return h.applySim(c, workspace.CmdReleaseButton)
}

func (h *SimulationHandlerImpl) applySim(c echo.Context, cmdType workspace.CommandType) error {
	update, err := applyCommand(c, h.manager, h.hub, workspace.Command{Type: cmdType})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, update)
}

// HandleGetSim returns the current simulation state
func (h *SimulationHandlerImpl) HandleGetSim(c echo.Context) error {
	id := c.Param("id")
	ws, ok := h.manager.Get(id)
	if !ok {
		return NewNotFoundError("workspace", id)
	}
	h.manager.Touch(id)
	return c.JSON(http.StatusOK, ws.Simulation())
}
