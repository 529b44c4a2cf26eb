// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/circuitbench/backend/internal/models"
	"github.com/circuitbench/backend/internal/workspace"
)

// CatalogHandler serves the part catalog
type CatalogHandler interface {
	HandleGetCatalog(c echo.Context) error
}

// WorkspaceHandler handles workspace lifecycle operations
type WorkspaceHandler interface {
	HandleCreateWorkspace(c echo.Context) error
	HandleListWorkspaces(c echo.Context) error
	HandleGetWorkspace(c echo.Context) error
	HandleDeleteWorkspace(c echo.Context) error
	HandleWorkspaceKeepAlive(c echo.Context) error
}

// CircuitHandler handles part placement and pin assignment operations
type CircuitHandler interface {
	HandlePlacePart(c echo.Context) error
	HandleMovePart(c echo.Context) error
	HandleGetPins(c echo.Context) error
	HandleSetLedPin(c echo.Context) error
	HandleSetButtonPin(c echo.Context) error
	HandleGetConnections(c echo.Context) error
	HandleSetViewMode(c echo.Context) error
}

// SimulationHandler handles simulation control operations
type SimulationHandler interface {
	HandleStartSim(c echo.Context) error
	HandleStopSim(c echo.Context) error
	HandlePressButton(c echo.Context) error
	HandleReleaseButton(c echo.Context) error
	HandleGetSim(c echo.Context) error
}

// FirmwareHandler serves the generated sketch
type FirmwareHandler interface {
	HandleGetFirmware(c echo.Context) error
}

// TraceHandler handles signal trace queries
type TraceHandler interface {
	HandleGetTrace(c echo.Context) error
	HandleGetTraceMsgpack(c echo.Context) error
	HandleTraceStream(c echo.Context) error
	HandleGetTraceValues(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// WorkspaceManager defines the interface for workspace management
// This allows mocking in tests
type WorkspaceManager interface {
	Create() *workspace.Workspace
	Get(id string) (*workspace.Workspace, bool)
	Touch(id string) bool
	Remove(id string) bool
	List() []models.WorkspaceInfo
}
