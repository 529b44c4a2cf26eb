// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/circuitbench/backend/internal/catalog"
	"github.com/circuitbench/backend/internal/workspace"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Manager        *workspace.Manager
	Catalog        *catalog.Catalog
	Version        string
	WSMaxMessageKB int
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Catalog   CatalogHandler
	Workspace WorkspaceHandler
	Circuit   CircuitHandler
	Sim       SimulationHandler
	Firmware  FirmwareHandler
	Trace     TraceHandler
	WS        *WebSocketHandler
}

// NewHandlers creates all handler instances over one shared broadcast hub,
// so updates applied over REST reach WebSocket subscribers too.
func NewHandlers(deps *Dependencies) *Handlers {
	h := newHub()
	return &Handlers{
		Health:    NewHealthHandler(deps.Version),
		Catalog:   NewCatalogHandler(deps.Catalog),
		Workspace: NewWorkspaceHandler(deps.Manager, h),
		Circuit:   NewCircuitHandler(deps.Manager, h),
		Sim:       NewSimulationHandler(deps.Manager, h),
		Firmware:  NewFirmwareHandler(deps.Manager),
		Trace:     NewTraceHandler(deps.Manager),
		WS:        NewWebSocketHandler(deps.Manager, h, deps.WSMaxMessageKB),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/health", handlers.Health.HandleHealth)

	// Part catalog
	e.GET("/api/catalog", handlers.Catalog.HandleGetCatalog)

	// Workspace lifecycle routes
	wsGroup := e.Group("/api/workspaces")
	wsGroup.POST("", handlers.Workspace.HandleCreateWorkspace)
	wsGroup.GET("", handlers.Workspace.HandleListWorkspaces)
	wsGroup.GET("/:id", handlers.Workspace.HandleGetWorkspace)
	wsGroup.DELETE("/:id", handlers.Workspace.HandleDeleteWorkspace)
	wsGroup.POST("/:id/keepalive", handlers.Workspace.HandleWorkspaceKeepAlive)

	// Circuit editing routes
	wsGroup.POST("/:id/parts", handlers.Circuit.HandlePlacePart)
	wsGroup.PUT("/:id/parts/:partId/position", handlers.Circuit.HandleMovePart)
	wsGroup.GET("/:id/pins", handlers.Circuit.HandleGetPins)
	wsGroup.PUT("/:id/pins/led", handlers.Circuit.HandleSetLedPin)
	wsGroup.PUT("/:id/pins/button", handlers.Circuit.HandleSetButtonPin)
	wsGroup.GET("/:id/connections", handlers.Circuit.HandleGetConnections)
	wsGroup.PUT("/:id/view", handlers.Circuit.HandleSetViewMode)

	// Simulation control routes
	wsGroup.POST("/:id/sim/start", handlers.Sim.HandleStartSim)
	wsGroup.POST("/:id/sim/stop", handlers.Sim.HandleStopSim)
	wsGroup.POST("/:id/sim/button/press", handlers.Sim.HandlePressButton)
	wsGroup.POST("/:id/sim/button/release", handlers.Sim.HandleReleaseButton)
	wsGroup.GET("/:id/sim", handlers.Sim.HandleGetSim)

	// Firmware
	wsGroup.GET("/:id/firmware", handlers.Firmware.HandleGetFirmware)

	// Signal trace routes
	wsGroup.GET("/:id/trace", handlers.Trace.HandleGetTrace)
	wsGroup.GET("/:id/trace/msgpack", handlers.Trace.HandleGetTraceMsgpack)
	wsGroup.GET("/:id/trace/stream", handlers.Trace.HandleTraceStream)
	wsGroup.GET("/:id/trace/values", handlers.Trace.HandleGetTraceValues)
}

// RegisterWebSocketRoutes registers WebSocket routes
func RegisterWebSocketRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/api/ws/workspaces/:id", handlers.WS.HandleWorkspaceSocket)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler
}
