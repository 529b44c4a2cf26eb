// handlers_workspace.go - Workspace lifecycle handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// WorkspaceHandlerImpl implements the WorkspaceHandler interface
type WorkspaceHandlerImpl struct {
	manager WorkspaceManager
	hub     *hub
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(manager WorkspaceManager, h *hub) WorkspaceHandler {
	return &WorkspaceHandlerImpl{
		manager: manager,
		hub:     h,
	}
}

// HandleCreateWorkspace starts a fresh workspace and returns its full
// snapshot
func (h *WorkspaceHandlerImpl) HandleCreateWorkspace(c echo.Context) error {
	ws := h.manager.Create()
	return c.JSON(http.StatusCreated, ws.Snapshot())
}

// HandleListWorkspaces returns the listing entries of all workspaces
func (h *WorkspaceHandlerImpl) HandleListWorkspaces(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"workspaces": h.manager.List(),
	})
}

// HandleGetWorkspace returns the full snapshot of one workspace
func (h *WorkspaceHandlerImpl) HandleGetWorkspace(c echo.Context) error {
	id := c.Param("id")
	ws, ok := h.manager.Get(id)
	if !ok {
		return NewNotFoundError("workspace", id)
	}
	h.manager.Touch(id)
	return c.JSON(http.StatusOK, ws.Snapshot())
}

// HandleDeleteWorkspace removes a workspace and its trace storage
func (h *WorkspaceHandlerImpl) HandleDeleteWorkspace(c echo.Context) error {
	id := c.Param("id")
	if !h.manager.Remove(id) {
		return NewNotFoundError("workspace", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleWorkspaceKeepAlive marks a workspace as actively used so cleanup
// skips it
func (h *WorkspaceHandlerImpl) HandleWorkspaceKeepAlive(c echo.Context) error {
	id := c.Param("id")
	if !h.manager.Touch(id) {
		return NewNotFoundError("workspace", id)
	}
	return c.NoContent(http.StatusNoContent)
}
