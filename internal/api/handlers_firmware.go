// handlers_firmware.go - Generated sketch handler
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// FirmwareHandlerImpl implements the FirmwareHandler interface
type FirmwareHandlerImpl struct {
	manager WorkspaceManager
}

// NewFirmwareHandler creates a new firmware handler
func NewFirmwareHandler(manager WorkspaceManager) FirmwareHandler {
	return &FirmwareHandlerImpl{
		manager: manager,
	}
}

// HandleGetFirmware returns the sketch for the workspace's current pin
// assignment as plain text, ready to paste into the Arduino IDE
func (h *FirmwareHandlerImpl) HandleGetFirmware(c echo.Context) error {
	id := c.Param("id")
	ws, ok := h.manager.Get(id)
	if !ok {
		return NewNotFoundError("workspace", id)
	}
	h.manager.Touch(id)
	return c.String(http.StatusOK, ws.Firmware())
}
