// handlers_firmware_test.go - Tests for the generated sketch handler
package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/circuitbench/backend/internal/models"
	"github.com/circuitbench/backend/internal/testutil"
	"github.com/circuitbench/backend/internal/workspace"
)

func TestFirmwareHandler_HandleGetFirmware(t *testing.T) {
	t.Run("returns the sketch as plain text", func(t *testing.T) {
		manager := testutil.NewMockManager()
		handler := NewFirmwareHandler(manager)
		ws := manager.Create()

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/workspaces/:id/firmware", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(ws.ID)

		if assert.NoError(t, handler.HandleGetFirmware(c)) {
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

			body := rec.Body.String()
			assert.Contains(t, body, "const int LED_PIN = 10;")
			assert.Contains(t, body, "const int BUTTON_PIN = 2;")
			assert.Contains(t, body, "void setup()")
			assert.Equal(t, 1, manager.TouchCount(ws.ID))
		}
	})

	t.Run("sketch follows the pin assignment", func(t *testing.T) {
		manager := testutil.NewMockManager()
		handler := NewFirmwareHandler(manager)
		ws := manager.Create()

		seedPart(t, ws, models.PartLed)
		if _, err := ws.Apply(workspace.Command{Type: workspace.CmdSetLedPin, Pin: 7}); err != nil {
			t.Fatalf("Failed to set led pin: %v", err)
		}

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/workspaces/:id/firmware", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(ws.ID)

		if assert.NoError(t, handler.HandleGetFirmware(c)) {
			assert.Contains(t, rec.Body.String(), "const int LED_PIN = 7;")
		}
	})

	t.Run("unknown workspace is a 404", func(t *testing.T) {
		manager := testutil.NewMockManager()
		handler := NewFirmwareHandler(manager)

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/workspaces/:id/firmware", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("missing")

		err := handler.HandleGetFirmware(c)
		if assert.Error(t, err) {
			apiErr, ok := err.(*APIError)
			if assert.True(t, ok, "expected APIError, got %T", err) {
				assert.Equal(t, http.StatusNotFound, apiErr.Status)
			}
		}
	})
}
