// handlers_catalog_test.go - Tests for part catalog handlers
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/circuitbench/backend/internal/catalog"
	"github.com/circuitbench/backend/internal/models"
)

func TestCatalogHandler_HandleGetCatalog(t *testing.T) {
	handler := NewCatalogHandler(catalog.Default())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, handler.HandleGetCatalog(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)

		var response struct {
			Parts []models.PartDef `json:"parts"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to unmarshal catalog: %v", err)
		}

		if assert.Len(t, response.Parts, 3) {
			assert.Equal(t, models.PartController, response.Parts[0].Type)
			assert.Equal(t, "Microcontroller", response.Parts[0].Label)
			assert.Equal(t, models.PartLed, response.Parts[1].Type)
			assert.Equal(t, models.PartButton, response.Parts[2].Type)
			assert.Equal(t, models.Point{X: -20, Y: -28}, response.Parts[1].DropOffset)
		}
	}
}
