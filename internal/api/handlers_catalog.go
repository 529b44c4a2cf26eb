// handlers_catalog.go - Part catalog handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/circuitbench/backend/internal/catalog"
)

// CatalogHandlerImpl implements the CatalogHandler interface
type CatalogHandlerImpl struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(cat *catalog.Catalog) CatalogHandler {
	return &CatalogHandlerImpl{
		catalog: cat,
	}
}

// HandleGetCatalog returns the placeable part definitions in palette order
func (h *CatalogHandlerImpl) HandleGetCatalog(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"parts": h.catalog.Parts(),
	})
}
