// Package handlers contains the handlers for the API
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mytradeapp/momentumapi/internal/service"
	"github.com/mytradeapp/momentumapi/pkg/utils/response"
)

// MappingHandler is the handler for the instrument mapping API
type MappingHandler struct {
	resolver *service.ResolverService
}

// NewMappingHandler creates a new mapping handler
func NewMappingHandler(resolver *service.ResolverService) *MappingHandler {
	return &MappingHandler{resolver: resolver}
}

// ResolveSymbol resolves a symbol to its instrument id
func (h *MappingHandler) ResolveSymbol(c echo.Context) error {
	symbol := strings.ToUpper(strings.TrimSpace(c.QueryParam("symbol")))
	if symbol == "" {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "`symbol` is required")
	}

	instrumentID, err := h.resolver.Resolve(symbol)
	if err != nil {
		if errors.Is(err, service.ErrSymbolNotFound) {
			return response.ErrorResponse(c, http.StatusNotFound, "DataNotFound", fmt.Sprintf("Symbol '%s' not found", symbol))
		}
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}

	return response.SuccessResponse(c, map[string]interface{}{
		"symbol":        symbol,
		"instrument_id": instrumentID,
	})
}

// RebuildMapping force rebuilds the mapping caches from the backing tables
func (h *MappingHandler) RebuildMapping(c echo.Context) error {
	if err := h.resolver.Build(true); err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.SuccessResponse(c, map[string]interface{}{
		"symbols": h.resolver.Size(),
	})
}

// MappingStatus returns the size of the mapping cache
func (h *MappingHandler) MappingStatus(c echo.Context) error {
	return response.SuccessResponse(c, map[string]interface{}{
		"symbols": h.resolver.Size(),
	})
}
