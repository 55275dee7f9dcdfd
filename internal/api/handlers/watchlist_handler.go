// Package handlers contains the handlers for the API
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mytradeapp/momentumapi/internal/service"
	"github.com/mytradeapp/momentumapi/pkg/utils/response"
)

// WatchlistHandler is the handler for the watchlist API
type WatchlistHandler struct {
	service *service.WatchlistService
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(service *service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{service: service}
}

// GetWatchlist refreshes quotes (reusing the cache window) and returns the
// enriched rows
func (h *WatchlistHandler) GetWatchlist(c echo.Context) error {
	rows, err := h.service.Refresh(c.Request().Context(), false)
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.SuccessResponse(c, rows)
}

// RefreshWatchlist forces a fresh quote fetch and returns the enriched rows
func (h *WatchlistHandler) RefreshWatchlist(c echo.Context) error {
	rows, err := h.service.Refresh(c.Request().Context(), true)
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.SuccessResponse(c, rows)
}

// AddStockParams is the request body for AddStock
type AddStockParams struct {
	Stock      string `json:"stock" form:"stock"`
	EntryPrice string `json:"entry_price" form:"entry_price"`
}

// AddStock appends a stock to the watchlist
func (h *WatchlistHandler) AddStock(c echo.Context) error {
	var params AddStockParams
	if err := c.Bind(&params); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid request body")
	}
	if params.Stock == "" || params.EntryPrice == "" {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Missing stock or entry_price")
	}

	if err := h.service.Add(params.Stock, params.EntryPrice); err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.SuccessResponse(c, fmt.Sprintf("%s added successfully", params.Stock))
}

// UpdateStockParams is the request body for UpdateStock
type UpdateStockParams struct {
	Field string `json:"field" form:"field"`
	Value string `json:"value" form:"value"`
}

// UpdateStock edits one field of the row at :index
func (h *WatchlistHandler) UpdateStock(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid index, must be digits")
	}

	var params UpdateStockParams
	if err := c.Bind(&params); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid request body")
	}

	if err := h.service.Update(index, params.Field, params.Value); err != nil {
		if errors.Is(err, service.ErrIndexOutOfRange) || errors.Is(err, service.ErrUnknownField) {
			return response.ErrorResponse(c, http.StatusBadRequest, "InputException", err.Error())
		}
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.SuccessResponse(c, fmt.Sprintf("Stock at index %d updated", index))
}

// DeleteStock removes the row at :index
func (h *WatchlistHandler) DeleteStock(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid index, must be digits")
	}

	if err := h.service.Delete(index); err != nil {
		if errors.Is(err, service.ErrIndexOutOfRange) {
			return response.ErrorResponse(c, http.StatusBadRequest, "InputException", err.Error())
		}
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.SuccessResponse(c, fmt.Sprintf("Stock at index %d deleted", index))
}

// MarkAutoBuyParams is the request body for MarkAutoBuy
type MarkAutoBuyParams struct {
	Symbol string `json:"symbol" form:"symbol"`
}

// MarkAutoBuy sets the sticky AUTO_BUYED marker for a symbol
func (h *WatchlistHandler) MarkAutoBuy(c echo.Context) error {
	var params MarkAutoBuyParams
	if err := c.Bind(&params); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid request body")
	}
	if params.Symbol == "" {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Missing symbol")
	}

	if err := h.service.MarkAutoBuy(params.Symbol); err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.SuccessResponse(c, fmt.Sprintf("%s marked as AUTO_BUYED", params.Symbol))
}

// GetAutoBuyStatus returns the names of AUTO_BUYED rows
func (h *WatchlistHandler) GetAutoBuyStatus(c echo.Context) error {
	autoBought, err := h.service.AutoBuyStatus()
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}
	return response.SuccessResponse(c, map[string]interface{}{
		"auto_bought_stocks": autoBought,
	})
}
