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

// OrderHandler is the handler for the sizing, order and PnL APIs
type OrderHandler struct {
	resolver *service.ResolverService
	sizing   *service.SizingService
	orders   *service.OrderService
	pnl      *service.PnLService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(resolver *service.ResolverService, sizing *service.SizingService, orders *service.OrderService, pnl *service.PnLService) *OrderHandler {
	return &OrderHandler{
		resolver: resolver,
		sizing:   sizing,
		orders:   orders,
		pnl:      pnl,
	}
}

// PositionSizeParams is the request body for PositionSize
type PositionSizeParams struct {
	Symbol      string  `json:"symbol"`
	Entry       float64 `json:"entry"`
	SlPrice     float64 `json:"sl_price"`
	ProductType string  `json:"product_type"`
}

// PositionSize resolves the symbol and returns the sized quantity with the
// binding constraints
func (h *OrderHandler) PositionSize(c echo.Context) error {
	var params PositionSizeParams
	if err := c.Bind(&params); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid request body")
	}

	symbol := strings.ToUpper(strings.TrimSpace(params.Symbol))
	securityID, err := h.resolver.Resolve(symbol)
	if err != nil {
		if errors.Is(err, service.ErrSymbolNotFound) {
			return response.ErrorResponse(c, http.StatusNotFound, "DataNotFound", fmt.Sprintf("Symbol '%s' not found", symbol))
		}
		return response.ErrorResponse(c, http.StatusInternalServerError, "ServerException", err.Error())
	}

	// Sized at the entry price, matching the sizing form
	result := h.sizing.CalculatePositionSize(c.Request().Context(), params.Entry, params.Entry, params.SlPrice, securityID, params.ProductType)
	return response.SuccessResponse(c, result)
}

// PlaceOrder validates the input and submits the order. The submission
// outcome, success or failure, is carried inside the response data.
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	var req service.OrderRequest
	if err := c.Bind(&req); err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid request body")
	}

	action := strings.ToUpper(strings.TrimSpace(req.Action))
	if req.Symbol == "" || (action != "BUY" && action != "SELL") || req.Qty <= 0 || req.Price <= 0 {
		return response.ErrorResponse(c, http.StatusBadRequest, "InputException", "Invalid input")
	}

	result := h.orders.PlaceOrder(c.Request().Context(), req)
	return response.SuccessResponse(c, result)
}

// TodayPnL returns the day's realized and unrealized PnL
func (h *OrderHandler) TodayPnL(c echo.Context) error {
	result := h.pnl.TodayPnL(c.Request().Context())
	if !result.Success {
		return response.ErrorResponse(c, http.StatusInternalServerError, "ProviderException", result.Message)
	}
	return response.SuccessResponse(c, result.PnL)
}
