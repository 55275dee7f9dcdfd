// Package service contains the service layer for the Momentum API
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mytradeapp/momentumapi/internal/broker"
	"github.com/mytradeapp/momentumapi/pkg/utils/zaplogger"
)

// SymbolResolver resolves a symbol to an instrument id
type SymbolResolver interface {
	Resolve(symbol string) (int64, error)
}

// OrderClient submits orders to the provider
type OrderClient interface {
	PlaceOrder(ctx context.Context, params broker.OrderParams) (broker.OrderResponse, error)
}

// OrderRequest is the normalized order input
type OrderRequest struct {
	Symbol       string  `json:"symbol"`
	Action       string  `json:"action"`
	Qty          int     `json:"qty"`
	Price        float64 `json:"limit_price"`
	ProductType  string  `json:"product_type"`
	OrderType    string  `json:"order_type"`
	TriggerPrice float64 `json:"trigger_price"`
}

// OrderResult is the business outcome of an order submission. Submission
// failures are results, not errors.
type OrderResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Provider code lookups. Unrecognized inputs fall back to BUY, MARKET and
// INTRADAY, lenient parsing is deliberate.
var (
	transactionCodes = map[string]string{
		"BUY":  broker.TransactionBuy,
		"SELL": broker.TransactionSell,
	}
	orderTypeCodes = map[string]string{
		"MARKET": broker.OrderTypeMarket,
		"LIMIT":  broker.OrderTypeLimit,
		"SL":     broker.OrderTypeStopLoss,
	}
	productCodes = map[string]string{
		"INTRADAY": broker.ProductIntraday,
		"CNC":      broker.ProductCNC,
		"MARGIN":   broker.ProductMargin,
	}
)

// OrderService builds provider order payloads and submits them
type OrderService struct {
	resolver SymbolResolver
	client   OrderClient
}

// NewOrderService creates a new order service
func NewOrderService(resolver SymbolResolver, client OrderClient) *OrderService {
	return &OrderService{resolver: resolver, client: client}
}

// PlaceOrder resolves the symbol, builds the provider payload and submits
// it. All failures, including provider errors, come back as a result.
func (s *OrderService) PlaceOrder(ctx context.Context, req OrderRequest) OrderResult {
	symbol := normalizeSymbol(req.Symbol)

	securityID, err := s.resolver.Resolve(symbol)
	if err != nil {
		if !errors.Is(err, ErrSymbolNotFound) {
			zaplogger.Error("symbol resolution failed", zaplogger.Fields{
				"symbol": symbol,
				"error":  err.Error(),
			})
		}
		return OrderResult{Success: false, Message: fmt.Sprintf("Symbol '%s' not found.", symbol)}
	}

	params := BuildOrderParams(req, securityID)
	zaplogger.Info("placing order", zaplogger.Fields{
		"symbol":      symbol,
		"security_id": securityID,
		"order_type":  params.OrderType,
		"quantity":    params.Quantity,
	})

	resp, err := s.client.PlaceOrder(ctx, params)
	if err != nil {
		zaplogger.Error("order submission failed", zaplogger.Fields{
			"symbol": symbol,
			"error":  err.Error(),
		})
		return OrderResult{Success: false, Message: err.Error()}
	}

	if resp.Status == "success" {
		zaplogger.Info("order placed", zaplogger.Fields{
			"symbol":   symbol,
			"order_id": resp.Data.OrderID,
		})
		return OrderResult{Success: true, OrderID: resp.Data.OrderID}
	}

	remarks := resp.RemarksString()
	if remarks == "" {
		remarks = resp.Status
	}
	zaplogger.Warn("order rejected", zaplogger.Fields{
		"symbol":  symbol,
		"remarks": remarks,
	})
	return OrderResult{Success: false, Message: fmt.Sprintf("Order Failed: %s", remarks)}
}

// BuildOrderParams maps normalized order fields to provider codes. Price is
// carried only for LIMIT and SL orders, the trigger price only for SL.
func BuildOrderParams(req OrderRequest, securityID int64) broker.OrderParams {
	transaction := strings.ToUpper(strings.TrimSpace(req.Action))
	orderType := strings.ToUpper(strings.TrimSpace(req.OrderType))
	product := strings.ToUpper(strings.TrimSpace(req.ProductType))

	qty := req.Qty
	if transaction == "BUY" && qty < 0 {
		qty = -qty
	}

	transactionCode, ok := transactionCodes[transaction]
	if !ok {
		transactionCode = broker.TransactionBuy
	}
	orderTypeCode, ok := orderTypeCodes[orderType]
	if !ok {
		orderTypeCode = broker.OrderTypeMarket
	}
	productCode, ok := productCodes[product]
	if !ok {
		productCode = broker.ProductIntraday
	}

	price := 0.0
	if orderType == "LIMIT" || orderType == "SL" {
		price = req.Price
	}

	params := broker.OrderParams{
		SecurityID:       securityID,
		ExchangeSegment:  broker.ExchangeSegmentNSEEq,
		TransactionType:  transactionCode,
		OrderType:        orderTypeCode,
		Quantity:         qty,
		ProductType:      productCode,
		Price:            price,
		AfterMarketOrder: false,
		DisclosedQty:     0,
		Validity:         broker.ValidityDay,
	}
	if orderType == "SL" {
		trigger := req.TriggerPrice
		params.TriggerPrice = &trigger
	}
	return params
}
