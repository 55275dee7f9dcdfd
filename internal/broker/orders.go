package broker

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Codes accepted by the order API
const (
	TransactionBuy  = "BUY"
	TransactionSell = "SELL"

	OrderTypeMarket   = "MARKET"
	OrderTypeLimit    = "LIMIT"
	OrderTypeStopLoss = "STOP_LOSS"

	ProductIntraday = "INTRADAY"
	ProductCNC      = "CNC"
	ProductMargin   = "MARGIN"

	ValidityDay = "DAY"
)

// OrderParams is the payload submitted to the order API. TriggerPrice is a
// pointer so the key is absent entirely for non stop loss orders.
type OrderParams struct {
	SecurityID       int64    `json:"security_id"`
	ExchangeSegment  string   `json:"exchange_segment"`
	TransactionType  string   `json:"transaction_type"`
	OrderType        string   `json:"order_type"`
	Quantity         int      `json:"quantity"`
	ProductType      string   `json:"product_type"`
	Price            float64  `json:"price"`
	TriggerPrice     *float64 `json:"trigger_price,omitempty"`
	AfterMarketOrder bool     `json:"after_market_order"`
	DisclosedQty     int      `json:"disclosed_quantity"`
	Validity         string   `json:"validity"`
}

// OrderResponse is the provider's reply to an order submission
type OrderResponse struct {
	Status string `json:"status"`
	Data   struct {
		OrderID string `json:"orderId"`
	} `json:"data"`
	Remarks json.RawMessage `json:"remarks,omitempty"`
}

// RemarksString renders the remarks field, which the provider serves either
// as a string or as a structured object
func (r OrderResponse) RemarksString() string {
	if len(r.Remarks) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Remarks, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(r.Remarks))
}

// PlaceOrder submits an order and returns the provider's reply
func (c *Client) PlaceOrder(ctx context.Context, params OrderParams) (OrderResponse, error) {
	if c == nil {
		return OrderResponse{}, ErrNotConfigured
	}

	var resp OrderResponse
	if err := c.doJSON(ctx, http.MethodPost, "/orders", params, &resp); err != nil {
		return OrderResponse{}, err
	}
	return resp, nil
}
