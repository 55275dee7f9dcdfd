package broker

import (
	"context"
	"net/http"
)

// Position is an open or squared off position of the trading day
type Position struct {
	TradingSymbol    string  `json:"tradingSymbol"`
	RealizedProfit   float64 `json:"realizedProfit"`
	UnrealizedProfit float64 `json:"unrealizedProfit"`
	NetQty           int64   `json:"netQty"`
}

// Positions returns the positions of the trading day
func (c *Client) Positions(ctx context.Context) ([]Position, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}

	var positions []Position
	if err := c.doJSON(ctx, http.MethodGet, "/positions", nil, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}
