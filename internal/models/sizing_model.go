// Package models contains the models for the Momentum API
package models

// PositionSize is the result of the mixed risk/fund sizing calculation.
// Quantity is the binding minimum of the risk based and fund based ceilings.
type PositionSize struct {
	Quantity      int     `json:"quantity"`
	ExpectedLoss  float64 `json:"expected_loss"`
	Exposure      float64 `json:"exposure"`
	Leverage      float64 `json:"leverage"`
	AvailableFund float64 `json:"available_fund"`
}

// PnL is the intraday profit and loss summary across positions
type PnL struct {
	Realized   float64 `json:"realized_pnl"`
	Unrealized float64 `json:"unrealized_pnl"`
	Total      float64 `json:"total_pnl"`
}
