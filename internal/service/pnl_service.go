// Package service contains the service layer for the Momentum API
package service

import (
	"context"
	"fmt"

	"github.com/mytradeapp/momentumapi/internal/broker"
	"github.com/mytradeapp/momentumapi/internal/models"
	"github.com/mytradeapp/momentumapi/pkg/utils/zaplogger"
)

// PositionsClient reads the positions of the trading day
type PositionsClient interface {
	Positions(ctx context.Context) ([]broker.Position, error)
}

// PnLResult is the business outcome of a PnL query
type PnLResult struct {
	Success bool        `json:"success"`
	PnL     *models.PnL `json:"pnl,omitempty"`
	Message string      `json:"message,omitempty"`
}

// PnLService sums the day's realized and unrealized profit over positions
type PnLService struct {
	client PositionsClient
}

// NewPnLService creates a new PnL service
func NewPnLService(client PositionsClient) *PnLService {
	return &PnLService{client: client}
}

// TodayPnL fetches positions and sums realized profit over all of them and
// unrealized profit over open (netQty != 0) ones
func (s *PnLService) TodayPnL(ctx context.Context) PnLResult {
	positions, err := s.client.Positions(ctx)
	if err != nil {
		zaplogger.Error("failed to fetch positions", zaplogger.Fields{"error": err.Error()})
		return PnLResult{Success: false, Message: fmt.Sprintf("Failed to fetch positions: %v", err)}
	}

	var realized, unrealized float64
	for _, pos := range positions {
		realized += pos.RealizedProfit
		if pos.NetQty != 0 {
			unrealized += pos.UnrealizedProfit
		}
	}

	return PnLResult{
		Success: true,
		PnL: &models.PnL{
			Realized:   realized,
			Unrealized: unrealized,
			Total:      realized + unrealized,
		},
	}
}
