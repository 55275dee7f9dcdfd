// Package service contains the service layer for the Momentum API
package service

import (
	"context"
	"math"
	"strings"

	"github.com/mytradeapp/momentumapi/internal/broker"
	"github.com/mytradeapp/momentumapi/internal/models"
	"github.com/mytradeapp/momentumapi/pkg/utils/zaplogger"
)

// Fixed risk budget per trade
const (
	maxLossIntraday = 1000.0
	maxLossOther    = 1500.0
)

// FundsClient reads the account balance
type FundsClient interface {
	AvailableBalance(ctx context.Context) (float64, error)
}

// LeverageSource provides per instrument leverage factors
type LeverageSource interface {
	Leverage(instrumentID int64, productType string) float64
}

// SizingService computes order quantities under two independent ceilings, the
// risk budget and the leveraged fund, and takes the binding minimum
type SizingService struct {
	leverage LeverageSource
	funds    FundsClient
}

// NewSizingService creates a new sizing service
func NewSizingService(leverage LeverageSource, funds FundsClient) *SizingService {
	return &SizingService{leverage: leverage, funds: funds}
}

// CalculatePositionSize sizes an order for the given entry and stop prices.
// A zero risk distance or a non positive price yields quantity 0, never an
// error. The balance fetch degrades to 0.0 on failure.
func (s *SizingService) CalculatePositionSize(ctx context.Context, price, entry, stopPrice float64, instrumentID int64, productType string) models.PositionSize {
	fund := s.availableFund(ctx)

	riskDistance := math.Abs(entry - stopPrice)
	if riskDistance == 0 {
		return models.PositionSize{Leverage: 1.0, AvailableFund: fund}
	}

	ptype := strings.ToUpper(strings.TrimSpace(productType))
	if ptype == "" {
		ptype = broker.ProductIntraday
	}
	maxLoss := maxLossOther
	if ptype == broker.ProductIntraday {
		maxLoss = maxLossIntraday
	}
	qtyByRisk := int(maxLoss / riskDistance)

	leverage := 1.0
	if s.leverage != nil {
		leverage = s.leverage.Leverage(instrumentID, ptype)
	}

	if price <= 0 {
		return models.PositionSize{Leverage: leverage, AvailableFund: fund}
	}
	qtyByFund := int(fund * leverage / price)

	quantity := qtyByRisk
	if qtyByFund < quantity {
		quantity = qtyByFund
	}

	return models.PositionSize{
		Quantity:      quantity,
		ExpectedLoss:  float64(quantity) * riskDistance,
		Exposure:      float64(quantity) * price,
		Leverage:      leverage,
		AvailableFund: fund,
	}
}

// availableFund fetches the account balance, substituting 0.0 when the
// provider is unavailable
func (s *SizingService) availableFund(ctx context.Context) float64 {
	if s.funds == nil {
		return 0
	}
	balance, err := s.funds.AvailableBalance(ctx)
	if err != nil {
		zaplogger.Error("failed to fetch available balance", zaplogger.Fields{
			"error": err.Error(),
		})
		return 0
	}
	return balance
}
