package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFundsClient struct {
	balance float64
	err     error
	calls   int
}

func (f *fakeFundsClient) AvailableBalance(ctx context.Context) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.balance, nil
}

type fakeLeverageSource struct {
	mis map[int64]float64
	mtf map[int64]float64
}

func (f *fakeLeverageSource) Leverage(instrumentID int64, productType string) float64 {
	cache := f.mis
	if productType == "MARGIN" {
		cache = f.mtf
	}
	if leverage, ok := cache[instrumentID]; ok {
		return leverage
	}
	return 1.0
}

func newTestSizingService(balance float64) (*SizingService, *fakeFundsClient) {
	funds := &fakeFundsClient{balance: balance}
	leverage := &fakeLeverageSource{
		mis: map[int64]float64{1333: 5.0},
		mtf: map[int64]float64{1333: 4.0},
	}
	return NewSizingService(leverage, funds), funds
}

func TestCalculatePositionSizeRiskCeiling(t *testing.T) {
	// Large fund so the risk budget is the binding constraint
	s, _ := newTestSizingService(10_000_000)

	result := s.CalculatePositionSize(context.Background(), 100, 100, 90, 1333, "INTRADAY")

	require.Equal(t, 100, result.Quantity) // 1000 / 10
	assert.Equal(t, 1000.0, result.ExpectedLoss)
	assert.Equal(t, 10000.0, result.Exposure)
	assert.Equal(t, 5.0, result.Leverage)
}

func TestCalculatePositionSizeFundCeiling(t *testing.T) {
	// Tight fund so the leveraged capital is the binding constraint
	s, _ := newTestSizingService(10000)

	result := s.CalculatePositionSize(context.Background(), 100, 100, 99.5, 1333, "INTRADAY")

	// qty_by_risk = 1000/0.5 = 2000, qty_by_fund = 10000*5/100 = 500
	require.Equal(t, 500, result.Quantity)
	assert.Equal(t, 50000.0, result.Exposure)
	assert.Equal(t, 10000.0, result.AvailableFund)
}

func TestCalculatePositionSizeInvariants(t *testing.T) {
	testCases := []struct {
		desc        string
		balance     float64
		price       float64
		entry       float64
		stop        float64
		productType string
	}{
		{"intraday tight risk", 50000, 250, 250, 248, "INTRADAY"},
		{"intraday tight fund", 2000, 1500, 1480, 1450, "INTRADAY"},
		{"margin", 100000, 900, 905, 890, "MARGIN"},
		{"delivery", 30000, 120, 118, 114, "CNC"},
		{"fractional risk", 75000, 88.35, 88.35, 87.9, "INTRADAY"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			s, _ := newTestSizingService(tc.balance)
			result := s.CalculatePositionSize(context.Background(), tc.price, tc.entry, tc.stop, 1333, tc.productType)

			maxLoss := 1500.0
			if tc.productType == "INTRADAY" {
				maxLoss = 1000.0
			}
			riskDistance := math.Abs(tc.entry - tc.stop)

			assert.LessOrEqual(t, float64(result.Quantity)*riskDistance, maxLoss, "risk ceiling")
			assert.LessOrEqual(t, float64(result.Quantity)*tc.price, tc.balance*result.Leverage, "fund ceiling")
			assert.GreaterOrEqual(t, result.Quantity, 0)
		})
	}
}

func TestCalculatePositionSizeZeroRisk(t *testing.T) {
	s, _ := newTestSizingService(50000)

	result := s.CalculatePositionSize(context.Background(), 100, 100, 100, 1333, "INTRADAY")

	require.Equal(t, 0, result.Quantity)
	assert.Equal(t, 0.0, result.ExpectedLoss)
	assert.Equal(t, 0.0, result.Exposure)
	// The fetched fund is still reported
	assert.Equal(t, 50000.0, result.AvailableFund)
}

func TestCalculatePositionSizeMarginLeverage(t *testing.T) {
	s, _ := newTestSizingService(10000)

	result := s.CalculatePositionSize(context.Background(), 100, 100, 90, 1333, "MARGIN")

	// MTF leverage 4.0, max loss 1500
	assert.Equal(t, 4.0, result.Leverage)
	// qty_by_risk = 150, qty_by_fund = 400
	assert.Equal(t, 150, result.Quantity)
}

func TestCalculatePositionSizeBalanceFetchFailure(t *testing.T) {
	funds := &fakeFundsClient{err: errors.New("provider down")}
	s := NewSizingService(&fakeLeverageSource{}, funds)

	result := s.CalculatePositionSize(context.Background(), 100, 100, 90, 1333, "INTRADAY")

	// Degrades to a zero fund, never an error
	require.Equal(t, 0, result.Quantity)
	assert.Equal(t, 0.0, result.AvailableFund)
}

func TestCalculatePositionSizeZeroPrice(t *testing.T) {
	s, _ := newTestSizingService(50000)

	result := s.CalculatePositionSize(context.Background(), 0, 100, 90, 1333, "INTRADAY")

	require.Equal(t, 0, result.Quantity)
	assert.Equal(t, 50000.0, result.AvailableFund)
}

func TestCalculatePositionSizeEmptyProductTypeIsIntraday(t *testing.T) {
	s, _ := newTestSizingService(10_000_000)

	result := s.CalculatePositionSize(context.Background(), 100, 100, 90, 1333, "")

	// max loss 1000 and MIS leverage
	assert.Equal(t, 100, result.Quantity)
	assert.Equal(t, 5.0, result.Leverage)
}
