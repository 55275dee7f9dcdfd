package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytradeapp/momentumapi/internal/broker"
)

type fakeSymbolResolver map[string]int64

func (f fakeSymbolResolver) Resolve(symbol string) (int64, error) {
	if id, ok := f[symbol]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("symbol %q: %w", symbol, ErrSymbolNotFound)
}

type fakeOrderClient struct {
	params   []broker.OrderParams
	response broker.OrderResponse
	err      error
}

func (f *fakeOrderClient) PlaceOrder(ctx context.Context, params broker.OrderParams) (broker.OrderResponse, error) {
	f.params = append(f.params, params)
	return f.response, f.err
}

func acceptedOrderResponse(orderID string) broker.OrderResponse {
	var resp broker.OrderResponse
	resp.Status = "success"
	resp.Data.OrderID = orderID
	return resp
}

func TestPlaceOrderSuccess(t *testing.T) {
	client := &fakeOrderClient{response: acceptedOrderResponse("112111182198")}
	s := NewOrderService(fakeSymbolResolver{"INFY": 1594}, client)

	result := s.PlaceOrder(context.Background(), OrderRequest{
		Symbol: "infy", Action: "BUY", Qty: 10, OrderType: "MARKET",
	})

	require.True(t, result.Success)
	assert.Equal(t, "112111182198", result.OrderID)
	require.Len(t, client.params, 1)
	assert.Equal(t, int64(1594), client.params[0].SecurityID)
}

func TestPlaceOrderUnknownSymbol(t *testing.T) {
	client := &fakeOrderClient{}
	s := NewOrderService(fakeSymbolResolver{}, client)

	result := s.PlaceOrder(context.Background(), OrderRequest{Symbol: "nope", Action: "BUY", Qty: 1})

	require.False(t, result.Success)
	assert.Equal(t, "Symbol 'NOPE' not found.", result.Message)
	assert.Empty(t, client.params, "no submission without a resolved symbol")
}

func TestPlaceOrderRejected(t *testing.T) {
	client := &fakeOrderClient{response: broker.OrderResponse{
		Status:  "failure",
		Remarks: json.RawMessage(`"Insufficient funds"`),
	}}
	s := NewOrderService(fakeSymbolResolver{"INFY": 1594}, client)

	result := s.PlaceOrder(context.Background(), OrderRequest{Symbol: "INFY", Action: "BUY", Qty: 10})

	require.False(t, result.Success)
	assert.Equal(t, "Order Failed: Insufficient funds", result.Message)
}

func TestPlaceOrderTransportError(t *testing.T) {
	client := &fakeOrderClient{err: errors.New("connection refused")}
	s := NewOrderService(fakeSymbolResolver{"INFY": 1594}, client)

	result := s.PlaceOrder(context.Background(), OrderRequest{Symbol: "INFY", Action: "SELL", Qty: 5})

	require.False(t, result.Success)
	assert.Equal(t, "connection refused", result.Message)
}

func TestBuildOrderParamsMarket(t *testing.T) {
	params := BuildOrderParams(OrderRequest{
		Symbol: "INFY", Action: "SELL", Qty: 10,
		Price: 1520, OrderType: "MARKET", ProductType: "INTRADAY",
	}, 1594)

	assert.Equal(t, broker.TransactionSell, params.TransactionType)
	assert.Equal(t, broker.OrderTypeMarket, params.OrderType)
	assert.Equal(t, 0.0, params.Price, "price is dropped for market orders")
	assert.Nil(t, params.TriggerPrice)
	assert.Equal(t, broker.ValidityDay, params.Validity)
	assert.Equal(t, broker.ExchangeSegmentNSEEq, params.ExchangeSegment)

	// The trigger price key must be absent from the wire payload entirely
	payload, err := json.Marshal(params)
	require.NoError(t, err)
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &keys))
	assert.NotContains(t, keys, "trigger_price")
	assert.Contains(t, keys, "price")
}

func TestBuildOrderParamsStopLoss(t *testing.T) {
	params := BuildOrderParams(OrderRequest{
		Symbol: "INFY", Action: "BUY", Qty: 10,
		Price: 1520, OrderType: "SL", TriggerPrice: 1518, ProductType: "CNC",
	}, 1594)

	assert.Equal(t, broker.OrderTypeStopLoss, params.OrderType)
	assert.Equal(t, 1520.0, params.Price)
	require.NotNil(t, params.TriggerPrice)
	assert.Equal(t, 1518.0, *params.TriggerPrice)
	assert.Equal(t, broker.ProductCNC, params.ProductType)
}

func TestBuildOrderParamsLenientDefaults(t *testing.T) {
	params := BuildOrderParams(OrderRequest{
		Symbol: "INFY", Action: "HOLD", Qty: 10,
		Price: 1520, OrderType: "ICEBERG", ProductType: "EXOTIC",
	}, 1594)

	assert.Equal(t, broker.TransactionBuy, params.TransactionType)
	assert.Equal(t, broker.OrderTypeMarket, params.OrderType)
	assert.Equal(t, broker.ProductIntraday, params.ProductType)
	assert.Equal(t, 0.0, params.Price)
}

func TestBuildOrderParamsQuantitySign(t *testing.T) {
	buy := BuildOrderParams(OrderRequest{Action: "BUY", Qty: -10}, 1594)
	assert.Equal(t, 10, buy.Quantity, "buy quantity is made positive")

	sell := BuildOrderParams(OrderRequest{Action: "SELL", Qty: -10}, 1594)
	assert.Equal(t, -10, sell.Quantity, "sell quantity passes through")
}
