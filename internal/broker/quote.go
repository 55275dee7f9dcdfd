package broker

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mytradeapp/momentumapi/pkg/utils/zaplogger"
)

// ExchangeSegmentNSEEq is the NSE equities segment
const ExchangeSegmentNSEEq = "NSE_EQ"

// OHLC holds the day candle of a quote
type OHLC struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Quote is a live market quote for one instrument
type Quote struct {
	LastPrice float64 `json:"last_price"`
	OHLC      OHLC    `json:"ohlc"`
	Volume    float64 `json:"volume"`
}

// quoteResponse is the provider envelope, quotes keyed by segment then by
// instrument id rendered as a string
type quoteResponse struct {
	Status string                      `json:"status"`
	Data   map[string]map[string]Quote `json:"data"`
}

// QuoteData fetches live quotes for the given instrument ids in one call.
// Instrument ids the provider does not know are simply absent from the result.
func (c *Client) QuoteData(ctx context.Context, segment string, instrumentIDs []int64) (map[int64]Quote, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}

	reqBody := map[string][]int64{segment: instrumentIDs}
	var resp quoteResponse
	if err := c.doJSON(ctx, http.MethodPost, "/marketfeed/quote", reqBody, &resp); err != nil {
		return nil, err
	}

	quotes := make(map[int64]Quote, len(resp.Data[segment]))
	for idStr, quote := range resp.Data[segment] {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			zaplogger.Warn("skipping quote with non numeric instrument id", zaplogger.Fields{
				"instrument_id": idStr,
			})
			continue
		}
		quotes[id] = quote
	}
	return quotes, nil
}
