// Package service contains the service layer for the Momentum API
package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mytradeapp/momentumapi/internal/broker"
	"github.com/mytradeapp/momentumapi/internal/models"
	"github.com/mytradeapp/momentumapi/pkg/utils/zaplogger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// WatchlistUpdatesChannel is the Redis channel reconciled rows are published to
const WatchlistUpdatesChannel = "watchlist:updates"

// breakoutTimeLayout is the wall clock stamp of a breakout detection
const breakoutTimeLayout = "15:04:05"

// Validation errors for watchlist edits
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownField    = errors.New("unknown field")
)

// WatchlistStore persists the watchlist as one unit
type WatchlistStore interface {
	Load() ([]models.WatchlistRowModel, error)
	Save(rows []models.WatchlistRowModel) error
}

// InstrumentSource looks up mapped instrument info for a symbol
type InstrumentSource interface {
	Info(symbol string) (models.InstrumentInfo, bool)
}

// QuoteSource provides live quotes for instrument ids
type QuoteSource interface {
	LiveQuotes(ctx context.Context, instrumentIDs []int64, force bool) map[int64]broker.Quote
}

// WatchlistService owns the watchlist lifecycle: explicit edits, the auto buy
// marker and quote reconciliation. The watchlist persistence is a full
// document read-modify-write, the service mutex serializes writers.
type WatchlistService struct {
	store       WatchlistStore
	instruments InstrumentSource
	quotes      QuoteSource
	redisClient *redis.Client

	mu  sync.Mutex
	now func() time.Time
}

// NewWatchlistService creates a new watchlist service
func NewWatchlistService(store WatchlistStore, instruments InstrumentSource, quotes QuoteSource, redisClient *redis.Client) *WatchlistService {
	return &WatchlistService{
		store:       store,
		instruments: instruments,
		quotes:      quotes,
		redisClient: redisClient,
		now:         time.Now,
	}
}

// List returns the persisted watchlist without refreshing quotes
func (s *WatchlistService) List() ([]models.WatchlistRowModel, error) {
	return s.store.Load()
}

// Add appends a row for a stock. Instrument id and leverages come from the
// mapping if the symbol is mapped, unmapped symbols get zero values and are
// resolved again on reconciliation.
func (s *WatchlistService) Add(stockName, entryPrice string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.store.Load()
	if err != nil {
		return err
	}

	row := models.WatchlistRowModel{
		StockName:  stockName,
		EntryPrice: entryPrice,
	}
	if info, ok := s.instruments.Info(stockName); ok {
		row.InstrumentID = info.InstrumentID
		row.MISLeverage = info.MISLeverage
		row.MTFLeverage = info.MTFLeverage
	}

	rows = append(rows, row)
	return s.store.Save(rows)
}

// Delete removes the row at index
func (s *WatchlistService) Delete(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.store.Load()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(rows) {
		return ErrIndexOutOfRange
	}

	rows = append(rows[:index], rows[index+1:]...)
	return s.store.Save(rows)
}

// Update edits one field of the row at index
func (s *WatchlistService) Update(index int, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.store.Load()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(rows) {
		return ErrIndexOutOfRange
	}

	row := &rows[index]
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "stock_name":
		row.StockName = value
	case "entry_price":
		row.EntryPrice = value
	case "time":
		row.Time = value
	case "breakout":
		row.Breakout = value
	case "action":
		row.Action = models.Action(value)
	default:
		return ErrUnknownField
	}

	return s.store.Save(rows)
}

// MarkAutoBuy sets the sticky AUTO_BUYED marker on the first row matching the
// symbol. Reconciliation never downgrades it.
func (s *WatchlistService) MarkAutoBuy(symbol string) error {
	sym := normalizeSymbol(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.store.Load()
	if err != nil {
		return err
	}
	for i := range rows {
		if normalizeSymbol(rows[i].StockName) == sym {
			rows[i].Action = models.ActionAutoBuy
			break
		}
	}
	if err := s.store.Save(rows); err != nil {
		return err
	}

	zaplogger.Info("marked stock as auto bought", zaplogger.Fields{"symbol": sym})
	return nil
}

// AutoBuyStatus returns the names of rows carrying the AUTO_BUYED marker
func (s *WatchlistService) AutoBuyStatus() ([]string, error) {
	rows, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	autoBought := make([]string, 0)
	for _, row := range rows {
		if row.Action == models.ActionAutoBuy {
			autoBought = append(autoBought, row.StockName)
		}
	}
	return autoBought, nil
}

// Refresh fetches live quotes for all mapped rows and reconciles them into
// the watchlist. force bypasses the quote cache window.
func (s *WatchlistService) Refresh(ctx context.Context, force bool) ([]models.WatchlistRowModel, error) {
	rows, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	instrumentIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		id := row.InstrumentID
		if id == 0 {
			if info, ok := s.instruments.Info(row.StockName); ok {
				id = info.InstrumentID
			}
		}
		if id != 0 {
			instrumentIDs = append(instrumentIDs, id)
		}
	}

	quotes := s.quotes.LiveQuotes(ctx, instrumentIDs, force)
	return s.Reconcile(ctx, quotes)
}

// Reconcile merges live quotes into the watchlist, computes breakout and
// action state and persists the full list. Rows without a quote are zeroed,
// stale values are never preserved.
func (s *WatchlistService) Reconcile(ctx context.Context, quotes map[int64]broker.Quote) ([]models.WatchlistRowModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	for i := range rows {
		row := &rows[i]

		instrumentID := row.InstrumentID
		if instrumentID == 0 {
			if info, ok := s.instruments.Info(row.StockName); ok {
				instrumentID = info.InstrumentID
				row.InstrumentID = instrumentID
				row.MISLeverage = info.MISLeverage
				row.MTFLeverage = info.MTFLeverage
			}
		}

		quote, ok := quotes[instrumentID]
		if ok && instrumentID != 0 {
			applyQuote(row, quote)
		} else {
			row.LTP = 0
			row.High = 0
			row.Low = 0
			row.PctChange = 0
			row.OHLC = nil
		}

		breakout := isBreakout(row.LTP, row.EntryPrice)
		if breakout {
			row.Breakout = models.BreakoutYes
		} else {
			row.Breakout = models.BreakoutNo
		}

		// Re-stamped on every pass while still breaking out, the field reads
		// as "last seen breaking out at"
		if breakout && row.Action != models.ActionAutoBuy {
			row.Time = s.now().Format(breakoutTimeLayout)
		}
		row.Action = row.Action.Transition(breakout)
	}

	if err := s.store.Save(rows); err != nil {
		return nil, err
	}
	s.publish(ctx, rows)

	return rows, nil
}

// applyQuote overwrites the quote derived fields of a row
func applyQuote(row *models.WatchlistRowModel, quote broker.Quote) {
	ltp := quote.LastPrice
	high := quote.OHLC.High
	if high == 0 {
		high = ltp
	}
	low := quote.OHLC.Low
	if low == 0 {
		low = ltp
	}

	row.LTP = ltp
	row.High = high
	row.Low = low
	row.PctChange = percentChange(ltp, quote.OHLC.Close)

	if ohlcJSON, err := json.Marshal(quote.OHLC); err == nil {
		row.OHLC = datatypes.JSON(ohlcJSON)
	}
}

// percentChange is the move from the previous close, rounded to 2 decimals.
// A zero previous close yields 0.
func percentChange(ltp, prevClose float64) float64 {
	if prevClose == 0 {
		return 0
	}
	change := decimal.NewFromFloat(ltp).
		Sub(decimal.NewFromFloat(prevClose)).
		Div(decimal.NewFromFloat(prevClose)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	result, _ := change.Float64()
	return result
}

// isBreakout reports whether the LTP strictly exceeds the entry price. An
// unparsable entry price compares as 0.
func isBreakout(ltp float64, entryPrice string) bool {
	entry, err := decimal.NewFromString(strings.TrimSpace(entryPrice))
	if err != nil {
		entry = decimal.Zero
	}
	return decimal.NewFromFloat(ltp).GreaterThan(entry)
}

// publish sends the reconciled rows to the watchlist updates channel, best
// effort
func (s *WatchlistService) publish(ctx context.Context, rows []models.WatchlistRowModel) {
	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		zaplogger.Warn("failed to encode watchlist update", zaplogger.Fields{"error": err.Error()})
		return
	}

	publishCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.redisClient.Publish(publishCtx, WatchlistUpdatesChannel, payload).Err(); err != nil {
		zaplogger.Warn("failed to publish watchlist update", zaplogger.Fields{"error": err.Error()})
	}
}
