// Package service contains the service layer for the Momentum API
package service

import (
	"context"
	"sync"
	"time"

	"github.com/mytradeapp/momentumapi/internal/broker"
	"github.com/mytradeapp/momentumapi/pkg/utils/zaplogger"
)

// QuoteService defaults. The batch size is the provider request limit, the
// pause keeps batch bursts under the provider rate limit.
const (
	quoteBatchSize     = 1000
	quoteBatchPause    = 500 * time.Millisecond
	quoteCacheDuration = 600 * time.Second
)

// MarketDataClient fetches live quotes from the provider
type MarketDataClient interface {
	QuoteData(ctx context.Context, segment string, instrumentIDs []int64) (map[int64]broker.Quote, error)
}

// QuoteService fetches live quotes in provider sized batches and keeps the
// last full fetch as a cache
type QuoteService struct {
	client     MarketDataClient
	batchSize  int
	batchPause time.Duration
	cacheFor   time.Duration

	mu        sync.Mutex
	cache     map[int64]broker.Quote
	lastFetch time.Time
}

// NewQuoteService creates a new quote service
func NewQuoteService(client MarketDataClient) *QuoteService {
	return &QuoteService{
		client:     client,
		batchSize:  quoteBatchSize,
		batchPause: quoteBatchPause,
		cacheFor:   quoteCacheDuration,
	}
}

// LiveQuotes returns live quotes for the given instrument ids. A prior fetch
// is reused within the cache window, force bypasses the window and resets it.
func (s *QuoteService) LiveQuotes(ctx context.Context, instrumentIDs []int64, force bool) map[int64]broker.Quote {
	s.mu.Lock()
	if !force && len(s.cache) > 0 && time.Since(s.lastFetch) < s.cacheFor {
		cached := s.cache
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	quotes := s.fetchLiveData(ctx, instrumentIDs)

	s.mu.Lock()
	s.cache = quotes
	s.lastFetch = time.Now()
	s.mu.Unlock()

	return quotes
}

// ForceRefresh resets the cache validity clock, the next call always makes a
// fresh network pass
func (s *QuoteService) ForceRefresh() {
	s.mu.Lock()
	s.lastFetch = time.Time{}
	s.mu.Unlock()
}

// fetchLiveData fetches quotes in batches. A failed batch is logged and its
// ids skipped, partial results are returned rather than aborting the fetch.
func (s *QuoteService) fetchLiveData(ctx context.Context, instrumentIDs []int64) map[int64]broker.Quote {
	quotes := make(map[int64]broker.Quote)
	if s.client == nil {
		zaplogger.Warn("broker client not available, live data disabled")
		return quotes
	}

	batchNum := 0
	for start := 0; start < len(instrumentIDs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(instrumentIDs) {
			end = len(instrumentIDs)
		}
		batchNum++

		batchQuotes, err := s.client.QuoteData(ctx, broker.ExchangeSegmentNSEEq, instrumentIDs[start:end])
		if err != nil {
			zaplogger.Warn("quote batch fetch failed", zaplogger.Fields{
				"batch": batchNum,
				"ids":   end - start,
				"error": err.Error(),
			})
		} else {
			for id, quote := range batchQuotes {
				quotes[id] = quote
			}
		}

		if end < len(instrumentIDs) && s.batchPause > 0 {
			time.Sleep(s.batchPause)
		}
	}

	return quotes
}
