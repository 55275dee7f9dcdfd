package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mytradeapp/momentumapi/internal/broker"
)

type fakeMarketDataClient struct {
	batches   [][]int64
	fail      map[int]bool // 1-based batch index
	lastPrice float64
}

func (f *fakeMarketDataClient) QuoteData(ctx context.Context, segment string, instrumentIDs []int64) (map[int64]broker.Quote, error) {
	f.batches = append(f.batches, append([]int64(nil), instrumentIDs...))
	if f.fail[len(f.batches)] {
		return nil, errors.New("rate limited")
	}
	quotes := make(map[int64]broker.Quote, len(instrumentIDs))
	for _, id := range instrumentIDs {
		quotes[id] = broker.Quote{LastPrice: f.lastPrice}
	}
	return quotes, nil
}

func newTestQuoteService(client *fakeMarketDataClient) *QuoteService {
	s := NewQuoteService(client)
	s.batchPause = 0
	return s
}

func idRange(n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	return ids
}

func TestLiveQuotesBatching(t *testing.T) {
	client := &fakeMarketDataClient{lastPrice: 100}
	s := newTestQuoteService(client)

	quotes := s.LiveQuotes(context.Background(), idRange(2500), true)

	if len(client.batches) != 3 {
		t.Fatalf("expected 3 batches for 2500 ids, got %d", len(client.batches))
	}
	if len(client.batches[0]) != 1000 || len(client.batches[2]) != 500 {
		t.Errorf("unexpected batch sizes %d/%d/%d",
			len(client.batches[0]), len(client.batches[1]), len(client.batches[2]))
	}
	if len(quotes) != 2500 {
		t.Errorf("expected 2500 quotes, got %d", len(quotes))
	}
}

func TestLiveQuotesFailedBatchIsSkipped(t *testing.T) {
	client := &fakeMarketDataClient{lastPrice: 100, fail: map[int]bool{2: true}}
	s := newTestQuoteService(client)

	quotes := s.LiveQuotes(context.Background(), idRange(1500), true)

	if len(quotes) != 1000 {
		t.Fatalf("expected 1000 quotes with the second batch failed, got %d", len(quotes))
	}
	if _, ok := quotes[1]; !ok {
		t.Error("expected first batch ids to survive")
	}
	if _, ok := quotes[1001]; ok {
		t.Error("expected second batch ids to be absent")
	}
}

func TestLiveQuotesCacheReuse(t *testing.T) {
	client := &fakeMarketDataClient{lastPrice: 100}
	s := newTestQuoteService(client)

	first := s.LiveQuotes(context.Background(), idRange(10), false)
	second := s.LiveQuotes(context.Background(), idRange(10), false)

	if len(client.batches) != 1 {
		t.Fatalf("expected one network pass, got %d", len(client.batches))
	}
	if len(first) != 10 || len(second) != 10 {
		t.Errorf("expected cached quotes, got %d/%d", len(first), len(second))
	}
}

func TestLiveQuotesForceBypassesCache(t *testing.T) {
	client := &fakeMarketDataClient{lastPrice: 100}
	s := newTestQuoteService(client)

	s.LiveQuotes(context.Background(), idRange(10), false)
	s.LiveQuotes(context.Background(), idRange(10), true)

	if len(client.batches) != 2 {
		t.Errorf("expected force to refetch, got %d passes", len(client.batches))
	}
}

func TestForceRefreshInvalidatesCacheWindow(t *testing.T) {
	client := &fakeMarketDataClient{lastPrice: 100}
	s := newTestQuoteService(client)

	s.LiveQuotes(context.Background(), idRange(10), false)
	s.ForceRefresh()
	s.LiveQuotes(context.Background(), idRange(10), false)

	if len(client.batches) != 2 {
		t.Errorf("expected refetch after ForceRefresh, got %d passes", len(client.batches))
	}
}

func TestLiveQuotesWithoutClient(t *testing.T) {
	s := NewQuoteService(nil)
	s.batchPause = 0

	quotes := s.LiveQuotes(context.Background(), idRange(10), true)
	if len(quotes) != 0 {
		t.Errorf("expected empty quotes without a client, got %d", len(quotes))
	}
}
