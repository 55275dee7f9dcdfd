// Package service contains the service layer for the Momentum API
package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/mytradeapp/momentumapi/internal/broker"
	"github.com/mytradeapp/momentumapi/internal/models"
	"github.com/mytradeapp/momentumapi/pkg/utils/zaplogger"
)

// ErrSymbolNotFound is returned when a symbol cannot be resolved from either
// reference table
var ErrSymbolNotFound = errors.New("symbol not found")

// MappingStore reads the symbol reference tables
type MappingStore interface {
	GetPrimaryMapping() ([]models.InstrumentMapModel, error)
	GetMasterStocks() ([]models.MasterStockModel, error)
	GetMasterStockBySymbol(symbol string) (models.MasterStockModel, error)
}

// ResolverService maps symbol names to instrument ids and per instrument
// leverage factors. All caches live behind the service mutex, a forced
// rebuild replaces them wholesale and invalidates the resolution cache.
type ResolverService struct {
	store MappingStore

	mu          sync.RWMutex
	mapping     map[string]int64
	misLeverage map[int64]float64
	mtfLeverage map[int64]float64
	resolution  map[string]int64
}

// NewResolverService creates a new resolver service
func NewResolverService(store MappingStore) *ResolverService {
	return &ResolverService{
		store:       store,
		mapping:     make(map[string]int64),
		misLeverage: make(map[int64]float64),
		mtfLeverage: make(map[int64]float64),
		resolution:  make(map[string]int64),
	}
}

// Build populates the mapping caches from the primary mapping table and the
// master stocklist. The primary table wins on symbol collision, first write
// wins per symbol within one build pass. A no-op when already built unless
// forced.
func (s *ResolverService) Build(force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.mapping) > 0 && !force {
		return nil
	}

	mapping := make(map[string]int64)
	misLeverage := make(map[int64]float64)
	mtfLeverage := make(map[int64]float64)

	primary, primaryErr := s.store.GetPrimaryMapping()
	if primaryErr != nil {
		zaplogger.Error("failed to load primary mapping table", zaplogger.Fields{
			"error": primaryErr.Error(),
		})
	}
	for _, row := range primary {
		addMappingRow(mapping, misLeverage, mtfLeverage,
			row.StockName, row.InstrumentID, row.MISLeverage, row.MTFLeverage)
	}

	master, masterErr := s.store.GetMasterStocks()
	if masterErr != nil {
		zaplogger.Warn("could not load master stocklist", zaplogger.Fields{
			"error": masterErr.Error(),
		})
	}
	for _, row := range master {
		addMappingRow(mapping, misLeverage, mtfLeverage,
			row.StockName, row.InstrumentID, row.MISLeverage, row.MTFLeverage)
	}

	if primaryErr != nil && masterErr != nil {
		return fmt.Errorf("mapping build failed: %v", primaryErr)
	}

	s.mapping = mapping
	s.misLeverage = misLeverage
	s.mtfLeverage = mtfLeverage
	s.resolution = make(map[string]int64)

	zaplogger.Info("mapping caches built", zaplogger.Fields{
		"symbols": len(mapping),
	})
	return nil
}

// addMappingRow merges one reference table row into the build maps. Rows with
// a missing or non numeric instrument id are skipped silently. An unparsable
// MIS leverage defaults to 1.0, an unparsable MTF leverage defaults to the
// MIS value.
func addMappingRow(mapping map[string]int64, misLeverage, mtfLeverage map[int64]float64, stockName, instrumentID, mis, mtf string) {
	symbol := normalizeSymbol(stockName)
	if symbol == "" {
		return
	}
	if _, ok := mapping[symbol]; ok {
		return
	}
	id, err := strconv.ParseInt(strings.TrimSpace(instrumentID), 10, 64)
	if err != nil {
		return
	}
	mapping[symbol] = id
	misLeverage[id] = parseLeverage(mis, 1.0)
	mtfLeverage[id] = parseLeverage(mtf, misLeverage[id])
}

func parseLeverage(value string, fallback float64) float64 {
	leverage, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || leverage <= 0 {
		return fallback
	}
	return leverage
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Resolve maps a symbol name to an instrument id. Lookup order: resolution
// cache, mapping cache, forced rebuild of the mapping caches, direct master
// stocklist lookup. Fails with ErrSymbolNotFound when all miss.
func (s *ResolverService) Resolve(symbol string) (int64, error) {
	sym := normalizeSymbol(symbol)
	if sym == "" {
		return 0, fmt.Errorf("empty symbol: %w", ErrSymbolNotFound)
	}

	if id, ok := s.cachedID(sym); ok {
		return id, nil
	}
	if err := s.Build(false); err != nil {
		zaplogger.Warn("mapping build failed during resolve", zaplogger.Fields{
			"symbol": sym,
			"error":  err.Error(),
		})
	}
	if id, ok := s.mappedID(sym); ok {
		s.cacheID(sym, id)
		return id, nil
	}

	// Rebuild both backing tables and retry
	if err := s.Build(true); err == nil {
		if id, ok := s.mappedID(sym); ok {
			s.cacheID(sym, id)
			return id, nil
		}
	}

	// One-off lookup against the master stocklist
	row, err := s.store.GetMasterStockBySymbol(sym)
	if err == nil {
		if id, parseErr := strconv.ParseInt(strings.TrimSpace(row.InstrumentID), 10, 64); parseErr == nil {
			s.cacheID(sym, id)
			return id, nil
		}
	}

	return 0, fmt.Errorf("symbol %q: %w", sym, ErrSymbolNotFound)
}

// Info returns the mapped instrument id and leverage factors for a symbol
// without forcing a rebuild. The bool reports whether the symbol is mapped.
func (s *ResolverService) Info(symbol string) (models.InstrumentInfo, bool) {
	if err := s.Build(false); err != nil {
		return models.InstrumentInfo{}, false
	}

	sym := normalizeSymbol(symbol)
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.mapping[sym]
	if !ok {
		return models.InstrumentInfo{}, false
	}
	return models.InstrumentInfo{
		InstrumentID: id,
		MISLeverage:  s.leverageLocked(s.misLeverage, id),
		MTFLeverage:  s.leverageLocked(s.mtfLeverage, id),
	}, true
}

// Leverage returns the leverage factor of an instrument for a product type.
// INTRADAY reads the MIS factor, MARGIN the MTF factor, anything else is
// sized against the MIS factor as well. Unknown instruments get 1.0.
func (s *ResolverService) Leverage(instrumentID int64, productType string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if strings.ToUpper(strings.TrimSpace(productType)) == broker.ProductMargin {
		return s.leverageLocked(s.mtfLeverage, instrumentID)
	}
	return s.leverageLocked(s.misLeverage, instrumentID)
}

func (s *ResolverService) leverageLocked(cache map[int64]float64, instrumentID int64) float64 {
	if leverage, ok := cache[instrumentID]; ok {
		return leverage
	}
	return 1.0
}

// Size returns the number of mapped symbols
func (s *ResolverService) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mapping)
}

func (s *ResolverService) cachedID(symbol string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.resolution[symbol]
	return id, ok
}

func (s *ResolverService) mappedID(symbol string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.mapping[symbol]
	return id, ok
}

func (s *ResolverService) cacheID(symbol string, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolution[symbol] = id
}
