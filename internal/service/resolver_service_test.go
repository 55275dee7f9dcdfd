package service

import (
	"errors"
	"testing"

	"github.com/mytradeapp/momentumapi/internal/models"
)

type fakeMappingStore struct {
	primary      []models.InstrumentMapModel
	master       []models.MasterStockModel
	bySymbol     map[string]models.MasterStockModel
	primaryErr   error
	masterErr    error
	primaryCalls int
	masterCalls  int
	lookupCalls  int
}

func (f *fakeMappingStore) GetPrimaryMapping() ([]models.InstrumentMapModel, error) {
	f.primaryCalls++
	return f.primary, f.primaryErr
}

func (f *fakeMappingStore) GetMasterStocks() ([]models.MasterStockModel, error) {
	f.masterCalls++
	return f.master, f.masterErr
}

func (f *fakeMappingStore) GetMasterStockBySymbol(symbol string) (models.MasterStockModel, error) {
	f.lookupCalls++
	if row, ok := f.bySymbol[symbol]; ok {
		return row, nil
	}
	return models.MasterStockModel{}, errors.New("record not found")
}

func mapRow(name, id, mis, mtf string) models.InstrumentMapModel {
	return models.InstrumentMapModel{StockName: name, InstrumentID: id, MISLeverage: mis, MTFLeverage: mtf}
}

func masterRow(name, id, mis, mtf string) models.MasterStockModel {
	return models.MasterStockModel{StockName: name, InstrumentID: id, MISLeverage: mis, MTFLeverage: mtf}
}

func TestResolvePrimaryTableWins(t *testing.T) {
	store := &fakeMappingStore{
		primary: []models.InstrumentMapModel{mapRow("INFY", "100", "5", "4")},
		master:  []models.MasterStockModel{masterRow("INFY", "200", "3", "2")},
	}
	s := NewResolverService(store)

	id, err := s.Resolve("infy ")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id != 100 {
		t.Errorf("expected primary table id 100, got %d", id)
	}
	info, ok := s.Info("INFY")
	if !ok {
		t.Fatal("expected INFY to be mapped")
	}
	if info.MISLeverage != 5 || info.MTFLeverage != 4 {
		t.Errorf("expected primary table leverage 5/4, got %v/%v", info.MISLeverage, info.MTFLeverage)
	}
}

func TestResolveCachesWithoutRepeatedReads(t *testing.T) {
	store := &fakeMappingStore{
		primary: []models.InstrumentMapModel{mapRow("TCS", "2953217", "5", "4")},
	}
	s := NewResolverService(store)

	for i := 0; i < 5; i++ {
		if _, err := s.Resolve("TCS"); err != nil {
			t.Fatalf("Resolve %d failed: %v", i, err)
		}
	}
	if store.primaryCalls != 1 {
		t.Errorf("expected a single primary table read, got %d", store.primaryCalls)
	}
	if store.masterCalls != 1 {
		t.Errorf("expected a single master table read, got %d", store.masterCalls)
	}
	if store.lookupCalls != 0 {
		t.Errorf("expected no direct lookups, got %d", store.lookupCalls)
	}
}

func TestResolveUnknownSymbolForcesRebuild(t *testing.T) {
	store := &fakeMappingStore{
		primary: []models.InstrumentMapModel{mapRow("TCS", "2953217", "5", "4")},
	}
	s := NewResolverService(store)
	if err := s.Build(false); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Row shows up in the backing table after the initial build
	store.primary = append(store.primary, mapRow("NEWIPO", "7777", "2", "2"))

	id, err := s.Resolve("NEWIPO")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id != 7777 {
		t.Errorf("expected 7777 after rebuild, got %d", id)
	}
	if store.primaryCalls != 2 {
		t.Errorf("expected exactly one rebuild, got %d primary reads", store.primaryCalls)
	}
}

func TestResolveFallsBackToDirectLookup(t *testing.T) {
	store := &fakeMappingStore{
		primary: []models.InstrumentMapModel{mapRow("TCS", "2953217", "5", "4")},
		bySymbol: map[string]models.MasterStockModel{
			"OBSCURE": masterRow("OBSCURE", "4242", "1", "1"),
		},
	}
	s := NewResolverService(store)

	id, err := s.Resolve("obscure")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if id != 4242 {
		t.Errorf("expected direct lookup id 4242, got %d", id)
	}

	// The hit is cached, a second resolve does not touch the store again
	calls := store.lookupCalls
	if _, err := s.Resolve("OBSCURE"); err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if store.lookupCalls != calls {
		t.Errorf("expected cached resolution, got %d extra lookups", store.lookupCalls-calls)
	}
}

func TestResolveUnknownSymbol(t *testing.T) {
	store := &fakeMappingStore{
		primary: []models.InstrumentMapModel{mapRow("TCS", "2953217", "5", "4")},
	}
	s := NewResolverService(store)

	if _, err := s.Resolve("NOSYMBOL"); !errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}
	if _, err := s.Resolve("  "); !errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound for blank symbol, got %v", err)
	}
}

func TestBuildSkipsMalformedRows(t *testing.T) {
	store := &fakeMappingStore{
		primary: []models.InstrumentMapModel{
			mapRow("GOOD", "1111", "5", "4"),
			mapRow("BADID", "not-a-number", "5", "4"),
			mapRow("", "2222", "5", "4"),
		},
	}
	s := NewResolverService(store)
	if err := s.Build(false); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if s.Size() != 1 {
		t.Errorf("expected 1 mapped symbol, got %d", s.Size())
	}
	if _, ok := s.Info("GOOD"); !ok {
		t.Error("expected GOOD to survive the build")
	}
	if _, err := s.Resolve("BADID"); !errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("expected malformed row to be dropped, got %v", err)
	}
}

func TestBuildLeverageDefaults(t *testing.T) {
	store := &fakeMappingStore{
		primary: []models.InstrumentMapModel{
			mapRow("NOMIS", "1", "garbage", "3"),
			mapRow("NOMTF", "2", "4", ""),
			mapRow("NEGATIVE", "3", "-2", "-1"),
		},
	}
	s := NewResolverService(store)
	if err := s.Build(false); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	testCases := []struct {
		symbol string
		mis    float64
		mtf    float64
	}{
		{"NOMIS", 1.0, 3.0},
		{"NOMTF", 4.0, 4.0}, // MTF falls back to the MIS value
		{"NEGATIVE", 1.0, 1.0},
	}
	for _, tc := range testCases {
		info, ok := s.Info(tc.symbol)
		if !ok {
			t.Fatalf("expected %s to be mapped", tc.symbol)
		}
		if info.MISLeverage != tc.mis || info.MTFLeverage != tc.mtf {
			t.Errorf("%s: expected leverage %v/%v, got %v/%v",
				tc.symbol, tc.mis, tc.mtf, info.MISLeverage, info.MTFLeverage)
		}
	}
}

func TestLeverageByProductType(t *testing.T) {
	store := &fakeMappingStore{
		primary: []models.InstrumentMapModel{mapRow("INFY", "100", "5", "4")},
	}
	s := NewResolverService(store)
	if err := s.Build(false); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	testCases := []struct {
		productType string
		expected    float64
	}{
		{"INTRADAY", 5.0},
		{"MARGIN", 4.0},
		{"margin", 4.0},
		{"CNC", 5.0},
		{"whatever", 5.0},
		{"", 5.0},
	}
	for _, tc := range testCases {
		if got := s.Leverage(100, tc.productType); got != tc.expected {
			t.Errorf("Leverage(100, %q) = %v, expected %v", tc.productType, got, tc.expected)
		}
	}

	if got := s.Leverage(999, "INTRADAY"); got != 1.0 {
		t.Errorf("unknown instrument should default to 1.0, got %v", got)
	}
}

func TestForcedRebuildInvalidatesResolutionCache(t *testing.T) {
	store := &fakeMappingStore{
		primary: []models.InstrumentMapModel{mapRow("INFY", "100", "5", "4")},
	}
	s := NewResolverService(store)

	if _, err := s.Resolve("INFY"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	store.primary = []models.InstrumentMapModel{mapRow("INFY", "101", "5", "4")}
	if err := s.Build(true); err != nil {
		t.Fatalf("forced Build failed: %v", err)
	}

	id, err := s.Resolve("INFY")
	if err != nil {
		t.Fatalf("Resolve after rebuild failed: %v", err)
	}
	if id != 101 {
		t.Errorf("expected fresh id 101 after rebuild, got %d", id)
	}
}

func TestBuildFailsOnlyWhenBothTablesFail(t *testing.T) {
	store := &fakeMappingStore{
		primaryErr: errors.New("primary down"),
		master:     []models.MasterStockModel{masterRow("INFY", "100", "5", "4")},
	}
	s := NewResolverService(store)
	if err := s.Build(false); err != nil {
		t.Fatalf("expected build to survive a single table failure, got %v", err)
	}
	if s.Size() != 1 {
		t.Errorf("expected the surviving table to populate the cache, got %d symbols", s.Size())
	}

	both := NewResolverService(&fakeMappingStore{
		primaryErr: errors.New("primary down"),
		masterErr:  errors.New("master down"),
	})
	if err := both.Build(false); err == nil {
		t.Error("expected build to fail when both tables fail")
	}
}
