// Package models contains the models for the Momentum API
package models

import "time"

// InstrumentMapTableName is the name of the primary mapping table
var InstrumentMapTableName = "instrument_map"

// MasterStocksTableName is the name of the fallback master stocklist table
var MasterStocksTableName = "master_stocks"

// InstrumentMapModel represents a row of the primary symbol mapping table.
// Numeric columns stay raw text, the table is loaded verbatim from broker
// CSV uploads and malformed rows are skipped at cache build time instead.
type InstrumentMapModel struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	StockName    string    `gorm:"index" json:"stock_name"`
	InstrumentID string    `json:"instrument_id"`
	MISLeverage  string    `json:"mis_leverage"`
	MTFLeverage  string    `json:"mtf_leverage"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"-"`
}

// TableName specifies the table name for the InstrumentMapModel
func (InstrumentMapModel) TableName() string {
	return InstrumentMapTableName
}

// MasterStockModel represents a row of the master stocklist, used to fill
// symbols absent from the primary mapping
type MasterStockModel struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	StockName    string    `gorm:"index" json:"stock_name"`
	InstrumentID string    `json:"instrument_id"`
	MISLeverage  string    `json:"mis_leverage"`
	MTFLeverage  string    `json:"mtf_leverage"`
	MarketCap    string    `json:"market_cap"`
	SetupCase    string    `json:"setup_case"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"-"`
}

// TableName specifies the table name for the MasterStockModel
func (MasterStockModel) TableName() string {
	return MasterStocksTableName
}

// InstrumentInfo is the resolved view of a mapped symbol
type InstrumentInfo struct {
	InstrumentID int64   `json:"instrument_id"`
	MISLeverage  float64 `json:"mis_leverage"`
	MTFLeverage  float64 `json:"mtf_leverage"`
}
