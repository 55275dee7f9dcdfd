// Package models contains the models for the Momentum API
package models

import (
	"time"

	"gorm.io/datatypes"
)

// WatchlistTableName is the name of the watchlist table
var WatchlistTableName = "watchlist"

// Breakout values for a watchlist row
const (
	BreakoutYes = "YES"
	BreakoutNo  = "NO"
)

// Action is the workflow state of a watchlist row
type Action string

// Action states
const (
	ActionNone    Action = ""
	ActionBuy     Action = "BUY"
	ActionAutoBuy Action = "AUTO_BUYED"
)

// Transition returns the next action state for a reconciliation pass.
// AUTO_BUYED is sticky and is never downgraded by quote updates.
func (a Action) Transition(breakout bool) Action {
	if a == ActionAutoBuy {
		return ActionAutoBuy
	}
	if breakout {
		return ActionBuy
	}
	return ActionNone
}

// WatchlistRowModel represents a tracked symbol. The list is persisted as one
// unit ordered by Position, quote derived fields are overwritten on every
// reconciliation pass.
type WatchlistRowModel struct {
	ID           uint           `gorm:"primaryKey" json:"-"`
	Position     int            `gorm:"index" json:"-"`
	StockName    string         `json:"stock_name"`
	InstrumentID int64          `json:"instrument_id"`
	MISLeverage  float64        `json:"mis_leverage"`
	MTFLeverage  float64        `json:"mtf_leverage"`
	EntryPrice   string         `json:"entry_price"`
	LTP          float64        `gorm:"column:ltp" json:"ltp"`
	High         float64        `json:"high"`
	Low          float64        `json:"low"`
	PctChange    float64        `json:"pct_change"`
	OHLC         datatypes.JSON `gorm:"type:jsonb;column:ohlc" json:"ohlc,omitempty"`
	Time         string         `json:"time"`
	Breakout     string         `json:"breakout"`
	Action       Action         `json:"action"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"-"`
}

// TableName specifies the table name for the WatchlistRowModel
func (WatchlistRowModel) TableName() string {
	return WatchlistTableName
}
