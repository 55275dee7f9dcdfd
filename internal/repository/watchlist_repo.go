// Package repository contains the repository layer for the Momentum API
package repository

import (
	"github.com/mytradeapp/momentumapi/internal/models"
	"gorm.io/gorm"
)

// WatchlistRepository persists the watchlist as one unit, ordered by position
type WatchlistRepository struct {
	DB *gorm.DB
}

// NewWatchlistRepository creates a new watchlist repository
func NewWatchlistRepository(db *gorm.DB) *WatchlistRepository {
	return &WatchlistRepository{DB: db}
}

// Load returns the full watchlist in position order
func (r *WatchlistRepository) Load() ([]models.WatchlistRowModel, error) {
	var rows []models.WatchlistRowModel
	if err := r.DB.Order("position").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Save replaces the full watchlist in a single transaction. Positions are
// renumbered from the slice order, primary keys are reassigned.
func (r *WatchlistRepository) Save(rows []models.WatchlistRowModel) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.WatchlistRowModel{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].ID = 0
			rows[i].Position = i
		}
		return tx.Create(&rows).Error
	})
}
