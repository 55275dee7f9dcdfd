// Package repository contains the repository layer for the Momentum API
package repository

import (
	"github.com/mytradeapp/momentumapi/internal/models"
	"gorm.io/gorm"
)

// MappingRepository reads the symbol reference tables
type MappingRepository struct {
	DB *gorm.DB
}

// NewMappingRepository creates a new mapping repository
func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{DB: db}
}

// GetPrimaryMapping returns all rows of the primary mapping table
func (r *MappingRepository) GetPrimaryMapping() ([]models.InstrumentMapModel, error) {
	var rows []models.InstrumentMapModel
	if err := r.DB.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetMasterStocks returns all rows of the master stocklist table
func (r *MappingRepository) GetMasterStocks() ([]models.MasterStockModel, error) {
	var rows []models.MasterStockModel
	if err := r.DB.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetMasterStockBySymbol returns the first master stocklist row for a symbol.
// The match is case insensitive, symbols are persisted as uploaded.
func (r *MappingRepository) GetMasterStockBySymbol(symbol string) (models.MasterStockModel, error) {
	var row models.MasterStockModel
	err := r.DB.Where("UPPER(TRIM(stock_name)) = ?", symbol).First(&row).Error
	return row, err
}
