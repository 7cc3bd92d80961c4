package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dex_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists swap journal entries and denom metadata
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance
func NewStorage() (*Storage, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DB path: %w", err)
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.DenomMeta{}, &domain.SwapRecord{}, &domain.AppConfig{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path
func getDBPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "DexGo", "data", "dexgo.db"), nil
}

// ======================================================================================
// Swap Journal
// ======================================================================================

// RecordSwap appends a terminal swap result to the journal.
// Implements domain.SwapJournal.
func (s *Storage) RecordSwap(res domain.SwapResult) error {
	return s.db.Create(domain.NewSwapRecord(res)).Error
}

// RecentSwaps returns the latest n journal entries, newest first.
func (s *Storage) RecentSwaps(n int) ([]domain.SwapRecord, error) {
	var records []domain.SwapRecord
	err := s.db.Order("id DESC").Limit(n).Find(&records).Error
	return records, err
}

// SwapsByPair returns journal entries for one denom pair, newest first.
func (s *Storage) SwapsByPair(fromDenom, toDenom string) ([]domain.SwapRecord, error) {
	var records []domain.SwapRecord
	err := s.db.
		Where("from_denom = ? AND to_denom = ?", fromDenom, toDenom).
		Order("id DESC").
		Find(&records).Error
	return records, err
}

// ======================================================================================
// Denom Metadata
// ======================================================================================

// UpsertDenom creates or updates denom metadata
func (s *Storage) UpsertDenom(meta *domain.DenomMeta) error {
	return s.db.Save(meta).Error
}

// GetDenom retrieves denom metadata
func (s *Storage) GetDenom(denom string) (*domain.DenomMeta, error) {
	var meta domain.DenomMeta
	err := s.db.First(&meta, "denom = ?", denom).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &meta, err
}

// GetAllDenoms retrieves all known denoms
func (s *Storage) GetAllDenoms() ([]domain.DenomMeta, error) {
	var metas []domain.DenomMeta
	err := s.db.Find(&metas).Error
	return metas, err
}

// DeleteDenom deletes denom metadata
func (s *Storage) DeleteDenom(denom string) error {
	return s.db.Where("denom = ?", denom).Delete(&domain.DenomMeta{}).Error
}

// ======================================================================================
// Config Operations
// ======================================================================================

// SaveConfig saves a user configuration
func (s *Storage) SaveConfig(key, value string) error {
	config := domain.AppConfig{
		Key:   key,
		Value: value,
	}
	return s.db.Save(&config).Error
}

// LoadConfigMap loads all user configurations as a map
func (s *Storage) LoadConfigMap() (map[string]string, error) {
	var configs []domain.AppConfig
	if err := s.db.Find(&configs).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, cfg := range configs {
		result[cfg.Key] = cfg.Value
	}
	return result, nil
}
