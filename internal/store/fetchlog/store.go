// Package fetchlog keeps an audit trail of served candle fetches in SQLite.
package fetchlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entry is one served fetch.
type Entry struct {
	TraceID     string `json:"trace_id"`
	Symbol      string `json:"symbol"`
	Provider    string `json:"provider"`
	Timeframe   string `json:"timeframe"`
	Success     bool   `json:"success"`
	CandleCount int    `json:"candle_count"`
	Message     string `json:"message,omitempty"`
	// Params holds the resolved fetch parameters (provider symbol,
	// interval token, bar count or range).
	Params    map[string]any `json:"params,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type fetchModel struct {
	ID            int64          `gorm:"column:id;primaryKey"`
	TraceID       string         `gorm:"column:trace_id;index"`
	Symbol        string         `gorm:"column:symbol;index"`
	Provider      string         `gorm:"column:provider"`
	Timeframe     string         `gorm:"column:timeframe"`
	Success       bool           `gorm:"column:success"`
	CandleCount   int            `gorm:"column:candle_count"`
	Message       string         `gorm:"column:message"`
	Params        datatypes.JSON `gorm:"column:params"`
	CreatedAtUnix int64          `gorm:"column:created_at;index"`
}

func (fetchModel) TableName() string { return "fetch_log" }

// Store persists fetch entries using Gorm + SQLite.
type Store struct {
	db *gorm.DB
}

// New opens (or creates) the audit database at path.
func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("fetch log path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&fetchModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: allow a little parallelism for concurrent HTTP reads
	// while keeping lock contention low.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record appends one fetch entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("fetch log store not initialized")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	params, _ := json.Marshal(e.Params)
	model := fetchModel{
		TraceID:       strings.TrimSpace(e.TraceID),
		Symbol:        strings.ToUpper(strings.TrimSpace(e.Symbol)),
		Provider:      strings.TrimSpace(e.Provider),
		Timeframe:     strings.TrimSpace(e.Timeframe),
		Success:       e.Success,
		CandleCount:   e.CandleCount,
		Message:       e.Message,
		Params:        datatypes.JSON(params),
		CreatedAtUnix: e.CreatedAt.UnixMilli(),
	}
	return s.db.WithContext(ctx).Create(&model).Error
}

// Recent returns the newest entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("fetch log store not initialized")
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var models []fetchModel
	if err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(models))
	for _, m := range models {
		out = append(out, entryFromModel(m))
	}
	return out, nil
}

// PruneOlderThan deletes entries created before cutoff and reports how many
// rows went away.
func (s *Store) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("fetch log store not initialized")
	}
	res := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff.UnixMilli()).
		Delete(&fetchModel{})
	return res.RowsAffected, res.Error
}

func entryFromModel(m fetchModel) Entry {
	var params map[string]any
	if len(m.Params) > 0 {
		_ = json.Unmarshal(m.Params, &params)
	}
	return Entry{
		TraceID:     m.TraceID,
		Symbol:      m.Symbol,
		Provider:    m.Provider,
		Timeframe:   m.Timeframe,
		Success:     m.Success,
		CandleCount: m.CandleCount,
		Message:     m.Message,
		Params:      params,
		CreatedAt:   time.UnixMilli(m.CreatedAtUnix),
	}
}
