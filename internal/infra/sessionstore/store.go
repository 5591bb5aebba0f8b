// Package sessionstore persists the wallet session marker (address and
// provider kind, nothing else) in a local SQLite database. It is the
// durable client-side storage the session restore path reads at startup.
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"authstamp/internal/domain"
)

type SessionModel struct {
	ID        uint `gorm:"primaryKey"`
	Address   string
	Kind      string
	UpdatedAt time.Time
}

func (SessionModel) TableName() string { return "wallet_sessions" }

// activeSessionID: a single process-wide session at a time, so the table
// holds at most one row.
const activeSessionID = 1

type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("session db path is required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if err := gdb.AutoMigrate(&SessionModel{}); err != nil {
		return nil, fmt.Errorf("migrate session db: %w", err)
	}
	return &Store{db: gdb}, nil
}

// Save upserts the active session marker.
func (s *Store) Save(ctx context.Context, sess domain.PersistedSession) error {
	model := SessionModel{
		ID:        activeSessionID,
		Address:   sess.Address,
		Kind:      string(sess.Kind),
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Save(&model).Error
}

// Load returns the persisted session, or nil when none was saved.
func (s *Store) Load(ctx context.Context) (*domain.PersistedSession, error) {
	var model SessionModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", activeSessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if model.Address == "" {
		return nil, nil
	}
	return &domain.PersistedSession{
		Address:   model.Address,
		Kind:      domain.WalletKind(model.Kind),
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// Clear removes the session marker. Clearing an empty store is fine.
func (s *Store) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Delete(&SessionModel{}, "id = ?", activeSessionID).Error
}
