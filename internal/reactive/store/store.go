// Package store persists reactive session checkpoints to a SQLite
// file, so long-lived notebook sessions survive process restarts. The
// in-memory copy-on-write registry remains the primary checkpoint
// mechanism; this store only adds durability when a session is opened
// with a file path.
package store

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CheckpointRecord is one durable checkpoint: the session-state JSON
// produced by ExportSessionState, keyed by the checkpoint handle.
type CheckpointRecord struct {
	Handle    string `gorm:"primaryKey"`
	Label     string
	State     []byte
	CreatedAt time.Time
}

// Store wraps the session database.
type Store struct {
	db *gorm.DB
}

// Open creates or opens the session database at path and migrates the
// checkpoint schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening session store %s: %w", path, err)
	}
	if err := db.AutoMigrate(&CheckpointRecord{}); err != nil {
		return nil, fmt.Errorf("migrating session store: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveCheckpoint persists a checkpoint's exported session state.
func (s *Store) SaveCheckpoint(handle, label string, state []byte) error {
	rec := CheckpointRecord{Handle: handle, Label: label, State: state, CreatedAt: time.Now()}
	return s.db.Save(&rec).Error
}

// LoadCheckpoint returns the session state saved under handle.
func (s *Store) LoadCheckpoint(handle string) ([]byte, error) {
	var rec CheckpointRecord
	if err := s.db.First(&rec, "handle = ?", handle).Error; err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", handle, err)
	}
	return rec.State, nil
}

// ListCheckpoints returns all saved checkpoints, newest first.
func (s *Store) ListCheckpoints() ([]CheckpointRecord, error) {
	var recs []CheckpointRecord
	err := s.db.Order("created_at desc").Find(&recs).Error
	return recs, err
}

// DeleteCheckpoint removes a saved checkpoint.
func (s *Store) DeleteCheckpoint(handle string) error {
	return s.db.Delete(&CheckpointRecord{}, "handle = ?", handle).Error
}
