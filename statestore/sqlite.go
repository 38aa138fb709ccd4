package statestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arkankau/coffee-chatted/db"
	"github.com/arkankau/coffee-chatted/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLiteKV stores keys as models.AppState rows.
type SQLiteKV struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSQLiteKV(gdb *gorm.DB) (*SQLiteKV, error) {
	if gdb == nil {
		return nil, fmt.Errorf("sqlite kv: db is nil")
	}
	return &SQLiteKV{db: gdb, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, error) {
	key, err := validateKey(key)
	if err != nil {
		return nil, err
	}
	row, found, err := s.take(s.db.WithContext(ctx), key)
	if err != nil {
		return nil, fmt.Errorf("get app_state %s: %w", key, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return []byte(row.Value), nil
}

func (s *SQLiteKV) Put(ctx context.Context, key string, value []byte) error {
	key, err := validateKey(key)
	if err != nil {
		return err
	}
	if err := s.upsert(s.db.WithContext(ctx), key, value); err != nil {
		return fmt.Errorf("put app_state %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	key, err := validateKey(key)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.AppState{}).Error; err != nil {
		return fmt.Errorf("delete app_state %s: %w", key, err)
	}
	return nil
}

// Update runs the read-modify-write inside one transaction. An error from fn
// rolls back and is returned unwrapped.
func (s *SQLiteKV) Update(ctx context.Context, key string, fn UpdateFunc) error {
	key, err := validateKey(key)
	if err != nil {
		return err
	}
	if fn == nil {
		return nil
	}
	var fnErr error
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, found, err := s.take(tx, key)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		var current []byte
		if found {
			current = []byte(row.Value)
		}
		next, err := fn(current, found)
		if err != nil {
			fnErr = err
			return err
		}
		return s.upsert(tx, key, next)
	})
	if err != nil {
		if fnErr != nil && errors.Is(err, fnErr) {
			return fnErr
		}
		return fmt.Errorf("update app_state %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&models.AppState{}).
		Order("key").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("list app_state: %w", err)
	}
	return keys, nil
}

func (s *SQLiteKV) Close() error {
	return db.Close(s.db)
}

func (s *SQLiteKV) take(tx *gorm.DB, key string) (models.AppState, bool, error) {
	var row models.AppState
	err := tx.Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AppState{}, false, nil
	}
	if err != nil {
		return models.AppState{}, false, err
	}
	return row, true, nil
}

func (s *SQLiteKV) upsert(tx *gorm.DB, key string, value []byte) error {
	row := models.AppState{
		Key:       key,
		Value:     string(value),
		UpdatedAt: s.now(),
	}
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}
