package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Keys owned by the core components. Each key has exactly one writer.
const (
	KeyCommandQueue              = "command_queue"
	KeyNotificationPreferences   = "notification_preferences"
	KeyNotificationThrottle      = "notification_throttle"
	KeyRecommendationPreferences = "recommendation_preferences"
	KeyRecommendationThrottle    = "recommendation_throttle"
	KeyConnectionMode            = "connection_mode"
	KeySilentSchedule            = "silent_schedule"
)

type KVSQLite struct {
	db *sql.DB
}

func NewKVSQLite(db *sql.DB) *KVSQLite {
	return &KVSQLite{db: db}
}

const (
	upsertKVSQL = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`
	selectKVSQL = `SELECT value FROM kv_store WHERE key=?`
	deleteKVSQL = `DELETE FROM kv_store WHERE key=?`
)

// Get returns the stored value and whether the key exists.
func (r *KVSQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	if err := r.db.QueryRowContext(ctx, selectKVSQL, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("select key %q: %w", key, err)
	}
	return []byte(value), true, nil
}

// Put writes the value in a single statement, so readers see the old or the new value, never a mix.
func (r *KVSQLite) Put(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, upsertKVSQL, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert key %q: %w", key, err)
	}
	return nil
}

func (r *KVSQLite) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, deleteKVSQL, key); err != nil {
		return fmt.Errorf("delete key %q: %w", key, err)
	}
	return nil
}

// LoadJSON decodes the value under key into dst. It reports false, leaving dst
// untouched, when the key has never been written.
func LoadJSON(ctx context.Context, kv KVStore, key string, dst any) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, kv KVStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return kv.Put(ctx, key, raw)
}
