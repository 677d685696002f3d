package store

import (
	"database/sql"
	"errors"
	"fmt"

	"mumz-advisor/internal/db"
)

// DatabaseStore keeps values in the kv_store table (see db migrations).
type DatabaseStore struct {
	db *db.DB
}

func NewDatabaseStore(database *db.DB) *DatabaseStore {
	return &DatabaseStore{db: database}
}

func (ds *DatabaseStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is required")
	}
	var value []byte
	err := ds.db.QueryRow(`SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (ds *DatabaseStore) Put(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	query := `
		INSERT INTO kv_store (key, value, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (key)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`
	if _, err := ds.db.Exec(query, key, string(value)); err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func (ds *DatabaseStore) Delete(key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if _, err := ds.db.Exec(`DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
