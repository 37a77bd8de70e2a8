package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"nebula/models"
)

// Keys of the persisted rows
const (
	KeyAccounts    = "accounts"
	KeyActiveIndex = "activeIndex"
)

// Store keeps the account list and the active index in a key-value table.
// It backs onto SQLite by default and PostgreSQL for postgres:// URLs.
type Store struct {
	DB *sql.DB

	selectQuery string
	upsertQuery string
}

// Open picks a backend from dsn and creates the table if needed
func Open(dsn string) (*Store, error) {
	if isPostgres(dsn) {
		return openPostgres(dsn)
	}
	return openSQLite(dsn)
}

func openSQLite(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases and write ordering sane.
	db.SetMaxOpenConns(1)

	s := &Store{
		DB:          db,
		selectQuery: "SELECT value FROM kv WHERE key = ?",
		upsertQuery: "INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
	}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createTables() error {
	_, err := s.DB.Exec(`
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Load reads the persisted accounts and active index. Missing or corrupt
// values fall back to an empty list and -1.
func (s *Store) Load(ctx context.Context) ([]models.Account, int, error) {
	accounts := []models.Account{}
	active := -1

	raw, ok, err := s.get(ctx, KeyAccounts)
	if err != nil {
		return accounts, active, err
	}
	if ok {
		var parsed []models.Account
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			log.Printf("Discarding corrupt %s value: %v", KeyAccounts, err)
		} else if parsed != nil {
			accounts = parsed
		}
	}

	raw, ok, err = s.get(ctx, KeyActiveIndex)
	if err != nil {
		return accounts, active, err
	}
	if ok {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			log.Printf("Discarding corrupt %s value %q", KeyActiveIndex, raw)
		} else {
			active = n
		}
	}

	return accounts, active, nil
}

// Persist writes both keys in one transaction
func (s *Store) Persist(ctx context.Context, accounts []models.Account, active int) error {
	if accounts == nil {
		accounts = []models.Account{}
	}
	data, err := json.Marshal(accounts)
	if err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.upsertQuery, KeyAccounts, string(data)); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to persist accounts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.upsertQuery, KeyActiveIndex, strconv.Itoa(active)); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to persist active index: %w", err)
	}
	return tx.Commit()
}

// Close releases the database
func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, s.selectQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}
