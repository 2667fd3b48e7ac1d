package db

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresStore keeps profiles in a JSONB column keyed by login
type PostgresStore struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewPostgresStore opens and pings the database
func NewPostgresStore(connectionString string, logger *logrus.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewPostgresStoreFromDB(db, logger), nil
}

// NewPostgresStoreFromDB wraps an open connection pool
func NewPostgresStoreFromDB(db *sql.DB, logger *logrus.Logger) *PostgresStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PostgresStore{db: db, logger: logger}
}

// Migrate applies the embedded migrations
func (s *PostgresStore) Migrate() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(s.logger)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// GetProfile retrieves the profile document for a login
func (s *PostgresStore) GetProfile(ctx context.Context, login string) (json.RawMessage, error) {
	var document []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT document FROM profiles
		WHERE login = $1
	`, login).Scan(&document)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return json.RawMessage(document), nil
}

// SaveProfile creates or replaces the profile document for a login
func (s *PostgresStore) SaveProfile(ctx context.Context, login string, document json.RawMessage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (login, document, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (login) DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = NOW()
	`, login, []byte(document))
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.WithField("login", login).Debug("Saved profile")
	return nil
}

// DeleteProfile removes the profile document for a login
func (s *PostgresStore) DeleteProfile(ctx context.Context, login string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE login = $1`, login)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if affected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

var _ Store = (*PostgresStore)(nil)
