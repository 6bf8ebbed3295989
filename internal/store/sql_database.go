package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/qrypta/vaultcore/internal/config"
	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/migrations"
)

// DB wraps the database/sql connection shared by all repositories.
type DB struct {
	*sql.DB
	dialect string
	logger  *logger.Logger
}

// Migrate applies the embedded goose migrations for the active dialect.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.dialect)
}

// NewDB opens a connection for the configured backend and verifies it with
// a ping. The returned DB is ready for repository construction.
func NewDB(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	switch cfg.Backend {
	case "postgres":
		return NewConnectPostgres(ctx, cfg, log)
	case "sqlite":
		return NewConnectSQLite(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %q", cfg.Backend)
	}
}

// NewStorages opens the database, runs migrations and wires every
// repository around the shared connection.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, *DB, error) {
	db, err := NewDB(ctx, cfg.DB, log)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating database connection: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, nil, fmt.Errorf("error applying migrations: %w", err)
	}

	storages := &Storages{
		Devices:       NewDeviceRepository(db, log),
		VaultKeypairs: NewVaultKeypairRepository(db, log),
		VaultItems:    NewVaultItemRepository(db, log),
		Pairings:      NewPairingRepository(db, log),
		Recovery:      NewRecoveryRepository(db, log),
		Audit:         NewAuditRepository(db, log),
	}

	return storages, db, nil
}
