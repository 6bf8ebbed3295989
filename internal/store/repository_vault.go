package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/models"
)

// vaultKeypairRepository is the SQL-backed implementation of
// [VaultKeypairRepository]. Only public keys ever reach this table.
type vaultKeypairRepository struct {
	*DB
	logger *logger.Logger
}

// NewVaultKeypairRepository constructs a [VaultKeypairRepository] backed by
// the provided database connection and logger.
func NewVaultKeypairRepository(db *DB, logger *logger.Logger) VaultKeypairRepository {
	return &vaultKeypairRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *vaultKeypairRepository) Save(ctx context.Context, keypair *models.VaultKeypair) error {
	_, err := r.DB.ExecContext(ctx, saveVaultKeypair,
		keypair.VaultID,
		keypair.OwnerID,
		keypair.PublicKey,
		keypair.CreatedAt,
	)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "vaultKeypairRepository.Save").
			Str("vault_id", keypair.VaultID).
			Msg("failed to insert vault keypair")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *vaultKeypairRepository) Get(ctx context.Context, ownerID, vaultID string) (models.VaultKeypair, error) {
	var keypair models.VaultKeypair

	err := r.DB.QueryRowContext(ctx, getVaultKeypair, ownerID, vaultID).Scan(
		&keypair.VaultID,
		&keypair.OwnerID,
		&keypair.PublicKey,
		&keypair.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VaultKeypair{}, ErrVaultKeypairNotFound
	}
	if err != nil {
		return models.VaultKeypair{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return keypair, nil
}

// vaultItemRepository is the SQL-backed implementation of
// [VaultItemRepository].
type vaultItemRepository struct {
	*DB
	logger *logger.Logger
}

// NewVaultItemRepository constructs a [VaultItemRepository] backed by the
// provided database connection and logger.
func NewVaultItemRepository(db *DB, logger *logger.Logger) VaultItemRepository {
	return &vaultItemRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *vaultItemRepository) Save(ctx context.Context, item *models.VaultItem) error {
	result, err := r.DB.ExecContext(ctx, saveVaultItem,
		item.ID,
		item.VaultID,
		item.OwnerID,
		item.Title,
		item.Bundle.KEMCiphertext,
		item.Bundle.Ciphertext,
		item.Bundle.Nonce,
		item.Bundle.AuthTag,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "vaultItemRepository.Save").
			Str("item_id", item.ID).
			Msg("failed to upsert vault item")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		// The conflict arm's owner guard skipped the update: the id is
		// already taken by another principal.
		logger.FromContext(ctx).Warn().
			Str("func", "vaultItemRepository.Save").
			Str("item_id", item.ID).
			Msg("rejected save against an item owned by another principal")
		return ErrVaultItemOwnerMismatch
	}

	return nil
}

func (r *vaultItemRepository) Get(ctx context.Context, ownerID, itemID string) (models.VaultItem, error) {
	row := r.DB.QueryRowContext(ctx, getVaultItem, ownerID, itemID)

	item, err := scanVaultItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VaultItem{}, ErrVaultItemNotFound
	}
	if err != nil {
		return models.VaultItem{}, err
	}

	return item, nil
}

func (r *vaultItemRepository) List(ctx context.Context, ownerID, vaultID string) ([]models.VaultItem, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, listVaultItems, ownerID, vaultID)
	if err != nil {
		log.Err(err).
			Str("func", "vaultItemRepository.List").
			Str("vault_id", vaultID).
			Msg("failed to execute query for listing vault items")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	items := make([]models.VaultItem, 0, 50)
	for rows.Next() {
		item, scanErr := scanVaultItem(rows.Scan)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "vaultItemRepository.List").
				Str("vault_id", vaultID).
				Msg("failed to scan vault item row")
			return nil, scanErr
		}
		items = append(items, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return items, nil
}

func (r *vaultItemRepository) Delete(ctx context.Context, ownerID, itemID string) error {
	result, err := r.DB.ExecContext(ctx, deleteVaultItem, ownerID, itemID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrVaultItemNotFound
	}

	return nil
}

func scanVaultItem(scan func(dest ...any) error) (models.VaultItem, error) {
	var item models.VaultItem

	err := scan(
		&item.ID,
		&item.VaultID,
		&item.OwnerID,
		&item.Title,
		&item.Bundle.KEMCiphertext,
		&item.Bundle.Ciphertext,
		&item.Bundle.Nonce,
		&item.Bundle.AuthTag,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.VaultItem{}, err
		}
		return models.VaultItem{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return item, nil
}
