package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/models"
)

// recoveryRepository is the SQL-backed implementation of [RecoveryRepository].
type recoveryRepository struct {
	*DB
	logger *logger.Logger
}

// NewRecoveryRepository constructs a [RecoveryRepository] backed by the
// provided database connection and logger.
func NewRecoveryRepository(db *DB, logger *logger.Logger) RecoveryRepository {
	return &recoveryRepository{
		DB:     db,
		logger: logger,
	}
}

// SaveKit inserts the kit row and all of its share rows inside one
// transaction, so a kit can never exist with a partial share set.
func (r *recoveryRepository) SaveKit(ctx context.Context, kit *models.RecoveryKit, shares []*models.RecoveryShare) error {
	log := logger.FromContext(ctx)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "recoveryRepository.SaveKit").
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, saveRecoveryKit,
		kit.ID,
		kit.OwnerID,
		kit.SharesTotal,
		kit.SharesRequired,
		kit.SeedCommitment,
		kit.Active,
		kit.CreatedAt,
		kit.ExpiresAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "recoveryRepository.SaveKit").
			Str("kit_id", kit.ID).
			Msg("failed to insert recovery kit")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	for _, share := range shares {
		_, err = tx.ExecContext(ctx, saveRecoveryShare,
			share.ShareID,
			share.KitID,
			share.Index,
			share.EncryptedShare,
			share.Nonce,
			share.Checksum,
			share.Status,
			share.CreatedAt,
		)
		if err != nil {
			log.Err(err).
				Str("func", "recoveryRepository.SaveKit").
				Str("kit_id", kit.ID).
				Int("share_index", share.Index).
				Msg("failed to insert recovery share")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommittingTransaction, err)
	}

	return nil
}

func (r *recoveryRepository) GetKit(ctx context.Context, ownerID, kitID string) (models.RecoveryKit, error) {
	var kit models.RecoveryKit

	err := r.DB.QueryRowContext(ctx, getRecoveryKit, ownerID, kitID).Scan(
		&kit.ID,
		&kit.OwnerID,
		&kit.SharesTotal,
		&kit.SharesRequired,
		&kit.SeedCommitment,
		&kit.Active,
		&kit.CreatedAt,
		&kit.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RecoveryKit{}, ErrRecoveryKitNotFound
	}
	if err != nil {
		return models.RecoveryKit{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return kit, nil
}

func (r *recoveryRepository) GetShares(ctx context.Context, kitID string) ([]models.RecoveryShare, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, getRecoveryShares, kitID)
	if err != nil {
		log.Err(err).
			Str("func", "recoveryRepository.GetShares").
			Str("kit_id", kitID).
			Msg("failed to execute query for listing recovery shares")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	shares := make([]models.RecoveryShare, 0, 8)
	for rows.Next() {
		var share models.RecoveryShare
		scanErr := rows.Scan(
			&share.ShareID,
			&share.KitID,
			&share.Index,
			&share.EncryptedShare,
			&share.Nonce,
			&share.Checksum,
			&share.Status,
			&share.CreatedAt,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "recoveryRepository.GetShares").
				Str("kit_id", kitID).
				Msg("failed to scan recovery share row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		shares = append(shares, share)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return shares, nil
}

// DeactivateKit is the compare-and-swap guard for single-use kits: the
// WHERE clause re-checks active inside the statement, so of any number of
// concurrent recoveries at most one observes an affected row.
func (r *recoveryRepository) DeactivateKit(ctx context.Context, kitID string) (bool, error) {
	result, err := r.DB.ExecContext(ctx, deactivateRecoveryKit, kitID)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "recoveryRepository.DeactivateKit").
			Str("kit_id", kitID).
			Msg("failed to deactivate recovery kit")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return affected == 1, nil
}

func (r *recoveryRepository) MarkSharesConsumed(ctx context.Context, kitID string, indexes []int) error {
	log := logger.FromContext(ctx)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	for _, index := range indexes {
		if _, err = tx.ExecContext(ctx, markRecoveryShareConsumed, kitID, index); err != nil {
			log.Err(err).
				Str("func", "recoveryRepository.MarkSharesConsumed").
				Str("kit_id", kitID).
				Int("share_index", index).
				Msg("failed to mark recovery share consumed")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommittingTransaction, err)
	}

	return nil
}
