package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/models"
)

// pairingRepository is the SQL-backed implementation of [PairingRepository].
type pairingRepository struct {
	*DB
	logger *logger.Logger
}

// NewPairingRepository constructs a [PairingRepository] backed by the
// provided database connection and logger.
func NewPairingRepository(db *DB, logger *logger.Logger) PairingRepository {
	return &pairingRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *pairingRepository) Save(ctx context.Context, session *models.PairingSession) error {
	_, err := r.DB.ExecContext(ctx, savePairingSession,
		session.Token,
		session.HostUserID,
		session.HostDeviceID,
		session.Status,
		session.PairedDeviceID,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "pairingRepository.Save").
			Str("host_device_id", session.HostDeviceID).
			Msg("failed to insert pairing session")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *pairingRepository) Get(ctx context.Context, token string) (models.PairingSession, error) {
	var session models.PairingSession

	err := r.DB.QueryRowContext(ctx, getPairingSession, token).Scan(
		&session.Token,
		&session.HostUserID,
		&session.HostDeviceID,
		&session.Status,
		&session.PairedDeviceID,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PairingSession{}, ErrPairingSessionNotFound
	}
	if err != nil {
		return models.PairingSession{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return session, nil
}

// Complete performs the single compare-and-swap transition on the session
// status. The WHERE clause re-checks both PENDING status and the expiry
// deadline inside the statement, so of any number of concurrent consumers
// at most one observes an affected row.
func (r *pairingRepository) Complete(ctx context.Context, token, pairedDeviceID string, now time.Time) (bool, error) {
	result, err := r.DB.ExecContext(ctx, completePairingSession, token, pairedDeviceID, now)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "pairingRepository.Complete").
			Msg("failed to complete pairing session")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return affected == 1, nil
}

func (r *pairingRepository) Delete(ctx context.Context, token string) error {
	result, err := r.DB.ExecContext(ctx, deletePairingSession, token)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrPairingSessionNotFound
	}

	return nil
}

func (r *pairingRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, deleteExpiredPairingSessions, now)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "pairingRepository.DeleteExpired").
			Msg("failed to sweep expired pairing sessions")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return affected, nil
}
