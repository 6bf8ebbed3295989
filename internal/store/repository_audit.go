package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/models"
)

// auditRepository is the SQL-backed implementation of [AuditRepository].
// Events are append-only: there is no update or delete path through this
// repository.
type auditRepository struct {
	*DB
	logger  *logger.Logger
	builder sq.StatementBuilderType
}

// NewAuditRepository constructs an [AuditRepository] backed by the provided
// database connection and logger.
func NewAuditRepository(db *DB, logger *logger.Logger) AuditRepository {
	return &auditRepository{
		DB:      db,
		logger:  logger,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *auditRepository) SaveEvent(ctx context.Context, event *models.AuditEvent) error {
	_, err := r.DB.ExecContext(ctx, saveAuditEvent,
		event.ID,
		event.Timestamp,
		event.Principal,
		event.Action,
		event.Resource,
		event.Details,
		event.Signature.Algorithm,
		event.Signature.PublicKey,
		event.Signature.Signature,
	)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "auditRepository.SaveEvent").
			Str("action", event.Action).
			Msg("failed to insert audit event")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// ListEvents builds the range query dynamically: a zero from or to value
// drops that bound entirely rather than comparing against the zero time.
func (r *auditRepository) ListEvents(ctx context.Context, principal string, from, to time.Time) ([]models.AuditEvent, error) {
	log := logger.FromContext(ctx)

	builder := r.builder.
		Select("id", "event_time", "principal", "action", "resource", "details", "algorithm", "public_key", "signature").
		From("audit_events").
		Where(sq.Eq{"principal": principal}).
		OrderBy("event_time")
	if !from.IsZero() {
		builder = builder.Where(sq.GtOrEq{"event_time": from})
	}
	if !to.IsZero() {
		builder = builder.Where(sq.LtOrEq{"event_time": to})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "auditRepository.ListEvents").
			Str("principal", principal).
			Msg("failed to execute query for listing audit events")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	events := make([]models.AuditEvent, 0, 50)
	for rows.Next() {
		var event models.AuditEvent
		scanErr := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&event.Principal,
			&event.Action,
			&event.Resource,
			&event.Details,
			&event.Signature.Algorithm,
			&event.Signature.PublicKey,
			&event.Signature.Signature,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "auditRepository.ListEvents").
				Str("principal", principal).
				Msg("failed to scan audit event row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		events = append(events, event)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return events, nil
}

func (r *auditRepository) GetSigner(ctx context.Context, principal string) ([]byte, []byte, error) {
	var publicKey, secretKey []byte

	err := r.DB.QueryRowContext(ctx, getAuditSigner, principal).Scan(&publicKey, &secretKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrAuditSignerNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return publicKey, secretKey, nil
}

func (r *auditRepository) SaveSigner(ctx context.Context, principal string, publicKey, secretKey []byte) error {
	_, err := r.DB.ExecContext(ctx, saveAuditSigner, principal, publicKey, secretKey, time.Now().UTC())
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "auditRepository.SaveSigner").
			Str("principal", principal).
			Msg("failed to insert audit signer")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
