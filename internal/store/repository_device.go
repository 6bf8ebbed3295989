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

// deviceRepository is the SQL-backed implementation of [DeviceRepository].
// It executes all device CRUD operations against the "devices" table using
// the embedded [*DB] connection.
type deviceRepository struct {
	*DB
	logger *logger.Logger
}

// NewDeviceRepository constructs a [DeviceRepository] backed by the provided
// database connection and logger.
func NewDeviceRepository(db *DB, logger *logger.Logger) DeviceRepository {
	return &deviceRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *deviceRepository) Save(ctx context.Context, device *models.Device) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, saveDevice,
		device.DeviceID,
		device.OwnerID,
		device.Name,
		device.PublicKey,
		device.WrappedMasterKey.KEMCiphertext,
		device.WrappedMasterKey.Ciphertext,
		device.WrappedMasterKey.Nonce,
		device.CreatedAt,
		device.LastUsed,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDeviceAlreadyExists, device.DeviceID)
		}

		log.Err(err).
			Str("func", "deviceRepository.Save").
			Str("device_id", device.DeviceID).
			Msg("failed to insert device")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *deviceRepository) Get(ctx context.Context, ownerID, deviceID string) (models.Device, error) {
	row := r.DB.QueryRowContext(ctx, getDevice, ownerID, deviceID)

	device, err := scanDevice(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Device{}, ErrDeviceNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "deviceRepository.Get").
			Str("device_id", deviceID).
			Msg("failed to read device")
		return models.Device{}, err
	}

	return device, nil
}

func (r *deviceRepository) List(ctx context.Context, ownerID string) ([]models.Device, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, listDevices, ownerID)
	if err != nil {
		log.Err(err).
			Str("func", "deviceRepository.List").
			Str("owner_id", ownerID).
			Msg("failed to execute query for listing devices")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	devices := make([]models.Device, 0, 4)
	for rows.Next() {
		device, scanErr := scanDevice(rows.Scan)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "deviceRepository.List").
				Str("owner_id", ownerID).
				Msg("failed to scan device row")
			return nil, scanErr
		}
		devices = append(devices, device)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return devices, nil
}

func (r *deviceRepository) Count(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	if err := r.DB.QueryRowContext(ctx, countDevices, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count, nil
}

func (r *deviceRepository) DeleteIfNotLast(ctx context.Context, ownerID, deviceID string) (bool, error) {
	result, err := r.DB.ExecContext(ctx, deleteDeviceIfNotLast, ownerID, deviceID)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "deviceRepository.DeleteIfNotLast").
			Str("device_id", deviceID).
			Msg("failed to delete device")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return affected == 1, nil
}

func (r *deviceRepository) TouchLastUsed(ctx context.Context, deviceID string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, touchDeviceLastUsed, deviceID, at)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func scanDevice(scan func(dest ...any) error) (models.Device, error) {
	var device models.Device

	err := scan(
		&device.DeviceID,
		&device.OwnerID,
		&device.Name,
		&device.PublicKey,
		&device.WrappedMasterKey.KEMCiphertext,
		&device.WrappedMasterKey.Ciphertext,
		&device.WrappedMasterKey.Nonce,
		&device.CreatedAt,
		&device.LastUsed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Device{}, err
		}
		return models.Device{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return device, nil
}
