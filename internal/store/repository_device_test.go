package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/models"
)

func newTestDeviceRepo(t *testing.T) (*deviceRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &deviceRepository{
		DB:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func testDevice() *models.Device {
	now := time.Now().UTC()
	return &models.Device{
		DeviceID:  "dev-1",
		OwnerID:   "owner-1",
		Name:      "laptop",
		PublicKey: []byte("pk"),
		WrappedMasterKey: models.WrappedKey{
			KEMCiphertext: []byte("kem"),
			Ciphertext:    []byte("ct"),
			Nonce:         []byte("nonce"),
		},
		CreatedAt: now,
		LastUsed:  now,
	}
}

func TestDeviceSave_Success(t *testing.T) {
	repo, mock, db := newTestDeviceRepo(t)
	defer db.Close()

	device := testDevice()

	mock.ExpectExec("INSERT INTO devices").
		WithArgs(device.DeviceID, device.OwnerID, device.Name, device.PublicKey,
			device.WrappedMasterKey.KEMCiphertext, device.WrappedMasterKey.Ciphertext,
			device.WrappedMasterKey.Nonce, device.CreatedAt, device.LastUsed).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), device); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeviceSave_UniqueViolation(t *testing.T) {
	repo, mock, db := newTestDeviceRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO devices").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	err := repo.Save(context.Background(), testDevice())
	if !errors.Is(err, ErrDeviceAlreadyExists) {
		t.Fatalf("expected ErrDeviceAlreadyExists, got %v", err)
	}
}

func TestDeviceSave_SQLiteUniqueViolation(t *testing.T) {
	repo, mock, db := newTestDeviceRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO devices").
		WillReturnError(errors.New("UNIQUE constraint failed: devices.device_id"))

	err := repo.Save(context.Background(), testDevice())
	if !errors.Is(err, ErrDeviceAlreadyExists) {
		t.Fatalf("expected ErrDeviceAlreadyExists, got %v", err)
	}
}

func TestDeviceSave_UnexpectedDBError(t *testing.T) {
	repo, mock, db := newTestDeviceRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO devices").
		WillReturnError(errors.New("db network error"))

	err := repo.Save(context.Background(), testDevice())
	if !errors.Is(err, ErrExecutingStatement) {
		t.Fatalf("expected ErrExecutingStatement, got %v", err)
	}
}

func TestDeviceGet_Success(t *testing.T) {
	repo, mock, db := newTestDeviceRepo(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.
		NewRows([]string{"device_id", "owner_id", "name", "public_key", "kem_ciphertext", "wrapped_key", "wrap_nonce", "created_at", "last_used"}).
		AddRow("dev-1", "owner-1", "laptop", []byte("pk"), []byte("kem"), []byte("ct"), []byte("nonce"), now, now)

	mock.ExpectQuery("SELECT device_id").
		WithArgs("owner-1", "dev-1").
		WillReturnRows(rows)

	device, err := repo.Get(context.Background(), "owner-1", "dev-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if device.DeviceID != "dev-1" {
		t.Errorf("expected device_id dev-1, got %s", device.DeviceID)
	}
	if !strings.Contains(string(device.WrappedMasterKey.KEMCiphertext), "kem") {
		t.Errorf("wrapped key not scanned: %+v", device.WrappedMasterKey)
	}
}

func TestDeviceGet_NotFound(t *testing.T) {
	repo, mock, db := newTestDeviceRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT device_id").
		WithArgs("owner-1", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "owner-1", "missing")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestDeviceList_Success(t *testing.T) {
	repo, mock, db := newTestDeviceRepo(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.
		NewRows([]string{"device_id", "owner_id", "name", "public_key", "kem_ciphertext", "wrapped_key", "wrap_nonce", "created_at", "last_used"}).
		AddRow("dev-1", "owner-1", "laptop", []byte("pk1"), []byte("kem1"), []byte("ct1"), []byte("n1"), now, now).
		AddRow("dev-2", "owner-1", "phone", []byte("pk2"), []byte("kem2"), []byte("ct2"), []byte("n2"), now, now)

	mock.ExpectQuery("SELECT device_id").
		WithArgs("owner-1").
		WillReturnRows(rows)

	devices, err := repo.List(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	if devices[1].Name != "phone" {
		t.Errorf("expected second device phone, got %s", devices[1].Name)
	}
}

func TestDeviceDeleteIfNotLast_Deleted(t *testing.T) {
	repo, mock, db := newTestDeviceRepo(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM devices").
		WithArgs("owner-1", "dev-2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.DeleteIfNotLast(context.Background(), "owner-1", "dev-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Fatal("expected deletion to be reported")
	}
}

func TestDeviceDeleteIfNotLast_LastDeviceGuard(t *testing.T) {
	repo, mock, db := newTestDeviceRepo(t)
	defer db.Close()

	// The statement's subquery guard rejects deleting the only device: the
	// exec succeeds with zero affected rows.
	mock.ExpectExec("DELETE FROM devices").
		WithArgs("owner-1", "dev-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.DeleteIfNotLast(context.Background(), "owner-1", "dev-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted {
		t.Fatal("expected last-device guard to prevent deletion")
	}
}

func TestDeviceCount(t *testing.T) {
	repo, mock, db := newTestDeviceRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.Count(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
}

func TestDeviceTouchLastUsed(t *testing.T) {
	repo, mock, db := newTestDeviceRepo(t)
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec("UPDATE devices").
		WithArgs("dev-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.TouchLastUsed(context.Background(), "dev-1", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
