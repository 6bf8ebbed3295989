package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/models"
)

func newTestRecoveryRepo(t *testing.T) (*recoveryRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &recoveryRepository{
		DB:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func testKitAndShares() (*models.RecoveryKit, []*models.RecoveryShare) {
	now := time.Now().UTC()
	kit := &models.RecoveryKit{
		ID:             "kit-1",
		OwnerID:        "owner-1",
		SharesTotal:    3,
		SharesRequired: 2,
		SeedCommitment: "abc123",
		Active:         true,
		CreatedAt:      now,
		ExpiresAt:      now.Add(time.Hour),
	}
	shares := make([]*models.RecoveryShare, 0, 3)
	for i := 1; i <= 3; i++ {
		shares = append(shares, &models.RecoveryShare{
			ShareID:        "share-" + string(rune('0'+i)),
			KitID:          kit.ID,
			Index:          i,
			EncryptedShare: []byte{byte(i)},
			Nonce:          []byte("nonce"),
			Checksum:       "cs",
			Status:         models.ShareActive,
			CreatedAt:      now,
		})
	}
	return kit, shares
}

func TestRecoverySaveKit_Transactional(t *testing.T) {
	repo, mock, db := newTestRecoveryRepo(t)
	defer db.Close()

	kit, shares := testKitAndShares()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO recovery_kits").
		WithArgs(kit.ID, kit.OwnerID, kit.SharesTotal, kit.SharesRequired,
			kit.SeedCommitment, kit.Active, kit.CreatedAt, kit.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	for _, share := range shares {
		mock.ExpectExec("INSERT INTO recovery_shares").
			WithArgs(share.ShareID, share.KitID, share.Index, share.EncryptedShare,
				share.Nonce, share.Checksum, share.Status, share.CreatedAt).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	if err := repo.SaveKit(context.Background(), kit, shares); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRecoverySaveKit_ShareInsertFailureRollsBack(t *testing.T) {
	repo, mock, db := newTestRecoveryRepo(t)
	defer db.Close()

	kit, shares := testKitAndShares()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO recovery_kits").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO recovery_shares").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.SaveKit(context.Background(), kit, shares)
	if !errors.Is(err, ErrExecutingStatement) {
		t.Fatalf("expected ErrExecutingStatement, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRecoveryGetKit_NotFound(t *testing.T) {
	repo, mock, db := newTestRecoveryRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id").
		WithArgs("owner-1", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetKit(context.Background(), "owner-1", "missing")
	if !errors.Is(err, ErrRecoveryKitNotFound) {
		t.Fatalf("expected ErrRecoveryKitNotFound, got %v", err)
	}
}

func TestRecoveryGetShares_Success(t *testing.T) {
	repo, mock, db := newTestRecoveryRepo(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.
		NewRows([]string{"share_id", "kit_id", "share_index", "encrypted_share", "nonce", "checksum", "status", "created_at"}).
		AddRow("share-1", "kit-1", 1, []byte{0x01}, []byte("n"), "cs1", models.ShareActive, now).
		AddRow("share-2", "kit-1", 2, []byte{0x02}, []byte("n"), "cs2", models.ShareConsumed, now)

	mock.ExpectQuery("SELECT share_id").
		WithArgs("kit-1").
		WillReturnRows(rows)

	shares, err := repo.GetShares(context.Background(), "kit-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(shares))
	}
	if shares[1].Status != models.ShareConsumed {
		t.Errorf("expected consumed second share, got %s", shares[1].Status)
	}
}

func TestRecoveryDeactivateKit_WinsTransition(t *testing.T) {
	repo, mock, db := newTestRecoveryRepo(t)
	defer db.Close()

	mock.ExpectExec("UPDATE recovery_kits").
		WithArgs("kit-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := repo.DeactivateKit(context.Background(), "kit-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !won {
		t.Fatal("expected the transition to be won")
	}
}

func TestRecoveryDeactivateKit_AlreadyInactive(t *testing.T) {
	repo, mock, db := newTestRecoveryRepo(t)
	defer db.Close()

	mock.ExpectExec("UPDATE recovery_kits").
		WithArgs("kit-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := repo.DeactivateKit(context.Background(), "kit-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if won {
		t.Fatal("expected the transition to be lost")
	}
}

func TestRecoveryMarkSharesConsumed(t *testing.T) {
	repo, mock, db := newTestRecoveryRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE recovery_shares").
		WithArgs("kit-1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE recovery_shares").
		WithArgs("kit-1", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.MarkSharesConsumed(context.Background(), "kit-1", []int{1, 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
