package service

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/qrypta/vaultcore/internal/store"
	"github.com/qrypta/vaultcore/models"
)

var errStorage = errors.New("storage error")

// ─────────────────────────────────────────────
// Mock: EntropyGenerator
// ─────────────────────────────────────────────

// mockEntropy defaults to the process CSPRNG so crypto round-trips in tests
// use real randomness.
type mockEntropy struct {
	generateFn func(ctx context.Context, n int) ([]byte, error)
}

func (m *mockEntropy) Generate(ctx context.Context, n int) ([]byte, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, n)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ─────────────────────────────────────────────
// Mock: store.DeviceRepository
// ─────────────────────────────────────────────

type mockDeviceRepo struct {
	saveFn            func(ctx context.Context, device *models.Device) error
	getFn             func(ctx context.Context, ownerID, deviceID string) (models.Device, error)
	listFn            func(ctx context.Context, ownerID string) ([]models.Device, error)
	countFn           func(ctx context.Context, ownerID string) (int64, error)
	deleteIfNotLastFn func(ctx context.Context, ownerID, deviceID string) (bool, error)
	touchFn           func(ctx context.Context, deviceID string, at time.Time) error
}

func (m *mockDeviceRepo) Save(ctx context.Context, device *models.Device) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, device)
	}
	return nil
}

func (m *mockDeviceRepo) Get(ctx context.Context, ownerID, deviceID string) (models.Device, error) {
	if m.getFn != nil {
		return m.getFn(ctx, ownerID, deviceID)
	}
	return models.Device{}, nil
}

func (m *mockDeviceRepo) List(ctx context.Context, ownerID string) ([]models.Device, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockDeviceRepo) Count(ctx context.Context, ownerID string) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, ownerID)
	}
	return 0, nil
}

func (m *mockDeviceRepo) DeleteIfNotLast(ctx context.Context, ownerID, deviceID string) (bool, error) {
	if m.deleteIfNotLastFn != nil {
		return m.deleteIfNotLastFn(ctx, ownerID, deviceID)
	}
	return true, nil
}

func (m *mockDeviceRepo) TouchLastUsed(ctx context.Context, deviceID string, at time.Time) error {
	if m.touchFn != nil {
		return m.touchFn(ctx, deviceID, at)
	}
	return nil
}

// ─────────────────────────────────────────────
// Mock: store.VaultKeypairRepository
// ─────────────────────────────────────────────

type mockKeypairRepo struct {
	saveFn func(ctx context.Context, keypair *models.VaultKeypair) error
	getFn  func(ctx context.Context, ownerID, vaultID string) (models.VaultKeypair, error)
}

func (m *mockKeypairRepo) Save(ctx context.Context, keypair *models.VaultKeypair) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, keypair)
	}
	return nil
}

func (m *mockKeypairRepo) Get(ctx context.Context, ownerID, vaultID string) (models.VaultKeypair, error) {
	if m.getFn != nil {
		return m.getFn(ctx, ownerID, vaultID)
	}
	return models.VaultKeypair{}, nil
}

// ─────────────────────────────────────────────
// Mock: store.VaultItemRepository
// ─────────────────────────────────────────────

type mockItemRepo struct {
	saveFn   func(ctx context.Context, item *models.VaultItem) error
	getFn    func(ctx context.Context, ownerID, itemID string) (models.VaultItem, error)
	listFn   func(ctx context.Context, ownerID, vaultID string) ([]models.VaultItem, error)
	deleteFn func(ctx context.Context, ownerID, itemID string) error
}

func (m *mockItemRepo) Save(ctx context.Context, item *models.VaultItem) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, item)
	}
	return nil
}

func (m *mockItemRepo) Get(ctx context.Context, ownerID, itemID string) (models.VaultItem, error) {
	if m.getFn != nil {
		return m.getFn(ctx, ownerID, itemID)
	}
	return models.VaultItem{}, nil
}

func (m *mockItemRepo) List(ctx context.Context, ownerID, vaultID string) ([]models.VaultItem, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID, vaultID)
	}
	return nil, nil
}

func (m *mockItemRepo) Delete(ctx context.Context, ownerID, itemID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, itemID)
	}
	return nil
}

// ─────────────────────────────────────────────
// Mock: store.PairingRepository
// ─────────────────────────────────────────────

type mockPairingRepo struct {
	saveFn          func(ctx context.Context, session *models.PairingSession) error
	getFn           func(ctx context.Context, token string) (models.PairingSession, error)
	completeFn      func(ctx context.Context, token, pairedDeviceID string, now time.Time) (bool, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockPairingRepo) Save(ctx context.Context, session *models.PairingSession) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, session)
	}
	return nil
}

func (m *mockPairingRepo) Get(ctx context.Context, token string) (models.PairingSession, error) {
	if m.getFn != nil {
		return m.getFn(ctx, token)
	}
	return models.PairingSession{}, nil
}

func (m *mockPairingRepo) Complete(ctx context.Context, token, pairedDeviceID string, now time.Time) (bool, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, token, pairedDeviceID, now)
	}
	return true, nil
}

func (m *mockPairingRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockPairingRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx, now)
	}
	return 0, nil
}

// ─────────────────────────────────────────────
// Mock: store.RecoveryRepository
// ─────────────────────────────────────────────

type mockRecoveryRepo struct {
	saveKitFn       func(ctx context.Context, kit *models.RecoveryKit, shares []*models.RecoveryShare) error
	getKitFn        func(ctx context.Context, ownerID, kitID string) (models.RecoveryKit, error)
	getSharesFn     func(ctx context.Context, kitID string) ([]models.RecoveryShare, error)
	deactivateKitFn func(ctx context.Context, kitID string) (bool, error)
	markConsumedFn  func(ctx context.Context, kitID string, indexes []int) error
}

func (m *mockRecoveryRepo) SaveKit(ctx context.Context, kit *models.RecoveryKit, shares []*models.RecoveryShare) error {
	if m.saveKitFn != nil {
		return m.saveKitFn(ctx, kit, shares)
	}
	return nil
}

func (m *mockRecoveryRepo) GetKit(ctx context.Context, ownerID, kitID string) (models.RecoveryKit, error) {
	if m.getKitFn != nil {
		return m.getKitFn(ctx, ownerID, kitID)
	}
	return models.RecoveryKit{}, nil
}

func (m *mockRecoveryRepo) GetShares(ctx context.Context, kitID string) ([]models.RecoveryShare, error) {
	if m.getSharesFn != nil {
		return m.getSharesFn(ctx, kitID)
	}
	return nil, nil
}

func (m *mockRecoveryRepo) DeactivateKit(ctx context.Context, kitID string) (bool, error) {
	if m.deactivateKitFn != nil {
		return m.deactivateKitFn(ctx, kitID)
	}
	return true, nil
}

func (m *mockRecoveryRepo) MarkSharesConsumed(ctx context.Context, kitID string, indexes []int) error {
	if m.markConsumedFn != nil {
		return m.markConsumedFn(ctx, kitID, indexes)
	}
	return nil
}

// ─────────────────────────────────────────────
// Mock: store.AuditRepository (in-memory signer + event log)
// ─────────────────────────────────────────────

// mockAuditRepo keeps signers and events in memory so the audit trail can be
// exercised end to end without a database.
type mockAuditRepo struct {
	signers map[string][2][]byte
	events  []models.AuditEvent

	saveEventFn func(ctx context.Context, event *models.AuditEvent) error
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{signers: make(map[string][2][]byte)}
}

func (m *mockAuditRepo) SaveEvent(ctx context.Context, event *models.AuditEvent) error {
	if m.saveEventFn != nil {
		return m.saveEventFn(ctx, event)
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *mockAuditRepo) ListEvents(_ context.Context, principal string, from, to time.Time) ([]models.AuditEvent, error) {
	out := make([]models.AuditEvent, 0, len(m.events))
	for _, e := range m.events {
		if e.Principal != principal {
			continue
		}
		if !from.IsZero() && e.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && e.Timestamp.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockAuditRepo) GetSigner(_ context.Context, principal string) ([]byte, []byte, error) {
	pair, ok := m.signers[principal]
	if !ok {
		return nil, nil, store.ErrAuditSignerNotFound
	}
	return pair[0], pair[1], nil
}

func (m *mockAuditRepo) SaveSigner(_ context.Context, principal string, publicKey, secretKey []byte) error {
	m.signers[principal] = [2][]byte{publicKey, secretKey}
	return nil
}

// ─────────────────────────────────────────────
// Mock: AuditTrail (for services that only emit events)
// ─────────────────────────────────────────────

type loggedEvent struct {
	Principal string
	Action    string
	Resource  string
	Details   string
}

type mockAuditTrail struct {
	events []loggedEvent

	logFn func(ctx context.Context, principal, action, resource, details string) (*models.AuditEvent, error)
}

func (m *mockAuditTrail) LogEvent(ctx context.Context, principal, action, resource, details string) (*models.AuditEvent, error) {
	if m.logFn != nil {
		return m.logFn(ctx, principal, action, resource, details)
	}
	m.events = append(m.events, loggedEvent{principal, action, resource, details})
	return &models.AuditEvent{Principal: principal, Action: action}, nil
}

func (m *mockAuditTrail) VerifyEvent(*models.AuditEvent) error {
	return nil
}

func (m *mockAuditTrail) ListVerified(context.Context, string, time.Time, time.Time) ([]models.AuditEvent, error) {
	return nil, nil
}

func (m *mockAuditTrail) GenerateReport(context.Context, string, time.Time, time.Time, bool) (*models.AuditReport, error) {
	return nil, nil
}

func (m *mockAuditTrail) actions() []string {
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Action)
	}
	return out
}
