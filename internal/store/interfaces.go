package store

import (
	"context"
	"time"

	"github.com/qrypta/vaultcore/models"
)

// DeviceRepository persists enrolled devices and their wrapped master keys.
type DeviceRepository interface {
	// Save inserts a new device row.
	Save(ctx context.Context, device *models.Device) error

	// Get returns one device scoped to its owner.
	Get(ctx context.Context, ownerID, deviceID string) (models.Device, error)

	// List returns all devices of an owner, oldest first.
	List(ctx context.Context, ownerID string) ([]models.Device, error)

	// Count returns how many devices an owner has enrolled.
	Count(ctx context.Context, ownerID string) (int64, error)

	// DeleteIfNotLast removes a device unless it is the owner's only one.
	// It reports whether a row was actually deleted.
	DeleteIfNotLast(ctx context.Context, ownerID, deviceID string) (bool, error)

	// TouchLastUsed updates the device's last_used timestamp.
	TouchLastUsed(ctx context.Context, deviceID string, at time.Time) error
}

// VaultKeypairRepository persists per-vault KEM public keys. Secret keys are
// never stored.
type VaultKeypairRepository interface {
	Save(ctx context.Context, keypair *models.VaultKeypair) error
	Get(ctx context.Context, ownerID, vaultID string) (models.VaultKeypair, error)
}

// VaultItemRepository persists encrypted vault items.
type VaultItemRepository interface {
	// Save inserts a new item or updates an existing one in place.
	Save(ctx context.Context, item *models.VaultItem) error

	Get(ctx context.Context, ownerID, itemID string) (models.VaultItem, error)

	// List returns an owner's items for one vault, newest first.
	List(ctx context.Context, ownerID, vaultID string) ([]models.VaultItem, error)

	Delete(ctx context.Context, ownerID, itemID string) error
}

// PairingRepository persists device-pairing sessions. Complete is the
// atomic check-then-mutate transition: exactly one concurrent caller can
// flip a PENDING, unexpired session to COMPLETED.
type PairingRepository interface {
	Save(ctx context.Context, session *models.PairingSession) error

	Get(ctx context.Context, token string) (models.PairingSession, error)

	// Complete flips the session to COMPLETED and records the paired
	// device, guarded by status == PENDING and expires_at > now. It
	// reports whether this caller won the transition.
	Complete(ctx context.Context, token, pairedDeviceID string, now time.Time) (bool, error)

	Delete(ctx context.Context, token string) error

	// DeleteExpired removes PENDING sessions whose deadline has passed
	// and returns how many rows were swept.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// RecoveryRepository persists recovery kits and their encrypted shares.
type RecoveryRepository interface {
	// SaveKit inserts the kit and all of its shares in one transaction.
	SaveKit(ctx context.Context, kit *models.RecoveryKit, shares []*models.RecoveryShare) error

	GetKit(ctx context.Context, ownerID, kitID string) (models.RecoveryKit, error)

	GetShares(ctx context.Context, kitID string) ([]models.RecoveryShare, error)

	// DeactivateKit flips active to false, guarded by active == true.
	// It reports whether this caller won the transition.
	DeactivateKit(ctx context.Context, kitID string) (bool, error)

	// MarkSharesConsumed sets the named share indexes to CONSUMED.
	MarkSharesConsumed(ctx context.Context, kitID string, indexes []int) error
}

// AuditRepository persists signed audit events and per-principal signers.
type AuditRepository interface {
	SaveEvent(ctx context.Context, event *models.AuditEvent) error

	// ListEvents returns a principal's events, optionally bounded by a
	// time range (zero values disable a bound), oldest first.
	ListEvents(ctx context.Context, principal string, from, to time.Time) ([]models.AuditEvent, error)

	// GetSigner returns the principal's signing keypair.
	GetSigner(ctx context.Context, principal string) (publicKey, secretKey []byte, err error)

	// SaveSigner persists a newly generated signing keypair.
	SaveSigner(ctx context.Context, principal string, publicKey, secretKey []byte) error
}

// Storages aggregates all repositories behind one constructor, mirroring
// how services consume them.
type Storages struct {
	Devices       DeviceRepository
	VaultKeypairs VaultKeypairRepository
	VaultItems    VaultItemRepository
	Pairings      PairingRepository
	Recovery      RecoveryRepository
	Audit         AuditRepository
}
