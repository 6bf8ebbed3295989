package service

import (
	"context"
	"time"

	"github.com/qrypta/vaultcore/models"
)

// EntropyGenerator produces high-quality random bytes. Satisfied by
// *entropy.Aggregator.
type EntropyGenerator interface {
	Generate(ctx context.Context, n int) ([]byte, error)
}

// KeyManager distributes the vault master key to enrolled devices. The
// master key itself exists in memory only during wrap and unwrap; the server
// persists it exclusively in device-wrapped form.
type KeyManager interface {
	// GenerateVaultMasterKey returns a fresh 32-byte master key sourced
	// from the entropy aggregator.
	GenerateVaultMasterKey(ctx context.Context) ([]byte, error)

	// GenerateVaultKeypair creates the per-vault ML-KEM-768 keypair. The
	// public key is persisted; the secret key is returned to the caller
	// and never stored.
	GenerateVaultKeypair(ctx context.Context, ownerID, vaultID string) (*models.VaultKeypair, []byte, error)

	// EnrollFirstDevice bootstraps an account: generates the master key,
	// wraps it for the device's public key and persists the device row.
	EnrollFirstDevice(ctx context.Context, ownerID, name string, devicePublicKey []byte) (*models.Device, error)

	// WrapMasterKeyForDevice encapsulates against the device public key and
	// AEAD-encrypts the master key under the derived wrap key.
	WrapMasterKeyForDevice(ctx context.Context, masterKey, devicePublicKey []byte) (models.WrappedKey, error)

	// UnwrapMasterKey reverses WrapMasterKeyForDevice using the device's
	// secret key. Used in device-side flows; the server never calls it
	// with a stored secret.
	UnwrapMasterKey(ctx context.Context, wrapped models.WrappedKey, deviceSecretKey []byte) ([]byte, error)

	// RevokeDevice removes a device. Revoking the owner's only device
	// fails with ErrLastDevice.
	RevokeDevice(ctx context.Context, ownerID, deviceID string) error

	ListDevices(ctx context.Context, ownerID string) ([]models.Device, error)

	// TouchDevice records device activity on key-distribution flows.
	TouchDevice(ctx context.Context, deviceID string) error
}

// PairingService manages time-bounded QR pairing sessions between an
// enrolled host device and a new device.
type PairingService interface {
	// Create opens a PENDING session with the clamped ttl and returns it
	// together with the QR payload and its PNG rendering.
	Create(ctx context.Context, ownerID, hostDeviceID string, ttl time.Duration) (*models.PairingSession, *models.PairingPayload, []byte, error)

	// Consume enrolls the new device against the session. masterKey is the
	// host-supplied wrapped-and-rewrapped key material; the server never
	// reconstructs it from storage. Exactly one concurrent Consume per
	// token succeeds.
	Consume(ctx context.Context, token, deviceName string, newDevicePublicKey, masterKey []byte) (*models.Device, error)

	// Cancel removes a PENDING session. Only the creating principal may
	// cancel.
	Cancel(ctx context.Context, token, requesterID string) error

	// Status reports the effective session state, applying expiry lazily.
	Status(ctx context.Context, token string) (models.PairingStatus, error)
}

// VaultCipher encrypts and decrypts individual vault items with a per-item
// hybrid KEM+AEAD session.
type VaultCipher interface {
	// EncryptItem produces the encrypted bundle for one item. itemID is
	// bound into the key derivation and the AEAD associated data.
	EncryptItem(ctx context.Context, plaintext, vaultPublicKey []byte, itemID string) (models.EncryptedItem, error)

	// DecryptItem reverses EncryptItem. Any tampering with any bundle
	// field fails closed.
	DecryptItem(ctx context.Context, bundle models.EncryptedItem, vaultSecretKey []byte, itemID string) ([]byte, error)

	SaveItem(ctx context.Context, item *models.VaultItem) error
	GetItem(ctx context.Context, ownerID, itemID string) (models.VaultItem, error)
	ListItems(ctx context.Context, ownerID, vaultID string) ([]models.VaultItem, error)
	DeleteItem(ctx context.Context, ownerID, itemID string) error
}

// AuditTrail records and verifies ML-DSA-65 signed security events.
type AuditTrail interface {
	// LogEvent signs and persists one event under the principal's signer,
	// creating the signer lazily on first use.
	LogEvent(ctx context.Context, principal, action, resource, details string) (*models.AuditEvent, error)

	// VerifyEvent recomputes the canonical transcript and checks the
	// embedded signature.
	VerifyEvent(event *models.AuditEvent) error

	// ListVerified returns the principal's events in the range, dropping
	// any whose signature fails verification.
	ListVerified(ctx context.Context, principal string, from, to time.Time) ([]models.AuditEvent, error)

	// GenerateReport aggregates verified events into per-action counts and
	// high-risk flags, signing the report when sign is true.
	GenerateReport(ctx context.Context, principal string, from, to time.Time, sign bool) (*models.AuditReport, error)
}

// RecoveryService implements threshold secret-sharing account recovery.
type RecoveryService interface {
	// GenerateKit splits a fresh seed into n shares with threshold t and
	// returns the one-time trustee bundles. The seed is discarded; only
	// its commitment and the encrypted shares persist.
	GenerateKit(ctx context.Context, ownerID string, n, t int) (*models.RecoveryKit, []models.ShareBundle, error)

	// Recover reconstructs the seed from the provided shares and derives
	// the enrollment credentials. A kit is single-use: the first
	// successful recovery deactivates it.
	Recover(ctx context.Context, ownerID, kitID string, provided []models.ProvidedShare) (*models.RecoveryResult, error)
}
