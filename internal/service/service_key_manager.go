package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qrypta/vaultcore/internal/crypto"
	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/internal/store"
	"github.com/qrypta/vaultcore/models"
)

type keyManager struct {
	devices  store.DeviceRepository
	keypairs store.VaultKeypairRepository
	entropy  EntropyGenerator
	audit    AuditTrail

	now func() time.Time

	logger *logger.Logger
}

// NewKeyManager constructs the master-key distribution service.
func NewKeyManager(devices store.DeviceRepository, keypairs store.VaultKeypairRepository, entropy EntropyGenerator, audit AuditTrail, logger *logger.Logger) KeyManager {
	return &keyManager{
		devices:  devices,
		keypairs: keypairs,
		entropy:  entropy,
		audit:    audit,
		now:      time.Now,
		logger:   logger,
	}
}

func (k *keyManager) GenerateVaultMasterKey(ctx context.Context) ([]byte, error) {
	return k.entropy.Generate(ctx, crypto.MasterKeySize)
}

func (k *keyManager) GenerateVaultKeypair(ctx context.Context, ownerID, vaultID string) (*models.VaultKeypair, []byte, error) {
	seed, err := k.entropy.Generate(ctx, crypto.KEMKeySeedSize)
	if err != nil {
		return nil, nil, fmt.Errorf("sourcing keypair seed: %w", err)
	}
	defer crypto.Zero(seed)

	pair, err := crypto.NewKEMKeypairFromSeed(seed)
	if err != nil {
		return nil, nil, err
	}

	keypair := &models.VaultKeypair{
		VaultID:   vaultID,
		OwnerID:   ownerID,
		PublicKey: pair.PublicKey,
		CreatedAt: k.now().UTC(),
	}
	if err := k.keypairs.Save(ctx, keypair); err != nil {
		crypto.Zero(pair.SecretKey)
		return nil, nil, err
	}

	// The secret key goes to the caller and nowhere else.
	return keypair, pair.SecretKey, nil
}

func (k *keyManager) EnrollFirstDevice(ctx context.Context, ownerID, name string, devicePublicKey []byte) (*models.Device, error) {
	if err := crypto.ValidateKEMPublicKey(devicePublicKey); err != nil {
		return nil, err
	}

	masterKey, err := k.GenerateVaultMasterKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("generating master key: %w", err)
	}
	defer crypto.Zero(masterKey)

	wrapped, err := k.WrapMasterKeyForDevice(ctx, masterKey, devicePublicKey)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating device id: %w", err)
	}

	now := k.now().UTC()
	device := &models.Device{
		DeviceID:         id.String(),
		OwnerID:          ownerID,
		Name:             name,
		PublicKey:        devicePublicKey,
		WrappedMasterKey: wrapped,
		CreatedAt:        now,
		LastUsed:         now,
	}
	if err := k.devices.Save(ctx, device); err != nil {
		return nil, err
	}

	k.auditEvent(ctx, ownerID, models.ActionDeviceEnroll, device.DeviceID, "first device enrolled")

	return device, nil
}

func (k *keyManager) WrapMasterKeyForDevice(ctx context.Context, masterKey, devicePublicKey []byte) (models.WrappedKey, error) {
	if len(masterKey) != crypto.MasterKeySize {
		return models.WrappedKey{}, fmt.Errorf("%w: master key must be %d bytes, got %d", crypto.ErrInvalidKeySize, crypto.MasterKeySize, len(masterKey))
	}
	if err := crypto.ValidateKEMPublicKey(devicePublicKey); err != nil {
		return models.WrappedKey{}, err
	}

	kemCiphertext, sharedSecret, err := crypto.Encapsulate(devicePublicKey, nil)
	if err != nil {
		return models.WrappedKey{}, err
	}
	defer crypto.Zero(sharedSecret)

	wrapKey, err := crypto.DeriveWrapKey(sharedSecret)
	if err != nil {
		return models.WrappedKey{}, err
	}
	defer crypto.Zero(wrapKey)

	nonce, err := k.entropy.Generate(ctx, crypto.AEADNonceSize)
	if err != nil {
		return models.WrappedKey{}, fmt.Errorf("sourcing wrap nonce: %w", err)
	}

	ciphertext, tag, err := crypto.SealAESGCM(wrapKey, nonce, masterKey, kemCiphertext)
	if err != nil {
		return models.WrappedKey{}, err
	}

	return models.WrappedKey{
		KEMCiphertext: kemCiphertext,
		Ciphertext:    append(ciphertext, tag...),
		Nonce:         nonce,
	}, nil
}

func (k *keyManager) UnwrapMasterKey(_ context.Context, wrapped models.WrappedKey, deviceSecretKey []byte) ([]byte, error) {
	sharedSecret, err := crypto.Decapsulate(deviceSecretKey, wrapped.KEMCiphertext)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(sharedSecret)

	wrapKey, err := crypto.DeriveWrapKey(sharedSecret)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(wrapKey)

	if len(wrapped.Ciphertext) < crypto.AEADTagSize {
		return nil, fmt.Errorf("%w: wrapped key too short", crypto.ErrAEADAuthenticationFailed)
	}
	split := len(wrapped.Ciphertext) - crypto.AEADTagSize

	return crypto.OpenAESGCM(wrapKey, wrapped.Nonce,
		wrapped.Ciphertext[:split], wrapped.Ciphertext[split:], wrapped.KEMCiphertext)
}

func (k *keyManager) RevokeDevice(ctx context.Context, ownerID, deviceID string) error {
	deleted, err := k.devices.DeleteIfNotLast(ctx, ownerID, deviceID)
	if err != nil {
		return err
	}
	if !deleted {
		// The guarded delete matches nothing either because the device is
		// unknown or because it is the owner's last one. Distinguish for
		// the caller.
		if _, getErr := k.devices.Get(ctx, ownerID, deviceID); getErr != nil {
			return getErr
		}
		return ErrLastDevice
	}

	k.auditEvent(ctx, ownerID, models.ActionDeviceRevoke, deviceID, "device revoked")

	return nil
}

func (k *keyManager) ListDevices(ctx context.Context, ownerID string) ([]models.Device, error) {
	return k.devices.List(ctx, ownerID)
}

func (k *keyManager) TouchDevice(ctx context.Context, deviceID string) error {
	return k.devices.TouchLastUsed(ctx, deviceID, k.now().UTC())
}

// auditEvent records a security event without blocking the primary
// operation: failures are logged and swallowed here.
func (k *keyManager) auditEvent(ctx context.Context, principal, action, resource, details string) {
	if k.audit == nil {
		return
	}
	if _, err := k.audit.LogEvent(ctx, principal, action, resource, details); err != nil {
		logger.FromContext(ctx).Error().Err(err).
			Str("action", action).
			Msg("failed to record audit event")
	}
}
