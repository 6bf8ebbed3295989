package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/qrypta/vaultcore/internal/crypto"
	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/internal/store"
	"github.com/qrypta/vaultcore/models"
)

type vaultCipher struct {
	items   store.VaultItemRepository
	entropy EntropyGenerator
	audit   AuditTrail

	logger *logger.Logger
}

// NewVaultCipher constructs the per-item encryption service.
func NewVaultCipher(items store.VaultItemRepository, entropy EntropyGenerator, audit AuditTrail, logger *logger.Logger) VaultCipher {
	return &vaultCipher{
		items:   items,
		entropy: entropy,
		audit:   audit,
		logger:  logger,
	}
}

// EncryptItem runs one hybrid session: a fresh ML-KEM-768 encapsulation
// against the vault public key, an HKDF-derived per-item key bound to itemID,
// and AES-256-GCM with itemID as associated data. The shared secret and the
// derived key are zeroed before return.
func (v *vaultCipher) EncryptItem(ctx context.Context, plaintext, vaultPublicKey []byte, itemID string) (models.EncryptedItem, error) {
	if itemID == "" {
		return models.EncryptedItem{}, fmt.Errorf("%w: empty item id", ErrInvalidDataProvided)
	}

	kemCiphertext, sharedSecret, err := crypto.Encapsulate(vaultPublicKey, nil)
	if err != nil {
		return models.EncryptedItem{}, err
	}
	defer crypto.Zero(sharedSecret)

	itemKey, err := crypto.DeriveItemKey(sharedSecret, itemID)
	if err != nil {
		return models.EncryptedItem{}, err
	}
	defer crypto.Zero(itemKey)

	nonce, err := v.entropy.Generate(ctx, crypto.AEADNonceSize)
	if err != nil {
		return models.EncryptedItem{}, fmt.Errorf("sourcing item nonce: %w", err)
	}

	ciphertext, tag, err := crypto.SealAESGCM(itemKey, nonce, plaintext, []byte(itemID))
	if err != nil {
		return models.EncryptedItem{}, err
	}

	return models.EncryptedItem{
		KEMCiphertext: kemCiphertext,
		Ciphertext:    ciphertext,
		Nonce:         nonce,
		AuthTag:       tag,
	}, nil
}

// DecryptItem reverses EncryptItem. A tampered KEM ciphertext decapsulates
// to a different shared secret rather than failing, so every tamper case
// surfaces as ErrAEADAuthenticationFailed at the AEAD layer; no partial
// plaintext is ever returned.
func (v *vaultCipher) DecryptItem(ctx context.Context, bundle models.EncryptedItem, vaultSecretKey []byte, itemID string) ([]byte, error) {
	sharedSecret, err := crypto.Decapsulate(vaultSecretKey, bundle.KEMCiphertext)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(sharedSecret)

	itemKey, err := crypto.DeriveItemKey(sharedSecret, itemID)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(itemKey)

	plaintext, err := crypto.OpenAESGCM(itemKey, bundle.Nonce, bundle.Ciphertext, bundle.AuthTag, []byte(itemID))
	if err != nil {
		if errors.Is(err, crypto.ErrAEADAuthenticationFailed) {
			v.auditDecryptFailure(ctx, itemID)
		}
		return nil, err
	}

	return plaintext, nil
}

func (v *vaultCipher) SaveItem(ctx context.Context, item *models.VaultItem) error {
	if err := v.items.Save(ctx, item); err != nil {
		return err
	}

	v.auditEvent(ctx, item.OwnerID, models.ActionItemEncrypt, item.ID, "item stored")

	return nil
}

func (v *vaultCipher) GetItem(ctx context.Context, ownerID, itemID string) (models.VaultItem, error) {
	return v.items.Get(ctx, ownerID, itemID)
}

func (v *vaultCipher) ListItems(ctx context.Context, ownerID, vaultID string) ([]models.VaultItem, error) {
	return v.items.List(ctx, ownerID, vaultID)
}

func (v *vaultCipher) DeleteItem(ctx context.Context, ownerID, itemID string) error {
	return v.items.Delete(ctx, ownerID, itemID)
}

func (v *vaultCipher) auditDecryptFailure(ctx context.Context, itemID string) {
	if v.audit == nil {
		return
	}
	if _, err := v.audit.LogEvent(ctx, "system", models.ActionItemDecryptFail, itemID, "authentication failed"); err != nil {
		logger.FromContext(ctx).Error().Err(err).
			Str("item_id", itemID).
			Msg("failed to record decrypt-failure audit event")
	}
}

func (v *vaultCipher) auditEvent(ctx context.Context, principal, action, resource, details string) {
	if v.audit == nil {
		return
	}
	if _, err := v.audit.LogEvent(ctx, principal, action, resource, details); err != nil {
		logger.FromContext(ctx).Error().Err(err).
			Str("action", action).
			Msg("failed to record audit event")
	}
}
