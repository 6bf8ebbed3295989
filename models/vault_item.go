package models

import "time"

// VaultItem is one encrypted secret record. The title may be stored in
// plaintext to support listing and search; this is a documented
// zero-knowledge boundary, not an oversight. Everything else is opaque
// ciphertext produced by a per-item KEM session.
type VaultItem struct {
	// ID is the item identifier (UUIDv7). It is bound into both the
	// per-item key derivation and the AEAD associated data, so a bundle
	// cannot be replayed under another item's identity.
	ID string `json:"id"`

	// VaultID identifies the vault keypair the item was encrypted against.
	VaultID string `json:"vault_id"`

	// OwnerID is the owning principal. All reads and writes are scoped
	// to it.
	OwnerID string `json:"owner_id"`

	// Title is an optional plaintext label.
	Title string `json:"title"`

	// Bundle holds the encrypted payload.
	Bundle EncryptedItem `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i VaultItem) TableName() string {
	return "vault_items"
}

// EncryptedItem is the output of one per-item hybrid encryption:
// an ML-KEM-768 encapsulation plus an AES-256-GCM envelope with the
// authentication tag kept separately.
type EncryptedItem struct {
	// KEMCiphertext is the encapsulation against the vault public key.
	KEMCiphertext []byte `json:"kem_ciphertext"`

	// Ciphertext is the AEAD ciphertext body, without the tag.
	Ciphertext []byte `json:"ciphertext"`

	// Nonce is the 96-bit AEAD nonce, fresh per encryption.
	Nonce []byte `json:"nonce"`

	// AuthTag is the 16-byte GCM authentication tag.
	AuthTag []byte `json:"auth_tag"`
}
