package models

import "time"

// Device represents one enrolled client of a user's vault. Each device holds
// its own ML-KEM-768 keypair; the server stores only the public half together
// with the vault master key wrapped against it.
type Device struct {
	// DeviceID is the internal unique identifier of the device (UUIDv7).
	DeviceID string `json:"device_id"`

	// OwnerID is the authenticated principal that enrolled the device.
	// Supplied by the authentication collaborator, never derived here.
	OwnerID string `json:"owner_id"`

	// Name is the user-visible device label ("work laptop", "phone").
	Name string `json:"name"`

	// PublicKey is the device's raw ML-KEM-768 public key.
	PublicKey []byte `json:"-"`

	// WrappedMasterKey is the vault master key encapsulated and
	// AEAD-encrypted for this device. The unwrapped master key never
	// appears in durable storage.
	WrappedMasterKey WrappedKey `json:"-"`

	// CreatedAt is the enrollment timestamp.
	CreatedAt time.Time `json:"created_at"`

	// LastUsed is updated whenever the device participates in a
	// key-distribution flow.
	LastUsed time.Time `json:"last_used"`
}

// TableName returns the name of the database table
// associated with the Device model.
func (d Device) TableName() string {
	return "devices"
}

// WrappedKey is a key encrypted for a specific recipient public key:
// a KEM ciphertext plus the AEAD envelope of the wrapped secret.
// It is transportable without exposing the underlying key material.
type WrappedKey struct {
	// KEMCiphertext is the ML-KEM-768 encapsulation against the
	// recipient's public key.
	KEMCiphertext []byte `json:"kem_ciphertext"`

	// Ciphertext is the AES-256-GCM encryption of the wrapped key under
	// the encapsulated shared secret (tag appended).
	Ciphertext []byte `json:"ciphertext"`

	// Nonce is the 96-bit AEAD nonce.
	Nonce []byte `json:"nonce"`
}

// VaultKeypair is the per-vault ML-KEM-768 keypair used for item encryption.
// Only the public key is persisted; the secret key is handed to the owning
// device at creation time and is never held unwrapped server-side at rest.
type VaultKeypair struct {
	VaultID   string    `json:"vault_id"`
	OwnerID   string    `json:"owner_id"`
	PublicKey []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (v VaultKeypair) TableName() string {
	return "vault_keypairs"
}
