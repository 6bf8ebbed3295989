package models

import "time"

// Recovery share states.
const (
	ShareActive   = "ACTIVE"
	ShareConsumed = "CONSUMED"
)

// RecoveryKit is the threshold-sharing configuration for one recovery seed.
// The seed itself is split, distributed and discarded at kit creation; the
// commitment hash is its only on-disk trace. A kit is single-use: the first
// successful recovery deactivates it.
type RecoveryKit struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	// SharesTotal is N, the number of shares the seed was split into.
	SharesTotal int `json:"shares_total"`

	// SharesRequired is T, the reconstruction threshold.
	SharesRequired int `json:"shares_required"`

	// SeedCommitment is the hex SHA-256 of the raw seed. Recovery verifies
	// the reconstructed seed against it before trusting the result.
	SeedCommitment string `json:"seed_commitment"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (k RecoveryKit) TableName() string {
	return "recovery_kits"
}

// RecoveryShare is the persisted form of one Shamir share: AEAD-encrypted
// under its own key, which left the server inside a ShareBundle at kit
// creation. Shares are consumed, not deleted, on recovery.
type RecoveryShare struct {
	ShareID        string    `json:"share_id"`
	KitID          string    `json:"kit_id"`
	Index          int       `json:"index"`
	EncryptedShare []byte    `json:"-"`
	Nonce          []byte    `json:"-"`
	Checksum       string    `json:"checksum"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func (s RecoveryShare) TableName() string {
	return "recovery_shares"
}

// ShareBundle is the one-time plaintext handout for a single trustee:
// the share bytes, the key its persisted copy is encrypted under, and the
// checksum used to validate it when it comes back. Bundles are returned
// exactly once from kit generation and travel over an external messaging
// channel; the server keeps none of this in plaintext.
type ShareBundle struct {
	Index    int    `json:"index"`
	Share    []byte `json:"share"`
	Key      []byte `json:"key"`
	Checksum string `json:"checksum"`
}

// ProvidedShare is one share submitted back during recovery.
type ProvidedShare struct {
	Index    int    `json:"index"`
	Share    []byte `json:"share"`
	Checksum string `json:"checksum"`
}

// RecoveryResult carries the outcome of a successful recovery: credentials
// deterministically derived from the reconstructed seed, ready to enroll a
// replacement device.
type RecoveryResult struct {
	KitID string `json:"kit_id"`

	// EnrollmentSecret is the 32-byte credential derived from the seed.
	// The same seed always derives the same secret.
	EnrollmentSecret []byte `json:"-"`
}
