package crypto

import "errors"

// Sentinel errors returned by the cryptographic primitives. Callers should
// use [errors.Is] to match against these values. Every failure here is
// fail-closed: no partial plaintext, no degraded algorithm substitution.
var (
	// ErrInvalidKeySize is returned when a KEM or signature key does not
	// match the standard's fixed byte length. The check runs before any
	// cryptographic call is attempted.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidCiphertextSize is returned when a KEM ciphertext does not
	// match ML-KEM-768's fixed encapsulation size.
	ErrInvalidCiphertextSize = errors.New("invalid kem ciphertext size")

	// ErrInvalidSeedSize is returned when a caller-supplied key-generation
	// or encapsulation seed has the wrong length.
	ErrInvalidSeedSize = errors.New("invalid seed size")

	// ErrDecapsulationFailed is returned when an ML-KEM-768 secret key
	// cannot be unpacked or the decapsulation input is malformed.
	ErrDecapsulationFailed = errors.New("kem decapsulation failed")

	// ErrAEADAuthenticationFailed is returned when AES-256-GCM tag
	// verification fails: the ciphertext, nonce, tag or associated data
	// was tampered with, or the wrong key was derived.
	ErrAEADAuthenticationFailed = errors.New("aead authentication failed")

	// ErrSignatureInvalid is returned when an ML-DSA-65 signature does not
	// verify against the embedded public key and message.
	ErrSignatureInvalid = errors.New("signature verification failed")
)

// Errors returned by the Shamir secret-sharing routines.
var (
	// ErrShamirParams is returned when the parts/threshold configuration
	// is unusable (threshold < 2, parts < threshold, parts > 255).
	ErrShamirParams = errors.New("invalid secret sharing parameters")

	// ErrShamirShares is returned when the shares handed to CombineShares
	// are empty, of mismatched length, or carry duplicate x-coordinates.
	ErrShamirShares = errors.New("invalid secret shares")
)
