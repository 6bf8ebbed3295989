// Package crypto implements the fixed cipher suite of the vault core:
// ML-KEM-768 key encapsulation, ML-DSA-65 signatures, AES-256-GCM
// authenticated encryption, HKDF-SHA-512 key derivation and GF(256)
// Shamir secret sharing.
//
// The suite is selected at build time. If a primitive is unavailable the
// build fails; there is no runtime detection and no weaker stand-in.
package crypto

import (
	"fmt"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
)

// KEMKeypair holds a raw ML-KEM-768 keypair. The secret key is only ever
// held transiently by the party that owns it; the server persists public
// keys alone.
type KEMKeypair struct {
	PublicKey []byte
	SecretKey []byte
}

// GenerateKEMKeypair creates a fresh ML-KEM-768 keypair from the process
// CSPRNG. Prefer NewKEMKeypairFromSeed when aggregator-sourced entropy is
// available.
func GenerateKEMKeypair() (*KEMKeypair, error) {
	pub, sec, err := mlkem768.GenerateKeyPair(nil)
	if err != nil {
		return nil, fmt.Errorf("mlkem768 keygen: %w", err)
	}

	// MarshalBinary never fails for keys produced by GenerateKeyPair.
	pubBytes, _ := pub.MarshalBinary()
	secBytes, _ := sec.MarshalBinary()

	return &KEMKeypair{PublicKey: pubBytes, SecretKey: secBytes}, nil
}

// NewKEMKeypairFromSeed derives an ML-KEM-768 keypair deterministically from
// a 64-byte seed. The caller is expected to source the seed from the entropy
// aggregator and zero it afterwards.
func NewKEMKeypairFromSeed(seed []byte) (*KEMKeypair, error) {
	if len(seed) != KEMKeySeedSize {
		return nil, fmt.Errorf("%w: kem key seed must be %d bytes, got %d", ErrInvalidSeedSize, KEMKeySeedSize, len(seed))
	}

	pub, sec := mlkem768.NewKeyFromSeed(seed)
	pubBytes, _ := pub.MarshalBinary()
	secBytes, _ := sec.MarshalBinary()

	return &KEMKeypair{PublicKey: pubBytes, SecretKey: secBytes}, nil
}

// ValidateKEMPublicKey checks the byte length of a raw ML-KEM-768 public key
// against the standard's fixed size. It must be called (directly or through
// Encapsulate) before any cryptographic use of the key.
func ValidateKEMPublicKey(publicKey []byte) error {
	if len(publicKey) != KEMPublicKeySize {
		return fmt.Errorf("%w: kem public key must be %d bytes, got %d", ErrInvalidKeySize, KEMPublicKeySize, len(publicKey))
	}
	return nil
}

// ValidateKEMSecretKey checks the byte length of a raw ML-KEM-768 secret key.
func ValidateKEMSecretKey(secretKey []byte) error {
	if len(secretKey) != KEMSecretKeySize {
		return fmt.Errorf("%w: kem secret key must be %d bytes, got %d", ErrInvalidKeySize, KEMSecretKeySize, len(secretKey))
	}
	return nil
}

// Encapsulate runs ML-KEM-768 encapsulation against publicKey and returns
// the KEM ciphertext together with the 32-byte shared secret.
//
// seed, when non-nil, must be KEMEncapSeedSize bytes of aggregator-sourced
// randomness; when nil the process CSPRNG is used.
func Encapsulate(publicKey, seed []byte) (kemCiphertext, sharedSecret []byte, err error) {
	if err := ValidateKEMPublicKey(publicKey); err != nil {
		return nil, nil, err
	}
	if seed != nil && len(seed) != KEMEncapSeedSize {
		return nil, nil, fmt.Errorf("%w: encapsulation seed must be %d bytes, got %d", ErrInvalidSeedSize, KEMEncapSeedSize, len(seed))
	}

	var pub mlkem768.PublicKey
	pub.Unpack(publicKey)

	kemCiphertext = make([]byte, KEMCiphertextSize)
	sharedSecret = make([]byte, KEMSharedKeySize)
	pub.EncapsulateTo(kemCiphertext, sharedSecret, seed)

	return kemCiphertext, sharedSecret, nil
}

// Decapsulate recovers the shared secret from a KEM ciphertext using the
// recipient's secret key. Any malformed input fails closed with
// ErrDecapsulationFailed (after the size checks, which fail with
// ErrInvalidKeySize / ErrInvalidCiphertextSize).
func Decapsulate(secretKey, kemCiphertext []byte) ([]byte, error) {
	if err := ValidateKEMSecretKey(secretKey); err != nil {
		return nil, err
	}
	if len(kemCiphertext) != KEMCiphertextSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidCiphertextSize, KEMCiphertextSize, len(kemCiphertext))
	}

	var sec mlkem768.PrivateKey
	if err := sec.Unpack(secretKey); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecapsulationFailed, err)
	}

	sharedSecret := make([]byte, KEMSharedKeySize)
	sec.DecapsulateTo(sharedSecret, kemCiphertext)

	return sharedSecret, nil
}
