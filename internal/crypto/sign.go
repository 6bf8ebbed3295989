package crypto

import (
	"fmt"

	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
)

// SigningKeypair holds a raw ML-DSA-65 keypair used for the tamper-evident
// audit trail.
type SigningKeypair struct {
	PublicKey []byte
	SecretKey []byte
}

// GenerateSigningKeypair creates a fresh ML-DSA-65 keypair from the process
// CSPRNG.
func GenerateSigningKeypair() (*SigningKeypair, error) {
	pub, sec, err := mldsa65.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("mldsa65 keygen: %w", err)
	}

	pubBytes, _ := pub.MarshalBinary()
	secBytes, _ := sec.MarshalBinary()

	return &SigningKeypair{PublicKey: pubBytes, SecretKey: secBytes}, nil
}

// NewSigningKeypairFromSeed derives an ML-DSA-65 keypair deterministically
// from a 32-byte seed sourced from the entropy aggregator.
func NewSigningKeypairFromSeed(seed []byte) (*SigningKeypair, error) {
	if len(seed) != SigKeySeedSize {
		return nil, fmt.Errorf("%w: signing key seed must be %d bytes, got %d", ErrInvalidSeedSize, SigKeySeedSize, len(seed))
	}

	var seedArr [mldsa65.SeedSize]byte
	copy(seedArr[:], seed)
	pub, sec := mldsa65.NewKeyFromSeed(&seedArr)

	pubBytes, _ := pub.MarshalBinary()
	secBytes, _ := sec.MarshalBinary()

	return &SigningKeypair{PublicKey: pubBytes, SecretKey: secBytes}, nil
}

// Sign produces a deterministic ML-DSA-65 signature over message with the
// given raw secret key.
func Sign(secretKey, message []byte) ([]byte, error) {
	if len(secretKey) != SigSecretKeySize {
		return nil, fmt.Errorf("%w: signing key must be %d bytes, got %d", ErrInvalidKeySize, SigSecretKeySize, len(secretKey))
	}

	var sec mldsa65.PrivateKey
	if err := sec.UnmarshalBinary(secretKey); err != nil {
		return nil, fmt.Errorf("unmarshal signing key: %w", err)
	}

	signature := make([]byte, SignatureSize)
	if err := mldsa65.SignTo(&sec, message, nil, false, signature); err != nil {
		return nil, fmt.Errorf("mldsa65 sign: %w", err)
	}

	return signature, nil
}

// Verify checks an ML-DSA-65 signature over message against the raw public
// key. A failed check returns ErrSignatureInvalid; malformed keys fail with
// ErrInvalidKeySize before any verification is attempted.
func Verify(publicKey, message, signature []byte) error {
	if len(publicKey) != SigPublicKeySize {
		return fmt.Errorf("%w: signature public key must be %d bytes, got %d", ErrInvalidKeySize, SigPublicKeySize, len(publicKey))
	}

	var pub mldsa65.PublicKey
	if err := pub.UnmarshalBinary(publicKey); err != nil {
		return fmt.Errorf("unmarshal signature public key: %w", err)
	}

	if !mldsa65.Verify(&pub, message, nil, signature) {
		return ErrSignatureInvalid
	}

	return nil
}
