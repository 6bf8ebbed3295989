package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// SealAESGCM encrypts plaintext with AES-256-GCM and returns the ciphertext
// body and the 16-byte authentication tag separately, matching the stored
// bundle shape. The nonce must be AEADNonceSize bytes and fresh per call.
func SealAESGCM(key, nonce, plaintext, aad []byte) (ciphertext, tag []byte, err error) {
	aead, err := newAESGCM(key, len(nonce))
	if err != nil {
		return nil, nil, err
	}

	sealed := aead.Seal(nil, nonce, plaintext, aad)
	split := len(sealed) - AEADTagSize

	return sealed[:split], sealed[split:], nil
}

// OpenAESGCM decrypts a ciphertext/tag pair produced by SealAESGCM, verifying
// the tag and the associated data. Any mismatch fails closed with
// ErrAEADAuthenticationFailed; no partial plaintext is ever returned.
func OpenAESGCM(key, nonce, ciphertext, tag, aad []byte) ([]byte, error) {
	aead, err := newAESGCM(key, len(nonce))
	if err != nil {
		return nil, err
	}
	if len(tag) != AEADTagSize {
		return nil, fmt.Errorf("%w: tag must be %d bytes, got %d", ErrAEADAuthenticationFailed, AEADTagSize, len(tag))
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAEADAuthenticationFailed, err)
	}

	return plaintext, nil
}

func newAESGCM(key []byte, nonceLen int) (cipher.AEAD, error) {
	if len(key) != AEADKeySize {
		return nil, fmt.Errorf("%w: aead key must be %d bytes, got %d", ErrInvalidKeySize, AEADKeySize, len(key))
	}
	if nonceLen != AEADNonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrAEADAuthenticationFailed, AEADNonceSize, nonceLen)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm mode: %w", err)
	}

	return aead, nil
}
