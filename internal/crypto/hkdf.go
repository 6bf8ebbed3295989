package crypto

import (
	"crypto/sha512"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey derives length bytes from secret using HKDF-SHA-512.
//
// Parameters:
//   - secret: the input key material (e.g. a KEM shared secret)
//   - salt: optional salt; if empty, a zero-filled salt is used
//   - info: context/application-specific info for domain separation
//   - length: desired output length in bytes
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	if len(salt) == 0 {
		salt = make([]byte, sha512.Size)
	}

	reader := hkdf.New(sha512.New, secret, salt, info)
	key := make([]byte, length)

	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return key, nil
}

// DeriveItemKey derives the per-item AEAD key for a vault item. The item
// identity is bound into the derivation so two items encrypted under the
// same vault keypair can never share a key, even on shared-secret collision.
func DeriveItemKey(sharedSecret []byte, itemID string) ([]byte, error) {
	info := make([]byte, 0, len(ContextItemKey)+len(itemID))
	info = append(info, ContextItemKey...)
	info = append(info, itemID...)

	return DeriveKey(sharedSecret, nil, info, AEADKeySize)
}

// DeriveWrapKey derives the AEAD key used to wrap a vault master key for a
// specific device from the encapsulated shared secret.
func DeriveWrapKey(sharedSecret []byte) ([]byte, error) {
	return DeriveKey(sharedSecret, nil, []byte(ContextDeviceWrap), AEADKeySize)
}
