package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKEMKeypair_Sizes(t *testing.T) {
	kp, err := GenerateKEMKeypair()
	require.NoError(t, err)

	assert.Len(t, kp.PublicKey, KEMPublicKeySize)
	assert.Len(t, kp.SecretKey, KEMSecretKeySize)
}

func TestNewKEMKeypairFromSeed_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, KEMKeySeedSize)

	first, err := NewKEMKeypairFromSeed(seed)
	require.NoError(t, err)
	second, err := NewKEMKeypairFromSeed(seed)
	require.NoError(t, err)

	assert.Equal(t, first.PublicKey, second.PublicKey)
	assert.Equal(t, first.SecretKey, second.SecretKey)
}

func TestNewKEMKeypairFromSeed_BadSeed(t *testing.T) {
	_, err := NewKEMKeypairFromSeed(make([]byte, 16))
	assert.ErrorIs(t, err, ErrInvalidSeedSize)
}

func TestEncapsulateDecapsulate_RoundTrip(t *testing.T) {
	kp, err := GenerateKEMKeypair()
	require.NoError(t, err)

	kemCiphertext, sharedSecret, err := Encapsulate(kp.PublicKey, nil)
	require.NoError(t, err)
	assert.Len(t, kemCiphertext, KEMCiphertextSize)
	assert.Len(t, sharedSecret, KEMSharedKeySize)

	recovered, err := Decapsulate(kp.SecretKey, kemCiphertext)
	require.NoError(t, err)
	assert.Equal(t, sharedSecret, recovered)
}

func TestEncapsulate_InvalidPublicKeySize(t *testing.T) {
	tests := []struct {
		name string
		key  []byte
	}{
		{name: "nil key", key: nil},
		{name: "too short", key: make([]byte, KEMPublicKeySize-1)},
		{name: "too long", key: make([]byte, KEMPublicKeySize+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Encapsulate(tt.key, nil)
			assert.ErrorIs(t, err, ErrInvalidKeySize)
		})
	}
}

func TestDecapsulate_InvalidInputs(t *testing.T) {
	kp, err := GenerateKEMKeypair()
	require.NoError(t, err)

	_, err = Decapsulate(make([]byte, 10), make([]byte, KEMCiphertextSize))
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	_, err = Decapsulate(kp.SecretKey, make([]byte, 10))
	assert.ErrorIs(t, err, ErrInvalidCiphertextSize)
}

func TestDecapsulate_TamperedCiphertextChangesSecret(t *testing.T) {
	// ML-KEM uses implicit rejection: decapsulating a tampered
	// encapsulation succeeds but yields an unrelated secret. The
	// tamper signal surfaces at the AEAD layer.
	kp, err := GenerateKEMKeypair()
	require.NoError(t, err)

	kemCiphertext, sharedSecret, err := Encapsulate(kp.PublicKey, nil)
	require.NoError(t, err)

	kemCiphertext[0] ^= 0x01
	recovered, err := Decapsulate(kp.SecretKey, kemCiphertext)
	require.NoError(t, err)

	assert.NotEqual(t, sharedSecret, recovered)
}
