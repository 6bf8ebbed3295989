package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify_RoundTrip(t *testing.T) {
	kp, err := GenerateSigningKeypair()
	require.NoError(t, err)
	assert.Len(t, kp.PublicKey, SigPublicKeySize)
	assert.Len(t, kp.SecretKey, SigSecretKeySize)

	message := []byte("audit event transcript")
	signature, err := Sign(kp.SecretKey, message)
	require.NoError(t, err)
	assert.Len(t, signature, SignatureSize)

	assert.NoError(t, Verify(kp.PublicKey, message, signature))
}

func TestVerify_MutatedMessageFails(t *testing.T) {
	kp, err := GenerateSigningKeypair()
	require.NoError(t, err)

	message := []byte("original message")
	signature, err := Sign(kp.SecretKey, message)
	require.NoError(t, err)

	mutated := bytes.Clone(message)
	mutated[0] ^= 0x01

	assert.ErrorIs(t, Verify(kp.PublicKey, mutated, signature), ErrSignatureInvalid)
}

func TestVerify_MutatedSignatureFails(t *testing.T) {
	kp, err := GenerateSigningKeypair()
	require.NoError(t, err)

	message := []byte("original message")
	signature, err := Sign(kp.SecretKey, message)
	require.NoError(t, err)

	signature[10] ^= 0x01
	assert.ErrorIs(t, Verify(kp.PublicKey, message, signature), ErrSignatureInvalid)
}

func TestVerify_WrongKeyFails(t *testing.T) {
	signer, err := GenerateSigningKeypair()
	require.NoError(t, err)
	other, err := GenerateSigningKeypair()
	require.NoError(t, err)

	message := []byte("signed by signer")
	signature, err := Sign(signer.SecretKey, message)
	require.NoError(t, err)

	assert.ErrorIs(t, Verify(other.PublicKey, message, signature), ErrSignatureInvalid)
}

func TestSignVerify_SizeValidation(t *testing.T) {
	_, err := Sign(make([]byte, 10), []byte("msg"))
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	err = Verify(make([]byte, 10), []byte("msg"), make([]byte, SignatureSize))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestNewSigningKeypairFromSeed_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x07}, SigKeySeedSize)

	first, err := NewSigningKeypairFromSeed(seed)
	require.NoError(t, err)
	second, err := NewSigningKeypairFromSeed(seed)
	require.NoError(t, err)

	assert.Equal(t, first.PublicKey, second.PublicKey)
	assert.Equal(t, first.SecretKey, second.SecretKey)
}
