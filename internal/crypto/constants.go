package crypto

import (
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
)

// Cipher suite identifiers. One audited backend, fixed at build time; there
// is no runtime algorithm negotiation and no fallback implementation.
const (
	KEMAlgorithm  = "ML-KEM-768"
	SigAlgorithm  = "ML-DSA-65"
	AEADAlgorithm = "AES-256-GCM"
	KDFAlgorithm  = "HKDF-SHA-512"
)

// ML-KEM-768 sizes (FIPS 203).
const (
	KEMPublicKeySize  = mlkem768.PublicKeySize
	KEMSecretKeySize  = mlkem768.PrivateKeySize
	KEMCiphertextSize = mlkem768.CiphertextSize
	KEMSharedKeySize  = mlkem768.SharedKeySize
	KEMKeySeedSize    = mlkem768.KeySeedSize
	KEMEncapSeedSize  = mlkem768.EncapsulationSeedSize
)

// ML-DSA-65 sizes (FIPS 204).
const (
	SigPublicKeySize = mldsa65.PublicKeySize
	SigSecretKeySize = mldsa65.PrivateKeySize
	SignatureSize    = mldsa65.SignatureSize
	SigKeySeedSize   = mldsa65.SeedSize
)

// Symmetric parameters.
const (
	AEADKeySize   = 32
	AEADNonceSize = 12
	AEADTagSize   = 16

	MasterKeySize    = 32
	RecoverySeedSize = 64
)

// HKDF domain-separation labels. Changing any of these invalidates all
// previously produced ciphertexts of the corresponding kind.
const (
	ContextItemKey    = "vaultcore:item:v1"
	ContextDeviceWrap = "vaultcore:device-wrap:v1"
	ContextEntropyMix = "vaultcore:entropy:v1"
	ContextRecovery   = "vaultcore:recovery-enroll:v1"
)
