package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrLastDevice is returned when revocation would leave the owner with
	// no enrolled device and therefore no way to unwrap the master key.
	ErrLastDevice = errors.New("cannot revoke the last enrolled device")

	ErrPairingTokenNotFound   = errors.New("pairing token not found")
	ErrPairingSessionExpired  = errors.New("pairing session is expired")
	ErrPairingSessionConsumed = errors.New("pairing session already consumed")
	ErrPairingNotOwner        = errors.New("pairing session belongs to another principal")

	// ErrInsufficientShares is returned when fewer valid shares remain than
	// the kit's reconstruction threshold.
	ErrInsufficientShares = errors.New("not enough valid shares to reconstruct the seed")

	// ErrShareChecksumMismatch marks an individual share that failed its
	// integrity check. It is non-fatal while the threshold still holds.
	ErrShareChecksumMismatch = errors.New("share checksum mismatch")

	// ErrSeedCommitmentMismatch is returned when the reconstructed seed does
	// not hash to the kit's stored commitment. Nothing is issued.
	ErrSeedCommitmentMismatch = errors.New("reconstructed seed does not match commitment")

	// ErrRecoveryKitInactive is returned for kits already consumed by a
	// previous successful recovery, or expired.
	ErrRecoveryKitInactive = errors.New("recovery kit is no longer active")

	ErrAuditSignatureInvalid = errors.New("audit event signature is invalid")
)
