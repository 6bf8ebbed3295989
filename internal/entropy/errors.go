package entropy

import "errors"

var (
	// ErrSourceUnavailable is returned by an individual source when its
	// query fails or times out. The aggregator logs it and moves on;
	// losing every network source is still non-fatal.
	ErrSourceUnavailable = errors.New("entropy source unavailable")

	// ErrEntropyExhausted is returned when the mandatory hardware CSPRNG
	// path itself fails. This is a fatal configuration error: it means no
	// trustworthy randomness exists on the host at all.
	ErrEntropyExhausted = errors.New("entropy exhausted: hardware source failed")

	// ErrInvalidLength is returned when Generate is asked for a
	// non-positive number of bytes.
	ErrInvalidLength = errors.New("requested entropy length must be positive")
)
