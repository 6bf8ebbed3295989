package config

import (
	"errors"
	"fmt"
)

// Validation errors for merged configuration.
var (
	ErrNoDSN              = errors.New("database DSN is not set")
	ErrUnknownBackend     = errors.New("unknown storage backend")
	ErrBadPairingBounds   = errors.New("pairing TTL bounds are invalid")
	ErrBadRecoveryScheme  = errors.New("recovery sharing scheme is invalid")
	ErrBadEntropyTimeouts = errors.New("entropy timeouts are invalid")
)

// validate checks the merged configuration for values the core cannot run
// with. It is called once by the builder after all sources are merged.
func (c *StructuredConfig) validate() error {
	if c.Storage.DB.DSN == "" {
		return ErrNoDSN
	}

	switch c.Storage.DB.Backend {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Storage.DB.Backend)
	}

	if c.Pairing.MinTTL <= 0 || c.Pairing.MaxTTL < c.Pairing.MinTTL {
		return fmt.Errorf("%w: min=%s max=%s", ErrBadPairingBounds, c.Pairing.MinTTL, c.Pairing.MaxTTL)
	}

	if c.Recovery.SharesRequired < 2 ||
		c.Recovery.SharesTotal < c.Recovery.SharesRequired ||
		c.Recovery.SharesTotal > 255 {
		return fmt.Errorf("%w: total=%d required=%d", ErrBadRecoveryScheme, c.Recovery.SharesTotal, c.Recovery.SharesRequired)
	}

	if c.Entropy.SourceTimeout <= 0 || c.Entropy.AggregateTimeout < c.Entropy.SourceTimeout {
		return fmt.Errorf("%w: source=%s aggregate=%s", ErrBadEntropyTimeouts, c.Entropy.SourceTimeout, c.Entropy.AggregateTimeout)
	}

	return nil
}
