// Package config loads, merges and validates the vault core configuration
// from environment variables, command-line flags and an optional JSON file.
// Precedence follows merge order: environment first, then flags, then the
// JSON file filling whatever is still unset.
package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container. It aggregates
// all sub-configurations and is populated by merging values from environment
// variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings: version and the identity
	// values embedded in pairing QR payloads.
	App App `envPrefix:"APP_" json:"app,omitempty"`

	// Storage holds the relational database settings.
	Storage Storage `envPrefix:"STORAGE_" json:"storage,omitempty"`

	// Entropy configures the multi-source entropy aggregator.
	Entropy Entropy `envPrefix:"ENTROPY_" json:"entropy,omitempty"`

	// Pairing configures device-pairing session lifetimes and the
	// expiry sweeper.
	Pairing Pairing `envPrefix:"PAIRING_" json:"pairing,omitempty"`

	// Recovery configures threshold secret-sharing defaults.
	Recovery Recovery `envPrefix:"RECOVERY_" json:"recovery,omitempty"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG" json:"-"`
}

// App holds application-level configuration values.
type App struct {
	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION" json:"version"`

	// RPID is the relying-party identifier embedded into pairing QR
	// payloads (mirrors the WebAuthn rpId the outer layer uses).
	// Env: APP_RP_ID
	RPID string `env:"RP_ID" json:"rp_id"`

	// PairingEndpoint is the bridge endpoint URL a scanning device
	// connects to. The transport behind it is an external collaborator.
	// Env: APP_PAIRING_ENDPOINT
	PairingEndpoint string `env:"PAIRING_ENDPOINT" json:"pairing_endpoint"`
}

// Storage groups the configuration for the persistence backend.
type Storage struct {
	DB DB `envPrefix:"DB_" json:"db,omitempty"`
}

// DB holds the relational database connection settings.
type DB struct {
	// Backend selects the driver: "postgres" (default) or "sqlite".
	// Env: STORAGE_DB_BACKEND
	Backend string `env:"BACKEND" envDefault:"postgres" json:"backend"`

	// DSN is the connection string for the selected backend.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN" json:"dsn"`
}

// Entropy configures the entropy aggregator's sources and timeouts.
type Entropy struct {
	// QuantumAPIURL is the endpoint of a true-quantum network RNG
	// returning JSON uint8 arrays (e.g. an ANU QRNG compatible API).
	// Empty disables the source. Env: ENTROPY_QUANTUM_API_URL
	QuantumAPIURL string `env:"QUANTUM_API_URL" json:"quantum_api_url"`

	// BeaconURL is the endpoint of a public randomness beacon exposing
	// the NIST beacon 2.0 pulse format. Empty disables the source.
	// Env: ENTROPY_BEACON_URL
	BeaconURL string `env:"BEACON_URL" json:"beacon_url"`

	// SourceTimeout bounds each individual source query.
	// Env: ENTROPY_SOURCE_TIMEOUT
	SourceTimeout time.Duration `env:"SOURCE_TIMEOUT" envDefault:"2s" json:"source_timeout"`

	// AggregateTimeout bounds one whole Generate call across all sources.
	// Env: ENTROPY_AGGREGATE_TIMEOUT
	AggregateTimeout time.Duration `env:"AGGREGATE_TIMEOUT" envDefault:"5s" json:"aggregate_timeout"`
}

// Pairing configures device-pairing sessions.
type Pairing struct {
	// MinTTL and MaxTTL bound the caller-requested session lifetime.
	// Env: PAIRING_MIN_TTL / PAIRING_MAX_TTL
	MinTTL time.Duration `env:"MIN_TTL" envDefault:"30s" json:"min_ttl"`
	MaxTTL time.Duration `env:"MAX_TTL" envDefault:"300s" json:"max_ttl"`

	// SweepInterval is how often the background sweeper removes expired
	// PENDING sessions. Expiry is always re-checked on use, so the sweep
	// is garbage collection, not a security boundary.
	// Env: PAIRING_SWEEP_INTERVAL
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m" json:"sweep_interval"`
}

// Recovery configures threshold secret-sharing defaults.
type Recovery struct {
	// SharesTotal is the default N when generating a kit.
	// Env: RECOVERY_SHARES_TOTAL
	SharesTotal int `env:"SHARES_TOTAL" envDefault:"5" json:"shares_total"`

	// SharesRequired is the default threshold T.
	// Env: RECOVERY_SHARES_REQUIRED
	SharesRequired int `env:"SHARES_REQUIRED" envDefault:"3" json:"shares_required"`

	// KitTTL is how long a kit stays usable before it expires.
	// Env: RECOVERY_KIT_TTL
	KitTTL time.Duration `env:"KIT_TTL" envDefault:"8760h" json:"kit_ttl"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all supported sources: environment variables first,
// then command-line flags, then an optional JSON file referenced by either.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
