package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-d database DSN
//	-backend storage backend ("postgres" or "sqlite")
//	-c/-config json file path with configs
//	-quantum-url quantum RNG source endpoint
//	-beacon-url randomness beacon endpoint
//	-source-timeout per-source entropy timeout (e.g., "2s")
//	-aggregate-timeout whole-generate entropy timeout (e.g., "5s")
//	-sweep-interval pairing sweeper period (e.g., "1m")
//	-rp-id relying-party id for pairing QR payloads
//	-pairing-endpoint bridge endpoint for pairing QR payloads
func ParseFlags() *StructuredConfig {
	var databaseDSN string
	var backend string
	var jsonConfigPath string
	var quantumURL string
	var beaconURL string
	var sourceTimeout time.Duration
	var aggregateTimeout time.Duration
	var sweepInterval time.Duration
	var rpID string
	var pairingEndpoint string

	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&backend, "backend", "", "Storage backend: postgres or sqlite")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&quantumURL, "quantum-url", "", "Quantum RNG source endpoint")
	flag.StringVar(&beaconURL, "beacon-url", "", "Randomness beacon endpoint")
	flag.DurationVar(&sourceTimeout, "source-timeout", 0, "Per-source entropy timeout (e.g., 2s)")
	flag.DurationVar(&aggregateTimeout, "aggregate-timeout", 0, "Aggregate entropy timeout (e.g., 5s)")
	flag.DurationVar(&sweepInterval, "sweep-interval", 0, "Pairing sweeper period (e.g., 1m)")
	flag.StringVar(&rpID, "rp-id", "", "Relying-party id for pairing QR payloads")
	flag.StringVar(&pairingEndpoint, "pairing-endpoint", "", "Bridge endpoint for pairing QR payloads")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			RPID:            rpID,
			PairingEndpoint: pairingEndpoint,
		},
		Storage: Storage{
			DB: DB{
				Backend: backend,
				DSN:     databaseDSN,
			},
		},
		Entropy: Entropy{
			QuantumAPIURL:    quantumURL,
			BeaconURL:        beaconURL,
			SourceTimeout:    sourceTimeout,
			AggregateTimeout: aggregateTimeout,
		},
		Pairing: Pairing{
			SweepInterval: sweepInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}
