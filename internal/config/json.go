package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// parseJSON reads an optional JSON configuration file into a
// StructuredConfig. The JSON document mirrors the struct layout via the
// `json` tags declared on [StructuredConfig]; duration fields accept Go
// duration strings ("2s", "1m") through [durationAlias].
func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	raw, err := os.ReadFile(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}

	var alias structuredConfigAlias
	if err := json.Unmarshal(raw, &alias); err != nil {
		return nil, fmt.Errorf("error parsing json config: %w", err)
	}

	cfg := alias.toConfig()
	return &cfg, nil
}

// structuredConfigAlias exists so duration strings in JSON parse cleanly
// without forcing a custom duration type onto the main config structs.
type structuredConfigAlias struct {
	App      App `json:"app"`
	Storage  Storage `json:"storage"`
	Entropy  struct {
		QuantumAPIURL    string        `json:"quantum_api_url"`
		BeaconURL        string        `json:"beacon_url"`
		SourceTimeout    durationAlias `json:"source_timeout"`
		AggregateTimeout durationAlias `json:"aggregate_timeout"`
	} `json:"entropy"`
	Pairing struct {
		MinTTL        durationAlias `json:"min_ttl"`
		MaxTTL        durationAlias `json:"max_ttl"`
		SweepInterval durationAlias `json:"sweep_interval"`
	} `json:"pairing"`
	Recovery struct {
		SharesTotal    int           `json:"shares_total"`
		SharesRequired int           `json:"shares_required"`
		KitTTL         durationAlias `json:"kit_ttl"`
	} `json:"recovery"`
}

func (a structuredConfigAlias) toConfig() StructuredConfig {
	return StructuredConfig{
		App:     a.App,
		Storage: a.Storage,
		Entropy: Entropy{
			QuantumAPIURL:    a.Entropy.QuantumAPIURL,
			BeaconURL:        a.Entropy.BeaconURL,
			SourceTimeout:    a.Entropy.SourceTimeout.value,
			AggregateTimeout: a.Entropy.AggregateTimeout.value,
		},
		Pairing: Pairing{
			MinTTL:        a.Pairing.MinTTL.value,
			MaxTTL:        a.Pairing.MaxTTL.value,
			SweepInterval: a.Pairing.SweepInterval.value,
		},
		Recovery: Recovery{
			SharesTotal:    a.Recovery.SharesTotal,
			SharesRequired: a.Recovery.SharesRequired,
			KitTTL:         a.Recovery.KitTTL.value,
		},
	}
}
