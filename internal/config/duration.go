package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// durationAlias unmarshals JSON duration values given either as Go duration
// strings ("90s", "1m30s") or as raw nanosecond numbers.
type durationAlias struct {
	value time.Duration
}

func (d *durationAlias) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		parsed, parseErr := time.ParseDuration(asString)
		if parseErr != nil {
			return fmt.Errorf("invalid duration %q: %w", asString, parseErr)
		}
		d.value = parsed
		return nil
	}

	var asNumber int64
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return fmt.Errorf("duration must be a string or a number: %w", err)
	}

	d.value = time.Duration(asNumber)
	return nil
}
