package entropy

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Source is one provider of random bytes. Fetch must respect ctx and return
// at least n bytes on success; sources whose Raw method reports true deliver
// unconditioned device output and get Von Neumann debiasing before mixing.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Raw reports whether the source returns an unconditioned bit stream.
	Raw() bool

	// Fetch returns at least n random bytes, bounded by ctx.
	Fetch(ctx context.Context, n int) ([]byte, error)
}

// HardwareSource reads the local hardware-backed CSPRNG (crypto/rand). It is
// the mandatory path: the aggregator treats its failure as fatal. The kernel
// already conditions its output, so Raw is false.
type HardwareSource struct{}

func (HardwareSource) Name() string { return "hardware-csprng" }
func (HardwareSource) Raw() bool    { return false }

func (HardwareSource) Fetch(_ context.Context, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEntropyExhausted, err)
	}
	return buf, nil
}

// QuantumAPISource queries a true-quantum network RNG exposing the common
// JSON uint8-array API (ANU QRNG compatible: ?length=N&type=uint8). Device
// output is treated as a raw bit stream and debiased by the aggregator.
type QuantumAPISource struct {
	client *resty.Client
	url    string
}

// NewQuantumAPISource constructs a QuantumAPISource for the given endpoint.
func NewQuantumAPISource(url string) *QuantumAPISource {
	return &QuantumAPISource{
		client: resty.New(),
		url:    url,
	}
}

func (s *QuantumAPISource) Name() string { return "quantum-api" }
func (s *QuantumAPISource) Raw() bool    { return true }

type quantumAPIResponse struct {
	Data    []int `json:"data"`
	Success bool  `json:"success"`
}

func (s *QuantumAPISource) Fetch(ctx context.Context, n int) ([]byte, error) {
	var out quantumAPIResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("length", fmt.Sprintf("%d", n)).
		SetQueryParam("type", "uint8").
		SetResult(&out).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("%w: quantum api: %w", ErrSourceUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: quantum api status %d", ErrSourceUnavailable, resp.StatusCode())
	}
	if !out.Success || len(out.Data) < n {
		return nil, fmt.Errorf("%w: quantum api returned %d of %d bytes", ErrSourceUnavailable, len(out.Data), n)
	}

	buf := make([]byte, len(out.Data))
	for i, v := range out.Data {
		buf[i] = byte(v)
	}
	return buf, nil
}

// BeaconSource queries a public randomness beacon exposing the NIST beacon
// 2.0 pulse format. A pulse's outputValue is 64 conditioned bytes; longer
// requests are served by fetching the latest pulse and cycling it, which is
// acceptable because the beacon is only ever one mix input among several.
type BeaconSource struct {
	client *resty.Client
	url    string
}

// NewBeaconSource constructs a BeaconSource for the given pulse endpoint.
func NewBeaconSource(url string) *BeaconSource {
	return &BeaconSource{
		client: resty.New(),
		url:    url,
	}
}

func (s *BeaconSource) Name() string { return "randomness-beacon" }
func (s *BeaconSource) Raw() bool    { return false }

type beaconResponse struct {
	Pulse struct {
		OutputValue string `json:"outputValue"`
	} `json:"pulse"`
}

func (s *BeaconSource) Fetch(ctx context.Context, n int) ([]byte, error) {
	var out beaconResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("%w: beacon: %w", ErrSourceUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: beacon status %d", ErrSourceUnavailable, resp.StatusCode())
	}

	pulse, err := hex.DecodeString(out.Pulse.OutputValue)
	if err != nil || len(pulse) == 0 {
		return nil, fmt.Errorf("%w: beacon returned malformed pulse", ErrSourceUnavailable)
	}

	buf := make([]byte, n)
	for i := range buf {
		buf[i] = pulse[i%len(pulse)]
	}
	return buf, nil
}
