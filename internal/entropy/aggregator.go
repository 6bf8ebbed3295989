// Package entropy aggregates random bytes from multiple independent sources:
// true-quantum network RNGs, a public randomness beacon, and the local
// hardware CSPRNG. All sources are queried concurrently under a bounded
// aggregate timeout; raw device streams are Von Neumann debiased; every
// successful buffer is XOR-mixed and the result whitened through
// HKDF-SHA-512, so no single weak or compromised source can dominate the
// output. Only the hardware path is mandatory.
package entropy

import (
	"context"
	"fmt"
	"time"

	"github.com/qrypta/vaultcore/internal/config"
	"github.com/qrypta/vaultcore/internal/crypto"
	"github.com/qrypta/vaultcore/internal/logger"
)

// rawOverfetch is how many times more bytes are requested from raw sources,
// since Von Neumann debiasing discards about three quarters of a fair stream.
const rawOverfetch = 8

// Aggregator fans Generate calls out to all configured sources and mixes
// the results. It is safe for concurrent use.
type Aggregator struct {
	sources          []Source
	hardware         Source
	sourceTimeout    time.Duration
	aggregateTimeout time.Duration

	logger *logger.Logger
}

// NewAggregator builds an Aggregator from configuration. Network sources are
// optional and enabled by their URLs; the hardware CSPRNG is always present.
func NewAggregator(cfg config.Entropy, log *logger.Logger) *Aggregator {
	sources := make([]Source, 0, 2)
	if cfg.QuantumAPIURL != "" {
		sources = append(sources, NewQuantumAPISource(cfg.QuantumAPIURL))
	}
	if cfg.BeaconURL != "" {
		sources = append(sources, NewBeaconSource(cfg.BeaconURL))
	}

	return &Aggregator{
		sources:          sources,
		hardware:         HardwareSource{},
		sourceTimeout:    cfg.SourceTimeout,
		aggregateTimeout: cfg.AggregateTimeout,
		logger:           log,
	}
}

// newAggregatorForSources is the test seam: it wires explicit sources.
func newAggregatorForSources(hardware Source, sources []Source, sourceTimeout, aggregateTimeout time.Duration, log *logger.Logger) *Aggregator {
	return &Aggregator{
		sources:          sources,
		hardware:         hardware,
		sourceTimeout:    sourceTimeout,
		aggregateTimeout: aggregateTimeout,
		logger:           log,
	}
}

type sourceResult struct {
	name string
	buf  []byte
	err  error
}

// Generate returns exactly n high-quality random bytes.
//
// All sources are queried concurrently, each under its own timeout, the
// whole call under the aggregate timeout. Raw streams are debiased before
// mixing. Individual source failures are logged and ignored; only a failure
// of the mandatory hardware path returns ErrEntropyExhausted.
func (a *Aggregator) Generate(ctx context.Context, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLength, n)
	}

	log := logger.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, a.aggregateTimeout)
	defer cancel()

	results := make(chan sourceResult, len(a.sources)+1)

	query := func(src Source) {
		srcCtx, srcCancel := context.WithTimeout(ctx, a.sourceTimeout)
		defer srcCancel()

		want := n
		if src.Raw() {
			want = n * rawOverfetch
		}

		buf, err := src.Fetch(srcCtx, want)
		if err == nil && src.Raw() {
			buf = VonNeumannDebias(buf)
			if len(buf) < n {
				err = fmt.Errorf("%w: %s yielded %d of %d bytes after debiasing", ErrSourceUnavailable, src.Name(), len(buf), n)
				buf = nil
			}
		}

		results <- sourceResult{name: src.Name(), buf: buf, err: err}
	}

	go query(a.hardware)
	for _, src := range a.sources {
		go query(src)
	}

	var hardwareBuf []byte
	mixins := make([][]byte, 0, len(a.sources))

	for i := 0; i < len(a.sources)+1; i++ {
		res := <-results

		if res.err != nil {
			if res.name == a.hardware.Name() {
				log.Err(res.err).
					Str("source", res.name).
					Msg("mandatory hardware entropy path failed")
				return nil, fmt.Errorf("%w: %w", ErrEntropyExhausted, res.err)
			}

			log.Warn().Err(res.err).
				Str("source", res.name).
				Msg("entropy source failed, continuing without it")
			continue
		}

		if res.name == a.hardware.Name() {
			hardwareBuf = res.buf
		} else {
			mixins = append(mixins, res.buf)
		}
	}

	mixed := make([]byte, n)
	copy(mixed, hardwareBuf)
	for _, buf := range mixins {
		xorFold(mixed, buf)
	}

	// The KDF pass prevents any single source from steering the output
	// even if it predicted every other input.
	out, err := crypto.DeriveKey(mixed, nil, []byte(crypto.ContextEntropyMix), n)
	crypto.Zero(mixed)
	if err != nil {
		return nil, fmt.Errorf("whitening aggregated entropy: %w", err)
	}

	log.Debug().
		Int("bytes", n).
		Int("sources_mixed", len(mixins)+1).
		Msg("generated aggregated entropy")

	return out, nil
}

// xorFold XORs src into dst, cycling src when it is shorter than dst.
func xorFold(dst, src []byte) {
	if len(src) == 0 {
		return
	}
	for i := range dst {
		dst[i] ^= src[i%len(src)]
	}
}
