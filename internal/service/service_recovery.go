package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qrypta/vaultcore/internal/config"
	"github.com/qrypta/vaultcore/internal/crypto"
	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/internal/store"
	"github.com/qrypta/vaultcore/models"
)

// shareChecksumBytes is how many bytes of the share digest are kept.
const shareChecksumBytes = 8

type recoveryService struct {
	kits    store.RecoveryRepository
	entropy EntropyGenerator
	audit   AuditTrail

	kitTTL          time.Duration
	defaultTotal    int
	defaultRequired int

	now func() time.Time

	logger *logger.Logger
}

// NewRecoveryService constructs the threshold secret-sharing recovery
// service.
func NewRecoveryService(kits store.RecoveryRepository, entropy EntropyGenerator, audit AuditTrail, cfg config.Recovery, logger *logger.Logger) RecoveryService {
	return &recoveryService{
		kits:            kits,
		entropy:         entropy,
		audit:           audit,
		kitTTL:          cfg.KitTTL,
		defaultTotal:    cfg.SharesTotal,
		defaultRequired: cfg.SharesRequired,
		now:             time.Now,
		logger:          logger,
	}
}

// GenerateKit splits a fresh seed into n shares requiring t to recover.
// Zero n or t fall back to the configured scheme defaults.
func (r *recoveryService) GenerateKit(ctx context.Context, ownerID string, n, t int) (*models.RecoveryKit, []models.ShareBundle, error) {
	if n == 0 {
		n = r.defaultTotal
	}
	if t == 0 {
		t = r.defaultRequired
	}

	seed, err := r.entropy.Generate(ctx, crypto.RecoverySeedSize)
	if err != nil {
		return nil, nil, fmt.Errorf("sourcing recovery seed: %w", err)
	}
	defer crypto.Zero(seed)

	split, err := crypto.SplitSecret(entropyReader{ctx: ctx, gen: r.entropy}, seed, n, t)
	if err != nil {
		return nil, nil, err
	}

	kitID, err := uuid.NewV7()
	if err != nil {
		return nil, nil, fmt.Errorf("generating kit id: %w", err)
	}

	commitment := sha256.Sum256(seed)
	now := r.now().UTC()
	kit := &models.RecoveryKit{
		ID:             kitID.String(),
		OwnerID:        ownerID,
		SharesTotal:    n,
		SharesRequired: t,
		SeedCommitment: hex.EncodeToString(commitment[:]),
		Active:         true,
		CreatedAt:      now,
		ExpiresAt:      now.Add(r.kitTTL),
	}

	bundles := make([]models.ShareBundle, 0, n)
	rows := make([]*models.RecoveryShare, 0, n)

	for x := 1; x <= n; x++ {
		share := split[byte(x)]
		checksum := shareChecksum(x, share)

		key, err := r.entropy.Generate(ctx, crypto.AEADKeySize)
		if err != nil {
			return nil, nil, fmt.Errorf("sourcing share key: %w", err)
		}
		nonce, err := r.entropy.Generate(ctx, crypto.AEADNonceSize)
		if err != nil {
			return nil, nil, fmt.Errorf("sourcing share nonce: %w", err)
		}

		ciphertext, tag, err := crypto.SealAESGCM(key, nonce, share, []byte(kit.ID))
		if err != nil {
			return nil, nil, err
		}

		shareID, err := uuid.NewV7()
		if err != nil {
			return nil, nil, fmt.Errorf("generating share id: %w", err)
		}

		rows = append(rows, &models.RecoveryShare{
			ShareID:        shareID.String(),
			KitID:          kit.ID,
			Index:          x,
			EncryptedShare: append(ciphertext, tag...),
			Nonce:          nonce,
			Checksum:       checksum,
			Status:         models.ShareActive,
			CreatedAt:      now,
		})

		// The bundle is the trustee's one-time copy: plaintext share plus
		// the key its server-side copy is sealed under.
		bundles = append(bundles, models.ShareBundle{
			Index:    x,
			Share:    share,
			Key:      key,
			Checksum: checksum,
		})
	}

	if err := r.kits.SaveKit(ctx, kit, rows); err != nil {
		return nil, nil, err
	}

	r.auditEvent(ctx, ownerID, models.ActionRecoveryKit, kit.ID,
		fmt.Sprintf("kit generated, %d of %d shares required", t, n))

	return kit, bundles, nil
}

func (r *recoveryService) Recover(ctx context.Context, ownerID, kitID string, provided []models.ProvidedShare) (*models.RecoveryResult, error) {
	kit, err := r.kits.GetKit(ctx, ownerID, kitID)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	if !kit.Active || now.After(kit.ExpiresAt) {
		return nil, ErrRecoveryKitInactive
	}

	// Checksum-failing shares are dropped individually; the recovery only
	// fails once fewer than T valid shares remain.
	valid := make(map[byte][]byte, len(provided))
	dropped := 0
	for _, share := range provided {
		if share.Index < 1 || share.Index > kit.SharesTotal {
			dropped++
			continue
		}
		if shareChecksum(share.Index, share.Share) != share.Checksum {
			logger.FromContext(ctx).Warn().
				Str("kit_id", kitID).
				Int("share_index", share.Index).
				Msg("dropping share with checksum mismatch")
			dropped++
			continue
		}
		valid[byte(share.Index)] = share.Share
	}

	if len(valid) < kit.SharesRequired {
		r.auditEvent(ctx, ownerID, models.ActionRecoveryFail, kitID,
			fmt.Sprintf("%d valid shares of %d required", len(valid), kit.SharesRequired))
		if dropped > 0 {
			return nil, fmt.Errorf("%w: %w", ErrInsufficientShares, ErrShareChecksumMismatch)
		}
		return nil, ErrInsufficientShares
	}

	seed, err := crypto.CombineShares(valid)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(seed)

	commitment := sha256.Sum256(seed)
	if hex.EncodeToString(commitment[:]) != kit.SeedCommitment {
		r.auditEvent(ctx, ownerID, models.ActionRecoveryFail, kitID, "seed commitment mismatch")
		return nil, ErrSeedCommitmentMismatch
	}

	// Single-use guard: only the recovery that wins this transition issues
	// credentials.
	won, err := r.kits.DeactivateKit(ctx, kitID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrRecoveryKitInactive
	}

	secret, err := crypto.DeriveKey(seed, nil, []byte(crypto.ContextRecovery), crypto.MasterKeySize)
	if err != nil {
		return nil, fmt.Errorf("deriving enrollment secret: %w", err)
	}

	indexes := make([]int, 0, len(valid))
	for x := range valid {
		indexes = append(indexes, int(x))
	}
	if err := r.kits.MarkSharesConsumed(ctx, kitID, indexes); err != nil {
		logger.FromContext(ctx).Error().Err(err).
			Str("kit_id", kitID).
			Msg("failed to mark recovery shares consumed")
	}

	r.auditEvent(ctx, ownerID, models.ActionRecoveryOK, kitID, "seed reconstructed, credentials issued")

	return &models.RecoveryResult{
		KitID:            kitID,
		EnrollmentSecret: secret,
	}, nil
}

// shareChecksum is the integrity tag distributed with each share: the first
// 8 bytes of SHA-256 over the index byte followed by the share, hex encoded.
func shareChecksum(index int, share []byte) string {
	h := sha256.New()
	h.Write([]byte{byte(index)})
	h.Write(share)
	return hex.EncodeToString(h.Sum(nil)[:shareChecksumBytes])
}

// entropyReader adapts the aggregator to io.Reader for the polynomial
// coefficient draws of the secret split.
type entropyReader struct {
	ctx context.Context
	gen EntropyGenerator
}

func (r entropyReader) Read(p []byte) (int, error) {
	buf, err := r.gen.Generate(r.ctx, len(p))
	if err != nil {
		return 0, err
	}
	copy(p, buf)
	crypto.Zero(buf)
	return len(p), nil
}

func (r *recoveryService) auditEvent(ctx context.Context, principal, action, resource, details string) {
	if r.audit == nil {
		return
	}
	if _, err := r.audit.LogEvent(ctx, principal, action, resource, details); err != nil {
		logger.FromContext(ctx).Error().Err(err).
			Str("action", action).
			Msg("failed to record audit event")
	}
}
