package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/qrypta/vaultcore/internal/crypto"
	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/internal/store"
	"github.com/qrypta/vaultcore/models"
)

// highRiskActions are flagged in generated reports.
var highRiskActions = map[string]bool{
	models.ActionItemDecryptFail: true,
	models.ActionRecoveryFail:    true,
	models.ActionDeviceRevoke:    true,
	models.ActionPairingConflict: true,
}

type auditTrail struct {
	store   store.AuditRepository
	entropy EntropyGenerator

	now func() time.Time

	logger *logger.Logger
}

// NewAuditTrail constructs the signed audit-trail service.
func NewAuditTrail(repo store.AuditRepository, entropy EntropyGenerator, logger *logger.Logger) AuditTrail {
	return &auditTrail{
		store:   repo,
		entropy: entropy,
		now:     time.Now,
		logger:  logger,
	}
}

func (a *auditTrail) LogEvent(ctx context.Context, principal, action, resource, details string) (*models.AuditEvent, error) {
	publicKey, secretKey, err := a.signerFor(ctx, principal)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(secretKey)

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating event id: %w", err)
	}

	event := &models.AuditEvent{
		ID:        id.String(),
		Timestamp: a.now().UTC(),
		Principal: principal,
		Action:    action,
		Resource:  resource,
		Details:   details,
	}

	signature, err := crypto.Sign(secretKey, eventTranscript(event))
	if err != nil {
		return nil, fmt.Errorf("signing audit event: %w", err)
	}
	event.Signature = models.EventSignature{
		Algorithm: crypto.SigAlgorithm,
		PublicKey: publicKey,
		Signature: signature,
	}

	if err := a.store.SaveEvent(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

func (a *auditTrail) VerifyEvent(event *models.AuditEvent) error {
	if event.Signature.Algorithm != crypto.SigAlgorithm {
		return fmt.Errorf("%w: unexpected algorithm %q", ErrAuditSignatureInvalid, event.Signature.Algorithm)
	}

	err := crypto.Verify(event.Signature.PublicKey, eventTranscript(event), event.Signature.Signature)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuditSignatureInvalid, err)
	}

	return nil
}

// ListVerified returns the range oldest first, silently dropping events whose
// signature no longer verifies. Dropped events are logged Warn so tampering
// is visible operationally without leaking through the API.
func (a *auditTrail) ListVerified(ctx context.Context, principal string, from, to time.Time) ([]models.AuditEvent, error) {
	events, err := a.store.ListEvents(ctx, principal, from, to)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	verified := make([]models.AuditEvent, 0, len(events))
	for i := range events {
		if verifyErr := a.VerifyEvent(&events[i]); verifyErr != nil {
			log.Warn().
				Str("event_id", events[i].ID).
				Str("action", events[i].Action).
				Msg("dropping audit event with invalid signature")
			continue
		}
		verified = append(verified, events[i])
	}

	return verified, nil
}

func (a *auditTrail) GenerateReport(ctx context.Context, principal string, from, to time.Time, sign bool) (*models.AuditReport, error) {
	events, err := a.ListVerified(ctx, principal, from, to)
	if err != nil {
		return nil, err
	}

	report := &models.AuditReport{
		Principal: principal,
		From:      from,
		To:        to,
		Counts:    make(map[string]int64, 8),
	}

	seen := make(map[string]bool, 4)
	for i := range events {
		report.Counts[events[i].Action]++
		if highRiskActions[events[i].Action] && !seen[events[i].Action] {
			seen[events[i].Action] = true
			report.HighRisk = append(report.HighRisk, events[i].Action)
		}
	}
	sort.Strings(report.HighRisk)

	if sign {
		publicKey, secretKey, err := a.signerFor(ctx, principal)
		if err != nil {
			return nil, err
		}
		defer crypto.Zero(secretKey)

		signature, err := crypto.Sign(secretKey, reportTranscript(report))
		if err != nil {
			return nil, fmt.Errorf("signing audit report: %w", err)
		}
		report.Signature = &models.EventSignature{
			Algorithm: crypto.SigAlgorithm,
			PublicKey: publicKey,
			Signature: signature,
		}
	}

	return report, nil
}

// signerFor returns the principal's ML-DSA-65 keypair, creating and
// persisting it on first use. The returned slices are private copies: the
// caller zeroes the secret key when done, and a repository that hands out
// its live buffers must not lose its stored key to that.
func (a *auditTrail) signerFor(ctx context.Context, principal string) (publicKey, secretKey []byte, err error) {
	publicKey, secretKey, err = a.store.GetSigner(ctx, principal)
	if err == nil {
		return bytes.Clone(publicKey), bytes.Clone(secretKey), nil
	}
	if !errors.Is(err, store.ErrAuditSignerNotFound) {
		return nil, nil, err
	}

	seed, err := a.entropy.Generate(ctx, crypto.SigKeySeedSize)
	if err != nil {
		return nil, nil, fmt.Errorf("sourcing signer seed: %w", err)
	}
	defer crypto.Zero(seed)

	pair, err := crypto.NewSigningKeypairFromSeed(seed)
	if err != nil {
		return nil, nil, err
	}

	if err := a.store.SaveSigner(ctx, principal, pair.PublicKey, pair.SecretKey); err != nil {
		crypto.Zero(pair.SecretKey)
		return nil, nil, err
	}

	logger.FromContext(ctx).Info().
		Str("principal", principal).
		Msg("created audit signer")

	return bytes.Clone(pair.PublicKey), bytes.Clone(pair.SecretKey), nil
}

// eventTranscript is the canonical byte serialization the signature covers:
// each field as a 4-byte big-endian length followed by its bytes, in fixed
// order. Mutating or reordering any field changes the transcript.
func eventTranscript(event *models.AuditEvent) []byte {
	buf := make([]byte, 0, 256)
	for _, field := range []string{
		event.ID,
		event.Timestamp.UTC().Format(time.RFC3339Nano),
		event.Principal,
		event.Action,
		event.Resource,
		event.Details,
	} {
		buf = appendField(buf, field)
	}
	return buf
}

// reportTranscript covers the aggregate fields plus the counts in sorted
// action order, so two equal reports always serialize identically.
func reportTranscript(report *models.AuditReport) []byte {
	buf := make([]byte, 0, 256)
	buf = appendField(buf, report.Principal)
	buf = appendField(buf, report.From.UTC().Format(time.RFC3339Nano))
	buf = appendField(buf, report.To.UTC().Format(time.RFC3339Nano))

	actions := make([]string, 0, len(report.Counts))
	for action := range report.Counts {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	for _, action := range actions {
		buf = appendField(buf, action)
		buf = appendField(buf, strconv.FormatInt(report.Counts[action], 10))
	}

	for _, action := range report.HighRisk {
		buf = appendField(buf, action)
	}
	return buf
}

func appendField(buf []byte, field string) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(field)))
	return append(buf, field...)
}
