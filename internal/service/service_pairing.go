package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/qrypta/vaultcore/internal/config"
	"github.com/qrypta/vaultcore/internal/crypto"
	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/internal/store"
	"github.com/qrypta/vaultcore/models"
)

// pairingTokenBytes is the entropy of one pairing token before encoding.
const pairingTokenBytes = 32

// qrImageSize is the side length in pixels of the generated QR PNG.
const qrImageSize = 256

type pairingService struct {
	pairings store.PairingRepository
	devices  store.DeviceRepository
	entropy  EntropyGenerator
	audit    AuditTrail

	endpoint string
	rpID     string
	minTTL   time.Duration
	maxTTL   time.Duration

	now func() time.Time

	logger *logger.Logger
}

// NewPairingService constructs the QR device-pairing service.
func NewPairingService(pairings store.PairingRepository, devices store.DeviceRepository, entropy EntropyGenerator, audit AuditTrail, appCfg config.App, pairingCfg config.Pairing, logger *logger.Logger) PairingService {
	return &pairingService{
		pairings: pairings,
		devices:  devices,
		entropy:  entropy,
		audit:    audit,
		endpoint: appCfg.PairingEndpoint,
		rpID:     appCfg.RPID,
		minTTL:   pairingCfg.MinTTL,
		maxTTL:   pairingCfg.MaxTTL,
		now:      time.Now,
		logger:   logger,
	}
}

func (p *pairingService) Create(ctx context.Context, ownerID, hostDeviceID string, ttl time.Duration) (*models.PairingSession, *models.PairingPayload, []byte, error) {
	// Only an enrolled device may host a pairing.
	if _, err := p.devices.Get(ctx, ownerID, hostDeviceID); err != nil {
		return nil, nil, nil, err
	}

	if ttl < p.minTTL {
		ttl = p.minTTL
	}
	if ttl > p.maxTTL {
		ttl = p.maxTTL
	}

	raw, err := p.entropy.Generate(ctx, pairingTokenBytes)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("sourcing pairing token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	now := p.now().UTC()
	session := &models.PairingSession{
		Token:        token,
		HostUserID:   ownerID,
		HostDeviceID: hostDeviceID,
		Status:       models.PairingPending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
	if err := p.pairings.Save(ctx, session); err != nil {
		return nil, nil, nil, err
	}

	payload := &models.PairingPayload{
		Token:    token,
		Endpoint: p.endpoint,
		RPID:     p.rpID,
		Expires:  session.ExpiresAt.Unix(),
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encoding pairing payload: %w", err)
	}

	png, err := qrcode.Encode(string(payloadJSON), qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("rendering pairing qr code: %w", err)
	}

	p.auditEvent(ctx, ownerID, models.ActionPairingCreate, hostDeviceID, "pairing session opened")

	return session, payload, png, nil
}

// Consume enrolls the scanning device. The session row's conditional UPDATE
// is the commit point: the device row is inserted first and removed again if
// another consumer wins the transition.
func (p *pairingService) Consume(ctx context.Context, token, deviceName string, newDevicePublicKey, masterKey []byte) (*models.Device, error) {
	session, err := p.pairings.Get(ctx, token)
	if errors.Is(err, store.ErrPairingSessionNotFound) {
		return nil, ErrPairingTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	if session.Status != models.PairingPending {
		return nil, ErrPairingSessionConsumed
	}

	now := p.now().UTC()
	if session.Expired(now) {
		return nil, ErrPairingSessionExpired
	}

	if err := crypto.ValidateKEMPublicKey(newDevicePublicKey); err != nil {
		return nil, err
	}
	if len(masterKey) != crypto.MasterKeySize {
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", crypto.ErrInvalidKeySize, crypto.MasterKeySize, len(masterKey))
	}

	wrapped, err := p.wrapForDevice(ctx, masterKey, newDevicePublicKey)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating device id: %w", err)
	}

	device := &models.Device{
		DeviceID:         id.String(),
		OwnerID:          session.HostUserID,
		Name:             deviceName,
		PublicKey:        newDevicePublicKey,
		WrappedMasterKey: wrapped,
		CreatedAt:        now,
		LastUsed:         now,
	}
	if err := p.devices.Save(ctx, device); err != nil {
		return nil, err
	}

	won, err := p.pairings.Complete(ctx, token, device.DeviceID, now)
	if err != nil {
		return nil, err
	}
	if !won {
		// Another consumer got there first (or the deadline passed between
		// the read and the update). Undo the device insert.
		if _, delErr := p.devices.DeleteIfNotLast(ctx, session.HostUserID, device.DeviceID); delErr != nil {
			logger.FromContext(ctx).Error().Err(delErr).
				Str("device_id", device.DeviceID).
				Msg("failed to roll back device after losing pairing transition")
		}
		p.auditEvent(ctx, session.HostUserID, models.ActionPairingConflict, token, "concurrent consume rejected")

		if session.Expired(p.now().UTC()) {
			return nil, ErrPairingSessionExpired
		}
		return nil, ErrPairingSessionConsumed
	}

	p.auditEvent(ctx, session.HostUserID, models.ActionPairingConsume, device.DeviceID, "device paired")

	return device, nil
}

func (p *pairingService) Cancel(ctx context.Context, token, requesterID string) error {
	session, err := p.pairings.Get(ctx, token)
	if errors.Is(err, store.ErrPairingSessionNotFound) {
		return ErrPairingTokenNotFound
	}
	if err != nil {
		return err
	}

	if session.HostUserID != requesterID {
		return ErrPairingNotOwner
	}

	if err := p.pairings.Delete(ctx, token); err != nil {
		return err
	}

	p.auditEvent(ctx, requesterID, models.ActionPairingCancel, token, "pairing session cancelled")

	return nil
}

// Status applies expiry lazily: any session past its deadline reports
// EXPIRED regardless of the stored state, even before the sweeper removes
// the row.
func (p *pairingService) Status(ctx context.Context, token string) (models.PairingStatus, error) {
	session, err := p.pairings.Get(ctx, token)
	if errors.Is(err, store.ErrPairingSessionNotFound) {
		return models.PairingStatus{}, ErrPairingTokenNotFound
	}
	if err != nil {
		return models.PairingStatus{}, err
	}

	now := p.now().UTC()
	status := session.Status
	remaining := int64(0)

	switch {
	case session.Expired(now):
		status = models.PairingExpired
	case session.Status == models.PairingPending:
		remaining = int64(session.ExpiresAt.Sub(now).Seconds())
	}

	return models.PairingStatus{Status: status, RemainingSeconds: remaining}, nil
}

// wrapForDevice mirrors keyManager.WrapMasterKeyForDevice for the
// host-supplied key material during consume.
func (p *pairingService) wrapForDevice(ctx context.Context, masterKey, devicePublicKey []byte) (models.WrappedKey, error) {
	kemCiphertext, sharedSecret, err := crypto.Encapsulate(devicePublicKey, nil)
	if err != nil {
		return models.WrappedKey{}, err
	}
	defer crypto.Zero(sharedSecret)

	wrapKey, err := crypto.DeriveWrapKey(sharedSecret)
	if err != nil {
		return models.WrappedKey{}, err
	}
	defer crypto.Zero(wrapKey)

	nonce, err := p.entropy.Generate(ctx, crypto.AEADNonceSize)
	if err != nil {
		return models.WrappedKey{}, fmt.Errorf("sourcing wrap nonce: %w", err)
	}

	ciphertext, tag, err := crypto.SealAESGCM(wrapKey, nonce, masterKey, kemCiphertext)
	if err != nil {
		return models.WrappedKey{}, err
	}

	return models.WrappedKey{
		KEMCiphertext: kemCiphertext,
		Ciphertext:    append(ciphertext, tag...),
		Nonce:         nonce,
	}, nil
}

func (p *pairingService) auditEvent(ctx context.Context, principal, action, resource, details string) {
	if p.audit == nil {
		return
	}
	if _, err := p.audit.LogEvent(ctx, principal, action, resource, details); err != nil {
		logger.FromContext(ctx).Error().Err(err).
			Str("action", action).
			Msg("failed to record audit event")
	}
}
