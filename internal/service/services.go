package service

import (
	"github.com/qrypta/vaultcore/internal/config"
	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/internal/store"
)

// Services aggregates the vault core services behind one constructor.
type Services struct {
	KeyManager      KeyManager
	VaultCipher     VaultCipher
	PairingService  PairingService
	AuditTrail      AuditTrail
	RecoveryService RecoveryService
}

// NewServices wires every service against the shared repositories, the
// entropy aggregator and the configuration.
func NewServices(storages *store.Storages, entropy EntropyGenerator, cfg *config.StructuredConfig, logger *logger.Logger) *Services {
	audit := NewAuditTrail(storages.Audit, entropy, logger)

	return &Services{
		KeyManager:      NewKeyManager(storages.Devices, storages.VaultKeypairs, entropy, audit, logger),
		VaultCipher:     NewVaultCipher(storages.VaultItems, entropy, audit, logger),
		PairingService:  NewPairingService(storages.Pairings, storages.Devices, entropy, audit, cfg.App, cfg.Pairing, logger),
		AuditTrail:      audit,
		RecoveryService: NewRecoveryService(storages.Recovery, entropy, audit, cfg.Recovery, logger),
	}
}
