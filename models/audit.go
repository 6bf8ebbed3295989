package models

import "time"

// Audit actions recorded by the core. Handlers outside the core may log
// their own actions; these are the ones the core emits itself.
const (
	ActionDeviceEnroll    = "device.enroll"
	ActionDeviceRevoke    = "device.revoke"
	ActionPairingCreate   = "pairing.create"
	ActionPairingConsume  = "pairing.consume"
	ActionPairingConflict = "pairing.consume_conflict"
	ActionPairingCancel   = "pairing.cancel"
	ActionItemEncrypt     = "item.encrypt"
	ActionItemDecryptFail = "item.decrypt_failed"
	ActionRecoveryKit     = "recovery.kit_generated"
	ActionRecoveryOK      = "recovery.succeeded"
	ActionRecoveryFail    = "recovery.failed"
	ActionCoreStart       = "core.start"
)

// AuditEvent is one signed, immutable security record. The signature covers
// a canonical field-order-stable serialization of the event, so mutating or
// reordering any field invalidates it.
type AuditEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Principal string    `json:"principal"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Details   string    `json:"details"`

	Signature EventSignature `json:"signature"`
}

func (e AuditEvent) TableName() string {
	return "audit_events"
}

// EventSignature is the detached signature envelope stored with each event.
// The public key is embedded so verification needs no key lookup.
type EventSignature struct {
	// Algorithm names the signature scheme, always "ML-DSA-65" here.
	Algorithm string `json:"algorithm"`

	// PublicKey is the signer's raw ML-DSA-65 public key.
	PublicKey []byte `json:"public_key"`

	// Signature is the raw signature over the event transcript.
	Signature []byte `json:"signature"`
}

// AuditReport aggregates a principal's events over a time range.
type AuditReport struct {
	Principal string    `json:"principal"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`

	// Counts maps action name to the number of verified events.
	Counts map[string]int64 `json:"counts"`

	// HighRisk lists the designated high-risk actions seen in the range.
	HighRisk []string `json:"high_risk"`

	// Signature optionally signs the report itself for non-repudiation.
	Signature *EventSignature `json:"signature,omitempty"`
}
