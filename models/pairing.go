package models

import "time"

// Pairing session states. EXPIRED is computed lazily from ExpiresAt on every
// read; the stored status may lag behind until the sweeper catches up.
const (
	PairingPending   = "PENDING"
	PairingCompleted = "COMPLETED"
	PairingExpired   = "EXPIRED"
	PairingCancelled = "CANCELLED"
)

// PairingSession is the temporal bridge between an already-enrolled host
// device and a new device scanning the QR payload. Exactly one consume may
// succeed per token.
type PairingSession struct {
	// Token is the random 256-bit pairing token, base64url-encoded.
	Token string `json:"token"`

	// HostUserID is the principal that created the session.
	HostUserID string `json:"host_user_id"`

	// HostDeviceID is the enrolled device that displays the QR code and
	// supplies the master key material during consume.
	HostDeviceID string `json:"host_device_id"`

	// Status is one of the Pairing* constants.
	Status string `json:"status"`

	// PairedDeviceID records the device created by a successful consume.
	PairedDeviceID string `json:"paired_device_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s PairingSession) TableName() string {
	return "pairing_sessions"
}

// Expired reports whether the session is past its deadline at the given
// instant, regardless of the stored status.
func (s PairingSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// PairingPayload is the JSON document embedded in the pairing QR image.
// The format is stable: it must round-trip through QR decode and JSON
// parsing unchanged.
type PairingPayload struct {
	Token    string `json:"token"`
	Endpoint string `json:"endpoint"`
	RPID     string `json:"rpId"`
	Expires  int64  `json:"expires"`
}

// PairingStatus is the answer to a status query: the effective (lazily
// expired) state plus the remaining lifetime.
type PairingStatus struct {
	Status           string `json:"status"`
	RemainingSeconds int64  `json:"remaining_seconds"`
}
