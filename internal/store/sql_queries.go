package store

// All statements use positional $N placeholders, which both the pgx and
// sqlite3 drivers accept, and take every timestamp as an argument so the
// query set stays backend-neutral.
const (
	saveDevice = `INSERT INTO devices (
			device_id,
			owner_id,
			name,
			public_key,
			kem_ciphertext,
			wrapped_key,
			wrap_nonce,
			created_at,
			last_used
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`

	getDevice = `SELECT device_id, owner_id, name, public_key, kem_ciphertext, wrapped_key, wrap_nonce, created_at, last_used
		FROM devices
		WHERE owner_id = $1 AND device_id = $2;`

	listDevices = `SELECT device_id, owner_id, name, public_key, kem_ciphertext, wrapped_key, wrap_nonce, created_at, last_used
		FROM devices
		WHERE owner_id = $1
		ORDER BY created_at;`

	countDevices = `SELECT COUNT(*) FROM devices WHERE owner_id = $1;`

	// The subquery guard makes the last-device check and the delete one
	// atomic statement, so two concurrent revocations cannot empty an
	// account.
	deleteDeviceIfNotLast = `DELETE FROM devices
		WHERE owner_id = $1 AND device_id = $2
		  AND (SELECT COUNT(*) FROM devices d WHERE d.owner_id = $1) > 1;`

	touchDeviceLastUsed = `UPDATE devices SET last_used = $2 WHERE device_id = $1;`

	saveVaultKeypair = `INSERT INTO vault_keypairs (vault_id, owner_id, public_key, created_at)
		VALUES ($1, $2, $3, $4);`

	getVaultKeypair = `SELECT vault_id, owner_id, public_key, created_at
		FROM vault_keypairs
		WHERE owner_id = $1 AND vault_id = $2;`

	// The owner guard on the update arm keeps the upsert owner-scoped: a
	// conflicting insert by a different owner updates nothing, which the
	// repository surfaces as an ownership error via RowsAffected.
	saveVaultItem = `INSERT INTO vault_items (
			id, vault_id, owner_id, title,
			kem_ciphertext, ciphertext, nonce, auth_tag,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			kem_ciphertext = excluded.kem_ciphertext,
			ciphertext = excluded.ciphertext,
			nonce = excluded.nonce,
			auth_tag = excluded.auth_tag,
			updated_at = excluded.updated_at
		WHERE vault_items.owner_id = excluded.owner_id;`

	getVaultItem = `SELECT id, vault_id, owner_id, title, kem_ciphertext, ciphertext, nonce, auth_tag, created_at, updated_at
		FROM vault_items
		WHERE owner_id = $1 AND id = $2;`

	listVaultItems = `SELECT id, vault_id, owner_id, title, kem_ciphertext, ciphertext, nonce, auth_tag, created_at, updated_at
		FROM vault_items
		WHERE owner_id = $1 AND vault_id = $2
		ORDER BY updated_at DESC;`

	deleteVaultItem = `DELETE FROM vault_items WHERE owner_id = $1 AND id = $2;`

	savePairingSession = `INSERT INTO pairing_sessions (
			token, host_user_id, host_device_id, status, paired_device_id, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7);`

	getPairingSession = `SELECT token, host_user_id, host_device_id, status, paired_device_id, created_at, expires_at
		FROM pairing_sessions
		WHERE token = $1;`

	// Single compare-and-swap on status: only one concurrent consumer
	// can observe PENDING and an unexpired deadline.
	completePairingSession = `UPDATE pairing_sessions
		SET status = 'COMPLETED', paired_device_id = $2
		WHERE token = $1 AND status = 'PENDING' AND expires_at > $3;`

	deletePairingSession = `DELETE FROM pairing_sessions WHERE token = $1;`

	deleteExpiredPairingSessions = `DELETE FROM pairing_sessions
		WHERE status = 'PENDING' AND expires_at <= $1;`

	saveRecoveryKit = `INSERT INTO recovery_kits (
			id, owner_id, shares_total, shares_required, seed_commitment, active, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	saveRecoveryShare = `INSERT INTO recovery_shares (
			share_id, kit_id, share_index, encrypted_share, nonce, checksum, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	getRecoveryKit = `SELECT id, owner_id, shares_total, shares_required, seed_commitment, active, created_at, expires_at
		FROM recovery_kits
		WHERE owner_id = $1 AND id = $2;`

	getRecoveryShares = `SELECT share_id, kit_id, share_index, encrypted_share, nonce, checksum, status, created_at
		FROM recovery_shares
		WHERE kit_id = $1
		ORDER BY share_index;`

	// Compare-and-swap on the active flag: exactly one successful
	// recovery deactivates the kit.
	deactivateRecoveryKit = `UPDATE recovery_kits
		SET active = FALSE
		WHERE id = $1 AND active = TRUE;`

	markRecoveryShareConsumed = `UPDATE recovery_shares
		SET status = 'CONSUMED'
		WHERE kit_id = $1 AND share_index = $2;`

	saveAuditEvent = `INSERT INTO audit_events (
			id, event_time, principal, action, resource, details, algorithm, public_key, signature
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`

	getAuditSigner = `SELECT public_key, secret_key FROM audit_signers WHERE principal = $1;`

	saveAuditSigner = `INSERT INTO audit_signers (principal, public_key, secret_key, created_at)
		VALUES ($1, $2, $3, $4);`
)
