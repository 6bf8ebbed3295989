package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrDeviceNotFound is returned when a query targets a device
	// (identified by device_id and owner_id) that does not exist.
	ErrDeviceNotFound = errors.New("device was not found")

	// ErrDeviceAlreadyExists is returned when a device insert collides
	// with an existing device_id.
	ErrDeviceAlreadyExists = errors.New("device already exists")

	// ErrVaultKeypairNotFound is returned when no keypair row exists for
	// the requested vault.
	ErrVaultKeypairNotFound = errors.New("vault keypair was not found")

	// ErrVaultItemNotFound is returned when a query or delete targets a
	// vault item that does not exist for the owner.
	ErrVaultItemNotFound = errors.New("vault item was not found")

	// ErrVaultItemOwnerMismatch is returned when a save collides with an
	// item id already owned by a different principal.
	ErrVaultItemOwnerMismatch = errors.New("vault item belongs to a different owner")

	// ErrPairingSessionNotFound is returned when no session row exists
	// for the presented token.
	ErrPairingSessionNotFound = errors.New("pairing session was not found")

	// ErrRecoveryKitNotFound is returned when no kit row exists for the
	// requested id and owner.
	ErrRecoveryKitNotFound = errors.New("recovery kit was not found")

	// ErrAuditSignerNotFound is returned when a principal has no signing
	// keypair persisted yet.
	ErrAuditSignerNotFound = errors.New("audit signer was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised
	// SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommittingTransaction is returned when committing an open
	// transaction fails. The transaction is considered rolled back.
	ErrCommittingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRow is returned when scanning column values from a
	// single result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
