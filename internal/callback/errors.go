package callback

import "errors"

// The processor translates every collaborator failure into one of these
// categories; provider-specific shapes never cross this boundary except
// as wrapped detail.
var (
	// ErrStateMismatch: the normalized state does not equal the
	// authenticated user id. The client must restart the flow.
	ErrStateMismatch = errors.New("state does not match authenticated user")

	// ErrCodeAlreadyUsed: the provider rejected the code as consumed and
	// no integration record exists to replay. The client must restart.
	ErrCodeAlreadyUsed = errors.New("authorization code already used")

	// ErrTokenExchange: the code-for-token exchange failed for any other
	// reason.
	ErrTokenExchange = errors.New("token exchange failed")

	// ErrTokenUpgrade: the long-lived token exchange failed.
	ErrTokenUpgrade = errors.New("long-lived token exchange failed")

	// ErrConfig: application credentials could not be resolved or the
	// issued token could not be stored. Retryable later, 500 to clients.
	ErrConfig = errors.New("configuration error")

	// ErrPersistence: the integration record write failed after the
	// one-time code was consumed.
	ErrPersistence = errors.New("failed to persist integration")
)
