package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidCredential is returned for missing, malformed, expired or
// otherwise unverifiable bearer credentials.
var ErrInvalidCredential = errors.New("identity: invalid credential")

// Verifier maps a bearer credential to a stable user identifier.
// It makes no auth decisions beyond validity; the user id it returns
// is the only identity fact the rest of the service uses.
type Verifier interface {
	Verify(ctx context.Context, authorization string) (userID string, err error)
}

// BearerToken extracts the raw token from an Authorization header value.
// A "Bearer " prefix is optional; the original clients send both forms.
func BearerToken(authorization string) string {
	if after, ok := strings.CutPrefix(authorization, "Bearer "); ok {
		return after
	}
	return authorization
}
