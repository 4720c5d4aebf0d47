package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/Proof-social/proof-social-instagram-auth/internal/logger"
)

// FirebaseVerifier validates Firebase ID tokens and returns the uid claim.
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier initializes the Firebase Admin SDK. credentialsFile
// may be empty, in which case application default credentials are used.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("identity: failed to init firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("identity: failed to init firebase auth client: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, authorization string) (string, error) {

	if authorization == "" {
		return "", ErrInvalidCredential
	}

	token, err := v.client.VerifyIDToken(ctx, BearerToken(authorization))
	if err != nil {
		logger.Named("identity").Warn("firebase token rejected")
		return "", fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	if token.UID == "" {
		return "", ErrInvalidCredential
	}

	return token.UID, nil
}
