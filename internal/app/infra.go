package app

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/Proof-social/proof-social-instagram-auth/internal/config"
	"github.com/Proof-social/proof-social-instagram-auth/internal/identity"
	"github.com/Proof-social/proof-social-instagram-auth/internal/integration"
	"github.com/Proof-social/proof-social-instagram-auth/internal/logger"
	"github.com/Proof-social/proof-social-instagram-auth/internal/secrets"
)

type Infra struct {
	Verifier     identity.Verifier
	Secrets      *secrets.GCPStore
	Integrations *integration.FirestoreStore

	firestoreClient *firestore.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {

	verifier, err := identity.NewFirebaseVerifier(ctx, cfg.GCPProjectID, cfg.FirebaseCredentialsFile)
	if err != nil {
		return nil, err
	}

	logger.L().Info("firebase ready")

	secretStore, err := secrets.NewGCPStore(ctx, cfg.GCPProjectID)
	if err != nil {
		return nil, err
	}

	logger.L().Info("secret manager ready")

	fsClient, err := firestore.NewClient(ctx, cfg.GCPProjectID)
	if err != nil {
		return nil, err
	}

	logger.L().Info("firestore ready")

	return &Infra{
		Verifier:        verifier,
		Secrets:         secretStore,
		Integrations:    integration.NewFirestoreStore(fsClient),
		firestoreClient: fsClient,
	}, nil
}

func (i *Infra) Close() error {
	if err := i.Secrets.Close(); err != nil {
		return err
	}
	return i.firestoreClient.Close()
}
