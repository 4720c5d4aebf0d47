package secrets

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GCPStore implements Store on top of Google Secret Manager.
// Names are short secret ids; the projects/{p}/secrets/{name} prefix is
// applied here so callers never see fully-qualified resource names.
type GCPStore struct {
	client    *secretmanager.Client
	projectID string
}

func NewGCPStore(ctx context.Context, projectID string) (*GCPStore, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("secrets: failed to init secret manager client: %w", err)
	}
	return &GCPStore{client: client, projectID: projectID}, nil
}

func (s *GCPStore) Close() error {
	return s.client.Close()
}

func (s *GCPStore) parent() string {
	return "projects/" + s.projectID
}

func (s *GCPStore) secretName(name string) string {
	return s.parent() + "/secrets/" + name
}

func (s *GCPStore) Get(ctx context.Context, name string) ([]byte, error) {

	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: s.secretName(name) + "/versions/latest",
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("secrets: access %s: %w", name, err)
	}

	return resp.GetPayload().GetData(), nil
}

func (s *GCPStore) Set(ctx context.Context, name string, payload []byte) error {

	// Create-if-absent, then append a version. The create races benignly
	// with concurrent writers; AlreadyExists is not an error here.
	_, err := s.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{
		Name: s.secretName(name),
	})
	if err != nil {
		if status.Code(err) != codes.NotFound {
			return fmt.Errorf("secrets: get %s: %w", name, err)
		}
		_, err = s.client.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
			Parent:   s.parent(),
			SecretId: name,
			Secret: &secretmanagerpb.Secret{
				Replication: &secretmanagerpb.Replication{
					Replication: &secretmanagerpb.Replication_Automatic_{
						Automatic: &secretmanagerpb.Replication_Automatic{},
					},
				},
			},
		})
		if err != nil && status.Code(err) != codes.AlreadyExists {
			return fmt.Errorf("secrets: create %s: %w", name, err)
		}
	}

	_, err = s.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent:  s.secretName(name),
		Payload: &secretmanagerpb.SecretPayload{Data: payload},
	})
	if err != nil {
		return fmt.Errorf("secrets: add version %s: %w", name, err)
	}

	return nil
}
