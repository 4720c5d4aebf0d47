package integration

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const collection = "integrations"

// FirestoreStore implements Store on a Firestore collection with one
// document per user id.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) doc(userID string) *firestore.DocumentRef {
	return s.client.Collection(collection).Doc(userID)
}

func (s *FirestoreStore) Get(ctx context.Context, userID string) (*Record, error) {

	snap, err := s.doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("integration: get %s: %w", userID, err)
	}

	var rec Record
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("integration: decode %s: %w", userID, err)
	}

	return &rec, nil
}

func (s *FirestoreStore) Upsert(ctx context.Context, userID string, rec Record) error {

	rec.UserID = userID
	if _, err := s.doc(userID).Set(ctx, rec); err != nil {
		return fmt.Errorf("integration: upsert %s: %w", userID, err)
	}

	return nil
}
