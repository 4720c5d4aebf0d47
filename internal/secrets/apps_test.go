package secrets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	data map[string][]byte
	gets int
}

func (s *countingStore) Get(ctx context.Context, name string) ([]byte, error) {
	s.gets++
	v, ok := s.data[name]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *countingStore) Set(ctx context.Context, name string, payload []byte) error {
	s.data[name] = payload
	return nil
}

func TestAppsResolveCaches(t *testing.T) {
	store := &countingStore{data: map[string][]byte{
		"meta-app-id":     []byte("app-123\n"),
		"meta-app-secret": []byte("secret-xyz"),
	}}
	apps := NewApps(store, "meta-app-id", "meta-app-secret", time.Minute)

	cfg, err := apps.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "app-123", cfg.AppID, "payload whitespace trimmed")
	assert.Equal(t, "secret-xyz", cfg.AppSecret)
	assert.Equal(t, 2, store.gets)

	_, err = apps.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, store.gets, "second resolve must hit the cache")
}

func TestAppsResolveMissingSecret(t *testing.T) {
	store := &countingStore{data: map[string][]byte{
		"meta-app-id": []byte("app-123"),
	}}
	apps := NewApps(store, "meta-app-id", "meta-app-secret", time.Minute)

	_, err := apps.Resolve(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAppsResolveEmptyCredential(t *testing.T) {
	store := &countingStore{data: map[string][]byte{
		"meta-app-id":     []byte("   "),
		"meta-app-secret": []byte("secret"),
	}}
	apps := NewApps(store, "meta-app-id", "meta-app-secret", time.Minute)

	_, err := apps.Resolve(context.Background())
	require.Error(t, err)
}

func TestTokenSecretName(t *testing.T) {
	assert.Equal(t, "proof-social-instagram-abc", TokenSecretName("abc"))
}
