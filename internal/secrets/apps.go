package secrets

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// TokenSecretPrefix names the secrets holding per-integration long-lived
// tokens; the suffix is the integration's api_key, never the user id.
const TokenSecretPrefix = "proof-social-instagram-"

// AppConfig is the Meta application credential pair.
type AppConfig struct {
	AppID     string
	AppSecret string
}

// Apps resolves the Meta app credentials from the secret store, caching
// the pair so each callback does not hit the backend twice.
type Apps struct {
	store           Store
	appIDSecret     string
	appSecretSecret string
	cache           *gocache.Cache
}

const appConfigCacheKey = "meta-app-config"

func NewApps(store Store, appIDSecret, appSecretSecret string, ttl time.Duration) *Apps {
	return &Apps{
		store:           store,
		appIDSecret:     appIDSecret,
		appSecretSecret: appSecretSecret,
		cache:           gocache.New(ttl, 2*ttl),
	}
}

func (a *Apps) Resolve(ctx context.Context) (AppConfig, error) {

	if v, ok := a.cache.Get(appConfigCacheKey); ok {
		return v.(AppConfig), nil
	}

	appID, err := a.store.Get(ctx, a.appIDSecret)
	if err != nil {
		return AppConfig{}, fmt.Errorf("resolve app id: %w", err)
	}

	appSecret, err := a.store.Get(ctx, a.appSecretSecret)
	if err != nil {
		return AppConfig{}, fmt.Errorf("resolve app secret: %w", err)
	}

	cfg := AppConfig{
		AppID:     strings.TrimSpace(string(appID)),
		AppSecret: strings.TrimSpace(string(appSecret)),
	}
	if cfg.AppID == "" || cfg.AppSecret == "" {
		return AppConfig{}, fmt.Errorf("meta app credentials are empty")
	}

	a.cache.SetDefault(appConfigCacheKey, cfg)
	return cfg, nil
}

// TokenSecretName returns the secret name a long-lived token is stored
// under for a given integration api_key.
func TokenSecretName(apiKey string) string {
	return TokenSecretPrefix + apiKey
}
