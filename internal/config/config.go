package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ResponseMode selects how a processed callback is answered: a JSON body
// carrying the redirect URL, or an HTTP 302 to it.
type ResponseMode string

const (
	ResponseModeJSON     ResponseMode = "json"
	ResponseModeRedirect ResponseMode = "redirect"
)

type Config struct {
	AppPort  string
	Env      string
	LogLevel string

	GCPProjectID            string
	FirebaseCredentialsFile string

	// Secret Manager names holding the Meta app credentials.
	MetaAppIDSecretName     string
	MetaAppSecretSecretName string

	// Base URLs, overridable so tests can point at a local server.
	GraphBaseURL  string
	DialogBaseURL string

	CallbackResponseMode ResponseMode
	ReplayWindow         time.Duration
	AppConfigCacheTTL    time.Duration
}

func Load() Config {

	// Best-effort: a missing .env just means plain environment variables.
	_ = godotenv.Load()

	cfg := Config{

		AppPort:  getenv("APP_PORT", "8080"),
		Env:      getenv("APP_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		GCPProjectID:            getenv("GOOGLE_CLOUD_PROJECT", "proof-social"),
		FirebaseCredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		MetaAppIDSecretName:     getenv("META_APP_ID_SECRET", "proof-social-meta-app-id"),
		MetaAppSecretSecretName: getenv("META_APP_SECRET_SECRET", "proof-social-meta-app-secret"),

		GraphBaseURL:  getenv("GRAPH_BASE_URL", "https://graph.facebook.com/v20.0"),
		DialogBaseURL: getenv("DIALOG_BASE_URL", "https://www.facebook.com/v20.0/dialog/oauth"),

		CallbackResponseMode: ResponseMode(getenv("CALLBACK_RESPONSE_MODE", string(ResponseModeJSON))),
		ReplayWindow:         getenvDuration("REPLAY_WINDOW_SECONDS", 300),
		AppConfigCacheTTL:    getenvDuration("APP_CONFIG_CACHE_TTL_SECONDS", 600),
	}

	return cfg

}

// InstagramScopes is the fixed permission set requested from Meta.
// business_management is required to access selected Instagram accounts.
var InstagramScopes = []string{
	"pages_show_list",
	"ads_management",
	"ads_read",
	"instagram_basic",
	"instagram_manage_comments",
	"instagram_manage_insights",
	"instagram_content_publish",
	"instagram_manage_messages",
	"pages_read_engagement",
	"pages_manage_ads",
	"instagram_branded_content_ads_brand",
	"instagram_manage_events",
	"business_management",
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallbackSeconds int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(fallbackSeconds) * time.Second
}
