package callback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Proof-social/proof-social-instagram-auth/internal/integration"
	"github.com/Proof-social/proof-social-instagram-auth/internal/logger"
	"github.com/Proof-social/proof-social-instagram-auth/internal/metrics"
	"github.com/Proof-social/proof-social-instagram-auth/internal/secrets"
)

// GraphClient is the slice of the Meta client the processor needs.
type GraphClient interface {
	ExchangeCode(ctx context.Context, appID, appSecret, redirectURI, code string) (string, error)
	ExchangeLongLived(ctx context.Context, appID, appSecret, shortToken string) (string, error)
	DiscoverAccounts(ctx context.Context, accessToken string) ([]integration.Account, error)
}

// CodeReuseError is implemented by provider errors that mean the
// one-time authorization code was already exchanged.
type CodeReuseError interface {
	error
	CodeAlreadyUsed() bool
}

// AppResolver resolves the Meta application credentials.
type AppResolver interface {
	Resolve(ctx context.Context) (secrets.AppConfig, error)
}

// Result is what a processed (or replayed) callback hands back to the
// transport layer.
type Result struct {
	APIKey      string                `json:"api_key"`
	Accounts    []integration.Account `json:"instagram_accounts"`
	Message     string                `json:"message"`
	Status      string                `json:"status"`
	RedirectURL string                `json:"redirect_url,omitempty"`

	// Replayed marks results served from an existing record instead of a
	// fresh exchange.
	Replayed bool `json:"-"`
}

// Processor runs the callback state machine: validate state, collapse
// duplicates, exchange and upgrade the token, discover accounts, persist
// the integration record.
type Processor struct {
	apps         AppResolver
	secretStore  secrets.Store
	integrations integration.Store
	graph        GraphClient
	guard        *Guard
	now          func() time.Time
	replayWindow time.Duration
	log          *zap.Logger
}

func NewProcessor(
	apps AppResolver,
	secretStore secrets.Store,
	integrations integration.Store,
	graph GraphClient,
	guard *Guard,
	replayWindow time.Duration,
) *Processor {
	return &Processor{
		apps:         apps,
		secretStore:  secretStore,
		integrations: integrations,
		graph:        graph,
		guard:        guard,
		now:          time.Now,
		replayWindow: replayWindow,
		log:          logger.Named("callback"),
	}
}

// Process runs the full flow for an authenticated user. userID comes
// from the identity verifier, never from the request body.
func (p *Processor) Process(ctx context.Context, userID, code, state, redirectURI string) (*Result, error) {

	if NormalizeState(state) != userID {
		p.log.Warn("state mismatch", zap.String("user_id", userID))
		return nil, ErrStateMismatch
	}

	// A client may legitimately resubmit the same callback (duplicate
	// navigation, strict-mode double invoke). A record fresh enough means
	// the first submission already did the work.
	if res, err := p.freshReplay(ctx, userID); err != nil {
		return nil, err
	} else if res != nil {
		return res, nil
	}

	unlock := p.guard.Lock(userID, code)
	defer unlock()

	// Second chance under the lock: a concurrent duplicate that blocked
	// here finds the record the first submission just wrote, and never
	// reaches the provider with the consumed code.
	if res, err := p.freshReplay(ctx, userID); err != nil {
		return nil, err
	} else if res != nil {
		return res, nil
	}

	// The code is consumed the moment the exchange fires; an abandoned
	// request must not abort the flow halfway or the consumed code leaves
	// no record behind.
	return p.exchangeAndPersist(context.WithoutCancel(ctx), userID, code, redirectURI)
}

func (p *Processor) exchangeAndPersist(ctx context.Context, userID, code, redirectURI string) (*Result, error) {

	app, err := p.apps.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	shortToken, err := p.graph.ExchangeCode(ctx, app.AppID, app.AppSecret, redirectURI, code)
	if err != nil {
		var reuse CodeReuseError
		if errors.As(err, &reuse) && reuse.CodeAlreadyUsed() {
			metrics.TokenExchanges.WithLabelValues("code_reused").Inc()
			return p.replayConsumedCode(ctx, userID, err)
		}
		metrics.TokenExchanges.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	metrics.TokenExchanges.WithLabelValues("ok").Inc()

	longToken, err := p.graph.ExchangeLongLived(ctx, app.AppID, app.AppSecret, shortToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenUpgrade, err)
	}

	// The api_key is the integration's external handle; the provider token
	// is filed under it so downstream services resolve the token without
	// ever seeing the user id.
	apiKey := uuid.NewString()
	if err := p.secretStore.Set(ctx, secrets.TokenSecretName(apiKey), []byte(longToken)); err != nil {
		return nil, fmt.Errorf("%w: store access token: %v", ErrConfig, err)
	}

	accounts, err := p.graph.DiscoverAccounts(ctx, longToken)
	if err != nil {
		// Discovery is best-effort: the integration is still usable with an
		// empty account list.
		p.log.Warn("account discovery failed", zap.String("user_id", userID), zap.Error(err))
		accounts = nil
	}

	rec := integration.Record{
		UserID:   userID,
		Platform: integration.PlatformInstagram,
		APIKey:   apiKey,
		Status:   integration.StatusActive,
		Accounts: accounts,
	}
	if err := p.integrations.Upsert(ctx, userID, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	p.log.Info("integration configured",
		zap.String("user_id", userID),
		zap.Int("accounts", len(accounts)),
	)

	res := &Result{
		APIKey:   apiKey,
		Accounts: accounts,
		Message:  "Instagram integration configured successfully",
		Status:   "success",
	}
	res.RedirectURL = buildRedirectURL(redirectURI, res)
	return res, nil
}

// freshReplay returns the existing record's data when it was created
// within the replay window, nil otherwise.
func (p *Processor) freshReplay(ctx context.Context, userID string) (*Result, error) {

	rec, err := p.integrations.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if rec == nil || rec.CreatedAt.IsZero() {
		return nil, nil
	}

	age := p.now().Sub(rec.CreatedAt)
	if age < 0 || age >= p.replayWindow {
		return nil, nil
	}

	p.log.Info("returning existing integration",
		zap.String("user_id", userID),
		zap.Duration("age", age),
	)
	return replayResult(rec), nil
}

// replayConsumedCode handles the provider saying the code was already
// exchanged: an existing record (any age) means a duplicate submission
// and gets the recorded data; no record means the flow must restart.
func (p *Processor) replayConsumedCode(ctx context.Context, userID string, cause error) (*Result, error) {

	rec, err := p.integrations.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if rec == nil {
		p.log.Warn("code consumed but no integration recorded", zap.String("user_id", userID))
		return nil, fmt.Errorf("%w: %v", ErrCodeAlreadyUsed, cause)
	}

	p.log.Info("code already exchanged, replaying recorded integration",
		zap.String("user_id", userID),
	)
	return replayResult(rec), nil
}

func replayResult(rec *integration.Record) *Result {
	return &Result{
		APIKey:   rec.APIKey,
		Accounts: rec.Accounts,
		Message:  "Integration already configured. Returning existing data.",
		Status:   "success",
		Replayed: true,
	}
}

// buildRedirectURL appends the result payload, JSON-encoded, as a single
// "data" query parameter of the caller-supplied redirect target.
func buildRedirectURL(redirectURI string, res *Result) string {
	if redirectURI == "" {
		return ""
	}

	payload, err := json.Marshal(struct {
		APIKey   string                `json:"api_key"`
		Accounts []integration.Account `json:"instagram_accounts"`
		Message  string                `json:"message"`
		Status   string                `json:"status"`
	}{res.APIKey, res.Accounts, res.Message, res.Status})
	if err != nil {
		return ""
	}

	q := url.Values{"data": {string(payload)}}
	sep := "?"
	if u, err := url.Parse(redirectURI); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return redirectURI + sep + q.Encode()
}
