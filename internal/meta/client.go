package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/Proof-social/proof-social-instagram-auth/internal/integration"
	"github.com/Proof-social/proof-social-instagram-auth/internal/logger"
)

// Client talks to the Meta Graph API. The base URL is injectable so
// tests can point it at a local server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *zap.Logger
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		log:        logger.Named("meta"),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ExchangeCode trades the one-time authorization code for a short-lived
// access token. Non-success responses surface as *GraphError so callers
// can distinguish a consumed code from other failures.
func (c *Client) ExchangeCode(ctx context.Context, appID, appSecret, redirectURI, code string) (string, error) {

	var resp tokenResponse
	err := c.get(ctx, "/oauth/access_token", url.Values{
		"client_id":     {appID},
		"client_secret": {appSecret},
		"redirect_uri":  {redirectURI},
		"code":          {code},
	}, &resp)
	if err != nil {
		return "", err
	}

	if resp.AccessToken == "" {
		return "", fmt.Errorf("meta: token endpoint returned no access_token")
	}

	return resp.AccessToken, nil
}

// ExchangeLongLived upgrades a short-lived token via the
// fb_exchange_token grant. When Meta answers success without a token,
// the short-lived token is returned so the flow degrades instead of
// failing.
func (c *Client) ExchangeLongLived(ctx context.Context, appID, appSecret, shortToken string) (string, error) {

	var resp tokenResponse
	err := c.get(ctx, "/oauth/access_token", url.Values{
		"grant_type":        {"fb_exchange_token"},
		"client_id":         {appID},
		"client_secret":     {appSecret},
		"fb_exchange_token": {shortToken},
	}, &resp)
	if err != nil {
		return "", err
	}

	if resp.AccessToken == "" {
		c.log.Warn("long-lived exchange returned no token, keeping short-lived token")
		return shortToken, nil
	}

	return resp.AccessToken, nil
}

type accountNode struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type pageNode struct {
	ID                       string       `json:"id"`
	Name                     string       `json:"name"`
	InstagramBusinessAccount *accountNode `json:"instagram_business_account"`
}

type pagesResponse struct {
	Data []pageNode `json:"data"`
}

type meResponse struct {
	InstagramAccounts *struct {
		Data []accountNode `json:"data"`
	} `json:"instagram_accounts"`
}

// DiscoverAccounts lists the Instagram accounts reachable with the given
// token: first via the user's pages (embedded instagram_business_account),
// then directly via the instagram_accounts edge. Accounts missing a
// username get one extra lookup each. Every sub-call is best-effort; the
// result may be empty but the error is reserved for context cancellation.
func (c *Client) DiscoverAccounts(ctx context.Context, accessToken string) ([]integration.Account, error) {

	var accounts []integration.Account

	var pages pagesResponse
	err := c.get(ctx, "/me/accounts", url.Values{
		"access_token": {accessToken},
		"fields":       {"id,name,access_token,instagram_business_account{id,username,name}"},
	}, &pages)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn("page listing failed", zap.Error(err))
	}

	for _, page := range pages.Data {
		ig := page.InstagramBusinessAccount
		if ig == nil {
			continue
		}

		username := ig.Username
		if username == "" && ig.ID != "" {
			username = c.lookupUsername(ctx, accessToken, ig.ID)
		}

		name := ig.Name
		if name == "" {
			name = username
		}

		accounts = append(accounts, integration.Account{
			ID:       ig.ID,
			Username: username,
			Name:     name,
		})
	}

	// Secondary pass: accounts attached directly to the user. Anything the
	// page walk already found is dropped by the dedup below.
	var me meResponse
	err = c.get(ctx, "/me", url.Values{
		"access_token": {accessToken},
		"fields":       {"instagram_accounts{id,username,name}"},
	}, &me)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn("direct account listing failed", zap.Error(err))
	} else if me.InstagramAccounts != nil {
		for _, ig := range me.InstagramAccounts.Data {
			name := ig.Name
			if name == "" {
				name = ig.Username
			}
			accounts = append(accounts, integration.Account{
				ID:       ig.ID,
				Username: ig.Username,
				Name:     name,
			})
		}
	}

	return integration.DedupAccounts(accounts), nil
}

func (c *Client) lookupUsername(ctx context.Context, accessToken, accountID string) string {

	var node accountNode
	err := c.get(ctx, "/"+accountID, url.Values{
		"access_token": {accessToken},
		"fields":       {"id,username,name"},
	}, &node)
	if err != nil {
		c.log.Warn("username lookup failed",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		return ""
	}

	return node.Username
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("meta: build request %s: %w", path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("meta: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("meta: read %s response: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope graphErrorEnvelope
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
			envelope.Error.HTTPStatus = resp.StatusCode
			return envelope.Error
		}
		return &GraphError{
			Message:    string(body),
			HTTPStatus: resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("meta: decode %s response: %w", path, err)
	}

	return nil
}
