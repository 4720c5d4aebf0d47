package meta

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestExchangeCode(t *testing.T) {
	client := graphServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/access_token", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "app-id", q.Get("client_id"))
		assert.Equal(t, "app-secret", q.Get("client_secret"))
		assert.Equal(t, "https://app.example/cb", q.Get("redirect_uri"))
		assert.Equal(t, "the-code", q.Get("code"))

		writeJSON(w, http.StatusOK, map[string]any{"access_token": "short-lived"})
	})

	token, err := client.ExchangeCode(context.Background(), "app-id", "app-secret", "https://app.example/cb", "the-code")
	require.NoError(t, err)
	assert.Equal(t, "short-lived", token)
}

func TestExchangeCodeConsumedCode(t *testing.T) {
	client := graphServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"message":       "This authorization code has been used.",
				"type":          "OAuthException",
				"code":          100,
				"error_subcode": 36009,
			},
		})
	})

	_, err := client.ExchangeCode(context.Background(), "a", "s", "r", "c")
	require.Error(t, err)

	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.True(t, gerr.CodeAlreadyUsed())
	assert.Equal(t, http.StatusBadRequest, gerr.HTTPStatus)
}

func TestExchangeCodeGenericFailure(t *testing.T) {
	client := graphServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"message": "Invalid verification code format.",
				"type":    "OAuthException",
				"code":    100,
			},
		})
	})

	_, err := client.ExchangeCode(context.Background(), "a", "s", "r", "c")
	require.Error(t, err)

	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.False(t, gerr.CodeAlreadyUsed())
}

func TestExchangeCodeEmptyToken(t *testing.T) {
	client := graphServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	_, err := client.ExchangeCode(context.Background(), "a", "s", "r", "c")
	require.Error(t, err)
}

func TestExchangeLongLived(t *testing.T) {
	client := graphServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "fb_exchange_token", q.Get("grant_type"))
		assert.Equal(t, "short-lived", q.Get("fb_exchange_token"))

		writeJSON(w, http.StatusOK, map[string]any{"access_token": "long-lived"})
	})

	token, err := client.ExchangeLongLived(context.Background(), "a", "s", "short-lived")
	require.NoError(t, err)
	assert.Equal(t, "long-lived", token)
}

func TestExchangeLongLivedFallsBackToShortToken(t *testing.T) {
	client := graphServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	token, err := client.ExchangeLongLived(context.Background(), "a", "s", "short-lived")
	require.NoError(t, err)
	assert.Equal(t, "short-lived", token)
}

func TestDiscoverAccounts(t *testing.T) {
	client := graphServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/me/accounts":
			writeJSON(w, http.StatusOK, map[string]any{
				"data": []map[string]any{
					{
						"id":   "page-1",
						"name": "Page One",
						"instagram_business_account": map[string]any{
							"id": "ig-1", "username": "alice", "name": "Alice",
						},
					},
					{
						"id":   "page-2",
						"name": "Page Two",
						// no username: triggers the backfill lookup
						"instagram_business_account": map[string]any{"id": "ig-2"},
					},
					{
						"id":   "page-3",
						"name": "No Instagram",
					},
					{
						"id": "page-4",
						// duplicate of ig-1 with different attributes: first seen wins
						"instagram_business_account": map[string]any{
							"id": "ig-1", "username": "alice-dup",
						},
					},
				},
			})
		case r.URL.Path == "/ig-2":
			writeJSON(w, http.StatusOK, map[string]any{
				"id": "ig-2", "username": "bob", "name": "Bob",
			})
		case r.URL.Path == "/me":
			writeJSON(w, http.StatusOK, map[string]any{
				"instagram_accounts": map[string]any{
					"data": []map[string]any{
						{"id": "ig-1", "username": "alice"},
						{"id": "ig-3", "username": "carol"},
					},
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	accounts, err := client.DiscoverAccounts(context.Background(), "token")
	require.NoError(t, err)

	require.Len(t, accounts, 3)
	assert.Equal(t, "ig-1", accounts[0].ID)
	assert.Equal(t, "alice", accounts[0].Username, "first occurrence wins")
	assert.Equal(t, "ig-2", accounts[1].ID)
	assert.Equal(t, "bob", accounts[1].Username, "username backfilled via lookup")
	assert.Equal(t, "ig-3", accounts[2].ID)
	assert.Equal(t, "carol", accounts[2].Name, "name defaults to username")
}

func TestDiscoverAccountsToleratesFailures(t *testing.T) {
	client := graphServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me/accounts":
			writeJSON(w, http.StatusForbidden, map[string]any{
				"error": map[string]any{"message": "permission denied", "code": 200},
			})
		case "/me":
			writeJSON(w, http.StatusOK, map[string]any{
				"instagram_accounts": map[string]any{
					"data": []map[string]any{{"id": "ig-9", "username": "dora"}},
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	accounts, err := client.DiscoverAccounts(context.Background(), "token")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "ig-9", accounts[0].ID)
}

func TestDiscoverAccountsUsernameLookupFailureKeepsAccount(t *testing.T) {
	client := graphServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me/accounts":
			writeJSON(w, http.StatusOK, map[string]any{
				"data": []map[string]any{
					{"id": "p1", "instagram_business_account": map[string]any{"id": "ig-5"}},
				},
			})
		case "/ig-5":
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error": map[string]any{"message": "boom", "code": 1},
			})
		case "/me":
			writeJSON(w, http.StatusOK, map[string]any{})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	accounts, err := client.DiscoverAccounts(context.Background(), "token")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "ig-5", accounts[0].ID)
	assert.Empty(t, accounts[0].Username)
}

func TestGraphErrorUnparseableBody(t *testing.T) {
	client := graphServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := client.ExchangeCode(context.Background(), "a", "s", "r", "c")
	require.Error(t, err)

	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, http.StatusBadGateway, gerr.HTTPStatus)
	assert.True(t, strings.Contains(gerr.Message, "bad gateway"))
}

func TestAuthCodeURL(t *testing.T) {
	raw := AuthCodeURL(
		"https://www.facebook.com/v20.0/dialog/oauth",
		"app-123",
		"https://app.example/cb",
		"user-uid-1",
		[]string{"instagram_basic", "pages_show_list"},
	)

	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "app-123", q.Get("client_id"))
	assert.Equal(t, "https://app.example/cb", q.Get("redirect_uri"))
	assert.Equal(t, "user-uid-1", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "instagram_basic,pages_show_list", q.Get("scope"))
}
