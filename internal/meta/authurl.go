package meta

import (
	"strings"

	"golang.org/x/oauth2"
)

// AuthCodeURL builds the Facebook OAuth dialog URL for the given app and
// redirect target. The state parameter carries the authenticated user id
// verbatim; the callback validates it against the bearer credential.
//
// Meta expects the scope list comma-joined, so the scopes travel as a
// single oauth2 scope element rather than the library's space-joined form.
func AuthCodeURL(dialogURL, appID, redirectURI, userID string, scopes []string) string {

	cfg := &oauth2.Config{
		ClientID:    appID,
		RedirectURL: redirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL: dialogURL,
		},
		Scopes: []string{strings.Join(scopes, ",")},
	}

	return cfg.AuthCodeURL(userID)
}
