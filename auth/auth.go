// Package auth provides the credentials the control caller attaches to its
// requests. The relay caller authenticates per message with a descriptor
// token instead.
package auth

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// ErrNoToken indicates the token source produced no usable access token.
var ErrNoToken = errors.New("no access token available")

// Authenticator decorates an outgoing request with credentials.
type Authenticator interface {
	Apply(req *http.Request) error
}

// Func adapts a function to Authenticator.
type Func func(req *http.Request) error

func (f Func) Apply(req *http.Request) error { return f(req) }

// None leaves requests untouched.
func None() Authenticator { return Func(func(*http.Request) error { return nil }) }

// Basic sets HTTP basic credentials.
func Basic(user, password string) Authenticator {
	return Func(func(req *http.Request) error {
		req.SetBasicAuth(user, password)
		return nil
	})
}

// Bearer sets a static bearer token.
func Bearer(token string) Authenticator {
	return Func(func(req *http.Request) error {
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	})
}

// OAuth2 fetches a token from ts for every request. Wrap ts with
// oauth2.ReuseTokenSource to cache tokens until expiry.
func OAuth2(ts oauth2.TokenSource) Authenticator {
	return &tokenSourceAuth{ts: ts}
}

type tokenSourceAuth struct {
	ts oauth2.TokenSource
}

func (a *tokenSourceAuth) Apply(req *http.Request) error {
	tok, err := a.ts.Token()
	if err != nil {
		return fmt.Errorf("oauth2 token: %w", err)
	}
	if tok == nil || !tok.Valid() {
		return ErrNoToken
	}
	tok.SetAuthHeader(req)
	return nil
}
