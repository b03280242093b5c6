package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// UserAgent identifies the importer to the destination service.
const UserAgent = "ImportScript/1.0"

// ErrAuthentication is wrapped by every failure of the token request.
var ErrAuthentication = errors.New("authentication failed")

// StatusError reports a non-200 answer from the identity endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("identity endpoint returned %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrAuthentication }

// Token holds the OAuth2 token response.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	Scope       string    `json:"scope"`
	ObtainedAt  time.Time `json:"-"`
}

// Headers returns the header set sent with every submission.
func (t *Token) Headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer "+t.AccessToken)
	h.Set("User-Agent", UserAgent)
	return h
}

// ClientCredentials performs the client_credentials grant against identityURL.
// Only a 200 carrying an access token succeeds; there is no retry.
func ClientCredentials(ctx context.Context, client *http.Client, identityURL, clientID, clientSecret string) (*Token, error) {
	if client == nil {
		client = http.DefaultClient
	}

	data := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, identityURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: creating token request: %v", ErrAuthentication, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: token request: %v", ErrAuthentication, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading token response: %v", ErrAuthentication, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("%w: parsing token response: %v", ErrAuthentication, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response has no access_token", ErrAuthentication)
	}
	token.ObtainedAt = time.Now()

	return &token, nil
}
