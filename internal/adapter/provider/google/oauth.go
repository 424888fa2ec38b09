// Package google implements the OAuth code flow used to connect a user's
// Gmail mailbox for outbound mail.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// Made variables for testing purposes
	authURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	tokenURL = "https://oauth2.googleapis.com/token"
)

// Scopes requested at consent time.
var Scopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/gmail.send",
}

var (
	// ErrInvalidGrant means Google rejected the code or refresh token.
	ErrInvalidGrant = errors.New("oauth: invalid or expired grant")
	// ErrUnavailable means the token endpoint could not be reached or failed.
	ErrUnavailable = errors.New("oauth: google unavailable")
)

// Token is the result of a code exchange or refresh. RefreshToken is empty
// when Google did not issue a new one.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// OAuth drives the authorization code flow against Google.
type OAuth struct {
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
	log          *slog.Logger
	now          func() time.Time
}

// NewOAuth creates a Google OAuth client.
func NewOAuth(clientID, clientSecret, redirectURI string, logger *slog.Logger) *OAuth {
	return &OAuth{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		log:          logger.With("adapter", "google_oauth"),
		now:          time.Now,
	}
}

// AuthURL returns the consent page URL. Offline access and a forced consent
// prompt make Google issue a refresh token on every connect.
func (o *OAuth) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", o.clientID)
	q.Set("redirect_uri", o.redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(Scopes, " "))
	q.Set("access_type", "offline")
	q.Set("prompt", "consent")
	q.Set("state", state)
	return authURL + "?" + q.Encode()
}

// tokenResponse represents the response from Google's token endpoint.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// errorResponse represents Google's error response format.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ExchangeCode trades an authorization code for tokens.
func (o *OAuth) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", o.redirectURI)
	return o.token(ctx, "exchange", data)
}

// Refresh obtains a new access token from a refresh token.
func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	return o.token(ctx, "refresh", data)
}

func (o *OAuth) token(ctx context.Context, op string, data url.Values) (*Token, error) {
	data.Set("client_id", o.clientID)
	data.Set("client_secret", o.clientSecret)
	encoded := data.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(encoded)), nil
	}

	resp, err := o.doWithRetry(ctx, req)
	if err != nil {
		o.log.ErrorContext(ctx, "google oauth token request failed",
			slog.String("op", op), slog.String("error", err.Error()))
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("oauth: failed to read token response")
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			o.log.ErrorContext(ctx, "google oauth token request failed",
				slog.String("op", op),
				slog.Int("status", resp.StatusCode),
				slog.String("error", errResp.Error))

			// 400/401 with an error code are rejected grants or clients.
			if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
				return nil, ErrInvalidGrant
			}
		}

		o.log.ErrorContext(ctx, "google oauth token request failed",
			slog.String("op", op), slog.Int("status", resp.StatusCode))
		return nil, ErrUnavailable
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.AccessToken == "" {
		o.log.ErrorContext(ctx, "google oauth token request failed",
			slog.String("op", op), slog.String("error", "invalid token response"))
		return nil, fmt.Errorf("oauth: invalid token response")
	}

	o.log.DebugContext(ctx, "google oauth token issued",
		slog.String("op", op),
		slog.Bool("refresh_token", tr.RefreshToken != ""))

	return &Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    o.now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

// doWithRetry executes an HTTP request with retry logic.
// Retries once on 5xx errors or network errors with 500ms backoff.
// The request body must be replayable through GetBody.
func (o *OAuth) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := o.httpClient.Do(req)
	if err != nil || (resp != nil && resp.StatusCode >= 500) {
		if resp != nil {
			resp.Body.Close()
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		select {
		case <-time.After(500 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		retry := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			retry.Body = body
		}
		resp, err = o.httpClient.Do(retry)
	}

	return resp, err
}
