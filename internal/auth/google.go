package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
	"github.com/giovannicg/INMEDT/pkg/httpclient"
)

const tokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleUser holds the identity fields extracted from a verified Google ID token.
type GoogleUser struct {
	Sub     string
	Email   string
	Name    string
	Picture string
}

// tokenInfoResponse mirrors the fields of Google's tokeninfo endpoint we care about.
type tokenInfoResponse struct {
	Sub           string `json:"sub"`
	Aud           string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Exp           string `json:"exp"`
}

// GoogleVerifier validates Google ID tokens against the tokeninfo endpoint.
// Calls go through a circuit breaker so a Google outage fails fast instead of
// tying up request handlers.
type GoogleVerifier struct {
	client   *httpclient.CircuitBreakerClient
	audience string
	endpoint string
}

// NewGoogleVerifier creates a verifier for the given OAuth client ID.
func NewGoogleVerifier(client *httpclient.CircuitBreakerClient, audience string) *GoogleVerifier {
	return &GoogleVerifier{
		client:   client,
		audience: audience,
		endpoint: tokenInfoURL,
	}
}

// WithEndpoint overrides the tokeninfo URL. Used in tests.
func (v *GoogleVerifier) WithEndpoint(endpoint string) *GoogleVerifier {
	v.endpoint = endpoint
	return v
}

// Verify checks the ID token with Google and returns the identity it asserts.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleUser, error) {
	resp, err := v.client.Get(ctx, v.endpoint+"?id_token="+url.QueryEscape(idToken))
	if err != nil {
		return nil, fmt.Errorf("call tokeninfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		// Google answers 400 for malformed or expired tokens.
		if httpclient.IsClientError(resp.StatusCode) {
			return nil, apperrors.Unauthorized("invalid Google token")
		}
		return nil, httpclient.ParseResponseError(resp, "google-tokeninfo")
	}

	var info tokenInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode tokeninfo response: %w", err)
	}

	if info.Aud != v.audience {
		return nil, apperrors.Unauthorized("Google token audience mismatch")
	}
	if info.EmailVerified != "true" {
		return nil, apperrors.Unauthorized("Google account email not verified")
	}
	if exp, err := strconv.ParseInt(info.Exp, 10, 64); err != nil || time.Now().Unix() >= exp {
		return nil, apperrors.Unauthorized("Google token expired")
	}

	return &GoogleUser{
		Sub:     info.Sub,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
