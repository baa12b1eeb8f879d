package digikey

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"partbridge/internal/core/apperror"
)

// refreshSlack is subtracted from the reported token lifetime so a token is
// never used right at its expiry.
const refreshSlack = 30 * time.Second

// defaultTokenTTL applies when the token endpoint omits expires_in.
const defaultTokenTTL = 1800 * time.Second

// tokenSource caches an OAuth2 client-credentials access token for the
// process lifetime, refreshing it under a lock so concurrent requests never
// race on the token endpoint.
type tokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string
	hc           *http.Client
	now          func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTokenSource(clientID, clientSecret, tokenURL string, hc *http.Client) *tokenSource {
	return &tokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		hc:           hc,
		now:          time.Now,
	}
}

// Token returns a valid access token, refreshing it when absent or expired.
func (t *tokenSource) Token(ctx context.Context) (string, error) {
	if t.clientID == "" || t.clientSecret == "" {
		return "", apperror.NewConfiguration("Digi-Key credentials are not configured")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.now().Before(t.expiry) {
		return t.token, nil
	}
	if err := t.refreshLocked(ctx); err != nil {
		return "", err
	}
	return t.token, nil
}

func (t *tokenSource) refreshLocked(ctx context.Context) error {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.clientID, t.clientSecret)

	resp, err := t.hc.Do(req)
	if err != nil {
		return apperror.NewSupplier("Digi-Key", "token request failed").WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return apperror.NewSupplier("Digi-Key",
			fmt.Sprintf("token endpoint returned status %d", resp.StatusCode)).
			WithDetail("body", strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apperror.NewSupplier("Digi-Key", "token endpoint returned an unreadable response").WithCause(err)
	}
	if payload.AccessToken == "" {
		return apperror.NewSupplier("Digi-Key", "token endpoint returned no access token")
	}

	ttl := time.Duration(payload.ExpiresIn) * time.Second
	if ttl == 0 {
		ttl = defaultTokenTTL
	}

	t.token = payload.AccessToken
	t.expiry = t.now().Add(ttl - refreshSlack)
	return nil
}
