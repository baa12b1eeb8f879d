// Package digikey implements the Digi-Key product search API client.
package digikey

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"partbridge/internal/core/apperror"
	"partbridge/internal/domain/part"
	"partbridge/pkg/logger"
)

const (
	defaultBaseURL  = "https://api.digikey.com"
	defaultTokenURL = "https://api.digikey.com/v1/token"
)

// Config holds Digi-Key client configuration.
type Config struct {
	ClientID        string
	ClientSecret    string
	BaseURL         string
	TokenURL        string
	CompanyID       *int
	DefaultCurrency string
	Timeout         time.Duration
}

// Client talks to the Digi-Key product APIs with an OAuth2
// client-credentials token cached across requests.
type Client struct {
	cfg    Config
	hc     *http.Client
	tokens *tokenSource
	log    *logger.Logger
}

// New creates a Digi-Key client.
func New(cfg Config, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "EUR"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Default()
	}
	hc := &http.Client{Timeout: cfg.Timeout}
	return &Client{
		cfg:    cfg,
		hc:     hc,
		tokens: newTokenSource(cfg.ClientID, cfg.ClientSecret, cfg.TokenURL, hc),
		log:    log.WithComponent("digikey"),
	}
}

func (c *Client) Slug() string    { return "digikey" }
func (c *Client) Name() string    { return "Digi-Key" }
func (c *Client) CompanyID() *int { return c.cfg.CompanyID }

type keywordResponse struct {
	Products      []rawProduct `json:"Products"`
	ProductsCount int          `json:"ProductsCount"`
}

// Search runs a keyword search for the part number. Keyword results omit the
// full pricing schedule; Finalize fills it in for the selected candidate.
func (c *Client) Search(ctx context.Context, partNumber string) ([]part.Part, int, error) {
	body, err := json.Marshal(map[string]any{
		"Keywords": partNumber,
		"Limit":    10,
		"Offset":   0,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("marshal keyword request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/products/v4/search/keyword"
	payload, status, err := c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	if status == http.StatusNotFound {
		return nil, 0, nil
	}
	if status >= http.StatusBadRequest {
		return nil, 0, supplierError(status, payload)
	}

	var decoded keywordResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, 0, apperror.NewSupplier(c.Name(), "Digi-Key returned an unreadable response").WithCause(err)
	}

	parts := make([]part.Part, 0, len(decoded.Products))
	for _, raw := range decoded.Products {
		parts = append(parts, c.normalize(raw))
	}
	count := decoded.ProductsCount
	if count == 0 {
		count = len(parts)
	}
	return parts, count, nil
}

// Finalize resolves deferred pricing and attributes via the product-details
// endpoint. Idempotent: a part that already carries pricing is untouched.
func (c *Client) Finalize(ctx context.Context, p *part.Part) error {
	if p.HasPricing() || p.SKU == "" {
		return nil
	}

	endpoint := fmt.Sprintf("%s/products/v4/productdetails/%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(p.SKU))
	payload, status, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return apperror.NewNotFound("Digi-Key part not found").WithDetail("sku", p.SKU)
	}
	if status >= http.StatusBadRequest {
		return supplierError(status, payload)
	}

	var raw rawProduct
	if err := json.Unmarshal(payload, &raw); err != nil {
		return apperror.NewSupplier(c.Name(), "Digi-Key returned an unreadable response").WithCause(err)
	}

	detailed := c.normalize(raw)
	p.PriceBreaks = detailed.PriceBreaks
	if len(detailed.Parameters) > 0 {
		p.Parameters = detailed.Parameters
	}
	return nil
}

// do performs an authenticated request and returns the body and status.
// Transport failures become supplier errors; HTTP error statuses are left to
// the caller, which knows whether 404 means "not found" or "no results".
func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader) ([]byte, int, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-DIGIKEY-Client-Id", c.cfg.ClientID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, apperror.NewSupplier(c.Name(), "Digi-Key request failed").WithCause(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return payload, resp.StatusCode, nil
}

// supplierError renders a Digi-Key error payload into a supplier error.
func supplierError(status int, payload []byte) error {
	var decoded struct {
		Title        string `json:"title"`
		Detail       string `json:"detail"`
		ErrorMessage string `json:"ErrorMessage"`
	}
	_ = json.Unmarshal(payload, &decoded)

	message := decoded.ErrorMessage
	if message == "" && decoded.Title != "" {
		message = decoded.Title
		if decoded.Detail != "" {
			message += ": " + decoded.Detail
		}
	}
	if message == "" {
		message = fmt.Sprintf("Digi-Key returned status %d", status)
	}
	return apperror.NewSupplier("Digi-Key", message)
}
