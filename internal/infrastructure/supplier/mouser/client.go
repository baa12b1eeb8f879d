// Package mouser implements the Mouser part-number search API client.
package mouser

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

const defaultBaseURL = "https://api.mouser.com/api/v1"

// Config holds Mouser client configuration.
type Config struct {
	APIKey          string
	BaseURL         string
	CompanyID       *int // supplier company id in the inventory system
	DefaultCurrency string
	Timeout         time.Duration
}

// Client talks to the Mouser search API.
type Client struct {
	cfg Config
	hc  *http.Client
	log *logger.Logger
}

// New creates a Mouser client.
func New(cfg Config, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
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
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
		log: log.WithComponent("mouser"),
	}
}

func (c *Client) Slug() string    { return "mouser" }
func (c *Client) Name() string    { return "Mouser" }
func (c *Client) CompanyID() *int { return c.cfg.CompanyID }

// searchResponse mirrors the Mouser part-number search payload.
type searchResponse struct {
	Errors        []apiError `json:"Errors"`
	SearchResults *struct {
		NumberOfResult int       `json:"NumberOfResult"`
		Parts          []rawPart `json:"Parts"`
	} `json:"SearchResults"`
}

type apiError struct {
	Code         string `json:"Code"`
	Message      string `json:"Message"`
	PropertyName string `json:"PropertyName"`
}

// Search looks up a part number. Zero results return an empty slice; a
// structured error payload is rendered into a single message and surfaced as
// a supplier error.
func (c *Client) Search(ctx context.Context, partNumber string) ([]part.Part, int, error) {
	if c.cfg.APIKey == "" {
		return nil, 0, apperror.NewConfiguration("Mouser API key is not configured")
	}

	endpoint := fmt.Sprintf("%s/search/partnumber?apikey=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.QueryEscape(c.cfg.APIKey))
	body, err := json.Marshal(map[string]any{
		"SearchByPartNumberRequest": map[string]string{
			"mouserPartNumber": partNumber,
		},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, apperror.NewSupplier(c.Name(), "Mouser search request failed").WithCause(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, 0, apperror.NewSupplier(c.Name(),
			fmt.Sprintf("Mouser search returned status %d", resp.StatusCode)).
			WithDetail("body", strings.TrimSpace(string(payload)))
	}

	var decoded searchResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, 0, apperror.NewSupplier(c.Name(), "Mouser returned an unreadable response").WithCause(err)
	}

	if len(decoded.Errors) > 0 {
		return nil, 0, apperror.NewSupplier(c.Name(), renderErrors(decoded.Errors))
	}
	if decoded.SearchResults == nil || len(decoded.SearchResults.Parts) == 0 {
		return nil, 0, nil
	}

	parts := make([]part.Part, 0, len(decoded.SearchResults.Parts))
	for _, raw := range decoded.SearchResults.Parts {
		parts = append(parts, c.normalize(raw))
	}
	return parts, decoded.SearchResults.NumberOfResult, nil
}

// Finalize is a no-op: Mouser search results carry full pricing already.
func (c *Client) Finalize(_ context.Context, _ *part.Part) error {
	return nil
}

// renderErrors joins a structured Mouser error payload into one
// human-readable string.
func renderErrors(errs []apiError) string {
	rendered := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := e.Message
		if e.Code != "" {
			msg = e.Code + ": " + msg
		}
		if e.PropertyName != "" {
			msg += " (" + e.PropertyName + ")"
		}
		rendered = append(rendered, msg)
	}
	return strings.Join(rendered, "; ")
}
