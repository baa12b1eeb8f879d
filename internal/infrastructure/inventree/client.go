// Package inventree implements the InvenTree inventory API client used to
// commit imported parts and to resolve the category taxonomy.
package inventree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"partbridge/internal/core/apperror"
)

// API is the inventory-system capability the importer consumes. Preview runs
// against a Dry implementation so it can never write.
type API interface {
	Ping(ctx context.Context) error
	ListCategories(ctx context.Context) ([]Category, error)
	CreatePart(ctx context.Context, req CreatePartRequest) (CreatedPart, error)
	CreateSupplierPart(ctx context.Context, req SupplierPartRequest) error
	CreateParameter(ctx context.Context, req ParameterRequest) error
}

// Category is one node of the InvenTree part-category tree.
type Category struct {
	PK         int    `json:"pk"`
	Name       string `json:"name"`
	PathString string `json:"pathstring"`
}

// CreatePartRequest creates the base part record.
type CreatePartRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     int    `json:"category,omitempty"`
	Purchaseable bool   `json:"purchaseable"`
	Trackable    bool   `json:"trackable"`
}

// CreatedPart is the identifying slice of the creation response.
type CreatedPart struct {
	PK int `json:"pk"`
	ID int `json:"id"`
}

// PartID returns whichever identifier the server populated.
func (c CreatedPart) PartID() int {
	if c.PK != 0 {
		return c.PK
	}
	return c.ID
}

// SupplierPartRequest links a created part to a supplier company and SKU.
type SupplierPartRequest struct {
	Part     int    `json:"part"`
	SKU      string `json:"SKU"`
	Supplier int    `json:"supplier"`
	MPN      string `json:"MPN"`
}

// ParameterRequest attaches one named parameter to a created part.
type ParameterRequest struct {
	Part  int    `json:"part"`
	Name  string `json:"name"`
	Value string `json:"data"`
}

// Config holds InvenTree client configuration.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client is the HTTP implementation of API using InvenTree token auth.
type Client struct {
	cfg Config
	hc  *http.Client
}

// NewClient creates an InvenTree client. BaseURL and Token are required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" || cfg.Token == "" {
		return nil, apperror.NewConfiguration("InvenTree base URL and token are required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, hc: &http.Client{Timeout: cfg.Timeout}}, nil
}

// Ping verifies the API is reachable and the token is accepted.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.request(ctx, http.MethodGet, "/api/", nil)
	return err
}

// ListCategories fetches the full part-category tree.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	body, err := c.request(ctx, http.MethodGet, "/api/part/category/", nil)
	if err != nil {
		return nil, err
	}
	var categories []Category
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("decode category list: %w", err)
	}
	return categories, nil
}

// CreatePart creates the base part record.
func (c *Client) CreatePart(ctx context.Context, req CreatePartRequest) (CreatedPart, error) {
	body, err := c.request(ctx, http.MethodPost, "/api/part/", req)
	if err != nil {
		return CreatedPart{}, err
	}
	var created CreatedPart
	if err := json.Unmarshal(body, &created); err != nil {
		return CreatedPart{}, fmt.Errorf("decode created part: %w", err)
	}
	return created, nil
}

// CreateSupplierPart links the part to its supplier company and SKU.
func (c *Client) CreateSupplierPart(ctx context.Context, req SupplierPartRequest) error {
	_, err := c.request(ctx, http.MethodPost, "/api/company/part/", req)
	return err
}

// CreateParameter attaches one parameter to the part.
func (c *Client) CreateParameter(ctx context.Context, req ParameterRequest) error {
	_, err := c.request(ctx, http.MethodPost, "/api/part/parameter/", req)
	return err
}

// request performs one API call. An HTTP error status is a rejection
// (business failure) carrying the server's response text; transport errors
// are returned as-is so callers can distinguish the two.
func (c *Client) request(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventree %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, apperror.NewInventreeRejected(strings.TrimSpace(string(body))).
			WithDetail("status", resp.StatusCode).
			WithDetail("path", path)
	}
	return body, nil
}
