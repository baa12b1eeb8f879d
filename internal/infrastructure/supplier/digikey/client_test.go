package digikey

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partbridge/internal/core/apperror"
	"partbridge/internal/domain/part"
)

const sampleProductJSON = `{
	"ProductDescription": "CAP CER 100NF 50V X7R 0603",
	"ManufacturerName": "KEMET",
	"ManufacturerPartNumber": "C0603C104K5RAC7867",
	"DigiKeyPartNumber": "399-C0603C104K5RAC7867CT-ND",
	"Categories": [{"Name": "Capacitors"}, {"Name": "Ceramic Capacitors"}],
	"PrimaryDatasheet": "https://api.digikey.com/ds.pdf",
	"PrimaryPhoto": {"Href": "https://api.digikey.com/photo.jpg"},
	"QuantityAvailable": 125000,
	"LeadTime": {"Value": 12},
	"StandardPricing": [
		{"BreakQuantity": 1, "Price": 0.10, "Currency": "EUR"},
		{"BreakQuantity": 0, "Price": 0.01, "Currency": "EUR"},
		{"BreakQuantity": 100, "Price": 0.02, "Currency": "EUR"}
	],
	"ProductAttributes": [
		{"Parameter": "Capacitance", "Value": "100nF"},
		{"Parameter": "", "Value": "orphan"}
	]
}`

// newTestServer serves the token endpoint plus the given product handler.
func newTestServer(t *testing.T, tokenCalls *atomic.Int32, products http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenCalls != nil {
			tokenCalls.Add(1)
		}
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		_, _ = w.Write([]byte(`{"access_token": "tok-1", "expires_in": 1800}`))
	})
	mux.HandleFunc("/products/", products)
	return httptest.NewServer(mux)
}

func newTestConfig(serverURL string) Config {
	return Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		BaseURL:      serverURL,
		TokenURL:     serverURL + "/v1/token",
	}
}

func TestSearch_NormalizesProducts(t *testing.T) {
	server := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "client-id", r.Header.Get("X-DIGIKEY-Client-Id"))
		_, _ = w.Write([]byte(`{"Products": [` + sampleProductJSON + `], "ProductsCount": 3}`))
	})
	defer server.Close()

	client := New(newTestConfig(server.URL), nil)
	parts, count, err := client.Search(context.Background(), "C0603C104")

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, parts, 1)

	p := parts[0]
	assert.Equal(t, "CAP CER 100NF 50V X7R 0603", p.Name)
	assert.Equal(t, "KEMET", p.Manufacturer)
	assert.Equal(t, []string{"Capacitors", "Ceramic Capacitors"}, p.CategoryPath)
	require.NotNil(t, p.Stock)
	assert.Equal(t, 125000, *p.Stock)
	require.Len(t, p.PriceBreaks, 2, "zero break quantity is dropped")
	assert.True(t, p.PriceBreaks[0].Price.Equal(decimal.NewFromFloat(0.10)))
	require.Len(t, p.Parameters, 1)
}

func TestSearch_NotFoundMeansNoResults(t *testing.T) {
	server := newTestServer(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()

	client := New(newTestConfig(server.URL), nil)
	parts, count, err := client.Search(context.Background(), "NOPE")

	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, parts)
}

func TestSearch_SupplierError(t *testing.T) {
	server := newTestServer(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"title": "Rate limit", "detail": "slow down"}`))
	})
	defer server.Close()

	client := New(newTestConfig(server.URL), nil)
	_, _, err := client.Search(context.Background(), "C0603C104")

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeSupplier, appErr.Code)
	assert.Equal(t, "Rate limit: slow down", appErr.Message)
}

func TestFinalize_FillsDeferredPricing(t *testing.T) {
	var detailCalls atomic.Int32
	server := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		detailCalls.Add(1)
		assert.Contains(t, r.URL.Path, "/products/v4/productdetails/")
		_, _ = w.Write([]byte(sampleProductJSON))
	})
	defer server.Close()

	client := New(newTestConfig(server.URL), nil)
	p := part.Part{SKU: "399-C0603C104K5RAC7867CT-ND"}

	require.NoError(t, client.Finalize(context.Background(), &p))
	require.Len(t, p.PriceBreaks, 2)

	// Second call is a no-op because pricing is already present.
	require.NoError(t, client.Finalize(context.Background(), &p))
	assert.Equal(t, int32(1), detailCalls.Load())
}

func TestFinalize_NotFound(t *testing.T) {
	server := newTestServer(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()

	client := New(newTestConfig(server.URL), nil)
	p := part.Part{SKU: "GONE-ND"}

	err := client.Finalize(context.Background(), &p)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestTokenSource_CachesUntilExpiry(t *testing.T) {
	var tokenCalls atomic.Int32
	server := newTestServer(t, &tokenCalls, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Products": [], "ProductsCount": 0}`))
	})
	defer server.Close()

	client := New(newTestConfig(server.URL), nil)
	now := time.Now()
	client.tokens.now = func() time.Time { return now }

	_, _, err := client.Search(context.Background(), "A")
	require.NoError(t, err)
	_, _, err = client.Search(context.Background(), "B")
	require.NoError(t, err)
	assert.Equal(t, int32(1), tokenCalls.Load(), "second search reuses the cached token")

	// Advance past expiry (1800s minus slack) and the token refreshes.
	now = now.Add(1795 * time.Second)
	_, _, err = client.Search(context.Background(), "C")
	require.NoError(t, err)
	assert.Equal(t, int32(2), tokenCalls.Load())
}

func TestTokenSource_MissingCredentials(t *testing.T) {
	client := New(Config{}, nil)
	_, _, err := client.Search(context.Background(), "A")

	require.Error(t, err)
	assert.True(t, apperror.IsConfiguration(err))
}

func TestNormalize_NameFallsBackToMPN(t *testing.T) {
	client := New(Config{ClientID: "x", ClientSecret: "y"}, nil)

	var raw rawProduct
	require.NoError(t, json.Unmarshal([]byte(`{"ManufacturerPartNumber": "MPN-1"}`), &raw))

	p := client.normalize(raw)
	assert.Equal(t, "MPN-1", p.Name)
	assert.Nil(t, p.Stock)
	assert.Nil(t, p.LeadTimeWeeks)
}
