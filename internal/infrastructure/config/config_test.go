package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "EUR", cfg.DefaultCurrency)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"mouser", "digikey"}, cfg.Suppliers)
	assert.True(t, cfg.IsDevelopment())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("IMPORTER_REQUEST_TIMEOUT", "45s")
	t.Setenv("IMPORTER_SUPPLIERS", "mouser, ")
	t.Setenv("INVENTREE_MOUSER_COMPANY_ID", "12")
	t.Setenv("INVENTREE_BASE_URL", "https://inventree.local")
	t.Setenv("INVENTREE_TOKEN", "tok")

	cfg := FromEnv()

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"mouser"}, cfg.Suppliers)
	require.NotNil(t, cfg.Mouser.CompanyID)
	assert.Equal(t, 12, *cfg.Mouser.CompanyID)
	assert.Equal(t, "https://inventree.local", cfg.Inventree.BaseURL)
}

func TestFromEnv_BadValuesFallBack(t *testing.T) {
	t.Setenv("IMPORTER_REQUEST_TIMEOUT", "soon")
	t.Setenv("INVENTREE_MOUSER_COMPANY_ID", "twelve")

	cfg := FromEnv()

	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Nil(t, cfg.Mouser.CompanyID)
}

func TestFromEnv_BareSecondsTimeout(t *testing.T) {
	t.Setenv("IMPORTER_REQUEST_TIMEOUT", "20")
	cfg := FromEnv()
	assert.Equal(t, 20*time.Second, cfg.RequestTimeout)
}

func TestSupplierEnabled(t *testing.T) {
	t.Setenv("IMPORTER_SUPPLIERS", "mouser")
	cfg := FromEnv()

	assert.True(t, cfg.SupplierEnabled("Mouser"))
	assert.False(t, cfg.SupplierEnabled("digikey"))
}
