package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8090", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.Equal(t, "KES", cfg.Currency)
	assert.Equal(t, 16.0, cfg.TaxRate)
	assert.False(t, cfg.TaxIncluded)
	assert.Equal(t, 50.0, cfg.MaxDiscountPercent)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("TAX_RATE", "8")
	t.Setenv("TAX_INCLUDED", "true")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 8.0, cfg.TaxRate)
	assert.True(t, cfg.TaxIncluded)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("UPSTREAM_TIMEOUT", "soon")
	t.Setenv("TAX_RATE", "sixteen")
	t.Setenv("RUN_MIGRATIONS", "maybe")

	cfg := Load()

	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 16.0, cfg.TaxRate)
	assert.True(t, cfg.RunMigrations)
}
