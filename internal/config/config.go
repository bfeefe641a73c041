package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// Upstream storefront CMS base URL.
	StorefrontURL   string
	UpstreamTimeout time.Duration

	// Optional infrastructure; empty disables the feature.
	DatabaseDSN   string
	RunMigrations bool
	RabbitURL     string
	RedisAddr     string

	// Store behaviour.
	StoreName          string
	Currency           string
	TaxRate            float64
	TaxIncluded        bool
	MaxDiscountPercent float64

	CORSAllowOrigins []string
}

func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8090"),
		StorefrontURL:   getenv("STOREFRONT_URL", "http://localhost:3000"),
		UpstreamTimeout: parseDuration(getenv("UPSTREAM_TIMEOUT", "10s"), 10*time.Second),

		DatabaseDSN:   getenv("DATABASE_DSN", ""),
		RunMigrations: parseBool(getenv("RUN_MIGRATIONS", "true"), true),
		RabbitURL:     getenv("RABBITMQ_URL", ""),
		RedisAddr:     getenv("REDIS_ADDR", ""),

		StoreName:          getenv("STORE_NAME", "Shop Website POS"),
		Currency:           getenv("CURRENCY", "KES"),
		TaxRate:            parseFloat(getenv("TAX_RATE", "16"), 16),
		TaxIncluded:        parseBool(getenv("TAX_INCLUDED", "false"), false),
		MaxDiscountPercent: parseFloat(getenv("MAX_DISCOUNT_PERCENT", "50"), 50),

		CORSAllowOrigins: splitCSV(getenv("CORS_ALLOW_ORIGINS", "*")),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func parseFloat(v string, def float64) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func parseBool(v string, def bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
