package service

import (
	"strings"
)

type Config struct {
	DatabaseUri             string  `envconfig:"DATABASE_URI" required:"true"`
	DatabaseMaxConns        int     `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	DatabaseMaxIdleConns    int     `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	DatabaseConnMaxLifetime int     `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"1800"` // 30 minutes
	SentryDSN               string  `envconfig:"SENTRY_DSN"`
	SentryTracesSampleRate  float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE"`
	LogFilePath             string  `envconfig:"LOG_FILE_PATH"`
	JWTSecret               []byte  `envconfig:"JWT_SECRET" required:"true"`
	JWTAccessTokenExpiry    int     `envconfig:"JWT_ACCESS_EXPIRY" default:"172800"` // in seconds, default 2 days
	AdminToken              string  `envconfig:"ADMIN_TOKEN"`
	Host                    string  `envconfig:"HOST" default:"localhost:3000"`
	Port                    int     `envconfig:"PORT" default:"3000"`
	DefaultRateLimit        int     `envconfig:"DEFAULT_RATE_LIMIT" default:"10"`
	StrictRateLimit         int     `envconfig:"STRICT_RATE_LIMIT" default:"10"`
	BurstRateLimit          int     `envconfig:"BURST_RATE_LIMIT" default:"1"`
	AllowAccountCreation    bool    `envconfig:"ALLOW_ACCOUNT_CREATION" default:"true"`
	InvoiceExpiry           int64   `envconfig:"INVOICE_EXPIRY" default:"3600"` // in seconds, 1 hour
	MaxZapAmount            int64   `envconfig:"MAX_ZAP_AMOUNT" default:"0"`
	ZapSweepInterval        int     `envconfig:"ZAP_SWEEP_INTERVAL" default:"60"` // in seconds
	RelayUris               string  `envconfig:"RELAY_URIS" default:"wss://relay.damus.io,wss://nos.lol,wss://relay.snort.social"`
	MinPasswordEntropy      int     `envconfig:"MIN_PASSWORD_ENTROPY" default:"0"`
}

func (c *Config) Relays() []string {
	relays := []string{}
	for _, uri := range strings.Split(c.RelayUris, ",") {
		if trimmed := strings.TrimSpace(uri); trimmed != "" {
			relays = append(relays, trimmed)
		}
	}
	return relays
}
