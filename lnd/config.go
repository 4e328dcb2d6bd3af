package lnd

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// LNDConnectAddress is either a full lndconnect://host:port?cert=..&macaroon=..
	// URI or the bare pubkey@host:port shorthand. The shorthand puts the
	// client into demo mode: invoices are fabricated and never payable.
	LNDConnectAddress string `envconfig:"LND_CONNECT_ADDRESS" required:"true"`
	// Timeout for a single REST call to the node, in seconds. This is a
	// per-attempt network timeout, unrelated to invoice expiry.
	RequestTimeout int `envconfig:"LND_REQUEST_TIMEOUT" default:"10"`
}

func LoadConfig() (c *Config, err error) {
	c = &Config{}
	err = envconfig.Process("", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}
