package lnd

import (
	"fmt"
	"net/url"
	"strings"
)

// Descriptor is the parsed form of the node connection string.
type Descriptor struct {
	Host     string
	Port     string
	Cert     string
	Macaroon string
	// Demo is set for the pubkey@host:port shorthand. No credentials are
	// available in this mode, so the node can never actually be reached.
	Demo   bool
	Pubkey string
}

// ParseDescriptor accepts the two supported connection formats:
//
//	lndconnect://host:port?cert=...&macaroon=...
//	pubkey@host:port
func ParseDescriptor(raw string) (*Descriptor, error) {
	switch {
	case strings.HasPrefix(raw, "lndconnect://"):
		u, err := url.Parse(strings.Replace(raw, "lndconnect://", "https://", 1))
		if err != nil {
			return nil, fmt.Errorf("invalid lndconnect address: %v", err)
		}
		port := u.Port()
		if port == "" {
			port = "8080"
		}
		d := &Descriptor{
			Host:     u.Hostname(),
			Port:     port,
			Cert:     u.Query().Get("cert"),
			Macaroon: u.Query().Get("macaroon"),
		}
		if d.Macaroon == "" {
			return nil, fmt.Errorf("invalid lndconnect address: missing macaroon")
		}
		return d, nil
	case strings.Contains(raw, "@"):
		parts := strings.SplitN(raw, "@", 2)
		host, port := parts[1], ""
		if h, p, found := strings.Cut(parts[1], ":"); found {
			host, port = h, p
		}
		return &Descriptor{
			Host:   host,
			Port:   port,
			Pubkey: parts[0],
			Demo:   true,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported LND connection format")
	}
}
