package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const walletPubkey = "b889ff5b1513b641e2a139f661a661364979c5beee91842f8f0ef42ab558e9d4"

func TestParseURI(t *testing.T) {
	conn, err := ParseURI("nostr+walletconnect://" + walletPubkey + "?relay=wss%3A%2F%2Frelay.example.com&secret=71a8c14c")
	assert.NoError(t, err)
	assert.Equal(t, walletPubkey, conn.WalletPubkey)
	assert.Equal(t, "wss://relay.example.com", conn.Relay)
	assert.Equal(t, "71a8c14c", conn.Secret)
}

func TestParseURIEmptyIsNoCredentials(t *testing.T) {
	_, err := ParseURI("")
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestParseURIWrongScheme(t *testing.T) {
	_, err := ParseURI("nostr://" + walletPubkey + "?relay=wss%3A%2F%2Frelay.example.com&secret=71a8c14c")
	assert.Error(t, err)
}

func TestParseURIMissingParts(t *testing.T) {
	for _, uri := range []string{
		"nostr+walletconnect://" + walletPubkey,
		"nostr+walletconnect://" + walletPubkey + "?relay=wss%3A%2F%2Frelay.example.com",
		"nostr+walletconnect://?relay=wss%3A%2F%2Frelay.example.com&secret=71a8c14c",
	} {
		_, err := ParseURI(uri)
		assert.Error(t, err, uri)
	}
}
