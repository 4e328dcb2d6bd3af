package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/satstacker/satstacker.go/common"
	"github.com/satstacker/satstacker.go/lib/service"
	"github.com/satstacker/satstacker.go/lnurl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// a valid mainnet payment request for 250000 sats
const testPaymentRequest = "lnbc2500u1pvjluezpp5qqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqypqdq5xysxxatsyp3k7enxv4jsxqzpuaztrnwngzn3kdzw5hydlzf03qdgm2hdq27cqv3agm2awhz5se903vruatfhq77w3ls4evs3ch9zw97j25emudupq63nyw24cg27h2rspfj9srp"

func lnurlServer(t *testing.T, svc *service.SatstackerService) string {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/.well-known/lnurlp/") {
			json.NewEncoder(w).Encode(&lnurl.PayParams{
				Callback: callbackURL(r),
				Tag:      "payRequest",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"pr": testPaymentRequest})
	}))
	t.Cleanup(server.Close)
	svc.LnurlClient = &lnurl.Client{HTTPClient: server.Client(), Scheme: "http"}
	return strings.TrimPrefix(server.URL, "http://")
}

func callbackURL(r *http.Request) string {
	return "http://" + r.Host + "/callback"
}

func TestSendZap(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	author := createTestUser(t, svc, "author")
	sender := createTestUser(t, svc, "sender")
	post := createTestPost(t, svc, author)

	host := lnurlServer(t, svc)
	_, err := svc.UpdateUserSettings(ctx, author.ID, service.UserSettings{
		LightningAddress: "author@" + host,
	})
	require.NoError(t, err)
	sender, err = svc.UpdateUserSettings(ctx, sender.ID, service.UserSettings{
		NWCUri: "nostr+walletconnect://b889ff5b1513b641e2a139f661a661364979c5beee91842f8f0ef42ab558e9d4?relay=wss%3A%2F%2Frelay.example.com&secret=71a8c14c",
	})
	require.NoError(t, err)

	paidInvoices := []string{}
	svc.WalletPay = func(ctx context.Context, nwcUri string, bolt11 string) (string, error) {
		paidInvoices = append(paidInvoices, bolt11)
		return "preimage", nil
	}

	zap, err := svc.SendZap(ctx, sender, post.ID, "", 21, "gm")
	require.NoError(t, err)
	assert.Equal(t, common.ZapStatePaid, zap.State)
	assert.Equal(t, []string{testPaymentRequest}, paidInvoices)

	post, err = svc.FindPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(21), post.TotalSats)
	assert.Equal(t, int64(1), post.ZapCount)
}

func TestSendProfileZap(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	author := createTestUser(t, svc, "author")
	sender := createTestUser(t, svc, "sender")

	host := lnurlServer(t, svc)
	_, err := svc.UpdateUserSettings(ctx, author.ID, service.UserSettings{
		LightningAddress: "author@" + host,
	})
	require.NoError(t, err)
	sender, err = svc.UpdateUserSettings(ctx, sender.ID, service.UserSettings{
		NWCUri: "nostr+walletconnect://b889ff5b1513b641e2a139f661a661364979c5beee91842f8f0ef42ab558e9d4?relay=wss%3A%2F%2Frelay.example.com&secret=71a8c14c",
	})
	require.NoError(t, err)

	svc.WalletPay = func(ctx context.Context, nwcUri string, bolt11 string) (string, error) {
		return "preimage", nil
	}

	zap, err := svc.SendZap(ctx, sender, "", author.ID, 21, "")
	require.NoError(t, err)
	assert.Equal(t, common.ZapStatePaid, zap.State)
	assert.Empty(t, zap.PostID)

	author, err = svc.FindUser(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(21), author.TotalSatsEarned)
}

func TestSendZapRequiresWallet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	author := createTestUser(t, svc, "author")
	sender := createTestUser(t, svc, "sender")
	post := createTestPost(t, svc, author)

	_, err := svc.SendZap(ctx, sender, post.ID, "", 21, "")
	assert.ErrorIs(t, err, service.ErrWalletNotConnected)
}

func TestSendZapRefusesDemoInvoice(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	author := createTestUser(t, svc, "author")
	sender := createTestUser(t, svc, "sender")
	post := createTestPost(t, svc, author)

	sender, err := svc.UpdateUserSettings(ctx, sender.ID, service.UserSettings{
		NWCUri: "nostr+walletconnect://b889ff5b1513b641e2a139f661a661364979c5beee91842f8f0ef42ab558e9d4?relay=wss%3A%2F%2Frelay.example.com&secret=71a8c14c",
	})
	require.NoError(t, err)

	// the author has no lightning address, the demo node fabricates
	_, err = svc.SendZap(ctx, sender, post.ID, "", 21, "")
	assert.ErrorIs(t, err, service.ErrDemoInvoiceNotPayable)
}

func TestSendZapNoPaymentOnFailure(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sender := createTestUser(t, svc, "sender")

	sender, err := svc.UpdateUserSettings(ctx, sender.ID, service.UserSettings{
		NWCUri: "nostr+walletconnect://b889ff5b1513b641e2a139f661a661364979c5beee91842f8f0ef42ab558e9d4?relay=wss%3A%2F%2Frelay.example.com&secret=71a8c14c",
	})
	require.NoError(t, err)

	paid := false
	svc.WalletPay = func(ctx context.Context, nwcUri string, bolt11 string) (string, error) {
		paid = true
		return "preimage", nil
	}

	_, err = svc.SendZap(ctx, sender, "no-such-post", "", 21, "")
	assert.ErrorIs(t, err, service.ErrPostNotFound)
	assert.False(t, paid)
}
