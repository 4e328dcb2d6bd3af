package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/satstacker/satstacker.go/common"
	"github.com/satstacker/satstacker.go/db"
	"github.com/satstacker/satstacker.go/db/migrations"
	"github.com/satstacker/satstacker.go/db/models"
	"github.com/satstacker/satstacker.go/lib"
	"github.com/satstacker/satstacker.go/lib/service"
	"github.com/satstacker/satstacker.go/lnd"
	"github.com/satstacker/satstacker.go/lnurl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/migrate"
)

func newTestService(t *testing.T) *service.SatstackerService {
	cfg := &service.Config{
		DatabaseUri:          "sqlite://:memory:",
		JWTSecret:            []byte("test-secret"),
		JWTAccessTokenExpiry: 3600,
		InvoiceExpiry:        3600,
		ZapSweepInterval:     60,
	}
	dbConn, err := db.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { dbConn.Close() })

	ctx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return &service.SatstackerService{
		Config: cfg,
		DB:     dbConn,
		LndClient: &lnd.Client{
			Descriptor: &lnd.Descriptor{Host: "demo", Demo: true},
			Logger:     lib.Logger(""),
		},
		LnurlClient: lnurl.NewClient(),
		Logger:      lib.Logger(""),
		ZapPubSub:   service.NewPubsub(),
	}
}

// lookupServer fakes the node's settlement lookup endpoints.
func lookupServer(t *testing.T, svc *service.SatstackerService, body string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	svc.LndClient = &lnd.Client{
		Descriptor: &lnd.Descriptor{Host: "node", Port: "8080", Macaroon: "AgEDbG5k"},
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     lib.Logger(""),
	}
	return server
}

func createTestUser(t *testing.T, svc *service.SatstackerService, login string) *models.User {
	user, err := svc.CreateUser(context.Background(), login, "super-secret", login)
	require.NoError(t, err)
	return user
}

func createTestPost(t *testing.T, svc *service.SatstackerService, author *models.User) *models.Post {
	post, err := svc.CreatePost(context.Background(), author.ID, "test post", "", "gm")
	require.NoError(t, err)
	return post
}

func TestSettleZapAppliesExactlyOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	author := createTestUser(t, svc, "author")
	zapper := createTestUser(t, svc, "zapper")
	post := createTestPost(t, svc, author)

	zap, err := svc.RecordZap(ctx, post.ID, zapper.ID, 21, "gm", "", "")
	require.NoError(t, err)
	assert.Equal(t, common.ZapStatePending, zap.State)

	applied, err := svc.SettleZap(ctx, zap)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = svc.SettleZap(ctx, zap)
	require.NoError(t, err)
	assert.False(t, applied)

	post, err = svc.FindPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(21), post.TotalSats)
	assert.Equal(t, int64(1), post.ZapCount)

	author, err = svc.FindUser(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(21), author.TotalSatsEarned)
}

func TestSettleZapConcurrently(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	author := createTestUser(t, svc, "author")
	zapper := createTestUser(t, svc, "zapper")
	post := createTestPost(t, svc, author)

	zap, err := svc.RecordZap(ctx, post.ID, zapper.ID, 21, "", "", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	appliedCount := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			applied, err := svc.SettleZap(ctx, zap)
			assert.NoError(t, err)
			appliedCount <- applied
		}()
	}
	wg.Wait()
	close(appliedCount)

	applied := 0
	for wasApplied := range appliedCount {
		if wasApplied {
			applied++
		}
	}
	assert.Equal(t, 1, applied)

	post, err = svc.FindPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(21), post.TotalSats)
}

func TestConcurrentZapsOnSamePostLoseNoSats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	author := createTestUser(t, svc, "author")
	zapper := createTestUser(t, svc, "zapper")
	post := createTestPost(t, svc, author)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			zap, err := svc.RecordZap(ctx, post.ID, zapper.ID, 10, "", "", "")
			assert.NoError(t, err)
			_, err = svc.SettleZap(ctx, zap)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	post, err := svc.FindPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), post.TotalSats)
	assert.Equal(t, int64(10), post.ZapCount)
}

func TestRecordZapSettlesImmediatelyWhenPaid(t *testing.T) {
	svc := newTestService(t)
	lookupServer(t, svc, `{"settled": true, "amt_paid_sat": "21"}`)
	ctx := context.Background()
	author := createTestUser(t, svc, "author")
	zapper := createTestUser(t, svc, "zapper")
	post := createTestPost(t, svc, author)

	zap, err := svc.RecordZap(ctx, post.ID, zapper.ID, 21, "gm", "00ff", "lnbc1stub")
	require.NoError(t, err)
	assert.Equal(t, common.ZapStatePaid, zap.State)

	post, err = svc.FindPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(21), post.TotalSats)
}

func TestRecordZapStaysPendingWhenUnsettled(t *testing.T) {
	svc := newTestService(t)
	lookupServer(t, svc, `{"settled": false, "state": "OPEN"}`)
	ctx := context.Background()
	author := createTestUser(t, svc, "author")
	zapper := createTestUser(t, svc, "zapper")
	post := createTestPost(t, svc, author)

	zap, err := svc.RecordZap(ctx, post.ID, zapper.ID, 21, "", "00ff", "")
	require.NoError(t, err)
	assert.Equal(t, common.ZapStatePending, zap.State)
}

func TestRecordZapInvalidAmount(t *testing.T) {
	svc := newTestService(t)
	author := createTestUser(t, svc, "author")
	post := createTestPost(t, svc, author)

	_, err := svc.RecordZap(context.Background(), post.ID, author.ID, 0, "", "", "")
	assert.ErrorIs(t, err, service.ErrInvalidAmount)

	_, err = svc.RecordZap(context.Background(), post.ID, author.ID, -21, "", "", "")
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
}

func TestRecordZapUnknownPost(t *testing.T) {
	svc := newTestService(t)
	zapper := createTestUser(t, svc, "zapper")

	_, err := svc.RecordZap(context.Background(), "no-such-post", zapper.ID, 21, "", "", "")
	assert.ErrorIs(t, err, service.ErrPostNotFound)
}

func TestConfirmZapSettles(t *testing.T) {
	svc := newTestService(t)
	lookupServer(t, svc, `{"settled": false}`)
	ctx := context.Background()
	author := createTestUser(t, svc, "author")
	zapper := createTestUser(t, svc, "zapper")
	post := createTestPost(t, svc, author)

	zap, err := svc.RecordZap(ctx, post.ID, zapper.ID, 21, "", "00ff", "")
	require.NoError(t, err)
	require.Equal(t, common.ZapStatePending, zap.State)

	// the node has not seen the payment yet
	_, err = svc.ConfirmZap(ctx, zap.ID)
	assert.ErrorIs(t, err, service.ErrSettlementUnconfirmed)

	// now it has
	lookupServer(t, svc, `{"settled": true, "amt_paid_sat": "21"}`)
	confirmed, err := svc.ConfirmZap(ctx, zap.ID)
	require.NoError(t, err)
	assert.Equal(t, common.ZapStatePaid, confirmed.State)

	// confirming an already settled zap is a no-op success
	confirmed, err = svc.ConfirmZap(ctx, zap.ID)
	require.NoError(t, err)
	assert.Equal(t, common.ZapStatePaid, confirmed.State)

	post, err = svc.FindPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(21), post.TotalSats)
	assert.Equal(t, int64(1), post.ZapCount)
}

func TestExpireStaleZaps(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	author := createTestUser(t, svc, "author")
	zapper := createTestUser(t, svc, "zapper")
	post := createTestPost(t, svc, author)

	zap, err := svc.RecordZap(ctx, post.ID, zapper.ID, 21, "", "", "")
	require.NoError(t, err)

	_, err = svc.DB.NewUpdate().Model((*models.Zap)(nil)).
		Set("expires_at = ?", time.Now().Add(-time.Minute)).
		Where("id = ?", zap.ID).
		Exec(ctx)
	require.NoError(t, err)

	expired, err := svc.ExpireStaleZaps(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	stale, err := svc.FindZap(ctx, zap.ID)
	require.NoError(t, err)
	assert.Equal(t, common.ZapStateExpired, stale.State)

	// an expired zap can not be settled anymore
	applied, err := svc.SettleZap(ctx, zap)
	require.NoError(t, err)
	assert.False(t, applied)

	post, err = svc.FindPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), post.TotalSats)
}

func TestExpiredZapExcludedFromRecompute(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	author := createTestUser(t, svc, "author")
	zapper := createTestUser(t, svc, "zapper")
	post := createTestPost(t, svc, author)

	paid, err := svc.RecordZap(ctx, post.ID, zapper.ID, 21, "", "", "")
	require.NoError(t, err)
	_, err = svc.SettleZap(ctx, paid)
	require.NoError(t, err)

	stale, err := svc.RecordZap(ctx, post.ID, zapper.ID, 42, "", "", "")
	require.NoError(t, err)
	_, err = svc.DB.NewUpdate().Model((*models.Zap)(nil)).
		Set("state = ?", common.ZapStateExpired).
		Where("id = ?", stale.ID).
		Exec(ctx)
	require.NoError(t, err)

	total, err := svc.RecomputeEarnedSats(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(21), total)

	author, err = svc.FindUser(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(21), author.TotalSatsEarned)
}
