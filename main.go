package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/satstacker/satstacker.go/db"
	"github.com/satstacker/satstacker.go/db/migrations"
	"github.com/satstacker/satstacker.go/lib"
	"github.com/satstacker/satstacker.go/lib/service"
	"github.com/satstacker/satstacker.go/lib/tokens"
	"github.com/satstacker/satstacker.go/lnd"
	"github.com/satstacker/satstacker.go/lnurl"
	"github.com/satstacker/satstacker.go/wallet"
	"github.com/uptrace/bun/migrate"
)

func main() {

	c := &service.Config{}

	// Load configuration from environment variables
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		log.Fatalf("Error loading environment variables: %v", err)
	}

	// Setup logging to STDOUT or a configured log file
	logger := lib.Logger(c.LogFilePath)

	// Open a DB connection based on the configured DATABASE_URI
	dbConn, err := db.Open(c)
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}

	// Migrate the DB
	startupCtx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	err = migrator.Init(startupCtx)
	if err != nil {
		logger.Fatalf("Error initializing db migrator: %v", err)
	}
	_, err = migrator.Migrate(startupCtx)
	if err != nil {
		logger.Fatalf("Error migrating database: %v", err)
	}

	// Setup exception tracking with Sentry if configured
	// sentry init needs to happen before the echo middlewares are added
	if c.SentryDSN != "" {
		if err = sentry.Init(sentry.ClientOptions{
			Dsn:              c.SentryDSN,
			IgnoreErrors:     []string{"401"},
			EnableTracing:    c.SentryTracesSampleRate > 0,
			TracesSampleRate: c.SentryTracesSampleRate,
		}); err != nil {
			logger.Errorf("sentry init error: %v", err)
		}
	}

	// Init the LND client from the configured connection string
	lnCfg, err := lnd.LoadConfig()
	if err != nil {
		logger.Fatalf("Error loading LND config: %v", err)
	}
	lndClient, err := lnd.NewClient(lnCfg, logger)
	if err != nil {
		logger.Fatalf("Error initializing the LND connection: %v", err)
	}
	if lndClient.IsDemo() {
		logger.Warn("Demo LND connection string configured: invoices will be fabricated and settlement can not be verified")
	}

	svc := &service.SatstackerService{
		Config:      c,
		DB:          dbConn,
		LndClient:   lndClient,
		LnurlClient: lnurl.NewClient(),
		Logger:      logger,
		ZapPubSub:   service.NewPubsub(),
		WalletPay:   wallet.Pay,
	}

	//init echo server
	e := initEcho(c, logger)

	logMw := createLoggingMiddleware(logger)
	// strict rate limit for requests that move money
	strictRateLimitMiddleware := createRateLimitMiddleware(c.StrictRateLimit, c.BurstRateLimit)

	secured := e.Group("", tokens.Middleware(c.JWTSecret), logMw)
	securedWithStrictRateLimit := e.Group("", tokens.Middleware(c.JWTSecret), strictRateLimitMiddleware, logMw)

	RegisterEndpoints(svc, e, secured, securedWithStrictRateLimit, strictRateLimitMiddleware, tokens.AdminTokenMiddleware(c.AdminToken), logMw)

	var backgroundWg sync.WaitGroup
	backGroundCtx, _ := signal.NotifyContext(context.Background(), os.Interrupt)

	// Settle or expire pending zaps in the background
	backgroundWg.Add(1)
	go func() {
		err = svc.StartZapSweepRoutine(backGroundCtx)
		if err != nil {
			sentry.CaptureException(err)
			svc.Logger.Error(err)
		}
		svc.Logger.Info("Zap sweep routine done")
		backgroundWg.Done()
	}()

	// Start server
	go func() {
		if err := e.Start(fmt.Sprintf(":%v", c.Port)); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	<-backGroundCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
	//Wait for graceful shutdown of background routines
	backgroundWg.Wait()
	svc.Logger.Info("Satstacker exiting gracefully. Goodbye.")
}
