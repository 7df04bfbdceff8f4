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

	"github.com/fassethub/fassethub.go/db"
	"github.com/fassethub/fassethub.go/db/migrations"
	"github.com/fassethub/fassethub.go/flare"
	"github.com/fassethub/fassethub.go/lib/logging"
	"github.com/fassethub/fassethub.go/lib/service"
	"github.com/fassethub/fassethub.go/lib/tokens"
	"github.com/fassethub/fassethub.go/lib/transport"
	"github.com/fassethub/fassethub.go/rabbitmq"
	"github.com/fassethub/fassethub.go/xrpl"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/uptrace/bun/migrate"
	ddEcho "gopkg.in/DataDog/dd-trace-go.v1/contrib/labstack/echo.v4"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

func main() {

	c := &service.Config{}

	// Load configruation from environment variables
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		log.Fatalf("Error loading environment variables: %v", err)
	}

	// Setup logging to STDOUT or a configrued log file
	logger := logging.Logger(c.LogFilePath)

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

	// check the runtime can produce correlation tags before accepting work
	if _, err := service.GenerateCorrelationTag(); err != nil {
		logger.Fatalf("Error generating a correlation tag: %v", err)
	}

	// Init XRPL websocket client
	xrplCfg, err := xrpl.LoadConfig()
	if err != nil {
		logger.Fatalf("Error loading XRPL config: %v", err)
	}
	xrplClient, err := xrpl.Dial(startupCtx, xrplCfg)
	if err != nil {
		logger.Fatalf("Error connecting to the XRP Ledger: %v", err)
	}
	defer xrplClient.Close()
	logger.Infof("Connected to the XRP Ledger: %s", xrplCfg.XRPLWSAddress)

	// Init Flare mint client
	flareCfg, err := flare.LoadConfig()
	if err != nil {
		logger.Fatalf("Error loading Flare config: %v", err)
	}
	flareClient, err := flare.Dial(startupCtx, flareCfg)
	if err != nil {
		logger.Fatalf("Error connecting to Flare: %v", err)
	}
	logger.Infof("Connected to Flare: %s", flareCfg.FlareRPCAddress)

	// If no RABBITMQ_URI was provided we will not attempt to create a client
	// No rabbitmq features will be available in this case.
	var rabbitmqClient rabbitmq.Client
	if c.RabbitMQUri != "" {
		rabbitmqClient, err = rabbitmq.Dial(c.RabbitMQUri,
			rabbitmq.WithLogger(logger),
			rabbitmq.WithInvoiceExchange(c.RabbitMQInvoiceExchange),
		)
		if err != nil {
			logger.Fatal(err)
		}

		// close the connection gently at the end of the runtime
		defer rabbitmqClient.Close()
	}

	svc := &service.FassethubService{
		Config:         c,
		DB:             dbConn,
		XRPLClient:     xrplClient,
		FlareClient:    flareClient,
		Logger:         logger,
		InvoicePubSub:  service.NewPubsub(),
		RabbitMQClient: rabbitmqClient,
	}

	//init echo server
	e := transport.InitEcho(c, logger)
	//if Datadog is configured, add datadog middleware
	if c.DatadogAgentUrl != "" {
		tracer.Start(tracer.WithAgentAddr(c.DatadogAgentUrl))
		defer tracer.Stop()
		e.Use(ddEcho.Middleware(ddEcho.WithServiceName("fassethub.go")))
	}

	logMw := transport.CreateLoggingMiddleware(logger)
	// strict rate limit for requests that create resources
	strictRateLimitMiddleware := transport.CreateRateLimitMiddleware(c.StrictRateLimit, c.BurstRateLimit)

	secured := e.Group("", tokens.Middleware(c.JWTSecret), logMw)
	securedWithStrictRateLimit := e.Group("", tokens.Middleware(c.JWTSecret), strictRateLimitMiddleware, logMw)

	transport.RegisterV2Endpoints(svc, e, secured, securedWithStrictRateLimit, strictRateLimitMiddleware, tokens.AdminTokenMiddleware(c.AdminToken), logMw)

	var backgroundWg sync.WaitGroup
	backGroundCtx, _ := signal.NotifyContext(context.Background(), os.Interrupt)

	// Keep a watcher goroutine per pending invoice
	svc.Monitor = service.NewInvoiceMonitor(backGroundCtx, svc)
	if err := svc.Monitor.Resume(startupCtx); err != nil {
		logger.Fatalf("Error resuming invoice watchers: %v", err)
	}

	// Subscribe to deposit account transactions in the background
	backgroundWg.Add(1)
	go func() {
		err = svc.StartSubscriptionRoutine(backGroundCtx)
		if err != nil {
			sentry.CaptureException(err)
			//we want to restart in case of an error here
			svc.Logger.Fatal(err)
		}
		svc.Logger.Info("Subscription routine done")
		backgroundWg.Done()
	}()

	// Expire stale invoices that have no live watcher
	backgroundWg.Add(1)
	go func() {
		svc.StartExpirySweepRoutine(backGroundCtx)
		svc.Logger.Info("Expiry sweep routine done")
		backgroundWg.Done()
	}()

	// Re-submit mints for paid invoices that are still missing one
	backgroundWg.Add(1)
	go func() {
		svc.StartMintRetryRoutine(backGroundCtx)
		svc.Logger.Info("Mint retry routine done")
		backgroundWg.Done()
	}()

	//Start webhook subscription
	if svc.Config.WebhookUrl != "" {
		backgroundWg.Add(1)
		go func() {
			svc.StartWebhookSubscription(backGroundCtx)
			svc.Logger.Info("Webhook routine done")
			backgroundWg.Done()
		}()
	}
	//Start rabbit publisher
	if svc.RabbitMQClient != nil {
		backgroundWg.Add(1)
		go func() {
			err = svc.RabbitMQClient.StartPublishInvoices(backGroundCtx,
				svc.SubscribeSettledInvoices,
				rabbitmq.EncodeInvoice,
			)
			if err != nil {
				svc.Logger.Error(err)
				sentry.CaptureException(err)
			}

			svc.Logger.Info("Rabbit invoice publisher done")
			backgroundWg.Done()
		}()
	}

	//Start Prometheus server if necessary
	if svc.Config.EnablePrometheus {
		go transport.StartPrometheusEcho(logger, svc, e)
	}

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
	svc.Monitor.Stop()
	//Wait for graceful shutdown of background routines
	backgroundWg.Wait()
	svc.Logger.Info("Fassethub exiting gracefully. Goodbye.")
}
