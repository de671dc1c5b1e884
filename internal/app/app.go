// Package app wires configuration, storage, collaborator clients and the HTTP
// server into a running checkout service.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	sdkapp "github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/microshop/checkout-service/internal/checkout"
	"github.com/microshop/checkout-service/internal/client"
	"github.com/microshop/checkout-service/internal/fake"
	"github.com/microshop/checkout-service/internal/handler"
	"github.com/microshop/checkout-service/internal/repository"
	"github.com/microshop/checkout-service/pkg/health"
	"github.com/microshop/checkout-service/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the service.
func Run(ctx context.Context, lg *zap.Logger, m *sdkapp.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr), zap.Bool("demo", cfg.Demo.Enabled))

	g, ctx := errgroup.WithContext(ctx)
	healthSvc := health.New()

	// Embedded collaborators for demo mode; real addresses otherwise.
	collab := cfg.Collaborators
	if cfg.Demo.Enabled {
		stack, err := buildDemoStack(cfg.Demo)
		if err != nil {
			return err
		}
		g.Go(func() error { return stack.Run(ctx) })

		addr := stack.Addr()
		collab.CartAddr, collab.CatalogAddr = addr, addr
		collab.ShippingAddr, collab.PaymentAddr = addr, addr
		lg.Info("Embedded collaborators listening", zap.String("addr", addr))
	}

	// Order storage: PostgreSQL when configured, in-memory otherwise (demo
	// mode only, enforced by config validation).
	var orders checkout.OrderStore
	if cfg.DatabaseURL != "" {
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := repository.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		orders = repository.NewOrderRepository(pool)
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(pool))
	} else {
		orders = fake.NewOrderStore()
	}

	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10_000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Collaborator clients share one instrumented HTTP client.
	hc := client.NewHTTPClient(collab.Timeout,
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)
	svc := checkout.NewService(
		client.NewCart(collab.CartAddr, hc),
		client.NewCatalog(collab.CatalogAddr, hc),
		client.NewShipping(collab.ShippingAddr, hc),
		client.NewPayment(collab.PaymentAddr, hc),
		orders,
	)

	r := chi.NewRouter()
	handler.NewHandler(svc).Register(r)
	r.Get("/livez", healthSvc.LiveEndpoint)
	r.Get("/readyz", healthSvc.ReadyEndpoint)

	instrument, err := httpmiddleware.Instrument(m.MeterProvider().Meter("checkout-server"))
	if err != nil {
		return errors.Wrap(err, "create metrics middleware")
	}

	handlerChain := httpmiddleware.Wrap(r,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins: cfg.CORS.Origins,
			MaxAge:       86400,
		}),
		httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		instrument,
		httpmiddleware.LogRequests(),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(handlerChain, "checkout-server",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	}

	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		// Drain: flip readiness first so load balancers stop sending traffic,
		// wait out the propagation delay, then shut the listener down.
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})

	return g.Wait()
}

func buildDemoStack(cfg DemoConfig) (*fake.Stack, error) {
	catalog := fake.DefaultCatalog()
	if cfg.CatalogFile != "" {
		var err error
		catalog, err = fake.LoadCatalog(cfg.CatalogFile)
		if err != nil {
			return nil, errors.Wrap(err, "load catalog")
		}
	}

	stack := fake.NewStack(fake.NewCart(), catalog, fake.NewShipping(), fake.NewPayment())
	if err := stack.Listen(cfg.ListenAddr); err != nil {
		return nil, errors.Wrap(err, "listen for collaborators")
	}
	return stack, nil
}
