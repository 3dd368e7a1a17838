package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appcart "github.com/Zhima-Mochi/minishop-storefront/internal/application/cart"
	appcatalog "github.com/Zhima-Mochi/minishop-storefront/internal/application/catalog"
	appmail "github.com/Zhima-Mochi/minishop-storefront/internal/application/mail"
	appnotification "github.com/Zhima-Mochi/minishop-storefront/internal/application/notification"
	apporder "github.com/Zhima-Mochi/minishop-storefront/internal/application/order"
	apppayment "github.com/Zhima-Mochi/minishop-storefront/internal/application/payment"
	appreport "github.com/Zhima-Mochi/minishop-storefront/internal/application/report"
	appreview "github.com/Zhima-Mochi/minishop-storefront/internal/application/review"
	appsupport "github.com/Zhima-Mochi/minishop-storefront/internal/application/support"
	appuser "github.com/Zhima-Mochi/minishop-storefront/internal/application/user"
	"github.com/Zhima-Mochi/minishop-storefront/internal/config"
	domcart "github.com/Zhima-Mochi/minishop-storefront/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	dommail "github.com/Zhima-Mochi/minishop-storefront/internal/domain/mail"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/discord"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/mail"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/payment"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/redisstore"
	"github.com/Zhima-Mochi/minishop-storefront/internal/infrastructure/security"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	httppresentation "github.com/Zhima-Mochi/minishop-storefront/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/minishop-storefront/internal/presentation/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	baseLogger, err := zaplogger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = baseLogger.Sync() }()
	systemLogger := baseLogger.WithTrace(zaplogger.SystemTraceID, zaplogger.SystemSpanID)

	counters, histograms := prometrics.Standard(prometrics.New(prometheus.DefaultRegisterer, "minishop", ""))
	tel := infraobs.New(
		infraobs.WithTracer(oteltrace.New(cfg.ServiceName)),
		infraobs.WithLogger(baseLogger),
		infraobs.WithMetrics(counters, histograms),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := outbox.NewBus(tel)
	bus.Start(ctx)

	products := memory.NewProductRepository(domcatalog.Seed())
	users := memory.NewUserRepository()
	orders := memory.NewOrderRepository()
	reviews := memory.NewReviewRepository()
	ids := id.UUIDGenerator{}

	carts, closeCarts, err := newCartStore(ctx, cfg.Cart, systemLogger)
	if err != nil {
		return err
	}
	defer closeCarts()

	catalogSvc := appcatalog.NewService(products, bus, tel)
	createOrder := apporder.NewCreateOrderUseCase(apporder.Deps{
		Orders:    orders,
		Products:  products,
		Users:     users,
		Payments:  apppayment.NewChargeUseCase(payment.NewStubGateway(cfg.PaymentDelay), tel),
		IDs:       ids,
		Numbers:   id.NewOrderNumbers(),
		Publisher: bus,
	}, cfg.ShippingCost, tel)

	svc := httppresentation.Services{
		Catalog:     catalogSvc,
		AdjustStock: appcatalog.NewAdjustStockUseCase(catalogSvc),
		Users:       appuser.NewService(users, security.NewBcryptHasher(cfg.BcryptCost), ids, bus, tel),
		CreateOrder: createOrder,
		Orders:      apporder.NewService(orders, users, bus, tel),
		Carts:       appcart.NewService(carts, products, users, createOrder, cfg.ShippingCost, tel),
		Reviews:     appreview.NewService(reviews, products, ids, bus, tel),
		Support:     appsupport.NewSubmitUseCase(bus, tel),
		DailyReport: appreport.NewDailyUseCase(orders, users, bus, cfg.Location, tel),
		Publisher:   bus,
	}

	webhook := discord.NewClient(discord.Config{
		URL:            cfg.Discord.WebhookURL,
		MaxAttempts:    cfg.Discord.MaxAttempts,
		AttemptTimeout: cfg.Discord.Timeout,
		RatePerSecond:  cfg.Discord.RatePerSecond,
		Burst:          cfg.Discord.Burst,
	}, &http.Client{}, tel)
	if !webhook.Enabled() {
		systemLogger.Warn("discord_webhook_disabled")
	}
	workerpresentation.Mount(bus, tel, "notification_worker",
		appnotification.NewWorker(appnotification.NewRenderer(cfg.Location), webhook, tel))
	workerpresentation.Mount(bus, tel, "mail_worker",
		appmail.NewWorker(newMailer(cfg.SMTP, baseLogger, systemLogger), tel))

	handler := httppresentation.NewHandler(svc, httppresentation.Options{
		RateLimit: cfg.RateLimitRPS,
		Burst:     cfg.RateLimitBurst,
		Location:  cfg.Location,
		Metrics:   promhttp.Handler(),
	}, tel)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.Router(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		systemLogger.Info("http_server_start", observability.F("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			systemLogger.Error("http_server_shutdown_error", observability.F("error", err))
			errs = append(errs, err)
		} else {
			systemLogger.Info("http_server_stopped")
		}
		// The bus stops after the server so in-flight requests can still publish.
		if err := bus.Stop(shutdownCtx); err != nil {
			systemLogger.Error("event_bus_stop_error", observability.F("error", err))
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}

func newCartStore(ctx context.Context, cfg config.Cart, log observability.Logger) (domcart.Store, func(), error) {
	if cfg.Backend != "redis" {
		return memory.NewCartStore(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis cart store: %w", err)
	}
	log.Info("cart_store_redis", observability.F("addr", cfg.RedisAddr))
	return redisstore.NewCartStore(client, cfg.TTL), func() { _ = client.Close() }, nil
}

func newMailer(cfg config.SMTP, base, log observability.Logger) dommail.Sender {
	if cfg.Host == "" {
		log.Warn("smtp_disabled_logging_mail")
		return mail.NewLogSender(base)
	}
	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
	})
	if err != nil {
		log.Warn("smtp_config_invalid", observability.F("error", err))
		return mail.NewLogSender(base)
	}
	return sender
}
