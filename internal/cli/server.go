package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"leadgen-service/internal/app"
	"leadgen-service/internal/config"
	"leadgen-service/internal/infra/email"
	"leadgen-service/internal/infra/memory"
	pgcontent "leadgen-service/internal/infra/postgres"
	redisinfra "leadgen-service/internal/infra/redis"
	"leadgen-service/internal/logging"
	transport "leadgen-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if portFlag != "" {
		cfg.Server.Port = portFlag
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, cleanup, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	router, err := newRouter(cfg, d, logger)
	if err != nil {
		return err
	}

	if _, err := d.content.Reload(ctx); err != nil {
		// The site still serves submissions without marketing content.
		logger.Error("initial content load failed", zap.Error(err))
	}

	if every := config.TTLDuration(cfg.Content.RefreshInterval, 0); every > 0 {
		go refreshContent(ctx, d.content, every, logger)
	}

	dispatcherDone := make(chan error, 1)
	go func() {
		dispatcherDone <- d.dispatcher.Run(ctx)
	}()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting leadgen service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stop()
			<-dispatcherDone
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := server.Shutdown(shutdownCtx)
	stop()
	if err := <-dispatcherDone; err != nil {
		logger.Warn("dispatcher stopped with error", zap.Error(err))
	}
	return shutdownErr
}

// refreshContent reloads content on a fixed interval until ctx is done.
func refreshContent(ctx context.Context, content *app.ContentService, every time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := content.Reload(ctx); err != nil {
				logger.Warn("content refresh failed", zap.Error(err))
			}
		}
	}
}

type deps struct {
	submissions *app.SubmissionService
	content     *app.ContentService
	dispatcher  *app.Dispatcher
	limiter     transport.Limiter
}

// buildDeps picks Redis and Postgres backed adapters when configured and
// falls back to in-process ones otherwise.
func buildDeps(ctx context.Context, cfg config.Config, logger *zap.Logger) (*deps, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	var loader app.ContentLoader
	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			cleanup()
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		ttl := config.TTLDuration(cfg.Content.CacheTTL, 5*time.Minute)
		if redisClient != nil {
			loader = redisinfra.NewContentCache(redisClient, pgcontent.NewContentLoader(pool), ttl)
		} else {
			loader = memory.NewCachedContentLoader(pgcontent.NewContentLoader(pool), ttl)
		}
	case cfg.Content.Path != "":
		loader = memory.NewFileContentLoader(cfg.Content.Path)
	default:
		loader = memory.NewStaticContentLoader(memory.SampleContent())
	}

	var (
		queue   app.NotificationQueue
		limiter transport.Limiter
	)
	if redisClient != nil {
		queue = redisinfra.NewNotificationQueue(redisClient, cfg.Notifications.QueueKey)
		limiter = redisinfra.NewRateLimiter(redisClient, cfg.RateLimit.RequestsPerMinute)
	} else {
		queue = memory.NewNotificationQueue(cfg.Notifications.QueueSize)
		limiter = memory.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}

	notifier, err := buildNotifier(cfg.Email, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	loc, err := cfg.Booking.Location()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	store := memory.NewRecordStore()
	return &deps{
		submissions: app.NewSubmissionService(store, queue, logger.Named("submissions"), app.WithLocation(loc)),
		content:     app.NewContentService(store, loader, logger.Named("content")),
		dispatcher:  app.NewDispatcher(queue, notifier, cfg.Notifications.Workers, logger.Named("dispatcher")),
		limiter:     limiter,
	}, cleanup, nil
}

func buildNotifier(cfg config.Email, logger *zap.Logger) (*email.Notifier, error) {
	renderer, err := email.NewRenderer(cfg.SiteName)
	if err != nil {
		return nil, err
	}
	var sender email.Sender
	switch {
	case cfg.Provider == "log", cfg.Provider == "" && cfg.APIKey == "":
		logger.Warn("no email provider configured, notifications will be logged")
		sender = email.NewLogSender(logger.Named("email"))
	case cfg.Provider == "sendgrid", cfg.Provider == "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("email provider sendgrid requires an api key")
		}
		sender = email.NewSendGridSender(cfg.APIKey)
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
	return email.NewNotifier(renderer, sender, cfg.From, cfg.To, logger.Named("email")), nil
}

func newRouter(cfg config.Config, d *deps, logger *zap.Logger) (http.Handler, error) {
	proxies, err := transport.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()

	api := transport.NewAPIHandler(d.submissions, d.content, logger.Named("api"),
		transport.WithAdminToken(cfg.Admin.Token),
		transport.WithServiceName(cfg.Email.SiteName))
	api.Register(mux, transport.RateLimit(d.limiter, proxies, logger))

	ws := transport.NewWSHandler(d.submissions, logger.Named("ws"))
	mux.HandleFunc("GET /ws/assessment", ws.ServeAssessment)
	mux.HandleFunc("GET /ws/booking", ws.ServeBooking)

	if dir := cfg.Server.StaticDir; dir != "" {
		if _, err := os.Stat(dir); err == nil {
			mux.Handle("GET /", http.FileServer(http.Dir(dir)))
		} else {
			logger.Warn("static directory not found", zap.String("dir", dir))
		}
	}

	return transport.Chain(mux,
		transport.RequestID(),
		transport.AccessLog(logger.Named("http")),
		transport.SecureHeaders(),
		transport.CORS(cfg.Server.AllowedOrigins),
	), nil
}
