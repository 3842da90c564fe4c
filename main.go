package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sports-platform/internal"
	"sports-platform/internal/audit"
	"sports-platform/internal/auth"
	"sports-platform/internal/cache"
	"sports-platform/internal/config"
	"sports-platform/internal/logging"
	"sports-platform/internal/metrics"
	"sports-platform/internal/notify"
	"sports-platform/internal/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := internal.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("store")
	}
	defer func() { _ = st.Close(context.Background()) }()

	if err := internal.BootstrapAdmin(ctx, st, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword, log); err != nil {
		log.Fatal().Err(err).Msg("bootstrap admin")
	}

	d := &internal.Deps{
		Store:       st,
		Tokens:      auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL, cfg.RefreshGrace),
		CacheTTL:    cfg.CacheTTL,
		Metrics:     metrics.New(),
		Log:         log,
		UploadDir:   cfg.UploadDir,
		CORSOrigins: cfg.CORSOrigins,
	}

	// audit
	var auditRec audit.Recorder = audit.NewMemory(5000)
	if cfg.AuditDSN != "" {
		pg, err := audit.Open(cfg.AuditDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("audit db")
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("audit migrate")
		}
		auditRec = pg
		log.Info().Msg("audit log on postgres")
	}
	d.Audit = auditRec
	pruner := audit.NewPruner(auditRec, cfg.AuditRetention, log)
	if err := pruner.Start(cfg.AuditPruneCron); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.AuditPruneCron).Msg("audit pruner")
	}
	defer pruner.Stop()

	// cache
	c, closeCache := openCache(ctx, cfg, log)
	defer closeCache()
	d.Cache = c

	// events
	d.Events = notify.Nop{}
	if cfg.AMQPURL != "" {
		pub, err := notify.NewRabbit(cfg.AMQPURL, cfg.AMQPExchange, log)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq unavailable, events disabled")
		} else {
			d.Events = pub
			defer pub.Close()
		}
	}

	// tracing
	shutdownTracing, enabled, err := tracing.Setup(ctx, cfg.OTelEndpoint, "sports-platform")
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
	}
	d.Tracing = enabled
	defer func() { _ = shutdownTracing(context.Background()) }()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           internal.NewRouter(d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// openCache returns the redis cache when it is configured and reachable,
// otherwise a cache that stores nothing.
func openCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		return cache.Nop{}, func() {}
	}
	rc := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pctx); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, caching disabled")
		_ = rc.Close()
		return cache.Nop{}, func() {}
	}
	return rc, func() { _ = rc.Close() }
}
