package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"go.uber.org/zap"

	"teamaccess/internal/app/config"
	httpapi "teamaccess/internal/app/http"
	"teamaccess/internal/app/http/handler"
	"teamaccess/internal/domain/permission"
	"teamaccess/internal/domain/team"
	"teamaccess/internal/domain/teamview"
	"teamaccess/internal/domain/template"
	"teamaccess/internal/infrastructure/async"
	"teamaccess/internal/infrastructure/auth"
	"teamaccess/internal/infrastructure/cache"
	"teamaccess/internal/infrastructure/db/pg"
	"teamaccess/internal/infrastructure/kafka"
	"teamaccess/internal/infrastructure/logging"
	"teamaccess/internal/infrastructure/metrics"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flags := pflag.NewFlagSet("teamaccess", pflag.ExitOnError)
	envFile := flags.String("env-file", ".env", "optional dotenv file read before the environment")
	migrateOnly := flags.Bool("migrate-only", false, "apply database migrations and exit")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(err)
	}

	log, err := logging.NewLogger()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db open error", zap.Error(err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("db ping error", zap.Error(err))
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("goose dialect error", zap.Error(err))
	}
	if err := goose.Up(db, cfg.MigrationsDir); err != nil {
		log.Fatal("goose up error", zap.Error(err))
	}
	if *migrateOnly {
		log.Info("migrations applied", zap.String("dir", cfg.MigrationsDir))
		return
	}

	var sinks []async.Sink
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		pub := kafka.NewPublisher(brokers, cfg.KafkaTopic)
		defer pub.Close()
		sinks = append(sinks, pub)
		log.Info("kafka event export enabled", zap.Strings("brokers", brokers), zap.String("topic", cfg.KafkaTopic))
	}

	eventBus := async.NewAsyncEventBus(ctx, cfg.EventWorkers, cfg.EventQueue, 2*time.Second, log, sinks...)
	defer eventBus.Close()

	var rosterCache team.SnapshotCache
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRosterCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RosterCacheTTL, log)
		if err != nil {
			log.Fatal("redis connect error", zap.Error(err))
		}
		defer rc.Close()
		rosterCache = rc
		log.Info("roster cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	uow := pg.NewTxManager(db)

	teamRepo := pg.NewTeamRepository(db)
	roleRepo := pg.NewTeamRoleRepository(db)
	templateRepo := pg.NewTemplateRepository(db)

	m := metrics.New(prometheus.DefaultRegisterer)

	teamSvc := team.NewService(pg.NewSnapshotReader(db), teamRepo, rosterCache, cfg.StoreTimeout)
	permSvc := permission.NewService(uow, roleRepo, eventBus, cfg.StoreTimeout)
	templateSvc := template.NewService(templateRepo, teamSvc, eventBus)
	views := teamview.NewRegistry(teamSvc, permSvc, async.NewEventNotifier(eventBus), m, log, cfg.MaxTeamViews)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer)

	h := handler.New(views, templateSvc, log)
	router := httpapi.NewRouter(h, tokens, m, log)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
