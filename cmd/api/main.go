package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/openwatch/beacon/internal/alert"
	"github.com/openwatch/beacon/internal/config"
	"github.com/openwatch/beacon/internal/httpapi"
	apimw "github.com/openwatch/beacon/internal/httpapi/middleware"
	"github.com/openwatch/beacon/internal/logging"
	"github.com/openwatch/beacon/internal/monitor"
	"github.com/openwatch/beacon/internal/notify"
	"github.com/openwatch/beacon/internal/probe"
	"github.com/openwatch/beacon/internal/repo"
	"github.com/openwatch/beacon/internal/repo/memory"
	"github.com/openwatch/beacon/internal/repo/postgres"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var (
		clients   repo.ClientStore
		endpoints repo.EndpointStore
		results   repo.ResultStore
	)
	if cfg.DatabaseURL != "" {
		store, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			log.Fatal(err)
		}
		defer store.Close()
		clients, endpoints, results = store, store, store
	} else {
		store := memory.New()
		if err := store.Seed(ctx); err != nil {
			log.Fatal(err)
		}
		logger.Info("using_memory_store")
		clients, endpoints, results = store, store, store
	}

	mailer, err := notify.NewMailer(notify.MailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.AlertFrom,
	})
	if err != nil {
		log.Fatal(err)
	}
	notifier := notify.Multi{}
	if mailer != nil {
		notifier = append(notifier, mailer)
	}
	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		notifier = append(notifier, slack)
	}

	orch := monitor.NewOrchestrator(
		logger, clients, endpoints, results,
		probe.NewHTTPChecker(cfg.ProbeTimeout),
		alert.NewGate(cfg.AlertWindow),
		notifier,
		cfg.ProbeTimeout,
	)
	pool := monitor.NewPool(cfg.Workers, cfg.Workers*4)
	defer pool.Stop()

	disp := monitor.NewDispatcher(logger, endpoints, orch, pool)
	if cfg.PageSize > 0 {
		disp.PageSize = cfg.PageSize
	}
	disp.PagePause = cfg.PagePause

	go disp.Run(ctx, cfg.CycleInterval, monitor.Mode(cfg.CycleMode))

	api := httpapi.NewServer(logger, clients, endpoints, results, disp)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, api.Router(keys, cfg.PublicRPM, cfg.PublicBurst)); err != nil {
		log.Fatal(err)
	}
}
