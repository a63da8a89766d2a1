// beacon-monitor runs a single monitoring cycle and exits. The exit code
// reflects whether the cycle was dispatched, not whether individual checks
// passed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/openwatch/beacon/internal/alert"
	"github.com/openwatch/beacon/internal/config"
	"github.com/openwatch/beacon/internal/domain"
	"github.com/openwatch/beacon/internal/logging"
	"github.com/openwatch/beacon/internal/monitor"
	"github.com/openwatch/beacon/internal/notify"
	"github.com/openwatch/beacon/internal/probe"
	"github.com/openwatch/beacon/internal/repo/postgres"
)

func main() {
	mode := flag.String("mode", string(monitor.ModeAsync), "execution mode: sync or async")
	client := flag.String("client", "", "restrict the cycle to one client ID")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.FromEnv()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for a one-shot cycle")
	}

	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx := context.Background()
	store, err := postgres.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

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
		logger, store, store, store,
		probe.NewHTTPChecker(cfg.ProbeTimeout),
		alert.NewGate(cfg.AlertWindow),
		notifier,
		cfg.ProbeTimeout,
	)
	pool := monitor.NewPool(cfg.Workers, cfg.Workers*4)
	defer pool.Stop()

	disp := monitor.NewDispatcher(logger, store, orch, pool)
	if cfg.PageSize > 0 {
		disp.PageSize = cfg.PageSize
	}
	disp.PagePause = cfg.PagePause

	if err := disp.RunCycle(ctx, monitor.Mode(*mode), domain.ClientID(*client)); err != nil {
		fmt.Fprintln(os.Stderr, "dispatch failed:", err)
		os.Exit(1)
	}
	disp.Wait()
	fmt.Println("cycle complete")
}
