package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr        string // API bind address, e.g. "127.0.0.1:8080" or ":8080"
	LogDir      string // logs directory
	DatabaseURL string // postgres DSN; empty means in-memory stores

	PublicAPIKeys []string
	AdminAPIKeys  []string
	PublicRPM     int
	PublicBurst   int

	ProbeTimeout  time.Duration // per-check HTTP timeout
	PageSize      int           // active endpoints fetched per page
	PagePause     time.Duration // pause between pages in async mode
	Workers       int           // monitoring queue worker count
	CycleInterval time.Duration // cadence of recurring cycles; 0 disables
	CycleMode     string        // "sync" or "async"
	AlertWindow   time.Duration // suppression window per endpoint/recipient

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	AlertFrom    string
	SlackWebhook string
}

func FromEnv() Config {
	cfg := Config{
		Addr:          envStr("ADDR", "127.0.0.1:8080"),
		LogDir:        envStr("LOG_DIR", "logs"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		PublicAPIKeys: splitCSV(os.Getenv("PUBLIC_API_KEYS")),
		AdminAPIKeys:  splitCSV(os.Getenv("ADMIN_API_KEYS")),
		PublicRPM:     envInt("PUBLIC_RPM", 120),
		PublicBurst:   envInt("PUBLIC_BURST", 60),
		ProbeTimeout:  envMS("PROBE_TIMEOUT_MS", 8000),
		PageSize:      envInt("PAGE_SIZE", 500),
		PagePause:     envMS("PAGE_PAUSE_MS", 1000),
		Workers:       envInt("WORKERS", 8),
		CycleInterval: envMS("CYCLE_INTERVAL_MS", 5000),
		CycleMode:     envStr("CYCLE_MODE", "async"),
		AlertWindow:   envMS("ALERT_WINDOW_MS", 3_600_000),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      envInt("SMTP_PORT", 587),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		AlertFrom:     os.Getenv("ALERT_FROM"),
		SlackWebhook:  os.Getenv("SLACK_WEBHOOK"),
	}
	return cfg
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envMS(key string, defMS int) time.Duration {
	return time.Duration(envInt(key, defMS)) * time.Millisecond
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
