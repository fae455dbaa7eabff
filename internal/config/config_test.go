package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected postgres driver, got %s", cfg.Database.Driver)
	}
	if cfg.Redis.Enabled() {
		t.Error("redis should be disabled without REDIS_ADDRESS")
	}
	if cfg.Jobs.OverdueCron != "0 2 * * *" {
		t.Errorf("unexpected overdue cron %q", cfg.Jobs.OverdueCron)
	}
	if cfg.Redis.LockTTL != 30*time.Second {
		t.Errorf("unexpected lock ttl %s", cfg.Redis.LockTTL)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("MIGRATIONS", "yes")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("SCHEDULE_LOCK_WAIT", "250ms")
	t.Setenv("OVERDUE_CRON", "")
	t.Setenv("DB_PORT", "not-a-number")

	cfg := Load()
	if cfg.Server.Port != "9090" || cfg.Database.Driver != "sqlite" || !cfg.App.Migrations {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if !cfg.Redis.Enabled() || cfg.Redis.LockWait != 250*time.Millisecond {
		t.Fatalf("redis config not applied: %+v", cfg.Redis)
	}
	if cfg.Jobs.OverdueCron != "" {
		t.Fatalf("empty OVERDUE_CRON should disable the job, got %q", cfg.Jobs.OverdueCron)
	}
	if cfg.Database.Port != 5432 {
		t.Fatalf("invalid DB_PORT should fall back to default, got %d", cfg.Database.Port)
	}
}

func TestDatabaseConfig_DSNAndURL(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	if got := d.DSN(); got != "host=db port=5433 user=u password=p dbname=n sslmode=disable" {
		t.Errorf("DSN() = %q", got)
	}
	if got := d.URL(); got != "postgres://u:p@db:5433/n?sslmode=disable" {
		t.Errorf("URL() = %q", got)
	}
}

func TestNewLogger_JSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{App: AppConfig{Dev: false, LogLevel: "warn"}}
	logger := newLogger(cfg, &buf)

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %s", buf.String())
	}
	LogError(logger, "services", "Save", logrus.Fields{"invoice_id": 3}, errors.New("boom"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "boom" || entry["module"] != "services" || entry["invoice_id"] != float64(3) {
		t.Fatalf("unexpected entry %v", entry)
	}
}
