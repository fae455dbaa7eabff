package db

import (
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/diewo77/go-backoffice/internal/config"
	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestMigrateCreatesTables(t *testing.T) {
	d := openTestDB(t)
	if err := Migrate(d); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	for _, table := range []string{"organizations", "users", "bank_accounts", "invoices", "quotes",
		"invoice_payment_schedules", "quote_payment_schedules", "payment_condition_templates"} {
		if !d.Migrator().HasTable(table) {
			t.Errorf("missing table %s", table)
		}
	}
	if d.Migrator().HasColumn(&models.QuoteScheduleLine{}, "status") {
		t.Error("quote schedule lines must not have a status column")
	}
	if !d.Migrator().HasColumn(&models.InvoiceScheduleLine{}, "status") {
		t.Error("invoice schedule lines need a status column")
	}
}

func TestSeedIdempotent(t *testing.T) {
	d := openTestDB(t)
	if err := Migrate(d); err != nil {
		t.Fatal(err)
	}
	if err := Seed(d); err != nil {
		t.Fatal(err)
	}
	if err := Seed(d); err != nil {
		t.Fatal(err)
	}
	var count int64
	d.Model(&models.PaymentConditionTemplate{}).Where("is_system = ?", true).Count(&count)
	if int(count) != len(SystemTemplates()) {
		t.Fatalf("expected %d system templates, got %d", len(SystemTemplates()), count)
	}
	var c int64
	d.Model(&models.PaymentConditionTemplate{}).Where("name = ?", "Paiement à réception").Count(&c)
	if c != 1 {
		t.Fatalf("baseline template duplicated or missing: %d", c)
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatal(err)
	}
	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Fatalf("expected paired migrations, got %d up / %d down", ups, downs)
	}
	body, _ := fs.ReadFile(migrationsFS, "migrations/000001_init.up.sql")
	for _, table := range []string{"invoice_payment_schedules", "quote_payment_schedules", "payment_condition_templates"} {
		if !strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("init migration does not create %s", table)
		}
	}
}

func TestOpenSQLite(t *testing.T) {
	logger, hook := test.NewNullLogger()
	cfg := config.DatabaseConfig{Driver: "sqlite", Path: "file:" + t.Name() + "?mode=memory&cache=shared"}
	d, err := Open(cfg, logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := d.Exec("SELECT 1").Error; err != nil {
		t.Fatalf("ping: %v", err)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Level != logrus.InfoLevel {
		t.Fatal("expected an info log entry")
	}
}
