// Package db opens the database, applies the schema and seeds reference data.
package db

import (
	"fmt"
	"time"

	"github.com/diewo77/go-backoffice/internal/config"
	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 5

// Open connects using the configured driver. Postgres connections are
// retried to let the database container start.
func Open(cfg config.DatabaseConfig, log logrus.FieldLogger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	if cfg.Driver == "sqlite" {
		log.WithField("path", cfg.Path).Info("opening sqlite database")
		return gorm.Open(sqlite.Open(cfg.Path), gcfg)
	}

	log.WithFields(logrus.Fields{
		"host": cfg.Host, "port": cfg.Port, "dbname": cfg.DBName, "user": cfg.User,
	}).Info("connecting to database")

	var (
		conn *gorm.DB
		err  error
	)
	for i := 1; i <= connectAttempts; i++ {
		conn, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
		if err == nil {
			break
		}
		log.WithError(err).Warnf("database connection attempt %d/%d failed", i, connectAttempts)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return conn, nil
}

// Models lists every persisted model, in dependency order.
func Models() []any {
	return []any{
		&models.Organization{},
		&models.User{},
		&models.BankAccount{},
		&models.Invoice{},
		&models.Quote{},
		&models.InvoiceScheduleLine{},
		&models.QuoteScheduleLine{},
		&models.PaymentConditionTemplate{},
	}
}

// Migrate applies the schema with GORM AutoMigrate.
func Migrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}
