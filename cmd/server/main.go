package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-backoffice/auth"
	"github.com/diewo77/go-backoffice/internal/config"
	"github.com/diewo77/go-backoffice/internal/db"
	"github.com/diewo77/go-backoffice/internal/jobs"
	"github.com/diewo77/go-backoffice/internal/lock"
	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	logger := config.NewLogger(cfg)

	dbConn, err := db.Open(cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}

	if *migrateOnlyFlag {
		if err := migrate(cfg, dbConn); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
		logger.Info("migrations completed")
		return
	}
	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			logger.WithError(err).Fatal("seeding failed")
		}
		logger.Info("seeding completed")
		return
	}

	if err := migrate(cfg, dbConn); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}
	if cfg.App.Seed {
		if err := db.Seed(dbConn); err != nil {
			logger.WithError(err).Fatal("seeding failed")
		}
	}

	if cfg.Auth.Secret != "" {
		auth.SetSecret(cfg.Auth.Secret)
	} else if !cfg.App.Dev {
		logger.Warn("SESSION_SECRET is not set; using the development secret")
	}
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		dbConn.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Count(&count)
		return count > 0
	})

	locker, closeLocker := newLocker(cfg.Redis, logger)
	defer closeLocker()

	app := NewApp(dbConn, logger, Options{
		Locker:       locker,
		TokenTTL:     cfg.Auth.TokenTTL,
		OrgLookupTTL: cfg.Auth.OrgLookupTTL,
		LockTTL:      cfg.Redis.LockTTL,
		LockWait:     cfg.Redis.LockWait,
	})

	scheduler, err := jobs.NewScheduler(cfg.Jobs.OverdueCron, jobs.NewOverdueJob(dbConn, logger), logger)
	if err != nil {
		logger.WithError(err).WithField("spec", cfg.Jobs.OverdueCron).Fatal("invalid OVERDUE_CRON")
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Server.Port, "dev": cfg.App.Dev}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("error during shutdown")
	}
	scheduler.Stop(ctx)
	logger.Info("server stopped gracefully")
}

// migrate applies the embedded SQL migrations when MIGRATIONS=1 on
// PostgreSQL, and GORM AutoMigrate otherwise.
func migrate(cfg *config.Config, conn *gorm.DB) error {
	if cfg.App.Migrations && cfg.Database.Driver != "sqlite" {
		return db.MigrateSQL(cfg.Database.URL())
	}
	return db.Migrate(conn)
}

// newLocker returns a Redis-backed locker when REDIS_ADDRESS is set and an
// in-process one otherwise.
func newLocker(cfg config.RedisConfig, logger logrus.FieldLogger) (lock.Locker, func()) {
	if !cfg.Enabled() {
		logger.Info("schedule lock: in-process")
		return lock.NewLocalLocker(), func() {}
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).WithField("address", cfg.Address).Fatal("redis unreachable")
	}
	logger.WithField("address", cfg.Address).Info("schedule lock: redis")
	return lock.NewRedisLocker(rdb), func() { _ = rdb.Close() }
}
