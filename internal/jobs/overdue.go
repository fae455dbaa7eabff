// Package jobs runs the periodic maintenance tasks of the back office.
package jobs

import (
	"context"
	"time"

	"github.com/diewo77/go-backoffice/internal/config"
	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/schedule"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OverdueJob flags pending invoice installments whose due date has passed.
// It only changes line statuses: amount paid and invoice status stay as they are.
type OverdueJob struct {
	db  *gorm.DB
	log logrus.FieldLogger
	now func() time.Time
}

func NewOverdueJob(db *gorm.DB, log logrus.FieldLogger) *OverdueJob {
	return &OverdueJob{db: db, log: log, now: time.Now}
}

// MarkOverdue updates every pending installment due before today and returns
// how many rows changed.
func (j *OverdueJob) MarkOverdue(ctx context.Context) (int64, error) {
	today := models.DateOnly(j.now())
	res := j.db.WithContext(ctx).
		Model(&models.InvoiceScheduleLine{}).
		Where("status = ? AND date < ?", schedule.LineStatusPending, today).
		Update("status", schedule.LineStatusOverdue)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Run is the cron entry point.
func (j *OverdueJob) Run() {
	start := time.Now()
	n, err := j.MarkOverdue(context.Background())
	if err != nil {
		config.LogError(j.log, "jobs", "MarkOverdue", nil, err)
		return
	}
	j.log.WithFields(logrus.Fields{"lines": n, "duration": time.Since(start).String()}).Info("overdue installments marked")
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron *cron.Cron
	log  logrus.FieldLogger
}

// NewScheduler registers the overdue job on a standard five-field cron expression.
// An empty expression leaves the scheduler without entries.
func NewScheduler(spec string, job *OverdueJob, log logrus.FieldLogger) (*Scheduler, error) {
	c := cron.New()
	if spec != "" {
		if _, err := c.AddJob(spec, job); err != nil {
			return nil, err
		}
	}
	return &Scheduler{cron: c, log: log}, nil
}

// Entries reports the number of registered jobs.
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.WithField("jobs", s.Entries()).Info("job scheduler started")
}

// Stop waits for running jobs or ctx, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("job scheduler stop timed out")
	}
}
