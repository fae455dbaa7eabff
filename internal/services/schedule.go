// Package services holds the use cases behind the HTTP handlers.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/go-backoffice/gate"
	"github.com/diewo77/go-backoffice/internal/apperr"
	"github.com/diewo77/go-backoffice/internal/config"
	"github.com/diewo77/go-backoffice/internal/lock"
	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/policy"
	"github.com/diewo77/go-backoffice/internal/schedule"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const moduleName = "services"

// SaveInput is a full replacement of a document's schedule.
type SaveInput struct {
	Lines   []schedule.Line
	Options schedule.DisplayOptions
	// CustomText replaces the generated text when not blank.
	CustomText string
}

// ScheduleResult is the state of a document's schedule after a read or a save.
type ScheduleResult struct {
	Document models.PayableDocument
	Lines    []schedule.Line
	Text     string
}

// ScheduleService reads and replaces payment schedules and reconciles invoice
// payments. Writers of the same document are serialized through the locker.
type ScheduleService struct {
	db       *gorm.DB
	authz    *policy.Authorizer
	locker   lock.Locker
	log      logrus.FieldLogger
	lockTTL  time.Duration
	lockWait time.Duration
}

// NewScheduleService wires the service. Lock timings default to 30s/5s.
func NewScheduleService(db *gorm.DB, authz *policy.Authorizer, locker lock.Locker, log logrus.FieldLogger) *ScheduleService {
	return &ScheduleService{
		db:       db,
		authz:    authz,
		locker:   locker,
		log:      log,
		lockTTL:  30 * time.Second,
		lockWait: 5 * time.Second,
	}
}

// SetLockTimings overrides how long a lock may be held and how long a writer waits for it.
func (s *ScheduleService) SetLockTimings(ttl, wait time.Duration) {
	s.lockTTL, s.lockWait = ttl, wait
}

func (s *ScheduleService) document(ctx context.Context, t policy.Tenant, kind models.DocumentKind, id uint, action gate.Action) (lineStore, models.PayableDocument, error) {
	st, err := storeFor(kind)
	if err != nil {
		return nil, nil, err
	}
	doc, err := st.load(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, nil, s.internal(err, "load document", logrus.Fields{"kind": kind, "document_id": id})
	}
	if err := s.authz.Authorize(ctx, t, action, st.resource(), doc); err != nil {
		return nil, nil, err
	}
	return st, doc, nil
}

// Get returns the installments of a document in their stored order.
func (s *ScheduleService) Get(ctx context.Context, t policy.Tenant, kind models.DocumentKind, id uint) (*ScheduleResult, error) {
	return s.read(ctx, t, kind, id, gate.ActionView)
}

// Export is Get authorized for the export action.
func (s *ScheduleService) Export(ctx context.Context, t policy.Tenant, kind models.DocumentKind, id uint) (*ScheduleResult, error) {
	return s.read(ctx, t, kind, id, gate.ActionExport)
}

func (s *ScheduleService) read(ctx context.Context, t policy.Tenant, kind models.DocumentKind, id uint, action gate.Action) (*ScheduleResult, error) {
	st, doc, err := s.document(ctx, t, kind, id, action)
	if err != nil {
		return nil, err
	}
	lines, err := st.lines(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, s.internal(err, "load schedule", logrus.Fields{"kind": kind, "document_id": id})
	}
	return &ScheduleResult{Document: doc, Lines: lines, Text: doc.PaymentScheduleText()}, nil
}

// Save rounds amounts and percentages to two decimals, validates the rounded
// lines and replaces the whole schedule of a document in one transaction
// together with its payment text. On any failure the previous
// schedule is left untouched. Amount paid and status are not modified.
func (s *ScheduleService) Save(ctx context.Context, t policy.Tenant, kind models.DocumentKind, id uint, in SaveInput) (*ScheduleResult, error) {
	lines := schedule.Normalize(in.Lines)
	if err := schedule.Validate(lines); err != nil {
		return nil, err
	}
	st, doc, err := s.document(ctx, t, kind, id, gate.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := s.checkBanks(ctx, t.OrganizationID, lines); err != nil {
		return nil, err
	}

	release, err := s.obtain(ctx, string(kind), id)
	if err != nil {
		return nil, err
	}
	defer release()

	text := strings.TrimSpace(in.CustomText)
	if text == "" {
		text = schedule.GenerateText(lines, in.Options)
	} else {
		text = in.CustomText
	}

	var saved []schedule.Line
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if saved, err = st.replace(tx, id, lines); err != nil {
			return err
		}
		return st.setText(tx, id, text)
	})
	if err != nil {
		return nil, s.internal(err, "save schedule", logrus.Fields{"kind": kind, "document_id": id, "lines": len(lines)})
	}

	s.log.WithFields(logrus.Fields{"kind": kind, "document_id": id, "lines": len(saved)}).Info("payment schedule replaced")
	return &ScheduleResult{Document: doc, Lines: saved, Text: text}, nil
}

// checkBanks rejects bank references that do not belong to orgID.
func (s *ScheduleService) checkBanks(ctx context.Context, orgID uint, lines []schedule.Line) error {
	var ids []uint
	for _, l := range lines {
		if l.BankID != nil {
			ids = append(ids, *l.BankID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	owned, err := models.OwnedBankAccountIDs(s.db.WithContext(ctx), orgID, ids)
	if err != nil {
		return s.internal(err, "check bank accounts", logrus.Fields{"organization_id": orgID})
	}
	known := make(map[uint]bool, len(owned))
	for _, id := range owned {
		known[id] = true
	}
	fields := map[string][]string{}
	for i, l := range lines {
		if l.BankID != nil && !known[*l.BankID] {
			key := fmt.Sprintf("payment_schedule.%d.bank_id", i)
			fields[key] = append(fields[key], "invalid_value")
		}
	}
	if len(fields) > 0 {
		return apperr.Validation(apperr.CodeValidationFailed, fields)
	}
	return nil
}

// UpdateLineStatus sets the status of one invoice installment. Marking it paid
// recomputes the invoice's amount paid from every paid installment and derives
// the invoice status, in the same transaction as the line update.
//
// Moving a paid installment back to pending or overdue does not lower the
// amount paid or the invoice status.
func (s *ScheduleService) UpdateLineStatus(ctx context.Context, t policy.Tenant, invoiceID, lineID uint, status string) (schedule.Line, error) {
	next, err := schedule.ParseLineStatus(status)
	if err != nil {
		return schedule.Line{}, apperr.Validation(apperr.CodeInvalidStatus, map[string][]string{"status": {"invalid_status"}})
	}
	if _, _, err := s.document(ctx, t, models.KindInvoice, invoiceID, gate.ActionUpdate); err != nil {
		return schedule.Line{}, err
	}

	release, err := s.obtain(ctx, string(models.KindInvoice), invoiceID)
	if err != nil {
		return schedule.Line{}, err
	}
	defer release()

	var updated models.InvoiceScheduleLine
	fields := logrus.Fields{"invoice_id": invoiceID, "line_id": lineID, "status": next}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoiceID).First(&updated, lineID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(apperr.CodeScheduleLineNotFound)
			}
			return err
		}
		previous := updated.Status
		if err := tx.Model(&updated).Update("status", next).Error; err != nil {
			return err
		}
		updated.Status = next

		if next != schedule.LineStatusPaid {
			if previous == schedule.LineStatusPaid {
				s.log.WithFields(fields).Warn("paid installment moved back; amount paid left unchanged")
			}
			return nil
		}
		return s.reconcile(tx, invoiceID)
	})
	if err != nil {
		return schedule.Line{}, s.internal(err, "update line status", fields)
	}
	return updated.ToLine(), nil
}

func (s *ScheduleService) reconcile(tx *gorm.DB, invoiceID uint) error {
	var inv models.Invoice
	if err := tx.First(&inv, invoiceID).Error; err != nil {
		return err
	}
	lines, err := invoiceStore{}.lines(tx, invoiceID)
	if err != nil {
		return err
	}
	r := schedule.Reconcile(lines, string(inv.Status), inv.TotalTTC)
	s.log.WithFields(logrus.Fields{
		"invoice_id": invoiceID, "amount_paid": r.AmountPaid.StringFixed(2), "status": r.Status,
	}).Info("invoice payments reconciled")
	return tx.Model(&inv).Updates(map[string]any{
		"amount_paid": r.AmountPaid,
		"status":      r.Status,
	}).Error
}

// obtain takes the document lock, waiting at most lockWait.
func (s *ScheduleService) obtain(ctx context.Context, kind string, id uint) (func(), error) {
	wctx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	l, err := s.locker.Obtain(wctx, lock.DocumentKey(kind, id), s.lockTTL)
	if errors.Is(err, lock.ErrNotObtained) {
		s.log.WithFields(logrus.Fields{"kind": kind, "document_id": id}).Warn("schedule lock not obtained")
		return nil, apperr.Conflict(apperr.CodeScheduleLocked, err)
	}
	if err != nil {
		return nil, s.internal(err, "obtain schedule lock", logrus.Fields{"kind": kind, "document_id": id})
	}
	return func() {
		if err := l.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{"kind": kind, "document_id": id}).Warn("schedule lock release failed")
		}
	}, nil
}

// internal passes typed errors through and logs then wraps anything else.
func (s *ScheduleService) internal(err error, funcName string, fields logrus.Fields) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	config.LogError(s.log, moduleName, funcName, fields, err)
	return apperr.Internal(err)
}
