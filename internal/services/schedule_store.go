package services

import (
	"errors"

	"github.com/diewo77/go-backoffice/internal/apperr"
	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/policy"
	"github.com/diewo77/go-backoffice/internal/schedule"
	"gorm.io/gorm"
)

// lineStore is the persistence of one document kind's schedule. Invoices and
// quotes keep their installments in separate tables of the same shape.
type lineStore interface {
	resource() string
	load(tx *gorm.DB, id uint) (models.PayableDocument, error)
	lines(tx *gorm.DB, id uint) ([]schedule.Line, error)
	// replace deletes every installment of id and inserts lines in order.
	replace(tx *gorm.DB, id uint, lines []schedule.Line) ([]schedule.Line, error)
	setText(tx *gorm.DB, id uint, text string) error
}

func storeFor(kind models.DocumentKind) (lineStore, error) {
	switch kind {
	case models.KindInvoice:
		return invoiceStore{}, nil
	case models.KindQuote:
		return quoteStore{}, nil
	}
	return nil, apperr.NotFound(apperr.CodeNotFound)
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(apperr.CodeDocumentNotFound)
	}
	return err
}

type invoiceStore struct{}

func (invoiceStore) resource() string { return policy.ResourceInvoice }

func (invoiceStore) load(tx *gorm.DB, id uint) (models.PayableDocument, error) {
	var inv models.Invoice
	if err := tx.First(&inv, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &inv, nil
}

func (invoiceStore) lines(tx *gorm.DB, id uint) ([]schedule.Line, error) {
	var rows []models.InvoiceScheduleLine
	if err := tx.Where("invoice_id = ?", id).Order("position, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]schedule.Line, len(rows))
	for i, r := range rows {
		out[i] = r.ToLine()
	}
	return out, nil
}

func (invoiceStore) replace(tx *gorm.DB, id uint, lines []schedule.Line) ([]schedule.Line, error) {
	if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceScheduleLine{}).Error; err != nil {
		return nil, err
	}
	out := make([]schedule.Line, len(lines))
	for i, l := range lines {
		row := models.NewInvoiceScheduleLine(id, i, l)
		if err := tx.Create(&row).Error; err != nil {
			return nil, err
		}
		out[i] = row.ToLine()
	}
	return out, nil
}

func (invoiceStore) setText(tx *gorm.DB, id uint, text string) error {
	return tx.Model(&models.Invoice{}).Where("id = ?", id).Update("payment_schedule_text", text).Error
}

type quoteStore struct{}

func (quoteStore) resource() string { return policy.ResourceQuote }

func (quoteStore) load(tx *gorm.DB, id uint) (models.PayableDocument, error) {
	var q models.Quote
	if err := tx.First(&q, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &q, nil
}

func (quoteStore) lines(tx *gorm.DB, id uint) ([]schedule.Line, error) {
	var rows []models.QuoteScheduleLine
	if err := tx.Where("quote_id = ?", id).Order("position, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]schedule.Line, len(rows))
	for i, r := range rows {
		out[i] = r.ToLine()
	}
	return out, nil
}

func (quoteStore) replace(tx *gorm.DB, id uint, lines []schedule.Line) ([]schedule.Line, error) {
	if err := tx.Where("quote_id = ?", id).Delete(&models.QuoteScheduleLine{}).Error; err != nil {
		return nil, err
	}
	out := make([]schedule.Line, len(lines))
	for i, l := range lines {
		row := models.NewQuoteScheduleLine(id, i, l)
		if err := tx.Create(&row).Error; err != nil {
			return nil, err
		}
		out[i] = row.ToLine()
	}
	return out, nil
}

func (quoteStore) setText(tx *gorm.DB, id uint, text string) error {
	return tx.Model(&models.Quote{}).Where("id = ?", id).Update("payment_schedule_text", text).Error
}
