// Package export renders payment schedules as spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/schedule"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Echeancier"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{"#", "Pourcentage", "Montant", "Condition", "Date", "Mode de paiement", "Statut"}

// Filename is the attachment name of a document's schedule export.
func Filename(doc models.PayableDocument) string {
	return fmt.Sprintf("echeancier-%s-%d.xlsx", doc.Kind(), doc.GetID())
}

// ScheduleWorkbook writes one row per installment in order, followed by the
// payment terms text.
func ScheduleWorkbook(doc models.PayableDocument, lines []schedule.Line) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, err
		}
	}

	for i, l := range lines {
		row := i + 2
		status := ""
		if l.HasStatus() {
			status = string(*l.Status)
		}
		values := []any{
			i + 1,
			l.Percentage.InexactFloat64(),
			l.Amount.InexactFloat64(),
			l.Condition,
			l.Date.Format("02/01/2006"),
			l.PaymentMethod,
			status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	textRow := len(lines) + 3
	if err := f.SetCellValue(SheetName, fmt.Sprintf("A%d", textRow), doc.PaymentScheduleText()); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}
