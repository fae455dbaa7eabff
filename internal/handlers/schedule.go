package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-backoffice/httpx"
	"github.com/diewo77/go-backoffice/internal/apperr"
	"github.com/diewo77/go-backoffice/internal/export"
	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/policy"
	"github.com/diewo77/go-backoffice/internal/schedule"
	"github.com/diewo77/go-backoffice/internal/services"
	"github.com/diewo77/go-backoffice/validation"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

// Accepted input date layouts, tried in order.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "02/01/2006"}

type lineRequest struct {
	Amount           *decimal.Decimal `json:"amount" validate:"required,gte=0"`
	Percentage       *decimal.Decimal `json:"percentage" validate:"required,gte=0,lte=100"`
	PaymentCondition string           `json:"payment_condition" validate:"max=255"`
	Date             string           `json:"date" validate:"required"`
	PaymentMethod    string           `json:"payment_method" validate:"required,max=50"`
	BankID           *uint            `json:"bank_id"`
}

type saveRequest struct {
	PaymentSchedule []lineRequest `json:"payment_schedule" validate:"dive"`
	CustomText      *string       `json:"custom_text"`
	ShowAmounts     *bool         `json:"show_amounts"`
	ShowPercentages *bool         `json:"show_percentages"`
	ShowDates       *bool         `json:"show_dates"`
	ShowConditions  *bool         `json:"show_conditions"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type lineResponse struct {
	ID               uint                 `json:"id"`
	Amount           json.Number          `json:"amount"`
	Percentage       json.Number          `json:"percentage"`
	PaymentCondition string               `json:"payment_condition"`
	Date             string               `json:"date"`
	PaymentMethod    string               `json:"payment_method"`
	BankID           *uint                `json:"bank_id"`
	Status           *schedule.LineStatus `json:"status,omitempty"`
}

func flag(b *bool) bool { return b == nil || *b }

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// input converts the request into engine lines. Shape errors are reported per
// field; the percentage sum is left to the service.
func (req saveRequest) input() (services.SaveInput, error) {
	v := validation.Struct(req)
	lines := make([]schedule.Line, len(req.PaymentSchedule))
	for i, l := range req.PaymentSchedule {
		date, ok := parseDate(l.Date)
		if !ok && l.Date != "" {
			v.Add(validation.Index("payment_schedule", i, "date"), "invalid_date")
		}
		line := schedule.Line{
			Condition:     strings.TrimSpace(l.PaymentCondition),
			Date:          date,
			PaymentMethod: strings.TrimSpace(l.PaymentMethod),
			BankID:        l.BankID,
		}
		if l.Amount != nil {
			line.Amount = *l.Amount
		}
		if l.Percentage != nil {
			line.Percentage = *l.Percentage
		}
		lines[i] = line
	}
	if !v.Empty() {
		return services.SaveInput{}, apperr.Validation(apperr.CodeValidationFailed, v)
	}
	in := services.SaveInput{
		Lines: lines,
		Options: schedule.DisplayOptions{
			ShowAmounts:     flag(req.ShowAmounts),
			ShowPercentages: flag(req.ShowPercentages),
			ShowDates:       flag(req.ShowDates),
			ShowConditions:  flag(req.ShowConditions),
		},
	}
	if req.CustomText != nil {
		in.CustomText = *req.CustomText
	}
	return in, nil
}

func toLineResponse(l schedule.Line) lineResponse {
	return lineResponse{
		ID:               l.ID,
		Amount:           json.Number(l.Amount.StringFixed(2)),
		Percentage:       json.Number(l.Percentage.StringFixed(2)),
		PaymentCondition: l.Condition,
		Date:             l.Date.Format("2006-01-02"),
		PaymentMethod:    l.PaymentMethod,
		BankID:           l.BankID,
		Status:           l.Status,
	}
}

func scheduleData(kind models.DocumentKind, res *services.ScheduleResult) map[string]any {
	lines := make([]lineResponse, len(res.Lines))
	for i, l := range res.Lines {
		lines[i] = toLineResponse(l)
	}
	return map[string]any{
		string(kind) + "_id": res.Document.GetID(),
		"payment_schedule":   lines,
		"payment_text":       res.Text,
		"payment_conditions": res.Text,
	}
}

// ScheduleHandler serves the payment schedules of invoices and quotes.
type ScheduleHandler struct {
	svc *services.ScheduleService
	log logrus.FieldLogger
}

func NewScheduleHandler(svc *services.ScheduleService, log logrus.FieldLogger) *ScheduleHandler {
	return &ScheduleHandler{svc: svc, log: log}
}

func pathID(r *http.Request, name string, notFound string) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound(notFound)
	}
	return uint(id), nil
}

func tenant(r *http.Request) (policy.Tenant, error) {
	t, ok := policy.TenantFrom(r.Context())
	if !ok {
		return policy.Tenant{}, apperr.Unauthorized(apperr.CodeUnauthorized)
	}
	return t, nil
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation(apperr.CodeBadRequest, nil)
	}
	return nil
}

func (h *ScheduleHandler) get(kind models.DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := tenant(r)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		id, err := pathID(r, "id", apperr.CodeDocumentNotFound)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		res, err := h.svc.Get(r.Context(), t, kind, id)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.OK(w, r, http.StatusOK, "", scheduleData(kind, res))
	}
}

func (h *ScheduleHandler) save(kind models.DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := tenant(r)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		id, err := pathID(r, "id", apperr.CodeDocumentNotFound)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		var req saveRequest
		if err := decode(w, r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}
		in, err := req.input()
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		res, err := h.svc.Save(r.Context(), t, kind, id, in)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.OK(w, r, http.StatusOK, "schedule_saved", scheduleData(kind, res))
	}
}

// GetInvoice: GET /invoices/{id}/payment-schedule
func (h *ScheduleHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	h.get(models.KindInvoice)(w, r)
}

// SaveInvoice: POST|PUT /invoices/{id}/payment-schedule
func (h *ScheduleHandler) SaveInvoice(w http.ResponseWriter, r *http.Request) {
	h.save(models.KindInvoice)(w, r)
}

// GetQuote: GET /quotes/{id}/payment-schedule
func (h *ScheduleHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	h.get(models.KindQuote)(w, r)
}

// SaveQuote: POST|PUT /quotes/{id}/payment-schedule
func (h *ScheduleHandler) SaveQuote(w http.ResponseWriter, r *http.Request) {
	h.save(models.KindQuote)(w, r)
}

// UpdateStatus: PATCH /invoices/{id}/payment-schedule/{scheduleId}
func (h *ScheduleHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	t, err := tenant(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	invoiceID, err := pathID(r, "id", apperr.CodeDocumentNotFound)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	lineID, err := pathID(r, "scheduleId", apperr.CodeScheduleLineNotFound)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req statusRequest
	if err := decode(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	line, err := h.svc.UpdateLineStatus(r.Context(), t, invoiceID, lineID, req.Status)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, r, http.StatusOK, "schedule_status_updated", toLineResponse(line))
}

// Export: GET /{kind}/{id}/payment-schedule/export as an xlsx attachment.
func (h *ScheduleHandler) Export(kind models.DocumentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := tenant(r)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		id, err := pathID(r, "id", apperr.CodeDocumentNotFound)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		res, err := h.svc.Export(r.Context(), t, kind, id)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		buf, err := export.ScheduleWorkbook(res.Document, res.Lines)
		if err != nil {
			h.log.WithError(err).WithFields(logrus.Fields{"kind": kind, "document_id": id}).Error("schedule export failed")
			httpx.Error(w, r, apperr.Internal(err))
			return
		}
		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(res.Document)))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}
