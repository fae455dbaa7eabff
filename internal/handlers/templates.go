package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/diewo77/go-backoffice/httpx"
	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/services"
)

type templateResponse struct {
	ID             uint        `json:"id"`
	OrganizationID *uint       `json:"organization_id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Percentage     json.Number `json:"percentage"`
	Days           int         `json:"days"`
	PaymentMethod  string      `json:"payment_method"`
	IsSystem       bool        `json:"is_system"`
}

func toTemplateResponse(t models.PaymentConditionTemplate) templateResponse {
	return templateResponse{
		ID:             t.ID,
		OrganizationID: t.OrganizationID,
		Name:           t.Name,
		Description:    t.Description,
		Percentage:     json.Number(t.Percentage.StringFixed(2)),
		Days:           t.Days,
		PaymentMethod:  t.PaymentMethod,
		IsSystem:       t.IsSystem,
	}
}

// TemplateHandler serves the payment condition templates.
type TemplateHandler struct {
	svc *services.TemplateService
}

func NewTemplateHandler(svc *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

// List: GET /payment-conditions/templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	t, err := tenant(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	tpls, err := h.svc.AvailableFor(r.Context(), t)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	out := make([]templateResponse, len(tpls))
	for i, tpl := range tpls {
		out[i] = toTemplateResponse(tpl)
	}
	httpx.OK(w, r, http.StatusOK, "", out)
}

// Create: POST /payment-conditions/templates
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	t, err := tenant(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var in services.TemplateInput
	if err := decode(w, r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	tpl, err := h.svc.Create(r.Context(), t, in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, r, http.StatusCreated, "template_created", toTemplateResponse(*tpl))
}
