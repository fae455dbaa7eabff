package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-backoffice/gate"
	"github.com/diewo77/go-backoffice/internal/apperr"
	"github.com/diewo77/go-backoffice/internal/config"
	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/policy"
	"github.com/diewo77/go-backoffice/validation"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TemplateInput creates an organization template.
type TemplateInput struct {
	Name          string           `json:"name" validate:"required,max=255"`
	Description   string           `json:"description" validate:"required"`
	Percentage    *decimal.Decimal `json:"percentage" validate:"required,gte=0,lte=100"`
	Days          *int             `json:"days" validate:"required,gte=0"`
	PaymentMethod string           `json:"payment_method" validate:"max=50"`
}

// TemplateService lists and creates payment condition templates.
type TemplateService struct {
	db    *gorm.DB
	authz *policy.Authorizer
	log   logrus.FieldLogger
}

func NewTemplateService(db *gorm.DB, authz *policy.Authorizer, log logrus.FieldLogger) *TemplateService {
	return &TemplateService{db: db, authz: authz, log: log}
}

// AvailableFor returns the system templates plus the tenant's own, system first.
func (s *TemplateService) AvailableFor(ctx context.Context, t policy.Tenant) ([]models.PaymentConditionTemplate, error) {
	if err := s.authz.Authorize(ctx, t, gate.ActionList, policy.ResourceTemplate, nil); err != nil {
		return nil, err
	}
	tpls := []models.PaymentConditionTemplate{}
	err := s.db.WithContext(ctx).
		Scopes(models.AvailableFor(t.OrganizationID)).
		Order("is_system DESC, name ASC, id ASC").
		Find(&tpls).Error
	if err != nil {
		config.LogError(s.log, moduleName, "AvailableFor", logrus.Fields{"organization_id": t.OrganizationID}, err)
		return nil, apperr.Internal(err)
	}
	return tpls, nil
}

// Create stores a non-system template owned by the tenant's organization.
func (s *TemplateService) Create(ctx context.Context, t policy.Tenant, in TemplateInput) (*models.PaymentConditionTemplate, error) {
	if err := s.authz.Authorize(ctx, t, gate.ActionCreate, policy.ResourceTemplate, nil); err != nil {
		return nil, err
	}
	if v := validation.Struct(in); !v.Empty() {
		return nil, apperr.Validation(apperr.CodeValidationFailed, v)
	}
	orgID := t.OrganizationID
	tpl := models.PaymentConditionTemplate{
		OrganizationID: &orgID,
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Percentage:     in.Percentage.Round(2),
		Days:           *in.Days,
		PaymentMethod:  in.PaymentMethod,
		IsSystem:       false,
	}
	if err := s.db.WithContext(ctx).Create(&tpl).Error; err != nil {
		config.LogError(s.log, moduleName, "Create", logrus.Fields{"organization_id": orgID}, err)
		return nil, apperr.Internal(err)
	}
	return &tpl, nil
}
