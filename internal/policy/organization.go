// Package policy scopes every request to the caller's organization.
package policy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/diewo77/go-backoffice/auth"
	"github.com/diewo77/go-backoffice/gate"
	"github.com/diewo77/go-backoffice/httpx"
	"github.com/diewo77/go-backoffice/internal/apperr"
	"github.com/diewo77/go-backoffice/internal/models"
	"gorm.io/gorm"
)

// Resource type names registered on the gate.
const (
	ResourceInvoice  = "invoice"
	ResourceQuote    = "quote"
	ResourceTemplate = "payment_condition_template"
)

// Tenant is the authenticated caller and the organization it acts for.
type Tenant struct {
	UserID         uint
	OrganizationID uint
}

type tenantKey struct{}

// WithTenant stores t in ctx.
func WithTenant(ctx context.Context, t Tenant) context.Context {
	return context.WithValue(ctx, tenantKey{}, t)
}

// TenantFrom returns the tenant stored by WithTenant.
func TenantFrom(ctx context.Context) (Tenant, bool) {
	t, ok := ctx.Value(tenantKey{}).(Tenant)
	return t, ok && t.OrganizationID != 0
}

// OrganizationPolicy allows access to resources of the caller's organization.
// List and create checks (nil resource) are always allowed.
type OrganizationPolicy struct{}

func (OrganizationPolicy) Can(_ context.Context, t Tenant, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	owned, ok := resource.(models.OrganizationOwned)
	if !ok {
		return false
	}
	return owned.GetOrganizationID() == t.OrganizationID
}

// OrganizationLookup resolves a user's organization from the users table.
func OrganizationLookup(db *gorm.DB) gate.ResolverFunc[uint, uint] {
	return func(ctx context.Context, userID uint) (uint, error) {
		var u models.User
		err := db.WithContext(ctx).Select("id", "organization_id").First(&u, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && u.OrganizationID == nil) {
			return 0, apperr.NotFound(apperr.CodeOrganizationNotFound)
		}
		if err != nil {
			return 0, apperr.Internal(err)
		}
		return *u.OrganizationID, nil
	}
}

// Authorizer resolves tenants and checks resources against them.
type Authorizer struct {
	Gate *gate.Gate[Tenant]
	Orgs *gate.CachedResolver[uint, uint]
}

// NewAuthorizer caches user to organization lookups for ttl.
func NewAuthorizer(db *gorm.DB, ttl time.Duration) *Authorizer {
	g := gate.NewGate[Tenant]()
	for _, rt := range []string{ResourceInvoice, ResourceQuote, ResourceTemplate} {
		g.Register(rt, OrganizationPolicy{})
	}
	return &Authorizer{
		Gate: g,
		Orgs: gate.NewCachedResolver[uint, uint](OrganizationLookup(db), ttl),
	}
}

// Tenant resolves the organization of userID.
func (a *Authorizer) Tenant(ctx context.Context, userID uint) (Tenant, error) {
	orgID, err := a.Orgs.Resolve(ctx, userID)
	if err != nil {
		return Tenant{}, err
	}
	return Tenant{UserID: userID, OrganizationID: orgID}, nil
}

// Authorize reports a resource of another organization as not found so that
// foreign ids are not disclosed.
func (a *Authorizer) Authorize(ctx context.Context, t Tenant, action gate.Action, resourceType string, resource any) error {
	if err := a.Gate.Authorize(ctx, t, action, resourceType, resource); err != nil {
		if errors.Is(err, gate.ErrNoPolicyDefined) {
			return apperr.Internal(err)
		}
		return apperr.NotFound(apperr.CodeDocumentNotFound)
	}
	return nil
}

// RequireTenant resolves the caller's organization and stores it in the
// request context. It expects auth.Middleware to have run.
func (a *Authorizer) RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, r, apperr.Unauthorized(apperr.CodeUnauthorized))
			return
		}
		t, err := a.Tenant(r.Context(), uid)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), t)))
	})
}
