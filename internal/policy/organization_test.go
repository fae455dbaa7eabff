package policy_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diewo77/go-backoffice/auth"
	"github.com/diewo77/go-backoffice/gate"
	"github.com/diewo77/go-backoffice/internal/apperr"
	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/diewo77/go-backoffice/internal/policy"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Organization{}, &models.User{}, &models.Invoice{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type notOwned struct{}

func TestOrganizationPolicy(t *testing.T) {
	p := policy.OrganizationPolicy{}
	me := policy.Tenant{UserID: 1, OrganizationID: 10}
	ctx := context.Background()

	if !p.Can(ctx, me, gate.ActionList, nil) {
		t.Error("nil resource should be allowed")
	}
	if !p.Can(ctx, me, gate.ActionView, &models.Invoice{OrganizationID: 10}) {
		t.Error("own invoice should be allowed")
	}
	if p.Can(ctx, me, gate.ActionUpdate, &models.Invoice{OrganizationID: 11}) {
		t.Error("foreign invoice should be denied")
	}
	if p.Can(ctx, me, gate.ActionView, notOwned{}) {
		t.Error("resource without organization should be denied")
	}
}

func TestAuthorizer_TenantAndAuthorize(t *testing.T) {
	db := setupDB(t)
	org := models.Organization{Name: "Acme"}
	db.Create(&org)
	user := models.User{Email: "a@acme.test", Password: "x", OrganizationID: &org.ID}
	orphan := models.User{Email: "o@acme.test", Password: "x"}
	db.Create(&user)
	db.Create(&orphan)

	a := policy.NewAuthorizer(db, time.Minute)
	ctx := context.Background()

	tn, err := a.Tenant(ctx, user.ID)
	if err != nil || tn.OrganizationID != org.ID {
		t.Fatalf("Tenant() = %+v, %v", tn, err)
	}
	if _, err := a.Tenant(ctx, orphan.ID); apperr.As(err).Code != apperr.CodeOrganizationNotFound {
		t.Fatalf("expected organization_not_found, got %v", err)
	}
	if _, err := a.Tenant(ctx, 999); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}

	foreign := &models.Invoice{OrganizationID: org.ID + 1}
	err = a.Authorize(ctx, tn, gate.ActionView, policy.ResourceInvoice, foreign)
	if apperr.As(err).Code != apperr.CodeDocumentNotFound {
		t.Fatalf("foreign document should look missing, got %v", err)
	}
	if err := a.Authorize(ctx, tn, gate.ActionView, policy.ResourceInvoice, &models.Invoice{OrganizationID: org.ID}); err != nil {
		t.Fatalf("own document: %v", err)
	}
	if err := a.Authorize(ctx, tn, gate.ActionView, "unknown", nil); apperr.KindOf(err) != apperr.KindInternal {
		t.Fatalf("unregistered resource should be internal, got %v", err)
	}
}

func TestRequireTenant(t *testing.T) {
	db := setupDB(t)
	org := models.Organization{Name: "Acme"}
	db.Create(&org)
	user := models.User{Email: "a@acme.test", Password: "x", OrganizationID: &org.ID}
	db.Create(&user)
	a := policy.NewAuthorizer(db, time.Minute)

	var got policy.Tenant
	h := a.RequireTenant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = policy.TenantFrom(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || got.OrganizationID != org.ID {
		t.Fatalf("expected tenant in context, got %d %+v", rec.Code, got)
	}
}
