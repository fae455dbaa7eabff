package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-backoffice/auth"
	"github.com/diewo77/go-backoffice/internal/db"
	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupE2EDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:e2e_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(dbi); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Seed(dbi); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return dbi
}

func TestPaymentScheduleFlowE2E(t *testing.T) {
	auth.SetSecret("e2e-secret")
	dbi := setupE2EDB(t)
	org := models.Organization{Name: "E2E Corp"}
	dbi.Create(&org)
	hash, _ := bcrypt.GenerateFromPassword([]byte("pass1234"), bcrypt.MinCost)
	u := models.User{Email: "e2e@example.com", Password: string(hash), OrganizationID: &org.ID}
	if err := dbi.Create(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	inv := models.Invoice{OrganizationID: org.ID, Number: "F-E2E-1", TotalTTC: decimal.NewFromInt(1000), Status: models.InvoiceStatusPending}
	if err := dbi.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}

	logger, _ := test.NewNullLogger()
	app := NewApp(dbi, logger, Options{LockWait: 100 * time.Millisecond})

	call := func(method, path, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept-Language", "en-US,en;q=0.8")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rr := httptest.NewRecorder()
		app.ServeHTTP(rr, req)
		return rr
	}

	rr := call(http.MethodPost, "/login", `{"email":"e2e@example.com","password":"pass1234"}`, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
	var login struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	json.Unmarshal(rr.Body.Bytes(), &login)
	token := login.Data.Token

	path := fmt.Sprintf("/invoices/%d/payment-schedule", inv.ID)
	body := `{"payment_schedule":[
 {"amount":300,"percentage":30,"payment_condition":"à la commande","date":"2025-03-01","payment_method":"virement"},
 {"amount":300,"percentage":30,"payment_condition":"à mi-parcours","date":"2025-04-01","payment_method":"virement"},
 {"amount":400,"percentage":40,"payment_condition":"à la livraison","date":"2025-05-01","payment_method":"virement"}]}`
	rr = call(http.MethodPost, path, body, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("save: %d %s", rr.Code, rr.Body.String())
	}
	var saved struct {
		Message string `json:"message"`
		Data    struct {
			PaymentSchedule []struct {
				ID uint `json:"id"`
			} `json:"payment_schedule"`
		} `json:"data"`
	}
	json.Unmarshal(rr.Body.Bytes(), &saved)
	if saved.Message != "Payment schedule saved" || len(saved.Data.PaymentSchedule) != 3 {
		t.Fatalf("unexpected save response %s", rr.Body.String())
	}

	for i, want := range []struct {
		paid   string
		status models.InvoiceStatus
	}{{"300", models.InvoiceStatusPartiallyPaid}, {"600", models.InvoiceStatusPartiallyPaid}, {"1000", models.InvoiceStatusPaid}} {
		rr = call(http.MethodPatch, fmt.Sprintf("%s/%d", path, saved.Data.PaymentSchedule[i].ID), `{"status":"paid"}`, token)
		if rr.Code != http.StatusOK {
			t.Fatalf("patch %d: %d %s", i, rr.Code, rr.Body.String())
		}
		var got models.Invoice
		dbi.First(&got, inv.ID)
		if !got.AmountPaid.Equal(decimal.RequireFromString(want.paid)) || got.Status != want.status {
			t.Fatalf("after line %d: %s / %s, want %s / %s", i, got.AmountPaid, got.Status, want.paid, want.status)
		}
	}

	// English messages through Accept-Language.
	rr = call(http.MethodPost, path, `{"payment_schedule":[{"amount":990,"percentage":99,"date":"2025-03-01","payment_method":"virement"}]}`, token)
	var failed struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	json.Unmarshal(rr.Body.Bytes(), &failed)
	if rr.Code != http.StatusUnprocessableEntity || failed.Code != "schedule_percentage_mismatch" || !strings.Contains(strings.ToLower(failed.Message), "percent") {
		t.Fatalf("mismatch: %d %s", rr.Code, rr.Body.String())
	}

	if rr := call(http.MethodGet, "/payment-conditions/templates", "", token); rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "30 jours") {
		t.Fatalf("templates: %d %s", rr.Code, rr.Body.String())
	}
	if rr := call(http.MethodGet, path, "", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous access: %d", rr.Code)
	}
}

func TestHealthE2E(t *testing.T) {
	dbi := setupE2EDB(t)
	logger, _ := test.NewNullLogger()
	app := NewApp(dbi, logger, Options{})

	for _, p := range []string{"/health", "/healthz"} {
		rr := httptest.NewRecorder()
		app.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, p, nil))
		if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"status":"ok"`) {
			t.Fatalf("%s: %d %s", p, rr.Code, rr.Body.String())
		}
	}
}
