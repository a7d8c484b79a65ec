package receipt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/duardo10/EndoData-backend-sub000/internal/platform/auth"
)

func newTestHandler() (*Handler, *mockRepo, *echo.Echo) {
	svc, repo := newTestService(nil)
	h := NewHandler(svc)
	e := echo.New()
	return h, repo, e
}

// withOwner places an authenticated principal on the request context the way
// the JWT middleware does.
func withOwner(c echo.Context, owner uuid.UUID) {
	ctx := context.WithValue(c.Request().Context(), auth.UserIDKey, owner.String())
	c.SetRequest(c.Request().WithContext(ctx))
}

func TestHandler_Create(t *testing.T) {
	h, _, e := newTestHandler()
	body := `{"patientId":"` + uuid.New().String() + `","amount":"150.00"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withOwner(c, uuid.New())

	err := h.Create(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var got Receipt
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusPending {
		t.Errorf("expected pending, got %s", got.Status)
	}
	if !got.Amount.Equal(decimal.RequireFromString("150.00")) {
		t.Errorf("expected amount 150.00, got %s", got.Amount)
	}
}

func TestHandler_Create_NoPrincipal(t *testing.T) {
	h, _, e := newTestHandler()
	body := `{"patientId":"` + uuid.New().String() + `","amount":"150.00"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	if err == nil {
		t.Fatal("expected error without principal")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestHandler_Create_NegativeAmount(t *testing.T) {
	h, _, e := newTestHandler()
	body := `{"patientId":"` + uuid.New().String() + `","amount":"-10.00"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withOwner(c, uuid.New())

	err := h.Create(c)
	if err == nil {
		t.Fatal("expected error for negative amount")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withOwner(c, uuid.New())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Get(c)
	if err == nil {
		t.Fatal("expected error for not found")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_MonthlyReport(t *testing.T) {
	h, repo, e := newTestHandler()
	owner := uuid.New()
	seedReceipt(repo, owner, "100.00", StatusPaid, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	seedReceipt(repo, owner, "50.00", StatusPending, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/?month=6&year=2025", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withOwner(c, owner)

	err := h.MonthlyReport(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var report MonthlyReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Month != 6 || report.Year != 2025 {
		t.Errorf("unexpected period: %d/%d", report.Month, report.Year)
	}
	if !report.TotalRevenue.Equal(decimal.RequireFromString("150.00")) {
		t.Errorf("expected revenue 150.00, got %s", report.TotalRevenue)
	}
	if !report.AverageReceiptValue.Equal(decimal.RequireFromString("75.00")) {
		t.Errorf("expected average 75.00, got %s", report.AverageReceiptValue)
	}
	if report.GeneratedAt.IsZero() {
		t.Error("expected generatedAt to be set")
	}
}

func TestHandler_MonthlyReport_MissingParams(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withOwner(c, uuid.New())

	err := h.MonthlyReport(c)
	if err == nil {
		t.Fatal("expected error for missing month")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_MonthlyReport_InvalidMonth(t *testing.T) {
	h, repo, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/?month=13&year=2025", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withOwner(c, uuid.New())

	err := h.MonthlyReport(c)
	if err == nil {
		t.Fatal("expected error for month 13")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
	if repo.totalCalls != 0 {
		t.Errorf("expected no aggregation, repo called %d times", repo.totalCalls)
	}
}

func TestHandler_Delete(t *testing.T) {
	h, repo, e := newTestHandler()
	owner := uuid.New()
	rc := seedReceipt(repo, owner, "100.00", StatusPaid, time.Now())

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withOwner(c, owner)
	c.SetParamNames("id")
	c.SetParamValues(rc.ID.String())

	err := h.Delete(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
