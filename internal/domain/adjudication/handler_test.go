package adjudication

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestServer(claims *memClaimRepo, policies *memPolicyRepo, adj *memAdjRepo) *echo.Echo {
	e := echo.New()
	NewHandler(newTestService(claims, policies, adj)).RegisterRoutes(e.Group("/api"))
	return e
}

func TestHandlerAdjudicateStoredClaim(t *testing.T) {
	cl := validClaim()
	e := newTestServer(newMemClaimRepo(cl), newMemPolicyRepo(activePolicy()), newMemAdjRepo())

	body := `{"claim_id":"CLM-2024-001"}`
	req := httptest.NewRequest(http.MethodPost, "/api/adjudications", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	var got Record
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Status != RunCompleted {
		t.Errorf("record status = %q, want completed", got.Status)
	}
	if got.Decision == nil || got.Decision.DecisionType != DecisionApproved {
		t.Errorf("decision = %+v, want approved", got.Decision)
	}
}

func TestHandlerAdjudicateRequiresInput(t *testing.T) {
	e := newTestServer(newMemClaimRepo(), newMemPolicyRepo(), newMemAdjRepo())

	req := httptest.NewRequest(http.MethodPost, "/api/adjudications", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerAdjudicateUnknownClaim(t *testing.T) {
	e := newTestServer(newMemClaimRepo(), newMemPolicyRepo(activePolicy()), newMemAdjRepo())

	req := httptest.NewRequest(http.MethodPost, "/api/adjudications",
		strings.NewReader(`{"claim_id":"CLM-NOPE"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestHandlerGetReport(t *testing.T) {
	cl := validClaim()
	adj := newMemAdjRepo()
	e := newTestServer(newMemClaimRepo(cl), newMemPolicyRepo(activePolicy()), adj)

	svc := newTestService(newMemClaimRepo(validClaim()), newMemPolicyRepo(activePolicy()), adj)
	stored, err := svc.AdjudicateStored(context.Background(), cl.ClaimID)
	if err != nil {
		t.Fatalf("AdjudicateStored() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/adjudications/"+stored.ID.String()+"/report", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INSURANCE CLAIM PROCESSING REPORT") {
		t.Error("report body missing header")
	}
}

func TestHandlerGetUnknownAdjudication(t *testing.T) {
	e := newTestServer(newMemClaimRepo(), newMemPolicyRepo(), newMemAdjRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/adjudications/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerListDecisionsByClaim(t *testing.T) {
	cl := validClaim()
	adj := newMemAdjRepo()
	e := newTestServer(newMemClaimRepo(cl), newMemPolicyRepo(activePolicy()), adj)

	svc := newTestService(newMemClaimRepo(validClaim()), newMemPolicyRepo(activePolicy()), adj)
	if _, err := svc.AdjudicateStored(context.Background(), cl.ClaimID); err != nil {
		t.Fatalf("AdjudicateStored() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/claims/"+cl.ClaimID+"/decisions", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var records []*Record
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}
