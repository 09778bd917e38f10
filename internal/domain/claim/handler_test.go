package claim

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestServer(repo *mockRepo) *echo.Echo {
	e := echo.New()
	NewHandler(NewService(repo)).RegisterRoutes(e.Group("/api"))
	return e
}

func TestHandlerCreateClaim(t *testing.T) {
	repo := newMockRepo()
	e := newTestServer(repo)

	body, err := json.Marshal(testClaim())
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/claims", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	var got Claim
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID == uuid.Nil {
		t.Error("created claim should have an id assigned")
	}
	if got.Status != StatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
}

func TestHandlerCreateInvalidClaim(t *testing.T) {
	e := newTestServer(newMockRepo())

	req := httptest.NewRequest(http.MethodPost, "/api/claims", strings.NewReader(`{"claim_id":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerGetByBusinessID(t *testing.T) {
	repo := newMockRepo()
	cl := testClaim()
	if err := repo.Create(nil, cl); err != nil {
		t.Fatal(err)
	}
	e := newTestServer(repo)

	// Not a UUID, so the handler falls back to the CLM- lookup.
	req := httptest.NewRequest(http.MethodGet, "/api/claims/CLM-2024-001", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got Claim
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ClaimID != "CLM-2024-001" {
		t.Errorf("claim_id = %q, want CLM-2024-001", got.ClaimID)
	}
}

func TestHandlerGetUnknownClaim(t *testing.T) {
	e := newTestServer(newMockRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/claims/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerListFiltersByStatus(t *testing.T) {
	repo := newMockRepo()
	approved := testClaim()
	approved.Status = StatusApproved
	if err := repo.Create(nil, approved); err != nil {
		t.Fatal(err)
	}
	pending := testClaim()
	pending.ClaimID = "CLM-2024-002"
	if err := repo.Create(nil, pending); err != nil {
		t.Fatal(err)
	}
	e := newTestServer(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/claims?status=approved", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Data  []*Claim `json:"data"`
		Total int      `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 {
		t.Fatalf("got %d/%d claims, want 1", len(resp.Data), resp.Total)
	}
	if resp.Data[0].Status != StatusApproved {
		t.Errorf("status = %s, want approved", resp.Data[0].Status)
	}
}
