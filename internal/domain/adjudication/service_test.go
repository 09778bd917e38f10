package adjudication

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/claims/claims/internal/domain/claim"
	"github.com/claims/claims/internal/domain/policy"
)

type memClaimRepo struct {
	byID  map[uuid.UUID]*claim.Claim
	byRef map[string]*claim.Claim
}

func newMemClaimRepo(claims ...*claim.Claim) *memClaimRepo {
	r := &memClaimRepo{byID: map[uuid.UUID]*claim.Claim{}, byRef: map[string]*claim.Claim{}}
	for _, c := range claims {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		r.byID[c.ID] = c
		r.byRef[c.ClaimID] = c
	}
	return r
}

func (r *memClaimRepo) Create(_ context.Context, c *claim.Claim) error {
	c.ID = uuid.New()
	r.byID[c.ID] = c
	r.byRef[c.ClaimID] = c
	return nil
}

func (r *memClaimRepo) GetByID(_ context.Context, id uuid.UUID) (*claim.Claim, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("claim %s not found", id)
	}
	return c, nil
}

func (r *memClaimRepo) GetByClaimID(_ context.Context, ref string) (*claim.Claim, error) {
	c, ok := r.byRef[ref]
	if !ok {
		return nil, fmt.Errorf("claim %s not found", ref)
	}
	return c, nil
}

func (r *memClaimRepo) Update(_ context.Context, c *claim.Claim) error { return nil }

func (r *memClaimRepo) UpdateStatus(_ context.Context, id uuid.UUID, status claim.Status) error {
	c, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("claim %s not found", id)
	}
	c.Status = status
	return nil
}

func (r *memClaimRepo) Delete(_ context.Context, id uuid.UUID) error { return nil }

func (r *memClaimRepo) List(_ context.Context, limit, offset int) ([]*claim.Claim, int, error) {
	return nil, 0, nil
}

func (r *memClaimRepo) ListByStatus(_ context.Context, s claim.Status, limit, offset int) ([]*claim.Claim, int, error) {
	return nil, 0, nil
}

type memPolicyRepo struct{ byNumber map[string]*policy.Policy }

func newMemPolicyRepo(policies ...*policy.Policy) *memPolicyRepo {
	r := &memPolicyRepo{byNumber: map[string]*policy.Policy{}}
	for _, p := range policies {
		r.byNumber[p.PolicyNumber] = p
	}
	return r
}

func (r *memPolicyRepo) Create(_ context.Context, p *policy.Policy) error { return nil }

func (r *memPolicyRepo) GetByID(_ context.Context, id uuid.UUID) (*policy.Policy, error) {
	return nil, fmt.Errorf("not implemented")
}

func (r *memPolicyRepo) GetByNumber(_ context.Context, n string) (*policy.Policy, error) {
	p, ok := r.byNumber[n]
	if !ok {
		return nil, fmt.Errorf("policy %s not found", n)
	}
	return p, nil
}

func (r *memPolicyRepo) Update(_ context.Context, p *policy.Policy) error { return nil }
func (r *memPolicyRepo) Delete(_ context.Context, id uuid.UUID) error { return nil }

func (r *memPolicyRepo) List(_ context.Context, limit, offset int) ([]*policy.Policy, int, error) {
	return nil, 0, nil
}

type memAdjRepo struct{ records map[uuid.UUID]*Record }

func newMemAdjRepo() *memAdjRepo { return &memAdjRepo{records: map[uuid.UUID]*Record{}} }

func (r *memAdjRepo) Create(_ context.Context, rec *Record) error {
	rec.ID = uuid.New()
	r.records[rec.ID] = rec
	return nil
}

func (r *memAdjRepo) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("adjudication %s not found", id)
	}
	return rec, nil
}

func (r *memAdjRepo) ListByClaim(_ context.Context, ref string) ([]*Record, error) {
	var out []*Record
	for _, rec := range r.records {
		if rec.ClaimRef == ref {
			out = append(out, rec)
		}
	}
	return out, nil
}

func newTestService(claims *memClaimRepo, policies *memPolicyRepo, adj *memAdjRepo) *Service {
	return NewService(newTestPipeline(), adj, claims, policies, zerolog.Nop())
}

func TestAdjudicateStored(t *testing.T) {
	cl := validClaim()
	claims := newMemClaimRepo(cl)
	adj := newMemAdjRepo()
	svc := newTestService(claims, newMemPolicyRepo(activePolicy()), adj)

	rec, err := svc.AdjudicateStored(context.Background(), "CLM-2024-001")
	if err != nil {
		t.Fatalf("AdjudicateStored() error = %v", err)
	}

	if rec.Status != RunCompleted {
		t.Errorf("record status = %q, want completed", rec.Status)
	}
	if rec.Decision == nil || rec.Decision.DecisionType != DecisionApproved {
		t.Errorf("decision = %+v, want approved", rec.Decision)
	}
	if rec.Report == "" {
		t.Error("record should carry the formatted report")
	}
	if cl.Status != claim.StatusApproved {
		t.Errorf("claim status = %s, want approved", cl.Status)
	}
	if len(adj.records) != 1 {
		t.Errorf("got %d persisted records, want 1", len(adj.records))
	}
}

func TestAdjudicateStoredRejectedClaim(t *testing.T) {
	cl := validClaim()
	pol := activePolicy()
	pol.Exclusions = []policy.Exclusion{{ExclusionType: "cosmetic", ExcludedCodes: []string{"M54.5"}}}
	svc := newTestService(newMemClaimRepo(cl), newMemPolicyRepo(pol), newMemAdjRepo())

	rec, err := svc.AdjudicateStored(context.Background(), cl.ClaimID)
	if err != nil {
		t.Fatalf("AdjudicateStored() error = %v", err)
	}
	if rec.Decision.DecisionType != DecisionRejected {
		t.Errorf("decision = %s, want rejected", rec.Decision.DecisionType)
	}
	if cl.Status != claim.StatusRejected {
		t.Errorf("claim status = %s, want rejected", cl.Status)
	}
}

func TestAdjudicateStoredUnknownClaim(t *testing.T) {
	svc := newTestService(newMemClaimRepo(), newMemPolicyRepo(activePolicy()), newMemAdjRepo())
	if _, err := svc.AdjudicateStored(context.Background(), "CLM-NOPE"); err == nil {
		t.Error("unknown claim should error")
	}
}

func TestAdjudicateStoredUnknownPolicy(t *testing.T) {
	cl := validClaim()
	cl.PolicyNumber = "POL-MISSING"
	svc := newTestService(newMemClaimRepo(cl), newMemPolicyRepo(activePolicy()), newMemAdjRepo())
	if _, err := svc.AdjudicateStored(context.Background(), cl.ClaimID); err == nil {
		t.Error("unknown policy should error")
	}
}

func TestAdjudicateDocument(t *testing.T) {
	adj := newMemAdjRepo()
	svc := newTestService(newMemClaimRepo(), newMemPolicyRepo(activePolicy()), adj)

	doc := `{
		"claim_id": "CLM-DOC-1",
		"policy_number": "POL-12345",
		"claimant_name": "John Doe",
		"claimant_dob": "1980-01-15",
		"service_start_date": "2024-06-15",
		"service_end_date": "2024-06-15",
		"primary_diagnosis": "M54.5",
		"total_billed_amount": 350,
		"provider_name": "Dr. Jane Smith",
		"claim_items": [{"procedure_code": "99213", "billed_amount": 350, "units": 1}]
	}`

	rec, err := svc.AdjudicateDocument(context.Background(), doc, "", "POL-12345")
	if err != nil {
		t.Fatalf("AdjudicateDocument() error = %v", err)
	}
	if rec.ClaimRef != "CLM-DOC-1" {
		t.Errorf("claim ref = %q, want CLM-DOC-1", rec.ClaimRef)
	}

	records, err := svc.ListByClaim(context.Background(), "CLM-DOC-1")
	if err != nil {
		t.Fatalf("ListByClaim() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}
