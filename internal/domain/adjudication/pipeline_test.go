package adjudication

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/claims/claims/internal/domain/policy"
)

func newTestPipeline() *Pipeline {
	return NewPipeline(nil, testHighValueThreshold, zerolog.Nop())
}

func TestPipelineCompletesCleanClaim(t *testing.T) {
	res := newTestPipeline().RunClaim(context.Background(), validClaim(), activePolicy())

	if res.Status != RunCompleted {
		t.Fatalf("status = %q (error %q), want completed", res.Status, res.Error)
	}
	if len(res.Stages) != 4 {
		t.Fatalf("got %d stages, want 4", len(res.Stages))
	}
	for i, want := range pipelineStages {
		if res.Stages[i].Stage != want || res.Stages[i].Status != "success" {
			t.Errorf("stage %d = %+v, want %s/success", i, res.Stages[i], want)
		}
	}
	if res.Decision == nil || res.Decision.DecisionType != DecisionApproved {
		t.Errorf("decision = %+v, want approved", res.Decision)
	}
	if res.Explanation == nil || res.Explanation.FormattedReport == "" {
		t.Error("explanation stage produced no report")
	}
	if res.WorkflowID == "" || res.WorkflowID[:3] != "WF-" {
		t.Errorf("workflow id = %q", res.WorkflowID)
	}
}

func TestPipelineFailFastOnEmptyDocument(t *testing.T) {
	res := newTestPipeline().Run(context.Background(), "", "", activePolicy())

	if res.Status != RunFailed {
		t.Fatalf("status = %q, want failed", res.Status)
	}
	if len(res.Stages) != 1 || res.Stages[0].Stage != "extraction" || res.Stages[0].Status != "error" {
		t.Errorf("stages = %+v, want single failed extraction", res.Stages)
	}
	if res.Error == "" {
		t.Error("failed run must record the stage error")
	}
	if res.Validation != nil || res.Decision != nil || res.Explanation != nil {
		t.Error("downstream stages must not run after a failure")
	}
}

func TestPipelineExcludedDiagnosisRejects(t *testing.T) {
	pol := activePolicy()
	pol.Exclusions = []policy.Exclusion{{ExclusionType: "cosmetic", ExcludedCodes: []string{"M54.5"}}}

	res := newTestPipeline().RunClaim(context.Background(), validClaim(), pol)

	if res.Status != RunCompleted {
		t.Fatalf("status = %q, want completed", res.Status)
	}
	if res.Decision.DecisionType != DecisionRejected {
		t.Errorf("decision = %s, want rejected", res.Decision.DecisionType)
	}
	if res.Decision.ConfidenceScore != 0.95 {
		t.Errorf("confidence = %v, want 0.95", res.Decision.ConfidenceScore)
	}
}

func TestPipelineMissingPreauthPartiallyApproves(t *testing.T) {
	pol := activePolicy()
	pol.Coverages[0].RequiresPreauth = true

	res := newTestPipeline().RunClaim(context.Background(), validClaim(), pol)

	if res.Decision.DecisionType != DecisionPartialApproval {
		t.Errorf("decision = %s, want partial_approval", res.Decision.DecisionType)
	}
	if res.Decision.ConfidenceScore != 0.85 {
		t.Errorf("confidence = %v, want 0.85", res.Decision.ConfidenceScore)
	}
}

func TestPipelineConsolidatedResult(t *testing.T) {
	res := newTestPipeline().RunClaim(context.Background(), validClaim(), activePolicy())

	out := res.Consolidated
	if out == nil {
		t.Fatal("completed run must carry a consolidated result")
	}
	if out["claim_id"] != "CLM-2024-001" || out["workflow_id"] != res.WorkflowID {
		t.Errorf("identifiers = %v/%v", out["claim_id"], out["workflow_id"])
	}

	decision, ok := out["decision"].(map[string]interface{})
	if !ok || decision["type"] != string(DecisionApproved) {
		t.Errorf("decision block = %v", out["decision"])
	}
	financial, ok := out["financial"].(map[string]interface{})
	if !ok || financial["total_billed"] != res.Decision.Financial.TotalBilled {
		t.Errorf("financial block = %v", out["financial"])
	}
	summary, ok := out["validation_summary"].(map[string]interface{})
	if !ok || summary["total_checks"] != 8 {
		t.Errorf("validation summary = %v", out["validation_summary"])
	}
	if out["formatted_report"] != res.Explanation.FormattedReport {
		t.Error("formatted_report must come from the explanation stage")
	}
}

func TestPipelineEndToEndDocument(t *testing.T) {
	doc := `{
		"claim_id": "CLM-2024-042",
		"policy_number": "POL-12345",
		"claimant_name": "John Doe",
		"claimant_dob": "1980-01-15",
		"service_start_date": "2024-06-15",
		"service_end_date": "2024-06-15",
		"primary_diagnosis": "M54.5",
		"total_billed_amount": 350,
		"provider_name": "Dr. Jane Smith",
		"provider_npi": "1234567890",
		"claim_items": [{"procedure_code": "99213", "billed_amount": 350, "units": 1}]
	}`

	res := newTestPipeline().Run(context.Background(), doc, "", activePolicy())

	if res.Status != RunCompleted {
		t.Fatalf("status = %q (error %q), want completed", res.Status, res.Error)
	}
	if res.Extraction.Claim.ClaimID != "CLM-2024-042" {
		t.Errorf("extracted claim id = %q", res.Extraction.Claim.ClaimID)
	}
	if res.Decision.DecisionType != DecisionApproved {
		t.Errorf("decision = %s, want approved", res.Decision.DecisionType)
	}
}
