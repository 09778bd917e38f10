package reporting

import (
	"strings"
	"testing"
	"time"

	"github.com/claims/claims/internal/domain/adjudication"
	"github.com/claims/claims/internal/domain/claim"
	"github.com/claims/claims/internal/domain/policy"
)

func TestClaimReportSections(t *testing.T) {
	svc := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	cl := &claim.Claim{
		ClaimID:           "CLM-2024-001",
		PolicyNumber:      "POL-12345",
		ClaimantName:      "John Doe",
		ClaimDate:         svc,
		ServiceStartDate:  svc,
		ServiceEndDate:    svc,
		TotalBilledAmount: 1850,
	}
	pol := &policy.Policy{
		PolicyType:       "PPO",
		AnnualDeductible: 1000,
		DeductibleMet:    250,
	}
	d := &adjudication.Decision{
		ClaimID:      "CLM-2024-001",
		DecisionType: adjudication.DecisionApproved,
		Financial: adjudication.FinancialBreakdown{
			TotalBilled: 1850, ApprovedAmount: 1850,
			InsurancePayment: 650, PatientResponsibility: 1200,
		},
		ConfidenceScore: 0.95,
		Reasoning:       "All checks passed.",
		ValidationResults: []adjudication.CheckResult{
			{CheckName: "Amount Validation", Passed: true, Severity: adjudication.SeverityInfo, Message: "Claim amount is valid"},
			{CheckName: "Exclusions Check", Passed: false, Severity: adjudication.SeverityError, Message: "Service is excluded under policy"},
		},
		Recommendations: []string{"Keep all documentation for your records"},
		NextSteps:       []string{"Payment will be processed within 10 business days"},
	}

	report := ClaimReport(cl, pol, d)

	for _, want := range []string{
		"INSURANCE CLAIM PROCESSING REPORT",
		"Status: APPROVED",
		"CLAIM INFORMATION",
		"FINANCIAL SUMMARY",
		"POLICY INFORMATION",
		"DECISION REASONING",
		"All checks passed.",
		"[PASS] Amount Validation",
		"[FAIL] Exclusions Check",
		"RECOMMENDATIONS",
		"NEXT STEPS",
		"Confidence Score: 95%",
		"$1850.00",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestClaimReportWithoutPolicy(t *testing.T) {
	cl := &claim.Claim{ClaimID: "CLM-1", TotalBilledAmount: 100}
	d := &adjudication.Decision{DecisionType: adjudication.DecisionRejected, Reasoning: "rejected"}

	report := ClaimReport(cl, nil, d)
	if strings.Contains(report, "POLICY INFORMATION") {
		t.Error("report should omit the policy section when no policy is given")
	}
	if !strings.Contains(report, "Status: REJECTED") {
		t.Error("report missing decision status")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 50); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	long := strings.Repeat("x", 60)
	if got := truncate(long, 50); len(got) != 53 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncate(long) = %q", got)
	}
}
