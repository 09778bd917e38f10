package adjudication

import (
	"time"

	"github.com/google/uuid"
)

// Severity classifies a failed check's weight in decisioning.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// CheckResult is the outcome of one validation check. Results are immutable
// and collected in the fixed check-execution order.
type CheckResult struct {
	CheckName string                 `json:"check_name"`
	Passed    bool                   `json:"passed"`
	Severity  Severity               `json:"severity"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// DecisionType is the adjudication verdict.
type DecisionType string

const (
	DecisionApproved        DecisionType = "approved"
	DecisionRejected        DecisionType = "rejected"
	DecisionPartialApproval DecisionType = "partial_approval"
	DecisionNeedsReview     DecisionType = "needs_review"
	DecisionPendingInfo     DecisionType = "pending_information"
)

// FinancialBreakdown is the monetary outcome of one adjudication run. All
// fields are rounded to 2 decimals and non-negative.
type FinancialBreakdown struct {
	TotalBilled           float64 `json:"total_billed"`
	DeductibleApplied     float64 `json:"deductible_applied"`
	CopayApplied          float64 `json:"copay_applied"`
	CoinsuranceApplied    float64 `json:"coinsurance_applied"`
	PatientResponsibility float64 `json:"patient_responsibility"`
	InsurancePayment      float64 `json:"insurance_payment"`
	ApprovedAmount        float64 `json:"approved_amount"`
}

// Decision is the verdict for a claim, created once per adjudication run and
// immutable thereafter.
type Decision struct {
	ID           uuid.UUID    `json:"id"`
	ClaimID      string       `json:"claim_id"`
	DecisionType DecisionType `json:"decision_type"`
	DecisionDate time.Time    `json:"decision_date"`

	Financial FinancialBreakdown `json:"financial_breakdown"`

	ValidationResults []CheckResult `json:"validation_results"`

	ConfidenceScore float64 `json:"confidence_score"`
	Reasoning       string  `json:"reasoning"`

	Flags              []string `json:"flags,omitempty"`
	MissingInformation []string `json:"missing_information,omitempty"`

	Recommendations []string `json:"recommendations,omitempty"`
	NextSteps       []string `json:"next_steps,omitempty"`

	RequiresManualReview bool    `json:"requires_manual_review"`
	ReviewReason         *string `json:"review_reason,omitempty"`

	ProcessingStages      []string `json:"processing_stages,omitempty"`
	ProcessingTimeSeconds float64  `json:"processing_time_seconds"`
}

// CriticalIssues returns the failed error-severity check results.
func (d *Decision) CriticalIssues() []CheckResult {
	var issues []CheckResult
	for _, v := range d.ValidationResults {
		if !v.Passed && v.Severity == SeverityError {
			issues = append(issues, v)
		}
	}
	return issues
}

// IsAutoApprovable reports whether the decision can proceed without any
// human touch: approved, confident at or above the threshold, no manual
// review and no critical issues.
func (d *Decision) IsAutoApprovable(threshold float64) bool {
	return d.DecisionType == DecisionApproved &&
		d.ConfidenceScore >= threshold &&
		!d.RequiresManualReview &&
		len(d.CriticalIssues()) == 0
}
