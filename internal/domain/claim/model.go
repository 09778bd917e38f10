package claim

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks a claim through the adjudication workflow.
type Status string

const (
	StatusPending     Status = "pending"
	StatusProcessing  Status = "processing"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusNeedsReview Status = "needs_review"
)

// Item is a single billed service line on a claim.
type Item struct {
	ProcedureCode        string    `json:"procedure_code"`
	ProcedureDescription string    `json:"procedure_description"`
	DiagnosisCode        string    `json:"diagnosis_code"`
	ServiceDate          time.Time `json:"service_date"`
	ProviderName         string    `json:"provider_name"`
	BilledAmount         float64   `json:"billed_amount"`
	Units                int       `json:"units"`
}

// Claim is a submitted insurance claim. ClaimID is the business identifier
// (e.g. CLM-2024-001); ID is the storage key.
type Claim struct {
	ID           uuid.UUID `json:"id"`
	ClaimID      string    `json:"claim_id"`
	PolicyNumber string    `json:"policy_number"`

	ClaimantName string    `json:"claimant_name"`
	ClaimantDOB  time.Time `json:"claimant_dob"`
	ClaimantID   string    `json:"claimant_id"`

	ClaimDate        time.Time `json:"claim_date"`
	ServiceStartDate time.Time `json:"service_start_date"`
	ServiceEndDate   time.Time `json:"service_end_date"`

	PrimaryDiagnosis   string   `json:"primary_diagnosis"`
	SecondaryDiagnoses []string `json:"secondary_diagnoses,omitempty"`
	Items              []Item   `json:"claim_items"`

	TotalBilledAmount float64 `json:"total_billed_amount"`

	ProviderName string  `json:"provider_name"`
	ProviderNPI  string  `json:"provider_npi"`
	FacilityName *string `json:"facility_name,omitempty"`

	MedicalReport   *string `json:"medical_report,omitempty"`
	AdditionalNotes *string `json:"additional_notes,omitempty"`

	Status Status `json:"status"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemTotal sums the billed amounts across all claim items. The claim-level
// total remains authoritative for financial calculation and is never
// reconciled against this sum.
func (c *Claim) ItemTotal() float64 {
	var sum float64
	for _, it := range c.Items {
		sum += it.BilledAmount
	}
	return sum
}

// ProcedureCodes returns the distinct procedure codes billed, blanks dropped,
// in first-occurrence order.
func (c *Claim) ProcedureCodes() []string {
	seen := make(map[string]bool, len(c.Items))
	var codes []string
	for _, it := range c.Items {
		if it.ProcedureCode == "" || seen[it.ProcedureCode] {
			continue
		}
		seen[it.ProcedureCode] = true
		codes = append(codes, it.ProcedureCode)
	}
	return codes
}

// DiagnosisCodes returns the primary diagnosis followed by secondary
// diagnoses, blanks dropped.
func (c *Claim) DiagnosisCodes() []string {
	var codes []string
	if c.PrimaryDiagnosis != "" {
		codes = append(codes, c.PrimaryDiagnosis)
	}
	for _, d := range c.SecondaryDiagnoses {
		if d != "" {
			codes = append(codes, d)
		}
	}
	return codes
}
