package policy

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Coverage holds a policy's terms for one service category.
type Coverage struct {
	Category              string   `json:"category"`
	AnnualLimit           *float64 `json:"annual_limit,omitempty"`
	PerVisitLimit         *float64 `json:"per_visit_limit,omitempty"`
	CopayAmount           float64  `json:"copay_amount"`
	CoinsurancePercentage float64  `json:"coinsurance_percentage"`
	DeductibleApplies     bool     `json:"deductible_applies"`
	RequiresPreauth       bool     `json:"requires_preauth"`
	CoveredProcedures     []string `json:"covered_procedures,omitempty"`
}

// Exclusion is a policy clause barring payment for specific codes.
type Exclusion struct {
	ExclusionType string   `json:"exclusion_type"`
	Description   string   `json:"description"`
	ExcludedCodes []string `json:"excluded_codes,omitempty"`
}

// Policy is the coverage contract governing a claim. It is a read-only input
// to validation and financial calculation; the adjudication pipeline never
// mutates it.
type Policy struct {
	ID               uuid.UUID `json:"id"`
	PolicyNumber     string    `json:"policy_number"`
	PolicyHolderName string    `json:"policy_holder_name"`

	EffectiveDate  time.Time `json:"effective_date"`
	ExpirationDate time.Time `json:"expiration_date"`

	AnnualDeductible float64 `json:"annual_deductible"`
	DeductibleMet    float64 `json:"deductible_met"`
	OutOfPocketMax   float64 `json:"out_of_pocket_max"`
	OutOfPocketMet   float64 `json:"out_of_pocket_met"`

	Coverages  []Coverage  `json:"coverages"`
	Exclusions []Exclusion `json:"exclusions,omitempty"`

	PolicyType  string `json:"policy_type"`
	NetworkType string `json:"network_type"`

	RequiresReferral  bool `json:"requires_referral"`
	EmergencyCoverage bool `json:"emergency_coverage"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the policy covers the given instant.
func (p *Policy) IsActive(at time.Time) bool {
	if p.EffectiveDate.IsZero() || p.ExpirationDate.IsZero() {
		return false
	}
	return !at.Before(p.EffectiveDate) && !at.After(p.ExpirationDate)
}

// CoverageForCategory returns the coverage entry for a service category,
// matched case-insensitively, or nil.
func (p *Policy) CoverageForCategory(category string) *Coverage {
	for i := range p.Coverages {
		if strings.EqualFold(p.Coverages[i].Category, category) {
			return &p.Coverages[i]
		}
	}
	return nil
}

// IsDiagnosisExcluded reports whether a diagnosis code appears in any
// exclusion clause.
func (p *Policy) IsDiagnosisExcluded(code string) bool {
	return p.codeExcluded(code)
}

// IsProcedureExcluded reports whether a procedure code appears in any
// exclusion clause.
func (p *Policy) IsProcedureExcluded(code string) bool {
	return p.codeExcluded(code)
}

func (p *Policy) codeExcluded(code string) bool {
	if code == "" {
		return false
	}
	for _, excl := range p.Exclusions {
		for _, c := range excl.ExcludedCodes {
			if c == code {
				return true
			}
		}
	}
	return false
}

// RequiresPreauth reports whether any coverage entry requires
// pre-authorization.
func (p *Policy) RequiresPreauth() bool {
	for _, c := range p.Coverages {
		if c.RequiresPreauth {
			return true
		}
	}
	return false
}
