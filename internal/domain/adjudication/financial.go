package adjudication

import (
	"math"

	"github.com/claims/claims/internal/domain/claim"
	"github.com/claims/claims/internal/domain/policy"
)

// Default terms applied when the policy carries no coverage entries.
const (
	defaultCoinsurancePct = 20.0
	defaultCopay          = 0.0
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculateFinancials computes the financial breakdown for a claim under a
// policy. Coinsurance and copay terms come from the policy's first coverage
// entry; absent fields default to standard values. The function is pure and
// never fails: empty input yields a degenerate all-zero breakdown.
func CalculateFinancials(cl *claim.Claim, pol *policy.Policy) FinancialBreakdown {
	var totalBilled float64
	if cl != nil {
		totalBilled = cl.TotalBilledAmount
	}

	var annualDeductible, deductibleMet float64
	coinsurancePct := defaultCoinsurancePct
	copay := defaultCopay
	if pol != nil {
		annualDeductible = pol.AnnualDeductible
		deductibleMet = pol.DeductibleMet
		if len(pol.Coverages) > 0 {
			coinsurancePct = pol.Coverages[0].CoinsurancePercentage
			copay = pol.Coverages[0].CopayAmount
		}
	}

	remainingDeductible := math.Max(0, annualDeductible-deductibleMet)
	deductibleApplied := math.Min(remainingDeductible, totalBilled)

	amountAfterDeductible := totalBilled - deductibleApplied
	coinsuranceApplied := amountAfterDeductible * coinsurancePct / 100

	patientResponsibility := deductibleApplied + coinsuranceApplied + copay
	insurancePayment := totalBilled - patientResponsibility

	return FinancialBreakdown{
		TotalBilled:           round2(totalBilled),
		DeductibleApplied:     round2(deductibleApplied),
		CopayApplied:          round2(copay),
		CoinsuranceApplied:    round2(coinsuranceApplied),
		PatientResponsibility: round2(patientResponsibility),
		InsurancePayment:      round2(math.Max(0, insurancePayment)),
		ApprovedAmount:        round2(totalBilled),
	}
}
