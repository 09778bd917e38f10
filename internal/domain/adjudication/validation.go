package adjudication

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/claims/claims/internal/domain/claim"
	"github.com/claims/claims/internal/domain/policy"
)

const maxReasonableAmount = 1_000_000

// ValidationOutcome is the result of one full validation run: the ordered
// check results, the overall status, and the financial breakdown computed as
// a side product of the same run.
type ValidationOutcome struct {
	Status        string             `json:"validation_status"` // passed | failed
	Results       []CheckResult      `json:"validation_results"`
	Financial     FinancialBreakdown `json:"financial_breakdown"`
	CriticalCount int                `json:"critical_issues_count"`
	WarningCount  int                `json:"warnings_count"`
}

type checkFunc func(cl *claim.Claim, pol *policy.Policy) CheckResult

// The check battery runs in this exact order; downstream decisioning relies
// on the result list order being stable.
var checks = []checkFunc{
	checkPolicyActive,
	checkCoverageEligibility,
	checkCoverageLimits,
	checkExclusions,
	checkPreauthorization,
	checkDiagnosisCodes,
	checkProcedureCodes,
	checkAmounts,
}

// Validate runs the fixed battery of checks against a claim and policy. Each
// check is pure and independent; malformed input degrades to a failed check,
// never a returned error. Overall status is "passed" iff no error-severity
// check failed.
func Validate(cl *claim.Claim, pol *policy.Policy) ValidationOutcome {
	if cl == nil {
		cl = &claim.Claim{}
	}
	if pol == nil {
		pol = &policy.Policy{}
	}

	results := make([]CheckResult, 0, len(checks))
	for _, check := range checks {
		results = append(results, check(cl, pol))
	}

	var critical, warnings int
	for _, r := range results {
		if r.Passed {
			continue
		}
		switch r.Severity {
		case SeverityError:
			critical++
		case SeverityWarning:
			warnings++
		}
	}

	status := "passed"
	if critical > 0 {
		status = "failed"
	}

	return ValidationOutcome{
		Status:        status,
		Results:       results,
		Financial:     CalculateFinancials(cl, pol),
		CriticalCount: critical,
		WarningCount:  warnings,
	}
}

func pass(name, message string, details map[string]interface{}) CheckResult {
	return CheckResult{CheckName: name, Passed: true, Severity: SeverityInfo, Message: message, Details: details}
}

func fail(name string, severity Severity, message string, details map[string]interface{}) CheckResult {
	return CheckResult{CheckName: name, Passed: false, Severity: severity, Message: message, Details: details}
}

func checkPolicyActive(cl *claim.Claim, pol *policy.Policy) CheckResult {
	const name = "Policy Active Status"

	if pol.EffectiveDate.IsZero() || pol.ExpirationDate.IsZero() || cl.ServiceStartDate.IsZero() {
		return fail(name, SeverityError,
			"Unable to verify policy status: missing or unparsable dates", nil)
	}

	details := map[string]interface{}{
		"effective_date":  pol.EffectiveDate.Format(time.RFC3339),
		"expiration_date": pol.ExpirationDate.Format(time.RFC3339),
		"service_date":    cl.ServiceStartDate.Format(time.RFC3339),
	}
	if !pol.IsActive(cl.ServiceStartDate) {
		return fail(name, SeverityError, "Policy not active on service date", details)
	}
	return pass(name, "Policy is active on service date", details)
}

func checkCoverageEligibility(_ *claim.Claim, pol *policy.Policy) CheckResult {
	const name = "Coverage Eligibility"

	details := map[string]interface{}{"coverages_count": len(pol.Coverages)}
	if len(pol.Coverages) == 0 {
		return fail(name, SeverityError, "No coverage found for services", details)
	}
	return pass(name, "Services are eligible for coverage", details)
}

func checkCoverageLimits(cl *claim.Claim, pol *policy.Policy) CheckResult {
	const name = "Coverage Limits"

	if len(pol.Coverages) == 0 || pol.Coverages[0].AnnualLimit == nil {
		return pass(name, "No specific limits to check", nil)
	}

	limit := *pol.Coverages[0].AnnualLimit
	details := map[string]interface{}{
		"billed_amount": cl.TotalBilledAmount,
		"annual_limit":  limit,
	}
	if cl.TotalBilledAmount > limit {
		return fail(name, SeverityWarning, "Claim exceeds annual limit", details)
	}
	return pass(name, "Claim amount within coverage limits", details)
}

func checkExclusions(cl *claim.Claim, pol *policy.Policy) CheckResult {
	const name = "Exclusions Check"

	details := map[string]interface{}{"exclusions_count": len(pol.Exclusions)}
	if pol.IsDiagnosisExcluded(cl.PrimaryDiagnosis) {
		return fail(name, SeverityError, "Service is excluded under policy", details)
	}
	return pass(name, "No exclusions apply", details)
}

func checkPreauthorization(cl *claim.Claim, pol *policy.Policy) CheckResult {
	const name = "Pre-authorization"

	if !pol.RequiresPreauth() {
		return pass(name, "Pre-authorization not required", nil)
	}

	details := map[string]interface{}{"requires_preauth": true}
	if cl.Metadata["preauthorization_number"] == nil {
		return fail(name, SeverityWarning, "Pre-authorization may be required", details)
	}
	return pass(name, "Pre-authorization obtained", details)
}

func checkDiagnosisCodes(cl *claim.Claim, _ *policy.Policy) CheckResult {
	const name = "Diagnosis Code Validation"

	code := cl.PrimaryDiagnosis
	details := map[string]interface{}{"primary_diagnosis": code}
	first, _ := utf8.DecodeRuneInString(code)
	if len(code) < 3 || !unicode.IsLetter(first) {
		return fail(name, SeverityWarning, "Invalid or missing diagnosis code", details)
	}
	return pass(name, "Valid diagnosis code format", details)
}

func checkProcedureCodes(cl *claim.Claim, _ *policy.Policy) CheckResult {
	const name = "Procedure Code Validation"

	if len(cl.Items) == 0 {
		return fail(name, SeverityError, "No procedure codes found", nil)
	}

	details := map[string]interface{}{"items_count": len(cl.Items)}
	for _, it := range cl.Items {
		if it.ProcedureCode == "" {
			return fail(name, SeverityWarning, "Some procedure codes missing", details)
		}
	}
	return pass(name, "All procedure codes present", details)
}

func checkAmounts(cl *claim.Claim, _ *policy.Policy) CheckResult {
	const name = "Amount Validation"

	total := cl.TotalBilledAmount
	details := map[string]interface{}{"total_billed_amount": total}
	if total <= 0 || total >= maxReasonableAmount {
		return fail(name, SeverityError, "Claim amount is invalid or unreasonable", details)
	}
	return pass(name, "Claim amount is valid", details)
}
