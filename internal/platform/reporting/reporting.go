// Package reporting renders plain-text claim processing reports for CLI
// output and the report endpoint.
package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/claims/claims/internal/domain/adjudication"
	"github.com/claims/claims/internal/domain/claim"
	"github.com/claims/claims/internal/domain/policy"
)

// ClaimReport renders the full processing report for a claim, its policy,
// and the decision reached.
func ClaimReport(cl *claim.Claim, pol *policy.Policy, d *adjudication.Decision) string {
	var b strings.Builder
	line := strings.Repeat("=", 78)
	section := strings.Repeat("-", 78)

	fmt.Fprintf(&b, "%s\n%s\n%s\n\n", line, center("INSURANCE CLAIM PROCESSING REPORT"), line)
	fmt.Fprintf(&b, "Status: %s\n\n", strings.ToUpper(string(d.DecisionType)))

	b.WriteString("CLAIM INFORMATION\n" + section + "\n")
	writeRow(&b, "Claim ID:", cl.ClaimID)
	writeRow(&b, "Claimant:", cl.ClaimantName)
	writeRow(&b, "Policy Number:", cl.PolicyNumber)
	writeRow(&b, "Claim Date:", cl.ClaimDate.Format("2006-01-02"))
	writeRow(&b, "Service Date:", fmt.Sprintf("%s to %s",
		cl.ServiceStartDate.Format("2006-01-02"), cl.ServiceEndDate.Format("2006-01-02")))
	writeRow(&b, "Total Billed:", money(cl.TotalBilledAmount))
	b.WriteString("\n")

	b.WriteString("FINANCIAL SUMMARY\n" + section + "\n")
	writeRow(&b, "Total Billed Amount:", money(d.Financial.TotalBilled))
	writeRow(&b, "Approved Amount:", money(d.Financial.ApprovedAmount))
	writeRow(&b, "Insurance Payment:", money(d.Financial.InsurancePayment))
	writeRow(&b, "Patient Responsibility:", money(d.Financial.PatientResponsibility))
	b.WriteString("\n")
	writeRow(&b, "Deductible Applied:", money(d.Financial.DeductibleApplied))
	writeRow(&b, "Copay Applied:", money(d.Financial.CopayApplied))
	writeRow(&b, "Coinsurance Applied:", money(d.Financial.CoinsuranceApplied))
	b.WriteString("\n")

	if pol != nil {
		b.WriteString("POLICY INFORMATION\n" + section + "\n")
		writeRow(&b, "Policy Type:", pol.PolicyType)
		writeRow(&b, "Annual Deductible:", money(pol.AnnualDeductible))
		writeRow(&b, "Deductible Met:", money(pol.DeductibleMet))
		writeRow(&b, "Out-of-Pocket Max:", money(pol.OutOfPocketMax))
		writeRow(&b, "Out-of-Pocket Met:", money(pol.OutOfPocketMet))
		b.WriteString("\n")
	}

	b.WriteString("DECISION REASONING\n" + section + "\n")
	b.WriteString(d.Reasoning + "\n\n")

	if len(d.ValidationResults) > 0 {
		b.WriteString("VALIDATION RESULTS\n" + section + "\n")
		for _, r := range d.ValidationResults {
			status := "PASS"
			if !r.Passed {
				status = "FAIL"
			}
			fmt.Fprintf(&b, "  [%s] %-28s %s\n", status, r.CheckName, truncate(r.Message, 50))
		}
		b.WriteString("\n")
	}

	writeList(&b, "RECOMMENDATIONS", section, d.Recommendations)
	writeList(&b, "NEXT STEPS", section, d.NextSteps)

	fmt.Fprintf(&b, "%s\nReport Generated: %s\n", line, time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Confidence Score: %.0f%% | Processing Time: %.2fs\n%s\n",
		d.ConfidenceScore*100, d.ProcessingTimeSeconds, line)

	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "  %-26s %s\n", label, value)
}

func writeList(b *strings.Builder, title, section string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(title + "\n" + section + "\n")
	for i, item := range items {
		fmt.Fprintf(b, "  %d. %s\n", i+1, item)
	}
	b.WriteString("\n")
}

func money(v float64) string {
	return "$" + fmt.Sprintf("%.2f", v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func center(s string) string {
	pad := (78 - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}
