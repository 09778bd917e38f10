package adjudication

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/claims/claims/internal/domain/claim"
	"github.com/claims/claims/internal/platform/llm"
)

const explanationSystemPrompt = `You are an expert insurance claim communication agent. Your role is to:
1. Generate clear, empathetic explanations for claim decisions
2. Translate technical information into patient-friendly language
3. Provide actionable next steps and guidance
4. Create comprehensive yet understandable reports
5. Address common questions and concerns

Use professional but accessible language. Be empathetic and helpful.`

// FAQEntry is one question/answer pair in the decision letter.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ExplanationResult is the explanation stage's output.
type ExplanationResult struct {
	Summary             string     `json:"summary"`
	DetailedExplanation string     `json:"detailed_explanation"`
	FinancialSummary    string     `json:"financial_summary"`
	FAQ                 []FAQEntry `json:"faq,omitempty"`
	FormattedReport     string     `json:"formatted_report"`
}

// Explainer renders decisions into claimant-facing text. The detailed
// explanation is delegated to the text-generation provider and falls back to
// the decision reasoning.
type Explainer struct {
	provider llm.Provider
	logger   zerolog.Logger
}

func NewExplainer(provider llm.Provider, logger zerolog.Logger) *Explainer {
	return &Explainer{
		provider: provider,
		logger:   logger.With().Str("component", "explainer").Logger(),
	}
}

// Explain produces all claimant-facing text for a decision. Never fails.
func (e *Explainer) Explain(ctx context.Context, cl *claim.Claim, d *Decision) *ExplanationResult {
	summary := buildSummary(cl, d)
	detailed := e.detailedExplanation(ctx, cl, d)
	financial := FormatFinancialSummary(d.Financial)

	return &ExplanationResult{
		Summary:             summary,
		DetailedExplanation: detailed,
		FinancialSummary:    financial,
		FAQ:                 buildFAQ(d.DecisionType),
		FormattedReport:     buildReport(cl, d, summary, detailed, financial),
	}
}

func buildSummary(cl *claim.Claim, d *Decision) string {
	switch d.DecisionType {
	case DecisionApproved:
		return fmt.Sprintf(`Your claim %s has been APPROVED.

Total Billed: $%s
Approved Amount: $%s
Your Responsibility: $%s
Insurance Payment: $%s

Your claim has been processed successfully. Please review the details below.`,
			cl.ClaimID, formatMoney(cl.TotalBilledAmount), formatMoney(d.Financial.ApprovedAmount),
			formatMoney(d.Financial.PatientResponsibility), formatMoney(d.Financial.InsurancePayment))
	case DecisionRejected:
		return fmt.Sprintf(`Your claim %s has been REJECTED.

Total Billed: $%s

Unfortunately, your claim cannot be approved at this time due to issues identified during processing. Please review the explanation below for details on how to proceed.`,
			cl.ClaimID, formatMoney(cl.TotalBilledAmount))
	case DecisionNeedsReview:
		return fmt.Sprintf(`Your claim %s requires MANUAL REVIEW.

Total Billed: $%s

Your claim needs additional review by our claims specialists. We will contact you within 5-7 business days with an update.`,
			cl.ClaimID, formatMoney(cl.TotalBilledAmount))
	default:
		return fmt.Sprintf(`Your claim %s is being processed.

Total Billed: $%s

Please review the details below for more information about your claim status.`,
			cl.ClaimID, formatMoney(cl.TotalBilledAmount))
	}
}

func (e *Explainer) detailedExplanation(ctx context.Context, cl *claim.Claim, d *Decision) string {
	if e.provider == nil {
		return d.Reasoning
	}

	passed, failed := 0, 0
	for _, r := range d.ValidationResults {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}

	prompt := fmt.Sprintf(`Create a detailed, patient-friendly explanation for an insurance claim decision.

CLAIM DETAILS:
- Claim ID: %s
- Patient: %s
- Service Date: %s
- Provider: %s
- Total Billed: $%s

DECISION: %s

TECHNICAL REASONING:
%s

VALIDATION SUMMARY:
- Total Checks: %d
- Passed: %d
- Issues: %d

Please write a clear, empathetic explanation (3-4 paragraphs) that:
1. Explains the decision in simple terms
2. Describes what was checked and why
3. Addresses any concerns the patient might have
4. Provides reassurance and guidance

Use a warm, professional tone. Avoid technical jargon.`,
		cl.ClaimID, cl.ClaimantName, cl.ServiceStartDate.Format("2006-01-02"),
		cl.ProviderName, formatMoney(cl.TotalBilledAmount),
		strings.ToUpper(string(d.DecisionType)), d.Reasoning,
		len(d.ValidationResults), passed, failed)

	explanation, err := e.provider.Generate(ctx, prompt, explanationSystemPrompt)
	if err != nil {
		e.logger.Warn().Err(err).Msg("explanation generation failed, using reasoning")
		return d.Reasoning
	}
	return strings.TrimSpace(explanation)
}

// FormatFinancialSummary renders the breakdown as fixed-width text.
func FormatFinancialSummary(f FinancialBreakdown) string {
	return strings.TrimSpace(fmt.Sprintf(`FINANCIAL BREAKDOWN:

Total Billed Amount:        $%13s

Deductible Applied:         $%13s
Copay Applied:              $%13s
Coinsurance Applied:        $%13s
                            ─────────────────
Patient Responsibility:     $%13s

Insurance Payment:          $%13s
`,
		formatMoney(f.TotalBilled),
		formatMoney(f.DeductibleApplied),
		formatMoney(f.CopayApplied),
		formatMoney(f.CoinsuranceApplied),
		formatMoney(f.PatientResponsibility),
		formatMoney(f.InsurancePayment)))
}

func buildFAQ(decisionType DecisionType) []FAQEntry {
	switch decisionType {
	case DecisionApproved:
		return []FAQEntry{
			{
				Question: "When will I receive payment?",
				Answer:   "Insurance payments are typically processed within 10 business days. You will receive an Explanation of Benefits (EOB) in the mail.",
			},
			{
				Question: "What is my patient responsibility?",
				Answer:   "Your patient responsibility includes your deductible, copay, and coinsurance amounts. This is the amount you owe to your healthcare provider.",
			},
			{
				Question: "Can I appeal this decision?",
				Answer:   "Yes, you have the right to appeal any claim decision. Contact our customer service team for information on the appeals process.",
			},
		}
	case DecisionRejected:
		return []FAQEntry{
			{
				Question: "Why was my claim rejected?",
				Answer:   "Your claim was rejected due to issues identified during processing. Please review the detailed explanation above for specific reasons.",
			},
			{
				Question: "Can I resubmit my claim?",
				Answer:   "Yes, you can resubmit your claim after correcting the identified issues. Make sure all required documentation is complete and accurate.",
			},
			{
				Question: "How do I appeal this decision?",
				Answer:   "You can file an appeal within 180 days of this decision. Contact our appeals department or visit our website for the appeals form and instructions.",
			},
		}
	case DecisionNeedsReview:
		return []FAQEntry{
			{
				Question: "How long will the review take?",
				Answer:   "Manual reviews typically take 5-7 business days. We will contact you if we need additional information.",
			},
			{
				Question: "What happens during manual review?",
				Answer:   "A claims specialist will carefully review your claim, supporting documentation, and policy coverage to make a final decision.",
			},
			{
				Question: "Do I need to do anything?",
				Answer:   "We will contact you if we need additional information. Otherwise, please wait for our review to be completed.",
			},
		}
	default:
		return nil
	}
}

func buildReport(cl *claim.Claim, d *Decision, summary, detailed, financial string) string {
	line := strings.Repeat("=", 80)

	var b strings.Builder
	fmt.Fprintf(&b, `
%s
                    INSURANCE CLAIM PROCESSING REPORT
%s

CLAIM INFORMATION:
%s
Claim ID:           %s
Patient Name:       %s
Policy Number:      %s
Service Date:       %s
Provider:           %s

%s
DECISION SUMMARY:
%s

%s

%s
DETAILED EXPLANATION:
%s

%s

%s
%s

%s
NEXT STEPS:
%s
`,
		line, line,
		strings.Repeat("─", 77),
		cl.ClaimID, cl.ClaimantName, cl.PolicyNumber,
		cl.ServiceStartDate.Format("2006-01-02"), cl.ProviderName,
		line, line, summary,
		line, line, detailed,
		line, financial,
		line, line)

	for i, step := range d.NextSteps {
		fmt.Fprintf(&b, "\n%d. %s", i+1, step)
	}

	fmt.Fprintf(&b, "\n\n%s\n", line)
	b.WriteString("For questions or concerns, please contact our customer service team.\n")
	fmt.Fprintf(&b, "%s\n", line)

	return b.String()
}
