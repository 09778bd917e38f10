package adjudication

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/claims/claims/internal/domain/claim"
	"github.com/claims/claims/internal/platform/llm"
)

const decisionSystemPrompt = `You are an expert insurance claim decision agent. Your role is to:
1. Analyze validation results and claim data
2. Generate approval or rejection recommendations
3. Calculate coverage amounts and patient responsibility
4. Assign confidence scores to decisions
5. Flag claims that require manual review
6. Provide clear reasoning for all decisions

Consider all factors including policy compliance, medical necessity, and risk factors.`

const reviewReason = "Critical issues or high-value claim"

// Classifier turns a validation outcome into a Decision. The decision type
// and confidence follow a fixed ordered rule chain driven solely by failed
// check counts; reasoning text is delegated to the text-generation provider
// with a deterministic template fallback.
type Classifier struct {
	provider           llm.Provider
	highValueThreshold float64
	logger             zerolog.Logger
}

func NewClassifier(provider llm.Provider, highValueThreshold float64, logger zerolog.Logger) *Classifier {
	return &Classifier{
		provider:           provider,
		highValueThreshold: highValueThreshold,
		logger:             logger.With().Str("component", "classifier").Logger(),
	}
}

// Decide classifies the claim. It never fails: provider errors degrade to
// template reasoning.
func (c *Classifier) Decide(ctx context.Context, cl *claim.Claim, outcome ValidationOutcome) *Decision {
	var critical, warnings []CheckResult
	for _, r := range outcome.Results {
		if r.Passed {
			continue
		}
		switch r.Severity {
		case SeverityError:
			critical = append(critical, r)
		case SeverityWarning:
			warnings = append(warnings, r)
		}
	}

	// Ordered rule chain: first matching row wins.
	var decisionType DecisionType
	var confidence float64
	switch {
	case len(critical) > 0:
		decisionType = DecisionRejected
		confidence = 0.95
	case len(warnings) > 2:
		decisionType = DecisionNeedsReview
		confidence = 0.70
	case len(warnings) > 0:
		decisionType = DecisionPartialApproval
		confidence = 0.85
	default:
		decisionType = DecisionApproved
		confidence = 0.95
	}

	requiresReview := len(critical) > 0 ||
		len(warnings) > 2 ||
		confidence < 0.80 ||
		outcome.Financial.ApprovedAmount > c.highValueThreshold

	var flags []string
	if requiresReview {
		flags = append(flags, "MANUAL_REVIEW_REQUIRED")
	}
	if outcome.Financial.ApprovedAmount > c.highValueThreshold {
		flags = append(flags, "HIGH_VALUE_CLAIM")
	}
	if len(critical) > 0 {
		flags = append(flags, "CRITICAL_ISSUES_FOUND")
	}

	var missingInfo []string
	for _, r := range outcome.Results {
		if !r.Passed && strings.Contains(strings.ToLower(r.Message), "missing") {
			missingInfo = append(missingInfo, r.CheckName)
		}
	}

	d := &Decision{
		ID:                   uuid.New(),
		ClaimID:              cl.ClaimID,
		DecisionType:         decisionType,
		DecisionDate:         time.Now(),
		Financial:            outcome.Financial,
		ValidationResults:    outcome.Results,
		ConfidenceScore:      confidence,
		Flags:                flags,
		MissingInformation:   missingInfo,
		Recommendations:      buildRecommendations(decisionType, critical, warnings),
		NextSteps:            buildNextSteps(decisionType),
		RequiresManualReview: requiresReview,
	}
	if requiresReview {
		reason := reviewReason
		d.ReviewReason = &reason
	}

	d.Reasoning = c.generateReasoning(ctx, cl, outcome, decisionType, critical, warnings)

	c.logger.Info().
		Str("claim_id", cl.ClaimID).
		Str("decision_type", string(decisionType)).
		Float64("confidence", confidence).
		Bool("requires_manual_review", requiresReview).
		Msg("decision generated")

	return d
}

func (c *Classifier) generateReasoning(
	ctx context.Context,
	cl *claim.Claim,
	outcome ValidationOutcome,
	decisionType DecisionType,
	critical, warnings []CheckResult,
) string {
	if c.provider == nil {
		return fallbackReasoning(decisionType, critical)
	}

	passed := 0
	for _, r := range outcome.Results {
		if r.Passed {
			passed++
		}
	}

	prompt := fmt.Sprintf(`Analyze the following insurance claim and provide detailed reasoning for the decision.

CLAIM INFORMATION:
- Claim ID: %s
- Total Billed Amount: $%s
- Primary Diagnosis: %s
- Service Date: %s

VALIDATION RESULTS:
Total Checks: %d
Passed: %d
Critical Issues: %d
Warnings: %d

CRITICAL ISSUES:
%s

WARNINGS:
%s

DECISION: %s

Provide a clear, professional explanation (2-3 paragraphs) for why this decision was made.
Focus on the key factors that influenced the decision. Be specific about policy compliance and any issues found.`,
		cl.ClaimID, formatMoney(cl.TotalBilledAmount), cl.PrimaryDiagnosis,
		cl.ServiceStartDate.Format("2006-01-02"),
		len(outcome.Results), passed, len(critical), len(warnings),
		formatIssues(critical), formatIssues(warnings),
		strings.ToUpper(string(decisionType)))

	reasoning, err := c.provider.Generate(ctx, prompt, decisionSystemPrompt)
	if err != nil {
		c.logger.Warn().Err(err).Msg("reasoning generation failed, using template")
		return fallbackReasoning(decisionType, critical)
	}
	return strings.TrimSpace(reasoning)
}

func formatIssues(issues []CheckResult) string {
	if len(issues) == 0 {
		return "None"
	}
	lines := make([]string, 0, len(issues))
	for _, issue := range issues {
		lines = append(lines, fmt.Sprintf("- %s: %s", issue.CheckName, issue.Message))
	}
	return strings.Join(lines, "\n")
}

func fallbackReasoning(decisionType DecisionType, critical []CheckResult) string {
	switch decisionType {
	case DecisionApproved:
		return "The claim has passed all validation checks and meets policy requirements. All diagnosis and procedure codes are valid, and the claim amount is within coverage limits. The claim is approved for processing."
	case DecisionRejected:
		names := make([]string, 0, len(critical))
		for _, issue := range critical {
			names = append(names, issue.CheckName)
		}
		return fmt.Sprintf("The claim has been rejected due to critical issues: %s. These issues prevent the claim from being processed and must be resolved before resubmission.", strings.Join(names, ", "))
	case DecisionNeedsReview:
		return "The claim requires manual review due to multiple warnings or potential issues. While no critical errors were found, the complexity of the claim necessitates human oversight before a final decision can be made."
	default:
		return "The claim has been partially approved. Some services may be covered while others require additional review or documentation."
	}
}

func buildRecommendations(decisionType DecisionType, critical, warnings []CheckResult) []string {
	var recs []string

	switch decisionType {
	case DecisionRejected:
		recs = append(recs,
			"Review and correct all critical issues identified in the validation results",
			"Ensure all required documentation is complete and accurate",
			"Verify policy coverage and eligibility before resubmitting")
	case DecisionNeedsReview:
		recs = append(recs,
			"Provide additional documentation to support the claim",
			"Contact the insurance provider for clarification on coverage",
			"Consider appealing if you believe the claim should be covered")
	case DecisionApproved:
		recs = append(recs,
			"Review the approved amount and patient responsibility",
			"Keep all documentation for your records",
			"Payment will be processed according to policy terms")
	}

	// Issue-targeted entries: critical issues first, then warnings.
	for _, issue := range append(append([]CheckResult{}, critical...), warnings...) {
		name := strings.ToLower(issue.CheckName)
		switch {
		case strings.Contains(name, "diagnosis"):
			recs = append(recs, "Verify diagnosis codes with healthcare provider")
		case strings.Contains(name, "procedure"):
			recs = append(recs, "Confirm procedure codes match services rendered")
		case strings.Contains(name, "authorization"):
			recs = append(recs, "Obtain required pre-authorization before services")
		}
	}

	return dedupCap(recs, 5)
}

func buildNextSteps(decisionType DecisionType) []string {
	switch decisionType {
	case DecisionRejected:
		return []string{
			"Correct identified issues and resubmit claim",
			"Contact provider for missing information",
			"Appeal decision if you disagree with rejection",
		}
	case DecisionNeedsReview:
		return []string{
			"Wait for manual review by claims specialist",
			"Provide additional documentation if requested",
			"Expected review time: 5-7 business days",
		}
	case DecisionApproved:
		return []string{
			"Payment will be processed within 10 business days",
			"You will receive an Explanation of Benefits (EOB)",
			"Pay any patient responsibility amounts to provider",
		}
	default:
		return nil
	}
}

// dedupCap removes duplicates keeping first-occurrence order, then caps the
// list length.
func dedupCap(items []string, max int) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}
