package adjudication

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/claims/claims/internal/domain/claim"
	"github.com/claims/claims/internal/domain/policy"
	"github.com/claims/claims/internal/platform/llm"
)

// Pipeline run states.
const (
	RunProcessing = "processing"
	RunCompleted  = "completed"
	RunFailed     = "failed"
)

var pipelineStages = []string{"extraction", "validation", "decision", "explanation"}

// StageResult records one stage's execution.
type StageResult struct {
	Stage           string  `json:"stage"`
	Status          string  `json:"status"` // success | error
	Error           string  `json:"error,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Result is the outcome of one pipeline run. A failed run still carries a
// well-formed record with the partial per-stage outputs collected so far.
type Result struct {
	WorkflowID string    `json:"workflow_id"`
	Status     string    `json:"status"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`

	TotalProcessingSeconds float64       `json:"total_processing_time"`
	Stages                 []StageResult `json:"stages"`

	Extraction  *ExtractionResult  `json:"extraction,omitempty"`
	Validation  *ValidationOutcome `json:"validation,omitempty"`
	Decision    *Decision          `json:"decision,omitempty"`
	Explanation *ExplanationResult `json:"explanation,omitempty"`

	Error string `json:"error,omitempty"`

	Consolidated map[string]interface{} `json:"final_output,omitempty"`
}

// Pipeline sequences the four adjudication stages: extraction, validation,
// decision, explanation. Stages run strictly in order; the first stage error
// aborts the run (fail-fast). The pipeline holds no mutable state, so
// concurrent runs are safe.
type Pipeline struct {
	extractor  *Extractor
	classifier *Classifier
	explainer  *Explainer
	logger     zerolog.Logger
	now        func() time.Time
}

// NewPipeline wires the stages around an explicit text-generation provider.
// A nil provider selects the deterministic fallback paths throughout.
func NewPipeline(provider llm.Provider, highValueThreshold float64, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		extractor:  NewExtractor(provider, logger),
		classifier: NewClassifier(provider, highValueThreshold, logger),
		explainer:  NewExplainer(provider, logger),
		logger:     logger.With().Str("component", "pipeline").Logger(),
		now:        time.Now,
	}
}

// Run adjudicates a raw claim document against a policy.
func (p *Pipeline) Run(ctx context.Context, document, medicalReport string, pol *policy.Policy) *Result {
	return p.run(ctx, pol, func(ctx context.Context) (*ExtractionResult, error) {
		return p.extractor.Extract(ctx, document, medicalReport)
	})
}

// RunClaim adjudicates an already-structured claim against a policy. The
// extraction stage reduces to completeness scoring.
func (p *Pipeline) RunClaim(ctx context.Context, cl *claim.Claim, pol *policy.Policy) *Result {
	return p.run(ctx, pol, func(context.Context) (*ExtractionResult, error) {
		return &ExtractionResult{
			Claim:         cl,
			MissingFields: missingFields(cl),
			Confidence:    confidence(cl),
		}, nil
	})
}

func (p *Pipeline) run(ctx context.Context, pol *policy.Policy, extract func(context.Context) (*ExtractionResult, error)) *Result {
	start := p.now()
	res := &Result{
		WorkflowID: "WF-" + start.Format("20060102150405"),
		Status:     RunProcessing,
		StartTime:  start,
	}

	logger := p.logger.With().Str("workflow_id", res.WorkflowID).Logger()
	logger.Info().Msg("starting adjudication workflow")

	// Stage 1/4: extraction
	stageStart := p.now()
	extraction, err := extract(ctx)
	if err != nil {
		p.failStage(res, "extraction", err.Error(), stageStart, logger)
		return res
	}
	res.Extraction = extraction
	p.finishStage(res, "extraction", stageStart, logger)

	cl := extraction.Claim

	// Stage 2/4: validation
	stageStart = p.now()
	outcome := Validate(cl, pol)
	res.Validation = &outcome
	p.finishStage(res, "validation", stageStart, logger)
	logger.Info().
		Str("validation_status", outcome.Status).
		Int("critical_issues", outcome.CriticalCount).
		Int("warnings", outcome.WarningCount).
		Msg("validation completed")

	// Stage 3/4: decision
	stageStart = p.now()
	decision := p.classifier.Decide(ctx, cl, outcome)
	decision.ProcessingStages = pipelineStages
	res.Decision = decision
	p.finishStage(res, "decision", stageStart, logger)

	// Stage 4/4: explanation
	stageStart = p.now()
	res.Explanation = p.explainer.Explain(ctx, cl, decision)
	p.finishStage(res, "explanation", stageStart, logger)

	res.Status = RunCompleted
	res.EndTime = p.now()
	res.TotalProcessingSeconds = res.EndTime.Sub(res.StartTime).Seconds()
	decision.ProcessingTimeSeconds = res.TotalProcessingSeconds
	res.Consolidated = consolidate(cl, res)

	logger.Info().
		Str("decision_type", string(decision.DecisionType)).
		Float64("confidence", decision.ConfidenceScore).
		Float64("duration_seconds", res.TotalProcessingSeconds).
		Msg("workflow completed")

	return res
}

func (p *Pipeline) finishStage(res *Result, stage string, start time.Time, logger zerolog.Logger) {
	d := p.now().Sub(start).Seconds()
	res.Stages = append(res.Stages, StageResult{Stage: stage, Status: "success", DurationSeconds: d})
	logger.Debug().Str("stage", stage).Float64("duration_seconds", d).Msg("stage completed")
}

func (p *Pipeline) failStage(res *Result, stage, msg string, start time.Time, logger zerolog.Logger) {
	d := p.now().Sub(start).Seconds()
	res.Stages = append(res.Stages, StageResult{Stage: stage, Status: "error", Error: msg, DurationSeconds: d})
	res.Status = RunFailed
	res.Error = stage + ": " + msg
	res.EndTime = p.now()
	res.TotalProcessingSeconds = res.EndTime.Sub(res.StartTime).Seconds()
	logger.Error().Str("stage", stage).Str("error", msg).Msg("workflow failed")
}

// consolidate flattens per-stage outputs into one record for external
// consumption. Pure data reshaping.
func consolidate(cl *claim.Claim, res *Result) map[string]interface{} {
	d := res.Decision
	f := d.Financial

	return map[string]interface{}{
		"claim_id":                cl.ClaimID,
		"workflow_id":             res.WorkflowID,
		"processing_timestamp":    res.EndTime.Format(time.RFC3339),
		"processing_time_seconds": res.TotalProcessingSeconds,

		"claim_info": map[string]interface{}{
			"claimant_name": cl.ClaimantName,
			"policy_number": cl.PolicyNumber,
			"service_date":  cl.ServiceStartDate.Format(time.RFC3339),
			"provider":      cl.ProviderName,
			"total_billed":  cl.TotalBilledAmount,
		},

		"decision": map[string]interface{}{
			"type":                   string(d.DecisionType),
			"confidence_score":       d.ConfidenceScore,
			"requires_manual_review": d.RequiresManualReview,
			"flags":                  d.Flags,
		},

		"financial": map[string]interface{}{
			"total_billed":           f.TotalBilled,
			"approved_amount":        f.ApprovedAmount,
			"insurance_payment":      f.InsurancePayment,
			"patient_responsibility": f.PatientResponsibility,
			"deductible_applied":     f.DeductibleApplied,
			"copay_applied":          f.CopayApplied,
			"coinsurance_applied":    f.CoinsuranceApplied,
		},

		"validation_summary": map[string]interface{}{
			"status":          res.Validation.Status,
			"total_checks":    len(res.Validation.Results),
			"critical_issues": res.Validation.CriticalCount,
			"warnings":        res.Validation.WarningCount,
		},

		"summary":              res.Explanation.Summary,
		"detailed_explanation": res.Explanation.DetailedExplanation,
		"financial_summary":    res.Explanation.FinancialSummary,

		"recommendations":     d.Recommendations,
		"next_steps":          d.NextSteps,
		"missing_information": d.MissingInformation,

		"faq": res.Explanation.FAQ,

		"formatted_report": res.Explanation.FormattedReport,
	}
}
