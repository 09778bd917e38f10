package adjudication

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/claims/claims/internal/domain/claim"
	"github.com/claims/claims/internal/domain/policy"
)

// Service runs the adjudication pipeline against stored claims and policies
// and persists the outcome.
type Service struct {
	pipeline *Pipeline
	repo     Repository
	claims   claim.Repository
	policies policy.Repository
	logger   zerolog.Logger
}

func NewService(pipeline *Pipeline, repo Repository, claims claim.Repository, policies policy.Repository, logger zerolog.Logger) *Service {
	return &Service{
		pipeline: pipeline,
		repo:     repo,
		claims:   claims,
		policies: policies,
		logger:   logger.With().Str("component", "adjudication_service").Logger(),
	}
}

// AdjudicateStored runs the pipeline on a stored claim, identified by row id
// or business claim id, against the policy the claim names.
func (s *Service) AdjudicateStored(ctx context.Context, claimRef string) (*Record, error) {
	cl, err := s.lookupClaim(ctx, claimRef)
	if err != nil {
		return nil, fmt.Errorf("load claim: %w", err)
	}

	pol, err := s.policies.GetByNumber(ctx, cl.PolicyNumber)
	if err != nil {
		return nil, fmt.Errorf("load policy %s: %w", cl.PolicyNumber, err)
	}

	if err := s.claims.UpdateStatus(ctx, cl.ID, claim.StatusProcessing); err != nil {
		return nil, fmt.Errorf("mark claim processing: %w", err)
	}

	res := s.pipeline.RunClaim(ctx, cl, pol)
	rec, err := s.persistRun(ctx, cl.ClaimID, res)
	if err != nil {
		return nil, err
	}

	if err := s.claims.UpdateStatus(ctx, cl.ID, statusForRun(res)); err != nil {
		return nil, fmt.Errorf("update claim status: %w", err)
	}
	return rec, nil
}

// AdjudicateDocument runs the pipeline on an inline claim document against
// an explicit policy. Nothing is read from the claims store; the run itself
// is still persisted.
func (s *Service) AdjudicateDocument(ctx context.Context, document, medicalReport, policyNumber string) (*Record, error) {
	pol, err := s.policies.GetByNumber(ctx, policyNumber)
	if err != nil {
		return nil, fmt.Errorf("load policy %s: %w", policyNumber, err)
	}

	res := s.pipeline.Run(ctx, document, medicalReport, pol)

	claimRef := ""
	if res.Extraction != nil && res.Extraction.Claim != nil {
		claimRef = res.Extraction.Claim.ClaimID
	}
	return s.persistRun(ctx, claimRef, res)
}

func (s *Service) persistRun(ctx context.Context, claimRef string, res *Result) (*Record, error) {
	rec := &Record{
		WorkflowID:        res.WorkflowID,
		ClaimRef:          claimRef,
		Status:            res.Status,
		Decision:          res.Decision,
		ProcessingSeconds: res.TotalProcessingSeconds,
	}
	if res.Error != "" {
		msg := res.Error
		rec.Error = &msg
	}
	if res.Explanation != nil {
		rec.Report = res.Explanation.FormattedReport
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist adjudication: %w", err)
	}

	s.logger.Info().
		Str("workflow_id", rec.WorkflowID).
		Str("claim_ref", claimRef).
		Str("status", rec.Status).
		Msg("adjudication persisted")
	return rec, nil
}

func (s *Service) lookupClaim(ctx context.Context, ref string) (*claim.Claim, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.claims.GetByID(ctx, id)
	}
	return s.claims.GetByClaimID(ctx, ref)
}

// statusForRun maps a pipeline outcome onto the claim lifecycle. Partial
// approvals count as approved; a failed run parks the claim for review.
func statusForRun(res *Result) claim.Status {
	if res.Status != RunCompleted || res.Decision == nil {
		return claim.StatusNeedsReview
	}
	switch res.Decision.DecisionType {
	case DecisionApproved, DecisionPartialApproval:
		return claim.StatusApproved
	case DecisionRejected:
		return claim.StatusRejected
	default:
		return claim.StatusNeedsReview
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByClaim(ctx context.Context, claimRef string) ([]*Record, error) {
	return s.repo.ListByClaim(ctx, claimRef)
}
