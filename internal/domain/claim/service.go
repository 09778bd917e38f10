package claim

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, c *Claim) error {
	if err := validateClaim(c); err != nil {
		return err
	}
	return s.repo.Create(ctx, c)
}

func validateClaim(c *Claim) error {
	if c.ClaimID == "" {
		return fmt.Errorf("claim_id is required")
	}
	if c.PolicyNumber == "" {
		return fmt.Errorf("policy_number is required")
	}
	if c.ClaimantName == "" {
		return fmt.Errorf("claimant_name is required")
	}
	if c.ServiceStartDate.IsZero() || c.ServiceEndDate.IsZero() {
		return fmt.Errorf("service_start_date and service_end_date are required")
	}
	if c.ServiceEndDate.Before(c.ServiceStartDate) {
		return fmt.Errorf("service_end_date precedes service_start_date")
	}
	if c.TotalBilledAmount <= 0 {
		return fmt.Errorf("total_billed_amount must be > 0")
	}
	if len(c.Items) == 0 {
		return fmt.Errorf("at least one claim item is required")
	}
	for i, it := range c.Items {
		if it.ProcedureCode == "" {
			return fmt.Errorf("claim item %d: procedure_code is required", i)
		}
		if it.BilledAmount <= 0 {
			return fmt.Errorf("claim item %d: billed_amount must be > 0", i)
		}
		if it.Units <= 0 {
			return fmt.Errorf("claim item %d: units must be > 0", i)
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByClaimID(ctx context.Context, claimID string) (*Claim, error) {
	return s.repo.GetByClaimID(ctx, claimID)
}

func (s *Service) Update(ctx context.Context, c *Claim) error {
	if err := validateClaim(c); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	switch status {
	case StatusPending, StatusProcessing, StatusApproved, StatusRejected, StatusNeedsReview:
	default:
		return fmt.Errorf("invalid claim status %q", status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]*Claim, int, error) {
	if status != "" {
		return s.repo.ListByStatus(ctx, status, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}
