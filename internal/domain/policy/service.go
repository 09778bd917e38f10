package policy

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

func (s *Service) Create(ctx context.Context, p *Policy) error {
	if p.PolicyNumber == "" {
		return fmt.Errorf("policy_number is required")
	}
	if p.EffectiveDate.IsZero() || p.ExpirationDate.IsZero() {
		return fmt.Errorf("effective_date and expiration_date are required")
	}
	if p.ExpirationDate.Before(p.EffectiveDate) {
		return fmt.Errorf("expiration_date precedes effective_date")
	}
	if p.AnnualDeductible < 0 {
		return fmt.Errorf("annual_deductible must be >= 0")
	}
	if p.DeductibleMet < 0 {
		return fmt.Errorf("deductible_met must be >= 0")
	}
	if len(p.Coverages) == 0 {
		return fmt.Errorf("at least one coverage entry is required")
	}
	for i, c := range p.Coverages {
		if c.Category == "" {
			return fmt.Errorf("coverage %d: category is required", i)
		}
		if c.CoinsurancePercentage < 0 || c.CoinsurancePercentage > 100 {
			return fmt.Errorf("coverage %d: coinsurance_percentage must be 0-100", i)
		}
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Policy, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, policyNumber string) (*Policy, error) {
	return s.repo.GetByNumber(ctx, policyNumber)
}

func (s *Service) Update(ctx context.Context, p *Policy) error {
	if p.ExpirationDate.Before(p.EffectiveDate) {
		return fmt.Errorf("expiration_date precedes effective_date")
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Policy, int, error) {
	return s.repo.List(ctx, limit, offset)
}
