package policy

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists policies.
type Repository interface {
	Create(ctx context.Context, p *Policy) error
	GetByID(ctx context.Context, id uuid.UUID) (*Policy, error)
	GetByNumber(ctx context.Context, policyNumber string) (*Policy, error)
	Update(ctx context.Context, p *Policy) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Policy, int, error)
}
