package claim

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists claims.
type Repository interface {
	Create(ctx context.Context, c *Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)
	GetByClaimID(ctx context.Context, claimID string) (*Claim, error)
	Update(ctx context.Context, c *Claim) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Claim, int, error)
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Claim, int, error)
}
