package adjudication

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one persisted adjudication run.
type Record struct {
	ID         uuid.UUID `json:"id"`
	WorkflowID string    `json:"workflow_id"`
	ClaimRef   string    `json:"claim_ref"` // business claim id
	Status     string    `json:"status"`    // completed | failed
	Error      *string   `json:"error,omitempty"`

	Decision          *Decision `json:"decision,omitempty"`
	Report            string    `json:"report,omitempty"`
	ProcessingSeconds float64   `json:"processing_time_seconds"`

	CreatedAt time.Time `json:"created_at"`
}

// Repository persists adjudication runs.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListByClaim(ctx context.Context, claimRef string) ([]*Record, error)
}
