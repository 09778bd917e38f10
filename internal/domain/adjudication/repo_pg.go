package adjudication

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const recordCols = `id, workflow_id, claim_ref, status, error, decision, report, processing_seconds, created_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	var decision []byte
	err := row.Scan(&r.ID, &r.WorkflowID, &r.ClaimRef, &r.Status, &r.Error,
		&decision, &r.Report, &r.ProcessingSeconds, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(decision) > 0 {
		if err := json.Unmarshal(decision, &r.Decision); err != nil {
			return nil, fmt.Errorf("decode decision: %w", err)
		}
	}
	return &r, nil
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()

	var decision []byte
	if rec.Decision != nil {
		var err error
		decision, err = json.Marshal(rec.Decision)
		if err != nil {
			return fmt.Errorf("encode decision: %w", err)
		}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO adjudications (id, workflow_id, claim_ref, status, error, decision, report, processing_seconds)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.ID, rec.WorkflowID, rec.ClaimRef, rec.Status, rec.Error,
		decision, rec.Report, rec.ProcessingSeconds)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return scanRecord(r.pool.QueryRow(ctx, `SELECT `+recordCols+` FROM adjudications WHERE id = $1`, id))
}

func (r *repoPG) ListByClaim(ctx context.Context, claimRef string) ([]*Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordCols+` FROM adjudications WHERE claim_ref = $1 ORDER BY created_at DESC`, claimRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
