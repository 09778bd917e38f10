package claim

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

const claimCols = `id, claim_id, policy_number, claimant_name, claimant_dob, claimant_id,
	claim_date, service_start_date, service_end_date,
	primary_diagnosis, secondary_diagnoses, claim_items, total_billed_amount,
	provider_name, provider_npi, facility_name,
	medical_report, additional_notes, status, metadata, created_at, updated_at`

func scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	var secondary, items, metadata []byte
	err := row.Scan(&c.ID, &c.ClaimID, &c.PolicyNumber, &c.ClaimantName, &c.ClaimantDOB, &c.ClaimantID,
		&c.ClaimDate, &c.ServiceStartDate, &c.ServiceEndDate,
		&c.PrimaryDiagnosis, &secondary, &items, &c.TotalBilledAmount,
		&c.ProviderName, &c.ProviderNPI, &c.FacilityName,
		&c.MedicalReport, &c.AdditionalNotes, &c.Status, &metadata, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(secondary) > 0 {
		if err := json.Unmarshal(secondary, &c.SecondaryDiagnoses); err != nil {
			return nil, fmt.Errorf("decode secondary_diagnoses: %w", err)
		}
	}
	if err := json.Unmarshal(items, &c.Items); err != nil {
		return nil, fmt.Errorf("decode claim_items: %w", err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &c.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &c, nil
}

func (r *repoPG) Create(ctx context.Context, c *Claim) error {
	c.ID = uuid.New()
	if c.Status == "" {
		c.Status = StatusPending
	}

	secondary, err := json.Marshal(c.SecondaryDiagnoses)
	if err != nil {
		return fmt.Errorf("encode secondary_diagnoses: %w", err)
	}
	items, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("encode claim_items: %w", err)
	}
	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO claims (id, claim_id, policy_number, claimant_name, claimant_dob, claimant_id,
			claim_date, service_start_date, service_end_date,
			primary_diagnosis, secondary_diagnoses, claim_items, total_billed_amount,
			provider_name, provider_npi, facility_name,
			medical_report, additional_notes, status, metadata)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		c.ID, c.ClaimID, c.PolicyNumber, c.ClaimantName, c.ClaimantDOB, c.ClaimantID,
		c.ClaimDate, c.ServiceStartDate, c.ServiceEndDate,
		c.PrimaryDiagnosis, secondary, items, c.TotalBilledAmount,
		c.ProviderName, c.ProviderNPI, c.FacilityName,
		c.MedicalReport, c.AdditionalNotes, c.Status, metadata)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return scanClaim(r.pool.QueryRow(ctx, `SELECT `+claimCols+` FROM claims WHERE id = $1`, id))
}

func (r *repoPG) GetByClaimID(ctx context.Context, claimID string) (*Claim, error) {
	return scanClaim(r.pool.QueryRow(ctx, `SELECT `+claimCols+` FROM claims WHERE claim_id = $1`, claimID))
}

func (r *repoPG) Update(ctx context.Context, c *Claim) error {
	secondary, err := json.Marshal(c.SecondaryDiagnoses)
	if err != nil {
		return fmt.Errorf("encode secondary_diagnoses: %w", err)
	}
	items, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("encode claim_items: %w", err)
	}
	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		UPDATE claims SET claimant_name = $2, claimant_dob = $3, claimant_id = $4,
			claim_date = $5, service_start_date = $6, service_end_date = $7,
			primary_diagnosis = $8, secondary_diagnoses = $9, claim_items = $10,
			total_billed_amount = $11, provider_name = $12, provider_npi = $13,
			facility_name = $14, medical_report = $15, additional_notes = $16,
			status = $17, metadata = $18, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.ClaimantName, c.ClaimantDOB, c.ClaimantID,
		c.ClaimDate, c.ServiceStartDate, c.ServiceEndDate,
		c.PrimaryDiagnosis, secondary, items,
		c.TotalBilledAmount, c.ProviderName, c.ProviderNPI,
		c.FacilityName, c.MedicalReport, c.AdditionalNotes,
		c.Status, metadata)
	return err
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE claims SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM claims WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Claim, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM claims`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+claimCols+` FROM claims ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectClaims(rows, total)
}

func (r *repoPG) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Claim, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM claims WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+claimCols+` FROM claims WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectClaims(rows, total)
}

func collectClaims(rows pgx.Rows, total int) ([]*Claim, int, error) {
	var claims []*Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, 0, err
		}
		claims = append(claims, c)
	}
	return claims, total, rows.Err()
}
