package policy

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

const policyCols = `id, policy_number, policy_holder_name, effective_date, expiration_date,
	annual_deductible, deductible_met, out_of_pocket_max, out_of_pocket_met,
	coverages, exclusions, policy_type, network_type,
	requires_referral, emergency_coverage, metadata, created_at, updated_at`

func scanPolicy(row pgx.Row) (*Policy, error) {
	var p Policy
	var coverages, exclusions, metadata []byte
	err := row.Scan(&p.ID, &p.PolicyNumber, &p.PolicyHolderName, &p.EffectiveDate, &p.ExpirationDate,
		&p.AnnualDeductible, &p.DeductibleMet, &p.OutOfPocketMax, &p.OutOfPocketMet,
		&coverages, &exclusions, &p.PolicyType, &p.NetworkType,
		&p.RequiresReferral, &p.EmergencyCoverage, &metadata, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(coverages, &p.Coverages); err != nil {
		return nil, fmt.Errorf("decode coverages: %w", err)
	}
	if len(exclusions) > 0 {
		if err := json.Unmarshal(exclusions, &p.Exclusions); err != nil {
			return nil, fmt.Errorf("decode exclusions: %w", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Policy) error {
	p.ID = uuid.New()

	coverages, err := json.Marshal(p.Coverages)
	if err != nil {
		return fmt.Errorf("encode coverages: %w", err)
	}
	exclusions, err := json.Marshal(p.Exclusions)
	if err != nil {
		return fmt.Errorf("encode exclusions: %w", err)
	}
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO policies (id, policy_number, policy_holder_name, effective_date, expiration_date,
			annual_deductible, deductible_met, out_of_pocket_max, out_of_pocket_met,
			coverages, exclusions, policy_type, network_type,
			requires_referral, emergency_coverage, metadata)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		p.ID, p.PolicyNumber, p.PolicyHolderName, p.EffectiveDate, p.ExpirationDate,
		p.AnnualDeductible, p.DeductibleMet, p.OutOfPocketMax, p.OutOfPocketMet,
		coverages, exclusions, p.PolicyType, p.NetworkType,
		p.RequiresReferral, p.EmergencyCoverage, metadata)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Policy, error) {
	return scanPolicy(r.pool.QueryRow(ctx, `SELECT `+policyCols+` FROM policies WHERE id = $1`, id))
}

func (r *repoPG) GetByNumber(ctx context.Context, policyNumber string) (*Policy, error) {
	return scanPolicy(r.pool.QueryRow(ctx, `SELECT `+policyCols+` FROM policies WHERE policy_number = $1`, policyNumber))
}

func (r *repoPG) Update(ctx context.Context, p *Policy) error {
	coverages, err := json.Marshal(p.Coverages)
	if err != nil {
		return fmt.Errorf("encode coverages: %w", err)
	}
	exclusions, err := json.Marshal(p.Exclusions)
	if err != nil {
		return fmt.Errorf("encode exclusions: %w", err)
	}
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		UPDATE policies SET policy_holder_name = $2, effective_date = $3, expiration_date = $4,
			annual_deductible = $5, deductible_met = $6, out_of_pocket_max = $7, out_of_pocket_met = $8,
			coverages = $9, exclusions = $10, policy_type = $11, network_type = $12,
			requires_referral = $13, emergency_coverage = $14, metadata = $15, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.PolicyHolderName, p.EffectiveDate, p.ExpirationDate,
		p.AnnualDeductible, p.DeductibleMet, p.OutOfPocketMax, p.OutOfPocketMet,
		coverages, exclusions, p.PolicyType, p.NetworkType,
		p.RequiresReferral, p.EmergencyCoverage, metadata)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM policies WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Policy, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM policies`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+policyCols+` FROM policies ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var policies []*Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, 0, err
		}
		policies = append(policies, p)
	}
	return policies, total, rows.Err()
}
