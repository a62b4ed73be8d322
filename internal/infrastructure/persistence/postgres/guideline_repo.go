package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/pkg/events"
	pgutil "github.com/bibbank/underwriting/pkg/postgres"
)

const guidelineNameConstraint = "guidelines_tenant_name_key"

// GuidelineRepository implements port.GuidelineRepository using PostgreSQL.
type GuidelineRepository struct {
	pool *pgxpool.Pool
}

// NewGuidelineRepository creates a new PostgreSQL-backed GuidelineRepository.
func NewGuidelineRepository(pool *pgxpool.Pool) *GuidelineRepository {
	return &GuidelineRepository{pool: pool}
}

var _ port.GuidelineRepository = (*GuidelineRepository)(nil)

// Save upserts the guideline, checking the revision it was loaded at.
func (r *GuidelineRepository) Save(ctx context.Context, g *model.Guideline) error {
	snap := g.Snapshot()
	rules, err := json.Marshal(nonNil(snap.Rules))
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	entries, err := events.NewOutboxEntries(g.DomainEvents())
	if err != nil {
		return fmt.Errorf("build outbox entries: %w", err)
	}

	err = pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if snap.Revision == 0 {
			const insertSQL = `
				INSERT INTO guidelines (
					id, tenant_id, name, description, status, version,
					coverage_types, states, naics_codes, rules, revision, created_at, updated_at
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,1,$11,$12)
			`
			_, err := tx.Exec(ctx, insertSQL,
				snap.ID, snap.TenantID, snap.Name, snap.Description, snap.Status, snap.Version,
				snap.CoverageTypes, snap.States, snap.NaicsCodes, rules, snap.CreatedAt, snap.UpdatedAt,
			)
			switch {
			case pgutil.IsUniqueViolation(err, guidelineNameConstraint):
				return model.ErrGuidelineDuplicateName.WithDescription("guideline %q already exists", snap.Name)
			case pgutil.IsUniqueViolation(err, ""):
				return model.ErrGuidelineConcurrencyConflict.WithDescription("guideline %s already exists", snap.ID)
			case err != nil:
				return fmt.Errorf("insert guideline: %w", err)
			}
		} else {
			const updateSQL = `
				UPDATE guidelines SET
					name = $3, description = $4, status = $5, version = $6,
					coverage_types = $7, states = $8, naics_codes = $9, rules = $10,
					updated_at = $11, revision = revision + 1
				WHERE tenant_id = $1 AND id = $2 AND revision = $12
			`
			tag, err := tx.Exec(ctx, updateSQL,
				snap.TenantID, snap.ID, snap.Name, snap.Description, snap.Status, snap.Version,
				snap.CoverageTypes, snap.States, snap.NaicsCodes, rules, snap.UpdatedAt,
				snap.Revision,
			)
			if pgutil.IsUniqueViolation(err, guidelineNameConstraint) {
				return model.ErrGuidelineDuplicateName.WithDescription("guideline %q already exists", snap.Name)
			}
			if err != nil {
				return fmt.Errorf("update guideline: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return model.ErrGuidelineConcurrencyConflict.WithDescription("guideline %s has been modified or removed", snap.ID)
			}
		}
		return insertOutbox(ctx, tx, entries)
	})
	if err != nil {
		return err
	}

	g.ClearEvents()
	g.AdvanceRevision()
	return nil
}

const selectGuidelineSQL = `
	SELECT id, tenant_id, name, description, status, version,
	       coverage_types, states, naics_codes, rules, revision, created_at, updated_at
	FROM guidelines
`

// FindByID retrieves a guideline within a tenant.
func (r *GuidelineRepository) FindByID(ctx context.Context, tenantID, id string) (*model.Guideline, error) {
	g, err := scanGuideline(r.pool.QueryRow(ctx, selectGuidelineSQL+` WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrGuidelineNotFound
	}
	return g, err
}

// FindActiveByTenant returns the tenant's active guidelines ordered by name.
func (r *GuidelineRepository) FindActiveByTenant(ctx context.Context, tenantID string) ([]*model.Guideline, error) {
	rows, err := r.pool.Query(ctx, selectGuidelineSQL+` WHERE tenant_id = $1 AND status = 'ACTIVE' ORDER BY name`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query guidelines: %w", err)
	}
	defer rows.Close()

	var result []*model.Guideline
	for rows.Next() {
		g, err := scanGuideline(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

// FindApplicable returns the active guidelines whose filters admit the given
// coverage type, state and NAICS code. Filters are comma lists, so matching
// happens in the domain after loading the tenant's active set.
func (r *GuidelineRepository) FindApplicable(ctx context.Context, tenantID, coverageType, state, naicsCode string) ([]*model.Guideline, error) {
	active, err := r.FindActiveByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	applicable := active[:0]
	for _, g := range active {
		if g.IsApplicable(coverageType, state, naicsCode) {
			applicable = append(applicable, g)
		}
	}
	return applicable, nil
}

func scanGuideline(s scannable) (*model.Guideline, error) {
	var (
		snap  model.GuidelineSnapshot
		rules []byte
	)
	err := s.Scan(
		&snap.ID, &snap.TenantID, &snap.Name, &snap.Description, &snap.Status, &snap.Version,
		&snap.CoverageTypes, &snap.States, &snap.NaicsCodes, &rules, &snap.Revision, &snap.CreatedAt, &snap.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan guideline: %w", err)
	}
	snap.CreatedAt, snap.UpdatedAt = snap.CreatedAt.UTC(), snap.UpdatedAt.UTC()
	if err := json.Unmarshal(rules, &snap.Rules); err != nil {
		return nil, fmt.Errorf("decode guideline rules: %w", err)
	}

	g, err := model.ReconstructGuideline(snap)
	if err != nil {
		return nil, fmt.Errorf("reconstruct guideline %s: %w", snap.ID, err)
	}
	return g, nil
}
