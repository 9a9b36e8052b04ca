package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salatech/promotion-service/internal/model"
	"github.com/salatech/promotion-service/internal/promotion"
)

// AcademicYearRepository handles academic year data access. It also backs the
// promotion guard: the is_promotion_done column is the persisted one-shot
// flag, mutated only through the compare-and-set below.
type AcademicYearRepository struct {
	pool *pgxpool.Pool
}

// NewAcademicYearRepository creates a new AcademicYearRepository.
func NewAcademicYearRepository(pool *pgxpool.Pool) *AcademicYearRepository {
	return &AcademicYearRepository{pool: pool}
}

const yearColumns = `id, school_id, name, start_date, end_date, status, is_current, is_promotion_done, created_at, updated_at`

func scanYear(row interface{ Scan(...any) error }) (*model.AcademicYear, error) {
	y := &model.AcademicYear{}
	err := row.Scan(&y.ID, &y.SchoolID, &y.Name, &y.StartDate, &y.EndDate,
		&y.Status, &y.IsCurrent, &y.IsPromotionDone, &y.CreatedAt, &y.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return y, nil
}

// GetByID retrieves a year scoped to a school.
func (r *AcademicYearRepository) GetByID(ctx context.Context, schoolID, id uuid.UUID) (*model.AcademicYear, error) {
	return scanYear(r.pool.QueryRow(ctx,
		`SELECT `+yearColumns+` FROM academic_years WHERE id = $1 AND school_id = $2`,
		id, schoolID,
	))
}

// ListBySchool retrieves all years of a school, newest first.
func (r *AcademicYearRepository) ListBySchool(ctx context.Context, schoolID uuid.UUID) ([]model.AcademicYear, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+yearColumns+` FROM academic_years WHERE school_id = $1 ORDER BY start_date DESC`,
		schoolID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []model.AcademicYear
	for rows.Next() {
		y, err := scanYear(rows)
		if err != nil {
			return nil, err
		}
		years = append(years, *y)
	}
	return years, rows.Err()
}

// ─── promotion.Guard ─────────────────────────────────────────────────────────

// CheckAllowed returns promotion.ErrAlreadyPromoted when the year's one-shot
// permission is exhausted.
func (r *AcademicYearRepository) CheckAllowed(ctx context.Context, sourceYearID uuid.UUID) error {
	var done bool
	err := r.pool.QueryRow(ctx,
		`SELECT is_promotion_done FROM academic_years WHERE id = $1`,
		sourceYearID,
	).Scan(&done)
	if err != nil {
		return fmt.Errorf("read promotion flag: %w", err)
	}
	if done {
		return promotion.ErrAlreadyPromoted
	}
	return nil
}

// MarkDone flips is_promotion_done false → true atomically. Zero rows
// affected means a concurrent execution already won the compare-and-set.
func (r *AcademicYearRepository) MarkDone(ctx context.Context, sourceYearID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE academic_years
		 SET is_promotion_done = true, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1 AND is_promotion_done = false`,
		sourceYearID,
	)
	if err != nil {
		return fmt.Errorf("mark promotion done: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return promotion.ErrAlreadyPromoted
	}
	return nil
}

// ClearDone re-opens the year after a fully-reversed undo.
func (r *AcademicYearRepository) ClearDone(ctx context.Context, sourceYearID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE academic_years
		 SET is_promotion_done = false, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1 AND is_promotion_done = true`,
		sourceYearID,
	)
	if err != nil {
		return fmt.Errorf("clear promotion flag: %w", err)
	}
	return nil
}
