package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salatech/promotion-service/internal/model"
)

// ClassRepository handles class data access. Classes are immutable snapshots
// to the promotion engine; only reads are exposed here.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// ListByYear retrieves all classes of an academic year, ordered by grade and
// name so matcher input is deterministic.
func (r *ClassRepository) ListByYear(ctx context.Context, yearID uuid.UUID) ([]model.Class, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, school_id, academic_year_id, name, grade, COALESCE(track, ''), created_at
		 FROM classes
		 WHERE academic_year_id = $1
		 ORDER BY grade, name`,
		yearID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []model.Class
	for rows.Next() {
		var c model.Class
		if err := rows.Scan(&c.ID, &c.SchoolID, &c.AcademicYearID, &c.Name, &c.Grade, &c.Track, &c.CreatedAt); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}
