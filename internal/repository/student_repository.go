package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salatech/promotion-service/internal/model"
	"github.com/salatech/promotion-service/internal/promotion"
)

// StudentRepository handles student enrollment reads. It backs the engine's
// EnrollmentDirectory collaborator.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// EligibleByClass returns the source year's students grouped by their current
// class, plus the school's count of students with no class assignment.
// Unassigned students cannot be auto-promoted and must not be silently
// dropped from the accounting.
func (r *StudentRepository) EligibleByClass(ctx context.Context, sourceYearID uuid.UUID) ([]promotion.ClassGroup, int, error) {
	classRows, err := r.pool.Query(ctx,
		`SELECT id, school_id, academic_year_id, name, grade, COALESCE(track, ''), created_at
		 FROM classes
		 WHERE academic_year_id = $1
		 ORDER BY grade, name`,
		sourceYearID,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query classes: %w", err)
	}
	defer classRows.Close()

	byClass := make(map[uuid.UUID]int)
	var groups []promotion.ClassGroup
	for classRows.Next() {
		var c model.Class
		if err := classRows.Scan(&c.ID, &c.SchoolID, &c.AcademicYearID, &c.Name, &c.Grade, &c.Track, &c.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan class: %w", err)
		}
		byClass[c.ID] = len(groups)
		groups = append(groups, promotion.ClassGroup{Class: c})
	}
	if err := classRows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate classes: %w", err)
	}

	studentRows, err := r.pool.Query(ctx,
		`SELECT s.id, s.school_id, s.name, s.current_class_id, s.created_at, s.updated_at
		 FROM students s
		 JOIN classes c ON c.id = s.current_class_id
		 WHERE c.academic_year_id = $1
		 ORDER BY s.name`,
		sourceYearID,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query students: %w", err)
	}
	defer studentRows.Close()

	for studentRows.Next() {
		var s model.Student
		if err := studentRows.Scan(&s.ID, &s.SchoolID, &s.Name, &s.CurrentClassID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan student: %w", err)
		}
		if s.CurrentClassID == nil {
			continue
		}
		if idx, ok := byClass[*s.CurrentClassID]; ok {
			groups[idx].Students = append(groups[idx].Students, s)
		}
	}
	if err := studentRows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate students: %w", err)
	}

	var unassigned int
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM students s
		 WHERE s.current_class_id IS NULL
		   AND s.school_id = (SELECT school_id FROM academic_years WHERE id = $1)`,
		sourceYearID,
	).Scan(&unassigned)
	if err != nil {
		return nil, 0, fmt.Errorf("count unassigned: %w", err)
	}

	return groups, unassigned, nil
}

// GetByID fetches a student scoped to its school. Cross-school IDs come back
// as pgx.ErrNoRows, same as unknown ones.
func (r *StudentRepository) GetByID(ctx context.Context, schoolID, id uuid.UUID) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, school_id, name, current_class_id, created_at, updated_at
		 FROM students
		 WHERE id = $1 AND school_id = $2`,
		id, schoolID,
	).Scan(&s.ID, &s.SchoolID, &s.Name, &s.CurrentClassID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ClassAssignments maps each of the given student IDs to its current class,
// restricted to the school. IDs belonging to other schools are simply absent
// from the result.
func (r *StudentRepository) ClassAssignments(ctx context.Context, schoolID uuid.UUID, studentIDs []uuid.UUID) (map[uuid.UUID]*uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, current_class_id
		 FROM students
		 WHERE school_id = $1 AND id = ANY($2)`,
		schoolID, studentIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	assignments := make(map[uuid.UUID]*uuid.UUID, len(studentIDs))
	for rows.Next() {
		var id uuid.UUID
		var classID *uuid.UUID
		if err := rows.Scan(&id, &classID); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments[id] = classID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return assignments, nil
}
