package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salatech/promotion-service/internal/model"
)

// ErrStudentMissing means the class reassignment matched no student row.
var ErrStudentMissing = errors.New("student not found")

// ProgressionRepository is the durable progression ledger. Rows are
// append-only: the only update ever issued against student_progressions sets
// reversed_at, and nothing deletes from it.
//
// It also implements the engine's Applier: the student class reassignment and
// the ledger append commit in one transaction per student, so a single
// promotion either runs to completion or fails as a unit.
type ProgressionRepository struct {
	pool *pgxpool.Pool
}

// NewProgressionRepository creates a new ProgressionRepository.
func NewProgressionRepository(pool *pgxpool.Pool) *ProgressionRepository {
	return &ProgressionRepository{pool: pool}
}

const progressionColumns = `id, student_id, from_year_id, to_year_id, from_class_id, to_class_id, promotion_type, executed_at, executed_by, reversed_at`

func scanProgression(row interface{ Scan(...any) error }) (model.ProgressionRecord, error) {
	var rec model.ProgressionRecord
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.FromYearID, &rec.ToYearID,
		&rec.FromClassID, &rec.ToClassID, &rec.Type, &rec.ExecutedAt, &rec.ExecutedBy, &rec.ReversedAt)
	return rec, err
}

// Apply commits one student's promotion: reassign the student's current class
// (NULL for graduation) and append the progression record atomically.
func (r *ProgressionRepository) Apply(ctx context.Context, record *model.ProgressionRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE students SET current_class_id = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		record.ToClassID, record.StudentID,
	)
	if err != nil {
		return fmt.Errorf("reassign student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStudentMissing
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO student_progressions
		 (id, student_id, from_year_id, to_year_id, from_class_id, to_class_id, promotion_type, executed_at, executed_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		record.ID, record.StudentID, record.FromYearID, record.ToYearID,
		record.FromClassID, record.ToClassID, record.Type, record.ExecutedAt, record.ExecutedBy,
	)
	if err != nil {
		return fmt.Errorf("append progression: %w", err)
	}

	return tx.Commit(ctx)
}

// Revert restores one student's pre-promotion class and marks the record
// reversed, atomically. A record already reversed by a concurrent undo is
// left untouched.
func (r *ProgressionRepository) Revert(ctx context.Context, record model.ProgressionRecord, at time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE student_progressions SET reversed_at = $1 WHERE id = $2 AND reversed_at IS NULL`,
		at, record.ID,
	)
	if err != nil {
		return fmt.Errorf("mark reversed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already reversed; nothing to restore.
		return tx.Commit(ctx)
	}

	tag, err = tx.Exec(ctx,
		`UPDATE students SET current_class_id = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		record.FromClassID, record.StudentID,
	)
	if err != nil {
		return fmt.Errorf("restore student class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStudentMissing
	}

	return tx.Commit(ctx)
}

// Batch returns every record sharing fromYearID/toYearID, ordered by
// executed_at.
func (r *ProgressionRepository) Batch(ctx context.Context, fromYearID, toYearID uuid.UUID) ([]model.ProgressionRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+progressionColumns+`
		 FROM student_progressions
		 WHERE from_year_id = $1 AND to_year_id = $2
		 ORDER BY executed_at`,
		fromYearID, toYearID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProgressions(rows)
}

// ByStudent returns one student's full progression history, chronologically.
func (r *ProgressionRepository) ByStudent(ctx context.Context, studentID uuid.UUID) ([]model.ProgressionRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+progressionColumns+`
		 FROM student_progressions
		 WHERE student_id = $1
		 ORDER BY executed_at`,
		studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProgressions(rows)
}

// ReportByYear builds the promotion report for a source year: per-type counts
// plus the full row set.
func (r *ProgressionRepository) ReportByYear(ctx context.Context, fromYearID uuid.UUID) (*model.PromotionReport, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+progressionColumns+`
		 FROM student_progressions
		 WHERE from_year_id = $1
		 ORDER BY executed_at`,
		fromYearID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := collectProgressions(rows)
	if err != nil {
		return nil, err
	}

	report := &model.PromotionReport{Progressions: records}
	for _, rec := range records {
		report.Statistics.Total++
		switch rec.Type {
		case model.PromotionRepeat:
			report.Statistics.Repeated++
		case model.PromotionGraduate:
			report.Statistics.Graduated++
		default:
			report.Statistics.Promoted++
		}
		if rec.Reversed() {
			report.Statistics.Reversed++
		}
	}
	return report, nil
}

func collectProgressions(rows pgx.Rows) ([]model.ProgressionRecord, error) {
	var records []model.ProgressionRecord
	for rows.Next() {
		rec, err := scanProgression(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
