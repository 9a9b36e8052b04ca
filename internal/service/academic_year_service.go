package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/salatech/promotion-service/internal/model"
	"github.com/salatech/promotion-service/internal/repository"
)

// AcademicYearService exposes read access to academic years for the wizard.
// Year creation and activation live outside this service.
type AcademicYearService struct {
	years *repository.AcademicYearRepository
}

// NewAcademicYearService creates a new AcademicYearService.
func NewAcademicYearService(years *repository.AcademicYearRepository) *AcademicYearService {
	return &AcademicYearService{years: years}
}

// List retrieves all years of a school.
func (s *AcademicYearService) List(ctx context.Context, schoolID uuid.UUID) ([]model.AcademicYear, error) {
	return s.years.ListBySchool(ctx, schoolID)
}

// Get retrieves one year scoped to a school.
func (s *AcademicYearService) Get(ctx context.Context, schoolID, yearID uuid.UUID) (*model.AcademicYear, error) {
	year, err := s.years.GetByID(ctx, schoolID, yearID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrYearNotFound
		}
		return nil, err
	}
	return year, nil
}
