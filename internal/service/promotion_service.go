package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/salatech/promotion-service/internal/config"
	"github.com/salatech/promotion-service/internal/model"
	"github.com/salatech/promotion-service/internal/promotion"
	"github.com/salatech/promotion-service/internal/repository"
)

// Service-level validation errors.
var (
	ErrYearNotFound      = errors.New("academic year not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrSameYear          = errors.New("source and target year must differ")
	ErrRequestOutOfScope = errors.New("promotion request references data outside the school scope")
)

// ClassWithStudents is the eligible-students row for one class.
type ClassWithStudents struct {
	Class        model.Class     `json:"class"`
	StudentCount int             `json:"student_count"`
	Students     []model.Student `json:"students"`
}

// EligibleStudentsData is the payload of the eligible-students operation.
type EligibleStudentsData struct {
	AcademicYear    model.AcademicYear  `json:"academic_year"`
	ClassesByGrade  []ClassWithStudents `json:"classes_by_grade"`
	TotalClasses    int                 `json:"total_classes"`
	TotalStudents   int                 `json:"total_students"`
	UnassignedCount int                 `json:"unassigned_count"`
}

// YearRef is a compact year reference inside promotion payloads.
type YearRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// PreviewData is the payload of the promotion-preview operation.
type PreviewData struct {
	FromYear YearRef                  `json:"from_year"`
	ToYear   YearRef                  `json:"to_year"`
	Preview  []promotion.PreviewItem  `json:"preview"`
	Summary  promotion.PreviewSummary `json:"summary"`
}

// PromotionService orchestrates the promotion engine over the repositories:
// eligibility + matching → preview, guarded execution, undo, and reporting.
type PromotionService struct {
	years        *repository.AcademicYearRepository
	classes      *repository.ClassRepository
	students     *repository.StudentRepository
	progressions *repository.ProgressionRepository

	resolver *promotion.Resolver
	matcher  *promotion.Matcher
	executor *promotion.Executor
	undoer   *promotion.UndoCoordinator

	rdb *redis.Client
	cfg *config.Config
	log zerolog.Logger
}

// NewPromotionService wires the engine. The year repository doubles as the
// guard (persisted compare-and-set) and the progression repository as
// applier + ledger.
func NewPromotionService(
	cfg *config.Config,
	years *repository.AcademicYearRepository,
	classes *repository.ClassRepository,
	students *repository.StudentRepository,
	progressions *repository.ProgressionRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *PromotionService {
	curriculum := promotion.NewCurriculum(cfg.TerminalGrade, cfg.TrackedGrades)
	locker := NewRedisLocker(rdb, log)
	progress := NewRedisProgressPublisher(rdb, log)

	return &PromotionService{
		years:        years,
		classes:      classes,
		students:     students,
		progressions: progressions,
		resolver:     promotion.NewResolver(students),
		matcher:      promotion.NewMatcher(curriculum),
		executor: promotion.NewExecutor(
			years, locker, progressions, progress, log,
			cfg.PromotionWorkers, cfg.PromotionLockTTL,
		),
		undoer: promotion.NewUndoCoordinator(
			years, locker, progressions, progressions, log,
			cfg.UndoWindow, cfg.PromotionLockTTL,
		),
		rdb: rdb,
		cfg: cfg,
		log: log.With().Str("component", "promotion_service").Logger(),
	}
}

// EligibleStudents enumerates the source year's students grouped by class,
// independent of any target year.
func (s *PromotionService) EligibleStudents(ctx context.Context, schoolID, yearID uuid.UUID) (*EligibleStudentsData, error) {
	year, err := s.getYear(ctx, schoolID, yearID)
	if err != nil {
		return nil, err
	}

	eligibility, err := s.resolver.Resolve(ctx, yearID)
	if err != nil {
		return nil, err
	}

	data := &EligibleStudentsData{
		AcademicYear:    *year,
		ClassesByGrade:  make([]ClassWithStudents, 0, len(eligibility.Groups)),
		UnassignedCount: eligibility.UnassignedCount,
	}
	for _, group := range eligibility.Groups {
		data.ClassesByGrade = append(data.ClassesByGrade, ClassWithStudents{
			Class:        group.Class,
			StudentCount: len(group.Students),
			Students:     group.Students,
		})
		data.TotalClasses++
		data.TotalStudents += len(group.Students)
	}
	return data, nil
}

// Preview plans the batch and returns the per-class preview for human
// confirmation. The guard is checked first so an exhausted year never shows a
// misleading preview. Results are cached briefly in Redis; the cache is
// dropped on execute.
func (s *PromotionService) Preview(ctx context.Context, schoolID, fromYearID, toYearID uuid.UUID) (*PreviewData, error) {
	fromYear, toYear, err := s.getYearPair(ctx, schoolID, fromYearID, toYearID)
	if err != nil {
		return nil, err
	}

	if err := s.years.CheckAllowed(ctx, fromYearID); err != nil {
		return nil, err
	}

	cacheKey := config.Key.PreviewCacheKey(schoolID, fromYearID, toYearID)
	if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var data PreviewData
		if err := json.Unmarshal(cached, &data); err == nil {
			return &data, nil
		}
	}

	preview, _, err := s.plan(ctx, fromYearID, toYearID)
	if err != nil {
		return nil, err
	}

	data := &PreviewData{
		FromYear: YearRef{ID: fromYear.ID, Name: fromYear.Name},
		ToYear:   YearRef{ID: toYear.ID, Name: toYear.Name},
		Preview:  preview.Items,
		Summary:  preview.Summary,
	}

	if payload, err := json.Marshal(data); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, payload, s.cfg.PreviewCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Preview cache write failed")
		}
	}

	return data, nil
}

// PlanRequests re-derives the auto-generated request list for a year pair.
// Pure over current snapshots — used when the caller submits no explicit
// request list.
func (s *PromotionService) PlanRequests(ctx context.Context, schoolID, fromYearID, toYearID uuid.UUID) ([]promotion.Request, error) {
	if _, _, err := s.getYearPair(ctx, schoolID, fromYearID, toYearID); err != nil {
		return nil, err
	}
	_, requests, err := s.plan(ctx, fromYearID, toYearID)
	return requests, err
}

// Execute applies the batch under the one-shot guard and drops the cached
// preview for the year pair. A partial result may accompany
// promotion.ErrAlreadyPromoted on the mid-batch abort path.
func (s *PromotionService) Execute(
	ctx context.Context,
	schoolID, fromYearID, toYearID uuid.UUID,
	requests []promotion.Request,
	actorID uuid.UUID,
) (model.PromotionResult, error) {
	if _, _, err := s.getYearPair(ctx, schoolID, fromYearID, toYearID); err != nil {
		return model.PromotionResult{}, err
	}
	if err := s.checkRequestScope(ctx, schoolID, fromYearID, toYearID, requests); err != nil {
		return model.PromotionResult{}, err
	}

	result, err := s.executor.Execute(ctx, fromYearID, toYearID, requests, actorID)

	cacheKey := config.Key.PreviewCacheKey(schoolID, fromYearID, toYearID)
	if delErr := s.rdb.Del(context.WithoutCancel(ctx), cacheKey).Err(); delErr != nil {
		s.log.Warn().Err(delErr).Msg("Preview cache invalidation failed")
	}

	return result, err
}

// Undo reverses the batch for the year pair within the undo window.
func (s *PromotionService) Undo(ctx context.Context, schoolID, fromYearID, toYearID uuid.UUID) (model.UndoSummary, error) {
	if _, _, err := s.getYearPair(ctx, schoolID, fromYearID, toYearID); err != nil {
		return model.UndoSummary{}, err
	}
	return s.undoer.Undo(ctx, fromYearID, toYearID)
}

// Report returns the promotion report for a source year.
func (s *PromotionService) Report(ctx context.Context, schoolID, yearID uuid.UUID) (*model.PromotionReport, error) {
	if _, err := s.getYear(ctx, schoolID, yearID); err != nil {
		return nil, err
	}
	return s.progressions.ReportByYear(ctx, yearID)
}

// StudentProgression returns one student's promotion history. The student
// must belong to the school; other schools' students look like they do not
// exist.
func (s *PromotionService) StudentProgression(ctx context.Context, schoolID, studentID uuid.UUID) ([]model.ProgressionRecord, error) {
	if _, err := s.students.GetByID(ctx, schoolID, studentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return s.progressions.ByStudent(ctx, studentID)
}

// checkRequestScope validates the request list against the tenant and year
// pair. Server-derived plans pass trivially; an operator-submitted list must
// never reach the executor referencing another school's students or classes.
func (s *PromotionService) checkRequestScope(ctx context.Context, schoolID, fromYearID, toYearID uuid.UUID, requests []promotion.Request) error {
	if len(requests) == 0 {
		return nil
	}

	sourceClasses, err := s.classes.ListByYear(ctx, fromYearID)
	if err != nil {
		return fmt.Errorf("list source classes: %w", err)
	}
	targetClasses, err := s.classes.ListByYear(ctx, toYearID)
	if err != nil {
		return fmt.Errorf("list target classes: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(requests))
	seen := make(map[uuid.UUID]struct{}, len(requests))
	for _, req := range requests {
		if _, ok := seen[req.StudentID]; ok {
			continue
		}
		seen[req.StudentID] = struct{}{}
		ids = append(ids, req.StudentID)
	}
	assignments, err := s.students.ClassAssignments(ctx, schoolID, ids)
	if err != nil {
		return fmt.Errorf("load student assignments: %w", err)
	}

	return validateRequests(requests, sourceClasses, targetClasses, assignments)
}

func (s *PromotionService) plan(ctx context.Context, fromYearID, toYearID uuid.UUID) (promotion.Preview, []promotion.Request, error) {
	eligibility, err := s.resolver.Resolve(ctx, fromYearID)
	if err != nil {
		return promotion.Preview{}, nil, err
	}

	targetClasses, err := s.classes.ListByYear(ctx, toYearID)
	if err != nil {
		return promotion.Preview{}, nil, fmt.Errorf("list target classes: %w", err)
	}

	preview, requests := promotion.Plan(eligibility, targetClasses, s.matcher)
	return preview, requests, nil
}

func (s *PromotionService) getYear(ctx context.Context, schoolID, yearID uuid.UUID) (*model.AcademicYear, error) {
	year, err := s.years.GetByID(ctx, schoolID, yearID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrYearNotFound
		}
		return nil, err
	}
	return year, nil
}

func (s *PromotionService) getYearPair(ctx context.Context, schoolID, fromYearID, toYearID uuid.UUID) (*model.AcademicYear, *model.AcademicYear, error) {
	if fromYearID == toYearID {
		return nil, nil, ErrSameYear
	}
	fromYear, err := s.getYear(ctx, schoolID, fromYearID)
	if err != nil {
		return nil, nil, err
	}
	toYear, err := s.getYear(ctx, schoolID, toYearID)
	if err != nil {
		return nil, nil, err
	}
	return fromYear, toYear, nil
}
