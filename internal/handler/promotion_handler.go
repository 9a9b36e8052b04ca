package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/salatech/promotion-service/internal/middleware"
	"github.com/salatech/promotion-service/internal/model"
	"github.com/salatech/promotion-service/internal/promotion"
	"github.com/salatech/promotion-service/internal/response"
	"github.com/salatech/promotion-service/internal/service"
	"github.com/salatech/promotion-service/internal/validator"
)

// PromotionHandler exposes the promotion wizard endpoints.
type PromotionHandler struct {
	promotionService *service.PromotionService
	log              zerolog.Logger
}

// NewPromotionHandler creates a new PromotionHandler.
func NewPromotionHandler(promotionService *service.PromotionService, log zerolog.Logger) *PromotionHandler {
	return &PromotionHandler{
		promotionService: promotionService,
		log:              log.With().Str("component", "promotion_handler").Logger(),
	}
}

// EligibleStudents godoc
// GET /api/v1/schools/:school_id/academic-years/:year_id/promotion/eligible-students
// Enumerates the source year's students grouped by class.
func (h *PromotionHandler) EligibleStudents(c *gin.Context) {
	schoolID, yearID, ok := pathScope(c)
	if !ok {
		return
	}

	data, err := h.promotionService.EligibleStudents(c.Request.Context(), schoolID, yearID)
	if err != nil {
		h.failPromotion(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}

// Preview godoc
// GET /api/v1/schools/:school_id/academic-years/:year_id/promotion/preview?to_year_id=...
// Plans the batch without writing anything and returns the per-class preview.
func (h *PromotionHandler) Preview(c *gin.Context) {
	schoolID, fromYearID, ok := pathScope(c)
	if !ok {
		return
	}
	toYearID, err := uuid.Parse(c.Query("to_year_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	data, err := h.promotionService.Preview(c.Request.Context(), schoolID, fromYearID, toYearID)
	if err != nil {
		h.failPromotion(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}

// Execute godoc
// POST /api/v1/schools/:school_id/academic-years/:year_id/promotion/execute
// Applies the batch under the one-shot guard. With an empty request list the
// server re-derives the automatic plan.
func (h *PromotionHandler) Execute(c *gin.Context) {
	schoolID, fromYearID, ok := pathScope(c)
	if !ok {
		return
	}

	var req model.PromotionExecuteRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	requests, err := h.buildRequests(c, schoolID, fromYearID, req)
	if err != nil {
		h.failPromotion(c, err)
		return
	}

	result, err := h.promotionService.Execute(
		c.Request.Context(), schoolID, fromYearID, req.ToYearID, requests, claims.UserID,
	)
	if err != nil {
		// A mid-batch abort still carries the committed counts; the operator
		// must see them to reconcile manually.
		if errors.Is(err, promotion.ErrAlreadyPromoted) && result.Total() > 0 {
			response.FailWithData(c, http.StatusConflict, response.ErrAlreadyPromoted, gin.H{"result": result})
			return
		}
		h.failPromotion(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// Undo godoc
// POST /api/v1/schools/:school_id/academic-years/:year_id/promotion/undo
// Reverses the whole batch within the undo window.
func (h *PromotionHandler) Undo(c *gin.Context) {
	schoolID, fromYearID, ok := pathScope(c)
	if !ok {
		return
	}

	var req model.PromotionUndoRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	summary, err := h.promotionService.Undo(c.Request.Context(), schoolID, fromYearID, req.ToYearID)
	if err != nil {
		h.failPromotion(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

// Report godoc
// GET /api/v1/schools/:school_id/academic-years/:year_id/promotion/report
// Aggregates the year's progression records by type.
func (h *PromotionHandler) Report(c *gin.Context) {
	schoolID, yearID, ok := pathScope(c)
	if !ok {
		return
	}

	report, err := h.promotionService.Report(c.Request.Context(), schoolID, yearID)
	if err != nil {
		h.failPromotion(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report})
}

// StudentProgression godoc
// GET /api/v1/schools/:school_id/students/:student_id/progression
// Returns one student's promotion history in execution order.
func (h *PromotionHandler) StudentProgression(c *gin.Context) {
	schoolID, err := uuid.Parse(c.Param("school_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	records, err := h.promotionService.StudentProgression(c.Request.Context(), schoolID, studentID)
	if err != nil {
		h.failPromotion(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"progressions": records})
}

// buildRequests converts the submitted instruction list, or re-derives the
// automatic plan when the operator submitted none.
func (h *PromotionHandler) buildRequests(
	c *gin.Context,
	schoolID, fromYearID uuid.UUID,
	req model.PromotionExecuteRequest,
) ([]promotion.Request, error) {
	if len(req.Requests) == 0 {
		return h.promotionService.PlanRequests(c.Request.Context(), schoolID, fromYearID, req.ToYearID)
	}

	requests := make([]promotion.Request, 0, len(req.Requests))
	for _, in := range req.Requests {
		requests = append(requests, promotion.Request{
			StudentID:   in.StudentID,
			FromClassID: in.FromClassID,
			ToClassID:   in.ToClassID,
			Type:        in.Type,
		})
	}
	return requests, nil
}

// failPromotion maps engine and service errors to API responses.
func (h *PromotionHandler) failPromotion(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrYearNotFound), errors.Is(err, service.ErrStudentNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrRequestOutOfScope):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	case errors.Is(err, service.ErrSameYear):
		response.Fail(c, http.StatusBadRequest, response.ErrSameYear)
	case errors.Is(err, promotion.ErrAlreadyPromoted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyPromoted)
	case errors.Is(err, promotion.ErrLockHeld):
		response.Fail(c, http.StatusConflict, response.ErrPromotionInFlight)
	case errors.Is(err, promotion.ErrDataUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrDataUnavailable)
	case errors.Is(err, promotion.ErrUndoWindowExpired):
		response.Fail(c, http.StatusConflict, response.ErrUndoWindowExpired)
	case errors.Is(err, promotion.ErrNothingToUndo):
		response.Fail(c, http.StatusNotFound, response.ErrNothingToUndo)
	default:
		h.log.Error().Err(err).Msg("Promotion operation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// pathScope parses the school and year path parameters shared by all
// promotion routes.
func pathScope(c *gin.Context) (schoolID, yearID uuid.UUID, ok bool) {
	schoolID, err := uuid.Parse(c.Param("school_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, uuid.Nil, false
	}
	yearID, err = uuid.Parse(c.Param("year_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, uuid.Nil, false
	}
	return schoolID, yearID, true
}
