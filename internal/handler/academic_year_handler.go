package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salatech/promotion-service/internal/response"
	"github.com/salatech/promotion-service/internal/service"
)

// AcademicYearHandler exposes read access to academic years.
type AcademicYearHandler struct {
	yearService *service.AcademicYearService
}

// NewAcademicYearHandler creates a new AcademicYearHandler.
func NewAcademicYearHandler(yearService *service.AcademicYearService) *AcademicYearHandler {
	return &AcademicYearHandler{yearService: yearService}
}

// List godoc
// GET /api/v1/schools/:school_id/academic-years
// Lists all academic years of the school, newest first.
func (h *AcademicYearHandler) List(c *gin.Context) {
	schoolID, err := uuid.Parse(c.Param("school_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	years, err := h.yearService.List(c.Request.Context(), schoolID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"academic_years": years})
}

// Get godoc
// GET /api/v1/schools/:school_id/academic-years/:year_id
// Returns one academic year, including its promotion flag.
func (h *AcademicYearHandler) Get(c *gin.Context) {
	schoolID, err := uuid.Parse(c.Param("school_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	yearID, err := uuid.Parse(c.Param("year_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	year, err := h.yearService.Get(c.Request.Context(), schoolID, yearID)
	if err != nil {
		if errors.Is(err, service.ErrYearNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"academic_year": year})
}
