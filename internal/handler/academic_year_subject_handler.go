package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/board-result-api/internal/models"
	"github.com/noah-isme/board-result-api/internal/service"
	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
	"github.com/noah-isme/board-result-api/pkg/response"
)

// AcademicYearSubjectHandler handles subject offering endpoints.
type AcademicYearSubjectHandler struct {
	service *service.AcademicYearSubjectService
}

// NewAcademicYearSubjectHandler constructs an academic year subject handler.
func NewAcademicYearSubjectHandler(svc *service.AcademicYearSubjectService) *AcademicYearSubjectHandler {
	return &AcademicYearSubjectHandler{service: svc}
}

// List godoc
// @Summary List subject offerings
// @Tags AcademicYearSubjects
// @Produce json
// @Param academic_year_id query string false "Filter by academic year"
// @Param subject_id query string false "Filter by subject"
// @Param class_level_id query string false "Filter by class level"
// @Param stream_id query string false "Filter by stream"
// @Param is_active query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /academic-year-subjects [get]
func (h *AcademicYearSubjectHandler) List(c *gin.Context) {
	var filter models.AcademicYearSubjectFilter
	filter.AcademicYearID = c.Query("academic_year_id")
	filter.SubjectID = c.Query("subject_id")
	filter.ClassLevelID = c.Query("class_level_id")
	filter.StreamID = c.Query("stream_id")
	if raw := c.Query("is_active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.IsActive = &active
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	mappings, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mappings, pagination)
}

// Get godoc
// @Summary Get subject offering by id
// @Tags AcademicYearSubjects
// @Produce json
// @Param id path string true "Offering ID"
// @Success 200 {object} response.Envelope
// @Router /academic-year-subjects/{id} [get]
func (h *AcademicYearSubjectHandler) Get(c *gin.Context) {
	mapping, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mapping, nil)
}

// Create godoc
// @Summary Create subject offering
// @Tags AcademicYearSubjects
// @Accept json
// @Produce json
// @Param payload body service.CreateAcademicYearSubjectRequest true "Offering payload"
// @Success 201 {object} response.Envelope
// @Router /academic-year-subjects [post]
func (h *AcademicYearSubjectHandler) Create(c *gin.Context) {
	var req service.CreateAcademicYearSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mapping, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mapping)
}

// Update godoc
// @Summary Update subject offering marks configuration
// @Tags AcademicYearSubjects
// @Accept json
// @Produce json
// @Param id path string true "Offering ID"
// @Param payload body service.UpdateAcademicYearSubjectRequest true "Offering payload"
// @Success 200 {object} response.Envelope
// @Router /academic-year-subjects/{id} [put]
func (h *AcademicYearSubjectHandler) Update(c *gin.Context) {
	var req service.UpdateAcademicYearSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mapping, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mapping, nil)
}

// Delete godoc
// @Summary Delete subject offering
// @Tags AcademicYearSubjects
// @Produce json
// @Param id path string true "Offering ID"
// @Success 204
// @Router /academic-year-subjects/{id} [delete]
func (h *AcademicYearSubjectHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
