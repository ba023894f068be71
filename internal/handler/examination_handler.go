package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/board-result-api/internal/models"
	"github.com/noah-isme/board-result-api/internal/service"
	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
	"github.com/noah-isme/board-result-api/pkg/response"
)

// ExaminationHandler handles examination endpoints.
type ExaminationHandler struct {
	service *service.ExaminationService
}

// NewExaminationHandler constructs an examination handler.
func NewExaminationHandler(svc *service.ExaminationService) *ExaminationHandler {
	return &ExaminationHandler{service: svc}
}

// List godoc
// @Summary List examinations
// @Tags Examinations
// @Produce json
// @Param academic_year_id query string false "Filter by academic year"
// @Param class_level_id query string false "Filter by class level"
// @Param stream_id query string false "Filter by stream"
// @Param exam_type query string false "Filter by exam type"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /examinations [get]
func (h *ExaminationHandler) List(c *gin.Context) {
	var filter models.ExaminationFilter
	filter.AcademicYearID = c.Query("academic_year_id")
	filter.ClassLevelID = c.Query("class_level_id")
	filter.StreamID = c.Query("stream_id")
	filter.ExamType = models.ExamType(c.Query("exam_type"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	exams, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, pagination)
}

// Get godoc
// @Summary Get examination by id
// @Tags Examinations
// @Produce json
// @Param id path string true "Examination ID"
// @Success 200 {object} response.Envelope
// @Router /examinations/{id} [get]
func (h *ExaminationHandler) Get(c *gin.Context) {
	exam, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Create godoc
// @Summary Create examination
// @Tags Examinations
// @Accept json
// @Produce json
// @Param payload body service.CreateExaminationRequest true "Examination payload"
// @Success 201 {object} response.Envelope
// @Router /examinations [post]
func (h *ExaminationHandler) Create(c *gin.Context) {
	var req service.CreateExaminationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	exam, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Update godoc
// @Summary Update examination
// @Tags Examinations
// @Accept json
// @Produce json
// @Param id path string true "Examination ID"
// @Param payload body service.UpdateExaminationRequest true "Examination payload"
// @Success 200 {object} response.Envelope
// @Router /examinations/{id} [put]
func (h *ExaminationHandler) Update(c *gin.Context) {
	var req service.UpdateExaminationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	exam, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Delete godoc
// @Summary Delete examination
// @Tags Examinations
// @Produce json
// @Param id path string true "Examination ID"
// @Success 204
// @Router /examinations/{id} [delete]
func (h *ExaminationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
