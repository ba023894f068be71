package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/board-result-api/internal/models"
	"github.com/noah-isme/board-result-api/internal/service"
	appErrors "github.com/noah-isme/board-result-api/pkg/errors"
	"github.com/noah-isme/board-result-api/pkg/response"
)

// StudentResultHandler handles result endpoints including publication
// and export. Students may only read their own published results, so
// the handler resolves the caller's student record when needed.
type StudentResultHandler struct {
	service  *service.StudentResultService
	students *service.StudentService
	exports  *service.ExportService
	metrics  *service.MetricsService
}

// NewStudentResultHandler constructs a student result handler.
func NewStudentResultHandler(svc *service.StudentResultService, students *service.StudentService, exports *service.ExportService, metrics *service.MetricsService) *StudentResultHandler {
	return &StudentResultHandler{service: svc, students: students, exports: exports, metrics: metrics}
}

// List godoc
// @Summary List student results
// @Tags StudentResults
// @Produce json
// @Param examination_id query string false "Filter by examination"
// @Param student_id query string false "Filter by student"
// @Param result_status query string false "Filter by status"
// @Param is_published query bool false "Filter by publication"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /student-results [get]
func (h *StudentResultHandler) List(c *gin.Context) {
	var filter models.StudentResultFilter
	filter.ExaminationID = c.Query("examination_id")
	filter.StudentID = c.Query("student_id")
	filter.ResultStatus = models.ResultStatus(c.Query("result_status"))
	if raw := c.Query("is_published"); raw != "" {
		if published, err := strconv.ParseBool(raw); err == nil {
			filter.IsPublished = &published
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleStudent {
		student, err := h.students.GetByUserID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
		published := true
		filter.StudentID = student.ID
		filter.IsPublished = &published
	}

	results, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, pagination)
}

// Get godoc
// @Summary Get student result by id
// @Tags StudentResults
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Router /student-results/{id} [get]
func (h *StudentResultHandler) Get(c *gin.Context) {
	result, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.authorizeRead(c, result); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// GetByStudentAndExam godoc
// @Summary Get a student's result for an examination
// @Tags StudentResults
// @Produce json
// @Param studentId path string true "Student ID"
// @Param examinationId path string true "Examination ID"
// @Success 200 {object} response.Envelope
// @Router /student-results/student/{studentId}/examination/{examinationId} [get]
func (h *StudentResultHandler) GetByStudentAndExam(c *gin.Context) {
	result, err := h.service.GetByStudentAndExam(c.Request.Context(), c.Param("studentId"), c.Param("examinationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.authorizeRead(c, result); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Create godoc
// @Summary Record a student result
// @Tags StudentResults
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentResultRequest true "Result payload"
// @Success 201 {object} response.Envelope
// @Router /student-results [post]
func (h *StudentResultHandler) Create(c *gin.Context) {
	var req service.CreateStudentResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordResultCreated()
	response.Created(c, result)
}

// Update godoc
// @Summary Update a student result
// @Tags StudentResults
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param payload body service.UpdateStudentResultRequest true "Result payload"
// @Success 200 {object} response.Envelope
// @Router /student-results/{id} [put]
func (h *StudentResultHandler) Update(c *gin.Context) {
	var req service.UpdateStudentResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Publish godoc
// @Summary Publish a single result
// @Tags StudentResults
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Router /student-results/{id}/publish [patch]
func (h *StudentResultHandler) Publish(c *gin.Context) {
	result, err := h.service.Publish(c.Request.Context(), c.Param("id"), h.publisherID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordPublication("single", 1)
	response.JSON(c, http.StatusOK, result, nil)
}

// Unpublish godoc
// @Summary Withdraw a published result
// @Tags StudentResults
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Router /student-results/{id}/unpublish [patch]
func (h *StudentResultHandler) Unpublish(c *gin.Context) {
	result, err := h.service.Unpublish(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// PublishBatch godoc
// @Summary Rank and publish every result of an examination
// @Tags StudentResults
// @Produce json
// @Param examinationId path string true "Examination ID"
// @Success 200 {object} response.Envelope
// @Router /student-results/examination/{examinationId}/publish [patch]
func (h *StudentResultHandler) PublishBatch(c *gin.Context) {
	published, err := h.service.PublishBatch(c.Request.Context(), c.Param("examinationId"), h.publisherID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordPublication("batch", published)
	response.Message(c, http.StatusOK, "results published", gin.H{"published": published})
}

// Statistics godoc
// @Summary Result statistics
// @Tags StudentResults
// @Produce json
// @Param examination_id query string false "Scope to an examination"
// @Param academic_year_id query string false "Scope to an academic year"
// @Success 200 {object} response.Envelope
// @Router /student-results/statistics [get]
func (h *StudentResultHandler) Statistics(c *gin.Context) {
	filter := models.StatisticsFilter{
		ExaminationID:  c.Query("examination_id"),
		AcademicYearID: c.Query("academic_year_id"),
	}
	stats, err := h.service.Statistics(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Export godoc
// @Summary Export an examination result sheet
// @Tags StudentResults
// @Produce octet-stream
// @Param examinationId path string true "Examination ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /student-results/examination/{examinationId}/export [get]
func (h *StudentResultHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.FormatCSV)))
	artifact, err := h.exports.ResultSheet(c.Request.Context(), c.Param("examinationId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.FileName))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

// Delete godoc
// @Summary Delete a student result
// @Tags StudentResults
// @Produce json
// @Param id path string true "Result ID"
// @Success 204
// @Router /student-results/{id} [delete]
func (h *StudentResultHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *StudentResultHandler) publisherID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// authorizeRead hides other students' results and unpublished ones
// from callers with the student role.
func (h *StudentResultHandler) authorizeRead(c *gin.Context, result *models.StudentResult) error {
	claims := claimsFromContext(c)
	if claims == nil || claims.Role != models.RoleStudent {
		return nil
	}
	student, err := h.students.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		return appErrors.ErrForbidden
	}
	if result.StudentID != student.ID || !result.IsPublished {
		return appErrors.ErrNotFound
	}
	return nil
}
