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

// ClassLevelHandler handles class level endpoints.
type ClassLevelHandler struct {
	service *service.ClassLevelService
}

// NewClassLevelHandler constructs a class level handler.
func NewClassLevelHandler(svc *service.ClassLevelService) *ClassLevelHandler {
	return &ClassLevelHandler{service: svc}
}

// List godoc
// @Summary List class levels
// @Tags ClassLevels
// @Produce json
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /class-levels [get]
func (h *ClassLevelHandler) List(c *gin.Context) {
	var filter models.LookupFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	levels, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, levels, pagination)
}

// Get godoc
// @Summary Get class level by id
// @Tags ClassLevels
// @Produce json
// @Param id path string true "Class level ID"
// @Success 200 {object} response.Envelope
// @Router /class-levels/{id} [get]
func (h *ClassLevelHandler) Get(c *gin.Context) {
	level, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, level, nil)
}

// Create godoc
// @Summary Create class level
// @Tags ClassLevels
// @Accept json
// @Produce json
// @Param payload body service.ClassLevelRequest true "Class level payload"
// @Success 201 {object} response.Envelope
// @Router /class-levels [post]
func (h *ClassLevelHandler) Create(c *gin.Context) {
	var req service.ClassLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	level, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, level)
}

// Update godoc
// @Summary Update class level
// @Tags ClassLevels
// @Accept json
// @Produce json
// @Param id path string true "Class level ID"
// @Param payload body service.ClassLevelRequest true "Class level payload"
// @Success 200 {object} response.Envelope
// @Router /class-levels/{id} [put]
func (h *ClassLevelHandler) Update(c *gin.Context) {
	var req service.ClassLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	level, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, level, nil)
}

// Delete godoc
// @Summary Delete class level
// @Tags ClassLevels
// @Produce json
// @Param id path string true "Class level ID"
// @Success 204
// @Router /class-levels/{id} [delete]
func (h *ClassLevelHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
