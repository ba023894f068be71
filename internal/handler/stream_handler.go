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

// StreamHandler handles stream endpoints.
type StreamHandler struct {
	service *service.StreamService
}

// NewStreamHandler constructs a stream handler.
func NewStreamHandler(svc *service.StreamService) *StreamHandler {
	return &StreamHandler{service: svc}
}

// List godoc
// @Summary List streams
// @Tags Streams
// @Produce json
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /streams [get]
func (h *StreamHandler) List(c *gin.Context) {
	var filter models.LookupFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	streams, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, streams, pagination)
}

// Get godoc
// @Summary Get stream by id
// @Tags Streams
// @Produce json
// @Param id path string true "Stream ID"
// @Success 200 {object} response.Envelope
// @Router /streams/{id} [get]
func (h *StreamHandler) Get(c *gin.Context) {
	stream, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stream, nil)
}

// Create godoc
// @Summary Create stream
// @Tags Streams
// @Accept json
// @Produce json
// @Param payload body service.StreamRequest true "Stream payload"
// @Success 201 {object} response.Envelope
// @Router /streams [post]
func (h *StreamHandler) Create(c *gin.Context) {
	var req service.StreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	stream, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, stream)
}

// Update godoc
// @Summary Update stream
// @Tags Streams
// @Accept json
// @Produce json
// @Param id path string true "Stream ID"
// @Param payload body service.StreamRequest true "Stream payload"
// @Success 200 {object} response.Envelope
// @Router /streams/{id} [put]
func (h *StreamHandler) Update(c *gin.Context) {
	var req service.StreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	stream, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stream, nil)
}

// Delete godoc
// @Summary Delete stream
// @Tags Streams
// @Produce json
// @Param id path string true "Stream ID"
// @Success 204
// @Router /streams/{id} [delete]
func (h *StreamHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
