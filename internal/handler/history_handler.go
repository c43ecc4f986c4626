package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/training-attendance-api/internal/dto"
	"github.com/noah-isme/training-attendance-api/internal/models"
	"github.com/noah-isme/training-attendance-api/internal/service"
	appErrors "github.com/noah-isme/training-attendance-api/pkg/errors"
	"github.com/noah-isme/training-attendance-api/pkg/export"
	"github.com/noah-isme/training-attendance-api/pkg/response"
)

type historyService interface {
	StudentHistory(ctx context.Context, caller *models.JWTClaims, studentID string) (*service.HistoryResult, error)
}

// HistoryHandler serves a student's merged attendance timeline.
type HistoryHandler struct {
	service  historyService
	exporter *export.CSVExporter
}

// NewHistoryHandler builds a new handler.
func NewHistoryHandler(service historyService) *HistoryHandler {
	return &HistoryHandler{service: service, exporter: export.NewCSVExporter()}
}

// Student godoc
// @Summary Attendance history of a student
// @Tags History
// @Produce json
// @Produce text/csv
// @Param id path string true "Student ID"
// @Param format query string false "csv for a file download"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/history [get]
func (h *HistoryHandler) Student(c *gin.Context) {
	h.render(c, claimsFromContext(c), c.Param("id"))
}

// Me godoc
// @Summary Attendance history of the calling student
// @Tags History
// @Produce json
// @Produce text/csv
// @Param format query string false "csv for a file download"
// @Success 200 {object} response.Envelope
// @Router /me/history [get]
func (h *HistoryHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	h.render(c, claims, claims.SelfID())
}

func (h *HistoryHandler) render(c *gin.Context, caller *models.JWTClaims, studentID string) {
	result, err := h.service.StudentHistory(c.Request.Context(), caller, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if wantsCSV(c) {
		var buf bytes.Buffer
		if err := h.exporter.Write(&buf, service.HistoryDataset(result.Entries)); err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "attendance-history-"+studentID+".csv"))
		c.Data(http.StatusOK, h.exporter.ContentType(), buf.Bytes())
		return
	}
	response.JSON(c, http.StatusOK, dto.NewHistoryResponse(result.Entries), noticesMeta(c, result.Notices))
}
