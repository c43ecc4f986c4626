package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/training-attendance-api/internal/dto"
	"github.com/noah-isme/training-attendance-api/internal/middleware"
	"github.com/noah-isme/training-attendance-api/internal/models"
	"github.com/noah-isme/training-attendance-api/internal/service"
	"github.com/noah-isme/training-attendance-api/pkg/response"
)

type sessionService interface {
	Open(ctx context.Context, caller *models.JWTClaims, req service.SessionSelectionRequest) (*service.OpenedSession, error)
	Snapshot(caller *models.JWTClaims, id string) (models.SessionSnapshot, error)
	Select(ctx context.Context, caller *models.JWTClaims, id string, req service.SessionSelectionRequest) (*service.LoadResult, error)
	UpdateStatus(caller *models.JWTClaims, id, studentID string, req service.UpdateStatusRequest) (models.SessionSnapshot, error)
	SetNotes(caller *models.JWTClaims, id string, req service.SessionNotesRequest) (models.SessionSnapshot, error)
	Save(ctx context.Context, caller *models.JWTClaims, id string) (*service.SaveResult, error)
	Discard(caller *models.JWTClaims, id string) error
}

// SessionHandler exposes the attendance-taking workflow.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler builds a new handler.
func NewSessionHandler(service sessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Open godoc
// @Summary Open an attendance draft for a course and date
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.SessionSelectionRequest true "Selection"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Open(c *gin.Context) {
	var req service.SessionSelectionRequest
	if !bindJSON(c, &req) {
		return
	}
	opened, err := h.service.Open(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewSessionResponse(opened.ID, opened.Snapshot), noticesMeta(c, opened.Snapshot.Notices))
}

// Get godoc
// @Summary Get an attendance draft
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	id := c.Param("id")
	snapshot, err := h.service.Snapshot(claimsFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSessionResponse(id, snapshot), noticesMeta(c, snapshot.Notices))
}

// Select godoc
// @Summary Change the course or date of a draft
// @Description Unsaved edits are discarded; meta.discarded_edits reports whether any were lost.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.SessionSelectionRequest true "Selection"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/selection [put]
func (h *SessionHandler) Select(c *gin.Context) {
	id := c.Param("id")
	var req service.SessionSelectionRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.Select(c.Request.Context(), claimsFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{"discarded_edits": result.DiscardedEdits}
	if len(result.Snapshot.Notices) > 0 {
		meta["notices"] = result.Snapshot.Notices
	}
	response.JSON(c, http.StatusOK, dto.NewSessionResponse(id, result.Snapshot), middleware.ExtractMeta(c, meta))
}

// UpdateStatus godoc
// @Summary Set one student's attendance status in a draft
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param studentId path string true "Student ID"
// @Param payload body service.UpdateStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/students/{studentId} [patch]
func (h *SessionHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	var req service.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	snapshot, err := h.service.UpdateStatus(claimsFromContext(c), id, c.Param("studentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSessionResponse(id, snapshot), middleware.ExtractMeta(c, nil))
}

// SetNotes godoc
// @Summary Replace the topics and remarks of a draft
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.SessionNotesRequest true "Notes"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/notes [put]
func (h *SessionHandler) SetNotes(c *gin.Context) {
	id := c.Param("id")
	var req service.SessionNotesRequest
	if !bindJSON(c, &req) {
		return
	}
	snapshot, err := h.service.SetNotes(claimsFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSessionResponse(id, snapshot), middleware.ExtractMeta(c, nil))
}

// Save godoc
// @Summary Persist a draft's attendance and daily logs
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /sessions/{id}/save [post]
func (h *SessionHandler) Save(c *gin.Context) {
	id := c.Param("id")
	result, err := h.service.Save(c.Request.Context(), claimsFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SaveResponse{
		Summary: result.Summary,
		Session: dto.NewSessionResponse(id, result.Snapshot),
	}, noticesMeta(c, result.Snapshot.Notices))
}

// Discard godoc
// @Summary Discard a draft
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Discard(c *gin.Context) {
	if err := h.service.Discard(claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
