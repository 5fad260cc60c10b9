package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "studyhighway/backend/internal/errors"
	"studyhighway/backend/internal/middleware"
	"studyhighway/backend/internal/service"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

type freeTimerRequest struct {
	Subject string `json:"subject"`
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) GetState(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{"code": "unauthorized", "message": "unauthorized"},
		})
		return
	}

	view, apiErr := h.sessionService.State(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": view})
}

func (h *SessionHandler) Start(c *gin.Context) {
	h.control(c, h.sessionService.Start)
}

func (h *SessionHandler) Pause(c *gin.Context) {
	h.control(c, h.sessionService.Pause)
}

func (h *SessionHandler) Stop(c *gin.Context) {
	h.control(c, h.sessionService.Stop)
}

func (h *SessionHandler) CreateFreeTimer(c *gin.Context) {
	var req freeTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	view, apiErr := h.sessionService.CreateFreeTimer(c.Request.Context(), userID, req.Subject)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": view})
}

func (h *SessionHandler) DeleteFreeTimer(c *gin.Context) {
	userID := middleware.UserID(c)
	view, apiErr := h.sessionService.DeleteFreeTimer(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": view})
}

func (h *SessionHandler) control(
	c *gin.Context,
	op func(ctx context.Context, userID, timerID string) (*service.SessionView, *apperrors.APIError),
) {
	userID := middleware.UserID(c)
	view, apiErr := op(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": view})
}
