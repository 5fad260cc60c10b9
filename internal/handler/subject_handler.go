package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyhighway/backend/internal/middleware"
	"studyhighway/backend/internal/service"
)

type SubjectHandler struct {
	subjectService *service.SubjectService
}

type importRequest struct {
	Bulk string `json:"bulk"`
}

type subjectUpdateRequest struct {
	Name       string `json:"name"`
	Importance string `json:"importance"`
}

type topicUpdateRequest struct {
	Name string `json:"name"`
}

type recordRequest struct {
	TimeSpent         float64 `json:"timeSpent"`
	QuestionsAnswered int     `json:"questionsAnswered"`
	QuestionsCorrect  int     `json:"questionsCorrect"`
	Notes             string  `json:"notes"`
}

func NewSubjectHandler(subjectService *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService}
}

func (h *SubjectHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	result, apiErr := h.subjectService.Import(c.Request.Context(), userID, req.Bulk)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *SubjectHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	withRecords := c.Query("records") == "true"
	subjects, apiErr := h.subjectService.List(
		c.Request.Context(),
		userID,
		c.Query("search"),
		c.Query("importance"),
		withRecords,
	)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

func (h *SubjectHandler) UpdateSubject(c *gin.Context) {
	var req subjectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	if apiErr := h.subjectService.UpdateSubject(c.Request.Context(), userID, c.Param("id"), req.Name, req.Importance); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.subjectService.DeleteSubject(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *SubjectHandler) UpdateTopic(c *gin.Context) {
	var req topicUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	if apiErr := h.subjectService.UpdateTopic(c.Request.Context(), userID, c.Param("id"), c.Param("topicId"), req.Name); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (h *SubjectHandler) DeleteTopic(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.subjectService.DeleteTopic(c.Request.Context(), userID, c.Param("id"), c.Param("topicId")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *SubjectHandler) AddRecord(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	topic, apiErr := h.subjectService.AppendRecord(c.Request.Context(), userID, c.Param("id"), c.Param("topicId"), service.RecordInput{
		TimeSpent:         req.TimeSpent,
		QuestionsAnswered: req.QuestionsAnswered,
		QuestionsCorrect:  req.QuestionsCorrect,
		Notes:             req.Notes,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"topic": topic})
}

func (h *SubjectHandler) Performance(c *gin.Context) {
	userID := middleware.UserID(c)
	view, apiErr := h.subjectService.Performance(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"performance": view})
}
