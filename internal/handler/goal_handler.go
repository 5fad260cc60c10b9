package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyhighway/backend/internal/middleware"
	"studyhighway/backend/internal/model"
	"studyhighway/backend/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

type goalRequest struct {
	Subjects          []string                `json:"subjects"`
	WeeklyHours       float64                 `json:"weeklyHours"`
	DistributionType  string                  `json:"distributionType"`
	DailyDistribution model.DailyDistribution `json:"dailyDistribution"`
	IsActive          *bool                   `json:"isActive"`
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

func (h *GoalHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	goals, apiErr := h.goalService.List(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

func (h *GoalHandler) Create(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	goal, apiErr := h.goalService.Create(c.Request.Context(), userID, service.GoalInput{
		Subjects:          req.Subjects,
		WeeklyHours:       req.WeeklyHours,
		DistributionType:  req.DistributionType,
		DailyDistribution: req.DailyDistribution,
		IsActive:          req.IsActive,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

func (h *GoalHandler) Update(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	goal, apiErr := h.goalService.Update(c.Request.Context(), userID, c.Param("id"), service.GoalInput{
		Subjects:          req.Subjects,
		WeeklyHours:       req.WeeklyHours,
		DistributionType:  req.DistributionType,
		DailyDistribution: req.DailyDistribution,
		IsActive:          req.IsActive,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

func (h *GoalHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.goalService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
