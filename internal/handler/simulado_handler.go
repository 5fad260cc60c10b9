package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studyhighway/backend/internal/middleware"
	"studyhighway/backend/internal/service"
)

type SimuladoHandler struct {
	simuladoService *service.SimuladoService
}

type simuladoRequest struct {
	Name    string `json:"name"`
	Date    string `json:"date"`
	Results string `json:"results"`
}

func NewSimuladoHandler(simuladoService *service.SimuladoService) *SimuladoHandler {
	return &SimuladoHandler{simuladoService: simuladoService}
}

func (h *SimuladoHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	simulados, apiErr := h.simuladoService.List(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"simulados": simulados})
}

func (h *SimuladoHandler) Create(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	userID := middleware.UserID(c)
	simulado, apiErr := h.simuladoService.Create(c.Request.Context(), userID, input)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"simulado": simulado})
}

func (h *SimuladoHandler) Update(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	userID := middleware.UserID(c)
	simulado, apiErr := h.simuladoService.Update(c.Request.Context(), userID, c.Param("id"), input)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"simulado": simulado})
}

func (h *SimuladoHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.simuladoService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *SimuladoHandler) bindInput(c *gin.Context) (service.SimuladoInput, bool) {
	var req simuladoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return service.SimuladoInput{}, false
	}

	input := service.SimuladoInput{Name: req.Name, Results: req.Results}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"code": "invalid_date", "message": "date must be YYYY-MM-DD"},
			})
			return service.SimuladoInput{}, false
		}
		input.Date = date
	}
	return input, true
}
