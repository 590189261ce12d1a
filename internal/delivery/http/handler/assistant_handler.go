package handler

import (
	"net/http"

	service "book-market/internal/service/postgresql"

	"github.com/gin-gonic/gin"
)

type AssistantHandler struct {
	assistantService *service.AssistantService
}

func NewAssistantHandler(assistantService *service.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

// @Summary      Ask the reading assistant
// @Tags         Assistant
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /assistant/chat [post]
func (h *AssistantHandler) Chat(c *gin.Context) {
	var input struct {
		Question string `json:"question" binding:"required,max=2000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	answer, err := h.assistantService.Chat(c.Request.Context(), input.Question)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
