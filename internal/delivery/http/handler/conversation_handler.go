package handler

import (
	"net/http"

	entity "book-market/internal/domain"
	service "book-market/internal/service/postgresql"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	convService *service.ConversationService
}

func NewConversationHandler(convService *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{convService: convService}
}

// @Summary      Start or fetch a conversation
// @Description  Get-or-create the thread between the caller and a post's seller.
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /conversations [post]
func (h *ConversationHandler) StartConversation(c *gin.Context) {
	var input entity.StartConversationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "detail": err.Error()})
		return
	}

	conv, err := h.convService.GetOrCreateConversation(currentUserID(c), input.SellPostID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

// @Summary      My conversations
// @Tags         Conversations
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /conversations [get]
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	convs, err := h.convService.ListConversations(currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

// @Summary      Messages in a conversation
// @Tags         Conversations
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /conversations/{id}/messages [get]
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	convID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	msgs, err := h.convService.ListMessages(currentUserID(c), convID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// @Summary      Send a message
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Success      201  {object}  map[string]interface{}
// @Router       /conversations/{id}/messages [post]
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	convID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input entity.SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "detail": err.Error()})
		return
	}

	msg, err := h.convService.SendMessage(currentUserID(c), convID, input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// @Summary      Mark conversation read
// @Tags         Conversations
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /conversations/{id}/read [post]
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	convID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.convService.MarkRead(currentUserID(c), convID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked read"})
}

func (h *ConversationHandler) Archive(c *gin.Context)   { h.setFlag(c, "archive") }
func (h *ConversationHandler) Unarchive(c *gin.Context) { h.setFlag(c, "unarchive") }
func (h *ConversationHandler) Block(c *gin.Context)     { h.setFlag(c, "block") }
func (h *ConversationHandler) Unblock(c *gin.Context)   { h.setFlag(c, "unblock") }

func (h *ConversationHandler) setFlag(c *gin.Context, op string) {
	convID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID := currentUserID(c)

	var err error
	switch op {
	case "archive":
		err = h.convService.SetArchived(userID, convID, true)
	case "unarchive":
		err = h.convService.SetArchived(userID, convID, false)
	case "block":
		err = h.convService.SetBlocked(userID, convID, true)
	case "unblock":
		err = h.convService.SetBlocked(userID, convID, false)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": op + "d"})
}

// @Summary      Mark transaction complete
// @Description  Either participant flags the real-world handoff, unlocking reviews. Idempotent.
// @Tags         Conversations
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /conversations/{id}/complete [post]
func (h *ConversationHandler) MarkTransactionComplete(c *gin.Context) {
	convID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	conv, err := h.convService.MarkTransactionComplete(currentUserID(c), convID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}
