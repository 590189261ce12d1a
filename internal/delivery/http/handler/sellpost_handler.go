package handler

import (
	"net/http"
	"path/filepath"

	entity "book-market/internal/domain"
	service "book-market/internal/service/postgresql"
	"book-market/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SellPostHandler struct {
	sellPostService *service.SellPostService
	store           storage.Store
}

func NewSellPostHandler(sellPostService *service.SellPostService, store storage.Store) *SellPostHandler {
	return &SellPostHandler{sellPostService: sellPostService, store: store}
}

// @Summary      List a book for sale
// @Description  Create a sell post, optionally with a cover image (multipart field "cover").
// @Tags         SellPosts
// @Accept       multipart/form-data
// @Produce      json
// @Security     ApiKeyAuth
// @Success      201  {object}  map[string]interface{}
// @Router       /sell-posts [post]
func (h *SellPostHandler) CreateSellPost(c *gin.Context) {
	var input entity.CreateSellPostInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "detail": err.Error()})
		return
	}

	coverURL := ""
	if file, err := c.FormFile("cover"); err == nil {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable cover file"})
			return
		}
		defer src.Close()

		objectName := "covers/" + uuid.New().String() + filepath.Ext(file.Filename)
		url, err := h.store.Save(c.Request.Context(), objectName, file.Header.Get("Content-Type"), src)
		if err != nil {
			abortWithError(c, err)
			return
		}
		coverURL = url
	}

	post, err := h.sellPostService.CreateSellPost(currentUserID(c), input, coverURL)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"sell_post": post})
}

// @Summary      Browse listings
// @Tags         SellPosts
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /sell-posts [get]
func (h *SellPostHandler) Browse(c *gin.Context) {
	var filter entity.SellPostFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter", "detail": err.Error()})
		return
	}

	posts, err := h.sellPostService.Browse(filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sell_posts": posts})
}

// @Summary      Listing detail
// @Tags         SellPosts
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /sell-posts/{id} [get]
func (h *SellPostHandler) GetSellPost(c *gin.Context) {
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	post, err := h.sellPostService.GetSellPost(postID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sell_post": post})
}

// @Summary      My listings
// @Tags         SellPosts
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /sell-posts/my [get]
func (h *SellPostHandler) MyPosts(c *gin.Context) {
	posts, err := h.sellPostService.MyPosts(currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sell_posts": posts})
}

// @Summary      Mark a pending sale sold
// @Tags         SellPosts
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /sell-posts/{id}/sold [post]
func (h *SellPostHandler) MarkSold(c *gin.Context) {
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	post, err := h.sellPostService.MarkSold(currentUserID(c), postID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sell_post": post})
}

// @Summary      Release a pending sale
// @Description  Return the listing to AVAILABLE when the handoff fell through.
// @Tags         SellPosts
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /sell-posts/{id}/release [post]
func (h *SellPostHandler) ReleasePost(c *gin.Context) {
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	post, err := h.sellPostService.ReleasePost(currentUserID(c), postID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sell_post": post})
}

// @Summary      Remove a listing
// @Description  Hides the post if it has offers or conversations, deletes it otherwise.
// @Tags         SellPosts
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /sell-posts/{id} [delete]
func (h *SellPostHandler) RemoveSellPost(c *gin.Context) {
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.sellPostService.RemoveSellPost(currentUserID(c), postID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "listing removed"})
}
