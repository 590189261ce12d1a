package handler

import (
	"net/http"
	"strconv"

	service "book-market/internal/service/postgresql"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// @Summary      List users
// @Tags         Admin
// @Produce      json
// @Security     ApiKeyAuth
// @Param        limit   query  int  false  "limit"
// @Param        offset  query  int  false  "offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	users, err := h.adminService.ListUsers(limit, offset)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// @Summary      Block or unblock a user
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id  path  string  true  "user id"
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/users/{id}/active [put]
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	if err := h.adminService.SetUserActive(currentUserID(c), userID, *input.Active); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user updated"})
}

// @Summary      Hide or restore a listing
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id  path  string  true  "sell post id"
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/sell-posts/{id}/moderate [put]
func (h *AdminHandler) ModerateSellPost(c *gin.Context) {
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input struct {
		Hide *bool `json:"hide" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	if err := h.adminService.ModerateSellPost(currentUserID(c), postID, *input.Hide); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "listing updated"})
}

// @Summary      Recent activity log
// @Tags         Admin
// @Produce      json
// @Security     ApiKeyAuth
// @Param        limit  query  int  false  "limit"
// @Success      200  {object}  map[string]interface{}
// @Router       /admin/activities [get]
func (h *AdminHandler) ListActivities(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	activities, err := h.adminService.ListActivities(limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}
