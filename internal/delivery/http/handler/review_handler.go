package handler

import (
	"net/http"

	entity "book-market/internal/domain"
	service "book-market/internal/service/postgresql"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// @Summary      Review a seller
// @Description  Buyer reviews the seller after the conversation's transaction is complete.
// @Tags         Reviews
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Success      201  {object}  map[string]interface{}
// @Router       /conversations/{id}/review [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	convID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input entity.CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "detail": err.Error()})
		return
	}

	review, err := h.reviewService.CreateReview(currentUserID(c), convID, input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// @Summary      Seller reviews
// @Tags         Reviews
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /sellers/{id}/reviews [get]
func (h *ReviewHandler) GetSellerReviews(c *gin.Context) {
	sellerID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.GetSellerReviews(sellerID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	rating, err := h.reviewService.GetSellerRating(sellerID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "rating": rating})
}
