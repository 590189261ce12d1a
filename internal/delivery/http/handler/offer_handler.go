package handler

import (
	"net/http"

	entity "book-market/internal/domain"
	service "book-market/internal/service/postgresql"

	"github.com/gin-gonic/gin"
)

type OfferHandler struct {
	offerService *service.OfferService
}

func NewOfferHandler(offerService *service.OfferService) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

// @Summary      Make an offer
// @Description  Create a price offer on an available sell post.
// @Tags         Offers
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Success      201  {object}  map[string]interface{}
// @Router       /offers [post]
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	var input entity.CreateOfferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "detail": err.Error()})
		return
	}

	offer, err := h.offerService.CreateOffer(currentUserID(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Offer created. Waiting for seller response.",
		"offer":   offer,
	})
}

// @Summary      Respond to an offer
// @Description  Seller accepts, rejects or counters a buyer's offer.
// @Tags         Offers
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /offers/{id}/respond [post]
func (h *OfferHandler) RespondToOffer(c *gin.Context) {
	offerID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var input entity.RespondOfferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "detail": err.Error()})
		return
	}

	offer, err := h.offerService.RespondToOffer(currentUserID(c), offerID, input)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offer": offer})
}

// @Summary      Accept a counter offer
// @Tags         Offers
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /offers/{id}/accept-counter [post]
func (h *OfferHandler) AcceptCounter(c *gin.Context) {
	offerID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	offer, err := h.offerService.AcceptCounter(currentUserID(c), offerID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offer": offer})
}

// @Summary      Withdraw an offer
// @Tags         Offers
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /offers/{id} [delete]
func (h *OfferHandler) WithdrawOffer(c *gin.Context) {
	offerID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	offer, err := h.offerService.WithdrawOffer(currentUserID(c), offerID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offer": offer})
}

// @Summary      My offers
// @Tags         Offers
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /offers/my [get]
func (h *OfferHandler) GetMyOffers(c *gin.Context) {
	offers, err := h.offerService.GetMyOffers(currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

// @Summary      Offers on a listing
// @Description  Seller's view of all offers on one of their posts.
// @Tags         Offers
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /sell-posts/{id}/offers [get]
func (h *OfferHandler) GetOffersForPost(c *gin.Context) {
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	offers, err := h.offerService.GetOffersForPost(currentUserID(c), postID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}
