package handler

import (
	"net/http"

	entity "book-market/internal/domain"
	service "book-market/internal/service/postgresql"

	"github.com/gin-gonic/gin"
)

type LoanHandler struct {
	loanService *service.LoanService
}

func NewLoanHandler(loanService *service.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// @Summary      Borrow a book
// @Tags         Loans
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Success      201  {object}  map[string]interface{}
// @Router       /loans [post]
func (h *LoanHandler) Borrow(c *gin.Context) {
	var input entity.BorrowInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "detail": err.Error()})
		return
	}

	loan, err := h.loanService.Borrow(currentUserID(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "book borrowed", "loan": loan})
}

// @Summary      Return a loan
// @Tags         Loans
// @Produce      json
// @Security     ApiKeyAuth
// @Param        id  path  string  true  "loan id"
// @Success      200  {object}  map[string]interface{}
// @Router       /loans/{id}/return [post]
func (h *LoanHandler) Return(c *gin.Context) {
	loanID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	loan, err := h.loanService.Return(currentUserID(c), loanID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book returned", "loan": loan})
}

// @Summary      List my loans
// @Tags         Loans
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /loans [get]
func (h *LoanHandler) MyLoans(c *gin.Context) {
	loans, err := h.loanService.MyLoans(currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans})
}
