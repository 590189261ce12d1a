package handler

import (
	"net/http"
	"strconv"

	entity "book-market/internal/domain"
	service "book-market/internal/service/postgresql"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// @Summary      List catalog books
// @Tags         Catalog
// @Produce      json
// @Param        keyword   query  string  false  "search title/author"
// @Param        category  query  string  false  "category"
// @Param        limit     query  int     false  "limit"
// @Param        offset    query  int     false  "offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /books [get]
func (h *CatalogHandler) ListBooks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	filter := entity.BookFilter{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Limit:    limit,
		Offset:   offset,
	}

	books, err := h.catalogService.ListBooks(filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

// @Summary      Get a book
// @Tags         Catalog
// @Produce      json
// @Param        id  path  string  true  "book id"
// @Success      200  {object}  map[string]interface{}
// @Router       /books/{id} [get]
func (h *CatalogHandler) GetBook(c *gin.Context) {
	bookID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	book, err := h.catalogService.GetBook(bookID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book})
}

// @Summary      List categories
// @Tags         Catalog
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /books/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// @Summary      Add a catalog book
// @Tags         Catalog
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Success      201  {object}  map[string]interface{}
// @Router       /admin/books [post]
func (h *CatalogHandler) CreateBook(c *gin.Context) {
	var input entity.CreateBookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "detail": err.Error()})
		return
	}

	book, err := h.catalogService.CreateBook(currentUserID(c), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "book added to catalog", "book": book})
}
