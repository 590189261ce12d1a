package config

import (
	"net/http"

	entity "book-market/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func SetupGin() *gin.Engine {
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Body size limit (10 MB), covers cover-image uploads.
	router.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 10*1024*1024)
		c.Next()
	})

	registerValidators()

	return router
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookcondition", func(fl validator.FieldLevel) bool {
			return entity.ValidCondition(fl.Field().String())
		})
	}
}
