package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"devchannels/internal/utils"
)

// jsonError maps an error to the taxonomy status and writes the JSON
// body. Internal failures are logged with their origin and redacted
// from the response.
func jsonError(c *gin.Context, err error) {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		status := utils.HTTPStatus(appErr.Code)
		if status == http.StatusInternalServerError {
			log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			c.JSON(status, gin.H{"message": "Server error"})
			return
		}
		c.JSON(status, gin.H{"message": appErr.Message})
		return
	}

	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
}

// bindingError turns request binding failures into the field-level
// validation response shape.
func bindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fieldErrors := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			fieldErrors = append(fieldErrors, gin.H{
				"param": fe.Field(),
				"msg":   validationMessage(fe),
			})
		}
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
