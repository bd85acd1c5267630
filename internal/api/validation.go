package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationError is one field-level problem with a request body.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// FormatValidationErrors turns binding failures into field-level errors.
func FormatValidationErrors(verrs validator.ValidationErrors) []ValidationError {
	errs := make([]ValidationError, 0, len(verrs))
	for _, err := range verrs {
		errs = append(errs, ValidationError{
			Field:   err.Field(),
			Tag:     err.Tag(),
			Message: getErrorMessage(err),
		})
	}
	return errs
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "gt":
		return err.Field() + " must be greater than " + err.Param()
	case "gte":
		return err.Field() + " must be greater than or equal to " + err.Param()
	default:
		return err.Field() + " is invalid"
	}
}

// BindingError responds with field-level details when the failure came
// from struct validation, or a generic bad-request otherwise.
func BindingError(c *gin.Context, err error) {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": FormatValidationErrors(verrs),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
