package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	appErrors "github.com/vendora-hq/vendora/pkg/errors"
	"github.com/vendora-hq/vendora/pkg/response"
	appValidator "github.com/vendora-hq/vendora/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation
// rules. When validation fails, an error response is automatically written
// and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest(formatValidationError(err)))
		return false
	}

	return true
}

func formatValidationError(err error) string {
	if err == nil {
		return "invalid request payload"
	}

	ve, ok := err.(appValidator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return "invalid request payload"
	}

	failure := ve[0]
	switch failure.Tag {
	case "required":
		return fmt.Sprintf("%s is required", failure.Field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", failure.Field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", failure.Field, failure.Param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", failure.Field, failure.Param)
	default:
		return fmt.Sprintf("%s failed validation: %s", failure.Field, failure.Tag)
	}
}
