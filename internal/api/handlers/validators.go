package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nitty-hq/server/internal/api/problem"
)

// validate is shared across handlers; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateBody runs struct validation on a decoded request body and writes a
// field-keyed 400 on failure.
func validateBody(w http.ResponseWriter, r *http.Request, body any, env string) bool {
	err := validate.Struct(body)
	if err == nil {
		return true
	}

	fields := map[string]interface{}{}
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		for _, fieldErr := range invalid {
			fields[strings.ToLower(fieldErr.Field())] = validationMessage(fieldErr)
		}
	}

	problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env,
		problem.WithErrors(fields))
	return false
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fieldErr.Param() + " characters"
	case "max":
		return "must be at most " + fieldErr.Param() + " characters"
	case "gte":
		return "must be >= " + fieldErr.Param()
	default:
		return "is invalid"
	}
}
