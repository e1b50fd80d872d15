package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationFields maps each failing field to the rule it broke.
func validationFields(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

// decodeValid decodes the body into target and validates it, writing a 400
// response and returning false on failure.
func decodeValid(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := decodeJSON(r, target); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := validate.Struct(target); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			jsonResponse(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationFields(ve),
			})
			return false
		}
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
