package http

import (
	"errors"
	"net/http"

	apperrors "github.com/Sagar-1103/taskify/pkg/errors"
	"github.com/Sagar-1103/taskify/pkg/validator"
)

// decode reads and validates a JSON body. Malformed JSON and validation
// failures become 400 AppErrors; an oversized body becomes a 413.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := validator.DecodeJSON(w, r, dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.TooLarge("Request body too large")
		}
		return apperrors.InvalidInput("Invalid request body")
	}
	if err := validator.Validate(dst); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	return nil
}
