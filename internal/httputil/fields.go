package httputil

import (
	"net/http"

	"github.com/alu-network/backend/internal/validation"
)

// RespondFieldErrors sends validation failures as a 400 response keyed
// by field name, e.g. {"email": ["this field is required"]}.
func RespondFieldErrors(w http.ResponseWriter, errs validation.Errors) {
	RespondJSON(w, errs, http.StatusBadRequest)
}
