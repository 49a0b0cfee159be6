package enquiry

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/beton-labs/backend-beton/internal/common"
	"github.com/beton-labs/backend-beton/internal/obs"
)

// Handler exposes the enquiry HTTP surface.
type Handler struct {
	Svc *Service
}

// Create handles POST /enquiries.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		countEnquiry("rejected")
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	enq, err := h.Svc.Create(r.Context(), input)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			countEnquiry("rejected")
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
			return
		}
		countEnquiry("error")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to submit enquiry", nil)
		return
	}
	countEnquiry("accepted")
	common.JSON(w, http.StatusCreated, enq)
}

func countEnquiry(result string) {
	if obs.EnquiriesTotal != nil {
		obs.EnquiriesTotal.WithLabelValues(result).Inc()
	}
}
