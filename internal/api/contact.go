package api

import (
	"errors"
	"net/http"

	"github.com/techflow/techflow-backend/internal/contact"
)

// SubmitContact handles POST /v1/contact
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var submission contact.Submission
	if !h.decodeJSON(w, r, &submission) {
		return
	}

	receipt, err := h.contactSvc.Submit(r.Context(), submission)
	if err != nil {
		var verr *contact.ValidationError
		if errors.As(err, &verr) {
			h.writeJSON(w, http.StatusBadRequest, ContactErrorResponse{Error: verr.Message})
			return
		}
		h.writeJSON(w, http.StatusInternalServerError, ContactErrorResponse{
			Error:   "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요.",
			Details: err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, receipt)
}
