package handler

import (
	"net/http"

	"github.com/joestar02/fleetdesk/application/port/inbound"
	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/http/response"
)

type ComplianceHandler struct {
	compliance inbound.ComplianceUseCase
}

func NewComplianceHandler(compliance inbound.ComplianceUseCase) *ComplianceHandler {
	return &ComplianceHandler{compliance: compliance}
}

func (h *ComplianceHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	dashboard, err := h.compliance.Dashboard(r.Context(), id)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Compliance dashboard", dashboard)
}
