package handler

import (
	"net/http"

	"github.com/joestar02/fleetdesk/application/port/inbound"
	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/http/response"
)

type OrganizationHandler struct {
	organizations inbound.OrganizationUseCase
}

func NewOrganizationHandler(organizations inbound.OrganizationUseCase) *OrganizationHandler {
	return &OrganizationHandler{organizations: organizations}
}

func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := domain.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	orgUnitID, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid organization unit id")
		return
	}
	unit, err := h.organizations.Get(r.Context(), id, orgUnitID)
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Organization unit", unit)
}
