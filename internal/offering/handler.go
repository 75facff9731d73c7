package offering

import (
	"errors"
	"net/http"

	"github.com/aaxiero/service/internal/request"
	"github.com/aaxiero/service/internal/response"
)

// Handler holds HTTP handlers for service endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new offering Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type serviceRequest struct {
	ServiceName *string `json:"serviceName" validate:"omitempty,max=200" example:"Interior design"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IconID      *string `json:"iconId" validate:"omitempty,uuid" example:"5f1c3c1e-2f6a-4c1e-9f7e-1d2b3c4d5e6f"`
}

func (req serviceRequest) input() Input {
	return Input{ServiceName: req.ServiceName, Description: req.Description, IconID: req.IconID}
}

// Create godoc
//
//	@Summary	Create service
//	@Tags		services
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		serviceRequest	true	"Service"
//	@Success	201		{object}	response.Envelope{data=Offering}
//	@Failure	400		{object}	response.Envelope
//	@Router		/admin/service [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	o, err := h.svc.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, o)
}

// List godoc
//
//	@Summary	List services
//	@Tags		services
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	response.Envelope{data=[]Offering}
//	@Router		/admin/service [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		response.InternalError(w, r, err)
		return
	}
	response.OK(w, list)
}

// Get godoc
//
//	@Summary	Get service
//	@Tags		services
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Service ID"
//	@Success	200	{object}	response.Envelope{data=Offering}
//	@Failure	404	{object}	response.Envelope
//	@Router		/admin/service/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := request.ID(r, "id")
	if !ok {
		response.NotFound(w, ErrNotFound.Error())
		return
	}
	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, o)
}

// Update godoc
//
//	@Summary	Update service
//	@Tags		services
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Service ID"
//	@Param		request	body		serviceRequest	true	"Fields to change"
//	@Success	200		{object}	response.Envelope{data=Offering}
//	@Failure	400		{object}	response.Envelope
//	@Failure	404		{object}	response.Envelope
//	@Router		/admin/service/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := request.ID(r, "id")
	if !ok {
		response.NotFound(w, ErrNotFound.Error())
		return
	}
	var req serviceRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	o, err := h.svc.Update(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, o)
}

// Delete godoc
//
//	@Summary	Delete service
//	@Tags		services
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Service ID"
//	@Success	200	{object}	response.Envelope
//	@Failure	404	{object}	response.Envelope
//	@Router		/admin/service/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := request.ID(r, "id")
	if !ok {
		response.NotFound(w, ErrNotFound.Error())
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.Deleted(w, "service deleted")
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrIconNotFound):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, err.Error())
	default:
		response.InternalError(w, r, err)
	}
}
