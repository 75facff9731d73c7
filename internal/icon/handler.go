package icon

import (
	"errors"
	"net/http"

	"github.com/aaxiero/service/internal/request"
	"github.com/aaxiero/service/internal/response"
)

// Handler holds HTTP handlers for icon endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new icon Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type iconRequest struct {
	Name string `json:"name" validate:"required,max=120" example:"facebook"`
	Icon string `json:"icon" validate:"required" example:"fa-brands fa-facebook"`
}

// Create godoc
//
//	@Summary	Create icon
//	@Tags		icons
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		iconRequest	true	"Icon"
//	@Success	201		{object}	response.Envelope{data=Icon}
//	@Failure	400		{object}	response.Envelope
//	@Failure	409		{object}	response.Envelope
//	@Router		/admin/icons [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req iconRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	i, err := h.svc.Create(r.Context(), req.Name, req.Icon)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, i)
}

// List godoc
//
//	@Summary	List icons
//	@Tags		icons
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	response.Envelope{data=[]Icon}
//	@Router		/admin/icons [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	icons, err := h.svc.List(r.Context())
	if err != nil {
		response.InternalError(w, r, err)
		return
	}
	response.OK(w, icons)
}

// Delete godoc
//
//	@Summary	Delete icon
//	@Tags		icons
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Icon ID"
//	@Success	200	{object}	response.Envelope
//	@Failure	404	{object}	response.Envelope
//	@Failure	409	{object}	response.Envelope
//	@Router		/admin/icons/{id} [delete]
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
	response.Deleted(w, "icon deleted")
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrInUse):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, r, err)
	}
}
