package category

import (
	"errors"
	"net/http"

	"github.com/aaxiero/service/internal/request"
	"github.com/aaxiero/service/internal/response"
)

// Handler holds HTTP handlers for category endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new category Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=120" example:"Interiors"`
}

// Create godoc
//
//	@Summary		Create category
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		categoryRequest	true	"Category"
//	@Success		201		{object}	response.Envelope{data=Category}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Router			/admin/categories [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	c, err := h.svc.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, c)
}

// List godoc
//
//	@Summary		List categories
//	@Description	Public and admin listing, newest first.
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]Category}
//	@Router			/categories [get]
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
//	@Summary	Get category
//	@Tags		categories
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Category ID"
//	@Success	200	{object}	response.Envelope{data=Category}
//	@Failure	404	{object}	response.Envelope
//	@Router		/admin/categories/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := request.ID(r, "id")
	if !ok {
		response.NotFound(w, ErrNotFound.Error())
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, c)
}

// Update godoc
//
//	@Summary	Rename category
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string			true	"Category ID"
//	@Param		request	body		categoryRequest	true	"Category"
//	@Success	200		{object}	response.Envelope{data=Category}
//	@Failure	400		{object}	response.Envelope
//	@Failure	404		{object}	response.Envelope
//	@Failure	409		{object}	response.Envelope
//	@Router		/admin/categories/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := request.ID(r, "id")
	if !ok {
		response.NotFound(w, ErrNotFound.Error())
		return
	}
	var req categoryRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	c, err := h.svc.Update(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, c)
}

// Delete godoc
//
//	@Summary		Delete category
//	@Description	Also deletes the category's gallery and its stored images.
//	@Tags			categories
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Category ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/admin/categories/{id} [delete]
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
	response.Deleted(w, "category deleted")
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrAlreadyExists):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, r, err)
	}
}
