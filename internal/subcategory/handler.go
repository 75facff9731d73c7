package subcategory

import (
	"errors"
	"net/http"

	"github.com/aaxiero/service/internal/request"
	"github.com/aaxiero/service/internal/response"
)

// Handler holds HTTP handlers for subcategory endpoints.
type Handler struct {
	svc     *Service
	uploads request.Uploads
}

// NewHandler creates a new subcategory Handler.
func NewHandler(svc *Service, uploads request.Uploads) *Handler {
	return &Handler{svc: svc, uploads: uploads}
}

// Create godoc
//
//	@Summary	Create subcategory
//	@Tags		subcategories
//	@Accept		multipart/form-data
//	@Produce	json
//	@Security	BearerAuth
//	@Param		name	formData	string	true	"Name"
//	@Param		image	formData	file	false	"Thumbnail"
//	@Success	201		{object}	response.Envelope{data=SubCategory}
//	@Failure	400		{object}	response.Envelope
//	@Failure	409		{object}	response.Envelope
//	@Router		/admin/subcategories [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.uploads.Read(w, r)
	if !ok {
		return
	}
	defer form.Discard()

	sc, err := h.svc.Create(r.Context(), form.Value("name"), form.File("image"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, sc)
}

// List godoc
//
//	@Summary	List subcategories
//	@Tags		subcategories
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	response.Envelope{data=[]SubCategory}
//	@Router		/admin/subcategories [get]
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
//	@Summary	Get subcategory
//	@Tags		subcategories
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Subcategory ID"
//	@Success	200	{object}	response.Envelope{data=SubCategory}
//	@Failure	404	{object}	response.Envelope
//	@Router		/admin/subcategories/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := request.ID(r, "id")
	if !ok {
		response.NotFound(w, ErrNotFound.Error())
		return
	}
	sc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, sc)
}

// Update godoc
//
//	@Summary	Update subcategory
//	@Tags		subcategories
//	@Accept		multipart/form-data
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string	true	"Subcategory ID"
//	@Param		name	formData	string	true	"Name"
//	@Param		image	formData	file	false	"New thumbnail"
//	@Success	200		{object}	response.Envelope{data=SubCategory}
//	@Failure	400		{object}	response.Envelope
//	@Failure	404		{object}	response.Envelope
//	@Failure	409		{object}	response.Envelope
//	@Router		/admin/subcategories/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := request.ID(r, "id")
	if !ok {
		response.NotFound(w, ErrNotFound.Error())
		return
	}
	form, ok := h.uploads.Read(w, r)
	if !ok {
		return
	}
	defer form.Discard()

	sc, err := h.svc.Update(r.Context(), id, form.Value("name"), form.File("image"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, sc)
}

// Delete godoc
//
//	@Summary	Delete subcategory
//	@Tags		subcategories
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Subcategory ID"
//	@Success	200	{object}	response.Envelope
//	@Failure	404	{object}	response.Envelope
//	@Router		/admin/subcategories/{id} [delete]
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
	response.Deleted(w, "subcategory deleted")
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
