package project

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aaxiero/service/internal/asset"
	"github.com/aaxiero/service/internal/request"
	"github.com/aaxiero/service/internal/response"
)

// Handler holds HTTP handlers for project endpoints.
type Handler struct {
	svc     *Service
	uploads request.Uploads
}

// NewHandler creates a new project Handler.
func NewHandler(svc *Service, uploads request.Uploads) *Handler {
	return &Handler{svc: svc, uploads: uploads}
}

// Create godoc
//
//	@Summary		Create project
//	@Description	Accepts coverImage and image1..image8 files. categoryId is accepted as an alias of subCategoryId.
//	@Tags			projects
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			projectName			formData	string	true	"Project name"
//	@Param			subCategoryId		formData	string	false	"Subcategory ID"
//	@Param			subsubCategoryId	formData	string	false	"Sub-subcategory ID"
//	@Param			coverImage			formData	file	false	"Cover image"
//	@Param			image1				formData	file	false	"Slot 1"
//	@Success		201					{object}	response.Envelope
//	@Failure		400					{object}	response.Envelope
//	@Router			/admin/project [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.uploads.Read(w, r)
	if !ok {
		return
	}
	defer form.Discard()

	in, err := readInput(form)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	p, err := h.svc.Create(r.Context(), in, readFiles(form))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, p)
}

// List godoc
//
//	@Summary	List projects
//	@Tags		projects
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	response.Envelope
//	@Router		/admin/project [get]
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
//	@Summary	Get project
//	@Tags		projects
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Project ID"
//	@Success	200	{object}	response.Envelope
//	@Failure	404	{object}	response.Envelope
//	@Router		/admin/project/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := request.ID(r, "id")
	if !ok {
		response.NotFound(w, ErrNotFound.Error())
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, p)
}

// Update godoc
//
//	@Summary		Update project
//	@Description	Each provided image file replaces only its own slot; the previous image is released after the update is saved.
//	@Tags			projects
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id					path		string	true	"Project ID"
//	@Param			projectName			formData	string	false	"Project name"
//	@Param			subCategoryId		formData	string	false	"Subcategory ID"
//	@Param			subsubCategoryId	formData	string	false	"Sub-subcategory ID"
//	@Param			coverImage			formData	file	false	"Cover image"
//	@Param			image1				formData	file	false	"Slot 1"
//	@Success		200					{object}	response.Envelope
//	@Failure		400					{object}	response.Envelope
//	@Failure		404					{object}	response.Envelope
//	@Router			/admin/project/{id} [put]
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

	in, err := readInput(form)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	p, err := h.svc.Update(r.Context(), id, in, readFiles(form))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, p)
}

// ClearSlot godoc
//
//	@Summary	Clear one image slot
//	@Tags		projects
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string	true	"Project ID"
//	@Param		slot	path		int		true	"Slot (1-8)"
//	@Success	200		{object}	response.Envelope
//	@Failure	400		{object}	response.Envelope
//	@Failure	404		{object}	response.Envelope
//	@Router		/admin/project/{id}/images/{slot} [delete]
func (h *Handler) ClearSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := request.ID(r, "id")
	if !ok {
		response.NotFound(w, ErrNotFound.Error())
		return
	}
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		response.BadRequest(w, asset.ErrInvalidSlot.Error())
		return
	}
	p, err := h.svc.ClearSlot(r.Context(), id, slot)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, p)
}

// Delete godoc
//
//	@Summary	Delete project
//	@Tags		projects
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Project ID"
//	@Success	200	{object}	response.Envelope
//	@Failure	404	{object}	response.Envelope
//	@Router		/admin/project/{id} [delete]
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
	response.Deleted(w, "project deleted")
}

// readInput collects the text fields. categoryId is the pre-rename name of
// subCategoryId and is only consulted when subCategoryId is absent.
func readInput(form *request.Form) (Input, error) {
	sub := form.Value("subCategoryId")
	if sub == "" {
		sub = form.Value("categoryId")
	}
	in := Input{
		ProjectName:      request.Trimmed(form.Value("projectName")),
		SubCategoryID:    request.Trimmed(sub),
		SubSubCategoryID: request.Trimmed(form.Value("subsubCategoryId")),
	}
	if in.SubCategoryID != nil && !request.IsID(*in.SubCategoryID) {
		return Input{}, errors.New("subCategoryId must be a valid id")
	}
	if in.SubSubCategoryID != nil && !request.IsID(*in.SubSubCategoryID) {
		return Input{}, errors.New("subsubCategoryId must be a valid id")
	}
	return in, nil
}

func readFiles(form *request.Form) Files {
	f := Files{Cover: form.File("coverImage")}
	for i := range f.Slots {
		f.Slots[i] = form.File(SlotField(i + 1))
	}
	return f
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrSubCategoryNotFound),
		errors.Is(err, asset.ErrInvalidSlot):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, err.Error())
	default:
		response.InternalError(w, r, err)
	}
}
