package gallery

import (
	"errors"
	"net/http"

	"github.com/aaxiero/service/internal/asset"
	"github.com/aaxiero/service/internal/request"
	"github.com/aaxiero/service/internal/response"
)

// Handler holds HTTP handlers for gallery endpoints.
type Handler struct {
	svc     *Service
	uploads request.Uploads
}

// NewHandler creates a new gallery Handler.
func NewHandler(svc *Service, uploads request.Uploads) *Handler {
	return &Handler{svc: svc, uploads: uploads}
}

type deleteImageRequest struct {
	ImageURL string `json:"imageUrl" validate:"required" example:"/uploads/gallery/7f9c.jpg"`
}

// CreateOrAppend godoc
//
//	@Summary		Create or extend a category gallery
//	@Description	Creates the category's gallery (201) or appends to it (200). A gallery holds at most 20 images; an upload that would exceed it is rejected whole.
//	@Tags			gallery
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			categoryId	formData	string	true	"Category ID"
//	@Param			images		formData	file	true	"Images"
//	@Success		200			{object}	response.Envelope{data=Gallery}
//	@Success		201			{object}	response.Envelope{data=Gallery}
//	@Failure		400			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Router			/admin/gallery [post]
func (h *Handler) CreateOrAppend(w http.ResponseWriter, r *http.Request) {
	form, ok := h.uploads.Read(w, r)
	if !ok {
		return
	}
	defer form.Discard()

	categoryID := form.Value("categoryId")
	if categoryID == "" {
		response.BadRequest(w, "categoryId is required")
		return
	}
	if !request.IsID(categoryID) {
		response.NotFound(w, ErrCategoryNotFound.Error())
		return
	}

	g, created, err := h.svc.CreateOrAppend(r.Context(), categoryID, form.Files("images"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if created {
		response.Created(w, g)
		return
	}
	response.OK(w, g)
}

// List godoc
//
//	@Summary	List galleries
//	@Tags		gallery
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	response.Envelope{data=[]Gallery}
//	@Router		/admin/gallery [get]
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
//	@Summary	Get a category's gallery
//	@Tags		gallery
//	@Produce	json
//	@Security	BearerAuth
//	@Param		categoryId	path		string	true	"Category ID"
//	@Success	200			{object}	response.Envelope{data=Gallery}
//	@Failure	404			{object}	response.Envelope
//	@Router		/admin/gallery/{categoryId} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := request.ID(r, "categoryId")
	if !ok {
		response.NotFound(w, ErrNotFound.Error())
		return
	}
	g, err := h.svc.GetByCategory(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, g)
}

// Replace godoc
//
//	@Summary		Replace a category's images
//	@Description	Stores the new images, then releases every previous one. Creates the gallery (201) when the category has none.
//	@Tags			gallery
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			categoryId	path		string	true	"Category ID"
//	@Param			images		formData	file	true	"Images"
//	@Success		200			{object}	response.Envelope{data=Gallery}
//	@Success		201			{object}	response.Envelope{data=Gallery}
//	@Failure		400			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Router			/admin/gallery/{categoryId} [put]
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := request.ID(r, "categoryId")
	if !ok {
		response.NotFound(w, ErrCategoryNotFound.Error())
		return
	}
	form, ok := h.uploads.Read(w, r)
	if !ok {
		return
	}
	defer form.Discard()

	g, created, err := h.svc.Replace(r.Context(), categoryID, form.Files("images"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if created {
		response.Created(w, g)
		return
	}
	response.OK(w, g)
}

// Delete godoc
//
//	@Summary	Delete a category's gallery
//	@Tags		gallery
//	@Produce	json
//	@Security	BearerAuth
//	@Param		categoryId	path		string	true	"Category ID"
//	@Success	200			{object}	response.Envelope
//	@Failure	404			{object}	response.Envelope
//	@Router		/admin/gallery/{categoryId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := request.ID(r, "categoryId")
	if !ok {
		response.NotFound(w, ErrNotFound.Error())
		return
	}
	if err := h.svc.Delete(r.Context(), categoryID); err != nil {
		writeError(w, r, err)
		return
	}
	response.Deleted(w, "gallery deleted")
}

// AddImages godoc
//
//	@Summary	Append images to a gallery
//	@Tags		gallery
//	@Accept		multipart/form-data
//	@Produce	json
//	@Security	BearerAuth
//	@Param		galleryID	path		string	true	"Gallery ID"
//	@Param		images		formData	file	true	"Images"
//	@Success	200			{object}	response.Envelope{data=Gallery}
//	@Failure	400			{object}	response.Envelope
//	@Failure	404			{object}	response.Envelope
//	@Router		/admin/galleries/{galleryID}/images [post]
func (h *Handler) AddImages(w http.ResponseWriter, r *http.Request) {
	galleryID, ok := request.ID(r, "galleryID")
	if !ok {
		response.NotFound(w, ErrNotFound.Error())
		return
	}
	form, ok := h.uploads.Read(w, r)
	if !ok {
		return
	}
	defer form.Discard()

	g, err := h.svc.AppendByID(r.Context(), galleryID, form.Files("images"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, g)
}

// DeleteImage godoc
//
//	@Summary	Remove one image from a gallery
//	@Tags		gallery
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		galleryID	path		string				true	"Gallery ID"
//	@Param		request		body		deleteImageRequest	true	"Image to remove"
//	@Success	200			{object}	response.Envelope{data=Gallery}
//	@Failure	400			{object}	response.Envelope
//	@Failure	404			{object}	response.Envelope
//	@Router		/admin/galleries/{galleryID}/images [delete]
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	galleryID, ok := request.ID(r, "galleryID")
	if !ok {
		response.NotFound(w, ErrNotFound.Error())
		return
	}
	var req deleteImageRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	g, err := h.svc.DeleteImage(r.Context(), galleryID, req.ImageURL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Envelope{Success: true, Data: g, Message: "image deleted"})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, asset.ErrNoFiles),
		errors.Is(err, asset.ErrCapacityExceeded):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrCategoryNotFound),
		errors.Is(err, asset.ErrReferenceNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrAlreadyExists):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, r, err)
	}
}
