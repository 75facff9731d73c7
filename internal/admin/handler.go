package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aaxiero/service/internal/response"
)

// Handler holds HTTP handlers for admin endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new admin Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type loginRequest struct {
	Email    string `json:"email"    example:"admin@aaxiero.com"`
	Password string `json:"password" example:"secret"`
}

type loginData struct {
	Token string       `json:"token" example:"eyJhbGci..."`
	Admin loginProfile `json:"admin"`
}

type loginProfile struct {
	Email string `json:"email" example:"admin@aaxiero.com"`
}

// Login godoc
//
//	@Summary		Admin login
//	@Description	Exchange admin credentials for a bearer token valid for one hour. Body keys are matched case-insensitively.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	response.Envelope{data=loginData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/admin/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLogin(r)
	if err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		response.BadRequest(w, "email and password required")
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		response.Unauthorized(w, "invalid credentials")
		return
	}
	if err != nil {
		response.InternalError(w, r, err)
		return
	}

	response.OK(w, loginData{
		Token: result.Token,
		Admin: loginProfile{Email: result.Admin.Email},
	})
}

// decodeLogin accepts "email", "Email", "EMAIL" and so on.
func decodeLogin(r *http.Request) (loginRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return loginRequest{}, err
	}
	var req loginRequest
	for k, v := range raw {
		var dst *string
		switch strings.ToLower(k) {
		case "email":
			dst = &req.Email
		case "password":
			dst = &req.Password
		default:
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return loginRequest{}, err
		}
	}
	req.Email = strings.TrimSpace(req.Email)
	return req, nil
}
