package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/openbank/openbank-api/internal/api/shared"
	"github.com/openbank/openbank-api/internal/service"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	users     *service.UserService
	validator *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{
		users:     users,
		validator: validator.New(),
	}
}

// Register handles the /auth/register endpoint.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	var dob time.Time
	if req.DateOfBirth != "" {
		// Format already validated by the datetime tag
		dob, _ = time.Parse("2006-01-02", req.DateOfBirth)
	}

	user, err := h.users.Register(r.Context(), service.RegisterParams{
		Username:    req.Username,
		Firstname:   req.Firstname,
		Lastname:    req.Lastname,
		Password:    req.Password,
		DateOfBirth: dob,
		Gender:      req.Gender,
		Tel:         req.Tel,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	_, token, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		UserID: user.ID,
		Tag:    user.Tag,
		Token:  token,
	})
}

// Login handles the /auth/login endpoint.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, token, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		UserID: user.ID,
		Tag:    user.Tag,
		Token:  token,
	})
}
