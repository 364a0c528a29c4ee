package api

import (
	"net/http"

	"github.com/sjlee-dev/vidbrief/services/auth"
	"github.com/sjlee-dev/vidbrief/validation"
)

type AuthHandler struct {
	service   auth.Service
	validator *validation.Validator
}

func NewAuthHandler(service auth.Service, validator *validation.Validator) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: validator,
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.HandleRegister"

	if err := h.validator.ValidateRequest(r, validation.RequestValidationOpts{
		MaxContentLength: maxJSONBody,
		RequireJSON:      true,
	}); err != nil {
		respondError(w, r, err)
		return
	}

	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(op, req); err != nil {
		respondError(w, r, err)
		return
	}

	session, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, session)
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.HandleLogin"

	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(op, req); err != nil {
		respondError(w, r, err)
		return
	}

	session, err := h.service.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, session)
}
