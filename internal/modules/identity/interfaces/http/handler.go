package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soundrift/soundrift/internal/gateway/middleware"
	filestorage "github.com/soundrift/soundrift/internal/modules/filestorage/domain"
	"github.com/soundrift/soundrift/internal/modules/identity/application"
	"github.com/soundrift/soundrift/internal/modules/identity/domain"
	"github.com/soundrift/soundrift/internal/shared/utils"
)

type UserHandler struct {
	service        *application.UserService
	googleClientID string
}

func NewUserHandler(service *application.UserService, googleClientID string) *UserHandler {
	return &UserHandler{service: service, googleClientID: googleClientID}
}

type authResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	user, token, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeIdentityError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	user, token, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeIdentityError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (h *UserHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req application.GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		utils.WriteError(w, http.StatusBadRequest, "token is required", nil)
		return
	}

	user, token, err := h.service.GoogleLogin(r.Context(), h.googleClientID, req)
	if err != nil {
		writeIdentityError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CallerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeIdentityError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CallerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req application.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		writeIdentityError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CallerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, filestorage.MaxImageSize+1<<20)
	if err := r.ParseMultipartForm(filestorage.MaxImageSize); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "request too large or malformed", nil)
		return
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "picture file is required", nil)
		return
	}
	defer file.Close()

	user, err := h.service.UploadProfilePicture(r.Context(), userID, file, header.Filename, header.Size)
	if err != nil {
		writeIdentityError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CallerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	if err := h.service.Delete(r.Context(), userID); err != nil {
		writeIdentityError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeIdentityError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserAlreadyExists):
		utils.WriteError(w, http.StatusConflict, "email already registered", nil)
	case errors.Is(err, domain.ErrUserNotFound):
		utils.WriteError(w, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		utils.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, domain.ErrInvalidRole):
		utils.WriteError(w, http.StatusBadRequest, "invalid role", nil)
	case errors.Is(err, filestorage.ErrUploadFailed):
		utils.WriteError(w, http.StatusBadGateway, "file storage unavailable", nil)
	case errors.Is(err, filestorage.ErrEmptyFile),
		errors.Is(err, filestorage.ErrFileTooLarge),
		errors.Is(err, filestorage.ErrBadFileType):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	}
}
