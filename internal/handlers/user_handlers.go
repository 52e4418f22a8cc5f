package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/auth"
	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/models"
	"github.com/yasinhessnawi1/taskmanager/internal/storage"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// UserHandler handles user-related routes
type UserHandler struct {
	userService UserServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// currentPrincipal returns the identity resolved by the authorization gate.
// It answers 401 itself when the route was mounted without the gate.
func currentPrincipal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		utils.Unauthorized(w)
		return nil, false
	}
	return principal, true
}

// SignUp handles POST /users
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var signup models.UserSignup
	if err := utils.DecodeJSON(r, &signup); err != nil {
		utils.HandleError(w, err)
		return
	}

	resp, err := h.userService.SignUp(r.Context(), &signup)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, resp)
}

// Login handles POST /users/login.
// Every failure other than an internal one is a bodiless 400, so a client
// cannot tell an unknown email from a wrong password.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.Empty(w, http.StatusBadRequest)
		return
	}

	resp, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		appErr := utils.ParseError(err)
		if appErr.StatusCode >= http.StatusInternalServerError {
			utils.ErrorFromAppError(w, appErr)
			return
		}
		utils.Empty(w, http.StatusBadRequest)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// Logout handles POST /users/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	if err := h.userService.Logout(r.Context(), principal); err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.Empty(w, http.StatusOK)
}

// LogoutAll handles POST /users/logoutAll
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	principal, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	if err := h.userService.LogoutAll(r.Context(), principal); err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.Empty(w, http.StatusOK)
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, users)
}

// GetCurrentUser returns the current user's profile
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	utils.JSON(w, http.StatusOK, principal.User)
}

// GetUserByID handles GET /users/{id}
func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), chi.URLParam(r, constants.ParamID))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

// UpdateProfile handles PATCH /users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	updates, err := utils.DecodeUpdates(r, constants.UserUpdateFields)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), principal.UserID(), updates)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

// DeleteAccount handles DELETE /users/me
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	principal, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	user, err := h.userService.DeleteAccount(r.Context(), principal)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

// UploadAvatar handles POST /users/me/avatar with the image in the "avatar" form field
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	principal, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	file, header, err := readUpload(w, r, constants.AvatarFormField, storage.AvatarPolicy.MaxBytes)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	defer file.Close()

	if err := h.userService.UploadAvatar(r.Context(), principal.UserID(), header.Filename, header.Size, file); err != nil {
		writeUploadError(w, err)
		return
	}

	utils.Message(w, http.StatusOK, constants.MsgAvatarUploaded)
}

// DeleteAvatar handles DELETE /users/me/avatar
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	principal, ok := currentPrincipal(w, r)
	if !ok {
		return
	}

	if err := h.userService.DeleteAvatar(r.Context(), principal.UserID()); err != nil {
		writeUploadError(w, err)
		return
	}

	utils.Message(w, http.StatusOK, constants.MsgAvatarDeleted)
}

// GetAvatar handles GET /users/{id}/avatar and streams the stored image
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, constants.ParamID)

	rc, contentType, err := h.userService.OpenAvatar(r.Context(), userID)
	if err != nil {
		writeUploadError(w, err)
		return
	}
	defer func() {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Str(constants.LogFieldUserID, userID).Msg("Failed to close avatar")
		}
	}()

	utils.Stream(w, contentType, rc)
}
