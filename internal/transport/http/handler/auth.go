package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodgram/internal/app"
	"foodgram/internal/logging"
	"foodgram/internal/transport/http/middleware"
	"foodgram/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,username,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,max=128"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

type DeleteAccountRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createdUserDTO{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Detail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *AuthHandler) SetPassword(c *gin.Context) {
	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}
	if err := h.authService.SetPassword(c.Request.Context(), viewerID(c), req.CurrentPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteAccount removes the caller together with everything they own.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	var req DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}
	if err := h.authService.DeleteAccount(c.Request.Context(), viewerID(c), req.CurrentPassword); err != nil {
		writeError(c, err)
		return
	}
	if claims, ok := middleware.CurrentClaims(c); ok {
		if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
			logging.Ctx(c.Request.Context()).Warn().Err(err).Msg("revoke token after account deletion failed")
		}
	}
	response.NoContent(c)
}
