package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodgram/internal/app"
	"foodgram/internal/pkg/pagination"
	"foodgram/internal/transport/http/response"
)

type UserHandler struct {
	users    *app.UserService
	pageSize int
}

type AvatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}

func NewUserHandler(users *app.UserService, pageSize int) *UserHandler {
	return &UserHandler{users: users, pageSize: pageSize}
}

func (h *UserHandler) List(c *gin.Context) {
	params := pagination.Parse(c.Request.URL.Query(), h.pageSize)
	profiles, total, err := h.users.List(c.Request.Context(), viewerID(c), params.Offset(), params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.New(requestURL(c), params, total, toProfileDTOs(profiles)))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.respondProfile(c, id)
}

func (h *UserHandler) Me(c *gin.Context) {
	h.respondProfile(c, viewerID(c))
}

func (h *UserHandler) respondProfile(c *gin.Context, id uint) {
	profile, err := h.users.Get(c.Request.Context(), viewerID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileDTO(*profile))
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindingError(c, err)
		return
	}
	url, err := h.users.SetAvatar(c.Request.Context(), viewerID(c), req.Avatar)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": url})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	if err := h.users.DeleteAvatar(c.Request.Context(), viewerID(c)); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	card, err := h.users.Subscribe(c.Request.Context(), viewerID(c), id, queryInt(c, "recipes_limit"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSubscriptionDTO(*card))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.users.Unsubscribe(c.Request.Context(), viewerID(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	params := pagination.Parse(c.Request.URL.Query(), h.pageSize)
	cards, total, err := h.users.Subscriptions(c.Request.Context(), viewerID(c),
		params.Offset(), params.Limit, queryInt(c, "recipes_limit"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.New(requestURL(c), params, total, toSubscriptionDTOs(cards)))
}

func (h *UserHandler) Activity(c *gin.Context) {
	events, err := h.users.Activity(c.Request.Context(), viewerID(c), queryInt(c, "limit"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
