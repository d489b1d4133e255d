package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/olehvasylenko/contacts-api/internal/application"
	"github.com/olehvasylenko/contacts-api/internal/domain/entity"
	"github.com/olehvasylenko/contacts-api/internal/interface/middleware"
	"github.com/olehvasylenko/contacts-api/pkg/response"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

func currentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(middleware.CtxUserKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}

// Me GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	response.Success(c, http.StatusOK, toUserBody(u), "profile", nil)
}

// UpdateAvatar PATCH /api/users/avatar (multipart "file")
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing avatar file", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable avatar file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	updated, err := h.Svc.UploadAvatar(c.Request.Context(), u, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("avatar upload failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to update avatar", nil)
		return
	}
	response.Success(c, http.StatusOK, toUserBody(updated), "avatar updated", nil)
}
