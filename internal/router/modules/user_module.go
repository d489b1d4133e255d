package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/olehvasylenko/contacts-api/internal/container"
	repo "github.com/olehvasylenko/contacts-api/internal/domain/repository"
	handlers "github.com/olehvasylenko/contacts-api/internal/interface/http"
	"github.com/olehvasylenko/contacts-api/internal/interface/middleware"
	"github.com/olehvasylenko/contacts-api/pkg/helpers"
)

// UserModule wires profile routes: current user and avatar upload.
type UserModule struct {
	Handler *handlers.UserHandler
	Users   repo.UserRepository
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, users repo.UserRepository, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, Users: users, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/users")
	auth.Use(middleware.Auth(m.Users, m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/me", m.Handler.Me)
		auth.PATCH("/avatar", m.Handler.UpdateAvatar)
	}
}
