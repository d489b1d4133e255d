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

// ContactModule wires the owner-scoped contact routes; everything here sits
// behind bearer auth. Fixed paths (birthday, search, suggest) register
// before the :id route so Gin does not shadow them.
type ContactModule struct {
	Handler *handlers.ContactHandler
	Users   repo.UserRepository
	JWT     *helpers.JWTManager
}

func NewContactModule(h *handlers.ContactHandler, users repo.UserRepository, jwt *helpers.JWTManager) *ContactModule {
	return &ContactModule{Handler: h, Users: users, JWT: jwt}
}

func (m *ContactModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/contacts")
	auth.Use(middleware.Auth(m.Users, m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("", m.Handler.List)
		auth.POST("", m.Handler.Create)
		auth.GET("/birthday", m.Handler.Birthdays)
		auth.GET("/search", m.Handler.Search)
		auth.GET("/suggest", m.Handler.Suggest)
		auth.GET("/:id", m.Handler.GetByID)
		auth.PUT("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
	}
}
