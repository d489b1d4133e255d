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

// AuthModule wires the account lifecycle routes.
// Public: signup, login, confirmation, resend, refresh.
// Protected: logout.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Users   repo.UserRepository
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, users repo.UserRepository, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, Users: users, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	confirmLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/auth/signup", signupLimiter, m.Handler.Signup)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.GET("/auth/confirmed_email/:token", confirmLimiter, m.Handler.ConfirmedEmail)
	rg.POST("/auth/request_email", confirmLimiter, m.Handler.RequestEmail)
	rg.GET("/auth/refresh_token", refreshLimiter, m.Handler.RefreshToken)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Users, m.JWT))
	{
		auth.POST("/auth/logout", m.Handler.Logout)
	}
}
