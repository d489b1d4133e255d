package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/olehvasylenko/contacts-api/internal/application"
	"github.com/olehvasylenko/contacts-api/internal/domain/entity"
	"github.com/olehvasylenko/contacts-api/internal/infrastructure/postgres"
	"github.com/olehvasylenko/contacts-api/internal/interface/middleware"
	"github.com/olehvasylenko/contacts-api/pkg/response"
	"github.com/olehvasylenko/contacts-api/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Audit  *postgres.AuditRepository
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, audit *postgres.AuditRepository, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Audit: audit, Logger: logger}
}

type signupRequest struct {
	Username string `json:"username" binding:"required,min=2,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

// loginRequest follows the OAuth2 password form: username carries the email.
type loginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type requestEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// tokenResponse is the OAuth2-style token triple; unlike the rest of the API
// it is written without the envelope so token clients see the exact shape.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// userBody is the public user representation; the password hash never leaves
// the repository layer.
type userBody struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Avatar    *string `json:"avatar"`
	Confirmed bool    `json:"confirmed"`
}

func toUserBody(u *entity.User) userBody {
	return userBody{ID: u.ID, Username: u.Username, Email: u.Email, Avatar: u.Avatar, Confirmed: u.Confirmed}
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func (h *AuthHandler) audit(c *gin.Context, userID, email, action string, metadata map[string]any) {
	if h.Audit == nil {
		return
	}
	entry := postgres.AuditEntry{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Metadata:  metadata,
	}
	if err := h.Audit.Insert(c.Request.Context(), entry); err != nil {
		h.Logger.WithError(err).WithField("action", action).Warn("audit insert failed")
	}
}

// Signup POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Signup(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			response.Error[any](c, http.StatusConflict, "account already exists", nil)
			return
		}
		h.Logger.WithError(err).Error("signup failed")
		response.Error[any](c, http.StatusInternalServerError, "signup failed", nil)
		return
	}
	h.audit(c, u.ID, u.Email, "signup", nil)
	response.Success(c, http.StatusCreated, toUserBody(u), "account created, check your email for confirmation", nil)
}

// ConfirmedEmail GET /api/auth/confirmed_email/:token
func (h *AuthHandler) ConfirmedEmail(c *gin.Context) {
	token := c.Param("token")
	already, err := h.Svc.ConfirmEmail(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, application.ErrInvalidToken) {
			response.Error[any](c, http.StatusUnprocessableEntity, "invalid or expired confirmation token", nil)
			return
		}
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusBadRequest, "verification error", nil)
			return
		}
		h.Logger.WithError(err).Error("email confirmation failed")
		response.Error[any](c, http.StatusInternalServerError, "verification error", nil)
		return
	}
	if already {
		response.Success[any](c, http.StatusOK, nil, "your email is already confirmed", nil)
		return
	}
	h.audit(c, "", "", "email_confirmed", nil)
	response.Success[any](c, http.StatusOK, nil, "email confirmed", nil)
}

// RequestEmail POST /api/auth/request_email resends the confirmation mail.
// The reply is neutral for unknown addresses to avoid account enumeration.
func (h *AuthHandler) RequestEmail(c *gin.Context) {
	var req requestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	already, err := h.Svc.RequestConfirmation(c.Request.Context(), req.Email)
	if err != nil && !errors.Is(err, application.ErrUserNotFound) {
		h.Logger.WithError(err).Error("request email failed")
		response.Error[any](c, http.StatusInternalServerError, "request failed", nil)
		return
	}
	if already {
		response.Success[any](c, http.StatusOK, nil, "your email is already confirmed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "check your email for confirmation", nil)
}

// Login POST /api/auth/login (form-encoded username=email + password).
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, pair, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrEmailNotConfirmed):
			h.audit(c, "", req.Username, "login_unconfirmed", nil)
			response.Error[any](c, http.StatusUnauthorized, "email not confirmed", nil)
		case errors.Is(err, application.ErrInvalidCredentials):
			h.audit(c, "", req.Username, "login_failed", nil)
			response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		default:
			h.Logger.WithError(err).Error("login failed")
			response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		}
		return
	}

	h.audit(c, u.ID, u.Email, "login", nil)
	c.JSON(http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, TokenType: "bearer"})
}

// RefreshToken GET /api/auth/refresh_token; the bearer token is the refresh
// credential, not an access token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, TokenType: "bearer"})
}

// Logout POST /api/auth/logout (auth required) revokes the stored refresh
// token.
func (h *AuthHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Logout(c.Request.Context(), uid); err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("logout failed")
		response.Error[any](c, http.StatusInternalServerError, "logout failed", nil)
		return
	}
	h.audit(c, uid, "", "logout", nil)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}
