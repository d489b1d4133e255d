package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/olehvasylenko/contacts-api/internal/application"
	"github.com/olehvasylenko/contacts-api/internal/domain/entity"
	repo "github.com/olehvasylenko/contacts-api/internal/domain/repository"
	"github.com/olehvasylenko/contacts-api/internal/interface/middleware"
	"github.com/olehvasylenko/contacts-api/pkg/response"
	"github.com/olehvasylenko/contacts-api/pkg/validation"
)

const birthdayLayout = "2006-01-02"

type ContactHandler struct {
	Svc    *application.ContactService
	Logger *logrus.Logger
}

func NewContactHandler(svc *application.ContactService, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{Svc: svc, Logger: logger}
}

// contactRequest is the full contact representation. Updates overwrite every
// field; there is no partial update.
type contactRequest struct {
	FirstName   string `json:"first_name" binding:"required,max=50"`
	LastName    string `json:"last_name" binding:"required,max=50"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number" binding:"required,max=50"`
	Birthday    string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
}

type contactBody struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Birthday    *string   `json:"birthday"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type listQuery struct {
	Limit  int `form:"limit,default=10" binding:"gte=10,lte=500"`
	Offset int `form:"offset,default=0" binding:"gte=0"`
}

type birthdayQuery struct {
	Days int `form:"days,default=7" binding:"gte=7"`
}

type searchQuery struct {
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
	Email     string `form:"email"`
	Skip      int    `form:"skip,default=0" binding:"gte=0"`
	Limit     int    `form:"limit,default=10" binding:"gte=10,lte=100"`
}

type suggestQuery struct {
	Q    string `form:"q" binding:"required"`
	Size int    `form:"size,default=10" binding:"gte=1,lte=50"`
}

func (r contactRequest) toFields() repo.ContactFields {
	f := repo.ContactFields{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
	}
	if r.Birthday != "" {
		// Format validated by binding.
		t, _ := time.Parse(birthdayLayout, r.Birthday)
		f.Birthday = &t
	}
	return f
}

func toContactBody(c *entity.Contact) contactBody {
	b := contactBody{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.Birthday != nil {
		s := c.Birthday.Format(birthdayLayout)
		b.Birthday = &s
	}
	return b
}

func toContactBodies(cs []entity.Contact) []contactBody {
	out := make([]contactBody, 0, len(cs))
	for i := range cs {
		out = append(out, toContactBody(&cs[i]))
	}
	return out
}

func ownerID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}

// List GET /api/contacts
func (h *ContactHandler) List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	contacts, err := h.Svc.List(c.Request.Context(), q.Limit, q.Offset, ownerID(c))
	if err != nil {
		h.Logger.WithError(err).Error("list contacts failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list contacts", nil)
		return
	}
	response.Success(c, http.StatusOK, toContactBodies(contacts), "contacts", map[string]any{"limit": q.Limit, "offset": q.Offset})
}

// Create POST /api/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	contact, err := h.Svc.Create(c.Request.Context(), req.toFields(), ownerID(c))
	if err != nil {
		h.Logger.WithError(err).Error("create contact failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to create contact", nil)
		return
	}
	response.Success(c, http.StatusCreated, toContactBody(contact), "contact created", nil)
}

// GetByID GET /api/contacts/:id
func (h *ContactHandler) GetByID(c *gin.Context) {
	contact, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"), ownerID(c))
	if err != nil {
		h.notFoundOr500(c, err, "get contact failed")
		return
	}
	response.Success(c, http.StatusOK, toContactBody(contact), "contact", nil)
}

// Update PUT /api/contacts/:id (full overwrite)
func (h *ContactHandler) Update(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	contact, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req.toFields(), ownerID(c))
	if err != nil {
		h.notFoundOr500(c, err, "update contact failed")
		return
	}
	response.Success(c, http.StatusOK, toContactBody(contact), "contact updated", nil)
}

// Delete DELETE /api/contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	_, err := h.Svc.Delete(c.Request.Context(), c.Param("id"), ownerID(c))
	if err != nil {
		h.notFoundOr500(c, err, "delete contact failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// Birthdays GET /api/contacts/birthday
func (h *ContactHandler) Birthdays(c *gin.Context) {
	var q birthdayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	contacts, err := h.Svc.UpcomingBirthdays(c.Request.Context(), q.Days, ownerID(c))
	if err != nil {
		h.Logger.WithError(err).Error("birthday lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to look up birthdays", nil)
		return
	}
	response.Success(c, http.StatusOK, toContactBodies(contacts), "upcoming birthdays", map[string]any{"days": q.Days})
}

// Search GET /api/contacts/search
func (h *ContactHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	filter := repo.SearchFilter{
		FirstName: q.FirstName,
		LastName:  q.LastName,
		Email:     q.Email,
		Skip:      q.Skip,
		Limit:     q.Limit,
	}
	contacts, err := h.Svc.Search(c.Request.Context(), filter, ownerID(c))
	if err != nil {
		h.Logger.WithError(err).Error("search contacts failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, toContactBodies(contacts), "search results", nil)
}

// Suggest GET /api/contacts/suggest (Elasticsearch-backed full text lookup)
func (h *ContactHandler) Suggest(c *gin.Context) {
	var q suggestQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	hits, err := h.Svc.Suggest(c.Request.Context(), q.Q, ownerID(c), q.Size)
	if err != nil {
		h.Logger.WithError(err).Error("suggest failed")
		response.Error[any](c, http.StatusInternalServerError, "suggest failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "suggestions", nil)
}

func (h *ContactHandler) notFoundOr500(c *gin.Context, err error, logMsg string) {
	if errors.Is(err, repo.ErrNotFound) {
		response.Error[any](c, http.StatusNotFound, "contact not found", nil)
		return
	}
	h.Logger.WithError(err).Error(logMsg)
	response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
}
