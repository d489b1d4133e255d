package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/olehvasylenko/contacts-api/internal/application"
	"github.com/olehvasylenko/contacts-api/internal/domain/entity"
	repo "github.com/olehvasylenko/contacts-api/internal/domain/repository"
	"github.com/olehvasylenko/contacts-api/internal/interface/middleware"
	"github.com/olehvasylenko/contacts-api/pkg/helpers"
	"github.com/olehvasylenko/contacts-api/pkg/validation"
)

var setupOnce sync.Once

func testSetup() {
	setupOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		validation.Init()
	})
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// memUserRepo backs handler tests with an in-memory user store.
type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	m.seq++
	u.ID = "user-" + strconv.Itoa(m.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUserRepo) UpdateRefreshToken(_ context.Context, userID string, token *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (m *memUserRepo) ConfirmEmail(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u.Confirmed = true
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memUserRepo) UpdateAvatar(_ context.Context, email string, url *string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u.Avatar = url
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

var _ repo.UserRepository = (*memUserRepo)(nil)

// memContactRepo mirrors the owner-scoping contract of the SQL repository.
type memContactRepo struct {
	mu       sync.Mutex
	seq      int
	contacts []entity.Contact
}

func (m *memContactRepo) Create(_ context.Context, fields repo.ContactFields, ownerID string) (*entity.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	now := time.Now()
	c := entity.Contact{
		ID:          "contact-" + strconv.Itoa(m.seq),
		FirstName:   fields.FirstName,
		LastName:    fields.LastName,
		Email:       fields.Email,
		PhoneNumber: fields.PhoneNumber,
		Birthday:    fields.Birthday,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.contacts = append(m.contacts, c)
	cp := c
	return &cp, nil
}

func (m *memContactRepo) List(_ context.Context, limit, offset int, ownerID string) ([]entity.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owned := m.owned(ownerID)
	if offset >= len(owned) {
		return []entity.Contact{}, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], nil
}

func (m *memContactRepo) GetByID(_ context.Context, id, ownerID string) (*entity.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.contacts {
		if m.contacts[i].ID == id && m.contacts[i].UserID == ownerID {
			cp := m.contacts[i]
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memContactRepo) Update(_ context.Context, id string, fields repo.ContactFields, ownerID string) (*entity.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.contacts {
		if m.contacts[i].ID == id && m.contacts[i].UserID == ownerID {
			c := &m.contacts[i]
			c.FirstName = fields.FirstName
			c.LastName = fields.LastName
			c.Email = fields.Email
			c.PhoneNumber = fields.PhoneNumber
			c.Birthday = fields.Birthday
			c.UpdatedAt = time.Now()
			cp := *c
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memContactRepo) Delete(_ context.Context, id, ownerID string) (*entity.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.contacts {
		if m.contacts[i].ID == id && m.contacts[i].UserID == ownerID {
			cp := m.contacts[i]
			m.contacts = append(m.contacts[:i], m.contacts[i+1:]...)
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memContactRepo) UpcomingBirthdays(_ context.Context, days int, ownerID string) ([]entity.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	today := time.Now()
	month := int(today.Month())
	maxDay := today.Day() + days + 1
	out := []entity.Contact{}
	for _, c := range m.owned(ownerID) {
		if c.Birthday != nil && int(c.Birthday.Month()) == month && c.Birthday.Day() <= maxDay {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memContactRepo) Search(_ context.Context, f repo.SearchFilter, ownerID string) ([]entity.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := []entity.Contact{}
	for _, c := range m.owned(ownerID) {
		if f.FirstName != "" && !strings.Contains(strings.ToLower(c.FirstName), strings.ToLower(f.FirstName)) {
			continue
		}
		if f.LastName != "" && !strings.Contains(strings.ToLower(c.LastName), strings.ToLower(f.LastName)) {
			continue
		}
		if f.Email != "" && !strings.Contains(strings.ToLower(c.Email), strings.ToLower(f.Email)) {
			continue
		}
		matched = append(matched, c)
	}
	if f.Skip >= len(matched) {
		return []entity.Contact{}, nil
	}
	end := f.Skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[f.Skip:end], nil
}

func (m *memContactRepo) owned(ownerID string) []entity.Contact {
	out := []entity.Contact{}
	for _, c := range m.contacts {
		if c.UserID == ownerID {
			out = append(out, c)
		}
	}
	return out
}

var _ repo.ContactRepository = (*memContactRepo)(nil)

// testEnv bundles the wired router and its backing fakes.
type testEnv struct {
	router   *gin.Engine
	users    *memUserRepo
	contacts *memContactRepo
	authSvc  *application.AuthService
	jwt      *helpers.JWTManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	testSetup()

	users := newMemUserRepo()
	contacts := &memContactRepo{}
	logger := testLogger()
	jwt := helpers.NewJWTManager("handler-test-secret", 15*time.Minute, 7*24*time.Hour, 24*time.Hour)

	authSvc := application.NewAuthService(users, jwt, nil, logger, "http://localhost:8080", false)
	contactSvc := application.NewContactService(contacts, logger, nil, "")
	userSvc := application.NewUserService(users, nil, "", logger)

	authHandler := NewAuthHandler(authSvc, nil, logger)
	contactHandler := NewContactHandler(contactSvc, logger)
	userHandler := NewUserHandler(userSvc, logger)

	r := gin.New()
	api := r.Group("/api")

	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/confirmed_email/:token", authHandler.ConfirmedEmail)
	api.POST("/auth/request_email", authHandler.RequestEmail)
	api.GET("/auth/refresh_token", authHandler.RefreshToken)

	authed := api.Group("/")
	authed.Use(middleware.Auth(users, jwt))
	authed.POST("/auth/logout", authHandler.Logout)
	authed.GET("/users/me", userHandler.Me)
	authed.PATCH("/users/avatar", userHandler.UpdateAvatar)

	cg := api.Group("/contacts")
	cg.Use(middleware.Auth(users, jwt))
	cg.GET("", contactHandler.List)
	cg.POST("", contactHandler.Create)
	cg.GET("/birthday", contactHandler.Birthdays)
	cg.GET("/search", contactHandler.Search)
	cg.GET("/suggest", contactHandler.Suggest)
	cg.GET("/:id", contactHandler.GetByID)
	cg.PUT("/:id", contactHandler.Update)
	cg.DELETE("/:id", contactHandler.Delete)

	return &testEnv{router: r, users: users, contacts: contacts, authSvc: authSvc, jwt: jwt}
}

// createConfirmedUser provisions a confirmed account and returns its access
// token.
func (e *testEnv) createConfirmedUser(t *testing.T, email, password string) (string, string) {
	t.Helper()
	ctx := context.Background()
	u, err := e.authSvc.Signup(ctx, "tester", email, password)
	require.NoError(t, err)
	require.NoError(t, e.users.ConfirmEmail(ctx, email))
	token, _, err := e.jwt.GenerateAccessToken(u.ID)
	require.NoError(t, err)
	return u.ID, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
