package router

import (
	"github.com/olehvasylenko/contacts-api/internal/application"
	"github.com/olehvasylenko/contacts-api/internal/container"
	pginfra "github.com/olehvasylenko/contacts-api/internal/infrastructure/postgres"
	handlers "github.com/olehvasylenko/contacts-api/internal/interface/http"
	"github.com/olehvasylenko/contacts-api/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the
// router registry. Called once during startup after the container is
// populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	userRepo := pginfra.NewUserRepository(pool)
	contactRepo := pginfra.NewContactRepository(pool, logger, cfg.BirthdayCalendarMode)
	auditRepo := pginfra.NewAuditRepository(pool)

	// Typed-nil guard: a nil *RabbitPublisher stored in the interface would
	// defeat the service's nil check.
	var pub application.EmailPublisher
	if p := container.GetRabbitPub(); p != nil {
		pub = p
	}

	authSvc := application.NewAuthService(userRepo, container.GetJWT(), pub, logger, cfg.BaseURL, cfg.MailSendEnabled)
	contactSvc := application.NewContactService(contactRepo, logger, container.GetES(), cfg.ESContactsIndex)
	userSvc := application.NewUserService(userRepo, container.GetGCS(), cfg.GCSBucket, logger)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, auditRepo, logger), userRepo, container.GetJWT()))
	r.Add(modules.NewContactModule(handlers.NewContactHandler(contactSvc, logger), userRepo, container.GetJWT()))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, logger), userRepo, container.GetJWT()))
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(pool, logger)))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
