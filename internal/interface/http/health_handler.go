package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/olehvasylenko/contacts-api/pkg/response"
)

type HealthHandler struct {
	Pool   *pgxpool.Pool
	Logger *logrus.Logger
}

func NewHealthHandler(pool *pgxpool.Pool, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{Pool: pool, Logger: logger}
}

// Check GET /api/healthchecker verifies persistence connectivity.
func (h *HealthHandler) Check(c *gin.Context) {
	var one int
	if err := h.Pool.QueryRow(c.Request.Context(), "SELECT 1").Scan(&one); err != nil || one != 1 {
		h.Logger.WithError(err).Error("healthcheck database probe failed")
		response.Error[any](c, http.StatusInternalServerError, "error connecting to the database", nil)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"database": "up"}, "welcome to the contacts API", nil)
}
