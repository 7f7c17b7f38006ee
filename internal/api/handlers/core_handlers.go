package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/j50301m/wallet-server/internal/infrastructure/database"
	"github.com/j50301m/wallet-server/pkg/logger"
)

// CoreHandlers serves the operational endpoints.
type CoreHandlers struct {
	db     *sqlx.DB
	logger *logger.Logger
}

func NewCoreHandlers(db *sqlx.DB, logger *logger.Logger) *CoreHandlers {
	return &CoreHandlers{db: db, logger: logger}
}

// Health handles GET /health.
func (h *CoreHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /ready. The service is ready when the database
// responds.
func (h *CoreHandlers) Ready(c *gin.Context) {
	if err := database.HealthCheck(h.db); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
