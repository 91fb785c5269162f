package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker 依存先の疎通確認
type HealthChecker interface {
	HealthCheck() error
}

// HealthHandler GET /api/health
func HealthHandler(checkers ...HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, checker := range checkers {
			if checker == nil {
				continue
			}
			if err := checker.HealthCheck(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": "BeerMap-App",
					"details": err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "BeerMap-App"})
	}
}
