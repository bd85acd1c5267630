package server

import (
	"net/http"

	"github.com/lltsaorg/thiha-shop-app/internal/api"
	"github.com/lltsaorg/thiha-shop-app/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

// NotificationQueue reports how many admin notifications are waiting
// for delivery. Admin only.
func NotificationQueue(notifier *notify.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pending": notifier.QueueLength(c.Request.Context()),
		})
	}
}

func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
