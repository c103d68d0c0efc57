package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var promHandler = promhttp.Handler()

// Handler exposes the default Prometheus registry.
func Handler(c *gin.Context) {
	promHandler.ServeHTTP(c.Writer, c.Request)
}
