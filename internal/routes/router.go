package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ideabosque/openai-funct-base/internal/config"
	"github.com/ideabosque/openai-funct-base/internal/handlers"
	"github.com/ideabosque/openai-funct-base/internal/logging"
	"github.com/ideabosque/openai-funct-base/internal/metrics"
	"github.com/ideabosque/openai-funct-base/internal/middlewares"
)

// NewRouter wires the proxy routes.
func NewRouter(proxy *handlers.Proxy, metricsPath string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.RequestID())
	r.Use(middlewares.AccessLog())
	r.Use(middlewares.CORS())      // For handling CORS requests
	r.Use(handlers.ErrorHandler()) // for handling error

	r.POST("/graphql/:function_name", proxy.GraphQL)
	r.POST("/operation/:function_name", proxy.Operation)
	r.POST("/inquiry/:function_name", proxy.Inquiry)

	r.GET(metricsPath, metrics.Handler)
	r.GET("/health", handlers.HealthCheck)
	return r
}

// RunServer registers metrics and serves the proxy until the listener fails.
func RunServer(s config.Settings, proxy *handlers.Proxy) error {
	logging.Info("Starting function gateway", map[string]interface{}{
		"listen":            s.Listen,
		"dispatch_function": s.DispatchFunction,
		"per_call_endpoint": s.PerCallEndpoint,
		"cache_schema":      s.CacheSchema,
	})

	deniedMetricsSet, err := metrics.BuildDeniedMetricsSet(s.MetricsDenylist)
	if err != nil {
		return err
	}
	metrics.MustRegisterMetrics(prometheus.DefaultRegisterer, deniedMetricsSet)
	logging.Info("Metrics registered successfully", map[string]interface{}{"metricsDenylist": s.MetricsDenylist})

	gin.SetMode(gin.ReleaseMode)
	r := NewRouter(proxy, s.MetricsPath)

	logging.Info("Beginning to serve", map[string]interface{}{"listen": s.Listen, "metrics_path": s.MetricsPath})
	return r.Run(s.Listen)
}
