package api

import (
	_ "github.com/dileroc6/analisis-variaciones-felinos/docs"
	"github.com/dileroc6/analisis-variaciones-felinos/internal/api/handler"
	"github.com/dileroc6/analisis-variaciones-felinos/pkg/router"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RegisterRoutes mounts the runs API and the swagger UI on r.
func RegisterRoutes(r *router.Router, h *handler.Handler) {
	r.GET("/health", h.Health)
	r.POST("/api/v1/runs", h.CreateRun)
	r.GET("/api/v1/runs", h.ListRuns)
	r.GET("/api/v1/report", h.GetReport)
	// Generic run route last
	r.GET("/api/v1/runs/*", h.GetRun)
	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))
}
