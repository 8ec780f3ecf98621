package router

import (
	"net/http"

	"github.com/acmutd/grades-api/internal/server/handlers"
	"github.com/acmutd/grades-api/internal/server/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New wires handlers and middleware into an HTTP router.
func New(handler *handlers.Handler, mw *middleware.Manager, gatherer prometheus.Gatherer) http.Handler {
	router := gin.New()
	router.Use(mw.RequestID(), mw.AccessLog(), mw.Metrics(), mw.Recovery(), mw.CORS(), mw.RateLimit())

	router.GET("/health", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	router.GET("/", handler.Index)

	router.GET("/search", handler.Search)
	router.GET("/suggest", handler.Suggest)
	router.GET("/get_years", handler.GetYears)
	router.GET("/get_semesters", handler.GetSemesters)
	router.GET("/get_grades", handler.GetGrades)

	// Anything else is looked up in the public directory.
	router.NoRoute(handler.Assets)

	return router
}
