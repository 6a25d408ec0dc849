package api

import (
	"github.com/gin-gonic/gin"
)

// Configures all API routes
func (s *Server) setupRoutes(router *gin.Engine) {
	classify := s.getHandlerClassify()

	// Unversioned alias kept for clients written against the bare proxy
	router.POST("/proxy_classify", classify)

	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	// API version prefix
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", s.getHandlerHealth())
		v1.GET("/ready", s.getHandlerReady())
		v1.GET("/stats", s.getHandlerStats())
		v1.POST("/classify", classify)
	}
}
