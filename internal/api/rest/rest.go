package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	// Health check endpoint (no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		dao := v1.Group("/daos/:dao")
		dao.GET("/delegation-percentage", handler.GetDelegationPercentage)
		dao.GET("/proposals", handler.ListProposals)
		dao.GET("/proposals/:id", handler.GetProposal)
		dao.GET("/governance", handler.GetGovernanceParameters)
	}
}
