package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go.ngs.io/glider-terrain/internal/usecase"
)

// RouterOptions configures the cross-cutting middleware.
type RouterOptions struct {
	// AllowedOrigins lists CORS origins; empty allows all origins.
	AllowedOrigins []string
	// MeshRPS is the sustained rate of mesh downloads served per second.
	MeshRPS float64
}

// SetupRouter creates and configures the Gin router.
func SetupRouter(terrain *usecase.Terrain, opts RouterOptions) *gin.Engine {
	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()
	if len(opts.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	handler := NewHandler(terrain)

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.GET("/map", handler.GetMap)
	v1.GET("/mesh", RateLimit(opts.MeshRPS, 2), handler.GetMesh)
	v1.GET("/texture", handler.GetTexture)
	v1.GET("/pick", handler.GetPick)
	v1.GET("/elevation", handler.GetElevation)
	v1.GET("/project", handler.GetProject)

	// Flight tracks.
	v1.POST("/flight/track", handler.PostTrack)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
