// Package server exposes the HTTP query and trigger surface. It carries no
// pipeline logic of its own; every route is a thin pass-through to the
// store or the aggregator.
package server

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"buscacasas/config"
	"buscacasas/scraper"
	"buscacasas/storage"
)

// Server bundles the router with its collaborators.
type Server struct {
	engine *gin.Engine
	cfg    *config.Config
}

// New builds the router with all API routes registered.
func New(cfg *config.Config, store storage.Store, agg *scraper.Aggregator, logger *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	h := &Handler{cfg: cfg, store: store, agg: agg, logger: logger}

	api := engine.Group("/api")
	{
		api.GET("/properties", h.GetProperties)
		api.GET("/properties/:id", h.GetProperty)
		api.DELETE("/properties/:id", h.DeactivateProperty)
		api.GET("/stats", h.GetStats)
		api.GET("/favorites", h.GetFavorites)
		api.POST("/favorites", h.AddFavorite)
		api.POST("/scrape", h.Scrape)
	}

	return &Server{engine: engine, cfg: cfg}
}

// Run blocks serving HTTP on the configured port.
func (s *Server) Run() error {
	return s.engine.Run(fmt.Sprintf(":%s", s.cfg.ServerPort))
}
