package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Room websocket
	s.echo.GET("/ws/room/:id", s.handleRoomWebSocket)

	// History read path
	s.echo.GET("/api/history/:id", s.handleHistory)
	s.echo.GET("/api/export/:id", s.handleExportCSV)
}
