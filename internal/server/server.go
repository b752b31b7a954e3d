// Package server is the HTTP and websocket surface: room connections,
// history reads, CSV export, health probes, and metrics.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Zanex/poker-planning/internal/config"
	"github.com/Zanex/poker-planning/internal/domain"
	"github.com/Zanex/poker-planning/internal/room"
)

// postgresHealthChecker is the minimal interface for the readiness probe.
type postgresHealthChecker interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	rooms     *room.Manager
	history   domain.HistoryReader
	db        postgresHealthChecker
	limits    *connectionLimits
	startTime time.Time
}

func NewServer(cfg *config.Config, rooms *room.Manager, history domain.HistoryReader, db postgresHealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	srv := &Server{
		echo:      e,
		config:    cfg,
		rooms:     rooms,
		history:   history,
		db:        db,
		limits:    newConnectionLimits(cfg.MaxWebSocketConnections, cfg.MaxConnectionsPerIP, cfg.ConnectionRatePerIP, cfg.ConnectionBurstPerIP),
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
