package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/c9s/pythia/pkg/generator"
	"github.com/c9s/pythia/pkg/slideshow"
)

var log = logrus.WithField("component", "server")

// RefreshFunc regenerates the charts and returns the new report.
type RefreshFunc func(ctx context.Context) (*generator.Report, error)

// Server serves the slideshow page, its control API and the chart images.
type Server struct {
	Player    *slideshow.Player
	GraphsDir string

	// Refresh is optional, POST /api/refresh is disabled without it
	Refresh RefreshFunc

	// Quit is called by POST /api/quit
	Quit func()

	hub *hub
	srv *http.Server
}

// New creates the server and subscribes it to the player state. It must be called before the player runs.
func New(player *slideshow.Player, graphsDir string) *Server {
	s := &Server{
		Player:    player,
		GraphsDir: graphsDir,
		hub:       newHub(),
	}

	player.OnChange(s.hub.broadcast)
	return s
}

// Run listens on bind, "127.0.0.1:0" picks a free port, and serves until ctx is done.
func (s *Server) Run(ctx context.Context, bind string) error {
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}

	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.srv = &http.Server{
		Handler: s.newEngine(),
	}

	go func() {
		<-ctx.Done()

		log.Info("shutting down web server...")

		// give the running requests 5 seconds to finish
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.hub.closeAll()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("server forced to shutdown")
		}
	}()

	log.Infof("slideshow server listening on http://%s", ln.Addr().String())

	if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
