package api

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"lightgroove/internal/logger"
)

const (
	mdnsService     = "_lightgroove._tcp"
	shutdownTimeout = 2 * time.Second
)

// ServerConf настройки HTTP сервера.
type ServerConf struct {
	Host string
	Port int
	MDNS bool // MDNS - анонсировать API в локальной сети.
}

// Server serves the JSON API and optionally announces it over mDNS.
type Server struct {
	log  logger.Logger
	cfg  ServerConf
	echo *echo.Echo
	mdns *mdns.Server
	errs chan error
}

// NewServer конструктор.
func NewServer(log logger.Logger, cfg ServerConf, deps Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	SetupMiddleware(e)
	RegisterRoutes(e, NewHandler(log, deps))
	return &Server{log: log, cfg: cfg, echo: e, errs: make(chan error, 1)}
}

func (s *Server) logger() *logger.Log {
	return s.log.With(logger.Fields{"module": "http"})
}

// Echo exposes the router, used by tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start binds the listener and serves in the background.
func (s *Server) Start(_ context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("http listen %s: %w", addr, err)
	}
	s.echo.Listener = ln

	go func() {
		if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger().Errorf("server stopped: %v", err)
			s.errs <- err
		}
	}()
	s.logger().Infof("Listening on %s", ln.Addr())

	if s.cfg.MDNS {
		if err := s.announce(ln.Addr().(*net.TCPAddr).Port); err != nil {
			s.logger().Warnf("mDNS announcement failed: %v", err)
		}
	}
	return nil
}

func (s *Server) announce(port int) error {
	host, _ := os.Hostname()
	service, err := mdns.NewMDNSService(host, mdnsService, "", "", port, nil, []string{"path=/api"})
	if err != nil {
		return err
	}
	s.mdns, err = mdns.NewServer(&mdns.Config{
		Zone:   service,
		Logger: stdlog.New(s.logger().WriterLevel(logrus.DebugLevel), "", 0),
	})
	if err != nil {
		return err
	}
	s.logger().Infof("Announced as %s.%s.local", host, mdnsService)
	return nil
}

// Errors reports a server that stopped on its own.
func (s *Server) Errors() <-chan error {
	return s.errs
}

func (s *Server) Stop() {
	if s.mdns != nil {
		_ = s.mdns.Shutdown()
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger().Errorf("shutdown: %v", err)
	}
}
