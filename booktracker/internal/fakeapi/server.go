package fakeapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

type Server struct {
	srv *http.Server
}

func NewServer(host, port string, h http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              net.JoinHostPort(host, port),
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *Server) Addr() string {
	return s.srv.Addr
}

func (s *Server) Run() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
