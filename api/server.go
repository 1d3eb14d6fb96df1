package api

import (
	"context"
	"net/http"

	"github.com/inconshreveable/log15"
	"github.com/rs/cors"

	"github.com/leptonlabs/go-lepton/currency"
)

// Server is the HTTP translation layer over the currency core. It
// decodes requests, calls the core, and encodes responses; every rule
// about what a transaction may do lives in the core.
type Server struct {
	svc *currency.Service

	srv *http.Server

	log log15.Logger
}

func NewServer(svc *currency.Service, listenAddr string) *Server {
	s := &Server{
		svc: svc,

		log: log15.New("module", "api"),
	}

	s.srv = &http.Server{
		Addr:    listenAddr,
		Handler: s.Handler(),
	}

	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/wallets", s.handleCreateWallet)
	mux.HandleFunc("/api/v1/wallets/transfer", s.handleTransfer)
	mux.HandleFunc("/api/v1/wallet/", s.handleGetWallet)
	mux.HandleFunc("/api/v1/status", s.handleStatus)

	return cors.Default().Handler(mux)
}

func (s *Server) Start() error {
	s.log.Info("http server starting", "addr", s.srv.Addr)

	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
