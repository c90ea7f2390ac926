package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"unitconv/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type Server struct {
	conv *service.Converter
}

func NewServer(conv *service.Converter) *Server {
	return &Server{conv: conv}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.healthHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.withSession)
	api.HandleFunc("/categories", s.listCategories).Methods("GET")
	api.HandleFunc("/categories/{category}/units", s.listUnits).Methods("GET")
	api.HandleFunc("/convert", s.apiConvert).Methods("POST")
	api.HandleFunc("/ask", s.apiAsk).Methods("POST")
	api.HandleFunc("/history", s.apiHistory).Methods("GET")
	api.HandleFunc("/history", s.apiClearHistory).Methods("DELETE")
	api.HandleFunc("/session", s.apiSession).Methods("GET")

	r.Handle("/", s.withSession(http.HandlerFunc(s.indexPage))).Methods("GET")
	r.Handle("/convert", s.withSession(http.HandlerFunc(s.convertForm))).Methods("POST")
	r.Handle("/history/clear", s.withSession(http.HandlerFunc(s.clearHistoryForm))).Methods("POST")

	return r
}

// Handler wraps the router with access logging and panic recovery.
func (s *Server) Handler() http.Handler {
	recovered := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(s.Router())
	return handlers.LoggingHandler(os.Stdout, recovered)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Unit converter listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Println("Shutting down web server")
		return srv.Shutdown(shutdownCtx)
	}
}
