package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/levenlabs/go-lflag"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sitariff/sitariff/pkg/common"
	"github.com/sitariff/sitariff/pkg/controller"
	"github.com/sitariff/sitariff/pkg/log"
	"github.com/sitariff/sitariff/pkg/types"
)

const (
	// maxBodyBytes limits request bodies to 1MB.
	maxBodyBytes = 1048576
	// maxCostBodyBytes limits the unauthenticated cost request.
	maxCostBodyBytes = 4096
)

// tokenVerifier is a function that validates an OIDC ID Token.
type tokenVerifier func(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)

// Server handles the HTTP API for the tariff controller.
type Server struct {
	controller     *controller.Controller
	metricsHandler http.Handler

	listenAddr string
	httpServer *http.Server

	adminEmails  []string
	oidcVerifier tokenVerifier
	bypassAuth   bool
	serverName   string

	now func() time.Time
}

// Configured initializes the Server with dependencies.
// It uses lflag to register command-line flags for configuration.
func Configured(c *controller.Controller, metricsHandler http.Handler) *Server {
	srv := &Server{
		controller:     c,
		metricsHandler: metricsHandler,
		serverName:     common.UserAgent(),
		now:            time.Now,
	}
	revision := os.Getenv("K_REVISION")
	if revision != "" {
		srv.serverName = revision
	}

	// get the port from PORT when running in cloud run
	port := os.Getenv("PORT")
	if port == "" {
		// otherwise default to 8080
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")
	adminEmails := lflag.String("admin-emails", "", "comma-delimited list of email addresses allowed to change prices and settings")
	oidcIssuer := lflag.String("oidc-issuer", "https://accounts.google.com", "OIDC issuer of operator id tokens")
	oidcAudience := lflag.String("oidc-audience", "", "audience to validate operator id tokens against, empty disables auth")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
		if *adminEmails != "" {
			srv.adminEmails = strings.Split(*adminEmails, ",")
			for i, email := range srv.adminEmails {
				srv.adminEmails[i] = strings.TrimSpace(email)
			}
		}
		if *oidcAudience == "" {
			log.Ctx(context.Background()).Warn("no oidc-audience configured, operator endpoints are unauthenticated")
			srv.bypassAuth = true
			return
		}
		ctx := oidc.ClientContext(context.Background(), common.HTTPClient(10*time.Second))
		provider, err := oidc.NewProvider(ctx, *oidcIssuer)
		if err != nil {
			log.Ctx(context.Background()).Error("failed to initialize OIDC provider", slog.String("issuer", *oidcIssuer), slog.Any("error", err))
			os.Exit(1)
		}
		srv.oidcVerifier = provider.Verifier(&oidc.Config{ClientID: *oidcAudience}).Verify
		if len(srv.adminEmails) == 0 {
			log.Ctx(context.Background()).Warn("no admin-emails configured, operator endpoints will reject every request")
		}
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/status", s.handleStatus)
	apiMux.HandleFunc("POST /api/cost", s.handleCost)
	apiMux.HandleFunc("GET /api/prices", s.handleGetPrices)
	apiMux.Handle("POST /api/prices", s.operatorMiddleware(http.HandlerFunc(s.handleUpdatePrices)))
	apiMux.HandleFunc("GET /api/prices/defaults", s.handleDefaultPrices)
	apiMux.HandleFunc("GET /api/settings", s.handleGetSettings)
	apiMux.Handle("POST /api/settings", s.operatorMiddleware(http.HandlerFunc(s.handleUpdateSettings)))
	apiMux.Handle("GET /api/settings/revisions", s.operatorMiddleware(http.HandlerFunc(s.handleListRevisions)))
	apiMux.HandleFunc("GET /api/holidays", s.handleHolidays)
	apiMux.HandleFunc("GET /api/timeline", s.handleTimeline)
	apiMux.HandleFunc("GET /api/list/schedules", s.handleListSchedules)
	apiMux.HandleFunc("GET /api/list/suppliers", s.handleListSuppliers)

	mux := http.NewServeMux()
	mux.Handle("/api/", s.requestLogMiddleware(apiMux))
	mux.HandleFunc("/healthz", s.handleHealthz)
	metricsHandler := s.metricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	mux.Handle("GET /metrics", metricsHandler)
	return s.revisionMiddleware(gziphandler.GzipHandler(s.securityHeadersMiddleware(mux)))
}

// Run starts the HTTP server and blocks until the context is canceled or an error occurs.
// It also handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	// use a channel to capturing server errors
	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		// Context canceled, shut down gracefully
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

type errorResponse struct {
	Error string          `json:"error"`
	Kind  types.ErrorKind `json:"kind,omitempty"`
	Field string          `json:"field,omitempty"`
}

// writeError maps an operation error to a response. Rejected input is a 400
// carrying the error kind; anything else is logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var terr *types.Error
	switch {
	case errors.As(err, &terr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: terr.Error(),
			Kind:  terr.Kind,
			Field: terr.Field,
		})
	case errors.Is(err, controller.ErrNotLoaded):
		writeJSONError(w, "configuration not loaded", http.StatusServiceUnavailable)
	default:
		log.Ctx(r.Context()).ErrorContext(r.Context(), "request failed", slog.Any("error", err))
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.controller.Snapshot() == nil {
		http.Error(w, "not loaded", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) revisionMiddleware(next http.Handler) http.Handler {
	if s.serverName == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", s.serverName)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("reqPath", r.URL.Path)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
