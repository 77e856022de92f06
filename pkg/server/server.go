package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/vbind"
	"github.com/vango-dev/vbind/pkg/dom"
)

const tracerName = "vbind"

// Server serves a page and its live sessions.
type Server struct {
	config   Config
	source   Source
	logger   *slog.Logger
	router   chi.Router
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	page     Page
	sessions map[string]*Session

	httpServer *http.Server
}

// New creates a server and loads the initial page from source.
func New(cfg Config, source Source) (*Server, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		config:   cfg,
		source:   source,
		logger:   cfg.Logger.With("component", "server"),
		sessions: make(map[string]*Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/ws", s.HandleWebSocket)
	r.Get("/healthz", s.handleHealth)
	if s.config.Gatherer != nil {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) load() error {
	page, err := s.source.Load()
	if err != nil {
		return err
	}
	// Fail early on a template whose root cannot be compiled.
	if _, _, err := s.build(page, nil); err != nil {
		return err
	}
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
	return nil
}

// build creates a document and VM from page. onError receives the VM's
// runtime errors.
func (s *Server) build(page Page, onError func(error)) (*dom.Document, *vbind.VM, error) {
	doc, err := dom.ParseString(string(page.HTML))
	if err != nil {
		return nil, nil, err
	}
	data, _ := copyData(page.Data).(map[string]any)
	if data == nil {
		data = map[string]any{}
	}

	vm, err := vbind.New(vbind.Options{
		El:             s.config.Root,
		Document:       doc,
		Data:           data,
		Methods:        s.config.Methods,
		Logger:         s.config.Logger,
		Metrics:        s.config.Metrics,
		MaxNotifyDepth: s.config.MaxNotifyDepth,
		OnError:        onError,
	})
	if err != nil {
		return nil, nil, err
	}
	doc.MarkReady()
	return doc, vm, nil
}

func (s *Server) currentPage() Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	doc, _, err := s.build(s.currentPage(), nil)
	if err != nil {
		s.logger.Error("page build failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(injectClient([]byte(doc.String())))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.SessionCount(),
	})
}

// HandleWebSocket upgrades the request and runs a session until the
// connection closes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.config.MaxMessageSize)

	sess, err := newSession(s, conn)
	if err != nil {
		s.logger.Error("session build failed", "error", err)
		_ = conn.WriteJSON(newErrorMessage(err))
		conn.Close()
		return
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	s.config.Metrics.SessionOpened()
	s.logger.Info("session started", "session_id", sess.ID, "remote", r.RemoteAddr)

	sess.Start()
	<-sess.Done()

	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	s.config.Metrics.SessionClosed()
	s.logger.Info("session closed", "session_id", sess.ID)
}

// SessionCount returns the number of connected sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) snapshotSessions() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

// Reload reads the page again and asks every connected browser to reload.
// On failure the previous page stays in use.
func (s *Server) Reload() error {
	if err := s.load(); err != nil {
		s.logger.Error("reload failed", "error", err)
		for _, sess := range s.snapshotSessions() {
			sess.SendError(err)
		}
		return err
	}
	sessions := s.snapshotSessions()
	for _, sess := range sessions {
		sess.SendReload()
	}
	s.logger.Info("page reloaded", "sessions", len(sessions))
	return nil
}

// Run serves on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	srv := s.httpServer
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown closes every session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, sess := range s.snapshotSessions() {
		sess.Close()
	}

	s.mu.RLock()
	srv := s.httpServer
	s.mu.RUnlock()
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}

func newSessionID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
