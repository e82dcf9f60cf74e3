// Package preview serves a live view of a mounted surface.
//
// The server exposes the in-memory document over HTTP:
//
//	GET  /                        page with the surface and a client script
//	GET  /surface                 annotated HTML of the mount point
//	GET  /mutations               the document's mutation log as JSON
//	GET  /ws                      WebSocket stream of mutation batches
//	POST /dispatch/{node}/{event} dispatch an event on an element
//	GET  /metrics                 Prometheus metrics
//
// Dispatching an event runs the element's listeners. When those write to a
// state.Tree the resulting mutations are broadcast to every client together
// with the new surface HTML.
package preview

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/surface/memdom"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer sets the metrics source served on /metrics.
// Default: prometheus.DefaultGatherer
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// Server serves one mount point of a memdom document. All access to the
// document goes through the server's lock.
type Server struct {
	mu      sync.Mutex
	doc     *memdom.Document
	root    *memdom.Element
	pending []memdom.Mutation

	hub      *Hub
	router   chi.Router
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	title    string
	unsub    func()
}

// New creates a Server for root, which must belong to doc.
func New(doc *memdom.Document, root *memdom.Element, opts ...Option) *Server {
	s := &Server{
		doc:      doc,
		root:     root,
		logger:   slog.Default().With("component", "preview"),
		gatherer: prometheus.DefaultGatherer,
		title:    "vtree preview",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = newHub(s.logger, s.surfaceHTML)
	s.unsub = doc.Subscribe(func(m memdom.Mutation) {
		s.pending = append(s.pending, m)
	})
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handlePage)
	r.Get("/surface", s.handleSurface)
	r.Get("/mutations", s.handleMutations)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/ws", s.hub)
	r.Post("/dispatch/{node}/{event}", s.handleDispatch)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Do runs fn with exclusive access to the document and broadcasts the
// mutations it produced.
func (s *Server) Do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn()
	s.flush(err)
	return err
}

// flush broadcasts the pending mutations. Callers hold s.mu.
func (s *Server) flush(err error) {
	batch := s.pending
	s.pending = nil
	if err != nil {
		s.hub.Broadcast(Message{Type: MessageError, Error: err.Error(), Mutations: batch, HTML: s.surfaceHTMLLocked()})
		return
	}
	if len(batch) == 0 {
		return
	}
	s.hub.Broadcast(Message{Type: MessageMutations, Mutations: batch, HTML: s.surfaceHTMLLocked()})
}

func (s *Server) surfaceHTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surfaceHTMLLocked()
}

func (s *Server) surfaceHTMLLocked() string {
	var b strings.Builder
	for _, c := range s.root.Children() {
		_ = memdom.WriteHTML(&b, c, memdom.HTMLOptions{AnnotateIDs: true})
	}
	return b.String()
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, pageTemplate, html.EscapeString(s.title), s.surfaceHTML(), clientScript)
}

func (s *Server) handleSurface(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(s.surfaceHTML()))
}

func (s *Server) handleMutations(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	log := s.doc.Mutations()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, log)
}

type dispatchRequest struct {
	Value string `json:"value"`
}

type dispatchResponse struct {
	Mutations int    `json:"mutations"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "node"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dispatchResponse{Error: "invalid node id"})
		return
	}
	event := chi.URLParam(r, "event")

	var req dispatchRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, dispatchResponse{Error: "invalid body: " + err.Error()})
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.doc.NodeByID(id)
	el, isElement := n.(*memdom.Element)
	if !ok || !isElement {
		writeJSON(w, http.StatusNotFound, dispatchResponse{Error: fmt.Sprintf("no element %d", id)})
		return
	}

	start := len(s.pending)
	err = el.Dispatch(&memdom.Event{Type: event, Target: el, Value: req.Value})
	count := len(s.pending) - start
	s.flush(err)

	if err != nil {
		s.logger.Warn("dispatch failed", "node", id, "event", event, "error", err)
		resp := dispatchResponse{Mutations: count, Error: err.Error()}
		var ve *vterrors.Error
		if stderrors.As(err, &ve) {
			resp.Code = ve.Code
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	writeJSON(w, http.StatusOK, dispatchResponse{Mutations: count})
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("preview listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.Close()
	err := srv.Shutdown(shutdownCtx)
	if err == nil || stderrors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close detaches the server from the document and disconnects clients.
func (s *Server) Close() {
	if s.unsub != nil {
		s.unsub()
	}
	s.hub.Close()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
