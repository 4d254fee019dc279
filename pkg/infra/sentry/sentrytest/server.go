// Package sentrytest provides an in-process fake of the release API for tests.
package sentrytest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
)

// ReleaseCall is a recorded create-release request
type ReleaseCall struct {
	Organization  string
	Project       string
	Authorization string
	UserAgent     string
	Body          []byte
}

// FileCall is a recorded artifact upload
type FileCall struct {
	Organization  string
	Project       string
	Version       string
	Authorization string
	Filename      string // base name of the "file" part filename
	Name          string // value of the "name" field
	ContentType   string // Content-Type of the "file" part
	Content       []byte
}

// Option configures the fake server
type Option func(*Server)

// WithReleaseStatus sets the status answered to create-release requests
func WithReleaseStatus(status int) Option {
	return func(s *Server) {
		s.releaseStatus = status
	}
}

// WithFileStatus decides the status answered to each upload by its filename
func WithFileStatus(fn func(filename string) int) Option {
	return func(s *Server) {
		s.fileStatus = fn
	}
}

// WithLogger sets the logger receiving a debug record per request
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// Server is a fake release API recording every request it receives
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	releases      []ReleaseCall
	files         []FileCall
	releaseStatus int
	fileStatus    func(filename string) int
	logger        *slog.Logger
}

// NewServer starts a fake release API, closed when the test ends
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		releaseStatus: http.StatusCreated,
		fileStatus:    func(string) int { return http.StatusCreated },
		logger:        ctxlog.From(context.Background()),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(loggingMiddleware(s.logger))
	router.Post("/api/0/projects/{organization}/{project}/releases/", s.handleRelease)
	router.Post("/api/0/projects/{organization}/{project}/releases/{version}/files/", s.handleFile)

	s.Server = httptest.NewServer(router)
	t.Cleanup(s.Close)

	return s
}

// BaseURL returns the API root to configure clients with
func (s *Server) BaseURL() string {
	return s.URL + "/api/0/"
}

// Releases returns the recorded create-release requests
func (s *Server) Releases() []ReleaseCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ReleaseCall(nil), s.releases...)
}

// Files returns the recorded uploads, in arrival order
func (s *Server) Files() []FileCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]FileCall(nil), s.files...)
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	s.releases = append(s.releases, ReleaseCall{
		Organization:  urlParam(r, "organization"),
		Project:       urlParam(r, "project"),
		Authorization: r.Header.Get("Authorization"),
		UserAgent:     r.Header.Get("User-Agent"),
		Body:          body,
	})
	s.mu.Unlock()

	var release struct {
		Version string `json:"version"`
	}
	_ = json.Unmarshal(body, &release)
	writeJSON(w, s.releaseStatus, map[string]string{"version": release.Version})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}

	call := FileCall{
		Organization:  urlParam(r, "organization"),
		Project:       urlParam(r, "project"),
		Version:       urlParam(r, "version"),
		Authorization: r.Header.Get("Authorization"),
		Filename:      header.Filename,
		Name:          r.FormValue("name"),
		ContentType:   header.Header.Get("Content-Type"),
		Content:       content,
	}

	s.mu.Lock()
	s.files = append(s.files, call)
	s.mu.Unlock()

	writeJSON(w, s.fileStatus(call.Filename), map[string]string{"name": call.Name})
}

func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
