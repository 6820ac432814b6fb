package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"magf/internal/api"
	"magf/internal/logging"
	"magf/internal/magf"
	"magf/internal/services"
	"magf/internal/textutil"
)

// maxJSONBody allows a full-size container's assets after base64 expansion.
const maxJSONBody = magf.MaxContainerSize/3*4 + 1<<20

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind string, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(bind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", srv.handleStatus)
	mux.HandleFunc("GET /api/containers", srv.handleListContainers)
	mux.HandleFunc("POST /api/containers", srv.handleCreateContainer)
	mux.HandleFunc("GET /api/containers/{id}", srv.handleGetContainer)
	mux.HandleFunc("DELETE /api/containers/{id}", srv.handleDeleteContainer)
	mux.HandleFunc("GET /api/containers/{id}/magf", srv.handleExportContainer)
	mux.HandleFunc("POST /api/encode", srv.handleEncode)
	mux.HandleFunc("POST /api/inspect", srv.handleInspect)
	srv.handler = srv.withRequestContext(mux)
	return srv
}

func (s *apiServer) listen() error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) serve() error {
	s.mu.Lock()
	server, listener := s.server, s.listener
	s.mu.Unlock()
	if server == nil {
		return errors.New("api server not listening")
	}
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api serve: %w", err)
	}
	return nil
}

func (s *apiServer) shutdown() error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.daemon.Status(r.Context()))
}

func (s *apiServer) handleListContainers(w http.ResponseWriter, r *http.Request) {
	ctx := services.WithOperation(r.Context(), "list")
	containers, err := s.daemon.catalog.List(ctx)
	if err != nil {
		s.writeError(w, r.WithContext(ctx), err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.ContainerListResponse{Containers: containers})
}

func (s *apiServer) handleCreateContainer(w http.ResponseWriter, r *http.Request) {
	ctx := services.WithOperation(r.Context(), "create")
	var req api.CreateContainerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r.WithContext(ctx), err)
		return
	}
	summary, err := s.daemon.catalog.Create(ctx, req)
	if err != nil {
		s.writeError(w, r.WithContext(ctx), err)
		return
	}
	ctx = services.WithContainerID(ctx, summary.ID)
	logging.WithContext(ctx, s.logger).Info("container created",
		logging.String("name", summary.Name),
		logging.Int("frames", summary.FrameCount),
		logging.Int("bytes", summary.EncodedSize),
	)
	s.writeJSON(w, r, http.StatusCreated, summary)
}

func (s *apiServer) handleGetContainer(w http.ResponseWriter, r *http.Request) {
	id, err := containerID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := services.WithContainerID(services.WithOperation(r.Context(), "get"), id)
	summary, err := s.daemon.catalog.Get(ctx, id)
	if err != nil {
		s.writeError(w, r.WithContext(ctx), err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, summary)
}

func (s *apiServer) handleDeleteContainer(w http.ResponseWriter, r *http.Request) {
	id, err := containerID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := services.WithContainerID(services.WithOperation(r.Context(), "delete"), id)
	if err := s.daemon.catalog.Delete(ctx, id); err != nil {
		s.writeError(w, r.WithContext(ctx), err)
		return
	}
	logging.WithContext(ctx, s.logger).Info("container deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleExportContainer(w http.ResponseWriter, r *http.Request) {
	id, err := containerID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := services.WithContainerID(services.WithOperation(r.Context(), "export"), id)
	buf, summary, err := s.daemon.catalog.Export(ctx, id)
	if err != nil {
		s.writeError(w, r.WithContext(ctx), err)
		return
	}
	s.writeContainer(w, textutil.Token(summary.Name)+magf.FileExtension, buf)
}

func (s *apiServer) handleEncode(w http.ResponseWriter, r *http.Request) {
	ctx := services.WithOperation(r.Context(), "encode")
	var req api.CreateContainerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r.WithContext(ctx), err)
		return
	}
	buf, err := api.EncodeRequest(req, s.daemon.encoder, s.daemon.cfg.Encoding.DefaultFPS)
	if err != nil {
		s.writeError(w, r.WithContext(ctx), err)
		return
	}
	s.writeContainer(w, textutil.Token(req.Name)+magf.FileExtension, buf)
}

func (s *apiServer) handleInspect(w http.ResponseWriter, r *http.Request) {
	ctx := services.WithOperation(r.Context(), "inspect")
	buf, err := readContainerBody(r)
	if err != nil {
		s.writeError(w, r.WithContext(ctx), err)
		return
	}
	result, err := api.Inspect(buf)
	if err != nil {
		s.writeError(w, r.WithContext(ctx), err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, result)
}

func containerID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errBadID, raw)
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body exceeds %d bytes", magf.ErrSizeLimitExceeded, tooLarge.Limit)
		}
		return fmt.Errorf("%w: decode json: %v", errBadRequest, err)
	}
	return nil
}

// readContainerBody reads at most one byte past the container ceiling so an
// oversized body is detected without buffering all of it.
func readContainerBody(r *http.Request) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(r.Body, magf.MaxContainerSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", errBadRequest, err)
	}
	if len(buf) > magf.MaxContainerSize {
		return nil, fmt.Errorf("%w: request body exceeds %d bytes", magf.ErrSizeLimitExceeded, magf.MaxContainerSize)
	}
	return buf, nil
}

func (s *apiServer) writeContainer(w http.ResponseWriter, filename string, buf []byte) {
	w.Header().Set("Content-Type", magf.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf); err != nil {
		s.logger.Debug("container write interrupted", logging.Error(err))
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.WithContext(r.Context(), s.logger).Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	logger := logging.WithContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("api request failed", logging.String("code", code), logging.Error(err))
	} else {
		logger.Debug("api request rejected", logging.String("code", code), logging.Error(err))
	}
	s.writeJSON(w, r, status, api.ErrorResponse{Error: err.Error(), Code: code})
}
