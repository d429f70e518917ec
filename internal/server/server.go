// Package server exposes the proposal extraction pipeline over HTTP: batch
// upload, confirmation, and health endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/bidbook/internal/config"
	"github.com/sells-group/bidbook/internal/dedupe"
	"github.com/sells-group/bidbook/internal/model"
	"github.com/sells-group/bidbook/internal/pipeline"
)

// maxUploadBytes caps the parsed size of one multipart upload batch.
const maxUploadBytes = 64 << 20

// vercelOrigin admits preview and production deployments of the frontend.
var vercelOrigin = regexp.MustCompile(`^https://.*\.vercel\.app$`)

// BatchProcessor runs the per-file pipeline over an upload batch.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, files []pipeline.BatchFile) []model.Proposal
}

// Server is the HTTP API.
type Server struct {
	cfg       *config.Config
	processor BatchProcessor
	router    chi.Router
}

// New builds the server and its routes. The upload directory is created if
// missing.
func New(cfg *config.Config, processor BatchProcessor) (*Server, error) {
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "server: create upload dir %s", cfg.Upload.Dir)
	}

	s := &Server{cfg: cfg, processor: processor}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  s.allowOrigin,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/upload", s.handleUpload)
	r.Post("/confirm", s.handleConfirm)
	s.router = r

	return s, nil
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		srv.Shutdown(context.Background())
	}()

	zap.L().Info("starting server", zap.Int("port", s.cfg.Server.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

func (s *Server) allowOrigin(_ *http.Request, origin string) bool {
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return vercelOrigin.MatchString(origin)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "BidBook PDF Extraction API",
		"status":  "healthy",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "BidBook API",
	})
}

// handleUpload accepts a multipart batch of PDFs, runs the pipeline over
// each, reconciles duplicates, and returns the batch result. Non-PDF entries
// are skipped without a record.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart request"})
		return
	}

	var batch []pipeline.BatchFile
	var storeFailures []model.Proposal
	for _, header := range r.MultipartForm.File["files"] {
		if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
			zap.L().Debug("server: skipping non-pdf upload", zap.String("file", header.Filename))
			continue
		}

		path, err := s.saveUpload(header)
		if err != nil {
			zap.L().Warn("server: failed to store upload",
				zap.String("file", header.Filename),
				zap.Error(err),
			)
			// Every accepted file yields exactly one record, even when it
			// never reaches the pipeline.
			storeFailures = append(storeFailures,
				model.ErrorProposal(header.Filename, "Processing failed: could not store uploaded file"))
			continue
		}
		defer os.Remove(path)

		batch = append(batch, pipeline.BatchFile{
			DisplayName: header.Filename,
			Path:        path,
		})
	}

	proposals := append(s.processor.ProcessBatch(r.Context(), batch), storeFailures...)
	deduplicated, mergeCount := dedupe.Reconcile(proposals)

	respondJSON(w, http.StatusOK, model.UploadResult{
		Proposals:      deduplicated,
		MergeCount:     mergeCount,
		TotalProcessed: len(proposals),
	})
}

// handleConfirm echoes the confirmed proposals back under the ITB key.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var proposals []model.Proposal
	if err := json.NewDecoder(r.Body).Decode(&proposals); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	respondJSON(w, http.StatusOK, model.ConfirmResult{ITBData: proposals})
}

// saveUpload copies one multipart part into a temp file in the upload dir.
func (s *Server) saveUpload(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", eris.Wrap(err, "server: open upload")
	}
	defer src.Close()

	dst, err := os.CreateTemp(s.cfg.Upload.Dir, "upload-*.pdf")
	if err != nil {
		return "", eris.Wrap(err, "server: create temp file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", eris.Wrap(err, "server: write temp file")
	}
	return dst.Name(), nil
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}
