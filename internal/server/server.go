// Package server provides a thin HTTP shell over the palette extraction
// and garment recolouring pipelines. It validates uploads, invokes the
// core, and serializes results; all algorithmic behaviour lives in the
// colour and recolor packages.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/chromaknit/chromaknit/internal/colour"
	"github.com/chromaknit/chromaknit/internal/imageio"
	"github.com/chromaknit/chromaknit/internal/recolor"
	"github.com/chromaknit/chromaknit/internal/segment"
	"github.com/chromaknit/chromaknit/internal/version"
)

const (
	// MaxUploadSize caps uploaded image files at 5 MiB.
	MaxUploadSize = 5 << 20

	// MaxColourCount caps n_colors on the extract endpoint.
	MaxColourCount = 10

	// maxClusterDim bounds clustering cost: uploads larger than this on
	// either side are downscaled before extraction.
	maxClusterDim = 512
)

// Config holds server configuration.
type Config struct {
	// Listen is the address to bind, e.g. ":8080".
	Listen string

	// Segmenter is the foreground separation capability used by the
	// recolour endpoint.
	Segmenter segment.Segmenter

	// Logger receives request and pipeline logs. Defaults to a null
	// logger when nil.
	Logger hclog.Logger
}

// Server serves the ChromaKnit HTTP API.
type Server struct {
	config Config
	logger hclog.Logger
}

// New creates a Server from the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{config: config, logger: logger}
}

// Handler returns the HTTP handler serving all API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/colors/extract", s.handleExtract)
	mux.HandleFunc("POST /api/garments/recolor", s.handleRecolor)
	return s.logRequests(mux)
}

// ListenAndServe starts the server and blocks until it exits.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.config.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening", "addr", s.config.Listen)
	return srv.ListenAndServe()
}

// handleHealth reports service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Short(),
	})
}

// extractResponse is the JSON body of a successful extract request.
type extractResponse struct {
	Colors []string `json:"colors"`
	Count  int      `json:"count"`
}

// handleExtract extracts the dominant colours from an uploaded image.
// Form fields: file (image upload), n_colors (optional, 1-10, default 5).
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	img, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	count := 5
	if raw := r.FormValue("n_colors"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > MaxColourCount {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("n_colors must be an integer in [1, %d]", MaxColourCount))
			return
		}
		count = parsed
	}

	extractor := colour.NewKMeansExtractor()
	palette, err := extractor.Extract(imageio.Downscale(img, maxClusterDim), count)
	if err != nil {
		s.logger.Error("extraction failed", "error", err)
		writeError(w, http.StatusUnprocessableEntity, "colour extraction failed")
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{
		Colors: palette.ToHex(),
		Count:  palette.Len(),
	})
}

// handleRecolor recolours an uploaded garment image with the supplied
// palette. Form fields: file (image upload), colors (JSON array of hex
// codes). Responds with the recoloured image as PNG.
func (s *Server) handleRecolor(w http.ResponseWriter, r *http.Request) {
	img, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	var hexes []string
	if raw := r.FormValue("colors"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &hexes); err != nil {
			writeError(w, http.StatusBadRequest, "colors must be a JSON array of hex codes")
			return
		}
	}
	if len(hexes) == 0 {
		writeError(w, http.StatusBadRequest, "at least one target colour is required")
		return
	}

	targets, err := colour.ParseHexList(hexes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Each request gets its own pipeline value; no state is shared
	// between concurrent recolour operations.
	pipeline := recolor.NewPipeline(s.segmenter())
	pipeline.Logger = s.logger.Named("recolor")

	result, err := pipeline.RecolorImage(r.Context(), img, targets)
	if err != nil {
		s.logger.Error("recolouring failed", "error", err)
		writeError(w, recolorStatus(err), "garment recolouring failed")
		return
	}

	payload, err := imageio.EncodePNG(result)
	if err != nil {
		s.logger.Error("encoding failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to encode result")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// readUpload parses the multipart "file" field into a decoded image.
// On failure it writes the error response and returns ok=false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (image.Image, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload too large (limit %d bytes)", MaxUploadSize))
		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return nil, false
	}
	defer file.Close()

	img, err := imageio.Decode(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unsupported or corrupt image file")
		return nil, false
	}

	return img, true
}

func (s *Server) segmenter() segment.Segmenter {
	if s.config.Segmenter != nil {
		return s.config.Segmenter
	}
	return segment.NewChroma(segment.ChromaOptions{})
}

// recolorStatus maps pipeline failures to HTTP status codes.
func recolorStatus(err error) int {
	switch {
	case errors.Is(err, recolor.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, segment.ErrSegmentation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// logRequests wraps a handler with hclog request logging.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
