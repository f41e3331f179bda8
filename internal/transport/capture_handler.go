package transport

import (
	"net/http"

	"stash/internal/ai"
	"stash/internal/domain"
	"stash/internal/middleware"
	"stash/internal/workflow"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxCaptureUpload bounds the multipart image payload (16 MiB).
const maxCaptureUpload = 16 << 20

// CaptureResponse is the analyzed draft plus parse provenance
type CaptureResponse struct {
	Draft      domain.WardrobeItem `json:"draft"`
	Classified bool                `json:"classified"`
	Reason     string              `json:"reason,omitempty"`
}

// CaptureHandler handles HTTP requests for photo capture and analysis.
// Over HTTP there is no live camera: every request is a picked-file
// substitution into a fresh capture session.
type CaptureHandler struct {
	provider workflow.CameraProvider
	analyzer workflow.GarmentAnalyzer
	logger   *zap.Logger
}

// NewCaptureHandler creates a new CaptureHandler
func NewCaptureHandler(provider workflow.CameraProvider, analyzer workflow.GarmentAnalyzer, logger *zap.Logger) *CaptureHandler {
	return &CaptureHandler{
		provider: provider,
		analyzer: analyzer,
		logger:   logger,
	}
}

// RegisterRoutes registers the capture route behind auth, verification,
// and the given rate limiter
func (h *CaptureHandler) RegisterRoutes(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.Route("/api/captures", func(r chi.Router) {
		r.Use(middlewares...)
		r.Post("/", h.Capture)
	})
}

// Capture accepts a multipart image, runs it through the capture
// workflow, and returns the classified draft
func (h *CaptureHandler) Capture(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxCaptureUpload); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "expected a multipart image upload")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer file.Close()

	session := workflow.NewCaptureSession(h.provider, h.analyzer, h.logger)
	defer session.Close()

	if err := session.SubstituteUpload(file); err != nil {
		h.logger.Debug("Capture upload rejected", zap.Error(err))
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, "could not process image")
		return
	}

	draft, result, err := session.Analyze(r.Context())
	if err != nil {
		h.logger.Error("Capture analysis failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "analysis service unavailable, retry the capture")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CaptureResponse{
		Draft:      *draft,
		Classified: result.Status == ai.ParseOK,
		Reason:     result.Reason,
	})
}
