package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"stash/internal/ai"
	"stash/internal/domain"
	"stash/internal/imaging"

	"go.uber.org/zap"
)

// Facing selects which camera to acquire.
type Facing int

const (
	FacingRear Facing = iota
	FacingAny
)

// CameraSource is one acquired camera device. Still grabs a single frame;
// Release returns the device. Release must be safe to call more than once.
type CameraSource interface {
	Still(ctx context.Context) (io.Reader, error)
	Release()
}

// CameraProvider acquires camera devices by facing preference.
type CameraProvider interface {
	Acquire(ctx context.Context, facing Facing) (CameraSource, error)
}

// NoCameraProvider is the provider for environments without camera
// hardware, such as the HTTP API. Acquire always fails, leaving sessions
// on the SubstituteUpload path.
type NoCameraProvider struct{}

func (NoCameraProvider) Acquire(ctx context.Context, facing Facing) (CameraSource, error) {
	return nil, ErrNoCamera
}

// GarmentAnalyzer is the slice of the AI client the capture flow needs.
type GarmentAnalyzer interface {
	AnalyzeGarment(ctx context.Context, imageData []byte, mimeType string) (text string, isolated []byte, err error)
}

// SessionState tracks where a capture session is in its lifecycle.
type SessionState int

const (
	// StateAcquiringDevice is the initial state before Start.
	StateAcquiringDevice SessionState = iota
	// StateReady holds an acquired camera awaiting a capture.
	StateReady
	// StateDeviceError means no camera could be acquired. The session is
	// still usable through SubstituteUpload.
	StateDeviceError
	// StateCaptured holds a processed still awaiting analysis.
	StateCaptured
	// StateAnalyzing is transient while the AI call is in flight.
	StateAnalyzing
	// StateFailed means the last analysis failed; retry is allowed.
	StateFailed
	// StateHandoff means a draft was produced and the session is done.
	StateHandoff
)

var (
	ErrNoCamera        = errors.New("no camera device available")
	ErrNoStill         = errors.New("no captured still to work with")
	ErrSessionFinished = errors.New("capture session already handed off")
	ErrNotReady        = errors.New("session is not ready to capture")
)

// CaptureSession drives one photograph-then-classify flow. It is not safe
// for concurrent use; each capture request gets its own session.
type CaptureSession struct {
	provider CameraProvider
	analyzer GarmentAnalyzer
	logger   *zap.Logger

	state  SessionState
	camera CameraSource
	still  *imaging.Still
}

// NewCaptureSession creates a new instance of CaptureSession
func NewCaptureSession(provider CameraProvider, analyzer GarmentAnalyzer, logger *zap.Logger) *CaptureSession {
	return &CaptureSession{
		provider: provider,
		analyzer: analyzer,
		logger:   logger,
		state:    StateAcquiringDevice,
	}
}

// State reports the current session state
func (s *CaptureSession) State() SessionState {
	return s.state
}

// Start acquires a camera, preferring the rear-facing device and falling
// back to any camera. Both failing leaves the session in DeviceError, from
// which a picked file can still be substituted.
func (s *CaptureSession) Start(ctx context.Context) error {
	if s.state == StateHandoff {
		return ErrSessionFinished
	}

	camera, err := s.provider.Acquire(ctx, FacingRear)
	if err != nil {
		s.logger.Debug("rear camera unavailable, trying any device", zap.Error(err))
		camera, err = s.provider.Acquire(ctx, FacingAny)
	}
	if err != nil {
		s.state = StateDeviceError
		return fmt.Errorf("%w: %s", ErrNoCamera, err)
	}

	s.camera = camera
	s.state = StateReady
	return nil
}

// Capture grabs one frame, processes it down to the working still, and
// releases the camera immediately. The device is never held past the shot.
func (s *CaptureSession) Capture(ctx context.Context) error {
	if s.state != StateReady {
		return ErrNotReady
	}

	frame, err := s.camera.Still(ctx)
	if err != nil {
		s.releaseCamera()
		s.state = StateDeviceError
		return fmt.Errorf("failed to grab frame: %w", err)
	}

	still, err := imaging.ProcessStill(frame)
	s.releaseCamera()
	if err != nil {
		s.state = StateDeviceError
		return fmt.Errorf("failed to process frame: %w", err)
	}

	s.still = still
	s.state = StateCaptured
	return nil
}

// SubstituteUpload replaces the working still with a picked file,
// bypassing the camera entirely. Allowed from every state before
// analysis completes; any held camera is released.
func (s *CaptureSession) SubstituteUpload(picked io.Reader) error {
	switch s.state {
	case StateAnalyzing:
		return errors.New("analysis in flight")
	case StateHandoff:
		return ErrSessionFinished
	}

	still, err := imaging.ProcessStill(picked)
	if err != nil {
		return fmt.Errorf("failed to process picked file: %w", err)
	}

	s.releaseCamera()
	s.still = still
	s.state = StateCaptured
	return nil
}

// Retake discards the working still and re-acquires the camera
func (s *CaptureSession) Retake(ctx context.Context) error {
	if s.state != StateCaptured && s.state != StateFailed {
		return ErrNoStill
	}

	s.still = nil
	s.state = StateAcquiringDevice
	return s.Start(ctx)
}

// Analyze submits the working still for classification and isolation.
// A service failure moves the session to Failed and is retryable; the
// still is kept. Success hands off a draft item: zero ID, inline image,
// season defaulted, plus the parse provenance the reviewer must surface.
func (s *CaptureSession) Analyze(ctx context.Context) (*domain.WardrobeItem, ai.ParseResult, error) {
	if s.state != StateCaptured && s.state != StateFailed {
		return nil, ai.ParseResult{}, ErrNoStill
	}

	s.state = StateAnalyzing
	text, isolated, err := s.analyzer.AnalyzeGarment(ctx, s.still.Data, s.still.MIME)
	if err != nil {
		s.state = StateFailed
		return nil, ai.ParseResult{}, fmt.Errorf("garment analysis failed: %w", err)
	}

	// The isolated render replaces the working image when the model
	// produced one; otherwise the captured still stands.
	if len(isolated) > 0 {
		s.still = &imaging.Still{Data: isolated, MIME: http.DetectContentType(isolated)}
	}

	result := ai.ParseClassification(text)
	if result.Status == ai.ParseDefaulted {
		s.logger.Warn("classification incomplete, fields defaulted", zap.String("reason", result.Reason))
	}

	draft := &domain.WardrobeItem{
		Name:      result.Fields.Name,
		Category:  result.Fields.Category,
		Colorway:  result.Fields.Colorway,
		Season:    []string{"Spring"},
		Tags:      result.Fields.Tags,
		ImageURL:  s.still.DataURL(),
		CreatedAt: time.Now(),
	}

	s.state = StateHandoff
	return draft, result, nil
}

// Close releases any held camera. Safe to call in every state and more
// than once; every exit path from a session must end here.
func (s *CaptureSession) Close() {
	s.releaseCamera()
}

func (s *CaptureSession) releaseCamera() {
	if s.camera != nil {
		s.camera.Release()
		s.camera = nil
	}
}
