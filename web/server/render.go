package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/df07/sphere-pathtracer/pkg/loaders"
	"github.com/df07/sphere-pathtracer/pkg/renderer"
	"github.com/df07/sphere-pathtracer/pkg/scene"
)

const (
	defaultScene  = "cornell"
	defaultPasses = 7
)

// SceneParams selects a scene and optionally overrides its image settings
type SceneParams struct {
	Scene           string // Scene reference (built-in ID or "file:<name>")
	Width           int    // Image width, 0 keeps the scene's
	Height          int    // Image height, 0 keeps the scene's
	SamplesPerPixel int    // Samples per pixel, 0 keeps the scene's
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	SceneParams
	Passes       int    // Number of progressive passes
	Seed         int64  // Base seed, 0 for a time based seed
	Integrator   string // Integrator name
	RRMinBounces int    // Russian roulette guaranteed depth
}

// ProgressUpdate represents a single progressive update sent via SSE
type ProgressUpdate struct {
	PassNumber  int    `json:"passNumber"`
	TotalPasses int    `json:"totalPasses"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Stats       Stats  `json:"stats"`
	IsComplete  bool   `json:"isComplete"`
	ElapsedMs   int64  `json:"elapsedMs"`
	Seed        int64  `json:"seed"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels       int     `json:"totalPixels"`
	TotalSamples      int     `json:"totalSamples"`
	AverageSamples    float64 `json:"averageSamples"`
	MaxSamples        int     `json:"maxSamples"`
	MinSamples        int     `json:"minSamples"`
	MaxSamplesUsed    int     `json:"maxSamplesUsed"`
	ScrubbedSamples   int     `json:"scrubbedSamples"`
	PassSamples       int     `json:"passSamples"`
	MeanLuminance     float64 `json:"meanLuminance"`
	MeanStandardError float64 `json:"meanStandardError"`
}

func newStats(s renderer.RenderStats) Stats {
	return Stats{
		TotalPixels:       s.TotalPixels,
		TotalSamples:      s.TotalSamples,
		AverageSamples:    s.AverageSamples,
		MaxSamples:        s.MaxSamples,
		MinSamples:        s.MinSamples,
		MaxSamplesUsed:    s.MaxSamplesUsed,
		ScrubbedSamples:   s.ScrubbedSamples,
		PassSamples:       s.PassSamples,
		MeanLuminance:     s.MeanLuminance,
		MeanStandardError: s.MeanStandardError,
	}
}

// eventStream writes Server-Sent Events; Send may be called from any goroutine
type eventStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("streaming not supported")
	}
	return &eventStream{w: w, flusher: flusher}, nil
}

// Send writes one event. Strings are sent as they are, anything else as JSON.
func (es *eventStream) Send(event string, payload any) error {
	var data string
	switch v := payload.(type) {
	case string:
		data = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return errors.Wrapf(err, "failed to encode %s event", event)
		}
		data = string(encoded)
	}

	es.mu.Lock()
	defer es.mu.Unlock()
	if _, err := fmt.Fprintf(es.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return errors.Wrap(err, "client disconnected")
	}
	es.flusher.Flush()
	return nil
}

// handleRender handles progressive rendering requests with SSE. Every
// finished pass is sent as a "progress" event; log lines of the render are
// mirrored as "console" events.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	stream, err := newEventStream(w)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.setSSEHeaders(w)

	req, err := s.parseRenderRequest(r)
	if err != nil {
		stream.Send("error", fmt.Sprintf("Invalid request: %v", err))
		return
	}

	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	logger := s.logger.With().Str("render", renderID).Logger().Hook(newConsoleHook(stream))

	raytracer, err := s.setupRaytracer(req, logger)
	if err != nil {
		stream.Send("error", err.Error())
		return
	}

	ctx := r.Context()
	startTime := time.Now()
	err = raytracer.RenderProgressive(ctx, func(result renderer.PassResult) error {
		imageData, err := imageToBase64PNG(result.Buffer.ToRGBA())
		if err != nil {
			return err
		}
		return stream.Send("progress", ProgressUpdate{
			PassNumber:  result.PassNumber,
			TotalPasses: result.TotalPasses,
			ImageData:   imageData,
			Stats:       newStats(result.Stats),
			IsComplete:  result.IsLast,
			ElapsedMs:   time.Since(startTime).Milliseconds(),
			Seed:        raytracer.Seed(),
		})
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			logger.Info().Msg("client disconnected, render stopped")
			return
		}
		logger.Error().Err(err).Msg("render failed")
		stream.Send("error", fmt.Sprintf("Render error: %v", err))
		return
	}

	stream.Send("complete", "Rendering completed")
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// parseSceneParams parses the scene selection shared by render and inspect
func parseSceneParams(r *http.Request) (SceneParams, error) {
	query := r.URL.Query()
	params := SceneParams{Scene: defaultScene}
	if name := strings.TrimSpace(query.Get("scene")); name != "" {
		params.Scene = name
	}

	var err error
	if params.Width, err = parseIntParam(query, "width", 0, 1, MaxImageSize); err != nil {
		return params, err
	}
	if params.Height, err = parseIntParam(query, "height", 0, 1, MaxImageSize); err != nil {
		return params, err
	}
	if params.SamplesPerPixel, err = parseIntParam(query, "samplesPerPixel", 0, 1, MaxSamplesPerPixel); err != nil {
		return params, err
	}
	return params, nil
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	params, err := parseSceneParams(r)
	if err != nil {
		return nil, err
	}
	req := &RenderRequest{SceneParams: params}

	query := r.URL.Query()
	if req.Passes, err = parseIntParam(query, "passes", defaultPasses, 1, MaxPasses); err != nil {
		return nil, err
	}
	if req.Seed, err = parseInt64Param(query, "seed", s.config.Render.Seed); err != nil {
		return nil, err
	}
	if req.RRMinBounces, err = parseIntParam(query, "rrMinBounces", s.config.Render.RRMinBounces, 0, s.config.Render.RRDecayDepth-1); err != nil {
		return nil, err
	}
	req.Integrator = s.config.Render.Integrator
	if name := query.Get("integrator"); name != "" {
		req.Integrator = name
	}
	return req, nil
}

// loadScene resolves and builds the scene named by params
func (s *Server) loadScene(params SceneParams, logger zerolog.Logger) (*scene.Scene, error) {
	desc, err := loaders.ResolveScene(params.Scene, s.config.Server.ScenesDir)
	if err != nil {
		return nil, err
	}
	if params.Width > 0 {
		desc.Width = params.Width
	}
	if params.Height > 0 {
		desc.Height = params.Height
	}
	if params.SamplesPerPixel > 0 {
		desc.SamplesPerPixel = params.SamplesPerPixel
	}

	opts := []scene.Option{scene.WithLogger(logger)}
	if s.config.Render.RequireLights {
		opts = append(opts, scene.WithRequireLights())
	}
	return scene.New(desc, opts...)
}

// setupRaytracer builds the scene, integrator and raytracer for a request
func (s *Server) setupRaytracer(req *RenderRequest, logger zerolog.Logger) (*renderer.Raytracer, error) {
	sceneObj, err := s.loadScene(req.SceneParams, logger)
	if err != nil {
		return nil, err
	}

	cfg := *s.config
	cfg.Render.Passes = req.Passes
	cfg.Render.Seed = req.Seed
	cfg.Render.Integrator = req.Integrator
	cfg.Render.RRMinBounces = req.RRMinBounces
	// The scene already carries any sample count override
	cfg.Render.SamplesPerPixel = 0
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	integ, err := cfg.NewIntegrator()
	if err != nil {
		return nil, err
	}
	return renderer.NewRaytracer(sceneObj, integ, cfg.RendererConfig(), logger)
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := loaders.WritePNG(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
