package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/df07/glcompute-raytracer/pkg/renderer"
	"github.com/df07/glcompute-raytracer/pkg/scene"
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene              string  `json:"scene"`
	Width              int     `json:"width"`
	Height             int     `json:"height"`
	MaxSamples         int     `json:"maxSamples"` // 0 uses the scene's sample count
	MaxPasses          int     `json:"maxPasses"`
	AdaptiveMinSamples float64 `json:"adaptiveMinSamples"` // Fraction of the pass target before early stop
	AdaptiveThreshold  float64 `json:"adaptiveThreshold"`  // Relative error threshold; 0 disables
}

// TileUpdate represents a single tile update sent via SSE
type TileUpdate struct {
	TileX       int    `json:"tileX"`
	TileY       int    `json:"tileY"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG of just this tile
	PassNumber  int    `json:"passNumber"`
	TileNumber  int    `json:"tileNumber"`  // Current tile number in this pass (1-based)
	TotalTiles  int    `json:"totalTiles"`  // Total number of tiles in the image
	TotalPasses int    `json:"totalPasses"` // Total number of passes planned
}

// PassUpdate is sent when a pass finishes
type PassUpdate struct {
	PassNumber     int     `json:"passNumber"`
	TotalPasses    int     `json:"totalPasses"`
	ElapsedMs      int64   `json:"elapsedMs"`
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MaxSamples     int     `json:"maxSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
	SphereCount    int     `json:"sphereCount"`
	IsComplete     bool    `json:"isComplete"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "tile", "passComplete", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// RenderingPipeline contains the configured scene and raytracer
type RenderingPipeline struct {
	Scene     *scene.Scene
	Raytracer *renderer.ProgressiveRaytracer
}

// handleRender handles progressive rendering with real-time tile streaming via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	ctx, cancel := context.WithCancel(r.Context())

	// Single writer goroutine; it drains the channel until it is closed
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		s.writeSSEEvents(r.Context(), w, sseEventChan)
		close(writerDone)
	}()

	var producers sync.WaitGroup
	defer func() {
		cancel()
		producers.Wait()
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan, logger := s.setupConsoleLogging()
	producers.Add(1)
	go func() {
		defer producers.Done()
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
	}()

	pipeline, err := s.setupRenderingPipeline(req)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	logger.Info("render started", "scene", req.Scene, "width", req.Width, "height", req.Height,
		"passes", req.MaxPasses, "spheres", len(pipeline.Scene.Spheres))

	startTime := time.Now()
	passChan, tileChan, errChan := pipeline.Raytracer.RenderProgressive(ctx, renderer.RenderOptions{TileUpdates: true})

	s.handleRenderingEvents(ctx, sseEventChan, logger, passChan, tileChan, errChan, pipeline.Scene, req, startTime)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, *slog.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	return consoleChan, slog.New(NewWebLogger(renderID, consoleChan))
}

// writeSSEEvents writes every event until the channel is closed. Once the
// client is gone remaining events are discarded.
func (s *Server) writeSSEEvents(clientCtx context.Context, w http.ResponseWriter, sseEventChan <-chan SSEEvent) {
	flusher, _ := w.(http.Flusher)
	for event := range sseEventChan {
		if clientCtx.Err() != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// streamConsoleMessages forwards console messages until ctx is done
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, sseEventChan chan<- SSEEvent) {
	for {
		select {
		case consoleMsg := <-consoleChan:
			data, err := json.Marshal(consoleMsg)
			if err != nil {
				core.Logger().Warn("console message encoding failed", "err", err)
				continue
			}

			select {
			case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
			case <-ctx.Done():
				return
			default:
				// Channel full, skip message to avoid blocking
			}

		case <-ctx.Done():
			return
		}
	}
}

// setupRenderingPipeline creates and configures the scene and raytracer
func (s *Server) setupRenderingPipeline(req *RenderRequest) (*RenderingPipeline, error) {
	sceneObj, err := s.buildScene(req.Scene, req.Width, req.Height)
	if err != nil {
		return nil, err
	}

	settings := s.config.Progressive
	settings.Passes = req.MaxPasses
	settings.MaxSamples = req.MaxSamples

	config := renderer.ConfigFromSettings(settings, sceneObj.GetSamplingConfig().SamplesPerPixel)
	config.AdaptiveMinSamples = req.AdaptiveMinSamples
	config.AdaptiveThreshold = req.AdaptiveThreshold

	return &RenderingPipeline{
		Scene:     sceneObj,
		Raytracer: renderer.NewProgressiveRaytracer(sceneObj, req.Width, req.Height, config),
	}, nil
}

// handleRenderingEvents forwards pass and tile results until every channel is closed
func (s *Server) handleRenderingEvents(ctx context.Context, sseEventChan chan<- SSEEvent, logger *slog.Logger,
	passChan <-chan renderer.PassResult, tileChan <-chan renderer.TileCompletionResult, errChan <-chan error,
	sceneObj *scene.Scene, req *RenderRequest, startTime time.Time) {

	for passChan != nil || tileChan != nil || errChan != nil {
		select {
		case passResult, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			logger.Info("pass completed", "pass", passResult.PassNumber,
				"avg_samples", fmt.Sprintf("%.1f", passResult.Stats.AverageSamples))
			s.handlePassComplete(ctx, sseEventChan, passResult, req, sceneObj, startTime)

		case tileResult, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			s.handleTileUpdate(ctx, sseEventChan, tileResult)

		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			if ctx.Err() != nil {
				// Client disconnected
				return
			}
			s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
			return

		case <-ctx.Done():
			return
		}
	}

	logger.Info("render finished", "elapsed", time.Since(startTime).Round(time.Millisecond))
	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
	case <-ctx.Done():
	}
}

// handlePassComplete processes and sends pass completion events
func (s *Server) handlePassComplete(ctx context.Context, sseEventChan chan<- SSEEvent, passResult renderer.PassResult,
	req *RenderRequest, sceneObj *scene.Scene, startTime time.Time) {

	update := PassUpdate{
		PassNumber:     passResult.PassNumber,
		TotalPasses:    req.MaxPasses,
		ElapsedMs:      time.Since(startTime).Milliseconds(),
		TotalPixels:    passResult.Stats.TotalPixels,
		TotalSamples:   passResult.Stats.TotalSamples,
		AverageSamples: passResult.Stats.AverageSamples,
		MaxSamples:     passResult.Stats.MaxSamples,
		MinSamples:     passResult.Stats.MinSamples,
		MaxSamplesUsed: passResult.Stats.MaxSamplesUsed,
		SphereCount:    len(sceneObj.Spheres),
		IsComplete:     passResult.IsLast,
	}

	data, err := json.Marshal(update)
	if err != nil {
		core.Logger().Warn("pass update encoding failed", "err", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "passComplete", Data: string(data)}:
	case <-ctx.Done():
	}
}

// handleTileUpdate processes and sends tile update events
func (s *Server) handleTileUpdate(ctx context.Context, sseEventChan chan<- SSEEvent, tileResult renderer.TileCompletionResult) {
	tileData, err := imageToBase64PNG(tileResult.TileImage)
	if err != nil {
		core.Logger().Warn("tile encoding failed", "tile_x", tileResult.TileX, "tile_y", tileResult.TileY, "err", err)
		return
	}

	update := TileUpdate{
		TileX:       tileResult.TileX,
		TileY:       tileResult.TileY,
		ImageData:   tileData,
		PassNumber:  tileResult.PassNumber,
		TileNumber:  tileResult.TileNumber,
		TotalTiles:  tileResult.TotalTiles,
		TotalPasses: tileResult.TotalPasses,
	}

	data, err := json.Marshal(update)
	if err != nil {
		core.Logger().Warn("tile update encoding failed", "err", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "tile", Data: string(data)}:
	case <-ctx.Done():
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	values := r.URL.Query()
	req := &RenderRequest{}

	var err error
	if req.Scene, req.Width, req.Height, err = s.parseCommonSceneParams(values); err != nil {
		return nil, err
	}
	if req.MaxSamples, err = parseIntParam(values, "maxSamples", s.config.Progressive.MaxSamples, 1, 10000); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(values, "maxPasses", s.config.Progressive.Passes, 1, 10000); err != nil {
		return nil, err
	}

	defaults := renderer.DefaultProgressiveConfig()
	if req.AdaptiveMinSamples, err = parseFloatParam(values, "adaptiveMinSamples", defaults.AdaptiveMinSamples, 0.01, 1.0); err != nil {
		return nil, err
	}
	if req.AdaptiveThreshold, err = parseFloatParam(values, "adaptiveThreshold", defaults.AdaptiveThreshold, 0, 0.5); err != nil {
		return nil, err
	}

	if req.Width*req.Height > 800*600 && req.MaxSamples > 100 {
		core.Logger().Warn("large render requested", "width", req.Width, "height", req.Height, "max_samples", req.MaxSamples)
	}

	return req, nil
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan<- SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}
