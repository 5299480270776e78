package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/glcompute-raytracer/pkg/config"
	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/df07/glcompute-raytracer/pkg/scene"
)

// Request limits shared by every endpoint
const (
	MinDimension = 16
	MaxDimension = 2000

	DefaultWidth  = 512
	DefaultHeight = 256
)

// Server streams CPU previews of the demo scenes
type Server struct {
	config config.Config
	mux    *http.ServeMux
}

// NewServer creates a new web server using cfg for defaults
func NewServer(cfg config.Config) *Server {
	s := &Server{config: cfg, mux: http.NewServeMux()}

	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	return s
}

// Handler returns the request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Web.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		core.Logger().Info("web server listening", "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errChan; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the registered scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scene.List())
}

// buildScene creates the named scene with the configured bounce depth and
// camera override
func (s *Server) buildScene(name string, width, height int) (*scene.Scene, error) {
	cfg := s.config
	cfg.Scene = name
	return scene.FromConfig(cfg, float64(width)/float64(height))
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = s.config.Scene
	}

	sceneObj, err := s.buildScene(sceneName, DefaultWidth, DefaultHeight)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sampling := sceneObj.GetSamplingConfig()
	writeJSON(w, http.StatusOK, map[string]any{
		"scene": sceneName,
		"defaults": map[string]any{
			"width":           DefaultWidth,
			"height":          DefaultHeight,
			"samplesPerPixel": sampling.SamplesPerPixel,
			"maxDepth":        sampling.MaxDepth,
			"maxPasses":       s.config.Progressive.Passes,
			"sphereCount":     len(sceneObj.Spheres),
		},
		"limits": map[string]any{
			"width":      map[string]int{"min": MinDimension, "max": MaxDimension},
			"height":     map[string]int{"min": MinDimension, "max": MaxDimension},
			"maxSamples": map[string]int{"min": 1, "max": 10000},
			"maxPasses":  map[string]int{"min": 1, "max": 10000},
		},
	})
}

// parseCommonSceneParams reads the scene name and image size shared by render and inspect
func (s *Server) parseCommonSceneParams(values url.Values) (name string, width, height int, err error) {
	name = values.Get("scene")
	if name == "" {
		name = s.config.Scene
	}
	if width, err = parseIntParam(values, "width", DefaultWidth, MinDimension, MaxDimension); err != nil {
		return "", 0, 0, err
	}
	if height, err = parseIntParam(values, "height", DefaultHeight, MinDimension, MaxDimension); err != nil {
		return "", 0, 0, err
	}
	return name, width, height, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		core.Logger().Warn("response encoding failed", "err", err)
	}
}
