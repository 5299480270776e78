package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/df07/glcompute-raytracer/pkg/config"
	"github.com/df07/glcompute-raytracer/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	return NewServer(config.Default())
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(), "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestScenes(t *testing.T) {
	rec := get(t, newTestServer(), "/api/scenes")
	require.Equal(t, http.StatusOK, rec.Code)

	var scenes []scene.SceneInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scenes))
	assert.Equal(t, scene.List(), scenes)
}

func TestSceneConfig(t *testing.T) {
	s := newTestServer()

	rec := get(t, s, "/api/scene-config?scene=spheregrid")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Scene    string         `json:"scene"`
		Defaults map[string]any `json:"defaults"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "spheregrid", body.Scene)
	assert.EqualValues(t, 26, body.Defaults["sphereCount"])

	rec = get(t, s, "/api/scene-config?scene=teapot")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseRenderRequestDefaults(t *testing.T) {
	s := newTestServer()
	req, err := s.parseRenderRequest(httptest.NewRequest(http.MethodGet, "/api/render", nil))
	require.NoError(t, err)

	assert.Equal(t, "default", req.Scene)
	assert.Equal(t, DefaultWidth, req.Width)
	assert.Equal(t, DefaultHeight, req.Height)
	assert.Equal(t, 0, req.MaxSamples, "scene sample count applies")
	assert.Equal(t, config.Default().Progressive.Passes, req.MaxPasses)
}

func TestParseRenderRequestErrors(t *testing.T) {
	s := newTestServer()
	for _, query := range []string{
		"width=abc",
		"width=4",
		"height=5000",
		"maxSamples=0",
		"maxPasses=-1",
		"adaptiveThreshold=2",
	} {
		_, err := s.parseRenderRequest(httptest.NewRequest(http.MethodGet, "/api/render?"+query, nil))
		assert.Error(t, err, query)
	}
}

func TestRenderStreamsPasses(t *testing.T) {
	rec := get(t, newTestServer(), "/api/render?scene=default&width=32&height=16&maxSamples=2&maxPasses=2")

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "event: tile")
	assert.Contains(t, body, "event: passComplete")
	assert.Contains(t, body, "event: console")
	assert.Contains(t, body, "event: complete\ndata: Rendering completed\n\n")
	assert.Less(t, strings.LastIndex(body, "event: passComplete"), strings.Index(body, "event: complete\n"))
}

func TestRenderInvalidRequest(t *testing.T) {
	rec := get(t, newTestServer(), "/api/render?scene=teapot&width=32&height=16")
	assert.Contains(t, rec.Body.String(), "event: error")
	assert.NotContains(t, rec.Body.String(), "event: complete")
}

func TestInspect(t *testing.T) {
	s := newTestServer()

	// The default camera looks straight at the blue sphere
	rec := get(t, s, "/api/inspect?scene=default&width=512&height=256&x=256&y=128")
	require.Equal(t, http.StatusOK, rec.Code)
	var hit InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hit))
	assert.True(t, hit.Hit)
	assert.Equal(t, 1, hit.SphereIndex)
	assert.Equal(t, "lambertian", hit.MaterialType)
	assert.True(t, hit.FrontFace)

	// The top row looks above every sphere
	rec = get(t, s, "/api/inspect?scene=default&width=512&height=256&x=0&y=0")
	require.Equal(t, http.StatusOK, rec.Code)
	var miss InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &miss))
	assert.False(t, miss.Hit)
	assert.Equal(t, -1, miss.SphereIndex)
}

func TestInspectUsesConfiguredCamera(t *testing.T) {
	cfg := config.Default()
	cfg.Camera = &config.CameraConfig{
		Position: [3]float64{0, 50, 0},
		Target:   [3]float64{0, 100, 0},
		Up:       [3]float64{1, 0, 0},
		VFov:     40,
	}
	s := NewServer(cfg)

	// Pointed at the sky, the centre pixel that hits the blue sphere by default misses
	rec := get(t, s, "/api/inspect?scene=default&width=512&height=256&x=256&y=128")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp InspectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Hit)
}

func TestSceneConfigUsesConfiguredDepth(t *testing.T) {
	cfg := config.Default()
	cfg.Render.MaxDepth = 9
	s := NewServer(cfg)

	rec := get(t, s, "/api/scene-config?scene=spheregrid")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Defaults map[string]any `json:"defaults"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 9, body.Defaults["maxDepth"])
}

func TestRenderPipelineUsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Render.MaxDepth = 1
	cfg.Camera = &config.CameraConfig{
		Position: [3]float64{0, 1, 4},
		Up:       [3]float64{0, 1, 0},
		VFov:     40,
	}
	s := NewServer(cfg)

	pipeline, err := s.setupRenderingPipeline(&RenderRequest{Scene: "default", Width: 32, Height: 16, MaxPasses: 1})
	require.NoError(t, err)
	defer pipeline.Raytracer.Close()

	assert.Equal(t, 1, pipeline.Scene.GetSamplingConfig().MaxDepth)
	assert.Equal(t, 40.0, pipeline.Scene.CameraConfig.VFov)
	assert.Equal(t, 2.0, pipeline.Scene.CameraConfig.AspectRatio)
}

func TestInspectBadCoordinates(t *testing.T) {
	s := newTestServer()
	for _, query := range []string{"x=a&y=0", "x=0", "x=600&y=0", "x=0&y=-1"} {
		rec := get(t, s, "/api/inspect?width=512&height=256&"+query)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}
