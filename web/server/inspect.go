package server

import (
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/df07/glcompute-raytracer/pkg/geometry"
	"github.com/df07/glcompute-raytracer/pkg/material"
	"github.com/df07/glcompute-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool           `json:"hit"`
	SphereIndex  int            `json:"sphereIndex"` // Index into the sphere buffer
	MaterialType string         `json:"materialType"`
	Point        [3]float64     `json:"point"`
	Normal       [3]float64     `json:"normal"`
	Distance     float64        `json:"distance"`
	FrontFace    bool           `json:"frontFace"`
	Properties   map[string]any `json:"properties"`
}

// InspectResult contains the closest sphere hit by an inspection ray
type InspectResult struct {
	Hit         bool
	HitRecord   *material.HitRecord
	Sphere      *geometry.Sphere
	SphereIndex int
}

// inspectPixel casts a ray through the centre of pixel (x, y), y counted from
// the top, and returns the closest sphere it hits
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) InspectResult {
	s := (float64(pixelX) + 0.5) / float64(width)
	t := (float64(height-1-pixelY) + 0.5) / float64(height)

	// Fixed seed so repeated inspections agree when the lens has an aperture
	ray := sceneObj.GetCamera().GetRay(s, t, rand.New(rand.NewSource(0)))

	result := InspectResult{SphereIndex: -1}
	closest := math.Inf(1)
	for i, sphere := range sceneObj.Spheres {
		if hit, ok := sphere.Hit(ray, 0.001, closest); ok {
			closest = hit.T
			result = InspectResult{Hit: true, HitRecord: hit, Sphere: sphere, SphereIndex: i}
		}
	}
	return result
}

// extractMaterialInfo describes a material by its shader parameters
func extractMaterialInfo(mat material.Material) (string, map[string]any) {
	params := mat.Parameters()
	properties := map[string]any{
		"albedo": vec3Array(params.Albedo),
		"color":  hexColor(params.Albedo),
	}

	switch params.Kind {
	case material.KindMetal:
		properties["fuzzness"] = params.Fuzz
	case material.KindDielectric:
		properties["refractiveIndex"] = params.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
	}
	return params.Kind.String(), properties
}

func vec3Array(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(v core.Vec3) string {
	c := v.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	sceneName, width, height, err := s.parseCommonSceneParams(values)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	pixelX, err := strconv.Atoi(values.Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(values.Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}
	if pixelX < 0 || pixelX >= width || pixelY < 0 || pixelY >= height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	sceneObj, err := s.buildScene(sceneName, width, height)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result := inspectPixel(sceneObj, width, height, pixelX, pixelY)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false, SphereIndex: -1})
		return
	}

	materialType, materialProps := extractMaterialInfo(result.HitRecord.Material)
	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		SphereIndex:  result.SphereIndex,
		MaterialType: materialType,
		Point:        vec3Array(result.HitRecord.Point),
		Normal:       vec3Array(result.HitRecord.Normal),
		Distance:     result.HitRecord.T,
		FrontFace:    result.HitRecord.FrontFace,
		Properties: map[string]any{
			"material": materialProps,
			"geometry": map[string]any{
				"center": vec3Array(result.Sphere.Center),
				"radius": result.Sphere.Radius,
			},
		},
	})
}
