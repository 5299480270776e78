package scene

import (
	"github.com/df07/glcompute-raytracer/pkg/material"
)

// Float counts per element of the std430 buffers read by raytracer.comp.
//
//	sphere:   center.xyz, radius, material index, pad, pad, pad
//	material: kind, fuzz, ior, pad, albedo.rgb, pad
const (
	SphereStride   = 8
	MaterialStride = 8
)

// Packed is the scene flattened into shader storage buffer contents
type Packed struct {
	Spheres   []float32
	Materials []float32
}

// SphereCount returns the number of spheres in the packed buffer
func (p Packed) SphereCount() int {
	return len(p.Spheres) / SphereStride
}

// MaterialCount returns the number of materials in the packed buffer
func (p Packed) MaterialCount() int {
	return len(p.Materials) / MaterialStride
}

// Pack flattens spheres and materials for upload. Materials shared between
// spheres are stored once.
func (s *Scene) Pack() Packed {
	var packed Packed
	indices := make(map[material.Material]int)

	for _, sphere := range s.Spheres {
		index, ok := indices[sphere.Material]
		if !ok {
			index = len(indices)
			indices[sphere.Material] = index
			packed.Materials = append(packed.Materials, packMaterial(sphere.Material.Parameters())...)
		}

		packed.Spheres = append(packed.Spheres,
			float32(sphere.Center.X), float32(sphere.Center.Y), float32(sphere.Center.Z),
			float32(sphere.Radius),
			float32(index), 0, 0, 0,
		)
	}

	return packed
}

func packMaterial(p material.Parameters) []float32 {
	return []float32{
		float32(p.Kind), float32(p.Fuzz), float32(p.RefractiveIndex), 0,
		float32(p.Albedo.X), float32(p.Albedo.Y), float32(p.Albedo.Z), 0,
	}
}
