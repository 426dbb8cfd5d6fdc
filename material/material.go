// Package material holds the surface shading parameters shared by the
// megakernel and wavefront integrators. A Material is a plain value type —
// triangles and TLAS instances reference one by index into a scene-owned
// slice rather than embedding it, keeping the hot BVH/TLAS node shapes small.
package material

import "fmt"

// Material mirrors the original renderer's material_t: an albedo plus the
// weights that steer BSDF sampling at a shading point. Specular and
// Refractivity are mutually exclusive "portions" of the unit reflectance
// budget; the remainder (1 - Specular - Refractivity) is the diffuse
// portion consumed by cosine-weighted sampling.
type Material struct {
	Name string

	Albedo [3]float32

	Specular     float32
	Refractivity float32
	IOR          float32
	Absorption   [3]float32

	Emissive [3]float32
}

// MakeDiffuse returns a purely Lambertian material.
func MakeDiffuse(name string, albedo [3]float32) Material {
	return Material{Name: name, Albedo: albedo, IOR: 1}
}

// MakeSpecular returns a mirror-like material; specular must be in (0,1].
func MakeSpecular(name string, albedo [3]float32, specular float32) Material {
	return Material{Name: name, Albedo: albedo, Specular: specular, IOR: 1}
}

// MakeRefractive returns a dielectric material (glass, water); ior is the
// index of refraction relative to vacuum, and absorption is Beer's-law
// attenuation per unit distance travelled inside the medium.
func MakeRefractive(name string, refractivity, ior float32, absorption [3]float32) Material {
	return Material{Name: name, Refractivity: refractivity, IOR: ior, Absorption: absorption}
}

// MakeEmissive returns a material that is also a light source; emissive is
// radiance, not a [0,1]-clamped color, and may exceed 1 in any channel.
func MakeEmissive(name string, albedo, emissive [3]float32) Material {
	return Material{Name: name, Albedo: albedo, Emissive: emissive, IOR: 1}
}

// Validate enforces the spec's invariant that Specular and Refractivity
// never jointly exceed the unit reflectance budget.
func (m Material) Validate() error {
	if m.Specular < 0 || m.Refractivity < 0 {
		return fmt.Errorf("material %q: specular and refractivity must be non-negative", m.Name)
	}
	if m.Specular+m.Refractivity > 1.0+1e-5 {
		return fmt.Errorf("material %q: specular (%.3f) + refractivity (%.3f) exceeds 1", m.Name, m.Specular, m.Refractivity)
	}
	if m.Refractivity > 0 && m.IOR <= 0 {
		return fmt.Errorf("material %q: refractive material needs a positive IOR", m.Name)
	}
	return nil
}

// IsEmissive reports whether the material contributes direct radiance on
// its own, short-circuiting further bounce sampling at a hit.
func (m Material) IsEmissive() bool {
	return m.Emissive[0] > 0 || m.Emissive[1] > 0 || m.Emissive[2] > 0
}

// DiffuseWeight is the portion of the unit reflectance budget left over
// for Lambertian sampling once specular and refractive portions are taken.
func (m Material) DiffuseWeight() float32 {
	w := 1 - m.Specular - m.Refractivity
	if w < 0 {
		return 0
	}
	return w
}
