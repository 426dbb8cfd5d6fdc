package material

import "github.com/go-gl/mathgl/mgl32"

// AlbedoVec returns Albedo as an mgl32.Vec3 for shading math.
func (m Material) AlbedoVec() mgl32.Vec3 {
	return mgl32.Vec3{m.Albedo[0], m.Albedo[1], m.Albedo[2]}
}

// AbsorptionVec returns Absorption as an mgl32.Vec3 for shading math.
func (m Material) AbsorptionVec() mgl32.Vec3 {
	return mgl32.Vec3{m.Absorption[0], m.Absorption[1], m.Absorption[2]}
}

// EmissiveVec returns Emissive as an mgl32.Vec3 for shading math.
func (m Material) EmissiveVec() mgl32.Vec3 {
	return mgl32.Vec3{m.Emissive[0], m.Emissive[1], m.Emissive[2]}
}
