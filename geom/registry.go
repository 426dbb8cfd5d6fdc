// Package geom owns mesh geometry: turning a flat vertex/index buffer into
// denormalized triangles, building a bvh.BLAS over them, and registering
// the result behind a generation-tagged handle so callers never hold a
// pointer that can outlive (or silently alias) a destroyed mesh.
package geom

import (
	"errors"
	"fmt"

	"github.com/wavecore/pathtracer/bvh"
	"github.com/wavecore/pathtracer/raytrace"
)

// ErrInvalidGeometry is returned by CreateMesh when the index buffer isn't
// a whole number of triangles, or the per-triangle material slice doesn't
// match it.
var ErrInvalidGeometry = errors.New("geom: invalid mesh geometry")

// ErrHandleNotFound is returned by Destroy when given a handle whose
// generation no longer matches the live slot (already destroyed, or never
// issued by this registry).
var ErrHandleNotFound = errors.New("geom: handle not found")

// Handle is an index into the Registry's slot table tagged with the
// generation the slot had when this handle was issued. A stale handle
// (its generation out of date) fails Lookup rather than aliasing whatever
// mesh now occupies that slot.
type Handle struct {
	Index      uint32
	Generation uint32
}

// Mesh is a built, registered mesh: its BLAS plus the debug name it was
// registered under.
type Mesh struct {
	DebugName string
	BLAS      *bvh.BLAS
}

type slot struct {
	generation uint32
	occupied   bool
	mesh       *Mesh
}

// Registry owns every live mesh in a scene. The zero value is not usable;
// construct with NewRegistry.
type Registry struct {
	slots    []slot
	freeList []uint32
}

// NewRegistry returns an empty mesh registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// CreateMesh denormalizes vertices/indices into raytrace.Triangle values
// (three per face, each carrying its own position/normal so BVH traversal
// never indirects through a separate vertex buffer), builds a BLAS over
// them, and registers the result. materialIdx must have one entry per
// triangle (len(indices)/3).
func (r *Registry) CreateMesh(vertices []raytrace.Vertex, indices []uint32, materialIdx []uint32, debugName string, opts bvh.BuildOptions) (Handle, error) {
	if len(indices)%3 != 0 {
		return Handle{}, fmt.Errorf("%w: %s: index count %d is not a multiple of 3", ErrInvalidGeometry, debugName, len(indices))
	}
	triCount := len(indices) / 3
	if triCount == 0 {
		return Handle{}, fmt.Errorf("%w: %s: zero triangles", ErrInvalidGeometry, debugName)
	}
	if len(materialIdx) != triCount {
		return Handle{}, fmt.Errorf("%w: %s: %d material indices for %d triangles", ErrInvalidGeometry, debugName, len(materialIdx), triCount)
	}

	tris := make([]raytrace.Triangle, triCount)
	for i := 0; i < triCount; i++ {
		v0 := vertices[indices[i*3+0]]
		v1 := vertices[indices[i*3+1]]
		v2 := vertices[indices[i*3+2]]
		tris[i] = raytrace.Triangle{
			P0: v0.Position, P1: v1.Position, P2: v2.Position,
			N0: v0.Normal, N1: v1.Normal, N2: v2.Normal,
		}
	}

	blas, err := bvh.Build(tris, materialIdx, opts)
	if err != nil {
		return Handle{}, fmt.Errorf("%s: %w", debugName, err)
	}

	mesh := &Mesh{DebugName: debugName, BLAS: blas}
	return r.insert(mesh), nil
}

func (r *Registry) insert(mesh *Mesh) Handle {
	if n := len(r.freeList); n > 0 {
		idx := r.freeList[n-1]
		r.freeList = r.freeList[:n-1]
		s := &r.slots[idx]
		s.occupied = true
		s.mesh = mesh
		return Handle{Index: idx, Generation: s.generation}
	}

	idx := uint32(len(r.slots))
	r.slots = append(r.slots, slot{occupied: true, mesh: mesh})
	return Handle{Index: idx, Generation: 0}
}

// Lookup returns the mesh h refers to, or ok=false if h is stale or out of
// range.
func (r *Registry) Lookup(h Handle) (*Mesh, bool) {
	if int(h.Index) >= len(r.slots) {
		return nil, false
	}
	s := &r.slots[h.Index]
	if !s.occupied || s.generation != h.Generation {
		return nil, false
	}
	return s.mesh, true
}

// Destroy frees h's slot for reuse, bumping its generation so any
// outstanding copies of h fail Lookup from this point on.
func (r *Registry) Destroy(h Handle) error {
	if int(h.Index) >= len(r.slots) {
		return ErrHandleNotFound
	}
	s := &r.slots[h.Index]
	if !s.occupied || s.generation != h.Generation {
		return ErrHandleNotFound
	}
	s.occupied = false
	s.mesh = nil
	s.generation++
	r.freeList = append(r.freeList, h.Index)
	return nil
}
