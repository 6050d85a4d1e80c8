// Package wavefront parses Wavefront OBJ/MTL scene descriptions into raw
// per-submesh triangle lists and material records.
package wavefront

import (
	"github.com/Faultbox/meshbake/pkg/math"
)

// DefaultSpecularPower is assigned to every material on newmtl.
const DefaultSpecularPower float32 = 16.0

// DefaultTexCoord fills the sentinel slot 0 of the texcoord array, used by
// faces that carry no texcoord index.
var DefaultTexCoord = math.Vec2{X: 0.5, Y: 0.5}

// Key identifies one face corner by its (position, texcoord, normal) indices.
// P and N are 0-based; T indexes the texcoord array directly, 0 being the
// sentinel.
type Key struct {
	P, T, N int
}

// Less orders keys lexicographically over (P, T, N).
func (k Key) Less(other Key) bool {
	if k.P != other.P {
		return k.P < other.P
	}
	if k.T != other.T {
		return k.T < other.T
	}
	return k.N < other.N
}

// Triangle is three face corners in winding order.
type Triangle [3]Key

// Submesh collects the triangles between one usemtl and the next.
type Submesh struct {
	MeshIndex int    // Slot in Scene.Meshes
	Material  string // Material name from usemtl
	Triangles []Triangle
}

// Geometry holds the per-file attribute arrays and submeshes.
// It is discarded once its meshes are committed to the scene.
type Geometry struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	TexCoords []math.Vec2 // TexCoords[0] is DefaultTexCoord
	Textured  bool        // Faces use p/t/n when set, p//n otherwise
	Submeshes []Submesh
	Libraries []string // mtllib paths loaded during the counting pass
}

// RawVertex is a deduplicated corner before tangent generation.
type RawVertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord math.Vec2 // V already flipped
}

// Vertex is the final GPU vertex layout.
type Vertex struct {
	Position  math.Vec3
	Normal    math.Vec3
	Tangent   math.Vec3
	Bitangent math.Vec3
	TexCoord  math.Vec2
}

// Mesh is one finalized submesh.
type Mesh struct {
	Name     string
	Source   string // Input file the mesh came from
	Vertices []Vertex
	Indices  []uint32
	Bounds   math.Bounds
}

// IndexWidth returns the smallest index size in bytes (2 or 4) that can
// address every vertex of the mesh.
func (m *Mesh) IndexWidth() int {
	if len(m.Vertices) <= 1<<16 {
		return 2
	}
	return 4
}

// TextureInfo describes a texture referenced by a material.
type TextureInfo struct {
	Path   string
	Format string
	Width  int
	Height int
	Found  bool
	Baked  string // WebP output path, when baked
}

// Material is one newmtl block.
type Material struct {
	Name             string
	AlbedoTex        string
	NormalTex        string
	SpecularColor    math.Vec3
	HasSpecularColor bool
	SpecularPower    float32
	SpecularCoeff    float32

	// Filled by the texture probe, if enabled.
	Albedo *TextureInfo
	Normal *TextureInfo
}

// Model pairs a mesh with the material it renders with.
type Model struct {
	MeshName     string
	MaterialName string
}

// Scene accumulates meshes, materials and models across input files.
type Scene struct {
	Meshes    []Mesh
	Materials []Material
	Models    []Model
	Files     []string
	Libraries []string
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// Mark captures the scene lengths so a failed conversion can be undone.
type Mark struct {
	meshes, materials, models, files, libraries int
}

// Mark records the current lengths of every collection.
func (s *Scene) Mark() Mark {
	return Mark{
		meshes:    len(s.Meshes),
		materials: len(s.Materials),
		models:    len(s.Models),
		files:     len(s.Files),
		libraries: len(s.Libraries),
	}
}

// Meshes returns the number of meshes at the time of the mark.
func (m Mark) Meshes() int { return m.meshes }

// Materials returns the number of materials at the time of the mark.
func (m Mark) Materials() int { return m.materials }

// Models returns the number of models at the time of the mark.
func (m Mark) Models() int { return m.models }

// Rollback truncates the scene back to m.
func (s *Scene) Rollback(m Mark) {
	clear(s.Meshes[m.meshes:])
	clear(s.Materials[m.materials:])
	clear(s.Models[m.models:])
	s.Meshes = s.Meshes[:m.meshes]
	s.Materials = s.Materials[:m.materials]
	s.Models = s.Models[:m.models]
	s.Files = s.Files[:m.files]
	s.Libraries = s.Libraries[:m.libraries]
}

// Material returns the last material with the given name.
// Names are not unique; later definitions shadow earlier ones.
func (s *Scene) Material(name string) (*Material, bool) {
	for i := len(s.Materials) - 1; i >= 0; i-- {
		if s.Materials[i].Name == name {
			return &s.Materials[i], true
		}
	}
	return nil, false
}
