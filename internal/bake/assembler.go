package bake

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbake/pkg/lineio"
	"github.com/Faultbox/meshbake/pkg/math"
	"github.com/Faultbox/meshbake/pkg/textenc"
	"github.com/Faultbox/meshbake/pkg/wavefront"
)

// Options configures an Assembler.
type Options struct {
	Names        wavefront.NamePolicy
	DegenerateUV DegenerateUVPolicy
	Decoder      *textenc.Decoder // Charset of input files; nil for UTF-8
	Logger       *zap.Logger
}

// DefaultOptions returns the options used when no config is given.
func DefaultOptions() Options {
	return Options{
		Names:        wavefront.DefaultNamePolicy(),
		DegenerateUV: SkipDegenerateUV,
	}
}

// Assembler converts OBJ files one at a time into a shared scene.
type Assembler struct {
	scene *wavefront.Scene
	opts  Options
	log   *zap.Logger
}

// NewAssembler returns an assembler appending to scene.
func NewAssembler(scene *wavefront.Scene, opts Options) *Assembler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{
		scene: scene,
		opts:  opts,
		log:   log.Named("bake"),
	}
}

// Scene returns the scene being assembled.
func (a *Assembler) Scene() *wavefront.Scene {
	return a.scene
}

// Convert parses one OBJ file and commits its meshes, models and materials
// to the scene. Records from earlier files keep their positions. If
// conversion fails the scene is left exactly as it was before the call.
func (a *Assembler) Convert(path string) (err error) {
	start := time.Now()
	mark := a.scene.Mark()
	defer func() {
		if err != nil {
			a.scene.Rollback(mark)
		}
	}()

	data, err := a.load(path)
	if err != nil {
		return err
	}

	acc := &wavefront.Accumulator{
		Scene: a.scene,
		Load:  a.load,
		Names: a.opts.Names,
	}
	geom, err := acc.Accumulate(path, data)
	if err != nil {
		return err
	}

	var vertexCount, indexCount int
	for _, sub := range geom.Submeshes {
		mesh := &a.scene.Meshes[sub.MeshIndex]

		raw, indices, err := Deduplicate(geom, sub.Triangles)
		if err != nil {
			return fmt.Errorf("%s: mesh %q: %w", path, mesh.Name, err)
		}

		vertices, skipped := GenerateTangents(raw, indices, a.opts.DegenerateUV)
		if skipped > 0 {
			a.log.Warn("degenerate texture coordinates, tangents left unset",
				zap.String("mesh", mesh.Name),
				zap.Int("triangles", skipped))
		}
		if n := nonFinite(vertices); n > 0 {
			a.log.Warn("non-finite tangents",
				zap.String("mesh", mesh.Name),
				zap.Int("vertices", n),
				zap.Stringer("policy", a.opts.DegenerateUV))
		}

		mesh.Vertices = vertices
		mesh.Indices = indices
		mesh.Bounds = bounds(vertices)

		vertexCount += len(vertices)
		indexCount += len(indices)

		a.log.Debug("mesh baked",
			zap.String("mesh", mesh.Name),
			zap.String("material", sub.Material),
			zap.Int("triangles", len(sub.Triangles)),
			zap.Int("vertices", len(vertices)),
			zap.Int("indices", len(indices)))
	}

	for _, model := range a.scene.Models[mark.Models():] {
		if _, ok := a.scene.Material(model.MaterialName); !ok {
			a.log.Warn("model references undefined material",
				zap.String("mesh", model.MeshName),
				zap.String("material", model.MaterialName))
		}
	}

	a.scene.Files = append(a.scene.Files, path)

	a.log.Info("converted",
		zap.String("file", path),
		zap.String("encoding", a.opts.Decoder.Name()),
		zap.Int("meshes", len(geom.Submeshes)),
		zap.Int("materials", len(a.scene.Materials)-mark.Materials()),
		zap.Int("vertices", vertexCount),
		zap.Int("indices", indexCount),
		zap.Duration("took", time.Since(start)))

	return nil
}

// load reads a file and decodes it to UTF-8.
func (a *Assembler) load(path string) ([]byte, error) {
	data, err := lineio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := a.opts.Decoder.Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func bounds(vertices []wavefront.Vertex) math.Bounds {
	b := math.EmptyBounds()
	for _, v := range vertices {
		b = b.Extend(v.Position)
	}
	return b
}

// nonFinite counts vertices whose tangent frame holds a NaN or Inf.
func nonFinite(vertices []wavefront.Vertex) int {
	n := 0
	for _, v := range vertices {
		if !v.Tangent.IsFinite() || !v.Bitangent.IsFinite() {
			n++
		}
	}
	return n
}
