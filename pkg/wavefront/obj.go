package wavefront

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/meshbake/pkg/lineio"
	"github.com/Faultbox/meshbake/pkg/math"
)

// Loader reads a whole file. It is used for mtllib references.
type Loader func(path string) ([]byte, error)

// Accumulator parses OBJ buffers into Geometry, growing the scene's mesh,
// model and material slices as it goes.
type Accumulator struct {
	Scene *Scene
	Load  Loader
	Names NamePolicy
}

// counts is the result of the counting pass.
type counts struct {
	positions, texcoords, normals, submeshes int
}

// Accumulate runs the counting, vertex and face passes over one OBJ buffer.
//
// Mesh and model slots for every usemtl are appended to the scene and the
// models are filled in; the mesh slots only get their names; the caller
// fills in vertices once the submeshes are deduplicated.
func (a *Accumulator) Accumulate(file string, data []byte) (*Geometry, error) {
	geom := &Geometry{}

	c, err := a.count(file, data, geom)
	if err != nil {
		return nil, err
	}

	base := len(a.Scene.Meshes)
	a.Scene.Meshes = append(a.Scene.Meshes, make([]Mesh, c.submeshes)...)
	a.Scene.Models = append(a.Scene.Models, make([]Model, c.submeshes)...)

	geom.Positions = make([]math.Vec3, 0, c.positions)
	geom.Normals = make([]math.Vec3, 0, c.normals)
	geom.TexCoords = make([]math.Vec2, 0, c.texcoords+1)
	geom.TexCoords = append(geom.TexCoords, DefaultTexCoord)
	geom.Textured = c.texcoords > 0
	geom.Submeshes = make([]Submesh, 0, c.submeshes)

	if err := a.fillVertices(file, data, geom); err != nil {
		return nil, err
	}
	if err := a.fillFaces(file, data, base, geom); err != nil {
		return nil, err
	}

	return geom, nil
}

// count tallies attributes and submeshes, loading material libraries as
// they are referenced.
func (a *Accumulator) count(file string, data []byte, geom *Geometry) (counts, error) {
	var c counts
	cur := lineio.NewCursor(data)
	for {
		line, ok := cur.Next()
		if !ok {
			break
		}

		switch firstToken(line) {
		case "v":
			c.positions++
		case "vt":
			c.texcoords++
		case "vn":
			c.normals++
		case "usemtl":
			c.submeshes++
		case "mtllib":
			tokens := strings.Fields(string(line))
			if err := tokenCount(tokens, 2); err != nil {
				return c, parseErr(file, cur.Line(), "mtllib", err)
			}
			if err := a.loadLibrary(file, tokens[1], geom); err != nil {
				return c, parseErr(file, cur.Line(), "mtllib", err)
			}
		}
	}
	return c, nil
}

func (a *Accumulator) loadLibrary(objFile, lib string, geom *Geometry) error {
	path := lib
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(objFile), lib)
	}

	load := a.Load
	if load == nil {
		load = lineio.ReadFile
	}
	data, err := load(path)
	if err != nil {
		return err
	}
	if _, err := ParseMaterials(a.Scene, path, data, a.Names); err != nil {
		return err
	}

	geom.Libraries = append(geom.Libraries, path)
	a.Scene.Libraries = append(a.Scene.Libraries, path)
	return nil
}

// fillVertices parses v, vt and vn lines in file order.
func (a *Accumulator) fillVertices(file string, data []byte, geom *Geometry) error {
	cur := lineio.NewCursor(data)
	for {
		line, ok := cur.Next()
		if !ok {
			break
		}

		directive := firstToken(line)
		if directive != "v" && directive != "vt" && directive != "vn" {
			continue
		}

		tokens := strings.Fields(string(line))
		switch directive {
		case "v":
			// An optional w component is ignored.
			if len(tokens) == 5 {
				tokens = tokens[:4]
			}
			v, err := parseVec3(tokens)
			if err != nil {
				return parseErr(file, cur.Line(), directive, err)
			}
			geom.Positions = append(geom.Positions, v)
		case "vt":
			if len(tokens) == 4 {
				tokens = tokens[:3]
			}
			t, err := parseVec2(tokens)
			if err != nil {
				return parseErr(file, cur.Line(), directive, err)
			}
			geom.TexCoords = append(geom.TexCoords, t)
		case "vn":
			n, err := parseVec3(tokens)
			if err != nil {
				return parseErr(file, cur.Line(), directive, err)
			}
			geom.Normals = append(geom.Normals, n)
		}
	}
	return nil
}

// fillFaces opens a submesh at every usemtl and appends face triangles to
// the current one. base is the scene index of the file's first mesh slot.
func (a *Accumulator) fillFaces(file string, data []byte, base int, geom *Geometry) error {
	cur := lineio.NewCursor(data)
	var prev []byte
	for {
		line, ok := cur.Next()
		if !ok {
			break
		}

		switch firstToken(line) {
		case "usemtl":
			tokens := strings.Fields(string(line))
			if err := tokenCount(tokens, 2); err != nil {
				return parseErr(file, cur.Line(), "usemtl", err)
			}

			slot := base + len(geom.Submeshes)
			next, _ := cur.Peek()
			name, err := a.meshName(prev, next, slot)
			if err != nil {
				return parseErr(file, cur.Line(), "usemtl", err)
			}
			material, err := a.Names.Fit(tokens[1])
			if err != nil {
				return parseErr(file, cur.Line(), "usemtl", err)
			}

			a.Scene.Meshes[slot].Name = name
			a.Scene.Meshes[slot].Source = file
			a.Scene.Models[slot] = Model{MeshName: name, MaterialName: material}
			geom.Submeshes = append(geom.Submeshes, Submesh{MeshIndex: slot, Material: material})

		case "f":
			tokens := strings.Fields(string(line))
			if len(geom.Submeshes) == 0 {
				return parseErr(file, cur.Line(), "f", ErrNoSubmesh)
			}
			tris, err := ParseFace(tokens, geom.Textured)
			if err != nil {
				return parseErr(file, cur.Line(), "f", err)
			}
			sub := &geom.Submeshes[len(geom.Submeshes)-1]
			sub.Triangles = append(sub.Triangles, tris...)
		}

		prev = line
	}
	return nil
}

// meshName names a submesh after a "g" line directly before or after its
// usemtl, falling back to "mesh<slot>".
func (a *Accumulator) meshName(prev, next []byte, slot int) (string, error) {
	for _, hint := range [][]byte{prev, next} {
		if firstToken(hint) != "g" {
			continue
		}
		tokens := strings.Fields(string(hint))
		if len(tokens) < 2 {
			return "", fmt.Errorf("%w: group without a name", ErrMalformedDirective)
		}
		return a.Names.Fit(tokens[1])
	}
	return "mesh" + strconv.Itoa(slot), nil
}
