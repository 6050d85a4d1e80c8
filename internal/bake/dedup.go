// Package bake turns parsed OBJ geometry into GPU-ready meshes:
// deduplicated vertex and index buffers with tangent space.
package bake

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshbake/pkg/wavefront"
)

// ErrIndexOutOfRange is returned when a face corner references an attribute
// that does not exist.
var ErrIndexOutOfRange = errors.New("attribute index out of range")

// Deduplicate maps every distinct corner key of tris to one vertex slot.
//
// Slots are assigned in first-occurrence order and the index buffer holds
// one entry per corner, so triangle order and winding are preserved.
// Keys are only merged within one call; each submesh is its own scope.
func Deduplicate(geom *wavefront.Geometry, tris []wavefront.Triangle) ([]wavefront.RawVertex, []uint32, error) {
	slots := make(map[wavefront.Key]uint32, len(tris)*3)
	vertices := make([]wavefront.RawVertex, 0, len(tris)*3)
	indices := make([]uint32, 0, len(tris)*3)

	for _, tri := range tris {
		for _, key := range tri {
			if slot, ok := slots[key]; ok {
				indices = append(indices, slot)
				continue
			}

			v, err := resolve(geom, key)
			if err != nil {
				return nil, nil, err
			}
			slot := uint32(len(vertices))
			slots[key] = slot
			vertices = append(vertices, v)
			indices = append(indices, slot)
		}
	}

	return vertices, indices, nil
}

// resolve looks up the attributes of a corner and flips V.
func resolve(geom *wavefront.Geometry, key wavefront.Key) (wavefront.RawVertex, error) {
	if key.P < 0 || key.P >= len(geom.Positions) {
		return wavefront.RawVertex{}, fmt.Errorf("%w: position %d of %d", ErrIndexOutOfRange, key.P+1, len(geom.Positions))
	}
	if key.T < 0 || key.T >= len(geom.TexCoords) {
		return wavefront.RawVertex{}, fmt.Errorf("%w: texcoord %d of %d", ErrIndexOutOfRange, key.T, len(geom.TexCoords)-1)
	}
	if key.N < 0 || key.N >= len(geom.Normals) {
		return wavefront.RawVertex{}, fmt.Errorf("%w: normal %d of %d", ErrIndexOutOfRange, key.N+1, len(geom.Normals))
	}

	return wavefront.RawVertex{
		Position: geom.Positions[key.P],
		Normal:   geom.Normals[key.N],
		TexCoord: geom.TexCoords[key.T].FlipV(),
	}, nil
}
