package bake

import (
	"fmt"

	"github.com/Faultbox/meshbake/pkg/wavefront"
)

// DegenerateUVPolicy decides what happens to triangles whose texture
// coordinates have zero area, where the tangent basis is undefined.
type DegenerateUVPolicy int

const (
	// SkipDegenerateUV leaves the triangle's corners untouched.
	SkipDegenerateUV DegenerateUVPolicy = iota
	// KeepDegenerateUV divides anyway, writing Inf/NaN tangents.
	KeepDegenerateUV
)

// String returns the config spelling of the policy.
func (p DegenerateUVPolicy) String() string {
	switch p {
	case SkipDegenerateUV:
		return "skip"
	case KeepDegenerateUV:
		return "keep"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ParseDegenerateUVPolicy parses "skip" or "keep".
func ParseDegenerateUVPolicy(s string) (DegenerateUVPolicy, error) {
	switch s {
	case "", "skip":
		return SkipDegenerateUV, nil
	case "keep":
		return KeepDegenerateUV, nil
	}
	return 0, fmt.Errorf("unknown degenerate UV policy %q", s)
}

// GenerateTangents computes a tangent and bitangent per triangle and writes
// them to all three corners. Corners shared between triangles keep the value
// of the last triangle that touches them; there is no averaging.
//
// It returns the final vertices and the number of triangles skipped under
// SkipDegenerateUV.
func GenerateTangents(raw []wavefront.RawVertex, indices []uint32, policy DegenerateUVPolicy) ([]wavefront.Vertex, int) {
	out := make([]wavefront.Vertex, len(raw))
	for i, v := range raw {
		out[i] = wavefront.Vertex{
			Position: v.Position,
			Normal:   v.Normal,
			TexCoord: v.TexCoord,
		}
	}

	skipped := 0
	for i := 0; i+2 < len(indices); i += 3 {
		v0 := &out[indices[i]]
		v1 := &out[indices[i+1]]
		v2 := &out[indices[i+2]]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		duv1 := v1.TexCoord.Sub(v0.TexCoord)
		duv2 := v2.TexCoord.Sub(v0.TexCoord)

		det := duv1.Cross(duv2)
		if det == 0 && policy == SkipDegenerateUV {
			skipped++
			continue
		}
		r := 1 / det

		tangent := e1.Scale(duv2.Y).Sub(e2.Scale(duv1.Y)).Scale(r)
		bitangent := e2.Scale(duv1.X).Sub(e1.Scale(duv2.X)).Scale(r)

		v0.Tangent, v1.Tangent, v2.Tangent = tangent, tangent, tangent
		v0.Bitangent, v1.Bitangent, v2.Bitangent = bitangent, bitangent, bitangent
	}

	return out, skipped
}
