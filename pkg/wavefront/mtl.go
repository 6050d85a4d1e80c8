package wavefront

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Faultbox/meshbake/pkg/lineio"
	"github.com/Faultbox/meshbake/pkg/math"
)

// ParseMaterials appends the materials of an MTL buffer to scene.
//
// The buffer is scanned twice: once to count newmtl blocks so the material
// slice grows exactly once, then again to fill the new records. It returns
// the number of materials added. On error the scene may hold partially
// filled records; callers roll back with Scene.Mark/Rollback.
func ParseMaterials(scene *Scene, file string, data []byte, names NamePolicy) (int, error) {
	cur := lineio.NewCursor(data)

	count := 0
	for {
		line, ok := cur.Next()
		if !ok {
			break
		}
		if firstToken(line) == "newmtl" {
			count++
		}
	}

	base := len(scene.Materials)
	scene.Materials = append(scene.Materials, make([]Material, count)...)

	// Index of the material being filled; base-1 until the first newmtl.
	current := base - 1
	cur.Reset()
	for {
		line, ok := cur.Next()
		if !ok {
			break
		}
		directive := firstToken(line)
		if directive != "newmtl" && !isMaterialDirective(directive) {
			continue
		}
		tokens := strings.Fields(string(line))

		if directive == "newmtl" {
			if err := tokenCount(tokens, 2); err != nil {
				return 0, parseErr(file, cur.Line(), directive, err)
			}
			name, err := names.Fit(tokens[1])
			if err != nil {
				return 0, parseErr(file, cur.Line(), directive, err)
			}
			current++
			scene.Materials[current] = Material{
				Name:          name,
				SpecularPower: DefaultSpecularPower,
			}
			continue
		}

		if current < base {
			return 0, parseErr(file, cur.Line(), directive, ErrNoMaterial)
		}
		if err := applyMaterialDirective(&scene.Materials[current], tokens, names); err != nil {
			return 0, parseErr(file, cur.Line(), directive, err)
		}
	}

	return count, nil
}

func isMaterialDirective(directive string) bool {
	switch directive {
	case "map_Kd", "map_bump", "bump", "Ks", "Ns":
		return true
	}
	return false
}

func applyMaterialDirective(m *Material, tokens []string, names NamePolicy) error {
	switch tokens[0] {
	case "map_Kd":
		if err := tokenCount(tokens, 2); err != nil {
			return err
		}
		path, err := names.Fit(tokens[1])
		if err != nil {
			return err
		}
		m.AlbedoTex = path
	case "map_bump", "bump":
		if err := tokenCount(tokens, 2); err != nil {
			return err
		}
		if m.NormalTex != "" {
			return nil
		}
		path, err := names.Fit(tokens[1])
		if err != nil {
			return err
		}
		m.NormalTex = path
	case "Ks":
		v, err := parseVec3(tokens)
		if err != nil {
			return err
		}
		m.SpecularColor = v
		m.HasSpecularColor = true
	case "Ns":
		if err := tokenCount(tokens, 2); err != nil {
			return err
		}
		f, err := parseFloat(tokens[1])
		if err != nil {
			return err
		}
		m.SpecularCoeff = f
	}
	return nil
}

// firstToken returns the first token of line. It splits on unicode.IsSpace,
// the same rule strings.Fields uses, so counting passes and fill passes
// always agree on a line's directive.
func firstToken(line []byte) string {
	start := 0
	for start < len(line) {
		r, size := utf8.DecodeRune(line[start:])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	end := start
	for end < len(line) {
		r, size := utf8.DecodeRune(line[end:])
		if unicode.IsSpace(r) {
			break
		}
		end += size
	}
	return string(line[start:end])
}

func parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad number %q", ErrMalformedDirective, s)
	}
	return float32(f), nil
}

func parseVec3(tokens []string) (math.Vec3, error) {
	if err := tokenCount(tokens, 4); err != nil {
		return math.Vec3{}, err
	}
	var xyz [3]float32
	for i := range xyz {
		f, err := parseFloat(tokens[i+1])
		if err != nil {
			return math.Vec3{}, err
		}
		xyz[i] = f
	}
	return math.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

func parseVec2(tokens []string) (math.Vec2, error) {
	if err := tokenCount(tokens, 3); err != nil {
		return math.Vec2{}, err
	}
	u, err := parseFloat(tokens[1])
	if err != nil {
		return math.Vec2{}, err
	}
	v, err := parseFloat(tokens[2])
	if err != nil {
		return math.Vec2{}, err
	}
	return math.Vec2{X: u, Y: v}, nil
}
