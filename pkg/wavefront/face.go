package wavefront

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFace converts the tokens of an "f" line into one triangle (three
// corners) or two triangles sharing corners 0 and 2 (four corners).
//
// Textured faces use p/t/n corners; untextured faces use p//n and get the
// texcoord sentinel 0.
func ParseFace(tokens []string, textured bool) ([]Triangle, error) {
	corners := tokens[1:]
	if len(corners) != 3 && len(corners) != 4 {
		return nil, fmt.Errorf("%w: expected 3 or 4 corners, got %d", ErrMalformedFace, len(corners))
	}

	var keys [4]Key
	for i, corner := range corners {
		k, err := parseCorner(corner, textured)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}

	tris := []Triangle{{keys[0], keys[1], keys[2]}}
	if len(corners) == 4 {
		tris = append(tris, Triangle{keys[0], keys[2], keys[3]})
	}
	return tris, nil
}

func parseCorner(corner string, textured bool) (Key, error) {
	parts := strings.Split(corner, "/")
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("%w: corner %q is not p/t/n or p//n", ErrMalformedFace, corner)
	}

	p, err := strconv.Atoi(parts[0])
	if err != nil {
		return Key{}, fmt.Errorf("%w: bad position index in %q", ErrMalformedFace, corner)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return Key{}, fmt.Errorf("%w: bad normal index in %q", ErrMalformedFace, corner)
	}

	t := 0
	if textured {
		if t, err = strconv.Atoi(parts[1]); err != nil {
			return Key{}, fmt.Errorf("%w: bad texcoord index in %q", ErrMalformedFace, corner)
		}
	} else if parts[1] != "" {
		return Key{}, fmt.Errorf("%w: corner %q has a texcoord but the file has no vt lines", ErrMalformedFace, corner)
	}

	return Key{P: p - 1, T: t, N: n - 1}, nil
}
