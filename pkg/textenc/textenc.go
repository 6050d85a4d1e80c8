// Package textenc decodes legacy-encoded asset files to UTF-8.
//
// Exporters from older DCC tools often write OBJ/MTL files with group,
// material and texture names in the system code page (EUC-KR, Shift_JIS,
// Windows-1252). Decoding the whole buffer up front lets the parsers work
// on UTF-8 only.
package textenc

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned by Lookup for unsupported charset names.
var ErrUnknownEncoding = errors.New("unknown text encoding")

// Decoder converts file contents from a fixed charset to UTF-8.
// A nil *Decoder passes data through unchanged.
type Decoder struct {
	name string
	enc  encoding.Encoding
}

// Lookup returns a decoder for the named charset. An empty name or "utf-8"
// returns nil, which means no conversion.
func Lookup(name string) (*Decoder, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "utf-8", "utf8":
		return nil, nil
	case "euc-kr", "euckr", "cp949":
		// RO-era tools write CP949; EUC-KR is the decodable subset.
		return &Decoder{name: "euc-kr", enc: korean.EUCKR}, nil
	}

	enc, err := htmlindex.Get(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	canonical, _ := htmlindex.Name(enc)
	return &Decoder{name: canonical, enc: enc}, nil
}

// Name returns the canonical charset name, or "utf-8" for a nil decoder.
func (d *Decoder) Name() string {
	if d == nil {
		return "utf-8"
	}
	return d.name
}

// Bytes decodes data to UTF-8.
func (d *Decoder) Bytes(data []byte) ([]byte, error) {
	if d == nil {
		return data, nil
	}
	out, _, err := transform.Bytes(d.enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", d.name, err)
	}
	return out, nil
}
