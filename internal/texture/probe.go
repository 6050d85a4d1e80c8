// Package texture inspects and converts the textures referenced by
// materials.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/Faultbox/meshbake/pkg/wavefront"
)

// ErrUnsupportedFormat is returned for texture extensions with no decoder.
var ErrUnsupportedFormat = errors.New("unsupported texture format")

type codec struct {
	name         string
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

// Decoders are picked by extension rather than sniffed: TGA has no magic
// number and would otherwise claim every file.
var codecs = map[string]codec{
	".png":  {"png", png.Decode, png.DecodeConfig},
	".jpg":  {"jpeg", jpeg.Decode, jpeg.DecodeConfig},
	".jpeg": {"jpeg", jpeg.Decode, jpeg.DecodeConfig},
	".tga":  {"tga", tga.Decode, tga.DecodeConfig},
	".bmp":  {"bmp", bmp.Decode, bmp.DecodeConfig},
	".tif":  {"tiff", tiff.Decode, tiff.DecodeConfig},
	".tiff": {"tiff", tiff.Decode, tiff.DecodeConfig},
	".webp": {"webp", webp.Decode, webp.DecodeConfig},
}

func codecFor(path string) (codec, error) {
	c, ok := codecs[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return codec{}, fmt.Errorf("texture: %s: %w", path, ErrUnsupportedFormat)
	}
	return c, nil
}

// Probe reads just enough of a texture to report its format and size.
func Probe(path string) (*wavefront.TextureInfo, error) {
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}

	cfg, err := c.decodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}

	return &wavefront.TextureInfo{
		Path:   path,
		Format: c.name,
		Width:  cfg.Width,
		Height: cfg.Height,
		Found:  true,
	}, nil
}

// Load decodes a whole texture.
func Load(path string) (image.Image, error) {
	c, err := codecFor(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	img, err := c.decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return img, nil
}

// Resolve returns the on-disk path of a texture referenced from an MTL
// library. Relative paths are relative to the library's directory.
func Resolve(library, texture string) string {
	if filepath.IsAbs(texture) || library == "" {
		return texture
	}
	return filepath.Join(filepath.Dir(library), texture)
}

// ProbeScene annotates every material of scene with the size and format of
// its albedo and normal textures. Missing or undecodable textures are logged
// and recorded with Found unset; they never fail the run.
//
// Texture paths are tried as given, then against the directory of each
// material library of the scene; first match wins.
func ProbeScene(scene *wavefront.Scene, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	for i := range scene.Materials {
		m := &scene.Materials[i]
		if m.AlbedoTex != "" {
			m.Albedo = probeAny(scene.Libraries, m.AlbedoTex, m.Name, log)
		}
		if m.NormalTex != "" {
			m.Normal = probeAny(scene.Libraries, m.NormalTex, m.Name, log)
		}
	}
}

func probeAny(libraries []string, texture, material string, log *zap.Logger) *wavefront.TextureInfo {
	candidates := []string{texture}
	for _, lib := range libraries {
		candidates = append(candidates, Resolve(lib, texture))
	}

	var lastErr error
	for _, path := range candidates {
		info, err := Probe(path)
		if err == nil {
			log.Debug("texture probed",
				zap.String("material", material),
				zap.String("path", path),
				zap.String("format", info.Format),
				zap.Int("width", info.Width),
				zap.Int("height", info.Height))
			return info
		}
		lastErr = err
		if !errors.Is(err, fs.ErrNotExist) {
			break
		}
	}

	log.Warn("texture not usable",
		zap.String("material", material),
		zap.String("texture", texture),
		zap.Error(lastErr))
	return &wavefront.TextureInfo{Path: texture}
}
