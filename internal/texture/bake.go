package texture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/meshbake/pkg/wavefront"
)

// Bake decodes a texture and writes it to dstDir as lossless WebP, keeping
// the base name. It returns the path written.
func Bake(src, dstDir string) (string, error) {
	dst := filepath.Join(dstDir, baseName(src)+".webp")
	if err := BakeTo(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// BakeTo decodes the texture at src and writes it to dst as lossless WebP.
func BakeTo(src, dst string) error {
	img, err := Load(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := nativewebp.Encode(f, toNRGBA(img), nil); err != nil {
		f.Close()
		return fmt.Errorf("texture: encode %s: %w", dst, err)
	}
	return f.Close()
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// toNRGBA copies img into a zero-origin NRGBA image unless it already is one.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// BakeScene converts every probed texture of scene into dstDir and records
// the output path in TextureInfo.Baked. Textures are baked once even when
// several materials share them. Different sources with the same base name
// get a numeric suffix ("diffuse.webp", "diffuse_2.webp") so no output is
// overwritten. Call ProbeScene first; textures that were not found are
// skipped.
func BakeScene(scene *wavefront.Scene, dstDir string, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}

	baked := make(map[string]string) // source path -> output path
	taken := make(map[string]bool)   // lower-cased output names
	for i := range scene.Materials {
		m := &scene.Materials[i]
		for _, info := range []*wavefront.TextureInfo{m.Albedo, m.Normal} {
			if info == nil || !info.Found {
				continue
			}
			if dst, ok := baked[info.Path]; ok {
				info.Baked = dst
				continue
			}

			name := uniqueName(baseName(info.Path), taken)
			dst := filepath.Join(dstDir, name)
			if err := BakeTo(info.Path, dst); err != nil {
				return len(baked), err
			}
			baked[info.Path] = dst
			info.Baked = dst
			log.Info("texture baked", zap.String("src", info.Path), zap.String("dst", dst))
		}
	}
	return len(baked), nil
}

// uniqueName returns base+".webp", or base_N+".webp" for the smallest N >= 2
// not yet claimed, and claims it. Names compare case-insensitively.
func uniqueName(base string, taken map[string]bool) string {
	name := base + ".webp"
	for n := 2; ; n++ {
		key := strings.ToLower(name)
		if !taken[key] {
			taken[key] = true
			return name
		}
		name = base + "_" + strconv.Itoa(n) + ".webp"
	}
}
