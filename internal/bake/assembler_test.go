package bake

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/Faultbox/meshbake/pkg/textenc"
	"github.com/Faultbox/meshbake/pkg/wavefront"
)

const triangleOBJ = `mtllib tri.mtl
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
vn 0 0 1
vn 0 0 1
g tri
usemtl red
f 1/1/1 2/2/2 3/3/3
`

const triangleMTL = `newmtl red
map_Kd red.png
`

const quadOBJ = `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl blue
f 1/1/1 2/2/1 3/3/1 4/4/1
`

// writeFiles writes name -> content pairs into dir.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

func TestConvertTriangle(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"tri.obj": triangleOBJ, "tri.mtl": triangleMTL})

	a := NewAssembler(wavefront.NewScene(), DefaultOptions())
	if err := a.Convert(filepath.Join(dir, "tri.obj")); err != nil {
		t.Fatalf("Convert() error: %v", err)
	}

	scene := a.Scene()
	if len(scene.Meshes) != 1 || len(scene.Materials) != 1 || len(scene.Models) != 1 {
		t.Fatalf("got %d meshes, %d materials, %d models; want 1 each",
			len(scene.Meshes), len(scene.Materials), len(scene.Models))
	}

	mesh := scene.Meshes[0]
	if mesh.Name != "tri" {
		t.Errorf("mesh name = %q, want tri", mesh.Name)
	}
	if len(mesh.Vertices) != 3 || len(mesh.Indices) != 3 {
		t.Fatalf("got %d vertices, %d indices; want 3, 3", len(mesh.Vertices), len(mesh.Indices))
	}
	if !slices.Equal(mesh.Indices, []uint32{0, 1, 2}) {
		t.Errorf("indices = %v, want [0 1 2]", mesh.Indices)
	}

	// Source v values 0, 0, 1 are flipped to 1, 1, 0.
	wantV := []float32{1, 1, 0}
	for i, v := range mesh.Vertices {
		if v.TexCoord.Y != wantV[i] {
			t.Errorf("vertex %d v = %v, want %v", i, v.TexCoord.Y, wantV[i])
		}
	}
	if mesh.Bounds.Min.X != 0 || mesh.Bounds.Max.Y != 1 {
		t.Errorf("bounds = %+v", mesh.Bounds)
	}
	if scene.Models[0] != (wavefront.Model{MeshName: "tri", MaterialName: "red"}) {
		t.Errorf("model = %+v", scene.Models[0])
	}
	if len(scene.Files) != 1 || len(scene.Libraries) != 1 {
		t.Errorf("files = %v, libraries = %v", scene.Files, scene.Libraries)
	}
}

func TestConvertQuad(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"quad.obj": quadOBJ})

	a := NewAssembler(wavefront.NewScene(), DefaultOptions())
	if err := a.Convert(filepath.Join(dir, "quad.obj")); err != nil {
		t.Fatalf("Convert() error: %v", err)
	}

	mesh := a.Scene().Meshes[0]
	if mesh.Name != "mesh0" {
		t.Errorf("mesh name = %q, want mesh0", mesh.Name)
	}
	if !slices.Equal(mesh.Indices, []uint32{0, 1, 2, 0, 2, 3}) {
		t.Errorf("indices = %v, want [0 1 2 0 2 3]", mesh.Indices)
	}
	if len(mesh.Vertices) != 4 {
		t.Errorf("got %d vertices, want 4", len(mesh.Vertices))
	}
	if mesh.IndexWidth() != 2 {
		t.Errorf("small mesh should use 16-bit indices")
	}
}

func TestConvertIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"tri.obj": triangleOBJ, "tri.mtl": triangleMTL, "quad.obj": quadOBJ})

	run := func() *wavefront.Scene {
		a := NewAssembler(wavefront.NewScene(), DefaultOptions())
		for _, name := range []string{"tri.obj", "quad.obj"} {
			if err := a.Convert(filepath.Join(dir, name)); err != nil {
				t.Fatalf("Convert(%s) error: %v", name, err)
			}
		}
		return a.Scene()
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first.Meshes, second.Meshes) {
		t.Error("two independent runs produced different meshes")
	}
}

func TestConvertAccumulatesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"tri.obj": triangleOBJ, "tri.mtl": triangleMTL, "quad.obj": quadOBJ})

	a := NewAssembler(wavefront.NewScene(), DefaultOptions())
	if err := a.Convert(filepath.Join(dir, "tri.obj")); err != nil {
		t.Fatalf("Convert(tri) error: %v", err)
	}

	scene := a.Scene()
	meshes := slices.Clone(scene.Meshes)
	materials := slices.Clone(scene.Materials)
	models := slices.Clone(scene.Models)

	if err := a.Convert(filepath.Join(dir, "quad.obj")); err != nil {
		t.Fatalf("Convert(quad) error: %v", err)
	}

	if len(scene.Meshes) != 2 || len(scene.Materials) != 1 || len(scene.Models) != 2 {
		t.Fatalf("counts not additive: %d meshes, %d materials, %d models",
			len(scene.Meshes), len(scene.Materials), len(scene.Models))
	}
	if !reflect.DeepEqual(scene.Meshes[:1], meshes) {
		t.Error("first file's mesh changed")
	}
	if !reflect.DeepEqual(scene.Materials[:1], materials) || !reflect.DeepEqual(scene.Models[:1], models) {
		t.Error("first file's material or model changed")
	}
	// The fallback ordinal counts meshes across the whole scene.
	if scene.Meshes[1].Name != "mesh1" {
		t.Errorf("second mesh name = %q, want mesh1", scene.Meshes[1].Name)
	}
}

func TestConvertRollsBackOnError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"tri.obj": triangleOBJ,
		"tri.mtl": triangleMTL,
		"bad.mtl": "newmtl extra\n",
		// Position 9 does not exist.
		"bad.obj": "mtllib bad.mtl\nv 0 0 0\nvn 0 0 1\nusemtl extra\nf 1//1 9//1 1//1\n",
	})

	a := NewAssembler(wavefront.NewScene(), DefaultOptions())
	if err := a.Convert(filepath.Join(dir, "tri.obj")); err != nil {
		t.Fatalf("Convert(tri) error: %v", err)
	}
	scene := a.Scene()
	before := *scene
	before.Meshes = slices.Clone(scene.Meshes)

	err := a.Convert(filepath.Join(dir, "bad.obj"))
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}

	if len(scene.Meshes) != 1 || len(scene.Materials) != 1 || len(scene.Models) != 1 {
		t.Errorf("scene not rolled back: %d meshes, %d materials, %d models",
			len(scene.Meshes), len(scene.Materials), len(scene.Models))
	}
	if len(scene.Files) != 1 || len(scene.Libraries) != 1 {
		t.Errorf("files/libraries not rolled back: %v %v", scene.Files, scene.Libraries)
	}
	if !reflect.DeepEqual(scene.Meshes, before.Meshes) {
		t.Error("first file's mesh changed after failed conversion")
	}
}

func TestConvertMissingFile(t *testing.T) {
	a := NewAssembler(wavefront.NewScene(), DefaultOptions())
	err := a.Convert(filepath.Join(t.TempDir(), "nope.obj"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestConvertMalformedFace(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"bad.obj": "v 0 0 0\nvn 0 0 1\nusemtl a\nf 1//1 1//1\n"})

	a := NewAssembler(wavefront.NewScene(), DefaultOptions())
	err := a.Convert(filepath.Join(dir, "bad.obj"))
	if !errors.Is(err, wavefront.ErrMalformedFace) {
		t.Fatalf("expected ErrMalformedFace, got %v", err)
	}
	if len(a.Scene().Meshes) != 0 || len(a.Scene().Models) != 0 {
		t.Error("failed conversion left mesh slots behind")
	}
}

func TestConvertLogsWarnings(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		// No mtllib, so "ghost" is undefined; all UVs equal, so tangents are degenerate.
		"warn.obj": "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvn 0 0 1\nusemtl ghost\nf 1/1/1 2/1/1 3/1/1\n",
	})

	core, logs := observer.New(zapcore.WarnLevel)
	opts := DefaultOptions()
	opts.Logger = zap.New(core)

	a := NewAssembler(wavefront.NewScene(), opts)
	if err := a.Convert(filepath.Join(dir, "warn.obj")); err != nil {
		t.Fatalf("Convert() error: %v", err)
	}

	if n := logs.FilterMessage("model references undefined material").Len(); n != 1 {
		t.Errorf("got %d undefined material warnings, want 1", n)
	}
	if n := logs.FilterMessage("degenerate texture coordinates, tangents left unset").Len(); n != 1 {
		t.Errorf("got %d degenerate UV warnings, want 1", n)
	}
	if n := logs.FilterMessage("non-finite tangents").Len(); n != 0 {
		t.Errorf("skipped triangles should leave finite tangents, got %d warnings", n)
	}
}

func TestConvertWarnsNonFiniteTangents(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"flat.obj": "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvn 0 0 1\nusemtl m\nf 1/1/1 2/1/1 3/1/1\n",
	})

	core, logs := observer.New(zapcore.WarnLevel)
	opts := DefaultOptions()
	opts.DegenerateUV = KeepDegenerateUV
	opts.Logger = zap.New(core)

	a := NewAssembler(wavefront.NewScene(), opts)
	if err := a.Convert(filepath.Join(dir, "flat.obj")); err != nil {
		t.Fatalf("Convert() error: %v", err)
	}

	entries := logs.FilterMessage("non-finite tangents").All()
	if len(entries) != 1 {
		t.Fatalf("got %d non-finite tangent warnings, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["vertices"] != int64(3) || fields["policy"] != "keep" {
		t.Errorf("warning fields = %v, want 3 vertices under keep", fields)
	}
}

func TestConvertDecodesLegacyCharset(t *testing.T) {
	obj := "v 0 0 0\nvn 0 0 1\ng 바닥\nusemtl 돌\nf 1//1 1//1 1//1\n"
	encoded, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(obj))
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "kr.obj")
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	dec, err := textenc.Lookup("euc-kr")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	core, logs := observer.New(zapcore.InfoLevel)
	opts := DefaultOptions()
	opts.Decoder = dec
	opts.Logger = zap.New(core)

	a := NewAssembler(wavefront.NewScene(), opts)
	if err := a.Convert(path); err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if got := a.Scene().Models[0]; got.MeshName != "바닥" || got.MaterialName != "돌" {
		t.Errorf("model = %+v, want 바닥/돌", got)
	}
	converted := logs.FilterMessage("converted").All()
	if len(converted) != 1 || converted[0].ContextMap()["encoding"] != "euc-kr" {
		t.Errorf("converted entries = %v, want one with encoding euc-kr", converted)
	}
}

func TestConvertStrictNames(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"long.obj": quadOBJ})

	opts := DefaultOptions()
	opts.Names = wavefront.NamePolicy{Limit: 3, Strict: true}

	a := NewAssembler(wavefront.NewScene(), opts)
	err := a.Convert(filepath.Join(dir, "long.obj"))
	if !errors.Is(err, wavefront.ErrNameTooLong) {
		t.Errorf("expected ErrNameTooLong, got %v", err)
	}
}
