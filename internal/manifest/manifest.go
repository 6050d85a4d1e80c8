// Package manifest writes a YAML summary of a converted scene.
package manifest

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshbake/pkg/wavefront"
)

// Manifest lists everything a scene holds, without the vertex data.
type Manifest struct {
	Encoding  string     `yaml:"encoding,omitempty"` // Charset the inputs were decoded from
	Files     []string   `yaml:"files"`
	Libraries []string   `yaml:"libraries,omitempty"`
	Meshes    []Mesh     `yaml:"meshes"`
	Materials []Material `yaml:"materials"`
	Models    []Model    `yaml:"models"`
}

// Mesh summarizes one mesh.
type Mesh struct {
	Name       string      `yaml:"name"`
	Source     string      `yaml:"source"`
	Vertices   int         `yaml:"vertices"`
	Indices    int         `yaml:"indices"`
	IndexBytes int         `yaml:"index_bytes"`
	BoundsMin  *[3]float32 `yaml:"bounds_min,omitempty"`
	BoundsMax  *[3]float32 `yaml:"bounds_max,omitempty"`
}

// Material mirrors wavefront.Material.
type Material struct {
	Name          string      `yaml:"name"`
	Albedo        *Texture    `yaml:"albedo,omitempty"`
	Normal        *Texture    `yaml:"normal,omitempty"`
	SpecularColor *[3]float32 `yaml:"specular_color,omitempty"`
	SpecularPower float32     `yaml:"specular_power"`
	SpecularCoeff float32     `yaml:"specular_coefficient"`
}

// Texture is a texture reference, with size when it was probed.
type Texture struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Baked  string `yaml:"baked,omitempty"`
}

// Model pairs a mesh with its material.
type Model struct {
	Mesh     string `yaml:"mesh"`
	Material string `yaml:"material"`
}

// Build summarizes scene.
func Build(scene *wavefront.Scene) *Manifest {
	m := &Manifest{
		Files:     scene.Files,
		Libraries: scene.Libraries,
		Meshes:    make([]Mesh, 0, len(scene.Meshes)),
		Materials: make([]Material, 0, len(scene.Materials)),
		Models:    make([]Model, 0, len(scene.Models)),
	}

	for i := range scene.Meshes {
		mesh := &scene.Meshes[i]
		entry := Mesh{
			Name:       mesh.Name,
			Source:     mesh.Source,
			Vertices:   len(mesh.Vertices),
			Indices:    len(mesh.Indices),
			IndexBytes: mesh.IndexWidth(),
		}
		if !mesh.Bounds.Empty() && len(mesh.Vertices) > 0 {
			lo, hi := mesh.Bounds.Min.Array(), mesh.Bounds.Max.Array()
			entry.BoundsMin, entry.BoundsMax = &lo, &hi
		}
		m.Meshes = append(m.Meshes, entry)
	}

	for _, mat := range scene.Materials {
		entry := Material{
			Name:          mat.Name,
			Albedo:        texture(mat.AlbedoTex, mat.Albedo),
			Normal:        texture(mat.NormalTex, mat.Normal),
			SpecularPower: mat.SpecularPower,
			SpecularCoeff: mat.SpecularCoeff,
		}
		if mat.HasSpecularColor {
			c := mat.SpecularColor.Array()
			entry.SpecularColor = &c
		}
		m.Materials = append(m.Materials, entry)
	}

	for _, model := range scene.Models {
		m.Models = append(m.Models, Model{Mesh: model.MeshName, Material: model.MaterialName})
	}

	return m
}

func texture(path string, info *wavefront.TextureInfo) *Texture {
	if path == "" {
		return nil
	}
	t := &Texture{Path: path}
	if info != nil && info.Found {
		t.Format, t.Width, t.Height = info.Format, info.Width, info.Height
		t.Baked = info.Baked
	}
	return t
}

// Write saves the manifest as YAML, creating the parent directory if needed.
func Write(path string, m *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Read loads a manifest written by Write.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
