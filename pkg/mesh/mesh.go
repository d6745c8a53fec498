// Package mesh loads triangle meshes from disk and summarizes their
// geometry for the quantization pipeline.
package mesh

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshquant/pkg/formats"
)

// Mesh errors.
var (
	ErrUnsupportedExtension = errors.New("unsupported mesh extension")
	ErrNoVertices           = errors.New("mesh contains no vertices")
)

// Mesh is a loaded triangle mesh. Vertices carry full float64 precision;
// faces are 0-based index triples and may be empty for point clouds.
type Mesh struct {
	// Name is the base file name without extension, used to derive
	// artifact names.
	Name     string
	Vertices [][3]float64
	Faces    [][3]int
}

// Load reads a mesh from disk, dispatching on the file extension.
// Supported extensions are .obj and .ply.
func Load(path string) (*Mesh, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		obj, err := formats.ParseOBJFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		return &Mesh{Name: name, Vertices: obj.Vertices, Faces: obj.Faces}, nil
	case ".ply":
		ply, err := formats.ParsePLYFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		if len(ply.Vertices) == 0 {
			return nil, fmt.Errorf("loading %s: %w", path, ErrNoVertices)
		}
		return &Mesh{Name: name, Vertices: ply.Vertices, Faces: ply.Faces}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, filepath.Ext(path))
	}
}

// IsSupported reports whether the extension of path names a loadable
// mesh format.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj", ".ply":
		return true
	}
	return false
}

// ListFiles returns the supported mesh files directly inside dir, sorted
// by file name.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning mesh directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !IsSupported(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// Bounds returns the per-axis minimum and maximum over all vertices.
func (m *Mesh) Bounds() (min, max [3]float64) {
	if len(m.Vertices) == 0 {
		return min, max
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, vert := range m.Vertices[1:] {
		for a := 0; a < 3; a++ {
			if vert[a] < min[a] {
				min[a] = vert[a]
			}
			if vert[a] > max[a] {
				max[a] = vert[a]
			}
		}
	}
	return min, max
}
