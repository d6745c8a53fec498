package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrMalformedOBJVertex = errors.New("malformed OBJ vertex")
	ErrMalformedOBJFace   = errors.New("malformed OBJ face")
	ErrOBJIndexOutOfRange = errors.New("OBJ face index out of range")
	ErrEmptyOBJ           = errors.New("OBJ contains no vertices")
)

// OBJ represents the geometry of a parsed Wavefront OBJ file. Texture
// coordinates, normals, materials and groups are skipped; the pipeline
// only consumes vertex positions and triangulated connectivity.
type OBJ struct {
	// Vertices holds positions in file order.
	Vertices [][3]float64
	// Faces holds triangles as 0-based vertex indices. Polygons with
	// more than three corners are fan-triangulated during parsing.
	Faces [][3]int
}

// ParseOBJ parses a Wavefront OBJ file from raw bytes.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			vert, err := parseOBJVertex(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			obj.Vertices = append(obj.Vertices, vert)
		case "f":
			if err := obj.parseFace(fields); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		default:
			// vt, vn, o, g, s, usemtl, mtllib and anything else.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning OBJ: %w", err)
	}

	if len(obj.Vertices) == 0 {
		return nil, ErrEmptyOBJ
	}
	return obj, nil
}

// ParseOBJFile parses a Wavefront OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// parseOBJVertex parses a "v x y z [w]" line.
func parseOBJVertex(fields []string) ([3]float64, error) {
	var vert [3]float64
	if len(fields) < 4 {
		return vert, fmt.Errorf("%w: expected 3 coordinates, got %d", ErrMalformedOBJVertex, len(fields)-1)
	}
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return vert, fmt.Errorf("%w: %q", ErrMalformedOBJVertex, fields[i+1])
		}
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return vert, fmt.Errorf("%w: %q", ErrNonFiniteCoord, fields[i+1])
		}
		vert[i] = val
	}
	return vert, nil
}

// parseFace parses an "f ..." line and appends fan triangles. Corners may
// be v, v/vt, v//vn or v/vt/vn; only the vertex index matters here.
// Indices are 1-based, with negative values counting back from the most
// recently parsed vertex.
func (o *OBJ) parseFace(fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("%w: expected at least 3 corners, got %d", ErrMalformedOBJFace, len(fields)-1)
	}

	corners := make([]int, 0, len(fields)-1)
	for _, field := range fields[1:] {
		ref := field
		if slash := strings.IndexByte(ref, '/'); slash >= 0 {
			ref = ref[:slash]
		}
		idx, err := strconv.Atoi(ref)
		if err != nil || idx == 0 {
			return fmt.Errorf("%w: %q", ErrMalformedOBJFace, field)
		}
		if idx < 0 {
			idx = len(o.Vertices) + idx
		} else {
			idx--
		}
		if idx < 0 || idx >= len(o.Vertices) {
			return fmt.Errorf("%w: %q with %d vertices", ErrOBJIndexOutOfRange, field, len(o.Vertices))
		}
		corners = append(corners, idx)
	}

	for i := 1; i+1 < len(corners); i++ {
		o.Faces = append(o.Faces, [3]int{corners[0], corners[i], corners[i+1]})
	}
	return nil
}
