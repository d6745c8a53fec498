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

// PLY format errors.
var (
	ErrInvalidPLYMagic      = errors.New("invalid PLY magic: expected 'ply'")
	ErrUnsupportedPLYFormat = errors.New("unsupported PLY format: only ascii 1.0")
	ErrMalformedPLYHeader   = errors.New("malformed PLY header")
	ErrMalformedPLYData     = errors.New("malformed PLY data")
	ErrTruncatedPLYData     = errors.New("truncated PLY data")
	ErrPLYIndexOutOfRange   = errors.New("PLY face index out of range")
)

// PLY represents the geometry of an ASCII PLY file. Extra vertex
// properties such as colors or normals are skipped on read and never
// written.
type PLY struct {
	Vertices [][3]float64
	Faces    [][3]int
}

// plyElement describes one element declaration from the header.
type plyElement struct {
	name  string
	count int
	// props lists scalar property names in declaration order. A list
	// property (used for face indices) consumes the whole data line.
	props   []string
	hasList bool
}

// ParsePLY parses an ASCII PLY file from raw bytes.
func ParsePLY(data []byte) (*PLY, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	elements, err := parsePLYHeader(scanner)
	if err != nil {
		return nil, err
	}

	ply := &PLY{}
	for _, elem := range elements {
		switch elem.name {
		case "vertex":
			if err := ply.readVertices(scanner, elem); err != nil {
				return nil, err
			}
		case "face":
			if err := ply.readFaces(scanner, elem); err != nil {
				return nil, err
			}
		default:
			// Unknown element: skip its data lines.
			for i := 0; i < elem.count; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("%w: element %q", ErrTruncatedPLYData, elem.name)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning PLY: %w", err)
	}

	// Faces may be declared before vertices, so index validation waits
	// until every element has been read.
	for _, face := range ply.Faces {
		for _, idx := range face {
			if idx < 0 || idx >= len(ply.Vertices) {
				return nil, fmt.Errorf("%w: %d with %d vertices", ErrPLYIndexOutOfRange, idx, len(ply.Vertices))
			}
		}
	}
	return ply, nil
}

// ParsePLYFile parses an ASCII PLY file from disk.
func ParsePLYFile(path string) (*PLY, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading PLY file: %w", err)
	}
	return ParsePLY(data)
}

// parsePLYHeader consumes lines up to and including end_header and
// returns the declared elements in order.
func parsePLYHeader(scanner *bufio.Scanner) ([]plyElement, error) {
	if !scanner.Scan() {
		return nil, ErrInvalidPLYMagic
	}
	if strings.TrimSpace(scanner.Text()) != "ply" {
		return nil, ErrInvalidPLYMagic
	}

	var elements []plyElement
	formatSeen := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "comment") || strings.HasPrefix(line, "obj_info") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "format":
			if len(fields) < 3 || fields[1] != "ascii" || fields[2] != "1.0" {
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedPLYFormat, line)
			}
			formatSeen = true
		case "element":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: %s", ErrMalformedPLYHeader, line)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: bad element count %q", ErrMalformedPLYHeader, fields[2])
			}
			elements = append(elements, plyElement{name: fields[1], count: count})
		case "property":
			if len(elements) == 0 || len(fields) < 3 {
				return nil, fmt.Errorf("%w: %s", ErrMalformedPLYHeader, line)
			}
			elem := &elements[len(elements)-1]
			if fields[1] == "list" {
				elem.hasList = true
			} else {
				elem.props = append(elem.props, fields[len(fields)-1])
			}
		case "end_header":
			if !formatSeen {
				return nil, fmt.Errorf("%w: missing format line", ErrMalformedPLYHeader)
			}
			return elements, nil
		default:
			return nil, fmt.Errorf("%w: %s", ErrMalformedPLYHeader, line)
		}
	}
	return nil, fmt.Errorf("%w: missing end_header", ErrMalformedPLYHeader)
}

// readVertices reads elem.count vertex lines, picking the x, y and z
// properties by their declared positions.
func (p *PLY) readVertices(scanner *bufio.Scanner, elem plyElement) error {
	var pos [3]int
	for i, name := range []string{"x", "y", "z"} {
		pos[i] = -1
		for j, prop := range elem.props {
			if prop == name {
				pos[i] = j
				break
			}
		}
		if pos[i] == -1 {
			return fmt.Errorf("%w: vertex element missing property %q", ErrMalformedPLYHeader, name)
		}
	}

	p.Vertices = make([][3]float64, 0, elem.count)
	for i := 0; i < elem.count; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("%w: vertex %d of %d", ErrTruncatedPLYData, i, elem.count)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < len(elem.props) {
			return fmt.Errorf("%w: vertex %d has %d values, want %d", ErrMalformedPLYData, i, len(fields), len(elem.props))
		}

		var vert [3]float64
		for a := 0; a < 3; a++ {
			val, err := strconv.ParseFloat(fields[pos[a]], 64)
			if err != nil {
				return fmt.Errorf("%w: vertex %d: %q", ErrMalformedPLYData, i, fields[pos[a]])
			}
			if math.IsNaN(val) || math.IsInf(val, 0) {
				return fmt.Errorf("%w: vertex %d: %q", ErrNonFiniteCoord, i, fields[pos[a]])
			}
			vert[a] = val
		}
		p.Vertices = append(p.Vertices, vert)
	}
	return nil
}

// readFaces reads elem.count face lines and fan-triangulates polygons.
// Index range checks happen after all elements are read.
func (p *PLY) readFaces(scanner *bufio.Scanner, elem plyElement) error {
	if !elem.hasList {
		return fmt.Errorf("%w: face element missing list property", ErrMalformedPLYHeader)
	}

	for i := 0; i < elem.count; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("%w: face %d of %d", ErrTruncatedPLYData, i, elem.count)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			return fmt.Errorf("%w: face %d is empty", ErrMalformedPLYData, i)
		}

		count, err := strconv.Atoi(fields[0])
		if err != nil || count < 3 || len(fields) < count+1 {
			return fmt.Errorf("%w: face %d: %q", ErrMalformedPLYData, i, scanner.Text())
		}
		corners := make([]int, count)
		for j := 0; j < count; j++ {
			idx, err := strconv.Atoi(fields[j+1])
			if err != nil {
				return fmt.Errorf("%w: face %d: %q", ErrMalformedPLYData, i, fields[j+1])
			}
			corners[j] = idx
		}
		for j := 1; j+1 < len(corners); j++ {
			p.Faces = append(p.Faces, [3]int{corners[0], corners[j], corners[j+1]})
		}
	}
	return nil
}

// Encode renders p as an ASCII PLY file with double-precision vertex
// properties, so reconstructed coordinates survive a write/read round
// trip unchanged.
func (p *PLY) Encode() []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("ply\n")
	buf.WriteString("format ascii 1.0\n")
	fmt.Fprintf(buf, "element vertex %d\n", len(p.Vertices))
	buf.WriteString("property double x\n")
	buf.WriteString("property double y\n")
	buf.WriteString("property double z\n")
	fmt.Fprintf(buf, "element face %d\n", len(p.Faces))
	buf.WriteString("property list uchar int vertex_indices\n")
	buf.WriteString("end_header\n")

	for _, vert := range p.Vertices {
		buf.WriteString(strconv.FormatFloat(vert[0], 'g', -1, 64))
		buf.WriteByte(' ')
		buf.WriteString(strconv.FormatFloat(vert[1], 'g', -1, 64))
		buf.WriteByte(' ')
		buf.WriteString(strconv.FormatFloat(vert[2], 'g', -1, 64))
		buf.WriteByte('\n')
	}
	for _, face := range p.Faces {
		fmt.Fprintf(buf, "3 %d %d %d\n", face[0], face[1], face[2])
	}
	return buf.Bytes()
}

// WriteFile writes p to disk in ASCII PLY form.
func (p *PLY) WriteFile(path string) error {
	if err := os.WriteFile(path, p.Encode(), 0644); err != nil {
		return fmt.Errorf("writing PLY file: %w", err)
	}
	return nil
}
