package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/surfscatter/pkg/math"
)

// Mesh errors.
var (
	ErrInvalidOBJ       = errors.New("invalid OBJ data")
	ErrUnknownPrimitive = errors.New("unknown primitive")
)

// LoadOBJ reads a Wavefront OBJ file from disk.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()

	m, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// ParseOBJ parses the geometry of a Wavefront OBJ stream.
// Only vertex positions ("v") and faces ("f") are used; texture coordinates,
// normals, materials and groups are ignored. Face normals are derived from
// the polygon winding.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	var (
		verts []math.Vec3
		m     = &Mesh{}
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "o":
			if m.Name == "" && len(fields) > 1 {
				m.Name = strings.Join(fields[1:], " ")
			}

		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: vertex needs 3 coordinates", ErrInvalidOBJ, lineNo)
			}
			var p [3]float32
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, lineNo, err)
				}
				p[i] = float32(f)
			}
			verts = append(verts, math.Vec3FromArray(p))

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs at least 3 vertices", ErrInvalidOBJ, lineNo)
			}
			faceVerts := make([]math.Vec3, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				idx, err := resolveIndex(tok, len(verts))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, lineNo, err)
				}
				faceVerts = append(faceVerts, verts[idx])
			}
			m.Faces = append(m.Faces, NewFace(faceVerts...))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	return m, nil
}

// resolveIndex converts a face token ("7", "7/1", "7//3", "-1/2/3") into a
// zero-based vertex index. Negative indices count back from the last vertex.
func resolveIndex(tok string, count int) (int, error) {
	if i := strings.IndexByte(tok, '/'); i >= 0 {
		tok = tok[:i]
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("bad vertex index %q", tok)
	}

	var idx int
	switch {
	case n > 0:
		idx = n - 1
	case n < 0:
		idx = count + n
	default:
		return 0, fmt.Errorf("vertex index 0 is not valid")
	}
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("vertex index %d out of range (%d vertices)", n, count)
	}
	return idx, nil
}

// WriteOBJ writes the mesh as an OBJ stream with one vertex per face corner.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	if m.Name != "" {
		fmt.Fprintf(bw, "o %s\n", m.Name)
	}

	next := 1
	for _, f := range m.Faces {
		for _, v := range f.Vertices {
			fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z))
		}
		bw.WriteString("f")
		for range f.Vertices {
			fmt.Fprintf(bw, " %d", next)
			next++
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
