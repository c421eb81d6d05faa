package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ReadOBJ reads the vertices and faces of a Wavefront OBJ file.
func ReadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: read obj: %w", err)
	}
	defer f.Close()

	m, err := DecodeOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("mesh: read obj %s: %w", path, err)
	}
	return m, nil
}

// DecodeOBJ reads "v" and "f" records. Face tokens may carry texture and
// normal references (v/vt/vn), indices may be negative (relative to the
// end of the vertex list), and polygons are fan-triangulated. Everything
// else is ignored.
func DecodeOBJ(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", line)
			}
			var xyz [3]float64
			for i := range xyz {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: vertex coordinate %q: %w", line, fields[i+1], err)
				}
				xyz[i] = f
			}
			m.Vertices = append(m.Vertices, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", line)
			}
			face := make([]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				idx, err := objIndex(tok, len(m.Vertices))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				face = append(face, idx)
			}
			for i := 1; i+1 < len(face); i++ {
				m.Indices = append(m.Indices, face[0], face[i], face[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// objIndex converts a 1-based (or negative, relative) OBJ vertex
// reference to a 0-based index.
func objIndex(tok string, count int) (int, error) {
	if slash := strings.IndexByte(tok, '/'); slash >= 0 {
		tok = tok[:slash]
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("face index %q: %w", tok, err)
	}

	var idx int
	switch {
	case n > 0:
		idx = n - 1
	case n < 0:
		idx = count + n
	default:
		return 0, fmt.Errorf("%w: face index 0 is not valid in OBJ", ErrIndexOutOfRange)
	}
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("%w: face index %s with %d vertices defined", ErrIndexOutOfRange, tok, count)
	}
	return idx, nil
}

// WriteOBJ writes m as an OBJ file with 1-based face indices.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	for _, v := range m.Vertices {
		if _, err := fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z); err != nil {
			return err
		}
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		if _, err := fmt.Fprintf(bw, "f %d %d %d\n", m.Indices[i]+1, m.Indices[i+1]+1, m.Indices[i+2]+1); err != nil {
			return err
		}
	}
	return bw.Flush()
}
