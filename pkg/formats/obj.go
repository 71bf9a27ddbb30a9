package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/Faultbox/mithril/pkg/math"
)

// OBJ format errors.
var (
	// ErrMalformedLine marks a line no OBJ grammar matched. It is not fatal:
	// such lines are collected in OBJ.Ignored and parsing continues.
	ErrMalformedLine = errors.New("unrecognized OBJ line")
	// ErrInvalidNumber is returned when a token that must be a number is not one.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrUnsupportedFaceArity is returned for faces that are not triangles.
	ErrUnsupportedFaceArity = errors.New("unsupported face arity: only triangles are supported")
)

// decimalPattern is the only float syntax accepted for v and vn components.
// A leading "+" before a "-" is tolerated, as some exporters emit it.
var decimalPattern = regexp.MustCompile(`^\+?-?\d+\.\d+$`)

// ParseError describes a problem with a single OBJ line.
type ParseError struct {
	Line int    // 1-based line number
	Text string // Raw line contents
	Err  error  // One of the ErrXxx sentinels, possibly wrapped
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FaceCorner is one vertex of a triangle as written in a face record.
// Both indices are 0-based.
type FaceCorner struct {
	Position uint32
	Normal   uint32
}

// OBJ holds the attribute streams of a parsed Wavefront OBJ file.
// Corners has three entries per triangle, in file order.
type OBJ struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	Corners   []FaceCorner

	// Ignored lists lines that matched no known directive.
	Ignored []*ParseError
}

// TriangleCount returns the number of faces parsed.
func (o *OBJ) TriangleCount() int {
	return len(o.Corners) / 3
}

// LoadOBJ reads and parses an OBJ file from disk.
func LoadOBJ(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseOBJ(f)
}

// ParseOBJ parses OBJ text containing v, vn and triangular f records.
// Lines with other directives (o, g, s, usemtl, vt, ...) are skipped and
// reported in Ignored. Numeric and face-arity problems abort the parse.
// Everything from a '#' to the end of the line is a comment.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	obj := &OBJ{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := scanner.Text()
		if lineNum == 1 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}

		line := raw
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := obj.parseLine(line); err != nil {
			pe := &ParseError{Line: lineNum, Text: raw, Err: err}
			if errors.Is(err, ErrMalformedLine) {
				obj.Ignored = append(obj.Ignored, pe)
				continue
			}
			return nil, pe
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	return obj, nil
}

func (o *OBJ) parseLine(line string) error {
	fields := strings.Fields(line)

	switch fields[0] {
	case "v":
		v, err := parseVec3(fields[1:], true)
		if err != nil {
			return err
		}
		o.Positions = append(o.Positions, v)
	case "vn":
		v, err := parseVec3(fields[1:], false)
		if err != nil {
			return err
		}
		o.Normals = append(o.Normals, v)
	case "f":
		return o.parseFace(fields[1:])
	default:
		return ErrMalformedLine
	}
	return nil
}

// parseVec3 reads three components. When allowW is set a fourth (w)
// component may follow; it is validated and dropped.
func parseVec3(tokens []string, allowW bool) (math.Vec3, error) {
	if len(tokens) != 3 && !(allowW && len(tokens) == 4) {
		return math.Vec3{}, ErrMalformedLine
	}

	var c [4]float32
	for i, tok := range tokens {
		if !decimalPattern.MatchString(tok) {
			return math.Vec3{}, fmt.Errorf("%w: %q", ErrInvalidNumber, tok)
		}
		// The optional "+" prefix is not accepted by ParseFloat when a sign follows.
		tok = strings.TrimPrefix(tok, "+")
		f, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("%w: %q", ErrInvalidNumber, tok)
		}
		c[i] = float32(f)
	}
	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

func (o *OBJ) parseFace(groups []string) error {
	// Every token must look like p/[t]/n before the vertex count means
	// anything. Faces without normals (f 1 2 3, f 1/1 2/2 3/3) are skipped.
	for _, g := range groups {
		if strings.Count(g, "/") != 2 {
			return ErrMalformedLine
		}
	}
	if len(groups) != 3 {
		return fmt.Errorf("%w: got %d vertices", ErrUnsupportedFaceArity, len(groups))
	}

	var corners [3]FaceCorner
	for i, g := range groups {
		parts := strings.Split(g, "/")

		pos, err := parseIndex(parts[0])
		if err != nil {
			return err
		}
		if parts[1] != "" {
			// Texture index is validated but not kept.
			if _, err := parseIndex(parts[1]); err != nil {
				return err
			}
		}
		norm, err := parseIndex(parts[2])
		if err != nil {
			return err
		}

		corners[i] = FaceCorner{Position: pos, Normal: norm}
	}

	o.Corners = append(o.Corners, corners[:]...)
	return nil
}

// parseIndex converts a 1-based OBJ index to 0-based.
func parseIndex(tok string) (uint32, error) {
	n, err := strconv.ParseUint(tok, 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: index %q", ErrInvalidNumber, tok)
	}
	return uint32(n - 1), nil
}
