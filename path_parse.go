package picosvg

import (
	"fmt"
	"math"

	"github.com/tdewolff/parse/v2/strconv"
)

func skipCommaWhitespace(path []byte) int {
	i := 0
	for i < len(path) && (path[i] == ' ' || path[i] == ',' || path[i] == '\n' || path[i] == '\r' || path[i] == '\t' || path[i] == '\f') {
		i++
	}
	return i
}

func parseNum(path []byte) (float64, int, error) {
	i := skipCommaWhitespace(path)
	f, n := strconv.ParseFloat(path[i:])
	if n == 0 {
		if i < len(path) {
			return 0.0, i, fmt.Errorf("expected number at %q", path[i:])
		}
		return 0.0, i, fmt.Errorf("expected number")
	}
	return f, i + n, nil
}

func parseNums(path []byte, dst []float64) (int, error) {
	i := 0
	for k := range dst {
		f, n, err := parseNum(path[i:])
		if err != nil {
			return i, err
		}
		dst[k] = f
		i += n
	}
	return i, nil
}

// parseFlag parses an arc flag, which may be written without a separator.
func parseFlag(path []byte) (bool, int, error) {
	i := skipCommaWhitespace(path)
	if i < len(path) && (path[i] == '0' || path[i] == '1') {
		return path[i] == '1', i + 1, nil
	}
	return false, i, fmt.Errorf("expected arc flag")
}

// ParsePath parses SVG path data into absolute commands. Relative, horizontal, vertical and smooth commands are resolved. On malformed data it returns the path up to the last complete command together with an error, as SVG renders path data up to the first error.
func ParsePath(s string) (*Path, error) {
	path := []byte(s)
	p := &Path{}

	var prevCmd byte
	cpx, cpy := 0.0, 0.0 // control points

	var vals [7]float64
	i := skipCommaWhitespace(path)
	for i < len(path) {
		cmd := prevCmd
		if c := path[i]; 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' {
			cmd = c
			i++
		} else if prevCmd == 0 || prevCmd == 'Z' || prevCmd == 'z' {
			return p, fmt.Errorf("bad path: unexpected %q", path[i:])
		}
		if p.Empty() && cmd != 'M' && cmd != 'm' {
			return p, fmt.Errorf("bad path: must start with moveto")
		}

		x, y := p.Pos()
		var n int
		var err error
		switch cmd {
		case 'M', 'm':
			if n, err = parseNums(path[i:], vals[:2]); err != nil {
				break
			}
			a, b := vals[0], vals[1]
			if cmd == 'm' {
				a += x
				b += y
			}
			p.MoveTo(a, b)
		case 'Z', 'z':
			p.Close()
		case 'L', 'l':
			if n, err = parseNums(path[i:], vals[:2]); err != nil {
				break
			}
			a, b := vals[0], vals[1]
			if cmd == 'l' {
				a += x
				b += y
			}
			p.LineTo(a, b)
		case 'H', 'h':
			if n, err = parseNums(path[i:], vals[:1]); err != nil {
				break
			}
			a := vals[0]
			if cmd == 'h' {
				a += x
			}
			p.LineTo(a, y)
		case 'V', 'v':
			if n, err = parseNums(path[i:], vals[:1]); err != nil {
				break
			}
			b := vals[0]
			if cmd == 'v' {
				b += y
			}
			p.LineTo(x, b)
		case 'C', 'c':
			if n, err = parseNums(path[i:], vals[:6]); err != nil {
				break
			}
			a, b, c, d, e, f := vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]
			if cmd == 'c' {
				a += x
				b += y
				c += x
				d += y
				e += x
				f += y
			}
			p.CubeTo(a, b, c, d, e, f)
			cpx, cpy = c, d
		case 'S', 's':
			if n, err = parseNums(path[i:], vals[:4]); err != nil {
				break
			}
			c, d, e, f := vals[0], vals[1], vals[2], vals[3]
			if cmd == 's' {
				c += x
				d += y
				e += x
				f += y
			}
			a, b := x, y
			if prevCmd == 'C' || prevCmd == 'c' || prevCmd == 'S' || prevCmd == 's' {
				a, b = 2*x-cpx, 2*y-cpy
			}
			p.CubeTo(a, b, c, d, e, f)
			cpx, cpy = c, d
		case 'Q', 'q':
			if n, err = parseNums(path[i:], vals[:4]); err != nil {
				break
			}
			a, b, c, d := vals[0], vals[1], vals[2], vals[3]
			if cmd == 'q' {
				a += x
				b += y
				c += x
				d += y
			}
			p.QuadTo(a, b, c, d)
			cpx, cpy = a, b
		case 'T', 't':
			if n, err = parseNums(path[i:], vals[:2]); err != nil {
				break
			}
			c, d := vals[0], vals[1]
			if cmd == 't' {
				c += x
				d += y
			}
			a, b := x, y
			if prevCmd == 'Q' || prevCmd == 'q' || prevCmd == 'T' || prevCmd == 't' {
				a, b = 2*x-cpx, 2*y-cpy
			}
			p.QuadTo(a, b, c, d)
			cpx, cpy = a, b
		case 'A', 'a':
			if n, err = parseNums(path[i:], vals[:3]); err != nil {
				break
			}
			large, m, ferr := parseFlag(path[i+n:])
			n += m
			if err = ferr; err != nil {
				break
			}
			sweep, m, ferr := parseFlag(path[i+n:])
			n += m
			if err = ferr; err != nil {
				break
			}
			m, err = parseNums(path[i+n:], vals[3:5])
			n += m
			if err != nil {
				break
			}
			rx, ry, rot := math.Abs(vals[0]), math.Abs(vals[1]), vals[2]
			f, g := vals[3], vals[4]
			if cmd == 'a' {
				f += x
				g += y
			}
			if rx == 0.0 || ry == 0.0 {
				p.LineTo(f, g)
			} else {
				p.ArcTo(rx, ry, rot, large, sweep, f, g)
			}
		default:
			return p, fmt.Errorf("bad path: unknown command %q", cmd)
		}
		if err != nil {
			return p, fmt.Errorf("bad path: %w", err)
		}
		i += n
		i += skipCommaWhitespace(path[i:])

		// a moveto followed by coordinates continues as lineto
		if cmd == 'M' {
			cmd = 'L'
		} else if cmd == 'm' {
			cmd = 'l'
		}
		prevCmd = cmd
	}
	return p, nil
}

// parsePoints parses a list of numbers separated by commas and/or whitespace, such as the points attribute. It returns the numbers parsed up to the first error.
func parsePoints(v string) ([]float64, error) {
	b := []byte(v)
	nums := []float64{}
	i := skipCommaWhitespace(b)
	for i < len(b) {
		f, n, err := parseNum(b[i:])
		if err != nil {
			return nums, err
		}
		nums = append(nums, f)
		i += n
		i += skipCommaWhitespace(b[i:])
	}
	return nums, nil
}
