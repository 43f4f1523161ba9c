// Package pathdata interprets SVG path data (the `d` attribute
// mini-language) and computes the bounding box of the points a path
// visits.
//
// The interpreter is deliberately approximate on curves: it includes
// curve control points in the box instead of solving for the true curve
// extrema. Control points can lie outside the rendered curve, so boxes
// may be looser than the visual shape. For slicing and crop derivation
// this is good enough, and it keeps the interpreter a straight-line
// state machine.
//
// Malformed input never produces an error. A command with too few
// arguments, an unknown letter, or a stray number truncates
// interpretation of that path, and whatever box accumulated so far is
// returned. A path that never visits a point yields no box at all.
package pathdata

import "github.com/matzehuels/svgslice/pkg/geom"

// arity returns the number of numeric arguments for a command letter,
// and whether the letter is part of the grammar at all.
func arity(cmd byte) (int, bool) {
	switch cmd {
	case 'M', 'm', 'L', 'l', 'T', 't':
		return 2, true
	case 'H', 'h', 'V', 'v':
		return 1, true
	case 'C', 'c':
		return 6, true
	case 'S', 's', 'Q', 'q':
		return 4, true
	case 'A', 'a':
		return 7, true
	case 'Z', 'z':
		return 0, true
	}
	return 0, false
}

// Bounds interprets the path data in d and returns the box enclosing
// every visited point: segment endpoints plus the control points of
// curve commands. The second return is false when no point was visited
// (empty input, or truncation before the first point).
//
// Grammar rules honored:
//   - Lowercase commands are relative to the cursor at the start of the
//     command's argument group.
//   - Surplus coordinate groups repeat the active command implicitly,
//     except that after an M/m group the active command becomes L/l.
//   - Z/z moves the cursor back to the subpath start and records it.
//   - Arc commands carry 7 parameters; only the terminal (x, y) is a
//     visited point.
func Bounds(d string) (geom.BBox, bool) {
	toks := tokenize(d)

	var ext geom.Extent
	var x, y, startX, startY float64
	var cmd byte

	i := 0
	for i < len(toks) {
		t := toks[i]
		if t.kind == tokenCommand {
			if _, ok := arity(t.cmd); !ok {
				// Unknown letter: stop interpreting this path.
				break
			}
			cmd = t.cmd
			i++
			if cmd == 'Z' || cmd == 'z' {
				x, y = startX, startY
				ext.Add(x, y)
			}
			continue
		}

		// A number with no drawable command to consume it (either no
		// command yet, or the active command takes no arguments).
		n, ok := arity(cmd)
		if !ok || n == 0 {
			break
		}

		nums := make([]float64, 0, n)
		for len(nums) < n && i < len(toks) && toks[i].kind == tokenNumber {
			nums = append(nums, toks[i].num)
			i++
		}
		if len(nums) < n {
			// Argument list ran out: truncate this path.
			break
		}

		rel := cmd >= 'a' // lowercase
		switch cmd {
		case 'M', 'm':
			nx, ny := nums[0], nums[1]
			if rel {
				nx += x
				ny += y
			}
			x, y = nx, ny
			startX, startY = x, y
			ext.Add(x, y)
			// Subsequent coordinate pairs are implicit linetos.
			if cmd == 'M' {
				cmd = 'L'
			} else {
				cmd = 'l'
			}

		case 'L', 'l', 'T', 't':
			nx, ny := nums[0], nums[1]
			if rel {
				nx += x
				ny += y
			}
			x, y = nx, ny
			ext.Add(x, y)

		case 'H', 'h':
			nx := nums[0]
			if rel {
				nx += x
			}
			x = nx
			ext.Add(x, y)

		case 'V', 'v':
			ny := nums[0]
			if rel {
				ny += y
			}
			y = ny
			ext.Add(x, y)

		case 'C', 'c':
			x1, y1, x2, y2, nx, ny := nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]
			if rel {
				x1 += x
				y1 += y
				x2 += x
				y2 += y
				nx += x
				ny += y
			}
			ext.Add(x1, y1)
			ext.Add(x2, y2)
			x, y = nx, ny
			ext.Add(x, y)

		case 'S', 's', 'Q', 'q':
			cx, cy, nx, ny := nums[0], nums[1], nums[2], nums[3]
			if rel {
				cx += x
				cy += y
				nx += x
				ny += y
			}
			ext.Add(cx, cy)
			x, y = nx, ny
			ext.Add(x, y)

		case 'A', 'a':
			// rx, ry, rotation, and the two flags are consumed and
			// discarded; only the endpoint is visited.
			nx, ny := nums[5], nums[6]
			if rel {
				nx += x
				ny += y
			}
			x, y = nx, ny
			ext.Add(x, y)
		}
	}

	return ext.BBox()
}
