package pathdata

import "strconv"

// tokenKind discriminates the two token shapes the path grammar produces.
type tokenKind uint8

const (
	tokenCommand tokenKind = iota
	tokenNumber
)

// token is one element of the flattened command stream: either a single
// command letter or a parsed number.
type token struct {
	kind tokenKind
	cmd  byte
	num  float64
}

// tokenize scans path data into a flat sequence of command letters and
// numbers. Separators (whitespace and commas) are dropped. Any letter is
// emitted as a command token, including letters outside the grammar; the
// interpreter decides what to do with them. A malformed number terminates
// the scan, matching the interpreter's soft-failure contract.
func tokenize(d string) []token {
	var toks []token
	i := 0
	for i < len(d) {
		c := d[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',':
			i++
		case (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z'):
			toks = append(toks, token{kind: tokenCommand, cmd: c})
			i++
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			end := scanNumber(d, i)
			v, err := strconv.ParseFloat(d[i:end], 64)
			if err != nil {
				return toks
			}
			toks = append(toks, token{kind: tokenNumber, num: v})
			i = end
		default:
			return toks
		}
	}
	return toks
}

// scanNumber returns the end index of the number starting at i. A number
// is an optional sign, digits with at most one decimal point, and an
// optional exponent. A second decimal point starts the next number, as in
// the common ".5.5" shorthand.
func scanNumber(d string, i int) int {
	j := i
	if j < len(d) && (d[j] == '+' || d[j] == '-') {
		j++
	}
	sawDot := false
	for j < len(d) {
		c := d[j]
		if c >= '0' && c <= '9' {
			j++
			continue
		}
		if c == '.' && !sawDot {
			sawDot = true
			j++
			continue
		}
		break
	}
	// Optional exponent: e or E, optional sign, at least one digit.
	if j < len(d) && (d[j] == 'e' || d[j] == 'E') {
		k := j + 1
		if k < len(d) && (d[k] == '+' || d[k] == '-') {
			k++
		}
		digits := k
		for digits < len(d) && d[digits] >= '0' && d[digits] <= '9' {
			digits++
		}
		if digits > k {
			j = digits
		}
	}
	return j
}
