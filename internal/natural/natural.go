// Package natural implements the natural-order string comparator used by
// the INI emitter to sort section and key names: runs of digits
// compare by numeric value, other runs compare byte-wise. Ported from the
// classic alphanum algorithm.
package natural

// Less reports whether a sorts before b under natural order.
func Less(a, b string) bool {
	return compare(a, b) < 0
}

// compare returns -1, 0, or 1 comparing a and b under natural order.
func compare(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]

		if isDigit(ca) && isDigit(cb) {
			// Compare runs of digits numerically, ignoring leading zeros,
			// without overflowing: longer run (after stripping leading
			// zeros) wins; equal length compares byte-wise.
			startA := i
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			startB := j
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			runA := stripLeadingZeros(a[startA:i])
			runB := stripLeadingZeros(b[startB:j])
			if len(runA) != len(runB) {
				if len(runA) < len(runB) {
					return -1
				}
				return 1
			}
			if runA != runB {
				if runA < runB {
					return -1
				}
				return 1
			}
			continue
		}

		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}

	switch {
	case len(a)-i < len(b)-j:
		return -1
	case len(a)-i > len(b)-j:
		return 1
	default:
		return 0
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func stripLeadingZeros(s string) string {
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}
