package version

import "strings"

// Compare returns -1, 0 or 1 when a is lower than, equal to or higher
// than b. Epochs are compared numerically, then the upstream versions and
// finally the revisions with the segment algorithm.
func Compare(a, b Version) int {
	if a.Epoch != b.Epoch {
		if a.Epoch < b.Epoch {
			return -1
		}
		return 1
	}
	if c := compareSegment(a.Upstream, b.Upstream); c != 0 {
		return c
	}
	return compareSegment(a.Revision, b.Revision)
}

// CompareStrings parses both version strings and compares them.
func CompareStrings(a, b string) (int, error) {
	va, err := Parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return Compare(va, vb), nil
}

// compareSegment compares two version segments by alternately comparing
// their longest leading non-digit runs lexically and their longest leading
// digit runs numerically, until both are consumed. The alternation is
// unbounded; segments like "1a2b3c4" go through as many rounds as needed.
func compareSegment(a, b string) int {
	for a != "" || b != "" {
		runA, restA := splitNonDigits(a)
		runB, restB := splitNonDigits(b)
		if c := compareRuns(runA, runB); c != 0 {
			return c
		}

		digitsA, tailA := splitDigits(restA)
		digitsB, tailB := splitDigits(restB)
		if c := compareNumeric(digitsA, digitsB); c != 0 {
			return c
		}

		a, b = tailA, tailB
	}
	return 0
}

// compareRuns compares two non-digit runs position by position using the
// modified ASCII order of Debian Policy: a tilde sorts before anything,
// even the end of a run, the end of a run sorts before any other
// character, and letters sort before non-letters.
func compareRuns(a, b string) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		oa, ob := 0, 0
		if i < len(a) {
			oa = charOrder(a[i])
		}
		if i < len(b) {
			ob = charOrder(b[i])
		}
		if oa != ob {
			if oa < ob {
				return -1
			}
			return 1
		}
	}
	return 0
}

// charOrder ranks a character; the end of a run ranks 0.
func charOrder(c byte) int {
	switch {
	case c == '~':
		return -1
	case isAlpha(c):
		return int(c)
	default:
		return int(c) + 256
	}
}

// compareNumeric compares two digit runs as non-negative integers of
// arbitrary length. An empty run counts as zero.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func splitNonDigits(s string) (run, rest string) {
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func splitDigits(s string) (run, rest string) {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
