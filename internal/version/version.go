// Package version parses and compares Debian package version strings
// following the algorithm of Debian Policy 5.6.12.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ralt/debinspect/internal/models"
)

// Version is a parsed Debian version: [epoch:]upstream[-revision].
// It is immutable once parsed.
type Version struct {
	Epoch    int
	Upstream string
	Revision string
}

// Parse splits a version string into epoch, upstream version and Debian
// revision. The epoch defaults to 0 and the revision to "0" when absent.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, models.NewInspectError(models.ErrMalformedVersion, "",
			"empty version string")
	}
	for _, c := range s {
		if !isVersionChar(c) {
			return Version{}, models.NewInspectError(models.ErrMalformedVersion, "",
				"invalid character %q in version %q", c, s)
		}
	}

	v := Version{Revision: "0"}

	rest := s
	// Only the first colon delimits the epoch; later colons belong to
	// the upstream version.
	if epoch, tail, found := strings.Cut(rest, ":"); found {
		n, err := strconv.Atoi(epoch)
		if err != nil || n < 0 {
			return Version{}, models.NewInspectError(models.ErrMalformedVersion, "",
				"epoch must be a non-negative integer in %q", s)
		}
		v.Epoch = n
		rest = tail
	}

	// The revision is everything after the last hyphen.
	if i := strings.LastIndex(rest, "-"); i >= 0 {
		v.Revision = rest[i+1:]
		rest = rest[:i]
	}

	if rest == "" {
		return Version{}, models.NewInspectError(models.ErrMalformedVersion, "",
			"empty upstream version in %q", s)
	}
	v.Upstream = rest

	return v, nil
}

// String reconstructs the version string. The epoch is omitted when zero
// and the revision when "0"; the result always compares equal to the
// original input.
func (v Version) String() string {
	var b strings.Builder
	if v.Epoch != 0 {
		fmt.Fprintf(&b, "%d:", v.Epoch)
	}
	b.WriteString(v.Upstream)
	if v.Revision != "0" {
		b.WriteString("-")
		b.WriteString(v.Revision)
	}
	return b.String()
}

func isVersionChar(c rune) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c == '.' || c == '+' || c == '~' || c == ':' || c == '-':
		return true
	}
	return false
}
