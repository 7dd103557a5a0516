// Package deb reads Debian binary packages without dpkg or libapt.
package deb

import (
	"fmt"
	"os"

	"github.com/ralt/debinspect/internal/control"
	"github.com/ralt/debinspect/internal/models"
	"github.com/ralt/debinspect/internal/utils"
	"github.com/ralt/debinspect/internal/version"
	"github.com/sirupsen/logrus"
)

// RequiredFields are the control fields every well-formed binary package
// carries.
var RequiredFields = []string{"Package", "Version", "Architecture"}

// PackageFile is a .deb file on disk. Headers, digests and the parsed
// version are computed on first access and cached for the lifetime of the
// instance; the design assumes the underlying file is not mutated while
// the instance is alive. Instances are single-owner and need no locking.
type PackageFile struct {
	path          string
	ignoreMissing bool

	headers  *control.Message
	fileinfo *utils.Checksum
	version  *version.Version
}

// Option configures a PackageFile on Open.
type Option func(*PackageFile)

// IgnoreMissing downgrades absent required control fields from an error to
// a debug log.
func IgnoreMissing() Option {
	return func(p *PackageFile) { p.ignoreMissing = true }
}

// Open wraps a .deb file. The file must exist and be regular; its content
// is not read until headers or digests are requested.
func Open(path string, opts ...Option) (*PackageFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}

	p := &PackageFile{path: path}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Path returns the path the package was opened from.
func (p *PackageFile) Path() string {
	return p.path
}

// Headers extracts and parses the control message of the package. The
// result is cached.
func (p *PackageFile) Headers() (*control.Message, error) {
	if p.headers != nil {
		return p.headers, nil
	}

	raw, err := extractControl(p.path)
	if err != nil {
		return nil, err
	}

	msg, err := control.Parse(raw)
	if err != nil {
		return nil, err
	}

	for _, name := range RequiredFields {
		if msg.Has(name) {
			continue
		}
		if p.ignoreMissing {
			logrus.Debugf("field %q not found in control message", name)
			continue
		}
		return nil, models.NewInspectError(models.ErrMissingRequiredField, p.path,
			"control message has no %q field", name)
	}

	p.headers = msg
	return msg, nil
}

// ControlString returns the control message serialized back to text.
func (p *PackageFile) ControlString() (string, error) {
	msg, err := p.Headers()
	if err != nil {
		return "", err
	}
	return msg.String(), nil
}

// Digests returns md5/sha1/sha256 and size of the whole .deb file, not
// just the control member. The result is cached.
func (p *PackageFile) Digests() (*utils.Checksum, error) {
	if p.fileinfo != nil {
		return p.fileinfo, nil
	}

	sums, err := utils.CalculateChecksums(p.path)
	if err != nil {
		return nil, err
	}
	p.fileinfo = sums
	return sums, nil
}

// Version parses the package's Version control field. The result is
// cached.
func (p *PackageFile) Version() (version.Version, error) {
	if p.version != nil {
		return *p.version, nil
	}

	msg, err := p.Headers()
	if err != nil {
		return version.Version{}, err
	}

	v, err := version.Parse(msg.Get("Version"))
	if err != nil {
		return version.Version{}, err
	}
	p.version = &v
	return v, nil
}

// CompareVersionWith compares the package's own version against an
// arbitrary version string.
func (p *PackageFile) CompareVersionWith(other string) (int, error) {
	mine, err := p.Version()
	if err != nil {
		return 0, err
	}
	theirs, err := version.Parse(other)
	if err != nil {
		return 0, err
	}
	return version.Compare(mine, theirs), nil
}
