// Package dsc reads Debian source description (.dsc) documents and
// cross-checks their declared file manifests against the filesystem.
package dsc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
	"github.com/ralt/debinspect/internal/control"
	"github.com/ralt/debinspect/internal/models"
	"github.com/ralt/debinspect/internal/utils"
	"github.com/sirupsen/logrus"
)

var clearsignMarker = []byte("-----BEGIN PGP SIGNED MESSAGE-----")

// manifestFields are the recognized manifest fields in merge order: the
// legacy combined Files field (md5) first, then the per-algorithm fields.
var manifestFields = []struct {
	name      string
	algorithm string
}{
	{"Files", "md5"},
	{"Checksums-Sha1", "sha1"},
	{"Checksums-Sha256", "sha256"},
}

// ManifestEntry is one declared file, merged across every manifest field
// that mentions it. Digests is keyed by algorithm name.
type ManifestEntry struct {
	Filename string
	Size     int64
	Digests  map[string]string
}

// SourceDescription is a parsed .dsc document. Headers and manifest are
// built once at Open and immutable thereafter; validation results are
// computed on demand since they depend on live filesystem state.
type SourceDescription struct {
	path      string
	directory string
	headers   *control.Message
	manifest  []*ManifestEntry
}

// Open reads and parses a source description document. A clearsigned
// document is unwrapped first; the signature itself is not verified.
func Open(path string) (*SourceDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if bytes.HasPrefix(bytes.TrimSpace(data), clearsignMarker) {
		block, _ := clearsign.Decode(data)
		if block == nil {
			return nil, models.NewInspectError(models.ErrMalformedControl, path,
				"invalid clearsigned document")
		}
		logrus.Debugf("unwrapped clearsigned document %s", path)
		data = block.Plaintext
	}

	msg, err := control.Parse(data)
	if err != nil {
		return nil, err
	}

	d := &SourceDescription{
		path:      path,
		directory: filepath.Dir(path),
		headers:   msg,
	}
	if err := d.buildManifest(); err != nil {
		return nil, err
	}
	return d, nil
}

// buildManifest merges the recognized manifest fields into a single entry
// sequence keyed by filename, in order of first appearance. All
// occurrences of a filename must agree on size.
func (d *SourceDescription) buildManifest() error {
	byName := make(map[string]*ManifestEntry)

	for _, field := range manifestFields {
		if !d.headers.Has(field.name) {
			continue
		}
		for _, line := range strings.Split(d.headers.Get(field.name), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			parts := strings.Fields(line)
			if len(parts) != 3 {
				return models.NewInspectError(models.ErrMalformedControl, d.path,
					"malformed %s line: %q", field.name, line)
			}
			digest, filename := parts[0], parts[2]
			size, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return models.NewInspectError(models.ErrMalformedControl, d.path,
					"malformed size in %s line: %q", field.name, line)
			}

			entry, ok := byName[filename]
			if !ok {
				entry = &ManifestEntry{
					Filename: filename,
					Size:     size,
					Digests:  make(map[string]string),
				}
				byName[filename] = entry
				d.manifest = append(d.manifest, entry)
			} else if entry.Size != size {
				return models.NewInspectError(models.ErrMalformedControl, d.path,
					"size of %s disagrees between manifest fields: %d != %d",
					filename, entry.Size, size)
			}
			entry.Digests[field.algorithm] = digest
		}
	}

	logrus.Debugf("parsed %d manifest entries from %s", len(d.manifest), d.path)
	return nil
}

// Headers returns the document's control message.
func (d *SourceDescription) Headers() *control.Message {
	return d.headers
}

// Directory returns the directory the document was loaded from.
// Referenced files resolve relative to it.
func (d *SourceDescription) Directory() string {
	return d.directory
}

// Manifest returns the merged manifest entries in order of first
// appearance.
func (d *SourceDescription) Manifest() []*ManifestEntry {
	return d.manifest
}

// Resolve maps a manifest filename to its path on disk.
func (d *SourceDescription) Resolve(filename string) string {
	return filepath.Join(d.directory, filename)
}

// MissingFiles returns the manifest filenames that do not exist on disk,
// in manifest order.
func (d *SourceDescription) MissingFiles() []string {
	var missing []string
	for _, entry := range d.manifest {
		if _, err := os.Stat(d.Resolve(entry.Filename)); err != nil {
			missing = append(missing, entry.Filename)
		}
	}
	return missing
}

// ChecksumMismatches recomputes, for every existing manifest file, the
// digests declared for it and returns those that disagree. Each file is
// read once, all of its declared algorithms in one pass.
func (d *SourceDescription) ChecksumMismatches() ([]models.Mismatch, error) {
	var mismatches []models.Mismatch
	for _, entry := range d.manifest {
		path := d.Resolve(entry.Filename)
		if _, err := os.Stat(path); err != nil {
			// A missing file cannot be digested; MissingFiles covers it.
			continue
		}

		algorithms := declaredAlgorithms(entry)
		actual, err := utils.FileDigests(path, algorithms)
		if err != nil {
			return nil, fmt.Errorf("digesting %s: %w", path, err)
		}

		for _, algorithm := range algorithms {
			expected := entry.Digests[algorithm]
			if actual[algorithm] != expected {
				logrus.Debugf("%s: %s digest mismatch", entry.Filename, algorithm)
				mismatches = append(mismatches, models.Mismatch{
					Filename:  entry.Filename,
					Algorithm: algorithm,
					Expected:  expected,
					Actual:    actual[algorithm],
				})
			}
		}
	}
	return mismatches, nil
}

// Validate checks the whole manifest against the filesystem. Missing
// files take precedence over checksum mismatches.
func (d *SourceDescription) Validate() error {
	if missing := d.MissingFiles(); len(missing) > 0 {
		return &models.MissingFilesError{Files: missing}
	}

	mismatches, err := d.ChecksumMismatches()
	if err != nil {
		return err
	}
	if len(mismatches) > 0 {
		return &models.BadChecksumsError{Mismatches: mismatches}
	}
	return nil
}

// declaredAlgorithms lists an entry's algorithms in manifest field order.
func declaredAlgorithms(entry *ManifestEntry) []string {
	var algorithms []string
	for _, field := range manifestFields {
		if _, ok := entry.Digests[field.algorithm]; ok {
			algorithms = append(algorithms, field.algorithm)
		}
	}
	return algorithms
}
