package deb

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/zstd"
	"github.com/ralt/debinspect/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
)

const controlMember = "control.tar"

// decompressor opens a decoding reader over a compressed stream.
type decompressor func(io.Reader) (io.ReadCloser, error)

// decompressors maps a control.tar member suffix to its codec. Supporting
// a new compression means adding a table entry.
var decompressors = map[string]decompressor{
	"":     rawReader,
	".gz":  gzipReader,
	".xz":  xzReader,
	".zst": zstdReader,
}

func rawReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

func gzipReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func xzReader(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(xr), nil
}

func zstdReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return zr.IOReadCloser(), nil
}

// extractControl walks the outer ar archive of a .deb file, locates the
// control.tar member, decompresses it per its suffix and returns the raw
// bytes of the inner "control" file.
func extractControl(debPath string) ([]byte, error) {
	f, err := os.Open(debPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// .deb files are ar archives; the reader validates the global
	// "!<arch>\n" magic and streams member by member.
	arReader := ar.NewReader(f)
	for {
		header, err := arReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, models.NewInspectError(models.ErrMalformedContainer, debPath,
				"reading ar header: %v", err)
		}

		// GNU ar appends a trailing slash to member names.
		name := strings.TrimRight(strings.TrimSpace(header.Name), "/")
		if !strings.HasPrefix(name, controlMember) {
			continue
		}
		logrus.Debugf("found control member %s (%d bytes)", name, header.Size)

		suffix := strings.TrimPrefix(name, controlMember)
		decompress, ok := decompressors[suffix]
		if !ok {
			return nil, models.NewInspectError(models.ErrUnsupportedCompression, debPath,
				"unsupported compression %q for member %s", suffix, name)
		}

		dr, err := decompress(arReader)
		if err != nil {
			return nil, models.NewInspectError(models.ErrMalformedContainer, debPath,
				"decompressing %s: %v", name, err)
		}
		defer dr.Close()

		return readControlFromTar(debPath, dr)
	}

	return nil, models.NewInspectError(models.ErrMissingControlFile, debPath,
		"no %s member in ar archive", controlMember)
}

// readControlFromTar scans the decompressed control archive for the member
// named "control" (possibly prefixed with "./") and returns its bytes.
func readControlFromTar(debPath string, r io.Reader) ([]byte, error) {
	tarReader := tar.NewReader(r)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, models.NewInspectError(models.ErrMalformedContainer, debPath,
				"reading control tar: %v", err)
		}

		if path.Base(header.Name) != "control" {
			continue
		}
		logrus.Debugf("found control file %s", header.Name)

		data, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, models.NewInspectError(models.ErrMalformedContainer, debPath,
				"reading control file: %v", err)
		}
		return data, nil
	}

	return nil, models.NewInspectError(models.ErrMissingControlFile, debPath,
		"no control file in %s", controlMember)
}
