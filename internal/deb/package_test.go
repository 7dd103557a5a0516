package deb

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/zstd"
	"github.com/ralt/debinspect/internal/models"
	"github.com/ralt/debinspect/internal/utils"
	"github.com/ulikunitz/xz"
)

const testControl = `Package: testpkg
Version: 1:2.3.4-5
Architecture: amd64
Maintainer: Test Person <test@example.com>
Description: a package for tests
`

// buildControlTar creates a control.tar member body compressed per suffix.
func buildControlTar(t *testing.T, suffix string, controlData []byte) []byte {
	t.Helper()

	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	header := &tar.Header{
		Name:    "./control",
		Size:    int64(len(controlData)),
		Mode:    0644,
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(header); err != nil {
		t.Fatalf("Failed to write tar header: %v", err)
	}
	if _, err := tw.Write(controlData); err != nil {
		t.Fatalf("Failed to write tar body: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Failed to close tar: %v", err)
	}

	var out bytes.Buffer
	switch suffix {
	case "":
		return tarBuf.Bytes()
	case ".gz":
		gw := gzip.NewWriter(&out)
		if _, err := gw.Write(tarBuf.Bytes()); err != nil {
			t.Fatalf("Failed to gzip: %v", err)
		}
		gw.Close()
	case ".xz":
		xw, err := xz.NewWriter(&out)
		if err != nil {
			t.Fatalf("Failed to create xz writer: %v", err)
		}
		if _, err := xw.Write(tarBuf.Bytes()); err != nil {
			t.Fatalf("Failed to xz: %v", err)
		}
		xw.Close()
	case ".zst":
		zw, err := zstd.NewWriter(&out)
		if err != nil {
			t.Fatalf("Failed to create zstd writer: %v", err)
		}
		if _, err := zw.Write(tarBuf.Bytes()); err != nil {
			t.Fatalf("Failed to zstd: %v", err)
		}
		zw.Close()
	default:
		t.Fatalf("Unknown compression suffix %q", suffix)
	}
	return out.Bytes()
}

type arMember struct {
	name string
	body []byte
}

// writeTestDeb assembles a .deb from ar members and writes it to a temp
// file.
func writeTestDeb(t *testing.T, members []arMember) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.deb")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test deb: %v", err)
	}
	defer f.Close()

	aw := ar.NewWriter(f)
	if err := aw.WriteGlobalHeader(); err != nil {
		t.Fatalf("Failed to write ar global header: %v", err)
	}
	for _, m := range members {
		header := &ar.Header{
			Name:    m.name,
			ModTime: time.Now(),
			Mode:    0644,
			Size:    int64(len(m.body)),
		}
		if err := aw.WriteHeader(header); err != nil {
			t.Fatalf("Failed to write ar header for %s: %v", m.name, err)
		}
		if _, err := io.Copy(aw, bytes.NewReader(m.body)); err != nil {
			t.Fatalf("Failed to write ar body for %s: %v", m.name, err)
		}
	}
	return path
}

func standardDeb(t *testing.T, suffix string) string {
	return writeTestDeb(t, []arMember{
		{"debian-binary", []byte("2.0\n")},
		{"control.tar" + suffix, buildControlTar(t, suffix, []byte(testControl))},
		{"data.tar.gz", []byte("irrelevant")},
	})
}

func TestOpenHeaders(t *testing.T) {
	for _, suffix := range []string{"", ".gz", ".xz", ".zst"} {
		name := suffix
		if name == "" {
			name = "uncompressed"
		}
		t.Run(name, func(t *testing.T) {
			pkg, err := Open(standardDeb(t, suffix))
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}

			msg, err := pkg.Headers()
			if err != nil {
				t.Fatalf("Headers failed: %v", err)
			}
			if got := msg.Get("Package"); got != "testpkg" {
				t.Errorf("Get(Package) = %q", got)
			}
			if got := msg.Get("architecture"); got != "amd64" {
				t.Errorf("Get(architecture) = %q", got)
			}

			v, err := pkg.Version()
			if err != nil {
				t.Fatalf("Version failed: %v", err)
			}
			if v.Epoch != 1 || v.Upstream != "2.3.4" || v.Revision != "5" {
				t.Errorf("Version = %+v", v)
			}
		})
	}
}

// TestDigestsWholeFile checks that digests cover the entire .deb file, not
// just the control member.
func TestDigestsWholeFile(t *testing.T) {
	path := standardDeb(t, ".gz")
	pkg, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	sums, err := pkg.Digests()
	if err != nil {
		t.Fatalf("Digests failed: %v", err)
	}

	want, err := utils.CalculateChecksums(path)
	if err != nil {
		t.Fatalf("CalculateChecksums failed: %v", err)
	}
	if *sums != *want {
		t.Errorf("Digests = %+v, want %+v", sums, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if sums.Size != info.Size() {
		t.Errorf("Size = %d, want whole file size %d", sums.Size, info.Size())
	}
}

func TestMissingControlMember(t *testing.T) {
	path := writeTestDeb(t, []arMember{
		{"debian-binary", []byte("2.0\n")},
		{"data.tar.gz", []byte("irrelevant")},
	})
	pkg, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	_, err = pkg.Headers()
	var ierr *models.InspectError
	if !errors.As(err, &ierr) || ierr.Type != models.ErrMissingControlFile {
		t.Errorf("Headers error = %v, want MissingControlFile", err)
	}
}

func TestUnsupportedCompression(t *testing.T) {
	path := writeTestDeb(t, []arMember{
		{"debian-binary", []byte("2.0\n")},
		{"control.tar.lzma", []byte("whatever")},
	})
	pkg, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	_, err = pkg.Headers()
	var ierr *models.InspectError
	if !errors.As(err, &ierr) || ierr.Type != models.ErrUnsupportedCompression {
		t.Errorf("Headers error = %v, want UnsupportedCompression", err)
	}
}

func TestMalformedContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-ar.deb")
	if err := os.WriteFile(path, []byte("this is not an ar archive at all\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	pkg, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := pkg.Headers(); err == nil {
		t.Error("Headers succeeded on a non-ar file")
	}
}

func TestMissingRequiredField(t *testing.T) {
	partial := "Package: testpkg\nVersion: 1.0\n"
	path := writeTestDeb(t, []arMember{
		{"debian-binary", []byte("2.0\n")},
		{"control.tar.gz", buildControlTar(t, ".gz", []byte(partial))},
	})

	pkg, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_, err = pkg.Headers()
	var ierr *models.InspectError
	if !errors.As(err, &ierr) || ierr.Type != models.ErrMissingRequiredField {
		t.Errorf("Headers error = %v, want MissingRequiredField", err)
	}

	tolerant, err := Open(path, IgnoreMissing())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	msg, err := tolerant.Headers()
	if err != nil {
		t.Fatalf("Headers with IgnoreMissing failed: %v", err)
	}
	if got := msg.Get("Package"); got != "testpkg" {
		t.Errorf("Get(Package) = %q", got)
	}
}

func TestCompareVersionWith(t *testing.T) {
	pkg, err := Open(standardDeb(t, ".gz"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// package version is 1:2.3.4-5
	tests := []struct {
		other string
		want  int
	}{
		{"1:2.3.4-5", 0},
		{"1:2.3.4-4", 1},
		{"2:0.1", -1},
		{"9.9", 1},
	}
	for _, tt := range tests {
		got, err := pkg.CompareVersionWith(tt.other)
		if err != nil {
			t.Errorf("CompareVersionWith(%q) failed: %v", tt.other, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CompareVersionWith(%q) = %d, want %d", tt.other, got, tt.want)
		}
	}
}

func TestControlString(t *testing.T) {
	pkg, err := Open(standardDeb(t, ""))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	s, err := pkg.ControlString()
	if err != nil {
		t.Fatalf("ControlString failed: %v", err)
	}
	if s != testControl {
		t.Errorf("ControlString = %q, want %q", s, testControl)
	}
}
