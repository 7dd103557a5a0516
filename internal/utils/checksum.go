package utils

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"sort"
)

// Checksum contains the standard checksums and size of a file
type Checksum struct {
	MD5    string
	SHA1   string
	SHA256 string
	Size   int64
}

// Hashers maps a digest algorithm name to its constructor. The dsc
// validator digests each file with exactly the algorithms its manifest
// declares, so the set is a table rather than a switch.
var Hashers = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
}

// Algorithms returns the supported algorithm names, sorted.
func Algorithms() []string {
	names := make([]string, 0, len(Hashers))
	for name := range Hashers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CalculateChecksums calculates all checksums for a file in a single pass
func CalculateChecksums(path string) (*Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Get file info for size
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	md5Hash := md5.New()
	sha1Hash := sha1.New()
	sha256Hash := sha256.New()

	// Use MultiWriter to calculate all hashes at once
	multiWriter := io.MultiWriter(md5Hash, sha1Hash, sha256Hash)

	if _, err := io.Copy(multiWriter, f); err != nil {
		return nil, err
	}

	return &Checksum{
		MD5:    hex.EncodeToString(md5Hash.Sum(nil)),
		SHA1:   hex.EncodeToString(sha1Hash.Sum(nil)),
		SHA256: hex.EncodeToString(sha256Hash.Sum(nil)),
		Size:   info.Size(),
	}, nil
}

// FileDigests computes the named digests of a file in a single pass and
// returns them keyed by algorithm name.
func FileDigests(path string, algorithms []string) (map[string]string, error) {
	hashes := make(map[string]hash.Hash, len(algorithms))
	writers := make([]io.Writer, 0, len(algorithms))
	for _, name := range algorithms {
		newHash, ok := Hashers[name]
		if !ok {
			return nil, fmt.Errorf("unsupported digest algorithm: %s", name)
		}
		h := newHash()
		hashes[name] = h
		writers = append(writers, h)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := io.Copy(io.MultiWriter(writers...), f); err != nil {
		return nil, err
	}

	digests := make(map[string]string, len(hashes))
	for name, h := range hashes {
		digests[name] = hex.EncodeToString(h.Sum(nil))
	}
	return digests, nil
}
