package fingerprint

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/zeebo/blake3"
)

// Manifest maps slash-separated relative paths to blake3 content hashes.
type Manifest map[string]string

// File computes the blake3 hash of a single file's contents
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// BuildManifest hashes every regular file under dir. Paths are recorded
// relative to dir with forward slashes so manifests compare across
// platforms. A missing dir yields an empty manifest: phase outputs that
// were never generated hash the same as an empty directory.
func BuildManifest(dir string) (Manifest, error) {
	manifest := Manifest{}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return manifest, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		hash, err := File(path)
		if err != nil {
			return err
		}

		manifest[filepath.ToSlash(rel)] = hash
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	return manifest, nil
}

// TreeHash combines a manifest into a single stable hash. Entries are
// folded in path order, so two manifests with identical contents always
// produce the same value.
func (m Manifest) TreeHash() string {
	paths := make([]string, 0, len(m))
	for path := range m {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	hasher := blake3.New()
	for _, path := range paths {
		hasher.Write([]byte(path))
		hasher.Write([]byte{0})
		hasher.Write([]byte(m[path]))
		hasher.Write([]byte{'\n'})
	}

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// Tree computes the combined hash of every file under dir
func Tree(dir string) (string, error) {
	manifest, err := BuildManifest(dir)
	if err != nil {
		return "", err
	}
	return manifest.TreeHash(), nil
}

// Diff returns the sorted paths that differ between the two manifests:
// changed hashes, entries missing from other, and entries only in other.
func (m Manifest) Diff(other Manifest) []string {
	var paths []string
	for path, hash := range m {
		if otherHash, ok := other[path]; !ok || otherHash != hash {
			paths = append(paths, path)
		}
	}
	for path := range other {
		if _, ok := m[path]; !ok {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// Equal reports whether both manifests record identical trees
func (m Manifest) Equal(other Manifest) bool {
	return len(m.Diff(other)) == 0
}
