package revision

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/planctl/planctl/internal/errors"
	"github.com/planctl/planctl/internal/fingerprint"
)

// copyTree copies every regular file under src into dst, preserving the
// relative layout and file modes. A missing src is treated as an empty
// tree.
func copyTree(src, dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// clearDir removes the contents of dir but keeps the directory itself.
func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// restoreTree replaces the contents of dst with the contents of backup.
func restoreTree(backup, dst string) error {
	if err := clearDir(dst); err != nil {
		return err
	}
	return copyTree(backup, dst)
}

// verifyIdentical confirms that two trees hold byte-identical files and
// returns the shared tree hash. A mismatch is a backup failure: the copy
// cannot be trusted as a restore point.
func verifyIdentical(src, dst string) (string, error) {
	srcManifest, err := fingerprint.BuildManifest(src)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRevisionBackupFailed, fmt.Sprintf("fingerprint %s", src), err)
	}
	dstManifest, err := fingerprint.BuildManifest(dst)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRevisionBackupFailed, fmt.Sprintf("fingerprint %s", dst), err)
	}
	if !srcManifest.Equal(dstManifest) {
		diff := srcManifest.Diff(dstManifest)
		return "", errors.New(errors.ErrCodeRevisionBackupFailed,
			fmt.Sprintf("backup does not match phase outputs: %s", strings.Join(diff, ", ")))
	}
	return srcManifest.TreeHash(), nil
}
