// Package fsutil locates workspace files on disk.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// WorkspaceExt is the extension of workspace files.
const WorkspaceExt = ".hcl"

// ErrEmptyExt is returned when FindFiles is asked for files without an
// extension.
var ErrEmptyExt = errors.New("fsutil: empty extension")

// FindFiles returns the files under root whose names end in ext, sorted so
// that a workspace always loads in the same order. root may name a single
// file. Dot directories below root (.git, .terraform) are not entered.
func FindFiles(root, ext string) ([]string, error) {
	if ext == "" {
		return nil, ErrEmptyExt
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if strings.HasSuffix(root, ext) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir():
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
		case strings.HasSuffix(d.Name(), ext):
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	slices.Sort(files)
	return files, nil
}
