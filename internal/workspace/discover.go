package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultExtension is the suffix of candidate imaging files.
const DefaultExtension = ".dcm"

// Discover walks root and returns the absolute path of every regular file
// whose name ends in ext, compared case-insensitively. Paths are returned in
// walk order.
func Discover(fs afero.Fs, root, ext string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	ext = strings.ToLower(ext)

	var files []string
	err = afero.Walk(fs, absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(info.Name()), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", absRoot, err)
	}

	return files, nil
}
