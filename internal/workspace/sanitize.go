package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/infracollect/dicomcheck/internal/engine"
	"github.com/spf13/afero"
)

// DefaultStripChars are removed from every name under a workspace.
const DefaultStripChars = "# "

// SanitizeName removes every character in chars from name.
func SanitizeName(name, chars string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(chars, r) {
			return -1
		}
		return r
	}, name)
}

type visit struct {
	path     string
	expanded bool
}

// Sanitize renames every file and directory below root whose name contains
// one of chars. Entries are handled post-order: a directory is renamed only
// after all of its descendants, so paths computed from the original tree stay
// valid for the whole walk. Root itself is never renamed.
//
// An entry whose sanitized name already exists is not overwritten; Sanitize
// stops with a *engine.NameCollisionError. It returns the number of renames.
func Sanitize(fs afero.Fs, root, chars string) (int, error) {
	if chars == "" {
		return 0, nil
	}

	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", root, err)
	}

	stack := make([]visit, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		stack = append(stack, visit{path: filepath.Join(root, entries[i].Name()), expanded: !entries[i].IsDir()})
	}

	renamed := 0
	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if !top.expanded {
			top.expanded = true
			children, err := afero.ReadDir(fs, top.path)
			if err != nil {
				return renamed, fmt.Errorf("failed to read %s: %w", top.path, err)
			}
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, visit{
					path:     filepath.Join(top.path, children[i].Name()),
					expanded: !children[i].IsDir(),
				})
			}
			continue
		}

		path := top.path
		stack = stack[:len(stack)-1]

		ok, err := renameSanitized(fs, path, chars)
		if err != nil {
			return renamed, err
		}
		if ok {
			renamed++
		}
	}

	return renamed, nil
}

func renameSanitized(fs afero.Fs, path, chars string) (bool, error) {
	dir, name := filepath.Split(path)
	clean := SanitizeName(name, chars)
	if clean == name {
		return false, nil
	}

	if clean == "" {
		return false, fmt.Errorf("cannot rename %s: sanitized name is empty", path)
	}
	target := filepath.Join(dir, clean)

	if _, err := fs.Stat(target); err == nil {
		return false, &engine.NameCollisionError{Source: path, Target: target}
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", target, err)
	}

	if err := fs.Rename(path, target); err != nil {
		return false, fmt.Errorf("failed to rename %s to %s: %w", path, target, err)
	}
	return true, nil
}
