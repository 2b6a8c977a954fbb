// Package archive builds Walk abstraction on top of "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"strings"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to Walk
// The file argument is the zip.File structure for file in archive which satisfies
// match condition. If an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// Walk walks the all files in the archive which satisfy match condition,
// calling walkFn for each item. Entries with path traversal components
// ("..") or absolute paths abort the walk to prevent Zip Slip attacks.
func Walk(archive, pattern string, walkFn WalkFunc) error {
	return walk(archive, func(name string) bool {
		return strings.HasPrefix(name, pattern)
	}, walkFn)
}

// WalkExt walks files whose extension is in exts (case-insensitive, with or
// without the leading dot), calling walkFn for each item.
func WalkExt(archive string, exts []string, walkFn WalkFunc) error {
	normalized := make([]string, 0, len(exts))
	for _, e := range exts {
		normalized = append(normalized, strings.ToLower(strings.TrimPrefix(e, ".")))
	}
	return walk(archive, func(name string) bool {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
		for _, e := range normalized {
			if ext == e {
				return true
			}
		}
		return false
	}, walkFn)
}

func walk(archive string, match func(name string) bool, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && match(name) {
			if err := walkFn(archive, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
