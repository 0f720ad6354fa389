// Package resolve implements the include search-path resolution helper
// used by the File/Include processor.
package resolve

import "path/filepath"

// Exists reports whether a path can be statted; the host reader supplies
// the real check, so this
// package takes it as a parameter rather than touching the filesystem
// itself.
type Exists func(path string) bool

// Resolve searches dirs in order for filename, joined against each
// directory in turn, and returns the first path that Exists reports as
// present. If filename is already absolute, or no directory yields a hit,
// filename is returned unchanged.
func Resolve(filename string, dirs []string, exists Exists) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	for _, dir := range dirs {
		candidate := Absolute(filename, dir)
		if exists(candidate) {
			return candidate
		}
	}
	return filename
}

// Absolute joins filename onto parent unless filename is already absolute.
func Absolute(filename, parent string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(parent, filename)
}
