package main

import "os"

// fsReader implements engine.Reader against the real filesystem, the one
// collaborator the core leaves to its host. A miss of any kind (permission,
// not-found, directory) is folded into the same ("", false) contract the
// engine already treats as a warning-worthy empty read.
func fsReader(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}
