package lib

import (
	"fmt"
	"os"
)

// Exit prints the error and exits the program with code 1
func Exit(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

// ExitCode prints err (if non-nil) and exits with the given code, letting
// callers distinguish more exit statuses than Exit's fixed 1.
func ExitCode(code int, err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(code)
}
