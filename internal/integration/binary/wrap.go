// Package binary locates the external tools this program shells out to.
package binary

import (
	"os/exec"
)

// Available reports whether binName can be found in the system PATH, and where.
func Available(binName string) (string, bool) {
	path, err := exec.LookPath(binName)

	return path, err == nil
}
