// tracecollector/utility/path.go
package utility

import (
	"os"
	"path/filepath"
)

// DefaultProbeObject is the compiled probe program shipped next to the binary.
const DefaultProbeObject = "tracepkt.o"

// GetProjectRoot returns the directory the running executable lives in.
func GetProjectRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// ResolveProbeObject returns path unchanged when it is set, otherwise the
// default probe object next to the executable.
func ResolveProbeObject(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	root, err := GetProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, DefaultProbeObject), nil
}
