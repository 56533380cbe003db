package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const modulePath = "github.com/anoideaopen/fastreflect"

// BuildInfo returns the build information
func BuildInfo() (*debug.BuildInfo, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, fmt.Errorf("fetching build info failed")
	}

	if bi == nil {
		return nil, fmt.Errorf("build information is empty")
	}

	return bi, nil
}

// Version returns the version of the module linked into the running binary,
// "(devel)" when it is built from a working tree.
func Version() string {
	bi, err := BuildInfo()
	if err != nil {
		return "(unknown)"
	}

	if bi.Main.Path == modulePath {
		return bi.Main.Version
	}

	for _, dep := range bi.Deps {
		if dep.Path == modulePath {
			return dep.Version
		}
	}

	return "(devel)"
}

// Runtime describes the Go runtime the library runs on
func Runtime() map[string]string {
	return map[string]string{
		"go":     runtime.Version(),
		"os":     runtime.GOOS,
		"arch":   runtime.GOARCH,
		"cpus":   fmt.Sprint(runtime.NumCPU()),
		"module": Version(),
	}
}
