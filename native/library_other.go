//go:build !(darwin || freebsd || linux || netbsd)

package native

import "github.com/ppawlak/pystacia/errors"

const LibraryPathEnv = "PYSTACIA_LIBRARY"

func Open(path string) (Library, error) {
	return nil, errors.Unsupported(errors.PhaseLoad, "dynamic loading not supported on this platform")
}

func Load() (Library, error) {
	return nil, errors.Unsupported(errors.PhaseLoad, "dynamic loading not supported on this platform")
}
