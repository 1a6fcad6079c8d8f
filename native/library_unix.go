//go:build darwin || freebsd || linux || netbsd

package native

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/ppawlak/pystacia/errors"
)

// LibraryPathEnv overrides shared library discovery with an explicit
// path to a MagickWand shared object.
const LibraryPathEnv = "PYSTACIA_LIBRARY"

// Well-known sonames, newest ABI first. Plain libMagickWand last for
// distributions that ship an unversioned symlink.
var wandNames = []string{
	"libMagickWand-7.Q16HDRI",
	"libMagickWand-7.Q16",
	"libMagickWand-6.Q16HDRI",
	"libMagickWand-6.Q16",
	"libMagickWand",
}

func sharedExt() string {
	if runtime.GOOS == "darwin" {
		return ".dylib"
	}
	return ".so"
}

// library wraps a dlopen handle. procs grow monotonically: a symbol
// resolved once stays resolved for the process lifetime.
type library struct {
	name   string
	handle uintptr

	mu    sync.Mutex
	procs map[string]*proc
}

// Open loads one shared library by path or soname.
func Open(path string) (Library, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, errors.LibraryNotFound(fmt.Sprintf("dlopen %s", path), err)
	}
	Logger().Debug("loaded shared library", zap.String("path", path))
	return &library{
		name:   path,
		handle: h,
		procs:  make(map[string]*proc),
	}, nil
}

// Load locates and loads the MagickWand shared library. The
// PYSTACIA_LIBRARY path wins when set; otherwise well-known sonames
// are tried in order. Failure is fatal for the binding: there is no
// retry and nothing works without the library.
func Load() (Library, error) {
	if path := os.Getenv(LibraryPathEnv); path != "" {
		return Open(path)
	}

	var tried []string
	for _, name := range wandNames {
		candidate := name + sharedExt()
		lib, err := Open(candidate)
		if err == nil {
			return lib, nil
		}
		tried = append(tried, candidate)
	}

	return nil, errors.LibraryNotFound(
		fmt.Sprintf("no MagickWand library found (tried %s)", strings.Join(tried, ", ")), nil)
}

func (l *library) Name() string {
	return l.name
}

func (l *library) Lookup(symbol string) (Proc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.procs[symbol]; ok {
		return p, nil
	}

	addr, err := purego.Dlsym(l.handle, symbol)
	if err != nil || addr == 0 {
		return nil, errors.SymbolMissing("", symbol)
	}

	p := &proc{symbol: symbol, addr: addr}
	l.procs[symbol] = p
	return p, nil
}

func (l *library) Close() error {
	return purego.Dlclose(l.handle)
}
