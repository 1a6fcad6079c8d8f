package api

import (
	"sync"

	"github.com/coreos/go-semver/semver"
	"go.uber.org/zap"

	"github.com/ppawlak/pystacia/bridge"
	"github.com/ppawlak/pystacia/errors"
	"github.com/ppawlak/pystacia/native"
)

// Handle is an owned native object crossing the dispatcher boundary.
// Raw yields the wrapped pointer, or a closed_resource error once the
// handle has been released. The resource package provides the one
// implementation applications derive from.
type Handle interface {
	Category() Category
	Raw() (uintptr, error)
}

// rawHandle lets the dispatcher call handle-receiver symbols on a bare
// pointer it already unwrapped (the exception fetch path).
type rawHandle struct {
	cat Category
	ptr uintptr
}

func (h rawHandle) Category() Category    { return h.cat }
func (h rawHandle) Raw() (uintptr, error) { return h.ptr, nil }

type symbolKey struct {
	cat  Category
	name string
}

// boundSymbol pairs a resolved native proc with its attached contract.
// Cached for the process lifetime; never invalidated.
type boundSymbol struct {
	name     string
	proc     native.Proc
	contract native.Contract
}

// Runtime holds the process-wide bridge state: the loaded library, the
// execution bridge, and the bound-symbol cache. It is explicit state
// rather than ambient globals so the whole core runs against a stub
// library in tests; Default wires the real MagickWand.
type Runtime struct {
	lib native.Library
	br  *bridge.Bridge

	mu    sync.Mutex
	bound map[symbolKey]*boundSymbol

	initOnce sync.Once
	initErr  error
	termOnce sync.Once

	versionOnce sync.Once
	version     *semver.Version
	versionErr  error
}

// NewRuntime creates a runtime over an already loaded library.
func NewRuntime(lib native.Library, br *bridge.Bridge) *Runtime {
	return &Runtime{
		lib:   lib,
		br:    br,
		bound: make(map[symbolKey]*boundSymbol),
	}
}

var (
	defaultRuntime *Runtime
	defaultErr     error
	defaultOnce    sync.Once
)

// Default loads the MagickWand shared library and returns the
// process-wide runtime with the environment-selected bridge policy.
// A load failure is fatal and sticky: every later call reports it.
func Default() (*Runtime, error) {
	defaultOnce.Do(func() {
		lib, err := native.Load()
		if err != nil {
			defaultErr = err
			return
		}
		Logger().Debug("loaded native library", zap.String("library", lib.Name()))
		defaultRuntime = NewRuntime(lib, bridge.Default())
	})
	return defaultRuntime, defaultErr
}

// Library exposes the underlying library for diagnostics.
func (r *Runtime) Library() native.Library {
	return r.lib
}

// Init runs the library's genesis call exactly once. Idempotent;
// every dispatched call triggers it, and the genesis call itself
// goes through the skip-init path to avoid recursion.
func (r *Runtime) Init() error {
	r.initOnce.Do(func() {
		_, r.initErr = r.dispatch(CategoryGlobal, nil, "genesis", nil, false)
	})
	return r.initErr
}

// Terminate runs the terminus call once. Safe to call without a prior
// Init (it becomes a no-op then would still init/terminate cleanly).
// Meant as a process-exit hook, not a mid-session call.
func (r *Runtime) Terminate() error {
	var err error
	r.termOnce.Do(func() {
		_, err = r.dispatch(CategoryGlobal, nil, "terminus", nil, false)
	})
	return err
}

// resolve is the lazy signature binder: it formats the exported
// symbol name, looks it up in the loaded library, and attaches the
// calling contract on first use. Idempotent and safe to race: a
// redundant resolution computes the identical contract.
func (r *Runtime) resolve(cat Category, name string) (*boundSymbol, error) {
	key := symbolKey{cat, name}

	r.mu.Lock()
	if bs, ok := r.bound[key]; ok {
		r.mu.Unlock()
		return bs, nil
	}
	r.mu.Unlock()

	symbol, contract, err := Describe(cat, name)
	if err != nil {
		return nil, err
	}

	proc, err := r.lib.Lookup(symbol)
	if err != nil {
		return nil, errors.SymbolMissing(cat.String(), symbol)
	}

	if !proc.Attached() {
		Logger().Debug("attaching contract",
			zap.String("symbol", symbol),
			zap.Stringer("category", cat))
	}
	if err := proc.Attach(contract); err != nil {
		return nil, err
	}

	bs := &boundSymbol{name: symbol, proc: proc, contract: contract}

	r.mu.Lock()
	if existing, ok := r.bound[key]; ok {
		bs = existing
	} else {
		r.bound[key] = bs
	}
	r.mu.Unlock()

	return bs, nil
}

// Probe reports whether the loaded library exports the named
// operation. This is the no-throw binder path used for
// feature-detection of version-gated symbols: any resolution failure
// counts as unavailable and raises nothing.
func (r *Runtime) Probe(cat Category, name string) bool {
	_, err := r.resolve(cat, name)
	return err == nil
}
