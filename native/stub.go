package native

import (
	"reflect"
	"sync"

	"github.com/ppawlak/pystacia/errors"
)

// StubLibrary is an in-memory Library backed by plain Go functions.
// It substitutes for a real MagickWand build in tests and lets
// feature-detection paths be exercised against any symbol set.
type StubLibrary struct {
	name string

	mu    sync.Mutex
	procs map[string]*stubProc
	calls []string
}

// NewStub creates an empty stub library.
func NewStub(name string) *StubLibrary {
	return &StubLibrary{
		name:  name,
		procs: make(map[string]*stubProc),
	}
}

// Register exposes fn under the exported symbol name. fn must be a
// function; its parameter types stand in for the native signature.
func (l *StubLibrary) Register(symbol string, fn any) *StubLibrary {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic("native: stub symbol " + symbol + " is not a function")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.procs[symbol] = &stubProc{lib: l, symbol: symbol, fn: v}
	return l
}

// Calls returns the symbols invoked so far, in invocation order.
func (l *StubLibrary) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

// ResetCalls clears the invocation log.
func (l *StubLibrary) ResetCalls() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}

func (l *StubLibrary) record(symbol string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, symbol)
}

func (l *StubLibrary) Name() string {
	return l.name
}

func (l *StubLibrary) Lookup(symbol string) (Proc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.procs[symbol]
	if !ok {
		return nil, errors.SymbolMissing("", symbol)
	}
	return p, nil
}

func (l *StubLibrary) Close() error {
	return nil
}

type stubProc struct {
	lib    *StubLibrary
	symbol string
	fn     reflect.Value

	mu       sync.Mutex
	attached bool
	contract Contract
}

func (p *stubProc) Attach(c Contract) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.attached {
		return nil
	}
	if got, want := p.fn.Type().NumIn(), len(c.Args); got != want {
		return errors.New(errors.PhaseBind, errors.KindInvalidInput).
			Symbol(p.symbol).
			Detail("stub arity %d does not match contract arity %d", got, want).
			Build()
	}
	p.contract = c
	p.attached = true
	return nil
}

func (p *stubProc) Attached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attached
}

func (p *stubProc) Contract() Contract {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.contract
}

func (p *stubProc) Call(args ...any) (any, error) {
	p.mu.Lock()
	attached := p.attached
	p.mu.Unlock()
	if !attached {
		return nil, errors.New(errors.PhaseCall, errors.KindNotInitialized).
			Symbol(p.symbol).
			Detail("symbol called before contract attachment").
			Build()
	}

	in, err := coerceArgs(p.symbol, paramTypes(p.fn.Type()), args)
	if err != nil {
		return nil, err
	}

	p.lib.record(p.symbol)

	out := p.fn.Call(in)
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}
