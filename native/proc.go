package native

import (
	"reflect"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/ppawlak/pystacia/errors"
)

// proc is a symbol resolved from a dlopen'd library. The trampoline is
// built on first Attach and reused for every later call.
type proc struct {
	symbol string
	addr   uintptr

	mu       sync.Mutex
	attached bool
	contract Contract
	fn       reflect.Value
}

func (p *proc) Attach(c Contract) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// First attachment wins; the contract is deterministic so a
	// repeat attachment is redundant work, not a conflict.
	if p.attached {
		return nil
	}

	in := make([]reflect.Type, 0, len(c.Args))
	for i, k := range c.Args {
		t := k.GoType()
		if t == nil {
			return errors.New(errors.PhaseBind, errors.KindInvalidInput).
				Symbol(p.symbol).
				Detail("argument %d has non-marshalable kind %s", i, k).
				Build()
		}
		in = append(in, t)
	}

	var out []reflect.Type
	if t := c.Result.GoType(); t != nil {
		out = []reflect.Type{t}
	}

	fnPtr := reflect.New(reflect.FuncOf(in, out, false))
	purego.RegisterFunc(fnPtr.Interface(), p.addr)

	p.fn = fnPtr.Elem()
	p.contract = c
	p.attached = true
	return nil
}

func (p *proc) Attached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attached
}

func (p *proc) Contract() Contract {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.contract
}

func (p *proc) Call(args ...any) (any, error) {
	p.mu.Lock()
	attached, fn := p.attached, p.fn
	p.mu.Unlock()

	if !attached {
		return nil, errors.New(errors.PhaseCall, errors.KindNotInitialized).
			Symbol(p.symbol).
			Detail("symbol called before contract attachment").
			Build()
	}

	in, err := coerceArgs(p.symbol, paramTypes(fn.Type()), args)
	if err != nil {
		return nil, err
	}

	out := fn.Call(in)
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

func paramTypes(t reflect.Type) []reflect.Type {
	params := make([]reflect.Type, t.NumIn())
	for i := range params {
		params[i] = t.In(i)
	}
	return params
}
