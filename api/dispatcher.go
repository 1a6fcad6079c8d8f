package api

import (
	"runtime"
	"unsafe"

	"go.uber.org/zap"

	"github.com/ppawlak/pystacia/errors"
	"github.com/ppawlak/pystacia/native"
)

// Call dispatches a handle-receiver operation. The receiver's raw
// pointer is unwrapped exactly once and prepended to the argument
// list; a closed handle fails here, before the native layer is
// touched.
func (r *Runtime) Call(recv Handle, name string, args ...any) (any, error) {
	return r.dispatch(recv.Category(), recv, name, args, true)
}

// CallStatic dispatches an operation with no receiver (constructor,
// destructor and library-global categories).
func (r *Runtime) CallStatic(cat Category, name string, args ...any) (any, error) {
	return r.dispatch(cat, nil, name, args, true)
}

// CallAs dispatches an operation from a different category against
// the given receiver. Raw reads use it to apply magick-category
// setup calls (set_size, set_format) to an image handle.
func (r *Runtime) CallAs(cat Category, recv Handle, name string, args ...any) (any, error) {
	return r.dispatch(cat, recv, name, args, true)
}

// dispatch is the single choke point every native invocation goes
// through: init, bind, marshal, execute under the bridge policy,
// decode, and uniform error detection.
func (r *Runtime) dispatch(cat Category, recv Handle, name string, args []any, init bool) (any, error) {
	if init {
		if err := r.Init(); err != nil {
			return nil, err
		}
	}

	bs, err := r.resolve(cat, name)
	if err != nil {
		return nil, err
	}

	full := make([]any, 0, len(args)+1)
	var origin uintptr
	if recv != nil {
		ptr, err := recv.Raw()
		if err != nil {
			return nil, err
		}
		origin = ptr
		full = append(full, ptr)
	}

	for i, arg := range args {
		pos := len(full)
		if pos >= len(bs.contract.Args) {
			return nil, errors.New(errors.PhaseCall, errors.KindInvalidInput).
				Symbol(bs.name).
				Detail("argument %d exceeds contract arity %d", i, len(bs.contract.Args)).
				Build()
		}
		marshaled, err := marshalArg(bs.contract.Args[pos], arg)
		if err != nil {
			// Raw() already reports closed_resource; pass it through.
			return nil, err
		}
		full = append(full, marshaled)
	}

	Logger().Debug("calling", zap.String("symbol", bs.name))

	result, err := r.br.Do(func() (any, error) {
		return bs.proc.Call(full...)
	})
	// Blob arguments point into Go memory owned by the caller's
	// values; keep them reachable until the native call returned.
	runtime.KeepAlive(args)
	if err != nil {
		return nil, err
	}

	return r.decode(bs, origin, result)
}

// marshalArg normalizes one argument for the native layer: resource
// handles unwrap to their raw pointer, byte slices become blob
// pointers, booleans become the native flag. Everything else passes
// through for the proc's numeric coercion.
func marshalArg(kind native.Kind, arg any) (any, error) {
	if h, ok := arg.(Handle); ok {
		return h.Raw()
	}

	switch kind {
	case native.KindBlob:
		switch v := arg.(type) {
		case []byte:
			return native.BlobPointer(v), nil
		case unsafe.Pointer, nil:
			return arg, nil
		}
	case native.KindBoolean, native.KindEnum:
		if v, ok := arg.(bool); ok {
			if v {
				return int32(1), nil
			}
			return int32(0), nil
		}
	case native.KindString:
		if v, ok := arg.(string); ok {
			return v, nil
		}
	}
	return arg, nil
}

// decode translates the raw native result per the bound contract. A
// false boolean-success flag always resolves to an operation_failed
// error carrying the library's own description.
func (r *Runtime) decode(bs *boundSymbol, origin uintptr, result any) (any, error) {
	switch bs.contract.Result {
	case native.KindVoid:
		return nil, nil
	case native.KindEnum:
		return int(result.(int32)), nil
	case native.KindBoolean:
		if result.(int32) == 0 {
			return nil, errors.OperationFailed(bs.name, r.fetchException(origin))
		}
		return true, nil
	default:
		return result, nil
	}
}

// fetchException queries the native exception facility tied to the
// originating handle, copies the description, and releases the
// native-owned buffer. An empty string falls back to the generic
// operation_failed message upstream.
func (r *Runtime) fetchException(origin uintptr) string {
	if origin == 0 {
		return ""
	}

	var excType int32
	desc, err := r.dispatch(CategoryMagick, rawHandle{CategoryMagick, origin},
		"get_exception", []any{unsafe.Pointer(&excType)}, false)
	if err != nil {
		Logger().Debug("exception query failed", zap.Error(err))
		return ""
	}

	addr, ok := desc.(uintptr)
	if !ok || addr == 0 {
		return ""
	}

	msg := native.GoString(addr)
	if _, err := r.dispatch(CategoryMagickGlobal, nil,
		"relinquish_memory", []any{addr}, false); err != nil {
		Logger().Debug("relinquish failed", zap.Error(err))
	}
	return msg
}
