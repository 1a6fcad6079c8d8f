package native

import (
	"reflect"

	"github.com/ppawlak/pystacia/errors"
)

// coerceArgs converts already-normalized call arguments into the
// concrete parameter types of a trampoline or stub function. Numeric
// widening (int literal into size_t, int into double and so on) is
// performed here; anything else must already be the right type.
func coerceArgs(symbol string, params []reflect.Type, args []any) ([]reflect.Value, error) {
	if len(args) != len(params) {
		return nil, errors.New(errors.PhaseCall, errors.KindInvalidInput).
			Symbol(symbol).
			Detail("argument count mismatch: got %d, want %d", len(args), len(params)).
			Build()
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		pt := params[i]

		if arg == nil {
			in[i] = reflect.Zero(pt)
			continue
		}

		v := reflect.ValueOf(arg)
		switch {
		case v.Type() == pt:
			in[i] = v
		case v.Type().ConvertibleTo(pt) && convertSafe(v.Type(), pt):
			in[i] = v.Convert(pt)
		default:
			return nil, errors.New(errors.PhaseCall, errors.KindInvalidInput).
				Symbol(symbol).
				Detail("argument %d: cannot pass %s as %s", i, v.Type(), pt).
				Build()
		}
	}
	return in, nil
}

// convertSafe restricts reflect conversions to numeric widening so a
// string never silently becomes an integer or vice versa.
func convertSafe(from, to reflect.Type) bool {
	return isNumeric(from.Kind()) && isNumeric(to.Kind())
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
