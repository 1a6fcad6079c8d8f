package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // shared library discovery and loading
	PhaseBind     Phase = "bind"     // symbol resolution and contract attachment
	PhaseCall     Phase = "call"     // native call dispatch
	PhaseBridge   Phase = "bridge"   // execution bridge / worker
	PhaseResource Phase = "resource" // handle lifecycle
	PhaseEnum     Phase = "enum"     // mnemonic lookup
)

// Kind categorizes the error
type Kind string

const (
	KindLibraryNotFound Kind = "library_not_found"
	KindSymbolMissing   Kind = "symbol_missing"
	KindOperationFailed Kind = "operation_failed"
	KindClosedResource  Kind = "closed_resource"
	KindNotInitialized  Kind = "not_initialized"
	KindInvalidInput    Kind = "invalid_input"
	KindUnsupported     Kind = "unsupported"
)

// Error is the structured error type used throughout the binding.
// Every public operation either returns a usable value or one of
// these; nothing downstream reinterprets native failure signals.
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Symbol   string // exported native symbol name, when known
	Category string // receiver category, when known
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Category != "" || e.Symbol != "" {
		b.WriteString(" at ")
		if e.Category != "" {
			b.WriteString(e.Category)
			if e.Symbol != "" {
				b.WriteByte('.')
			}
		}
		b.WriteString(e.Symbol)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Symbol sets the native symbol name
func (b *Builder) Symbol(name string) *Builder {
	b.err.Symbol = name
	return b
}

// Category sets the receiver category name
func (b *Builder) Category(name string) *Builder {
	b.err.Category = name
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// LibraryNotFound creates a fatal library discovery error
func LibraryNotFound(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLibraryNotFound,
		Detail: detail,
		Cause:  cause,
	}
}

// SymbolMissing creates an error for a symbol absent from the loaded library
func SymbolMissing(category, symbol string) *Error {
	return &Error{
		Phase:    PhaseBind,
		Kind:     KindSymbolMissing,
		Category: category,
		Symbol:   symbol,
		Detail:   "symbol not exported by loaded library",
	}
}

// OperationFailed creates an error carrying the native library's own
// description of a failed call. An empty message is replaced with a
// generic one so callers always see a non-empty description.
func OperationFailed(symbol, message string) *Error {
	if message == "" {
		message = "native operation failed without description"
	}
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindOperationFailed,
		Symbol: symbol,
		Detail: message,
	}
}

// ClosedResource creates an error for use of a released handle
func ClosedResource(category string) *Error {
	return &Error{
		Phase:    PhaseResource,
		Kind:     KindClosedResource,
		Category: category,
		Detail:   "resource already released",
	}
}

// NotInitialized creates a not-initialized error for missing process state
func NotInitialized(component string) *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
