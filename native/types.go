package native

import (
	"reflect"
	"unsafe"
)

// Kind identifies a native argument or result type. The set is closed:
// every MagickWand entry point is expressible with these.
type Kind uint8

const (
	// KindVoid is the absent result type. Not valid as an argument.
	KindVoid Kind = iota
	// KindHandle is an opaque wand pointer owned by the native library.
	KindHandle
	// KindString is a NUL-terminated C string copied from Go memory.
	KindString
	// KindBlob is a pointer into Go memory, valid for the call duration.
	KindBlob
	// KindOpaque is a raw native address (native-owned buffers,
	// exception descriptions). Never points into Go memory.
	KindOpaque
	// KindSize is the native size_t.
	KindSize
	// KindSSize is the native ssize_t.
	KindSSize
	// KindUInt is the native unsigned int.
	KindUInt
	// KindEnum is a native enumeration constant.
	KindEnum
	// KindDouble is the native double.
	KindDouble
	// KindBoolean is the MagickBooleanType: zero reports failure and a
	// paired exception query carries the description.
	KindBoolean
)

var kindNames = map[Kind]string{
	KindVoid:    "void",
	KindHandle:  "handle",
	KindString:  "string",
	KindBlob:    "blob",
	KindOpaque:  "opaque",
	KindSize:    "size",
	KindSSize:   "ssize",
	KindUInt:    "uint",
	KindEnum:    "enum",
	KindDouble:  "double",
	KindBoolean: "boolean",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// GoType returns the Go representation used when marshaling this kind
// across the native boundary, or nil for KindVoid.
func (k Kind) GoType() reflect.Type {
	switch k {
	case KindHandle, KindOpaque:
		return reflect.TypeOf(uintptr(0))
	case KindString:
		return reflect.TypeOf("")
	case KindBlob:
		return reflect.TypeOf(unsafe.Pointer(nil))
	case KindSize:
		return reflect.TypeOf(uint(0))
	case KindSSize:
		return reflect.TypeOf(int(0))
	case KindUInt:
		return reflect.TypeOf(uint32(0))
	case KindEnum, KindBoolean:
		return reflect.TypeOf(int32(0))
	case KindDouble:
		return reflect.TypeOf(float64(0))
	}
	return nil
}

// Contract is the argument/result marshaling descriptor attached to a
// symbol on first use. Once attached it never changes for the life of
// the process.
type Contract struct {
	Args   []Kind
	Result Kind
}

// Proc is a resolved native entry point. Attach fixes its calling
// contract; Call marshals arguments and invokes it. Attach is
// idempotent and safe to repeat concurrently: the first attachment
// wins and identical redundant attachments are harmless.
type Proc interface {
	Attach(c Contract) error
	Attached() bool
	Contract() Contract
	Call(args ...any) (any, error)
}

// Library is one loaded shared library. Implementations: the
// purego-backed loader and StubLibrary for tests.
type Library interface {
	// Name reports what was loaded, for diagnostics.
	Name() string

	// Lookup resolves an exported symbol. A missing symbol yields an
	// error matching errors.KindSymbolMissing.
	Lookup(symbol string) (Proc, error)

	// Close releases the library from the process.
	Close() error
}
