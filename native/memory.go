package native

import "unsafe"

// Helpers for copying out of native-owned memory (KindOpaque values).
// Every function copies: the returned Go value never aliases the
// native buffer, so the caller can relinquish it immediately.

// GoString copies a NUL-terminated C string at addr. A zero address
// yields the empty string.
func GoString(addr uintptr) string {
	if addr == 0 {
		return ""
	}
	p := (*byte)(unsafe.Pointer(addr))
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	if n == 0 {
		return ""
	}
	return string(unsafe.Slice(p, n))
}

// GoBytes copies n bytes at addr.
func GoBytes(addr uintptr, n uint) []byte {
	if addr == 0 || n == 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(addr)), n))
	return out
}

// GoStringArray copies n C strings out of a native array of char
// pointers at addr.
func GoStringArray(addr uintptr, n uint) []string {
	if addr == 0 || n == 0 {
		return nil
	}
	ptrs := unsafe.Slice((*uintptr)(unsafe.Pointer(addr)), n)
	out := make([]string, 0, n)
	for _, p := range ptrs {
		out = append(out, GoString(p))
	}
	return out
}

// BlobPointer returns the KindBlob argument for a byte slice. The
// slice must be kept alive by the caller for the call duration; the
// dispatcher guarantees this for arguments it marshals.
func BlobPointer(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}
