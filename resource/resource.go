package resource

import (
	"sync"

	"github.com/ppawlak/pystacia/api"
	"github.com/ppawlak/pystacia/errors"
)

// Resource guards one native wand object. Exactly one Resource owns
// one native object: cloning duplicates at the native layer and
// yields a new, independently owned Resource. The zero value is not
// usable; construct through Alloc or Clone. Resources are not
// copyable by assignment.
type Resource struct {
	rt      *api.Runtime
	opCat   api.Category // receiver category for operations
	ctorCat api.Category // category holding new/clone/destroy

	mu     sync.Mutex
	ptr    uintptr
	closed bool
}

// Alloc creates a new native object through the constructor
// category's "new" symbol.
func Alloc(rt *api.Runtime, opCat, ctorCat api.Category) (*Resource, error) {
	v, err := rt.CallStatic(ctorCat, "new")
	if err != nil {
		return nil, err
	}
	ptr, _ := v.(uintptr)
	if ptr == 0 {
		return nil, errors.New(errors.PhaseResource, errors.KindOperationFailed).
			Category(ctorCat.String()).
			Detail("native allocation returned a null handle").
			Build()
	}
	return &Resource{rt: rt, opCat: opCat, ctorCat: ctorCat, ptr: ptr}, nil
}

// adopt wraps an already-allocated native pointer, taking ownership.
func adopt(rt *api.Runtime, opCat, ctorCat api.Category, ptr uintptr) *Resource {
	return &Resource{rt: rt, opCat: opCat, ctorCat: ctorCat, ptr: ptr}
}

// Runtime returns the runtime this resource dispatches through.
func (r *Resource) Runtime() *api.Runtime {
	return r.rt
}

// Category implements api.Handle.
func (r *Resource) Category() api.Category {
	return r.opCat
}

// Raw implements api.Handle. Only the dispatcher's unwrap step should
// consume the returned pointer; it never escapes otherwise.
func (r *Resource) Raw() (uintptr, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, errors.ClosedResource(r.opCat.String())
	}
	return r.ptr, nil
}

// Closed reports whether the native object has been released.
func (r *Resource) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Call dispatches an operation with this resource as the receiver.
// After Close it fails with closed_resource before reaching the
// native layer.
func (r *Resource) Call(name string, args ...any) (any, error) {
	return r.rt.Call(r, name, args...)
}

// Clone duplicates the native object and returns a new independent
// Resource. Releasing the original leaves the clone fully usable.
func (r *Resource) Clone() (*Resource, error) {
	if _, err := r.Raw(); err != nil {
		return nil, err
	}
	v, err := r.rt.CallStatic(r.ctorCat, "clone", r)
	if err != nil {
		return nil, err
	}
	ptr, _ := v.(uintptr)
	if ptr == 0 {
		return nil, errors.New(errors.PhaseResource, errors.KindOperationFailed).
			Category(r.ctorCat.String()).
			Detail("native clone returned a null handle").
			Build()
	}
	return adopt(r.rt, r.opCat, r.ctorCat, ptr), nil
}

// Close releases the native object through the destructor symbol and
// clears the pointer. Idempotent: a second Close is a no-op, never a
// double free.
func (r *Resource) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	ptr := r.ptr
	r.ptr = 0
	r.closed = true
	r.mu.Unlock()

	_, err := r.rt.CallStatic(r.ctorCat, "destroy", ptr)
	return err
}

// Replace swaps the owned native pointer for a new one, releasing the
// old object. Used by operations whose native call hands back a fresh
// wand (MagickFxImage).
func (r *Resource) Replace(ptr uintptr) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errors.ClosedResource(r.opCat.String())
	}
	old := r.ptr
	r.ptr = ptr
	r.mu.Unlock()

	_, err := r.rt.CallStatic(r.ctorCat, "destroy", old)
	return err
}

// Adopt wraps an externally produced native pointer (a wand returned
// by a native operation) in a new guard.
func Adopt(rt *api.Runtime, opCat, ctorCat api.Category, ptr uintptr) (*Resource, error) {
	if ptr == 0 {
		return nil, errors.InvalidInput(errors.PhaseResource, "cannot adopt a null handle")
	}
	return adopt(rt, opCat, ctorCat, ptr), nil
}
