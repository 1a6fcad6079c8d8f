// Package resource gives every native wand deterministic
// acquire/clone/release semantics.
//
// A Resource owns exactly one native object. Clone performs a deep
// duplicate at the native layer, so no two guards ever share
// ownership. Close is idempotent and clears the wrapped pointer; any
// operation on a closed guard fails with a closed_resource error
// before the native layer is touched. The raw pointer never leaves
// the guard except through the dispatcher's unwrap step.
package resource
