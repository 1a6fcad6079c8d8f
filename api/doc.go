// Package api is the core of the MagickWand binding: the symbol
// descriptor table, the lazy signature binder, and the call
// dispatcher.
//
// The descriptor table maps (category, logical name) pairs to exported
// symbol names and calling contracts; it is pure data, usable before
// the library loads. The binder resolves symbols lazily and attaches
// each contract exactly once, caching the bound symbol for the process
// lifetime. The dispatcher is the single choke point every native call
// goes through: it unwraps resource handles, marshals arguments,
// executes the call under the bridge's affinity policy, decodes the
// result, and turns a false boolean-success flag into a structured
// error carrying the library's own exception message.
//
//	rt, err := api.Default()
//	// ...
//	v, err := rt.Call(img, "resize", 640, 480, filterValue, 1.0)
//
// Nothing outside the dispatcher touches native memory.
package api
