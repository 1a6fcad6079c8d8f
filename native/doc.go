// Package native abstracts the dynamically loaded MagickWand shared
// library behind the Library interface.
//
// The purego-backed implementation locates libMagickWand by its
// well-known names (or the PYSTACIA_LIBRARY override), resolves
// exported symbols with Dlsym, and builds call trampolines the first
// time a symbol's calling contract is attached. StubLibrary provides
// an in-memory substitute backed by plain Go functions so everything
// above this package is testable without ImageMagick installed.
//
// Nothing in this package knows about receiver categories or logical
// operation names; that lives in the api package.
package native
