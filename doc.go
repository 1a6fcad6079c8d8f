// Package pystacia provides dynamic Go bindings to the MagickWand
// image library, loaded at runtime without cgo.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	pystacia/            Root package with default-runtime convenience entry points
//	├── api/             Symbol descriptor table, lazy binder and call dispatcher
//	├── native/          Shared-library loading and dynamic call trampolines
//	├── bridge/          Execution bridge with direct and funneled policies
//	├── resource/        Lifecycle guard for native handles
//	├── image/           Image constructors, transforms and properties
//	├── pixel/           Pixel wand color values
//	├── enum/            Version-gated mnemonic to native value mapping
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Read, transform and write an image:
//
//	im, err := pystacia.Read("input.jpg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer im.Close()
//
//	if err := im.Rescale(640, 0, "", 0); err != nil {
//	    log.Fatal(err)
//	}
//	if err := im.Write("output.png"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Native Library Discovery
//
// The shared library is located by well-known sonames at first use.
// Set PYSTACIA_LIBRARY to load a specific file instead. Every native
// call runs under an execution bridge: the default policy funnels
// calls through a dedicated worker thread, PYSTACIA_IMPL=SIMPLE
// dispatches on the calling goroutine.
//
// # Thread Safety
//
// The runtime, binder and bridge are safe for concurrent use.
// Individual Image and Pixel values are NOT thread-safe and should be
// used by a single goroutine, or access must be synchronized.
//
// # Resource Model
//
// Images and pixels hold native wands. Close releases the wand and is
// idempotent; any operation on a closed value fails with a
// closed_resource error before the native layer is touched. Clone is
// the only way to copy a handle.
package pystacia
