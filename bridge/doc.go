// Package bridge enforces the concurrency discipline the native
// library requires.
//
// Not every MagickWand build tolerates calls from arbitrary threads,
// so by default every native call is funneled onto one dedicated
// worker goroutine and the caller blocks until its result comes back.
// Setting PYSTACIA_IMPL=simple opts into direct synchronous calls for
// deployments where the library's own thread-safety is trusted.
//
// The policy is chosen once per process and never reselected.
package bridge
