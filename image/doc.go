// Package image is the user-facing image surface: constructors that
// decode files, blobs and raw channel data, and the transform
// operations the native library exposes on an image wand. Every
// method is a thin caller of the dispatch layer; failure detection
// and lifecycle rules live below it.
package image
