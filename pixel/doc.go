// Package pixel wraps the native pixel wand: a single color value
// with normalized channels. Pixels are resources like any other
// handle and double as arguments to image operations that take a
// color.
package pixel
