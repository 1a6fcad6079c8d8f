package pystacia

import (
	"github.com/ppawlak/pystacia/api"
	"github.com/ppawlak/pystacia/image"
	"github.com/ppawlak/pystacia/pixel"
)

// Read decodes an image file on the process-wide default runtime.
func Read(path string) (*image.Image, error) {
	rt, err := api.Default()
	if err != nil {
		return nil, err
	}
	return image.Read(rt, path)
}

// ReadBlob decodes an in-memory encoded image on the default runtime.
func ReadBlob(blob []byte) (*image.Image, error) {
	rt, err := api.Default()
	if err != nil {
		return nil, err
	}
	return image.ReadBlob(rt, blob)
}

// Blank creates a solid-color image on the default runtime. A nil
// background means fully transparent.
func Blank(width, height uint, background *pixel.Pixel) (*image.Image, error) {
	rt, err := api.Default()
	if err != nil {
		return nil, err
	}
	return image.Blank(rt, width, height, background)
}

// Color allocates a pixel on the default runtime from any color
// specification the native library parses.
func Color(spec string) (*pixel.Pixel, error) {
	rt, err := api.Default()
	if err != nil {
		return nil, err
	}
	return pixel.FromString(rt, spec)
}

// Version reports the loaded MagickWand release string.
func Version() (string, error) {
	rt, err := api.Default()
	if err != nil {
		return "", err
	}
	return rt.VersionString()
}

// Terminate releases the process-wide native state. Idempotent; call
// it once at shutdown.
func Terminate() error {
	rt, err := api.Default()
	if err != nil {
		return err
	}
	return rt.Terminate()
}
