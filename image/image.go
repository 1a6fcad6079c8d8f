package image

import (
	"math"
	"unsafe"

	"github.com/coreos/go-semver/semver"

	"github.com/ppawlak/pystacia/api"
	"github.com/ppawlak/pystacia/enum"
	"github.com/ppawlak/pystacia/errors"
	"github.com/ppawlak/pystacia/native"
	"github.com/ppawlak/pystacia/pixel"
	"github.com/ppawlak/pystacia/resource"
)

// Image is a native image wand under lifecycle guard. All operations
// funnel through the dispatcher; none of them interprets native
// results on its own.
type Image struct {
	*resource.Resource
}

// Axis selects the mirror/skew direction.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// RawImage is a decoded image as flat channel data, suitable for
// interchange with in-process consumers.
type RawImage struct {
	Format string `json:"format"`
	Width  uint   `json:"width"`
	Height uint   `json:"height"`
	Depth  uint   `json:"depth"`
	Data   []byte `json:"data"`
}

func alloc(rt *api.Runtime) (*Image, error) {
	res, err := resource.Alloc(rt, api.CategoryImage, api.CategoryWand)
	if err != nil {
		return nil, err
	}
	return &Image{Resource: res}, nil
}

// Read decodes an image from a file path. The format is detected by
// the native library.
func Read(rt *api.Runtime, path string) (*Image, error) {
	im, err := alloc(rt)
	if err != nil {
		return nil, err
	}
	if _, err := im.Call("read", path); err != nil {
		im.Close()
		return nil, err
	}
	return im, nil
}

// ReadBlob decodes an image from an in-memory encoded blob.
func ReadBlob(rt *api.Runtime, blob []byte) (*Image, error) {
	if len(blob) == 0 {
		return nil, errors.InvalidInput(errors.PhaseResource, "empty image blob")
	}
	im, err := alloc(rt)
	if err != nil {
		return nil, err
	}
	if _, err := im.Call("read_blob", blob, uint(len(blob))); err != nil {
		im.Close()
		return nil, err
	}
	return im, nil
}

// ReadRaw wraps flat channel data in an image. Size, depth and
// channel format must be declared up front since raw data carries no
// header.
func ReadRaw(rt *api.Runtime, raw RawImage) (*Image, error) {
	if raw.Width == 0 || raw.Height == 0 {
		return nil, errors.InvalidInput(errors.PhaseResource, "raw image needs explicit dimensions")
	}
	im, err := alloc(rt)
	if err != nil {
		return nil, err
	}
	setup := func() error {
		if _, err := rt.CallAs(api.CategoryMagick, im, "set_size", raw.Width, raw.Height); err != nil {
			return err
		}
		if _, err := rt.CallAs(api.CategoryMagick, im, "set_depth", raw.Depth); err != nil {
			return err
		}
		if _, err := rt.CallAs(api.CategoryMagick, im, "set_format", raw.Format); err != nil {
			return err
		}
		_, err := im.Call("read_blob", raw.Data, uint(len(raw.Data)))
		return err
	}
	if err := setup(); err != nil {
		im.Close()
		return nil, err
	}
	return im, nil
}

// Blank creates a width x height image of one solid color. A nil
// background means fully transparent.
func Blank(rt *api.Runtime, width, height uint, background *pixel.Pixel) (*Image, error) {
	spec := "xc:transparent"
	if background != nil {
		color, err := background.Spec()
		if err != nil {
			return nil, err
		}
		spec = "xc:" + color
	}
	return readSpecial(rt, spec, width, height)
}

// Checkerboard creates the standard transparency-preview pattern.
func Checkerboard(rt *api.Runtime, width, height uint) (*Image, error) {
	return readSpecial(rt, "pattern:checkerboard", width, height)
}

// readSpecial reads one of the library's pseudo-formats with the
// canvas size declared first.
func readSpecial(rt *api.Runtime, spec string, width, height uint) (*Image, error) {
	im, err := alloc(rt)
	if err != nil {
		return nil, err
	}
	if _, err := rt.CallAs(api.CategoryMagick, im, "set_size", width, height); err != nil {
		im.Close()
		return nil, err
	}
	if _, err := im.Call("read", spec); err != nil {
		im.Close()
		return nil, err
	}
	return im, nil
}

// Write encodes the image to a file; the extension picks the format.
func (im *Image) Write(path string) error {
	_, err := im.Call("write", path)
	return err
}

// Blob encodes the image in-memory. A non-empty format overrides the
// current one for the encode only; the previous format is restored.
func (im *Image) Blob(format string) ([]byte, error) {
	return im.Encode(format, "", -1)
}

// Encode is Blob with compression control. A non-empty compression
// mnemonic and a non-negative quality each override the image's
// current setting for this encode only and are restored afterwards.
// Quality interpretation is format-specific: 1 (worst) to 100 (best)
// for JPEG, compression effort for lossless formats.
func (im *Image) Encode(format, compression string, quality int) ([]byte, error) {
	if compression != "" {
		c, err := enum.Lookup(enum.Compression, compression, im.version())
		if err != nil {
			return nil, err
		}
		prev, err := im.Call("get_compression")
		if err != nil {
			return nil, err
		}
		if _, err := im.Call("set_compression", c); err != nil {
			return nil, err
		}
		defer im.Call("set_compression", prev)
	}

	if quality >= 0 {
		prev, err := im.Call("get_compression_quality")
		if err != nil {
			return nil, err
		}
		if _, err := im.Call("set_compression_quality", uint(quality)); err != nil {
			return nil, err
		}
		defer im.Call("set_compression_quality", prev)
	}

	if format != "" {
		prev, err := im.Format()
		if err != nil {
			return nil, err
		}
		if err := im.SetFormat(format); err != nil {
			return nil, err
		}
		defer im.SetFormat(prev)
	}

	var length uint
	addr, err := im.Call("get_blob", unsafe.Pointer(&length))
	if err != nil {
		return nil, err
	}
	ptr, ok := addr.(uintptr)
	if !ok || ptr == 0 {
		return nil, errors.New(errors.PhaseCall, errors.KindOperationFailed).
			Symbol("MagickGetImageBlob").
			Detail("native encoder returned no buffer").
			Build()
	}

	data := native.GoBytes(ptr, length)
	if _, err := im.Runtime().CallStatic(api.CategoryMagickGlobal, "relinquish_memory", ptr); err != nil {
		return nil, err
	}
	return data, nil
}

// Export decodes the image into flat channel data in the given
// format ("RGB", "RGBA", ...).
func (im *Image) Export(format string) (*RawImage, error) {
	width, err := im.Width()
	if err != nil {
		return nil, err
	}
	height, err := im.Height()
	if err != nil {
		return nil, err
	}
	depth, err := im.Depth()
	if err != nil {
		return nil, err
	}
	data, err := im.Blob(format)
	if err != nil {
		return nil, err
	}
	return &RawImage{
		Format: format,
		Width:  width,
		Height: height,
		Depth:  depth,
		Data:   data,
	}, nil
}

// Rescale resamples to a new size. A zero width or height is derived
// from the other dimension preserving aspect ratio. The filter
// mnemonic defaults to lanczos; blur above 1 softens, below sharpens.
func (im *Image) Rescale(width, height uint, filter string, blur float64) error {
	if width == 0 && height == 0 {
		return errors.InvalidInput(errors.PhaseResource, "rescale needs at least one dimension")
	}
	if width == 0 || height == 0 {
		w, err := im.Width()
		if err != nil {
			return err
		}
		h, err := im.Height()
		if err != nil {
			return err
		}
		if width == 0 {
			width = uint(float64(w) * float64(height) / float64(h))
		} else {
			height = uint(float64(h) * float64(width) / float64(w))
		}
	}
	if filter == "" {
		filter = "lanczos"
	}
	f, err := enum.Lookup(enum.Filter, filter, im.version())
	if err != nil {
		return err
	}
	if blur == 0 {
		blur = 1
	}
	_, err = im.Call("resize", width, height, f, blur)
	return err
}

// RescaleFactor resamples relative to the current size.
func (im *Image) RescaleFactor(factor float64, filter string, blur float64) error {
	if factor <= 0 {
		return errors.InvalidInput(errors.PhaseResource, "rescale factor must be positive")
	}
	w, err := im.Width()
	if err != nil {
		return err
	}
	h, err := im.Height()
	if err != nil {
		return err
	}
	return im.Rescale(uint(float64(w)*factor), uint(float64(h)*factor), filter, blur)
}

// Resize crops out a width x height region at the given offset.
func (im *Image) Resize(width, height uint, x, y int) error {
	_, err := im.Call("crop", width, height, x, y)
	return err
}

// Rotate turns the image by the given angle in degrees, exposing a
// transparent background on non-right angles.
func (im *Image) Rotate(degrees float64) error {
	return im.withTransparent(func(bg *pixel.Pixel) error {
		_, err := im.Call("rotate", bg, degrees)
		return err
	})
}

// Flip mirrors the image around the given axis.
func (im *Image) Flip(axis Axis) error {
	name := "flip"
	if axis == AxisY {
		name = "flop"
	}
	_, err := im.Call(name)
	return err
}

// Transpose mirrors around the top-left to bottom-right diagonal.
func (im *Image) Transpose() error {
	_, err := im.Call("transpose")
	return err
}

// Transverse mirrors around the bottom-left to top-right diagonal.
func (im *Image) Transverse() error {
	_, err := im.Call("transverse")
	return err
}

// Skew shears the image by offset pixels along the given axis,
// exposing a transparent background.
func (im *Image) Skew(offset float64, axis Axis) error {
	return im.withTransparent(func(bg *pixel.Pixel) error {
		x, y := offset, 0.0
		if axis == AxisY {
			x, y = 0, offset
		}
		_, err := im.Call("shear", bg, x, y)
		return err
	})
}

// Roll offsets the image content with wrap-around.
func (im *Image) Roll(x, y int) error {
	_, err := im.Call("roll", x, y)
	return err
}

// Straighten deskews the image, detecting rotation up to the given
// threshold.
func (im *Image) Straighten(threshold float64) error {
	_, err := im.Call("deskew", threshold)
	return err
}

// Trim crops away a border of pixels matching the background within
// the given color-similarity fuzz. A nil background trims transparent
// edges.
func (im *Image) Trim(fuzz float64, background *pixel.Pixel) error {
	apply := func(bg *pixel.Pixel) error {
		if _, err := im.Call("set_background_color", bg); err != nil {
			return err
		}
		_, err := im.Call("trim", fuzz)
		return err
	}
	if background != nil {
		return apply(background)
	}
	return im.withTransparent(apply)
}

// Splice inserts a transparent width x height band at the offset,
// pushing existing content away.
func (im *Image) Splice(x, y int, width, height uint) error {
	return im.withTransparent(func(bg *pixel.Pixel) error {
		if _, err := im.Call("set_background_color", bg); err != nil {
			return err
		}
		_, err := im.Call("splice", width, height, x, y)
		return err
	})
}

// Brightness shifts brightness by a factor in [-1, 1].
func (im *Image) Brightness(factor float64) error {
	_, err := im.Call("brightness_contrast", factor*100, 0.0)
	return err
}

// Contrast shifts contrast by a factor in [-1, 1].
func (im *Image) Contrast(factor float64) error {
	_, err := im.Call("brightness_contrast", 0.0, factor*100)
	return err
}

// Gamma applies gamma correction; 1 is the identity.
func (im *Image) Gamma(gamma float64) error {
	_, err := im.Call("gamma", gamma)
	return err
}

// AutoGamma applies a library-computed gamma correction.
func (im *Image) AutoGamma() error {
	_, err := im.Call("auto_gamma")
	return err
}

// AutoLevel stretches channels to the full quantum range.
func (im *Image) AutoLevel() error {
	_, err := im.Call("auto_level")
	return err
}

// Modulate shifts hue, saturation and lightness, each as a delta in
// [-1, 1] where 0 is the identity.
func (im *Image) Modulate(hue, saturation, lightness float64) error {
	_, err := im.Call("modulate",
		lightness*100+100, saturation*100+100, hue*100+100)
	return err
}

// Desaturate reduces the image to its lightness.
func (im *Image) Desaturate() error {
	return im.Modulate(0, -1, 0)
}

// Colorize blends the image towards one hue. Opacity controls the
// per-channel blend strength.
func (im *Image) Colorize(color, opacity *pixel.Pixel) error {
	_, err := im.Call("colorize", color, opacity)
	return err
}

// Sepia tones the image. Threshold controls hue on a 0..1 scale and
// is mapped onto the build's quantum range; a non-zero saturation
// shift is applied afterwards.
func (im *Image) Sepia(threshold, saturation float64) error {
	depth, err := im.Runtime().QuantumDepth()
	if err != nil {
		return err
	}
	if _, err := im.Call("sepia_tone", threshold*math.Pow(2, float64(depth))); err != nil {
		return err
	}
	if saturation != 0 {
		return im.Modulate(0, saturation, 0)
	}
	return nil
}

// Equalize performs histogram equalization.
func (im *Image) Equalize() error {
	_, err := im.Call("equalize")
	return err
}

// Invert negates channels; onlyGray restricts it to grayscale pixels.
func (im *Image) Invert(onlyGray bool) error {
	_, err := im.Call("negate", onlyGray)
	return err
}

// Solarize overexposes channels above the threshold.
func (im *Image) Solarize(threshold float64) error {
	_, err := im.Call("solarize", threshold)
	return err
}

// Posterize reduces each channel to the given number of levels.
func (im *Image) Posterize(levels uint32, dither bool) error {
	_, err := im.Call("posterize", levels, dither)
	return err
}

// Blur applies gaussian blur.
func (im *Image) Blur(radius, strength float64) error {
	_, err := im.Call("blur", radius, strength)
	return err
}

// RadialBlur blurs around the center by the given angle.
func (im *Image) RadialBlur(angle float64) error {
	_, err := im.Call("radial_blur", angle)
	return err
}

// Denoise smooths out noise while preserving edges.
func (im *Image) Denoise() error {
	_, err := im.Call("enhance")
	return err
}

// Despeckle removes speckle artifacts.
func (im *Image) Despeckle() error {
	_, err := im.Call("despeckle")
	return err
}

// Emboss renders a grayscale relief.
func (im *Image) Emboss(radius, strength float64) error {
	_, err := im.Call("emboss", radius, strength)
	return err
}

// Swirl twists the image around its center by the given angle.
func (im *Image) Swirl(degrees float64) error {
	_, err := im.Call("swirl", degrees)
	return err
}

// Wave ripples the image with the given amplitude and wavelength.
func (im *Image) Wave(amplitude, length float64) error {
	_, err := im.Call("wave", amplitude, length)
	return err
}

// Sketch simulates a pencil sketch stroked at the given angle.
func (im *Image) Sketch(radius, angle, strength float64) error {
	_, err := im.Call("sketch", radius, strength, angle)
	return err
}

// OilPaint simulates oil painting with the given brush radius.
func (im *Image) OilPaint(radius float64) error {
	_, err := im.Call("oil_paint", radius)
	return err
}

// Spread randomly displaces pixels within the radius.
func (im *Image) Spread(radius float64) error {
	_, err := im.Call("spread", radius)
	return err
}

// Dft runs the forward discrete Fourier transform. The result is a
// magnitude/phase image pair, or real/imaginary when magnitude is
// false. The underlying symbol is only exported by builds compiled
// against FFTW.
func (im *Image) Dft(magnitude bool) (*Image, *Image, error) {
	width, err := im.Width()
	if err != nil {
		return nil, nil, err
	}
	height, err := im.Height()
	if err != nil {
		return nil, nil, err
	}

	// The transform rewrites its wand into a two-frame sequence, so
	// it runs on a scratch copy.
	work, err := im.Clone()
	if err != nil {
		return nil, nil, err
	}
	defer work.Close()
	if _, err := work.Call("forward_fourier_transform", magnitude); err != nil {
		return nil, nil, err
	}

	first, err := Blank(im.Runtime(), width, height, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := first.Overlay(work, 0, 0, "copy"); err != nil {
		first.Close()
		return nil, nil, err
	}

	more, err := work.Next()
	if err == nil && !more {
		err = errors.New(errors.PhaseCall, errors.KindOperationFailed).
			Symbol("MagickForwardFourierTransformImage").
			Detail("transform produced a single frame").
			Build()
	}
	if err != nil {
		first.Close()
		return nil, nil, err
	}

	second, err := Blank(im.Runtime(), width, height, nil)
	if err != nil {
		first.Close()
		return nil, nil, err
	}
	if err := second.Overlay(work, 0, 0, "copy"); err != nil {
		first.Close()
		second.Close()
		return nil, nil, err
	}
	return first, second, nil
}

// Fx evaluates a native expression over the image. The library
// produces a fresh wand; the guard swaps it in and releases the old
// one.
func (im *Image) Fx(expression string) error {
	result, err := im.Call("fx", expression)
	if err != nil {
		return err
	}
	ptr, ok := result.(uintptr)
	if !ok || ptr == 0 {
		return errors.New(errors.PhaseCall, errors.KindOperationFailed).
			Symbol("MagickFxImage").
			Detail("expression produced no image").
			Build()
	}
	return im.Replace(ptr)
}

// Background reads the image's background color into a fresh pixel
// wand owned by the caller.
func (im *Image) Background() (*pixel.Pixel, error) {
	p, err := pixel.New(im.Runtime())
	if err != nil {
		return nil, err
	}
	if _, err := im.Call("get_background_color", p); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// GetPixel reads the color at (x, y) into a fresh pixel wand. The
// caller owns the returned pixel.
func (im *Image) GetPixel(x, y int) (*pixel.Pixel, error) {
	p, err := pixel.New(im.Runtime())
	if err != nil {
		return nil, err
	}
	if _, err := im.Call("get_pixel_color", x, y, p); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// Fill floods the whole image with one color. The underlying symbol
// entered the library in 6.6.1; older builds report unsupported.
func (im *Image) Fill(color *pixel.Pixel) error {
	if !im.Runtime().Probe(api.CategoryImage, "set_color") {
		return errors.Unsupported(errors.PhaseCall,
			"MagickSetImageColor not exported by loaded library")
	}
	_, err := im.Call("set_color", color)
	return err
}

// SetColor is Fill under the native operation's own name.
func (im *Image) SetColor(color *pixel.Pixel) error {
	return im.Fill(color)
}

// SetAlpha sets a uniform alpha over the image, normalized to [0, 1].
func (im *Image) SetAlpha(alpha float64) error {
	_, err := im.Call("set_opacity", alpha)
	return err
}

// Overlay composites another image at the offset. The composite
// mnemonic defaults to "over".
func (im *Image) Overlay(other *Image, x, y int, composite string) error {
	if composite == "" {
		composite = "over"
	}
	c, err := enum.Lookup(enum.Composite, composite, im.version())
	if err != nil {
		return err
	}
	_, err = im.Call("composite", other, c, x, y)
	return err
}

// Shadow replaces the image with its drop shadow.
func (im *Image) Shadow(opacity, radius float64, x, y int) error {
	_, err := im.Call("shadow", opacity, radius, x, y)
	return err
}

// Width returns the image width in pixels.
func (im *Image) Width() (uint, error) { return im.sizeProp("get_width") }

// Height returns the image height in pixels.
func (im *Image) Height() (uint, error) { return im.sizeProp("get_height") }

// Depth returns the channel depth in bits.
func (im *Image) Depth() (uint, error) { return im.sizeProp("get_depth") }

// SetDepth changes the channel depth in bits.
func (im *Image) SetDepth(depth uint) error {
	_, err := im.Call("set_depth", depth)
	return err
}

// TotalColors counts the distinct colors in the image.
func (im *Image) TotalColors() (uint, error) { return im.sizeProp("get_colors") }

func (im *Image) sizeProp(name string) (uint, error) {
	v, err := im.Call(name)
	if err != nil {
		return 0, err
	}
	return v.(uint), nil
}

// Format returns the encoding format mnemonic ("JPEG", "PNG", ...).
func (im *Image) Format() (string, error) {
	v, err := im.Call("get_format")
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// SetFormat changes the encoding format used by Write and Blob.
func (im *Image) SetFormat(format string) error {
	_, err := im.Call("set_format", format)
	return err
}

// Type returns the storage type mnemonic ("truecolor", ...).
func (im *Image) Type() (string, error) { return im.enumProp("get_type", enum.Type) }

// SetType changes the storage type.
func (im *Image) SetType(mnemonic string) error {
	return im.setEnumProp("set_type", enum.Type, mnemonic)
}

// Colorspace returns the colorspace mnemonic ("rgb", "ycbcr", ...).
func (im *Image) Colorspace() (string, error) {
	return im.enumProp("get_colorspace", enum.Colorspace)
}

// SetColorspace reinterprets channel data in another colorspace
// without converting values.
func (im *Image) SetColorspace(mnemonic string) error {
	return im.setEnumProp("set_colorspace", enum.Colorspace, mnemonic)
}

// ConvertColorspace transforms channel values into another
// colorspace.
func (im *Image) ConvertColorspace(mnemonic string) error {
	return im.setEnumProp("transform_colorspace", enum.Colorspace, mnemonic)
}

func (im *Image) enumProp(name string, d enum.Domain) (string, error) {
	v, err := im.Call(name)
	if err != nil {
		return "", err
	}
	return enum.ReverseLookup(d, v.(int))
}

func (im *Image) setEnumProp(name string, d enum.Domain, mnemonic string) error {
	v, err := enum.Lookup(d, mnemonic, im.version())
	if err != nil {
		return err
	}
	_, err = im.Call(name, v)
	return err
}

// Next advances to the next frame of a multi-frame image. It reports
// false when the sequence is exhausted.
func (im *Image) Next() (bool, error) {
	v, err := im.Call("next")
	if err != nil {
		return false, err
	}
	return v.(int) != 0, nil
}

// Clone duplicates the image into an independent native wand.
func (im *Image) Clone() (*Image, error) {
	res, err := im.Resource.Clone()
	if err != nil {
		return nil, err
	}
	return &Image{Resource: res}, nil
}

// version reports the loaded library release for enum gating, nil
// when it cannot be determined.
func (im *Image) version() *semver.Version {
	v, err := im.Runtime().Version()
	if err != nil {
		return nil
	}
	return v
}

// withTransparent runs fn with a scratch transparent pixel that is
// released afterwards.
func (im *Image) withTransparent(fn func(*pixel.Pixel) error) error {
	bg, err := pixel.Transparent(im.Runtime())
	if err != nil {
		return err
	}
	defer bg.Close()
	return fn(bg)
}
