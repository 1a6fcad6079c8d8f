package pixel

import (
	"fmt"
	"strconv"
	"unsafe"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ppawlak/pystacia/api"
	"github.com/ppawlak/pystacia/errors"
	"github.com/ppawlak/pystacia/resource"
)

// Pixel is a color value backed by a native pixel wand. It satisfies
// api.Handle through the embedded resource, so it can be passed
// directly as an argument to image operations.
type Pixel struct {
	*resource.Resource
}

// New allocates a fresh pixel wand. Its color is undefined until set.
func New(rt *api.Runtime) (*Pixel, error) {
	res, err := resource.Alloc(rt, api.CategoryPixel, api.CategoryPixelWand)
	if err != nil {
		return nil, err
	}
	return &Pixel{Resource: res}, nil
}

// FromString allocates a pixel from any color specification the
// native library parses: names ("red"), hex ("#ff0000"), functional
// notations ("rgba(1,0,0,0.5)").
func FromString(rt *api.Runtime, color string) (*Pixel, error) {
	p, err := New(rt)
	if err != nil {
		return nil, err
	}
	if err := p.SetString(color); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// FromHex allocates a pixel from a "#rrggbb" hex triplet.
func FromHex(rt *api.Runtime, hex string) (*Pixel, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, errors.New(errors.PhaseResource, errors.KindInvalidInput).
			Category(api.CategoryPixel.String()).
			Cause(err).
			Detail("malformed hex color %q", hex).
			Build()
	}
	return FromColor(rt, c)
}

// FromColor allocates a fully opaque pixel from a colorful value.
func FromColor(rt *api.Runtime, c colorful.Color) (*Pixel, error) {
	return FromRGBA(rt, c.R, c.G, c.B, 1)
}

// FromRGB allocates a fully opaque pixel from normalized channels.
func FromRGB(rt *api.Runtime, r, g, b float64) (*Pixel, error) {
	return FromRGBA(rt, r, g, b, 1)
}

// FromRGBA allocates a pixel from normalized channels in [0, 1].
func FromRGBA(rt *api.Runtime, r, g, b, a float64) (*Pixel, error) {
	p, err := New(rt)
	if err != nil {
		return nil, err
	}
	if err := p.SetRGBA(r, g, b, a); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// Transparent allocates the fully transparent pixel. Rotation and
// splice backgrounds default to it.
func Transparent(rt *api.Runtime) (*Pixel, error) {
	return FromRGBA(rt, 0, 0, 0, 0)
}

// White allocates opaque white.
func White(rt *api.Runtime) (*Pixel, error) {
	return FromRGB(rt, 1, 1, 1)
}

// Black allocates opaque black.
func Black(rt *api.Runtime) (*Pixel, error) {
	return FromRGB(rt, 0, 0, 0)
}

// SetString reparses the wand's color from a specification string.
func (p *Pixel) SetString(color string) error {
	_, err := p.Call("set_color", color)
	return err
}

// SetRGBA sets all four channels, normalized to [0, 1].
func (p *Pixel) SetRGBA(r, g, b, a float64) error {
	for _, ch := range []struct {
		name  string
		value float64
	}{
		{"set_red", r},
		{"set_green", g},
		{"set_blue", b},
		{"set_alpha", a},
	} {
		if _, err := p.Call(ch.name, ch.value); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pixel) channel(name string) (float64, error) {
	v, err := p.Call(name)
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

// Red returns the normalized red channel.
func (p *Pixel) Red() (float64, error) { return p.channel("get_red") }

// Green returns the normalized green channel.
func (p *Pixel) Green() (float64, error) { return p.channel("get_green") }

// Blue returns the normalized blue channel.
func (p *Pixel) Blue() (float64, error) { return p.channel("get_blue") }

// Alpha returns the normalized alpha channel.
func (p *Pixel) Alpha() (float64, error) { return p.channel("get_alpha") }

// SetRed sets the normalized red channel.
func (p *Pixel) SetRed(v float64) error { _, err := p.Call("set_red", v); return err }

// SetGreen sets the normalized green channel.
func (p *Pixel) SetGreen(v float64) error { _, err := p.Call("set_green", v); return err }

// SetBlue sets the normalized blue channel.
func (p *Pixel) SetBlue(v float64) error { _, err := p.Call("set_blue", v); return err }

// SetAlpha sets the normalized alpha channel.
func (p *Pixel) SetAlpha(v float64) error { _, err := p.Call("set_alpha", v); return err }

// HSL reads the wand's color in hue/saturation/lightness space. The
// native call fills three out-parameters in one shot.
func (p *Pixel) HSL() (h, s, l float64, err error) {
	_, err = p.Call("get_hsl",
		unsafe.Pointer(&h), unsafe.Pointer(&s), unsafe.Pointer(&l))
	return h, s, l, err
}

// Color reads the wand back as a colorful value. Alpha is dropped;
// use Alpha when it matters.
func (p *Pixel) Color() (colorful.Color, error) {
	r, err := p.Red()
	if err != nil {
		return colorful.Color{}, err
	}
	g, err := p.Green()
	if err != nil {
		return colorful.Color{}, err
	}
	b, err := p.Blue()
	if err != nil {
		return colorful.Color{}, err
	}
	return colorful.Color{R: r, G: g, B: b}, nil
}

// Spec renders the color as a specification string the native parser
// round-trips: a hex triplet when fully opaque, the rgba() form
// otherwise so the alpha channel survives.
func (p *Pixel) Spec() (string, error) {
	a, err := p.Alpha()
	if err != nil {
		return "", err
	}
	if a == 1 {
		return p.Hex()
	}
	c, err := p.Color()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)",
		int(c.R*255+0.5), int(c.G*255+0.5), int(c.B*255+0.5),
		strconv.FormatFloat(a, 'g', -1, 64)), nil
}

// Hex renders the wand's color as a "#rrggbb" triplet.
func (p *Pixel) Hex() (string, error) {
	c, err := p.Color()
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

// Clone duplicates the pixel wand into an independent instance.
func (p *Pixel) Clone() (*Pixel, error) {
	res, err := p.Resource.Clone()
	if err != nil {
		return nil, err
	}
	return &Pixel{Resource: res}, nil
}
