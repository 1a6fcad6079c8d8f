package api

import (
	"strings"

	"github.com/ppawlak/pystacia/errors"
	"github.com/ppawlak/pystacia/native"
)

// Category groups native operations sharing a receiver type and
// default argument/result shape.
type Category uint8

const (
	// CategoryGlobal holds the library lifecycle calls
	// (MagickWandGenesis, MagickWandTerminus).
	CategoryGlobal Category = iota
	// CategoryMagick holds wand-receiver utility calls with
	// per-entry result kinds (MagickSetSize, MagickGetException).
	CategoryMagick
	// CategoryMagickGlobal holds receiverless Magick* calls
	// (MagickGetVersion, MagickRelinquishMemory).
	CategoryMagickGlobal
	// CategoryWand holds the image wand constructor/destructor
	// trio (NewMagickWand, CloneMagickWand, DestroyMagickWand).
	CategoryWand
	// CategoryPixelWand holds the pixel wand constructor/destructor
	// trio.
	CategoryPixelWand
	// CategoryImage holds MagickVerbImageNoun operations, the bulk
	// of the symbol table. Default result is the boolean-success flag.
	CategoryImage
	// CategoryPixel holds Pixel* color accessors. Default result is
	// void (plain setters).
	CategoryPixel
)

var categoryNames = map[Category]string{
	CategoryGlobal:       "global",
	CategoryMagick:       "magick",
	CategoryMagickGlobal: "magick_global",
	CategoryWand:         "wand",
	CategoryPixelWand:    "pwand",
	CategoryImage:        "image",
	CategoryPixel:        "pixel",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "unknown"
}

// receiverKind returns the native kind prepended for this category's
// receiver, or KindVoid when the category takes none.
func (c Category) receiverKind() native.Kind {
	switch c {
	case CategoryMagick, CategoryImage, CategoryPixel:
		return native.KindHandle
	}
	return native.KindVoid
}

// defaultResult returns the category's result kind used when an entry
// declares none.
func (c Category) defaultResult() native.Kind {
	switch c {
	case CategoryWand, CategoryPixelWand:
		return native.KindHandle
	case CategoryImage, CategoryMagick:
		return native.KindBoolean
	}
	return native.KindVoid
}

// Descriptor declares one logical operation: its non-receiver argument
// kinds, an optional result override, and for image operations the
// verb/noun split the symbol formatter inserts "Image" between.
// Descriptors are immutable data; nothing here touches the library.
type Descriptor struct {
	Verb   string
	Noun   string
	Args   []native.Kind
	Result native.Kind
	// HasResult distinguishes an explicit void result from "use the
	// category default".
	HasResult bool
}

func op(args ...native.Kind) Descriptor {
	return Descriptor{Args: args}
}

func opR(result native.Kind, args ...native.Kind) Descriptor {
	return Descriptor{Args: args, Result: result, HasResult: true}
}

func split(verb, noun string, d Descriptor) Descriptor {
	d.Verb, d.Noun = verb, noun
	return d
}

// table is the whole symbol registry, keyed by (category, logical name).
// Defined once at process start and never mutated.
var table = map[Category]map[string]Descriptor{
	CategoryGlobal: {
		"genesis":  opR(native.KindVoid),
		"terminus": opR(native.KindVoid),
	},

	CategoryMagick: {
		"set_size":      op(native.KindSize, native.KindSize),
		"get_format":    opR(native.KindString),
		"set_format":    op(native.KindString),
		"set_depth":     op(native.KindSize),
		"get_exception": opR(native.KindOpaque, native.KindBlob),
	},

	CategoryMagickGlobal: {
		"get_version":             opR(native.KindString, native.KindBlob),
		"query_configure_option":  opR(native.KindString, native.KindString),
		"query_configure_options": opR(native.KindOpaque, native.KindString, native.KindBlob),
		"relinquish_memory":       opR(native.KindOpaque, native.KindOpaque),
	},

	CategoryWand: {
		"new":     op(),
		"clone":   op(native.KindHandle),
		"destroy": op(native.KindHandle),
	},

	CategoryPixelWand: {
		"new":     op(),
		"clone":   op(native.KindHandle),
		"destroy": op(native.KindHandle),
	},

	CategoryImage: {
		"read":      op(native.KindString),
		"write":     op(native.KindString),
		"read_blob": split("read", "blob", op(native.KindBlob, native.KindSize)),
		"get_blob":  split("get", "blob", opR(native.KindOpaque, native.KindBlob)),

		"set_format":              split("set", "format", op(native.KindString)),
		"get_format":              split("get", "format", opR(native.KindString)),
		"set_compression":         split("set", "compression", op(native.KindEnum)),
		"get_compression":         split("get", "compression", opR(native.KindEnum)),
		"set_compression_quality": split("set", "compression_quality", op(native.KindSize)),
		"get_compression_quality": split("get", "compression_quality", opR(native.KindSize)),
		"get_width":               split("get", "width", opR(native.KindSize)),
		"get_height":              split("get", "height", opR(native.KindSize)),
		"get_depth":               split("get", "depth", opR(native.KindSize)),
		"set_depth":               split("set", "depth", op(native.KindSize)),
		"get_type":                split("get", "type", opR(native.KindEnum)),
		"set_type":                split("set", "type", op(native.KindEnum)),
		"get_colorspace":          split("get", "colorspace", opR(native.KindEnum)),
		"set_colorspace":          split("set", "colorspace", op(native.KindEnum)),
		"get_colors":              split("get", "colors", opR(native.KindSize)),
		"get_pixel_color":         split("get", "pixel_color", op(native.KindSSize, native.KindSSize, native.KindHandle)),
		"set_background_color":    split("set", "background_color", op(native.KindHandle)),
		"get_background_color":    split("get", "background_color", op(native.KindHandle)),
		"transform_colorspace":    split("transform", "colorspace", op(native.KindEnum)),

		"resize": op(native.KindSize, native.KindSize, native.KindEnum, native.KindDouble),
		"crop":   op(native.KindSize, native.KindSize, native.KindSSize, native.KindSSize),
		"rotate": op(native.KindHandle, native.KindDouble),
		"flip":   op(),
		"flop":   op(),

		"transpose":  op(),
		"transverse": op(),
		"shear":      op(native.KindHandle, native.KindDouble, native.KindDouble),
		"roll":       op(native.KindSSize, native.KindSSize),
		"deskew":     op(native.KindDouble),
		"trim":       op(native.KindDouble),
		"splice":     op(native.KindSize, native.KindSize, native.KindSSize, native.KindSSize),

		"brightness_contrast": op(native.KindDouble, native.KindDouble),
		"gamma":               op(native.KindDouble),
		"auto_gamma":          op(),
		"auto_level":          op(),
		"modulate":            op(native.KindDouble, native.KindDouble, native.KindDouble),
		"sepia_tone":          op(native.KindDouble),
		"equalize":            op(),
		"negate":              op(native.KindBoolean),
		"solarize":            op(native.KindDouble),
		"posterize":           op(native.KindUInt, native.KindBoolean),

		"blur":        op(native.KindDouble, native.KindDouble),
		"radial_blur": op(native.KindDouble),
		"enhance":     op(),
		"despeckle":   op(),
		"emboss":      op(native.KindDouble, native.KindDouble),

		"swirl": op(native.KindDouble),
		"wave":  op(native.KindDouble, native.KindDouble),

		"sketch":                    op(native.KindDouble, native.KindDouble, native.KindDouble),
		"oil_paint":                 op(native.KindDouble),
		"spread":                    op(native.KindDouble),
		"forward_fourier_transform": op(native.KindBoolean),
		"fx":                        opR(native.KindHandle, native.KindString),

		"colorize":    op(native.KindHandle, native.KindHandle),
		"set_color":   split("set", "color", op(native.KindHandle)),
		"set_opacity": split("set", "opacity", op(native.KindDouble)),
		"composite":   op(native.KindHandle, native.KindEnum, native.KindSSize, native.KindSSize),

		"shadow": op(native.KindDouble, native.KindDouble, native.KindSSize, native.KindSSize),

		// Declared with a plain enum result: a false return signals the
		// end of the frame sequence, not a failure.
		"next": opR(native.KindEnum),
	},

	CategoryPixel: {
		"set_red":   op(native.KindDouble),
		"get_red":   opR(native.KindDouble),
		"set_green": op(native.KindDouble),
		"get_green": opR(native.KindDouble),
		"set_blue":  op(native.KindDouble),
		"get_blue":  opR(native.KindDouble),
		"set_alpha": op(native.KindDouble),
		"get_alpha": opR(native.KindDouble),
		"set_color": op(native.KindString),
		"get_hsl":   op(native.KindBlob, native.KindBlob, native.KindBlob),
	},
}

// titleCase converts a snake_case token to TitleCase:
// "auto_gamma" -> "AutoGamma".
func titleCase(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// formatSymbol applies the category's naming rule. Pure: no lookup in
// the loaded library happens here.
func formatSymbol(cat Category, name string, d Descriptor) string {
	switch cat {
	case CategoryGlobal:
		return "MagickWand" + titleCase(name)
	case CategoryMagick, CategoryMagickGlobal:
		return "Magick" + titleCase(name)
	case CategoryWand:
		return titleCase(name) + "MagickWand"
	case CategoryPixelWand:
		return titleCase(name) + "PixelWand"
	case CategoryImage:
		verb, noun := d.Verb, d.Noun
		if verb == "" {
			verb = name
		}
		return "Magick" + titleCase(verb) + "Image" + titleCase(noun)
	case CategoryPixel:
		// The one acronym in the table keeps its casing.
		if name == "get_hsl" {
			return "PixelGetHSL"
		}
		return "Pixel" + titleCase(name)
	}
	return titleCase(name)
}

// Describe resolves (category, logical name) to the exact exported
// symbol and its full calling contract, with the category receiver
// prepended to the declared argument kinds. Callable before the
// native library is loaded.
func Describe(cat Category, name string) (string, native.Contract, error) {
	ops, ok := table[cat]
	if !ok {
		return "", native.Contract{}, errors.New(errors.PhaseBind, errors.KindInvalidInput).
			Detail("unknown category %d", cat).
			Build()
	}
	d, ok := ops[name]
	if !ok {
		return "", native.Contract{}, errors.New(errors.PhaseBind, errors.KindInvalidInput).
			Category(cat.String()).
			Detail("unknown operation %q", name).
			Build()
	}

	args := d.Args
	if rk := cat.receiverKind(); rk != native.KindVoid {
		args = append([]native.Kind{rk}, args...)
	}

	result := cat.defaultResult()
	if d.HasResult {
		result = d.Result
	}

	return formatSymbol(cat, name, d), native.Contract{Args: args, Result: result}, nil
}

// SymbolName returns only the exported symbol name for (category,
// logical name).
func SymbolName(cat Category, name string) (string, error) {
	s, _, err := Describe(cat, name)
	return s, err
}
