package enum

import (
	"github.com/coreos/go-semver/semver"

	"github.com/ppawlak/pystacia/errors"
)

// Domain names one native enumeration.
type Domain string

const (
	Filter      Domain = "filter"
	Composite   Domain = "composite"
	Colorspace  Domain = "colorspace"
	Type        Domain = "type"
	Compression Domain = "compression"
)

// entry is one mnemonic's native value. A non-nil since gates it on
// the loaded ImageMagick release.
type entry struct {
	value int
	since *semver.Version
}

func val(v int) entry {
	return entry{value: v}
}

func since(v int, release string) entry {
	return entry{value: v, since: semver.New(release)}
}

// Values follow the ImageMagick 6 headers the original binding was
// written against (magick/resample.h, magick/composite.h and friends).
var tables = map[Domain]map[string]entry{
	Filter: {
		"undefined":     val(0),
		"point":         val(1),
		"box":           val(2),
		"triangle":      val(3),
		"hermite":       val(4),
		"hanning":       val(5),
		"hamming":       val(6),
		"blackman":      val(7),
		"gaussian":      val(8),
		"quadratic":     val(9),
		"cubic":         val(10),
		"catrom":        val(11),
		"mitchell":      val(12),
		"jinc":          since(13, "6.6.2"),
		"sinc":          val(14),
		"sincfast":      since(15, "6.6.2"),
		"kaiser":        since(16, "6.6.2"),
		"welsh":         since(17, "6.6.2"),
		"parzen":        since(18, "6.6.2"),
		"bohman":        since(19, "6.6.2"),
		"bartlett":      since(20, "6.6.2"),
		"lagrange":      since(21, "6.3.7"),
		"lanczos":       val(22),
		"lanczossharp":  since(23, "6.6.4"),
		"lanczos2":      since(24, "6.6.4"),
		"lanczos2sharp": since(25, "6.6.4"),
		"robidoux":      since(26, "6.6.9"),
	},

	Composite: {
		"undefined":    val(0),
		"no":           val(1),
		"add":          val(2),
		"atop":         val(3),
		"blend":        val(4),
		"bumpmap":      val(5),
		"changemask":   val(6),
		"clear":        val(7),
		"colorburn":    val(8),
		"colordodge":   val(9),
		"colorize":     val(10),
		"copyblack":    val(11),
		"copyblue":     val(12),
		"copy":         val(13),
		"copycyan":     val(14),
		"copygreen":    val(15),
		"copymagenta":  val(16),
		"copyopacity":  val(17),
		"copyred":      val(18),
		"copyyellow":   val(19),
		"darken":       val(20),
		"dstatop":      val(21),
		"dst":          val(22),
		"dstin":        val(23),
		"dstout":       val(24),
		"dstover":      val(25),
		"difference":   val(26),
		"displace":     val(27),
		"dissolve":     val(28),
		"exclusion":    val(29),
		"hardlight":    val(30),
		"hue":          val(31),
		"in":           val(32),
		"lighten":      val(33),
		"linearlight":  val(34),
		"luminize":     val(35),
		"minus":        val(36),
		"modulate":     val(37),
		"multiply":     val(38),
		"out":          val(39),
		"over":         val(40),
		"overlay":      val(41),
		"plus":         val(42),
		"replace":      val(43),
		"saturate":     val(44),
		"screen":       val(45),
		"softlight":    val(46),
		"srcatop":      val(47),
		"src":          val(48),
		"srcin":        val(49),
		"srcout":       val(50),
		"srcover":      val(51),
		"subtract":     val(52),
		"threshold":    val(53),
		"xor":          val(54),
		"divide":       since(55, "6.5.9"),
	},

	Colorspace: {
		"undefined":   val(0),
		"rgb":         val(1),
		"gray":        val(2),
		"transparent": val(3),
		"ohta":        val(4),
		"lab":         val(5),
		"xyz":         val(6),
		"ycbcr":       val(7),
		"ycc":         val(8),
		"yiq":         val(9),
		"ypbpr":       val(10),
		"yuv":         val(11),
		"cmyk":        val(12),
		"srgb":        val(13),
		"hsb":         val(14),
		"hsl":         val(15),
		"hwb":         val(16),
		"rec601luma":  val(17),
		"rec601ycbcr": val(18),
		"rec709luma":  val(19),
		"rec709ycbcr": val(20),
		"log":         val(21),
		"cmy":         since(22, "6.5.0"),
	},

	Type: {
		"undefined":            val(0),
		"bilevel":              val(1),
		"grayscale":            val(2),
		"grayscalematte":       val(3),
		"palette":              val(4),
		"palettematte":         val(5),
		"truecolor":            val(6),
		"truecolormatte":       val(7),
		"colorseparation":      val(8),
		"colorseparationmatte": val(9),
		"optimize":             val(10),
		"palettebilevelmatte":  since(11, "6.5.0"),
	},

	Compression: {
		"undefined":    val(0),
		"no":           val(1),
		"bzip":         val(2),
		"dxt1":         val(3),
		"dxt3":         val(4),
		"dxt5":         val(5),
		"fax":          val(6),
		"group4":       val(7),
		"jpeg":         val(8),
		"jpeg2000":     val(9),
		"losslessjpeg": val(10),
		"lzw":          val(11),
		"rle":          val(12),
		"zip":          val(13),
		"zips":         since(14, "6.5.5"),
		"piz":          since(15, "6.5.5"),
		"pxr24":        since(16, "6.5.5"),
		"b44":          since(17, "6.5.5"),
		"b44a":         since(18, "6.5.5"),
		"lzma":         since(19, "6.6.1"),
		"jbig1":        since(20, "6.6.8"),
		"jbig2":        since(21, "6.6.8"),
	},
}

// Lookup maps a mnemonic to its native integer value. A nil version
// skips gating; otherwise mnemonics introduced after the loaded
// release resolve to an unsupported error rather than a wrong value.
func Lookup(d Domain, mnemonic string, version *semver.Version) (int, error) {
	ops, ok := tables[d]
	if !ok {
		return 0, errors.InvalidInput(errors.PhaseEnum, "unknown enumeration "+string(d))
	}
	e, ok := ops[mnemonic]
	if !ok {
		return 0, errors.New(errors.PhaseEnum, errors.KindInvalidInput).
			Detail("unknown %s mnemonic %q", d, mnemonic).
			Build()
	}
	if version != nil && e.since != nil && version.LessThan(*e.since) {
		return 0, errors.New(errors.PhaseEnum, errors.KindUnsupported).
			Detail("%s %q requires ImageMagick %s, loaded %s", d, mnemonic, e.since, version).
			Build()
	}
	return e.value, nil
}

// ReverseLookup maps a native integer back to its mnemonic.
func ReverseLookup(d Domain, value int) (string, error) {
	ops, ok := tables[d]
	if !ok {
		return "", errors.InvalidInput(errors.PhaseEnum, "unknown enumeration "+string(d))
	}
	for name, e := range ops {
		if e.value == value {
			return name, nil
		}
	}
	return "", errors.New(errors.PhaseEnum, errors.KindInvalidInput).
		Detail("no %s mnemonic for value %d", d, value).
		Build()
}
