package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ppawlak/pystacia/api"
	"github.com/ppawlak/pystacia/image"
)

func main() {
	var (
		in      = flag.String("in", "", "Input image path")
		out     = flag.String("out", "", "Output image path")
		resize  = flag.String("resize", "", "Target size WxH (either side may be 0 to keep aspect)")
		rotate  = flag.Float64("rotate", 0, "Rotation angle in degrees")
		blur    = flag.Float64("blur", 0, "Gaussian blur strength")
		gamma   = flag.Float64("gamma", 0, "Gamma correction (1 is identity)")
		gray    = flag.Bool("gray", false, "Desaturate the image")
		sepia   = flag.Float64("sepia", 0, "Sepia tone threshold")
		oil     = flag.Float64("oil", 0, "Oil-paint brush radius")
		info    = flag.Bool("info", false, "Print image metadata as JSON and exit")
		version = flag.Bool("version", false, "Print the loaded library version and exit")
	)
	flag.Parse()

	if *in == "" && !*version {
		fmt.Fprintln(os.Stderr, "Usage: wand -in <image> [-out <image>] [transforms...]")
		fmt.Fprintln(os.Stderr, "       wand -in <image> -info")
		fmt.Fprintln(os.Stderr, "       wand -version")
		os.Exit(1)
	}

	if err := run(*in, *out, *resize, *rotate, *blur, *gamma, *sepia, *oil, *gray, *info, *version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(in, out, resize string, rotate, blur, gamma, sepia, oil float64, gray, info, version bool) error {
	rt, err := api.Default()
	if err != nil {
		return err
	}
	defer rt.Terminate()

	if version {
		v, err := rt.VersionString()
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	}

	im, err := image.Read(rt, in)
	if err != nil {
		return err
	}
	defer im.Close()

	if info {
		return printInfo(im, in)
	}

	if resize != "" {
		width, height, err := parseSize(resize)
		if err != nil {
			return err
		}
		if err := im.Rescale(width, height, "", 0); err != nil {
			return err
		}
	}
	if rotate != 0 {
		if err := im.Rotate(rotate); err != nil {
			return err
		}
	}
	if blur > 0 {
		if err := im.Blur(0, blur); err != nil {
			return err
		}
	}
	if gamma > 0 {
		if err := im.Gamma(gamma); err != nil {
			return err
		}
	}
	if gray {
		if err := im.Desaturate(); err != nil {
			return err
		}
	}
	if sepia > 0 {
		if err := im.Sepia(sepia, -0.4); err != nil {
			return err
		}
	}
	if oil > 0 {
		if err := im.OilPaint(oil); err != nil {
			return err
		}
	}

	if out == "" {
		return nil
	}
	return im.Write(out)
}

type metadata struct {
	Path        string `json:"path"`
	Format      string `json:"format"`
	Width       uint   `json:"width"`
	Height      uint   `json:"height"`
	Depth       uint   `json:"depth"`
	Type        string `json:"type"`
	Colorspace  string `json:"colorspace"`
	TotalColors uint   `json:"total_colors"`
}

func printInfo(im *image.Image, path string) error {
	var (
		m   = metadata{Path: path}
		err error
	)
	if m.Format, err = im.Format(); err != nil {
		return err
	}
	if m.Width, err = im.Width(); err != nil {
		return err
	}
	if m.Height, err = im.Height(); err != nil {
		return err
	}
	if m.Depth, err = im.Depth(); err != nil {
		return err
	}
	if m.Type, err = im.Type(); err != nil {
		return err
	}
	if m.Colorspace, err = im.Colorspace(); err != nil {
		return err
	}
	if m.TotalColors, err = im.TotalColors(); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func parseSize(spec string) (uint, uint, error) {
	parts := strings.SplitN(spec, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed size %q, want WxH", spec)
	}
	width, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed width in %q: %w", spec, err)
	}
	height, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed height in %q: %w", spec, err)
	}
	return uint(width), uint(height), nil
}
