package pixel

import (
	stderrors "errors"
	"math"
	"strings"
	"sync"
	"testing"
	"unsafe"

	"github.com/ppawlak/pystacia/api"
	"github.com/ppawlak/pystacia/bridge"
	"github.com/ppawlak/pystacia/errors"
	"github.com/ppawlak/pystacia/native"
)

type channels struct {
	r, g, b, a float64
}

type stubWands struct {
	lib *native.StubLibrary

	mu      sync.Mutex
	next    uintptr
	live    map[uintptr]*channels
	excBufs map[uintptr][]byte
}

func newStubWands() *stubWands {
	w := &stubWands{
		next:    0x3000,
		live:    make(map[uintptr]*channels),
		excBufs: make(map[uintptr][]byte),
	}

	set := func(pick func(*channels) *float64) func(uintptr, float64) {
		return func(h uintptr, v float64) {
			w.mu.Lock()
			defer w.mu.Unlock()
			if c := w.live[h]; c != nil {
				*pick(c) = v
			}
		}
	}
	get := func(pick func(*channels) *float64) func(uintptr) float64 {
		return func(h uintptr) float64 {
			w.mu.Lock()
			defer w.mu.Unlock()
			if c := w.live[h]; c != nil {
				return *pick(c)
			}
			return 0
		}
	}
	red := func(c *channels) *float64 { return &c.r }
	green := func(c *channels) *float64 { return &c.g }
	blue := func(c *channels) *float64 { return &c.b }
	alpha := func(c *channels) *float64 { return &c.a }

	w.lib = native.NewStub("stub-magickwand").
		Register("MagickWandGenesis", func() {}).
		Register("MagickWandTerminus", func() {}).
		Register("NewPixelWand", func() uintptr {
			w.mu.Lock()
			defer w.mu.Unlock()
			h := w.next
			w.next += 16
			w.live[h] = &channels{a: 1}
			return h
		}).
		Register("ClonePixelWand", func(src uintptr) uintptr {
			w.mu.Lock()
			defer w.mu.Unlock()
			orig := w.live[src]
			if orig == nil {
				return 0
			}
			h := w.next
			w.next += 16
			copied := *orig
			w.live[h] = &copied
			return h
		}).
		Register("DestroyPixelWand", func(h uintptr) uintptr {
			w.mu.Lock()
			delete(w.live, h)
			w.mu.Unlock()
			return 0
		}).
		Register("PixelSetRed", set(red)).
		Register("PixelSetGreen", set(green)).
		Register("PixelSetBlue", set(blue)).
		Register("PixelSetAlpha", set(alpha)).
		Register("PixelGetRed", get(red)).
		Register("PixelGetGreen", get(green)).
		Register("PixelGetBlue", get(blue)).
		Register("PixelGetAlpha", get(alpha)).
		Register("PixelSetColor", func(h uintptr, color string) int32 {
			w.mu.Lock()
			defer w.mu.Unlock()
			c := w.live[h]
			if c == nil {
				return 0
			}
			switch color {
			case "red":
				*c = channels{r: 1, a: 1}
			case "lime":
				*c = channels{g: 1, a: 1}
			case "transparent":
				*c = channels{}
			default:
				return 0
			}
			return 1
		}).
		Register("PixelGetHSL", func(h uintptr, hp, sp, lp unsafe.Pointer) {
			w.mu.Lock()
			c := w.live[h]
			w.mu.Unlock()
			if c == nil {
				return
			}
			// Enough fidelity for pure red and pure green.
			switch {
			case c.r == 1 && c.g == 0 && c.b == 0:
				*(*float64)(hp), *(*float64)(sp), *(*float64)(lp) = 0, 1, 0.5
			case c.g == 1 && c.r == 0 && c.b == 0:
				*(*float64)(hp), *(*float64)(sp), *(*float64)(lp) = 1.0/3.0, 1, 0.5
			}
		}).
		Register("MagickGetException", func(h uintptr, excType unsafe.Pointer) uintptr {
			buf := append([]byte("unrecognized color string"), 0)
			addr := uintptr(unsafe.Pointer(&buf[0]))
			w.mu.Lock()
			w.excBufs[addr] = buf
			w.mu.Unlock()
			return addr
		}).
		Register("MagickRelinquishMemory", func(p uintptr) uintptr {
			w.mu.Lock()
			delete(w.excBufs, p)
			w.mu.Unlock()
			return 0
		})

	return w
}

func newRuntime() (*api.Runtime, *stubWands) {
	w := newStubWands()
	return api.NewRuntime(w.lib, bridge.New(bridge.Direct)), w
}

func mustClose(t *testing.T, p *Pixel) {
	t.Helper()
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestFromRGBA_RoundTrip(t *testing.T) {
	rt, _ := newRuntime()
	p, err := FromRGBA(rt, 0.25, 0.5, 0.75, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	defer mustClose(t, p)

	for name, read := range map[string]func() (float64, error){
		"red":   p.Red,
		"green": p.Green,
		"blue":  p.Blue,
		"alpha": p.Alpha,
	} {
		if _, err := read(); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}

	r, _ := p.Red()
	g, _ := p.Green()
	b, _ := p.Blue()
	a, _ := p.Alpha()
	if r != 0.25 || g != 0.5 || b != 0.75 || a != 0.5 {
		t.Errorf("channels = %v %v %v %v, want 0.25 0.5 0.75 0.5", r, g, b, a)
	}
}

func TestFromString_ParsedByLibrary(t *testing.T) {
	rt, _ := newRuntime()
	p, err := FromString(rt, "lime")
	if err != nil {
		t.Fatal(err)
	}
	defer mustClose(t, p)

	g, err := p.Green()
	if err != nil {
		t.Fatal(err)
	}
	if g != 1 {
		t.Errorf("green = %v, want 1", g)
	}
}

func TestFromString_RejectCarriesNativeMessage(t *testing.T) {
	rt, w := newRuntime()
	_, err := FromString(rt, "not-a-color")
	if err == nil {
		t.Fatal("expected rejection from the native parser")
	}
	if !strings.Contains(err.Error(), "unrecognized color string") {
		t.Errorf("error %q does not carry the native description", err)
	}

	// The rejected wand must not leak.
	w.mu.Lock()
	n := len(w.live)
	w.mu.Unlock()
	if n != 0 {
		t.Errorf("%d wands still live after constructor failure", n)
	}
}

func TestFromHex_MalformedFailsBeforeNative(t *testing.T) {
	rt, w := newRuntime()
	_, err := FromHex(rt, "ff0000")
	if err == nil {
		t.Fatal("expected malformed hex to fail")
	}
	if !stderrors.Is(err, errors.New(errors.PhaseResource, errors.KindInvalidInput).Build()) {
		t.Errorf("error = %v, want resource invalid_input", err)
	}
	if len(w.lib.Calls()) != 0 {
		t.Error("malformed hex reached the native layer")
	}
}

func TestHex_RoundTrip(t *testing.T) {
	rt, _ := newRuntime()
	p, err := FromHex(rt, "#ff8000")
	if err != nil {
		t.Fatal(err)
	}
	defer mustClose(t, p)

	hex, err := p.Hex()
	if err != nil {
		t.Fatal(err)
	}
	if hex != "#ff8000" {
		t.Errorf("hex = %q, want #ff8000", hex)
	}
}

func TestSpec_OpaqueUsesHex(t *testing.T) {
	rt, _ := newRuntime()
	p, err := FromHex(rt, "#ff8000")
	if err != nil {
		t.Fatal(err)
	}
	defer mustClose(t, p)

	spec, err := p.Spec()
	if err != nil {
		t.Fatal(err)
	}
	if spec != "#ff8000" {
		t.Errorf("spec = %q, want #ff8000", spec)
	}
}

func TestSpec_TranslucentKeepsAlpha(t *testing.T) {
	rt, _ := newRuntime()
	p, err := FromRGBA(rt, 1, 0, 0, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	defer mustClose(t, p)

	spec, err := p.Spec()
	if err != nil {
		t.Fatal(err)
	}
	if spec != "rgba(255,0,0,0.5)" {
		t.Errorf("spec = %q, want rgba(255,0,0,0.5)", spec)
	}
}

func TestHSL_OutParameters(t *testing.T) {
	rt, _ := newRuntime()
	p, err := FromString(rt, "lime")
	if err != nil {
		t.Fatal(err)
	}
	defer mustClose(t, p)

	h, s, l, err := p.HSL()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(h-1.0/3.0) > 1e-9 || s != 1 || l != 0.5 {
		t.Errorf("hsl = %v %v %v, want 1/3 1 0.5", h, s, l)
	}
}

func TestTransparent(t *testing.T) {
	rt, _ := newRuntime()
	p, err := Transparent(rt)
	if err != nil {
		t.Fatal(err)
	}
	defer mustClose(t, p)

	a, err := p.Alpha()
	if err != nil {
		t.Fatal(err)
	}
	if a != 0 {
		t.Errorf("alpha = %v, want 0", a)
	}
}

func TestClone_Independent(t *testing.T) {
	rt, _ := newRuntime()
	p, err := FromString(rt, "red")
	if err != nil {
		t.Fatal(err)
	}
	defer mustClose(t, p)

	dup, err := p.Clone()
	if err != nil {
		t.Fatal(err)
	}
	defer mustClose(t, dup)

	if err := dup.SetRed(0.5); err != nil {
		t.Fatal(err)
	}
	orig, err := p.Red()
	if err != nil {
		t.Fatal(err)
	}
	if orig != 1 {
		t.Errorf("original red = %v after mutating the clone, want 1", orig)
	}
}

func TestUseAfterClose(t *testing.T) {
	rt, _ := newRuntime()
	p, err := New(rt)
	if err != nil {
		t.Fatal(err)
	}
	mustClose(t, p)

	_, err = p.Red()
	if !stderrors.Is(err, errors.ClosedResource("")) {
		t.Errorf("error = %v, want closed_resource", err)
	}
}
