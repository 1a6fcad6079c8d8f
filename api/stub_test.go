package api

import (
	"sync"
	"unsafe"

	"github.com/ppawlak/pystacia/bridge"
	"github.com/ppawlak/pystacia/native"
)

// stubWand simulates enough of MagickWand for the dispatcher tests:
// wand allocation, a failing operation, and the exception facility.
type stubWand struct {
	lib *native.StubLibrary

	mu           sync.Mutex
	nextHandle   uintptr
	live         map[uintptr]bool
	lastError    map[uintptr]string
	excBufs      map[uintptr][]byte
	genesisCalls int
	relinquished int
}

func newStubWand() *stubWand {
	w := &stubWand{
		nextHandle: 0x1000,
		live:       make(map[uintptr]bool),
		lastError:  make(map[uintptr]string),
		excBufs:    make(map[uintptr][]byte),
	}

	w.lib = native.NewStub("stub-magickwand").
		Register("MagickWandGenesis", func() {
			w.mu.Lock()
			w.genesisCalls++
			w.mu.Unlock()
		}).
		Register("MagickWandTerminus", func() {}).
		Register("NewMagickWand", w.alloc).
		Register("CloneMagickWand", func(src uintptr) uintptr {
			w.mu.Lock()
			ok := w.live[src]
			w.mu.Unlock()
			if !ok {
				return 0
			}
			return w.alloc()
		}).
		Register("DestroyMagickWand", func(h uintptr) uintptr {
			w.mu.Lock()
			delete(w.live, h)
			w.mu.Unlock()
			return 0
		}).
		Register("MagickGetException", func(h uintptr, excType unsafe.Pointer) uintptr {
			w.mu.Lock()
			defer w.mu.Unlock()
			msg := w.lastError[h]
			if msg == "" {
				return 0
			}
			buf := append([]byte(msg), 0)
			addr := uintptr(unsafe.Pointer(&buf[0]))
			w.excBufs[addr] = buf
			return addr
		}).
		Register("MagickRelinquishMemory", func(p uintptr) uintptr {
			w.mu.Lock()
			delete(w.excBufs, p)
			w.relinquished++
			w.mu.Unlock()
			return 0
		}).
		Register("MagickSetDepth", func(h uintptr, depth uint) int32 {
			if depth == 0 {
				w.fail(h, "depth must be positive")
				return 0
			}
			return 1
		}).
		Register("MagickFlipImage", func(h uintptr) int32 {
			return 1
		}).
		// Fails without recording an exception, like native code that
		// signals false but never fills the exception slot.
		Register("MagickFlopImage", func(h uintptr) int32 {
			return 0
		}).
		Register("MagickGetFormat", func(h uintptr) string {
			return "JPEG"
		}).
		Register("MagickGetImageType", func(h uintptr) int32 {
			return 6 // truecolor
		}).
		Register("MagickGetImageWidth", func(h uintptr) uint {
			return 512
		}).
		Register("MagickGetVersion", func(out unsafe.Pointer) string {
			return "ImageMagick 6.9.11-60 Q16 x86_64 2021-01-25 https://imagemagick.org"
		})

	return w
}

func (w *stubWand) alloc() uintptr {
	w.mu.Lock()
	defer w.mu.Unlock()
	h := w.nextHandle
	w.nextHandle += 16
	w.live[h] = true
	return h
}

func (w *stubWand) fail(h uintptr, msg string) {
	w.mu.Lock()
	w.lastError[h] = msg
	w.mu.Unlock()
}

func (w *stubWand) isLive(h uintptr) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.live[h]
}

func (w *stubWand) stats() (genesis, relinquished, leakedBufs int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.genesisCalls, w.relinquished, len(w.excBufs)
}

// newStubRuntime wires a runtime over the stub with a direct bridge;
// concurrency-sensitive tests construct their own funneled bridge.
func newStubRuntime() (*Runtime, *stubWand) {
	w := newStubWand()
	return NewRuntime(w.lib, bridge.New(bridge.Direct)), w
}
