package api

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/ppawlak/pystacia/bridge"
	"github.com/ppawlak/pystacia/errors"
)

func TestDispatch_BooleanFailureCarriesMessage(t *testing.T) {
	rt, w := newStubRuntime()
	wand := mustWand(t, rt)
	magick := rawHandle{CategoryMagick, wand.ptr}

	_, err := rt.Call(magick, "set_depth", 0)
	if err == nil {
		t.Fatal("expected operation failure for depth 0")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseCall, Kind: errors.KindOperationFailed}) {
		t.Fatalf("got %v, want operation_failed", err)
	}
	if !strings.Contains(err.Error(), "depth must be positive") {
		t.Errorf("error %q does not carry the native description", err)
	}

	// The native-owned description buffer must be released.
	_, relinquished, leaked := w.stats()
	if relinquished != 1 {
		t.Errorf("relinquish count = %d, want 1", relinquished)
	}
	if leaked != 0 {
		t.Errorf("%d exception buffers leaked", leaked)
	}
}

func TestDispatch_BooleanFailureWithoutDescription(t *testing.T) {
	rt, w := newStubRuntime()
	wand := mustWand(t, rt)

	// flop fails without filling the exception slot, so the fetch
	// comes back empty and the generic message applies.
	_, err := rt.Call(rawHandle{CategoryImage, wand.ptr}, "flop")
	if err == nil {
		t.Fatal("expected operation failure")
	}
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("unexpected error type %T", err)
	}
	if e.Detail == "" {
		t.Error("boolean failure produced an empty message")
	}
	if !strings.Contains(e.Detail, "without description") {
		t.Errorf("detail = %q, want the generic no-description message", e.Detail)
	}

	if _, _, leaked := w.stats(); leaked != 0 {
		t.Errorf("%d exception buffers leaked", leaked)
	}
}

func TestDispatch_BooleanSuccess(t *testing.T) {
	rt, _ := newStubRuntime()
	wand := mustWand(t, rt)
	magick := rawHandle{CategoryMagick, wand.ptr}

	v, err := rt.Call(magick, "set_depth", 8)
	if err != nil {
		t.Fatal(err)
	}
	if v != true {
		t.Errorf("boolean success decoded to %v", v)
	}
}

func TestDispatch_DecodeString(t *testing.T) {
	rt, _ := newStubRuntime()
	wand := mustWand(t, rt)
	magick := rawHandle{CategoryMagick, wand.ptr}

	v, err := rt.Call(magick, "get_format")
	if err != nil {
		t.Fatal(err)
	}
	if v != "JPEG" {
		t.Errorf("string result = %v, want JPEG", v)
	}
}

func TestDispatch_DecodeEnum(t *testing.T) {
	rt, _ := newStubRuntime()
	wand := mustWand(t, rt)

	v, err := rt.Call(wand, "get_type")
	if err != nil {
		t.Fatal(err)
	}
	// Enumerated integers unwrap to plain int.
	if got, ok := v.(int); !ok || got != 6 {
		t.Errorf("enum result = %v (%T), want int 6", v, v)
	}
}

func TestDispatch_DecodeSize(t *testing.T) {
	rt, _ := newStubRuntime()
	wand := mustWand(t, rt)

	v, err := rt.Call(wand, "get_width")
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := v.(uint); !ok || got != 512 {
		t.Errorf("size result = %v (%T), want uint 512", v, v)
	}
}

func TestDispatch_HandleArgumentUnwrapped(t *testing.T) {
	w := newStubWand()
	var seen uintptr
	w.lib.Register("MagickCompositeImage", func(dst, src uintptr, op int32, x, y int) int32 {
		seen = src
		return 1
	})
	rt := NewRuntime(w.lib, bridge.New(bridge.Direct))

	dst := mustWand(t, rt)
	src := mustWand(t, rt)

	// A handle-valued argument crosses the boundary as its raw pointer.
	if _, err := rt.Call(dst, "composite", src, 40, 0, 0); err != nil {
		t.Fatal(err)
	}
	if seen != src.ptr {
		t.Errorf("native layer saw %#x, want %#x", seen, src.ptr)
	}
}

func TestDispatch_TooManyArguments(t *testing.T) {
	rt, _ := newStubRuntime()
	wand := mustWand(t, rt)

	_, err := rt.Call(wand, "flip", 1, 2, 3)
	if err == nil {
		t.Fatal("expected arity error")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseCall, Kind: errors.KindInvalidInput}) {
		t.Errorf("got %v, want invalid_input", err)
	}
}

func TestDispatch_FunneledBridge(t *testing.T) {
	w := newStubWand()
	rt := NewRuntime(w.lib, bridge.New(bridge.Funneled))

	wand := mustWand(t, rt)
	magick := rawHandle{CategoryMagick, wand.ptr}
	if _, err := rt.Call(magick, "set_depth", 16); err != nil {
		t.Fatal(err)
	}
}
