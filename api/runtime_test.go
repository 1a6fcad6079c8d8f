package api

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/ppawlak/pystacia/errors"
)

func TestInit_GenesisRunsOnce(t *testing.T) {
	rt, w := newStubRuntime()

	for i := 0; i < 3; i++ {
		if err := rt.Init(); err != nil {
			t.Fatal(err)
		}
	}

	genesis, _, _ := w.stats()
	if genesis != 1 {
		t.Errorf("genesis ran %d times, want 1", genesis)
	}
}

func TestInit_RunsBeforeFirstCall(t *testing.T) {
	rt, w := newStubRuntime()

	if _, err := rt.CallStatic(CategoryWand, "new"); err != nil {
		t.Fatal(err)
	}

	calls := w.lib.Calls()
	if len(calls) < 2 || calls[0] != "MagickWandGenesis" || calls[1] != "NewMagickWand" {
		t.Errorf("call order = %v, want genesis before constructor", calls)
	}
}

func TestTerminate_Idempotent(t *testing.T) {
	rt, w := newStubRuntime()
	if err := rt.Init(); err != nil {
		t.Fatal(err)
	}

	if err := rt.Terminate(); err != nil {
		t.Fatal(err)
	}
	if err := rt.Terminate(); err != nil {
		t.Fatal(err)
	}

	n := 0
	for _, c := range w.lib.Calls() {
		if c == "MagickWandTerminus" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("terminus ran %d times, want 1", n)
	}
}

func TestResolve_CachesBoundSymbol(t *testing.T) {
	rt, _ := newStubRuntime()

	bs1, err := rt.resolve(CategoryWand, "new")
	if err != nil {
		t.Fatal(err)
	}
	if !bs1.proc.Attached() {
		t.Fatal("contract not attached on first resolution")
	}

	bs2, err := rt.resolve(CategoryWand, "new")
	if err != nil {
		t.Fatal(err)
	}
	if bs1 != bs2 {
		t.Error("second resolution did not hit the cache")
	}
}

func TestResolve_ConcurrentIdempotentBinding(t *testing.T) {
	rt, _ := newStubRuntime()

	const n = 32
	var wg sync.WaitGroup
	results := make([]*boundSymbol, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bs, err := rt.resolve(CategoryMagick, "set_depth")
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = bs
		}(i)
	}
	wg.Wait()

	// All callers converge on one consistent contract.
	first := results[0]
	if first == nil {
		t.Fatal("no bound symbol")
	}
	c := first.proc.Contract()
	if len(c.Args) != 2 {
		t.Fatalf("contract arity = %d, want 2 (receiver + depth)", len(c.Args))
	}
	for i, bs := range results {
		if bs != first {
			t.Fatalf("caller %d got a different bound symbol", i)
		}
	}
}

func TestProbe_FeatureDetection(t *testing.T) {
	rt, _ := newStubRuntime()

	// set_color (MagickSetImageColor, added in 6.6.1.6) is in the
	// descriptor table but not exported by this stub build.
	if rt.Probe(CategoryImage, "set_color") {
		t.Error("probe of absent symbol reported available")
	}

	if !rt.Probe(CategoryMagick, "set_depth") {
		t.Error("probe of present symbol reported unavailable")
	}

	// Unknown logical names are also just "unavailable" in probe mode.
	if rt.Probe(CategoryImage, "frobnicate") {
		t.Error("probe of unknown operation reported available")
	}
}

func TestCall_MissingSymbolThrows(t *testing.T) {
	rt, _ := newStubRuntime()

	wand := mustWand(t, rt)
	_, err := rt.Call(wand, "set_color", rawHandle{CategoryPixel, 0x1})
	if err == nil {
		t.Fatal("expected error for missing symbol in throwing mode")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseBind, Kind: errors.KindSymbolMissing}) {
		t.Errorf("got %v, want symbol_missing", err)
	}
}

func TestVersion_Parsed(t *testing.T) {
	rt, w := newStubRuntime()

	v, err := rt.Version()
	if err != nil {
		t.Fatal(err)
	}
	if v.Major != 6 || v.Minor != 9 || v.Patch != 11 {
		t.Errorf("version = %v, want 6.9.11", v)
	}

	// Memoized: a second query must not hit the library again.
	before := len(w.lib.Calls())
	if _, err := rt.Version(); err != nil {
		t.Fatal(err)
	}
	if after := len(w.lib.Calls()); after != before {
		t.Error("second Version() re-queried the library")
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"ImageMagick 6.9.11-60 Q16 x86_64", "6.9.11", false},
		{"ImageMagick 7.1.0 Q16HDRI aarch64", "7.1.0", false},
		{"garbage", "", true},
	}
	for _, tt := range tests {
		v, err := parseVersion(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseVersion(%q) expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseVersion(%q): %v", tt.raw, err)
			continue
		}
		got := v.String()
		if got[:len(tt.want)] != tt.want {
			t.Errorf("parseVersion(%q) = %s, want prefix %s", tt.raw, got, tt.want)
		}
	}
}

// mustWand allocates a raw wand handle for dispatcher tests.
func mustWand(t *testing.T, rt *Runtime) rawHandle {
	t.Helper()
	v, err := rt.CallStatic(CategoryWand, "new")
	if err != nil {
		t.Fatal(err)
	}
	return rawHandle{CategoryImage, v.(uintptr)}
}
