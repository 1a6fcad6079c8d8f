package bridge

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Policy selects the concurrency discipline for native calls.
type Policy uint8

const (
	// Funneled routes every native call through one dedicated worker
	// goroutine. Calls are served strictly in submission order, so
	// the native library sees a global total order regardless of how
	// many goroutines issue requests. This is the default because
	// not every MagickWand build is safe to enter concurrently.
	Funneled Policy = iota

	// Direct executes every call synchronously on the calling
	// goroutine. Use when the deployment is single-goroutine or the
	// native build is known thread-safe.
	Direct
)

func (p Policy) String() string {
	if p == Direct {
		return "direct"
	}
	return "funneled"
}

// PolicyEnv selects the policy: the value "simple" (case-insensitive)
// opts into Direct, anything else keeps Funneled.
const PolicyEnv = "PYSTACIA_IMPL"

// PolicyFromEnv reads PolicyEnv.
func PolicyFromEnv() Policy {
	if strings.EqualFold(os.Getenv(PolicyEnv), "simple") {
		return Direct
	}
	return Funneled
}

type outcome struct {
	value    any
	err      error
	panicked any
	hasPanic bool
}

type request struct {
	fn   func() (any, error)
	done chan outcome
}

// Bridge decouples which goroutine wants a native call from which
// goroutine is allowed to make it. The policy is fixed at
// construction and never reselected.
type Bridge struct {
	policy    Policy
	startOnce sync.Once
	requests  chan *request
}

// New creates a bridge with the given policy. The funneled worker is
// started lazily on first use and serves for the process lifetime.
func New(p Policy) *Bridge {
	return &Bridge{policy: p}
}

// Policy reports the active policy.
func (b *Bridge) Policy() Policy {
	return b.policy
}

// Do executes fn under the bridge's policy and blocks until it
// completes. Under Funneled the caller blocks for the full native
// call duration; there is no cancellation of an in-flight call.
// An error or panic raised on the worker is surfaced on the calling
// goroutine with its original value intact, and the worker keeps
// serving subsequent calls.
func (b *Bridge) Do(fn func() (any, error)) (any, error) {
	if b.policy == Direct {
		return fn()
	}

	b.startOnce.Do(func() {
		b.requests = make(chan *request)
		go b.serve()
	})

	req := &request{fn: fn, done: make(chan outcome, 1)}
	b.requests <- req
	out := <-req.done

	if out.hasPanic {
		panic(out.panicked)
	}
	return out.value, out.err
}

func (b *Bridge) serve() {
	Logger().Debug("bridge worker started")
	for req := range b.requests {
		req.done <- execute(req.fn)
	}
}

func execute(fn func() (any, error)) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out.hasPanic = true
			out.panicked = r
		}
	}()
	out.value, out.err = fn()
	return out
}

var (
	defaultBridge *Bridge
	defaultOnce   sync.Once
)

// Default returns the process-wide bridge with the environment-selected
// policy, memoized on first use.
func Default() *Bridge {
	defaultOnce.Do(func() {
		p := PolicyFromEnv()
		Logger().Debug("selected execution policy", zap.Stringer("policy", p))
		defaultBridge = New(p)
	})
	return defaultBridge
}
