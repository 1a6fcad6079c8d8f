package api

import (
	"fmt"
	"regexp"
	"strconv"
	"unsafe"

	"github.com/coreos/go-semver/semver"

	"github.com/ppawlak/pystacia/errors"
	"github.com/ppawlak/pystacia/native"
)

// e.g. "ImageMagick 6.9.11-60 Q16 x86_64 2021-01-25 https://imagemagick.org"
var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)(?:-(\d+))?`)

func parseVersion(raw string) (*semver.Version, error) {
	m := versionPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, errors.InvalidInput(errors.PhaseCall,
			fmt.Sprintf("unparsable version report %q", raw))
	}
	release := m[1] + "." + m[2] + "." + m[3]
	if m[4] != "" {
		// Packaging patch level rides along as build metadata; it
		// never participates in version comparisons.
		release += "+" + m[4]
	}
	return semver.NewVersion(release)
}

// VersionString reports the native library's own version banner.
func (r *Runtime) VersionString() (string, error) {
	v, err := r.dispatch(CategoryMagickGlobal, nil, "get_version", []any{nil}, true)
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

// Version reports the loaded ImageMagick release, parsed and
// memoized. Callers use it to gate version-dependent enum values and
// optional symbols.
func (r *Runtime) Version() (*semver.Version, error) {
	r.versionOnce.Do(func() {
		raw, err := r.VersionString()
		if err != nil {
			r.versionErr = err
			return
		}
		sv, err := parseVersion(raw)
		if err != nil {
			r.versionErr = err
			return
		}
		r.version = sv
	})
	if r.versionErr != nil {
		return nil, r.versionErr
	}
	return r.version, nil
}

// QuantumDepth reports the per-channel bit depth the loaded build
// was compiled with, from its configure options. Operations taking
// quantum-range thresholds scale by it.
func (r *Runtime) QuantumDepth() (uint, error) {
	opts, err := r.Options()
	if err != nil {
		return 0, err
	}
	raw, ok := opts["QuantumDepth"]
	if !ok {
		return 0, errors.Unsupported(errors.PhaseCall,
			"build reports no QuantumDepth configure option")
	}
	depth, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return 0, errors.InvalidInput(errors.PhaseCall,
			fmt.Sprintf("malformed QuantumDepth option %q", raw))
	}
	return uint(depth), nil
}

// Options queries the library's configure options (delegates,
// version stamps, feature flags) as a map.
func (r *Runtime) Options() (map[string]string, error) {
	var count uint
	v, err := r.dispatch(CategoryMagickGlobal, nil, "query_configure_options",
		[]any{"*", unsafe.Pointer(&count)}, true)
	if err != nil {
		return nil, err
	}

	addr, _ := v.(uintptr)
	keys := native.GoStringArray(addr, count)

	options := make(map[string]string, len(keys))
	for _, key := range keys {
		val, err := r.dispatch(CategoryMagickGlobal, nil, "query_configure_option",
			[]any{key}, true)
		if err != nil {
			return nil, err
		}
		s, _ := val.(string)
		options[key] = s
	}
	return options, nil
}
