// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pypgrub

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// versionPattern is the permissive PEP 440 grammar from the packaging project.
// Inputs are lowercased and trimmed before matching.
var versionPattern = regexp.MustCompile(
	`^v?(?:(?:(?P<epoch>[0-9]+)!)?(?P<release>[0-9]+(?:\.[0-9]+)*)` +
		`(?P<pre>[-_\.]?(?P<pre_l>a|b|c|rc|alpha|beta|pre|preview)[-_\.]?(?P<pre_n>[0-9]+)?)?` +
		`(?P<post>(?:-(?P<post_n1>[0-9]+))|(?:[-_\.]?(?P<post_l>post|rev|r)[-_\.]?(?P<post_n2>[0-9]+)?))?` +
		`(?P<dev>[-_\.]?(?P<dev_l>dev)[-_\.]?(?P<dev_n>[0-9]+)?)?)` +
		`(?:\+(?P<local>[a-z0-9]+(?:[-_\.][a-z0-9]+)*))?$`)

// tagProbePattern is used only to produce a better error when the full
// grammar fails: it fishes out the first alphabetic tag after the release
// segments so an unknown pre-release name can be reported as such.
var tagProbePattern = regexp.MustCompile(
	`^v?(?:[0-9]+!)?[0-9]+(?:\.[0-9]+)*[-_\.]?(?P<tag>[a-z]+)`)

// PrereleaseKind identifies the pre-release phase of a version.
type PrereleaseKind int

const (
	PrereleaseAlpha PrereleaseKind = iota
	PrereleaseBeta
	PrereleaseRC
)

// String returns the canonical PEP 440 spelling of the tag.
func (k PrereleaseKind) String() string {
	switch k {
	case PrereleaseAlpha:
		return "a"
	case PrereleaseBeta:
		return "b"
	default:
		return "rc"
	}
}

// parsePrereleaseKind maps a written tag to its kind. The accepted spellings
// follow PEP 440 normalization: a/alpha, b/beta, rc/c/pre/preview.
func parsePrereleaseKind(tag string) (PrereleaseKind, bool) {
	switch tag {
	case "a", "alpha":
		return PrereleaseAlpha, true
	case "b", "beta":
		return PrereleaseBeta, true
	case "rc", "c", "pre", "preview":
		return PrereleaseRC, true
	default:
		return 0, false
	}
}

// Prerelease is the pre-release marker of a version: a phase plus a counter.
type Prerelease struct {
	Kind   PrereleaseKind
	Number int
}

// Version is an immutable PEP 440 version identifier.
//
// The release segment is normalized to exactly major/minor/patch; shorter
// inputs are zero-padded and segments past the third are ignored. The
// optional pre/post/dev markers are nil when absent. Local is the opaque
// local segment after "+", preserved on the value but never re-emitted by
// String (nor consulted by Compare).
//
// Versions are produced by ParseVersion, NewVersion, or Bump; the zero value
// is the version 0.0.0.
type Version struct {
	Epoch int
	Major int
	Minor int
	Patch int
	Pre   *Prerelease
	Post  *int
	Dev   *int
	Local string
}

// NewVersion creates a plain release version.
func NewVersion(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// ZeroVersion returns 0.0.0, the minimum of the version order.
func ZeroVersion() Version {
	return Version{}
}

// ParseVersion parses a PEP 440 version identifier.
//
// The grammar accepts an optional leading "v", an optional "N!" epoch, a
// dot-separated release, an optional pre-release tag (a|alpha, b|beta,
// rc|c|pre|preview, counter defaulting to 0), an optional post-release tag
// (post|rev|r, or the bare "-N" shorthand), an optional dev tag and an
// optional "+local" segment. Failures return a *VersionSyntaxError
// distinguishing a malformed identifier, a non-integer segment and an
// unrecognized pre-release tag.
func ParseVersion(s string) (Version, error) {
	input := strings.ToLower(strings.TrimSpace(s))

	m := versionPattern.FindStringSubmatch(input)
	if m == nil {
		return Version{}, probeParseFailure(s, input)
	}
	group := func(name string) string {
		return m[versionPattern.SubexpIndex(name)]
	}

	parseInt := func(part string) (int, error) {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, &VersionSyntaxError{Input: s, Part: part, Reason: VersionNotInteger}
		}
		return n, nil
	}

	var v Version
	var err error

	if epoch := group("epoch"); epoch != "" {
		if v.Epoch, err = parseInt(epoch); err != nil {
			return Version{}, err
		}
	}

	segments := strings.Split(group("release"), ".")
	targets := []*int{&v.Major, &v.Minor, &v.Patch}
	for i, target := range targets {
		if i >= len(segments) {
			break
		}
		if *target, err = parseInt(segments[i]); err != nil {
			return Version{}, err
		}
	}

	if tag := group("pre_l"); tag != "" {
		kind, ok := parsePrereleaseKind(tag)
		if !ok {
			return Version{}, &VersionSyntaxError{Input: s, Part: tag, Reason: VersionUnknownPrerelease}
		}
		n := 0
		if raw := group("pre_n"); raw != "" {
			if n, err = parseInt(raw); err != nil {
				return Version{}, err
			}
		}
		v.Pre = &Prerelease{Kind: kind, Number: n}
	}

	if group("post") != "" {
		n := 0
		if raw := group("post_n1"); raw != "" {
			if n, err = parseInt(raw); err != nil {
				return Version{}, err
			}
		} else if raw := group("post_n2"); raw != "" {
			if n, err = parseInt(raw); err != nil {
				return Version{}, err
			}
		}
		v.Post = &n
	}

	if group("dev_l") != "" {
		n := 0
		if raw := group("dev_n"); raw != "" {
			if n, err = parseInt(raw); err != nil {
				return Version{}, err
			}
		}
		v.Dev = &n
	}

	v.Local = group("local")
	return v, nil
}

// probeParseFailure classifies a failed parse: an otherwise well-formed
// version with an unknown alphabetic tag reports the tag, anything else is
// a malformed identifier.
func probeParseFailure(original, lowered string) error {
	if m := tagProbePattern.FindStringSubmatch(lowered); m != nil {
		tag := m[tagProbePattern.SubexpIndex("tag")]
		if _, known := parsePrereleaseKind(tag); !known && tag != "post" && tag != "rev" && tag != "r" && tag != "dev" {
			return &VersionSyntaxError{Input: original, Part: tag, Reason: VersionUnknownPrerelease}
		}
	}
	return &VersionSyntaxError{Input: original, Reason: VersionMalformed}
}

// MustParseVersion is ParseVersion for inputs known to be valid; it panics on
// error. Intended for tests and fixed literals.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// compareOptional orders absent counters before present ones: nil < 0 < 1.
func compareOptional(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return intCompare(*a, *b)
	}
}

func intCompare(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Compare orders versions by the lexicographic tuple
// (epoch, major, minor, patch, post, dev).
//
// The pre-release marker deliberately does not participate: 1.0.0a1 and
// 1.0.0 compare equal under this model (see DESIGN.md). Absent post/dev
// counters sort below present ones, so 1.0.0 < 1.0.0post0 and
// 1.0.0 < 1.0.0dev0.
func (v Version) Compare(other Version) int {
	if c := intCompare(v.Epoch, other.Epoch); c != 0 {
		return c
	}
	if c := intCompare(v.Major, other.Major); c != 0 {
		return c
	}
	if c := intCompare(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := intCompare(v.Patch, other.Patch); c != 0 {
		return c
	}
	if c := compareOptional(v.Post, other.Post); c != 0 {
		return c
	}
	return compareOptional(v.Dev, other.Dev)
}

// Bump returns the smallest version strictly greater than v along the most
// specific axis currently set, in precedence order dev > post > pre > patch.
func (v Version) Bump() Version {
	switch {
	case v.Dev != nil:
		return v.BumpDev()
	case v.Post != nil:
		return v.BumpPost()
	case v.Pre != nil:
		next := *v.Pre
		next.Number++
		v.Pre = &next
		return v
	default:
		return v.BumpPatch()
	}
}

// BumpMajor returns the version with the major segment incremented.
func (v Version) BumpMajor() Version {
	v.Major++
	return v
}

// BumpMinor returns the version with the minor segment incremented.
func (v Version) BumpMinor() Version {
	v.Minor++
	return v
}

// BumpPatch returns the version with the patch segment incremented.
func (v Version) BumpPatch() Version {
	v.Patch++
	return v
}

// BumpPost returns the version with the post counter incremented, starting
// the counter at 0 when absent.
func (v Version) BumpPost() Version {
	n := 0
	if v.Post != nil {
		n = *v.Post + 1
	}
	v.Post = &n
	return v
}

// BumpDev returns the version with the dev counter incremented, starting the
// counter at 0 when absent.
func (v Version) BumpDev() Version {
	n := 0
	if v.Dev != nil {
		n = *v.Dev + 1
	}
	v.Dev = &n
	return v
}

// String renders major.minor.patch followed by the pre, post and dev markers
// when present. The epoch and local segment are intentionally not re-emitted;
// parse and format are asymmetric on those fields.
func (v Version) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != nil {
		fmt.Fprintf(&b, "%s%d", v.Pre.Kind, v.Pre.Number)
	}
	if v.Post != nil {
		fmt.Fprintf(&b, "post%d", *v.Post)
	}
	if v.Dev != nil {
		fmt.Fprintf(&b, "dev%d", *v.Dev)
	}
	return b.String()
}
