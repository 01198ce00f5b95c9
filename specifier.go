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
	"strings"
)

// specifierPattern matches one comparison clause of a PEP 440 specifier.
// "===" must precede "==" in the alternation.
var specifierPattern = regexp.MustCompile(
	`^\s*(?P<compare>~=|===|==|!=|<=|>=|<|>)\s*(?P<version>\S+)\s*$`)

// requirementPattern matches one requires_dist line: a package name with
// optional extras, an optional parenthesized or bare specifier list, and an
// optional environment marker after ";".
var requirementPattern = regexp.MustCompile(
	`^\s*(?P<name>[A-Za-z0-9][A-Za-z0-9._-]*)\s*(?:\[(?P<extras>[^\]]*)\])?\s*` +
		`(?:\((?P<parens>[^)]*)\)|(?P<bare>[^;]+?))?\s*(?:;\s*(?P<marker>.*))?$`)

// ParseSpecifiers parses a comma-separated PEP 440 specifier list into the
// Range of versions satisfying every clause. The empty string yields the
// full range.
func ParseSpecifiers(s string) (Range, error) {
	if strings.TrimSpace(s) == "" {
		return FullRange(), nil
	}

	result := FullRange()
	for _, clause := range strings.Split(s, ",") {
		r, err := parseSpecifier(clause)
		if err != nil {
			return Range{}, err
		}
		result = result.Intersection(r)
	}
	return result, nil
}

// parseSpecifier parses a single comparison clause into a Range.
func parseSpecifier(clause string) (Range, error) {
	m := specifierPattern.FindStringSubmatch(clause)
	if m == nil {
		return Range{}, &SpecifierSyntaxError{
			Input:   clause,
			Message: "expected a comparison operator followed by a version",
		}
	}
	cmp := m[specifierPattern.SubexpIndex("compare")]
	raw := m[specifierPattern.SubexpIndex("version")]

	version, err := ParseVersion(raw)
	if err != nil {
		return Range{}, &SpecifierSyntaxError{
			Input:   clause,
			Message: fmt.Sprintf("invalid version %q: %v", raw, err),
		}
	}

	switch cmp {
	case ">=":
		return HigherThan(version), nil
	case "<=":
		return StrictlyLowerThan(version).Union(Exact(version)), nil
	case "<":
		return StrictlyLowerThan(version), nil
	case ">":
		return StrictlyLowerThan(version).Union(Exact(version)).Complement(), nil
	case "==":
		return Exact(version), nil
	case "===":
		// Arbitrary equality degrades to exact matching on the parsed
		// version; the raw string form is not preserved.
		return Exact(version), nil
	case "!=":
		return Exact(version).Complement(), nil
	case "~=":
		return compatibleRange(version, raw, clause)
	default:
		return Range{}, &SpecifierSyntaxError{
			Input:   clause,
			Message: fmt.Sprintf("unsupported operator %q", cmp),
		}
	}
}

// compatibleRange implements the "~=" compatible-release operator:
// ~=2.2 means >=2.2, <3.0 and ~=1.4.5 means >=1.4.5, <1.5.0. The upper
// bound depends on how many release segments were written, so it is derived
// from the raw text rather than the normalized version.
func compatibleRange(version Version, raw, clause string) (Range, error) {
	segs := releaseSegmentCount(raw)
	if segs < 2 {
		return Range{}, &SpecifierSyntaxError{
			Input:   clause,
			Message: "compatible-release operator requires at least two release segments",
		}
	}

	idx := segs - 2
	if idx > 2 {
		idx = 2
	}

	upper := Version{Epoch: version.Epoch, Major: version.Major, Minor: version.Minor, Patch: version.Patch}
	switch idx {
	case 0:
		upper = Version{Epoch: upper.Epoch, Major: upper.Major + 1}
	case 1:
		upper = Version{Epoch: upper.Epoch, Major: upper.Major, Minor: upper.Minor + 1}
	default:
		upper = Version{Epoch: upper.Epoch, Major: upper.Major, Minor: upper.Minor, Patch: upper.Patch + 1}
	}

	return Between(version, upper), nil
}

// releaseSegmentCount counts the dotted release segments in a raw version
// string, ignoring any epoch, tags and local segment around them.
func releaseSegmentCount(raw string) int {
	m := versionPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(raw)))
	if m == nil {
		return 0
	}
	release := m[versionPattern.SubexpIndex("release")]
	return strings.Count(release, ".") + 1
}

// ParseRequirement parses one requires_dist requirement line into a
// Dependency. Lines carrying an environment marker (anything after ";",
// typically extras) are skipped: the second return value is false and the
// dependency is empty. Extras brackets on the package name itself are
// stripped.
func ParseRequirement(s string) (Dependency, bool, error) {
	m := requirementPattern.FindStringSubmatch(s)
	if m == nil {
		return Dependency{}, false, &SpecifierSyntaxError{
			Input:   s,
			Message: "malformed requirement",
		}
	}

	if marker := m[requirementPattern.SubexpIndex("marker")]; strings.TrimSpace(marker) != "" {
		return Dependency{}, false, nil
	}

	name := m[requirementPattern.SubexpIndex("name")]

	specs := m[requirementPattern.SubexpIndex("parens")]
	if specs == "" {
		specs = m[requirementPattern.SubexpIndex("bare")]
	}

	versions, err := ParseSpecifiers(specs)
	if err != nil {
		return Dependency{}, false, err
	}

	return Dependency{Package: MakeName(name), Versions: versions}, true, nil
}
