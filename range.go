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
	"strings"
)

// Range is an immutable set of versions represented as sorted, disjoint
// intervals. All operations return new values; the zero Range is the empty
// set.
//
// Ranges are the constraint values of the resolver: dependency specifiers
// parse into Ranges, incompatibility terms carry Ranges, and the partial
// solution intersects them. The representation stays normalized (sorted,
// non-empty, non-overlapping, adjacent intervals merged), which keeps the
// set operations linear and the String form canonical.
//
// Example:
//
//	a := Between(MustParseVersion("1.0.0"), MustParseVersion("2.0.0"))
//	b := HigherThan(MustParseVersion("1.5.0"))
//	a.Intersection(b) // >=1.5.0, <2.0.0
type Range struct {
	intervals []versionInterval
}

// newRange creates a Range from intervals, normalizing them.
func newRange(intervals []versionInterval) Range {
	return Range{intervals: normalizeIntervals(intervals)}
}

// rangeFromBounds creates a Range spanning a single interval.
func rangeFromBounds(lower, upper versionBound) Range {
	if interval, ok := newInterval(lower, upper); ok {
		return Range{intervals: []versionInterval{interval}}
	}
	return Range{}
}

// EmptyRange returns the Range containing no versions.
func EmptyRange() Range {
	return Range{}
}

// FullRange returns the Range containing every version.
func FullRange() Range {
	return Range{
		intervals: []versionInterval{{
			lower: negativeInfinityBound(),
			upper: positiveInfinityBound(),
		}},
	}
}

// Exact returns the Range containing exactly one version.
func Exact(version Version) Range {
	return rangeFromBounds(finiteBound(version, true), finiteBound(version, true))
}

// HigherThan returns the half-open Range [version, +∞).
func HigherThan(version Version) Range {
	return rangeFromBounds(finiteBound(version, true), positiveInfinityBound())
}

// StrictlyLowerThan returns the half-open Range (-∞, version).
func StrictlyLowerThan(version Version) Range {
	return rangeFromBounds(negativeInfinityBound(), finiteBound(version, false))
}

// Between returns the half-open Range [lower, upper).
func Between(lower, upper Version) Range {
	return rangeFromBounds(finiteBound(lower, true), finiteBound(upper, false))
}

// cloneIntervals copies the interval slice for safe mutation.
func (r Range) cloneIntervals() []versionInterval {
	if len(r.intervals) == 0 {
		return nil
	}
	cloned := make([]versionInterval, len(r.intervals))
	copy(cloned, r.intervals)
	return cloned
}

// Union returns the set of versions in either range.
func (r Range) Union(other Range) Range {
	intervals := r.cloneIntervals()
	intervals = append(intervals, other.intervals...)
	return newRange(intervals)
}

// Intersection returns the set of versions in both ranges.
func (r Range) Intersection(other Range) Range {
	if len(r.intervals) == 0 || len(other.intervals) == 0 {
		return Range{}
	}

	result := make([]versionInterval, 0, len(r.intervals))
	i, j := 0, 0
	for i < len(r.intervals) && j < len(other.intervals) {
		if interval, ok := intersectInterval(r.intervals[i], other.intervals[j]); ok {
			result = append(result, interval)
		}

		if compareUpper(r.intervals[i].upper, other.intervals[j].upper) < 0 {
			i++
		} else {
			j++
		}
	}

	return newRange(result)
}

// intersectInterval computes the intersection of two intervals.
func intersectInterval(a, b versionInterval) (versionInterval, bool) {
	return newInterval(
		maxBound(a.lower, b.lower, compareLower),
		minBound(a.upper, b.upper, compareUpper),
	)
}

// Complement returns the set of versions NOT in this range.
func (r Range) Complement() Range {
	if len(r.intervals) == 0 {
		return FullRange()
	}

	gaps := make([]versionInterval, 0, len(r.intervals)+1)
	currentLower := negativeInfinityBound()

	for _, interval := range r.intervals {
		gapUpper := interval.complementUpperBound()
		if gap, ok := newInterval(currentLower, gapUpper); ok {
			gaps = append(gaps, gap)
		}
		currentLower = interval.complementLowerBound()
	}

	if tail, ok := newInterval(currentLower, positiveInfinityBound()); ok {
		gaps = append(gaps, tail)
	}

	return newRange(gaps)
}

// Contains tests if a specific version is in the range.
func (r Range) Contains(version Version) bool {
	for _, interval := range r.intervals {
		if interval.contains(version) {
			return true
		}
	}
	return false
}

// IsEmpty returns true if the range contains no versions.
func (r Range) IsEmpty() bool {
	return len(r.intervals) == 0
}

// IsFull returns true if the range contains every version.
func (r Range) IsFull() bool {
	return len(r.intervals) == 1 &&
		r.intervals[0].lower.isNegInfinity() &&
		r.intervals[0].upper.isPosInfinity()
}

// IsSubset returns true if every version in this range is also in other.
func (r Range) IsSubset(other Range) bool {
	if len(r.intervals) == 0 {
		return true
	}
	if len(other.intervals) == 0 {
		return false
	}

	i, j := 0, 0
	for i < len(r.intervals) {
		if j >= len(other.intervals) {
			return false
		}

		if other.intervals[j].covers(r.intervals[i]) {
			i++
			continue
		}

		if upperLessThanLower(other.intervals[j].upper, r.intervals[i].lower) {
			j++
			continue
		}

		return false
	}

	return true
}

// IsDisjoint returns true if the two ranges have no versions in common.
func (r Range) IsDisjoint(other Range) bool {
	if len(r.intervals) == 0 || len(other.intervals) == 0 {
		return true
	}

	i, j := 0, 0
	for i < len(r.intervals) && j < len(other.intervals) {
		if r.intervals[i].overlaps(other.intervals[j]) {
			return false
		}

		if compareUpper(r.intervals[i].upper, other.intervals[j].upper) < 0 {
			i++
		} else {
			j++
		}
	}

	return true
}

// Equal returns true if the two ranges contain exactly the same versions.
func (r Range) Equal(other Range) bool {
	return r.IsSubset(other) && other.IsSubset(r)
}

// LowestVersion returns the infimum of the range when it is non-empty and
// bounded below, and the zero version otherwise. The zero-version default is
// a conservative fallback for selection heuristics, not a general
// lower-bound solver.
func (r Range) LowestVersion() Version {
	if len(r.intervals) == 0 {
		return ZeroVersion()
	}
	lower := r.intervals[0].lower
	if !lower.isFinite() {
		return ZeroVersion()
	}
	return lower.version
}

// singletonVersion extracts the single version of a one-element range.
// Returns (version, true) if the range is a singleton, (zero, false) otherwise.
func (r Range) singletonVersion() (Version, bool) {
	if len(r.intervals) != 1 {
		return Version{}, false
	}

	interval := r.intervals[0]
	if !interval.lower.isFinite() || !interval.upper.isFinite() {
		return Version{}, false
	}
	if interval.lower.version.Compare(interval.upper.version) != 0 {
		return Version{}, false
	}
	if !interval.lower.inclusive || !interval.upper.inclusive {
		return Version{}, false
	}

	return interval.lower.version, true
}

// String renders the range in specifier notation. The empty range displays
// as "∅", the full range as "*", unions join with " || ".
func (r Range) String() string {
	if len(r.intervals) == 0 {
		return "∅"
	}

	if len(r.intervals) == 1 {
		return intervalToString(r.intervals[0])
	}

	parts := make([]string, len(r.intervals))
	for i, interval := range r.intervals {
		parts[i] = intervalToString(interval)
	}
	return strings.Join(parts, " || ")
}

// intervalToString converts a single interval to its string representation.
func intervalToString(interval versionInterval) string {
	if interval.lower.isNegInfinity() && interval.upper.isPosInfinity() {
		return "*"
	}

	if interval.lower.isFinite() && interval.upper.isFinite() {
		if interval.lower.version.Compare(interval.upper.version) == 0 &&
			interval.lower.inclusive && interval.upper.inclusive {
			return fmt.Sprintf("==%s", interval.lower.version)
		}
	}

	var parts []string

	if interval.lower.isFinite() {
		if interval.lower.inclusive {
			parts = append(parts, fmt.Sprintf(">=%s", interval.lower.version))
		} else {
			parts = append(parts, fmt.Sprintf(">%s", interval.lower.version))
		}
	}

	if interval.upper.isFinite() {
		if interval.upper.inclusive {
			parts = append(parts, fmt.Sprintf("<=%s", interval.upper.version))
		} else {
			parts = append(parts, fmt.Sprintf("<%s", interval.upper.version))
		}
	}

	if len(parts) == 0 {
		return "*"
	}

	return strings.Join(parts, ", ")
}
