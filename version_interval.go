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

import "slices"

// versionInterval represents a contiguous range of versions between two
// bounds, half-open or closed depending on the bounds' inclusivity.
//
// Examples:
//   - [1.0.0, 2.0.0) represents >=1.0.0, <2.0.0
//   - (1.0.0, 2.0.0] represents >1.0.0, <=2.0.0
//   - [1.0.0, ∞) represents >=1.0.0
//
// Intervals are the building blocks of Range.
type versionInterval struct {
	lower versionBound
	upper versionBound
}

// newInterval creates an interval from bounds, returning false if it is empty.
func newInterval(lower, upper versionBound) (versionInterval, bool) {
	interval := versionInterval{lower: lower, upper: upper}
	if interval.isEmpty() {
		return versionInterval{}, false
	}
	return interval, true
}

// isEmpty returns true if the interval contains no versions: the upper bound
// lies below the lower bound, or the bounds tie but one side is exclusive.
func (iv versionInterval) isEmpty() bool {
	if iv.lower.isPosInfinity() || iv.upper.isNegInfinity() {
		return true
	}
	if iv.lower.isNegInfinity() || iv.upper.isPosInfinity() {
		return false
	}

	cmp := iv.lower.version.Compare(iv.upper.version)
	switch {
	case cmp < 0:
		return false
	case cmp > 0:
		return true
	default:
		return !iv.lower.inclusive || !iv.upper.inclusive
	}
}

// contains returns true if the given version falls within this interval.
func (iv versionInterval) contains(version Version) bool {
	if !iv.lower.isNegInfinity() {
		if cmp := version.Compare(iv.lower.version); cmp < 0 {
			return false
		} else if cmp == 0 && !iv.lower.inclusive {
			return false
		}
	}

	if !iv.upper.isPosInfinity() {
		if cmp := version.Compare(iv.upper.version); cmp > 0 {
			return false
		} else if cmp == 0 && !iv.upper.inclusive {
			return false
		}
	}

	return true
}

// upperLessThanLower returns true if the upper bound lies strictly below the
// lower bound. Used to detect gaps between intervals.
func upperLessThanLower(upper versionBound, lower versionBound) bool {
	switch {
	case upper.isNegInfinity():
		return !lower.isNegInfinity()
	case lower.isPosInfinity():
		return !upper.isPosInfinity()
	case upper.isPosInfinity():
		return false
	case lower.isNegInfinity():
		return false
	}

	cmp := upper.version.Compare(lower.version)
	if cmp < 0 {
		return true
	}
	if cmp > 0 {
		return false
	}
	return !upper.inclusive || !lower.inclusive
}

// overlaps returns true if this interval has any versions in common with other.
func (iv versionInterval) overlaps(other versionInterval) bool {
	if upperLessThanLower(iv.upper, other.lower) {
		return false
	}
	if upperLessThanLower(other.upper, iv.lower) {
		return false
	}
	return true
}

// gapBetween returns true if versions exist between the upper bound and the
// following lower bound. At a tied version the gap is exactly that version,
// present only when both bounds exclude it.
func gapBetween(upper versionBound, lower versionBound) bool {
	switch {
	case upper.isNegInfinity():
		return !lower.isNegInfinity()
	case lower.isPosInfinity():
		return !upper.isPosInfinity()
	case upper.isPosInfinity():
		return false
	case lower.isNegInfinity():
		return false
	}

	cmp := upper.version.Compare(lower.version)
	if cmp != 0 {
		return cmp < 0
	}
	return !upper.inclusive && !lower.inclusive
}

// touches returns true if this interval overlaps or is adjacent to other.
// Adjacent intervals merge without creating a gap, so [1, 2) followed by
// [2, 3] collapses into [1, 3].
func (iv versionInterval) touches(other versionInterval) bool {
	return !gapBetween(iv.upper, other.lower) &&
		!gapBetween(other.upper, iv.lower)
}

// merge combines two intervals into a single interval spanning both.
func (iv versionInterval) merge(other versionInterval) versionInterval {
	return versionInterval{
		lower: minBound(iv.lower, other.lower, compareLower),
		upper: maxBound(iv.upper, other.upper, compareUpper),
	}
}

func minBound(a, b versionBound, compare func(versionBound, versionBound) int) versionBound {
	if compare(a, b) <= 0 {
		return a
	}
	return b
}

func maxBound(a, b versionBound, compare func(versionBound, versionBound) int) versionBound {
	if compare(a, b) >= 0 {
		return a
	}
	return b
}

// covers returns true if this interval completely contains other.
func (iv versionInterval) covers(other versionInterval) bool {
	if compareLower(iv.lower, other.lower) > 0 {
		return false
	}
	if compareUpper(iv.upper, other.upper) < 0 {
		return false
	}
	return true
}

// complementLowerBound returns the lower bound of the complement gap above
// this interval.
func (iv versionInterval) complementLowerBound() versionBound {
	switch iv.upper.infinite {
	case boundPositiveInfinity:
		return positiveInfinityBound()
	case boundNegativeInfinity:
		return negativeInfinityBound()
	default:
		return versionBound{
			version:   iv.upper.version,
			inclusive: !iv.upper.inclusive,
			infinite:  boundFinite,
		}
	}
}

// complementUpperBound returns the upper bound of the complement gap below
// this interval.
func (iv versionInterval) complementUpperBound() versionBound {
	switch iv.lower.infinite {
	case boundNegativeInfinity:
		return negativeInfinityBound()
	case boundPositiveInfinity:
		return positiveInfinityBound()
	default:
		return versionBound{
			version:   iv.lower.version,
			inclusive: !iv.lower.inclusive,
			infinite:  boundFinite,
		}
	}
}

// normalizeIntervals canonicalizes a slice of intervals:
//  1. Removes empty intervals
//  2. Sorts by lower bound
//  3. Merges overlapping or adjacent intervals
//
// The result is sorted and disjoint, which every Range relies on.
func normalizeIntervals(intervals []versionInterval) []versionInterval {
	filtered := intervals[:0]
	for _, iv := range intervals {
		if !iv.isEmpty() {
			filtered = append(filtered, iv)
		}
	}

	if len(filtered) == 0 {
		return nil
	}

	slices.SortFunc(filtered, func(a, b versionInterval) int {
		return compareLower(a.lower, b.lower)
	})

	merged := filtered[:1]
	for i := 1; i < len(filtered); i++ {
		last := &merged[len(merged)-1]
		current := filtered[i]
		if last.touches(current) {
			*last = last.merge(current)
		} else {
			merged = append(merged, current)
		}
	}

	out := make([]versionInterval, len(merged))
	copy(out, merged)
	return out
}
