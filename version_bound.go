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

// versionBound represents either end of a version interval. Bounds are
// finite (a specific version) or infinite (unbounded on that side).
//
// The infinite field uses sentinel values:
//   - boundNegativeInfinity (-1): -∞, no lower limit
//   - boundFinite (0): a specific version
//   - boundPositiveInfinity (1): +∞, no upper limit
//
// inclusive determines whether the bound includes the version itself:
// ">=1.0.0" has inclusive=true, ">1.0.0" has inclusive=false.
type versionBound struct {
	version   Version
	inclusive bool
	infinite  int
}

const (
	boundNegativeInfinity = -1
	boundFinite           = 0
	boundPositiveInfinity = 1
)

// finiteBound creates a bound at a specific version, usable on either side
// of an interval.
func finiteBound(version Version, inclusive bool) versionBound {
	return versionBound{version: version, inclusive: inclusive}
}

// negativeInfinityBound returns a bound representing -∞.
func negativeInfinityBound() versionBound {
	return versionBound{infinite: boundNegativeInfinity, inclusive: true}
}

// positiveInfinityBound returns a bound representing +∞.
func positiveInfinityBound() versionBound {
	return versionBound{infinite: boundPositiveInfinity, inclusive: true}
}

// isNegInfinity returns true if this bound represents -∞.
func (b versionBound) isNegInfinity() bool {
	return b.infinite == boundNegativeInfinity
}

// isPosInfinity returns true if this bound represents +∞.
func (b versionBound) isPosInfinity() bool {
	return b.infinite == boundPositiveInfinity
}

// isFinite returns true if this bound carries a specific version.
func (b versionBound) isFinite() bool {
	return b.infinite == boundFinite
}

// compareLower orders two lower bounds. When versions tie, inclusive comes
// before exclusive: [v covers more than (v. Lower bounds of non-empty
// intervals are never +∞, so only the -∞ sentinel needs handling.
func compareLower(a, b versionBound) int {
	switch {
	case a.infinite == boundNegativeInfinity && b.infinite == boundNegativeInfinity:
		return 0
	case a.infinite == boundNegativeInfinity:
		return -1
	case b.infinite == boundNegativeInfinity:
		return 1
	default:
		if cmp := a.version.Compare(b.version); cmp != 0 {
			return cmp
		}
		if a.inclusive == b.inclusive {
			return 0
		}
		if a.inclusive {
			return -1
		}
		return 1
	}
}

// compareUpper orders two upper bounds. When versions tie, inclusive comes
// after exclusive: v] covers more than v). Upper bounds of non-empty
// intervals are never -∞, so only the +∞ sentinel needs handling.
func compareUpper(a, b versionBound) int {
	switch {
	case a.infinite == boundPositiveInfinity && b.infinite == boundPositiveInfinity:
		return 0
	case a.infinite == boundPositiveInfinity:
		return 1
	case b.infinite == boundPositiveInfinity:
		return -1
	default:
		if cmp := a.version.Compare(b.version); cmp != 0 {
			return cmp
		}
		if a.inclusive == b.inclusive {
			return 0
		}
		if a.inclusive {
			return 1
		}
		return -1
	}
}
