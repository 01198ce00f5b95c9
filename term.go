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

import "fmt"

// Term is a dependency constraint, either positive or negative. A positive
// term ("requests >=2.0.0") asserts that the package's version must lie in
// the range; a negative term ("not requests ==1.5.0") excludes the range.
//
// Terms are the building blocks of incompatibilities, pairing a package name
// with a version Range and a polarity.
type Term struct {
	Name     Name
	Versions Range
	Positive bool
}

// NewTerm creates a positive term requiring the package to lie in the range.
func NewTerm(name Name, versions Range) Term {
	return Term{Name: name, Versions: versions, Positive: true}
}

// NewNegativeTerm creates a negative term excluding versions in the range.
func NewNegativeTerm(name Name, versions Range) Term {
	return Term{Name: name, Versions: versions, Positive: false}
}

// Negate returns the logical negation of the term.
// A positive term becomes negative and vice versa.
func (t Term) Negate() Term {
	return Term{
		Name:     t.Name,
		Versions: t.Versions,
		Positive: !t.Positive,
	}
}

// SatisfiedBy reports whether the provided version satisfies the term.
func (t Term) SatisfiedBy(version Version) bool {
	inRange := t.Versions.Contains(version)
	if t.Positive {
		return inRange
	}
	return !inRange
}

// String returns a human-readable representation of the term.
func (t Term) String() string {
	if t.Positive {
		if t.Versions.IsFull() {
			return t.Name.Value()
		}
		return fmt.Sprintf("%s %s", t.Name.Value(), t.Versions)
	}

	if t.Versions.IsFull() {
		return fmt.Sprintf("not %s", t.Name.Value())
	}
	return fmt.Sprintf("not %s %s", t.Name.Value(), t.Versions)
}

// applyTermToAllowed narrows an allowed range by a term: positive terms
// intersect their range in, negative terms cut it out.
func applyTermToAllowed(current Range, term Term) Range {
	if term.Positive {
		return current.Intersection(term.Versions)
	}
	return current.Intersection(term.Versions.Complement())
}

// mergeTerms combines two terms for the same package during conflict
// resolution: intersection of ranges for positive terms, union of excluded
// ranges for negative terms. Mixed polarities do not merge.
func mergeTerms(a, b Term) (Term, bool) {
	if a.Name != b.Name || a.Positive != b.Positive {
		return Term{}, false
	}

	if a.Positive {
		return NewTerm(a.Name, a.Versions.Intersection(b.Versions)), true
	}
	return NewNegativeTerm(a.Name, a.Versions.Union(b.Versions)), true
}
