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

// IncompatibilityKind records the origin of an incompatibility.
type IncompatibilityKind int

const (
	// KindNoVersions means no versions satisfy the constraint.
	KindNoVersions IncompatibilityKind = iota
	// KindFromDependency means the incompatibility encodes a package
	// version's dependency relationship.
	KindFromDependency
	// KindConflict means the incompatibility was derived during conflict
	// resolution from two prior incompatibilities.
	KindConflict
)

// Incompatibility is a set of terms that cannot all be satisfied by any
// valid solution. Incompatibilities are created when a package version's
// dependencies are registered or synthesized during conflict resolution,
// and are never mutated afterwards.
type Incompatibility struct {
	// Terms that are jointly unsatisfiable.
	Terms []Term
	// Kind of incompatibility.
	Kind IncompatibilityKind
	// Cause1 and Cause2 are set for derived incompatibilities (KindConflict).
	Cause1 *Incompatibility
	Cause2 *Incompatibility
	// Package and Version identify the depending release for KindFromDependency.
	Package Name
	Version Version
}

// NewIncompatibilityNoVersions creates an incompatibility recording that a
// term's range admits no versions at all.
func NewIncompatibilityNoVersions(term Term) *Incompatibility {
	return &Incompatibility{
		Terms: []Term{term},
		Kind:  KindNoVersions,
	}
}

// NewIncompatibilityFromDependency encodes "pkg@ver depends on dependency"
// as the term set {pkg ==ver, not dependency}: the two cannot diverge.
func NewIncompatibilityFromDependency(pkg Name, ver Version, dependency Term) *Incompatibility {
	base := NewTerm(pkg, Exact(ver))
	negatedDep := dependency.Negate()
	return &Incompatibility{
		Terms:   []Term{base, negatedDep},
		Kind:    KindFromDependency,
		Package: pkg,
		Version: ver,
	}
}

// NewIncompatibilityConflict creates a derived incompatibility from two
// causes, deduplicating terms by package name.
func NewIncompatibilityConflict(terms []Term, cause1, cause2 *Incompatibility) *Incompatibility {
	seen := make(map[Name]Term)
	deduped := make([]Term, 0, len(terms))
	for _, term := range terms {
		if _, ok := seen[term.Name]; ok {
			continue
		}
		seen[term.Name] = term
		deduped = append(deduped, term)
	}

	return &Incompatibility{
		Terms:  deduped,
		Kind:   KindConflict,
		Cause1: cause1,
		Cause2: cause2,
	}
}

// String returns a human-readable representation of the incompatibility.
func (inc *Incompatibility) String() string {
	if len(inc.Terms) == 0 {
		return "version solving failed"
	}

	if len(inc.Terms) == 1 {
		return fmt.Sprintf("%s is forbidden", inc.Terms[0])
	}

	if inc.Kind == KindFromDependency && len(inc.Terms) == 2 {
		var dep Term
		for _, term := range inc.Terms {
			if term.Name != inc.Package {
				dep = term
				break
			}
		}
		if dep.Name == EmptyName() {
			dep = inc.Terms[1]
		}
		if !dep.Positive {
			dep = dep.Negate()
		}
		return fmt.Sprintf("%s %s depends on %s", inc.Package.Value(), inc.Version, dep)
	}

	var parts []string
	for _, term := range inc.Terms {
		parts = append(parts, term.String())
	}
	return fmt.Sprintf("%s are incompatible", strings.Join(parts, " and "))
}
