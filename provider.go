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

// Dependency is a single requirement produced by a release: the named
// package must resolve to a version inside the range.
type Dependency struct {
	Package  Name
	Versions Range
}

// Dependencies is the dependency set of one release. Unknown marks releases
// whose metadata could not be fetched; the solver treats them as having no
// constraints rather than failing resolution.
type Dependencies struct {
	Constraints []Dependency
	Unknown     bool
}

// Candidate is one package awaiting a version decision, together with the
// range the partial solution currently allows for it.
type Candidate struct {
	Package Name
	Allowed Range
}

// Provider supplies package metadata to the solver and owns the decision
// heuristic. Implementations typically wrap a package index (remote or
// in-memory) and may cache lookups internally; the solver never caches
// provider results itself.
type Provider interface {
	// ChooseVersion picks the next package to decide and a version for it
	// from the given candidates. Returning a nil version signals that the
	// chosen package has no version inside its allowed range, which the
	// solver records as a conflict rather than an error. Errors are
	// reserved for infrastructure failures (network, decoding).
	ChooseVersion(candidates []Candidate) (Name, *Version, error)

	// DependenciesOf returns the dependency set of a specific release.
	DependenciesOf(pkg Name, version Version) (Dependencies, error)
}

// ChooseByFewestVersions implements the standard decision heuristic: pick
// the candidate with the fewest matching versions (most constrained first),
// and for that candidate the newest matching version. The list function
// must return versions sorted in descending order.
//
// Providers that keep descending version lists can delegate their
// ChooseVersion to this helper.
func ChooseByFewestVersions(list func(Name) []Version, candidates []Candidate) (Name, *Version) {
	var (
		bestName  Name
		bestMatch *Version
		bestCount = -1
	)

	for _, cand := range candidates {
		var first *Version
		count := 0
		for _, ver := range list(cand.Package) {
			if !cand.Allowed.Contains(ver) {
				continue
			}
			if first == nil {
				v := ver
				first = &v
			}
			count++
		}

		if count == 0 {
			// A candidate with nothing available wins immediately: reporting
			// it lets the solver learn the conflict as early as possible.
			return cand.Package, nil
		}

		if bestCount == -1 || count < bestCount {
			bestName = cand.Package
			bestMatch = first
			bestCount = count
		}
	}

	return bestName, bestMatch
}
