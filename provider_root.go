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

// RootProvider decorates another provider with a synthetic root package
// carrying the user's initial requirements. The root has exactly one
// version, so the solver treats the requirements uniformly with ordinary
// package dependencies.
//
// Example:
//
//	registry := NewMemoryProvider()
//	// ... populate registry ...
//	root := NewRootProvider(registry, MakeName("myapp"), MustParseVersion("1.0.0"), reqs)
//	solver := NewSolver(root)
//	solution, _ := solver.Solve(root.Root(), root.RootVersion())
type RootProvider struct {
	inner       Provider
	root        Name
	rootVersion Version
	rootDeps    []Dependency
}

// NewRootProvider wraps a provider with a synthetic root package.
func NewRootProvider(inner Provider, root Name, version Version, deps []Dependency) *RootProvider {
	return &RootProvider{
		inner:       inner,
		root:        root,
		rootVersion: version,
		rootDeps:    deps,
	}
}

// Root returns the name of the synthetic root package.
func (p *RootProvider) Root() Name {
	return p.root
}

// RootVersion returns the pinned version of the synthetic root package.
func (p *RootProvider) RootVersion() Version {
	return p.rootVersion
}

// ChooseVersion implements Provider. The root package, when among the
// candidates, is always decided first at its pinned version; everything
// else is delegated to the wrapped provider.
func (p *RootProvider) ChooseVersion(candidates []Candidate) (Name, *Version, error) {
	rest := make([]Candidate, 0, len(candidates))
	for _, cand := range candidates {
		if cand.Package == p.root {
			if !cand.Allowed.Contains(p.rootVersion) {
				return p.root, nil, nil
			}
			ver := p.rootVersion
			return p.root, &ver, nil
		}
		rest = append(rest, cand)
	}
	return p.inner.ChooseVersion(rest)
}

// DependenciesOf implements Provider. The root version's dependencies are
// the initial requirements; any other root version has none.
func (p *RootProvider) DependenciesOf(pkg Name, version Version) (Dependencies, error) {
	if pkg == p.root {
		if version.Compare(p.rootVersion) != 0 {
			return Dependencies{Unknown: true}, nil
		}
		return Dependencies{Constraints: p.rootDeps}, nil
	}
	return p.inner.DependenciesOf(pkg, version)
}

var _ Provider = (*RootProvider)(nil)
