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

// MemoryProvider is an in-memory package index. It is the primary provider
// for tests and for embedding fixed dependency graphs.
//
// Packages not present in the index report unknown dependencies rather than
// failing, matching how a registry treats releases with missing metadata.
type MemoryProvider struct {
	releases map[Name][]Version // sorted descending
	deps     map[Name]map[string][]Dependency
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		releases: make(map[Name][]Version),
		deps:     make(map[Name]map[string][]Dependency),
	}
}

// AddPackage registers a release and its dependencies. Adding the same
// version twice replaces its dependency set.
func (m *MemoryProvider) AddPackage(name string, version Version, deps []Dependency) {
	pkg := MakeName(name)

	byVersion, ok := m.deps[pkg]
	if !ok {
		byVersion = make(map[string][]Dependency)
		m.deps[pkg] = byVersion
	}
	key := version.String()
	_, replacing := byVersion[key]
	byVersion[key] = deps

	if replacing {
		return
	}

	// Insert keeping the list sorted newest first.
	list := m.releases[pkg]
	pos := len(list)
	for i, existing := range list {
		if version.Compare(existing) > 0 {
			pos = i
			break
		}
	}
	list = append(list, Version{})
	copy(list[pos+1:], list[pos:])
	list[pos] = version
	m.releases[pkg] = list
}

// Versions returns the known versions of a package, newest first.
func (m *MemoryProvider) Versions(name Name) []Version {
	return m.releases[name]
}

// ChooseVersion implements Provider using the fewest-versions heuristic.
func (m *MemoryProvider) ChooseVersion(candidates []Candidate) (Name, *Version, error) {
	name, ver := ChooseByFewestVersions(m.Versions, candidates)
	return name, ver, nil
}

// DependenciesOf implements Provider. Releases absent from the index report
// unknown dependencies.
func (m *MemoryProvider) DependenciesOf(pkg Name, version Version) (Dependencies, error) {
	byVersion, ok := m.deps[pkg]
	if !ok {
		return Dependencies{Unknown: true}, nil
	}
	deps, ok := byVersion[version.String()]
	if !ok {
		return Dependencies{Unknown: true}, nil
	}
	return Dependencies{Constraints: deps}, nil
}

var _ Provider = (*MemoryProvider)(nil)
