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

// Requirement is one top-level requirement in string form: a package name
// and a PEP 440 specifier list such as ">=3.0.2, <4.0.0". An empty
// specifier allows any version.
type Requirement struct {
	Name      string
	Specifier string
}

// Resolve computes the full dependency closure of a set of requirements
// against a registry. The root project (rootName at rootVersion) is
// synthesized on top of the registry and included in the result.
//
// Example:
//
//	closure, err := Resolve(registry, "myapp", "1.0.0", []Requirement{
//	    {Name: "chardet", Specifier: ">=3.0.2, <4.0.0"},
//	    {Name: "pytz", Specifier: ""},
//	})
func Resolve(registry Provider, rootName, rootVersion string, requirements []Requirement, opts ...SolverOption) (map[string]string, error) {
	version, err := ParseVersion(rootVersion)
	if err != nil {
		return nil, err
	}

	deps := make([]Dependency, 0, len(requirements))
	for _, req := range requirements {
		versions, err := ParseSpecifiers(req.Specifier)
		if err != nil {
			return nil, err
		}
		deps = append(deps, Dependency{
			Package:  MakeName(req.Name),
			Versions: versions,
		})
	}

	root := NewRootProvider(registry, MakeName(rootName), version, deps)
	solver := NewSolver(root, opts...)

	solution, err := solver.Solve(root.Root(), root.RootVersion())
	if err != nil {
		return nil, err
	}

	return solution.AsMap(), nil
}
