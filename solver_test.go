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
	"errors"
	"strings"
	"testing"
)

func mustSpecs(t *testing.T, s string) Range {
	t.Helper()
	r, err := ParseSpecifiers(s)
	if err != nil {
		t.Fatalf("ParseSpecifiers(%q) returned error: %v", s, err)
	}
	return r
}

func dep(t *testing.T, name, specs string) Dependency {
	t.Helper()
	return Dependency{Package: MakeName(name), Versions: mustSpecs(t, specs)}
}

func newTestSolver(t *testing.T, registry Provider, reqs []Dependency, opts ...SolverOption) (*Solver, *RootProvider) {
	t.Helper()
	root := NewRootProvider(registry, MakeName("root"), MustParseVersion("0.0.0"), reqs)
	return NewSolver(root, opts...), root
}

func checkVersion(t *testing.T, solution Solution, name, want string) {
	t.Helper()
	ver, ok := solution.GetVersion(MakeName(name))
	if !ok {
		t.Fatalf("expected %s in solution", name)
	}
	if ver.String() != want {
		t.Fatalf("expected %s to be %s, got %s", name, want, ver.String())
	}
}

func TestSolverSimpleGraph(t *testing.T) {
	registry := NewMemoryProvider()
	registry.AddPackage("A", MustParseVersion("1.0.0"), []Dependency{
		dep(t, "B", ">=1.0.0"),
	})
	registry.AddPackage("B", MustParseVersion("0.1.0"), nil)
	registry.AddPackage("B", MustParseVersion("1.0.0"), nil)

	solver, root := newTestSolver(t, registry, []Dependency{dep(t, "A", "==1.0.0")})
	solution, err := solver.Solve(root.Root(), root.RootVersion())
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	checkVersion(t, solution, "root", "0.0.0")
	checkVersion(t, solution, "A", "1.0.0")
	checkVersion(t, solution, "B", "1.0.0")
}

func TestSolverPrefersNewestVersion(t *testing.T) {
	registry := NewMemoryProvider()
	registry.AddPackage("A", MustParseVersion("1.0.0"), nil)
	registry.AddPackage("A", MustParseVersion("1.1.0"), nil)
	registry.AddPackage("A", MustParseVersion("2.0.0"), nil)

	solver, root := newTestSolver(t, registry, []Dependency{dep(t, "A", ">=1.0.0, <2.0.0")})
	solution, err := solver.Solve(root.Root(), root.RootVersion())
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	checkVersion(t, solution, "A", "1.1.0")
}

func TestSolverUnsatisfiableGraph(t *testing.T) {
	registry := NewMemoryProvider()
	registry.AddPackage("A", MustParseVersion("1.0.0"), []Dependency{
		dep(t, "B", ">=2.0.0"),
	})
	registry.AddPackage("B", MustParseVersion("1.0.0"), nil)

	solver, root := newTestSolver(t, registry, []Dependency{dep(t, "A", "==1.0.0")},
		WithIncompatibilityTracking(true))
	_, err := solver.Solve(root.Root(), root.RootVersion())
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	var nsErr *NoSolutionError
	if !errors.As(err, &nsErr) {
		t.Fatalf("expected *NoSolutionError, got %T", err)
	}
	if !strings.Contains(nsErr.Error(), "A 1.0.0 requires B") {
		t.Fatalf("unexpected error message: %v", nsErr.Error())
	}

	if len(solver.GetIncompatibilities()) == 0 {
		t.Fatalf("expected tracked incompatibilities, got 0")
	}
}

func TestSolverBacktrackingChoosesAlternateVersion(t *testing.T) {
	registry := NewMemoryProvider()
	registry.AddPackage("A", MustParseVersion("1.0.0"), nil)
	registry.AddPackage("A", MustParseVersion("2.0.0"), []Dependency{
		dep(t, "C", ">=2.0.0"),
	})
	registry.AddPackage("B", MustParseVersion("1.0.0"), []Dependency{
		dep(t, "C", "<2.0.0"),
	})
	registry.AddPackage("C", MustParseVersion("1.0.0"), nil)
	registry.AddPackage("C", MustParseVersion("2.0.0"), nil)

	solver, root := newTestSolver(t, registry, []Dependency{
		dep(t, "A", ">=1.0.0"),
		dep(t, "B", "==1.0.0"),
	})
	solution, err := solver.Solve(root.Root(), root.RootVersion())
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	// A 2.0.0 forces C >=2.0.0 which conflicts with B, so the solver must
	// fall back to A 1.0.0.
	checkVersion(t, solution, "A", "1.0.0")
	checkVersion(t, solution, "B", "1.0.0")
	checkVersion(t, solution, "C", "1.0.0")
}

func TestSolverSharedDependencyIntersection(t *testing.T) {
	registry := NewMemoryProvider()
	registry.AddPackage("A", MustParseVersion("1.0.0"), []Dependency{
		dep(t, "C", ">=1.0.0, <3.0.0"),
	})
	registry.AddPackage("B", MustParseVersion("1.0.0"), []Dependency{
		dep(t, "C", ">=2.0.0"),
	})
	registry.AddPackage("C", MustParseVersion("1.0.0"), nil)
	registry.AddPackage("C", MustParseVersion("2.5.0"), nil)
	registry.AddPackage("C", MustParseVersion("3.0.0"), nil)

	solver, root := newTestSolver(t, registry, []Dependency{
		dep(t, "A", "==1.0.0"),
		dep(t, "B", "==1.0.0"),
	})
	solution, err := solver.Solve(root.Root(), root.RootVersion())
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	checkVersion(t, solution, "C", "2.5.0")
}

func TestSolverSolutionIsSound(t *testing.T) {
	registry := NewMemoryProvider()
	registry.AddPackage("web", MustParseVersion("2.0.0"), []Dependency{
		dep(t, "http", ">=1.0.0"),
		dep(t, "json", ">=1.0.0, <2.0.0"),
	})
	registry.AddPackage("http", MustParseVersion("1.0.0"), []Dependency{
		dep(t, "json", ">=1.5.0"),
	})
	registry.AddPackage("http", MustParseVersion("1.1.0"), []Dependency{
		dep(t, "json", ">=1.5.0"),
	})
	registry.AddPackage("json", MustParseVersion("1.0.0"), nil)
	registry.AddPackage("json", MustParseVersion("1.5.0"), nil)
	registry.AddPackage("json", MustParseVersion("2.0.0"), nil)

	solver, root := newTestSolver(t, registry, []Dependency{dep(t, "web", ">=2.0.0")})
	solution, err := solver.Solve(root.Root(), root.RootVersion())
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	// Every dependency edge of every selected release must be satisfied by
	// another selection.
	for nv := range solution.All() {
		deps, err := root.DependenciesOf(nv.Name, nv.Version)
		if err != nil {
			t.Fatalf("DependenciesOf(%s, %s) returned error: %v", nv.Name.Value(), nv.Version, err)
		}
		if deps.Unknown {
			continue
		}
		for _, d := range deps.Constraints {
			got, ok := solution.GetVersion(d.Package)
			if !ok {
				t.Fatalf("%s %s depends on %s which is missing from the solution",
					nv.Name.Value(), nv.Version, d.Package.Value())
			}
			if !d.Versions.Contains(got) {
				t.Fatalf("%s %s requires %s %s but the solution has %s",
					nv.Name.Value(), nv.Version, d.Package.Value(), d.Versions, got)
			}
		}
	}

	checkVersion(t, solution, "json", "1.5.0")
}

func TestSolverMissingPackage(t *testing.T) {
	registry := NewMemoryProvider()
	registry.AddPackage("A", MustParseVersion("1.0.0"), []Dependency{
		dep(t, "ghost", ">=1.0.0"),
	})

	solver, root := newTestSolver(t, registry, []Dependency{dep(t, "A", "==1.0.0")})
	_, err := solver.Solve(root.Root(), root.RootVersion())
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	var nsErr *NoSolutionError
	if !errors.As(err, &nsErr) {
		t.Fatalf("expected *NoSolutionError, got %T", err)
	}
}

func TestSolverIterationLimit(t *testing.T) {
	registry := NewMemoryProvider()
	registry.AddPackage("A", MustParseVersion("1.0.0"), []Dependency{
		dep(t, "B", ">=1.0.0"),
	})
	registry.AddPackage("B", MustParseVersion("1.0.0"), nil)

	solver, root := newTestSolver(t, registry, []Dependency{dep(t, "A", "==1.0.0")},
		WithMaxSteps(1), WithIncompatibilityTracking(true))
	_, err := solver.Solve(root.Root(), root.RootVersion())
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	var limit ErrIterationLimit
	if !errors.As(err, &limit) {
		t.Fatalf("expected ErrIterationLimit, got %T", err)
	}

	// Tracking survives non-conflict exits too.
	if len(solver.GetIncompatibilities()) == 0 {
		t.Fatalf("expected tracked incompatibilities after iteration limit, got 0")
	}
}

func TestSolverExclusionDoesNotExpandClosure(t *testing.T) {
	registry := NewMemoryProvider()
	registry.AddPackage("A", MustParseVersion("1.0.0"), nil)
	registry.AddPackage("A", MustParseVersion("2.0.0"), []Dependency{
		dep(t, "Q", "==1.0.0"),
	})
	registry.AddPackage("Q", MustParseVersion("1.0.0"), []Dependency{
		dep(t, "C", ">=2.0.0"),
	})
	registry.AddPackage("B", MustParseVersion("1.0.0"), []Dependency{
		dep(t, "C", "<2.0.0"),
		dep(t, "D", "<2.0.0"),
	})
	registry.AddPackage("C", MustParseVersion("1.0.0"), nil)
	registry.AddPackage("C", MustParseVersion("2.0.0"), nil)
	registry.AddPackage("D", MustParseVersion("1.0.0"), []Dependency{
		dep(t, "C", "<3.0.0"),
	})
	registry.AddPackage("D", MustParseVersion("1.5.0"), []Dependency{
		dep(t, "C", "<3.0.0"),
	})

	solver, root := newTestSolver(t, registry, []Dependency{
		dep(t, "A", ">=1.0.0"),
		dep(t, "B", "==1.0.0"),
	})
	solution, err := solver.Solve(root.Root(), root.RootVersion())
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	// Q is mentioned only by the abandoned A 2.0.0 branch. After the solver
	// falls back to A 1.0.0, the registered {Q==1.0.0, not C>=2.0.0} edge can
	// still derive an exclusion on Q, but nothing requires Q: it must stay
	// out of the closure and must never become a decision candidate.
	if ver, ok := solution.GetVersion(MakeName("Q")); ok {
		t.Fatalf("Q %s is in the solution but nothing requires it", ver)
	}
	checkVersion(t, solution, "A", "1.0.0")
	checkVersion(t, solution, "B", "1.0.0")
	checkVersion(t, solution, "C", "1.0.0")
	checkVersion(t, solution, "D", "1.5.0")
}

func TestSolverCollapsedReporter(t *testing.T) {
	registry := NewMemoryProvider()
	registry.AddPackage("A", MustParseVersion("1.0.0"), []Dependency{
		dep(t, "B", "==1.0.0"),
	})
	registry.AddPackage("B", MustParseVersion("1.0.0"), nil)
	registry.AddPackage("B", MustParseVersion("2.0.0"), nil)
	registry.AddPackage("C", MustParseVersion("1.0.0"), []Dependency{
		dep(t, "B", "==2.0.0"),
	})

	solver, root := newTestSolver(t, registry, []Dependency{
		dep(t, "A", "==1.0.0"),
		dep(t, "C", "==1.0.0"),
	})
	_, err := solver.Solve(root.Root(), root.RootVersion())
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	var nsErr *NoSolutionError
	if !errors.As(err, &nsErr) {
		t.Fatalf("expected *NoSolutionError, got %T", err)
	}

	collapsed := nsErr.WithReporter(&CollapsedReporter{}).Error()
	if collapsed == "" || collapsed == "version solving failed" {
		t.Fatalf("expected a rendered conflict, got %q", collapsed)
	}
	if !strings.Contains(collapsed, "requires B") {
		t.Fatalf("unexpected collapsed message: %v", collapsed)
	}
}
