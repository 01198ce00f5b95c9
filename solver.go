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
)

// Solver implements the PubGrub dependency resolution algorithm with CDCL.
//
// The solver uses Conflict-Driven Clause Learning (CDCL) to efficiently
// find valid package version assignments that satisfy all dependencies
// and constraints. It maintains learned incompatibilities to avoid
// repeating failed resolution attempts.
//
// Basic usage:
//
//	provider := NewMemoryProvider()
//	// ... populate provider with releases ...
//
//	solver := NewSolver(provider)
//	solution, err := solver.Solve(MakeName("myapp"), MustParseVersion("1.0.0"))
//
// With options:
//
//	solver := NewSolver(provider,
//	    WithIncompatibilityTracking(true),
//	    WithMaxSteps(10000),
//	)
type Solver struct {
	Provider Provider
	options  SolverOptions

	learned []*Incompatibility
}

// NewSolver creates a new solver for the given provider.
func NewSolver(provider Provider, opts ...SolverOption) *Solver {
	options := defaultSolverOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	return &Solver{
		Provider: provider,
		options:  options,
		learned:  nil,
	}
}

// Configure applies additional options to an existing solver.
func (s *Solver) Configure(opts ...SolverOption) *Solver {
	for _, opt := range opts {
		if opt != nil {
			opt(&s.options)
		}
	}
	return s
}

// GetIncompatibilities returns the incompatibilities collected during the
// last solve, regardless of how it exited. Requires
// WithIncompatibilityTracking(true).
func (s *Solver) GetIncompatibilities() []*Incompatibility {
	return s.learned
}

// ClearIncompatibilities discards learned clauses from previous solves.
func (s *Solver) ClearIncompatibilities() {
	clear(s.learned)
	s.learned = s.learned[:0]
}

func (s *Solver) debug(msg string, args ...any) {
	if logger := s.options.Logger; logger != nil {
		logger.Debug(msg, args...)
	}
}

// Solve resolves the dependency closure of root at the given version.
// The returned solution includes the root itself. Resolution failures
// surface as *NoSolutionError carrying the final derived incompatibility;
// provider infrastructure failures surface as *ProviderError.
func (s *Solver) Solve(root Name, version Version) (Solution, error) {
	s.debug("starting solver", "root", root.Value(), "version", version.String())

	state := newSolverState(s.Provider, s.options, root)

	if s.options.TrackIncompatibilities {
		// Snapshot on every exit so GetIncompatibilities reflects the last
		// solve even after provider failures or the iteration limit.
		defer func() {
			s.learned = append([]*Incompatibility{}, state.learned...)
		}()
	}

	assign := state.partial.seedRoot(root, version)
	state.traceAssignment("seed", assign)

	conflict, err := s.fetchAndRegister(state, root, version)
	if err != nil {
		return nil, err
	}

	state.enqueue(root)

	var propagateSeed Name

	for steps := 0; ; steps++ {
		if s.options.MaxSteps > 0 && steps >= s.options.MaxSteps {
			return nil, ErrIterationLimit{Steps: s.options.MaxSteps}
		}

		if conflict != nil {
			s.debug("resolving conflict", "step", steps, "conflict", conflict.String())
			_, pivot, err := state.resolveConflict(conflict)
			if err != nil {
				var ns *NoSolutionError
				if errors.As(err, &ns) {
					return s.fail(ns.Incompatibility)
				}
				return nil, err
			}
			conflict = nil
			if pivot != EmptyName() {
				propagateSeed = pivot
			}
			continue
		}

		seed := propagateSeed
		propagateSeed = EmptyName()
		propConflict, err := state.propagate(seed)
		if err != nil {
			return nil, err
		}
		if propConflict != nil {
			conflict = propConflict
			continue
		}

		if state.partial.isComplete() {
			s.debug("solution found", "step", steps)
			return state.partial.buildSolution(), nil
		}

		pending := state.partial.pendingPackages()
		if len(pending) == 0 {
			s.debug("solution found", "step", steps)
			return state.partial.buildSolution(), nil
		}

		candidates := make([]Candidate, 0, len(pending))
		for _, name := range pending {
			candidates = append(candidates, Candidate{
				Package: name,
				Allowed: state.partial.allowedRange(name),
			})
		}

		s.debug("selecting package",
			"step", steps,
			"pending", joinNameValues(pending),
		)

		pkg, ver, err := s.Provider.ChooseVersion(candidates)
		if err != nil {
			return nil, err
		}

		allowed := state.partial.allowedRange(pkg)
		if ver == nil {
			conflict = NewIncompatibilityNoVersions(NewTerm(pkg, allowed))

			if support := state.partial.latest(pkg); support != nil && support.cause != nil {
				conflict = resolveIncompatibility(conflict, support.cause, pkg)
			}
			state.addIncompatibility(conflict)
			continue
		}
		if !allowed.Contains(*ver) {
			return nil, &ProviderError{
				Package: pkg,
				Version: ver.String(),
				Err:     errors.New("chosen version outside allowed range"),
			}
		}

		s.debug("making decision",
			"step", steps,
			"package", pkg.Value(),
			"version", ver.String(),
		)

		assign := state.partial.addDecision(pkg, *ver)
		state.traceAssignment("decision", assign)

		depConflict, err := s.fetchAndRegister(state, pkg, *ver)
		if err != nil {
			return nil, err
		}
		if depConflict != nil {
			conflict = depConflict
			continue
		}

		state.enqueue(assign.name)
	}
}

// fetchAndRegister pulls the dependency set of one release from the provider
// and registers it with the solver state. Releases with unknown metadata
// contribute no constraints.
func (s *Solver) fetchAndRegister(state *solverState, pkg Name, version Version) (*Incompatibility, error) {
	deps, err := s.Provider.DependenciesOf(pkg, version)
	if err != nil {
		var provErr *ProviderError
		if errors.As(err, &provErr) {
			return nil, err
		}
		return nil, &ProviderError{Package: pkg, Version: version.String(), Err: err}
	}

	if deps.Unknown {
		s.debug("dependencies unknown, assuming satisfiable",
			"package", pkg.Value(),
			"version", version.String(),
		)
		return nil, nil
	}

	return state.registerDependencies(pkg, version, deps.Constraints)
}

func (s *Solver) fail(incomp *Incompatibility) (Solution, error) {
	if incomp == nil {
		incomp = &Incompatibility{Kind: KindConflict}
	}
	return nil, NewNoSolutionError(incomp)
}

func joinNameValues(names []Name) string {
	if len(names) == 0 {
		return ""
	}
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = name.Value()
	}
	return strings.Join(values, ",")
}
