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
	"testing"
)

func TestPartialSolutionDecisionLevels(t *testing.T) {
	root := MakeName("root")
	ps := newPartialSolution(root)

	seed := ps.seedRoot(root, MustParseVersion("1.0.0"))
	if seed.decisionLevel != 0 {
		t.Fatalf("root seed at level %d, want 0", seed.decisionLevel)
	}

	a := ps.addDecision(MakeName("A"), MustParseVersion("1.0.0"))
	b := ps.addDecision(MakeName("B"), MustParseVersion("2.0.0"))
	if a.decisionLevel != 1 || b.decisionLevel != 2 {
		t.Fatalf("decision levels %d and %d, want 1 and 2", a.decisionLevel, b.decisionLevel)
	}

	if !ps.hasDecision(MakeName("A")) || !ps.hasDecision(MakeName("B")) {
		t.Fatalf("expected decisions for A and B")
	}
}

func TestPartialSolutionAllowedRangeTightens(t *testing.T) {
	root := MakeName("root")
	ps := newPartialSolution(root)
	ps.seedRoot(root, MustParseVersion("1.0.0"))

	pkg := MakeName("A")
	if !ps.allowedRange(pkg).IsFull() {
		t.Fatalf("unconstrained package should allow everything")
	}

	term := NewTerm(pkg, mustSpecs(t, ">=1.0.0"))
	if _, changed, err := ps.addDerivation(term, nil); err != nil || !changed {
		t.Fatalf("addDerivation: changed=%v err=%v", changed, err)
	}

	negative := NewNegativeTerm(pkg, mustSpecs(t, ">=2.0.0"))
	if _, changed, err := ps.addDerivation(negative, nil); err != nil || !changed {
		t.Fatalf("addDerivation negative: changed=%v err=%v", changed, err)
	}

	allowed := ps.allowedRange(pkg)
	want := Between(MustParseVersion("1.0.0"), MustParseVersion("2.0.0"))
	if !allowed.Equal(want) {
		t.Fatalf("allowed range %s, want %s", allowed, want)
	}
}

func TestPartialSolutionDerivationConflict(t *testing.T) {
	root := MakeName("root")
	ps := newPartialSolution(root)
	ps.seedRoot(root, MustParseVersion("1.0.0"))

	pkg := MakeName("A")
	if _, _, err := ps.addDerivation(NewTerm(pkg, mustSpecs(t, ">=2.0.0")), nil); err != nil {
		t.Fatalf("addDerivation: %v", err)
	}

	_, _, err := ps.addDerivation(NewTerm(pkg, mustSpecs(t, "<1.0.0")), nil)
	if !errors.Is(err, errNoAllowedVersions) {
		t.Fatalf("expected errNoAllowedVersions, got %v", err)
	}
}

func TestPartialSolutionBacktrack(t *testing.T) {
	root := MakeName("root")
	ps := newPartialSolution(root)
	ps.seedRoot(root, MustParseVersion("1.0.0"))

	ps.addDecision(MakeName("A"), MustParseVersion("1.0.0"))
	ps.addDecision(MakeName("B"), MustParseVersion("1.0.0"))
	if _, _, err := ps.addDerivation(NewTerm(MakeName("C"), mustSpecs(t, ">=1.0.0")), nil); err != nil {
		t.Fatalf("addDerivation: %v", err)
	}

	ps.backtrack(1)

	if ps.decisionLvl != 1 {
		t.Fatalf("decision level after backtrack = %d, want 1", ps.decisionLvl)
	}
	if !ps.hasDecision(MakeName("A")) {
		t.Fatalf("A decided at level 1 should survive")
	}
	if ps.hasDecision(MakeName("B")) {
		t.Fatalf("B decided at level 2 should be gone")
	}
	if ps.hasAssignments(MakeName("C")) {
		t.Fatalf("C derived at level 2 should be gone")
	}
	if !ps.allowedRange(MakeName("B")).IsFull() {
		t.Fatalf("B should be unconstrained after backtrack")
	}
}

func TestPartialSolutionPendingPackages(t *testing.T) {
	root := MakeName("root")
	ps := newPartialSolution(root)
	ps.seedRoot(root, MustParseVersion("1.0.0"))

	if _, _, err := ps.addDerivation(NewTerm(MakeName("A"), mustSpecs(t, ">=1.0.0")), nil); err != nil {
		t.Fatalf("addDerivation: %v", err)
	}
	if _, _, err := ps.addDerivation(NewTerm(MakeName("B"), mustSpecs(t, ">=1.0.0")), nil); err != nil {
		t.Fatalf("addDerivation: %v", err)
	}

	if ps.isComplete() {
		t.Fatalf("solution with undecided packages should not be complete")
	}

	pending := ps.pendingPackages()
	if len(pending) != 2 || pending[0] != MakeName("A") || pending[1] != MakeName("B") {
		t.Fatalf("pending = %v, want [A B] in derivation order", pending)
	}

	ps.addDecision(MakeName("A"), MustParseVersion("1.0.0"))
	ps.addDecision(MakeName("B"), MustParseVersion("1.0.0"))
	if !ps.isComplete() {
		t.Fatalf("fully decided solution should be complete")
	}
	if got := len(ps.pendingPackages()); got != 0 {
		t.Fatalf("pending after decisions = %d, want 0", got)
	}
}

func TestPartialSolutionExclusionIsNotPending(t *testing.T) {
	root := MakeName("root")
	ps := newPartialSolution(root)
	ps.seedRoot(root, MustParseVersion("1.0.0"))

	q := MakeName("Q")
	if _, _, err := ps.addDerivation(NewNegativeTerm(q, mustSpecs(t, "==1.0.0")), nil); err != nil {
		t.Fatalf("addDerivation: %v", err)
	}

	// An exclusion narrows Q's allowed range but does not require Q.
	if ps.allowedRange(q).Contains(MustParseVersion("1.0.0")) {
		t.Fatalf("Q 1.0.0 should be excluded")
	}
	if ps.requiresDecision(q) {
		t.Fatalf("exclusion alone should not require a decision for Q")
	}
	for _, name := range ps.pendingPackages() {
		if name == q {
			t.Fatalf("Q should not be a decision candidate")
		}
	}
	if !ps.isComplete() {
		t.Fatalf("solution with only excluded packages should be complete")
	}

	// A positive derivation makes Q a real requirement.
	if _, _, err := ps.addDerivation(NewTerm(q, mustSpecs(t, ">=0.5.0")), nil); err != nil {
		t.Fatalf("addDerivation: %v", err)
	}
	if !ps.requiresDecision(q) {
		t.Fatalf("positive derivation should require a decision for Q")
	}
	if ps.isComplete() {
		t.Fatalf("undecided required package should block completion")
	}
	pending := ps.pendingPackages()
	if len(pending) != 1 || pending[0] != q {
		t.Fatalf("pending = %v, want [Q]", pending)
	}
}

func TestPartialSolutionBuildSolution(t *testing.T) {
	root := MakeName("root")
	ps := newPartialSolution(root)
	ps.seedRoot(root, MustParseVersion("0.0.0"))
	ps.addDecision(MakeName("A"), MustParseVersion("1.0.0"))
	ps.addDecision(MakeName("B"), MustParseVersion("2.0.0"))

	solution := ps.buildSolution()
	if len(solution) != 3 {
		t.Fatalf("solution has %d entries, want 3 (root included)", len(solution))
	}
	if _, ok := solution.GetVersion(root); !ok {
		t.Fatalf("root missing from solution")
	}
	if ver, _ := solution.GetVersion(MakeName("B")); ver.String() != "2.0.0" {
		t.Fatalf("B = %s, want 2.0.0", ver)
	}
}
