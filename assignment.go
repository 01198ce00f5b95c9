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

// assignmentKind distinguishes decision and derivation assignments.
// Decisions are explicit version selections; derivations are constraints
// inherited from incompatibilities via unit propagation.
type assignmentKind int

const (
	assignmentDecision assignmentKind = iota
	assignmentDerivation
)

// assignment is a single entry in the partial solution. It tracks the
// constraint term, the effective allowed range (positive assignments) or the
// excluded range (negative assignments), the selected version for decisions,
// the incompatibility that caused a derivation, and the decision level used
// for backtracking.
type assignment struct {
	name          Name
	term          Term
	kind          assignmentKind
	allowed       Range   // effective allowed range (positive terms)
	forbidden     Range   // excluded range (negative terms)
	version       Version // selected version (decisions only)
	fromExclusion bool    // positive restatement of a negative derivation
	cause         *Incompatibility
	decisionLevel int
	index         int
}

// isDecision returns true for explicit version selections.
func (a *assignment) isDecision() bool {
	return a.kind == assignmentDecision
}

// describe renders the assignment for debug traces.
func (a *assignment) describe() string {
	kind := "derivation"
	detail := a.term.String()
	if a.isDecision() {
		kind = "decision"
		detail = fmt.Sprintf("%s ==%s", a.name.Value(), a.version)
	}
	return fmt.Sprintf("[level=%d index=%d %s] %s", a.decisionLevel, a.index, kind, detail)
}
