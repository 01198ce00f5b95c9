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

// Reporter renders the incompatibility derivation behind a NoSolutionError
// into a human-readable explanation.
type Reporter interface {
	Report(incomp *Incompatibility) string
}

// DefaultReporter walks the derivation tree and prints one clause per line,
// indenting nested derivations. Dependency edges read like requirement lines
// ("flask 2.0.0 requires werkzeug >=2.0.0"), exhausted packages like pip's
// "no matching distribution" message.
type DefaultReporter struct{}

// Report implements Reporter.
func (r *DefaultReporter) Report(incomp *Incompatibility) string {
	if incomp == nil {
		return "version solving failed"
	}

	var lines []string
	r.explain(incomp, 0, make(map[*Incompatibility]bool), &lines)
	if len(lines) == 0 {
		return "version solving failed"
	}
	return strings.Join(lines, "\n")
}

func (r *DefaultReporter) explain(incomp *Incompatibility, depth int, visited map[*Incompatibility]bool, lines *[]string) {
	if incomp == nil || visited[incomp] {
		return
	}
	visited[incomp] = true

	indent := strings.Repeat("  ", depth)

	switch incomp.Kind {
	case KindNoVersions:
		*lines = append(*lines, indent+noReleaseClause(incomp))
	case KindFromDependency:
		*lines = append(*lines, indent+dependencyClause(incomp))
	case KindConflict:
		r.explain(incomp.Cause1, depth+1, visited, lines)
		r.explain(incomp.Cause2, depth+1, visited, lines)
		*lines = append(*lines, indent+"so "+conclusionClause(incomp))
	default:
		*lines = append(*lines, indent+incomp.String())
	}
}

// CollapsedReporter flattens the derivation into a single paragraph, the way
// pip summarizes a resolution failure: the leaf facts joined by "and",
// followed by the conclusion.
type CollapsedReporter struct{}

// Report implements Reporter.
func (r *CollapsedReporter) Report(incomp *Incompatibility) string {
	if incomp == nil {
		return "version solving failed"
	}

	var clauses []string
	collectLeafClauses(incomp, make(map[*Incompatibility]bool), &clauses)
	if len(clauses) == 0 {
		return "version solving failed"
	}

	if incomp.Kind != KindConflict {
		return clauses[0]
	}
	return fmt.Sprintf("Because %s, %s.", joinClauses(clauses, "and"), conclusionClause(incomp))
}

// collectLeafClauses gathers the dependency and no-release facts the
// derivation rests on, in derivation order, skipping shared subtrees.
func collectLeafClauses(incomp *Incompatibility, visited map[*Incompatibility]bool, clauses *[]string) {
	if incomp == nil || visited[incomp] {
		return
	}
	visited[incomp] = true

	switch incomp.Kind {
	case KindNoVersions:
		*clauses = append(*clauses, noReleaseClause(incomp))
	case KindFromDependency:
		*clauses = append(*clauses, dependencyClause(incomp))
	case KindConflict:
		collectLeafClauses(incomp.Cause1, visited, clauses)
		collectLeafClauses(incomp.Cause2, visited, clauses)
	default:
		*clauses = append(*clauses, incomp.String())
	}
}

// requirementString renders a term the way a requirement line reads:
// "chardet >=3.0.2, <4.0.0", or just the package name when any release
// satisfies it. Polarity is dropped; callers phrase it.
func requirementString(term Term) string {
	if term.Versions.IsFull() {
		return term.Name.Value()
	}
	return fmt.Sprintf("%s %s", term.Name.Value(), term.Versions)
}

func noReleaseClause(incomp *Incompatibility) string {
	if len(incomp.Terms) == 0 {
		return "no matching releases exist"
	}
	term := incomp.Terms[0]
	if term.Versions.IsFull() {
		return fmt.Sprintf("no release of %s is available", term.Name.Value())
	}
	return fmt.Sprintf("no release of %s matches %s", term.Name.Value(), term.Versions)
}

func dependencyClause(incomp *Incompatibility) string {
	if len(incomp.Terms) != 2 {
		return incomp.String()
	}
	// Terms are {P@v, not D@d}; the requirement is the unnegated dependency.
	return fmt.Sprintf("%s %s requires %s",
		incomp.Package.Value(), incomp.Version, requirementString(incomp.Terms[1]))
}

// conclusionClause phrases what a learned incompatibility rules out.
// Positive terms are packages that would be installed, negative terms
// packages that would be absent.
func conclusionClause(incomp *Incompatibility) string {
	if len(incomp.Terms) == 0 {
		return "version solving failed"
	}

	var installed, absent []string
	for _, term := range incomp.Terms {
		if term.Positive {
			installed = append(installed, requirementString(term))
		} else {
			absent = append(absent, requirementString(term))
		}
	}

	switch {
	case len(absent) == 0:
		if len(installed) == 1 {
			return fmt.Sprintf("%s cannot be installed", installed[0])
		}
		return fmt.Sprintf("%s cannot be installed together", joinClauses(installed, "and"))
	case len(installed) == 0:
		return fmt.Sprintf("%s is required", joinClauses(absent, "or"))
	default:
		return fmt.Sprintf("%s cannot be installed without %s",
			joinClauses(installed, "and"), joinClauses(absent, "and"))
	}
}

func joinClauses(clauses []string, conj string) string {
	if len(clauses) == 1 {
		return clauses[0]
	}
	return strings.Join(clauses[:len(clauses)-1], ", ") + " " + conj + " " + clauses[len(clauses)-1]
}
