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

// VersionSyntaxReason classifies version parse failures.
type VersionSyntaxReason int

const (
	// VersionMalformed means the input does not match the version grammar
	// (missing or malformed release segments).
	VersionMalformed VersionSyntaxReason = iota
	// VersionNotInteger means a numeric segment could not be read as a
	// non-negative integer.
	VersionNotInteger
	// VersionUnknownPrerelease means the pre-release tag name is not one of
	// the recognized spellings.
	VersionUnknownPrerelease
)

// VersionSyntaxError reports a version identifier that failed to parse.
// Part carries the offending substring when the failure is local to one.
type VersionSyntaxError struct {
	Input  string
	Part   string
	Reason VersionSyntaxReason
}

// Error implements the error interface.
func (e *VersionSyntaxError) Error() string {
	switch e.Reason {
	case VersionNotInteger:
		return fmt.Sprintf("cannot parse %q in version %q as a non-negative integer", e.Part, e.Input)
	case VersionUnknownPrerelease:
		return fmt.Sprintf("unknown prerelease tag %q in version %q", e.Part, e.Input)
	default:
		return fmt.Sprintf("version %q must be dot-separated numbers with optional pre/post/dev markers", e.Input)
	}
}

// SpecifierSyntaxError reports a requirement or specifier string that failed
// to parse.
type SpecifierSyntaxError struct {
	Input   string
	Message string
}

// Error implements the error interface.
func (e *SpecifierSyntaxError) Error() string {
	return fmt.Sprintf("invalid specifier %q: %s", e.Input, e.Message)
}

// ProviderError reports a registry or transport failure while fetching
// candidate versions or dependencies. It is distinct from "package has no
// versions": the latter implies unsatisfiability, a transport failure does
// not, so the resolver aborts instead of concluding anything.
type ProviderError struct {
	Package Name
	Version string // empty when the failure is not tied to one version
	Err     error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("provider failed for %s: %v", e.Package.Value(), e.Err)
	}
	return fmt.Sprintf("provider failed for %s %s: %v", e.Package.Value(), e.Version, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NoSolutionError is returned when the resolver proves no assignment exists.
// Incompatibility is the final learned incompatibility, the minimal proof of
// unsatisfiability, not a log of every rejected branch.
type NoSolutionError struct {
	// Incompatibility is the root cause of the failure.
	Incompatibility *Incompatibility
	// Reporter formats the error message (defaults to DefaultReporter).
	Reporter Reporter
}

// Error implements the error interface.
func (e *NoSolutionError) Error() string {
	if e.Incompatibility == nil {
		return "version solving failed"
	}

	reporter := e.Reporter
	if reporter == nil {
		reporter = &DefaultReporter{}
	}
	return reporter.Report(e.Incompatibility)
}

// WithReporter returns a copy of the error rendering through a custom reporter.
func (e *NoSolutionError) WithReporter(reporter Reporter) *NoSolutionError {
	return &NoSolutionError{
		Incompatibility: e.Incompatibility,
		Reporter:        reporter,
	}
}

// NewNoSolutionError creates a NoSolutionError from an incompatibility.
func NewNoSolutionError(incomp *Incompatibility) *NoSolutionError {
	return &NoSolutionError{
		Incompatibility: incomp,
		Reporter:        &DefaultReporter{},
	}
}

// ErrIterationLimit is returned when the solver exceeds its maximum step
// count. Configure with WithMaxSteps(0) to disable the limit (not recommended
// for untrusted inputs).
type ErrIterationLimit struct {
	Steps int
}

// Error implements the error interface.
func (e ErrIterationLimit) Error() string {
	if e.Steps <= 0 {
		return "solver exceeded iteration limit"
	}
	return fmt.Sprintf("solver exceeded iteration limit after %d steps", e.Steps)
}

var (
	_ error = (*VersionSyntaxError)(nil)
	_ error = (*SpecifierSyntaxError)(nil)
	_ error = (*ProviderError)(nil)
	_ error = (*NoSolutionError)(nil)
	_ error = ErrIterationLimit{}
)
