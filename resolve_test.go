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

	"github.com/google/go-cmp/cmp"
)

func TestResolveClosureIncludesRoot(t *testing.T) {
	registry := NewMemoryProvider()
	registry.AddPackage("chardet", MustParseVersion("3.0.2"), nil)
	registry.AddPackage("chardet", MustParseVersion("3.0.4"), nil)
	registry.AddPackage("chardet", MustParseVersion("4.0.0"), nil)
	registry.AddPackage("pytz", MustParseVersion("2021.1"), nil)

	closure, err := Resolve(registry, "myapp", "1.0.0", []Requirement{
		{Name: "chardet", Specifier: ">=3.0.2, <4.0.0"},
		{Name: "pytz", Specifier: ""},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := map[string]string{
		"myapp":   "1.0.0",
		"chardet": "3.0.4",
		"pytz":    "2021.1.0",
	}
	if diff := cmp.Diff(want, closure); diff != "" {
		t.Fatalf("closure mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveTransitiveClosure(t *testing.T) {
	registry := NewMemoryProvider()
	registry.AddPackage("requests", MustParseVersion("2.25.1"), []Dependency{
		dep(t, "chardet", ">=3.0.2, <5.0.0"),
		dep(t, "idna", ">=2.5, <3"),
	})
	registry.AddPackage("chardet", MustParseVersion("4.0.0"), nil)
	registry.AddPackage("idna", MustParseVersion("2.10"), nil)
	registry.AddPackage("idna", MustParseVersion("3.1"), nil)

	closure, err := Resolve(registry, "app", "0.1.0", []Requirement{
		{Name: "requests", Specifier: "==2.25.1"},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := map[string]string{
		"app":      "0.1.0",
		"requests": "2.25.1",
		"chardet":  "4.0.0",
		"idna":     "2.10.0",
	}
	if diff := cmp.Diff(want, closure); diff != "" {
		t.Fatalf("closure mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveBadSpecifier(t *testing.T) {
	registry := NewMemoryProvider()

	_, err := Resolve(registry, "app", "0.1.0", []Requirement{
		{Name: "chardet", Specifier: ">=not-a-version"},
	})
	var synErr *SpecifierSyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("expected *SpecifierSyntaxError, got %v", err)
	}
}

func TestResolveBadRootVersion(t *testing.T) {
	registry := NewMemoryProvider()

	_, err := Resolve(registry, "app", "bogus", nil)
	var synErr *VersionSyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("expected *VersionSyntaxError, got %v", err)
	}
}

func TestResolveNoSolution(t *testing.T) {
	registry := NewMemoryProvider()
	registry.AddPackage("left", MustParseVersion("1.0.0"), []Dependency{
		dep(t, "shared", "==1.0.0"),
	})
	registry.AddPackage("right", MustParseVersion("1.0.0"), []Dependency{
		dep(t, "shared", "==2.0.0"),
	})
	registry.AddPackage("shared", MustParseVersion("1.0.0"), nil)
	registry.AddPackage("shared", MustParseVersion("2.0.0"), nil)

	_, err := Resolve(registry, "app", "0.1.0", []Requirement{
		{Name: "left", Specifier: "==1.0.0"},
		{Name: "right", Specifier: "==1.0.0"},
	})
	var nsErr *NoSolutionError
	if !errors.As(err, &nsErr) {
		t.Fatalf("expected *NoSolutionError, got %v", err)
	}
}
