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

// Command pypgrub resolves a set of PyPI requirements and prints the
// selected versions.
//
// Usage:
//
//	pypgrub -require 'chardet >=3.0.2, <4.0.0' -require pytz
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/contriboss/pypgrub"
	"github.com/contriboss/pypgrub/pypi"
)

type requirementList []pypgrub.Requirement

func (r *requirementList) String() string {
	parts := make([]string, len(*r))
	for i, req := range *r {
		parts[i] = strings.TrimSpace(req.Name + " " + req.Specifier)
	}
	return strings.Join(parts, "; ")
}

func (r *requirementList) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("empty requirement")
	}

	name := value
	spec := ""
	if i := strings.IndexAny(value, " <>=!~("); i >= 0 {
		name = strings.TrimSpace(value[:i])
		spec = strings.TrimSpace(value[i:])
		spec = strings.TrimPrefix(spec, "(")
		spec = strings.TrimSuffix(spec, ")")
	}
	if name == "" {
		return fmt.Errorf("requirement %q has no package name", value)
	}

	*r = append(*r, pypgrub.Requirement{Name: name, Specifier: spec})
	return nil
}

func main() {
	var (
		requirements requirementList
		rootName     = flag.String("root", "root", "name of the synthetic root project")
		rootVersion  = flag.String("version", "0.0.0", "version of the synthetic root project")
		registryURL  = flag.String("registry", "", "registry base URL (defaults to pypi.org)")
		verbose      = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Var(&requirements, "require", "requirement to resolve, e.g. 'chardet >=3.0.2, <4.0.0' (repeatable)")
	flag.Parse()

	if len(requirements) == 0 {
		fmt.Fprintln(os.Stderr, "at least one -require is needed")
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	clientOpts := []pypi.Option{pypi.WithLogger(logger)}
	if *registryURL != "" {
		clientOpts = append(clientOpts, pypi.WithBaseURL(*registryURL))
	}
	registry := pypi.NewClient(clientOpts...)

	solverOpts := []pypgrub.SolverOption{pypgrub.WithIncompatibilityTracking(true)}
	if *verbose {
		solverOpts = append(solverOpts, pypgrub.WithLogger(logger))
	}

	closure, err := pypgrub.Resolve(registry, *rootName, *rootVersion, requirements, solverOpts...)
	if err != nil {
		var noSolution *pypgrub.NoSolutionError
		if errors.As(err, &noSolution) {
			fmt.Fprintln(os.Stderr, noSolution.WithReporter(&pypgrub.DefaultReporter{}).Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	names := make([]string, 0, len(closure))
	for name := range closure {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s %s\n", name, closure[name])
	}
}
