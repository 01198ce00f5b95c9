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

package pypi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contriboss/pypgrub"
)

// fakeRegistry serves a minimal slice of the PyPI JSON API.
type fakeRegistry struct {
	mux      *http.ServeMux
	requests atomic.Int64
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{mux: http.NewServeMux()}
}

func (f *fakeRegistry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	f.mux.ServeHTTP(w, r)
}

func (f *fakeRegistry) addProject(name string, versions ...string) {
	f.mux.HandleFunc("/pypi/"+name+"/json", func(w http.ResponseWriter, r *http.Request) {
		body := `{"releases":{`
		for i, v := range versions {
			if i > 0 {
				body += ","
			}
			body += fmt.Sprintf("%q:[]", v)
		}
		body += `}}`
		fmt.Fprint(w, body)
	})
}

func (f *fakeRegistry) addRelease(name, version string, requiresDist ...string) {
	f.mux.HandleFunc("/pypi/"+name+"/"+version+"/json", func(w http.ResponseWriter, r *http.Request) {
		body := `{"info":{"requires_dist":[`
		for i, line := range requiresDist {
			if i > 0 {
				body += ","
			}
			body += fmt.Sprintf("%q", line)
		}
		body += `]}}`
		fmt.Fprint(w, body)
	})
}

func TestClientReleasesSortedDescending(t *testing.T) {
	registry := newFakeRegistry()
	registry.addProject("chardet", "3.0.2", "4.0.0", "3.0.4", "not a version")

	server := httptest.NewServer(registry)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithRetryMax(0))
	versions, err := client.releasesFor(pypgrub.MakeName("chardet"))
	require.NoError(t, err)

	got := make([]string, len(versions))
	for i, v := range versions {
		got[i] = v.String()
	}
	// The unparseable release key is skipped.
	assert.Equal(t, []string{"4.0.0", "3.0.4", "3.0.2"}, got)
}

func TestClientUnknownPackageHasNoVersions(t *testing.T) {
	registry := newFakeRegistry()

	server := httptest.NewServer(registry)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithRetryMax(0))
	versions, err := client.releasesFor(pypgrub.MakeName("ghost"))
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestClientDependenciesOf(t *testing.T) {
	registry := newFakeRegistry()
	registry.addRelease("requests", "2.25.1",
		"chardet (<5,>=3.0.2)",
		"idna (<3,>=2.5)",
		`PySocks (!=1.5.7,>=1.5.6) ; extra == 'socks'`,
		"garbage requirement ((",
	)

	server := httptest.NewServer(registry)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithRetryMax(0))
	deps, err := client.DependenciesOf(pypgrub.MakeName("requests"), pypgrub.MustParseVersion("2.25.1"))
	require.NoError(t, err)
	require.False(t, deps.Unknown)

	require.Len(t, deps.Constraints, 2, "marker-guarded and unparseable lines are dropped")
	assert.Equal(t, "chardet", deps.Constraints[0].Package.Value())
	assert.Equal(t, "idna", deps.Constraints[1].Package.Value())
	assert.True(t, deps.Constraints[0].Versions.Contains(pypgrub.MustParseVersion("4.0.0")))
	assert.False(t, deps.Constraints[0].Versions.Contains(pypgrub.MustParseVersion("5.0.0")))
}

func TestClientUnknownReleaseMetadata(t *testing.T) {
	registry := newFakeRegistry()

	server := httptest.NewServer(registry)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithRetryMax(0))
	deps, err := client.DependenciesOf(pypgrub.MakeName("ghost"), pypgrub.MustParseVersion("1.0.0"))
	require.NoError(t, err)
	assert.True(t, deps.Unknown)
}

func TestClientMemoizesLookups(t *testing.T) {
	registry := newFakeRegistry()
	registry.addProject("pytz", "2021.1")
	registry.addRelease("pytz", "2021.1.0")

	server := httptest.NewServer(registry)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithRetryMax(0))

	for i := 0; i < 3; i++ {
		_, err := client.releasesFor(pypgrub.MakeName("pytz"))
		require.NoError(t, err)
		_, err = client.DependenciesOf(pypgrub.MakeName("pytz"), pypgrub.MustParseVersion("2021.1"))
		require.NoError(t, err)
	}

	assert.EqualValues(t, 2, registry.requests.Load(), "every lookup after the first must be served from cache")

	stats := client.Stats()
	assert.Equal(t, 1, stats.ReleaseMisses)
	assert.Equal(t, 2, stats.ReleaseHits)
	assert.Equal(t, 1, stats.DependencyMisses)
	assert.Equal(t, 2, stats.DependencyHits)
}

func TestClientTransportFailure(t *testing.T) {
	registry := newFakeRegistry()
	registry.mux.HandleFunc("/pypi/flaky/json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	server := httptest.NewServer(registry)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithRetryMax(0))
	_, err := client.releasesFor(pypgrub.MakeName("flaky"))

	var provErr *pypgrub.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, pypgrub.MakeName("flaky"), provErr.Package)
}

func TestClientEndToEndResolve(t *testing.T) {
	registry := newFakeRegistry()
	registry.addProject("requests", "2.25.1")
	registry.addProject("chardet", "3.0.2", "3.0.4", "4.0.0")
	registry.addProject("idna", "2.10", "3.1")
	registry.addRelease("requests", "2.25.1",
		"chardet (<5,>=3.0.2)",
		"idna (<3,>=2.5)",
	)
	registry.addRelease("chardet", "4.0.0")
	registry.addRelease("idna", "2.10.0")

	server := httptest.NewServer(registry)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithRetryMax(0))
	closure, err := pypgrub.Resolve(client, "app", "0.1.0", []pypgrub.Requirement{
		{Name: "requests", Specifier: "==2.25.1"},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"app":      "0.1.0",
		"requests": "2.25.1",
		"chardet":  "4.0.0",
		"idna":     "2.10.0",
	}, closure)
}
