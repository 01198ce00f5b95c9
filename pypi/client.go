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

// Package pypi provides a resolver provider backed by the PyPI JSON API.
package pypi

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/contriboss/pypgrub"
)

const defaultBaseURL = "https://pypi.org"

// CacheStats counts cache activity of a Client. Each release list and each
// dependency set is fetched at most once per Client.
type CacheStats struct {
	ReleaseHits      int
	ReleaseMisses    int
	DependencyHits   int
	DependencyMisses int
}

// Client implements pypgrub.Provider against the PyPI JSON API.
//
// All responses are memoized for the lifetime of the client, so a single
// resolution run issues at most one releases request per package and one
// metadata request per decided release. Requests are retried with backoff
// on transport errors and server-side failures.
type Client struct {
	base   string
	http   *retryablehttp.Client
	logger *slog.Logger

	mu       sync.Mutex
	releases map[pypgrub.Name][]pypgrub.Version
	deps     map[releaseKey]pypgrub.Dependencies
	stats    CacheStats
}

type releaseKey struct {
	pkg     pypgrub.Name
	version string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different registry endpoint, typically
// a test server or a PyPI mirror.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.base = base
	}
}

// WithHTTPClient replaces the retrying HTTP client entirely.
func WithHTTPClient(client *retryablehttp.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

// WithRetryMax sets the maximum number of retries per request.
func WithRetryMax(retries int) Option {
	return func(c *Client) {
		c.http.RetryMax = retries
	}
}

// WithLogger sets a structured logger for request and parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a PyPI-backed provider.
func NewClient(opts ...Option) *Client {
	rClient := retryablehttp.NewClient()
	rClient.HTTPClient = cleanhttp.DefaultPooledClient()
	rClient.RetryMax = 3
	rClient.RetryWaitMin = 200 * time.Millisecond
	rClient.RetryWaitMax = 5 * time.Second
	rClient.Logger = nil

	c := &Client{
		base:     defaultBaseURL,
		http:     rClient,
		releases: make(map[pypgrub.Name][]pypgrub.Version),
		deps:     make(map[releaseKey]pypgrub.Dependencies),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Stats returns a snapshot of the cache counters.
func (c *Client) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(msg, args...)
}

// projectDocument is the subset of the /pypi/{package}/json response the
// provider needs: only the release version keys matter.
type projectDocument struct {
	Releases map[string]json.RawMessage `json:"releases"`
}

// releaseDocument is the subset of the /pypi/{package}/{version}/json
// response the provider needs.
type releaseDocument struct {
	Info struct {
		RequiresDist []string `json:"requires_dist"`
	} `json:"info"`
}

// releasesFor returns the versions of a package, newest first. Unknown
// packages yield an empty list; transport failures return a
// *pypgrub.ProviderError.
func (c *Client) releasesFor(pkg pypgrub.Name) ([]pypgrub.Version, error) {
	c.mu.Lock()
	if versions, ok := c.releases[pkg]; ok {
		c.stats.ReleaseHits++
		c.mu.Unlock()
		return versions, nil
	}
	c.stats.ReleaseMisses++
	c.mu.Unlock()

	endpoint := fmt.Sprintf("%s/pypi/%s/json", c.base, url.PathEscape(pkg.Value()))
	body, found, err := c.get(endpoint)
	if err != nil {
		return nil, &pypgrub.ProviderError{Package: pkg, Err: err}
	}

	versions := make([]pypgrub.Version, 0)
	if found {
		var doc projectDocument
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, &pypgrub.ProviderError{Package: pkg, Err: err}
		}
		for raw := range doc.Releases {
			version, err := pypgrub.ParseVersion(raw)
			if err != nil {
				c.debug("skipping unparseable release",
					"package", pkg.Value(),
					"version", raw,
					"error", err,
				)
				continue
			}
			versions = append(versions, version)
		}
		sort.Slice(versions, func(i, j int) bool {
			return versions[i].Compare(versions[j]) > 0
		})
	} else {
		c.debug("package not found", "package", pkg.Value())
	}

	c.mu.Lock()
	c.releases[pkg] = versions
	c.mu.Unlock()
	return versions, nil
}

// ChooseVersion implements pypgrub.Provider. Release lists for all
// candidates are fetched up front so the fewest-versions heuristic sees the
// whole picture.
func (c *Client) ChooseVersion(candidates []pypgrub.Candidate) (pypgrub.Name, *pypgrub.Version, error) {
	lists := make(map[pypgrub.Name][]pypgrub.Version, len(candidates))
	for _, cand := range candidates {
		versions, err := c.releasesFor(cand.Package)
		if err != nil {
			return pypgrub.EmptyName(), nil, err
		}
		lists[cand.Package] = versions
	}

	name, ver := pypgrub.ChooseByFewestVersions(func(pkg pypgrub.Name) []pypgrub.Version {
		return lists[pkg]
	}, candidates)
	return name, ver, nil
}

// DependenciesOf implements pypgrub.Provider. Releases whose metadata is
// missing from the registry report unknown dependencies; requirement lines
// that fail to parse are skipped.
func (c *Client) DependenciesOf(pkg pypgrub.Name, version pypgrub.Version) (pypgrub.Dependencies, error) {
	key := releaseKey{pkg: pkg, version: version.String()}

	c.mu.Lock()
	if deps, ok := c.deps[key]; ok {
		c.stats.DependencyHits++
		c.mu.Unlock()
		return deps, nil
	}
	c.stats.DependencyMisses++
	c.mu.Unlock()

	endpoint := fmt.Sprintf("%s/pypi/%s/%s/json",
		c.base, url.PathEscape(pkg.Value()), url.PathEscape(version.String()))
	body, found, err := c.get(endpoint)
	if err != nil {
		return pypgrub.Dependencies{}, &pypgrub.ProviderError{
			Package: pkg,
			Version: version.String(),
			Err:     err,
		}
	}

	var deps pypgrub.Dependencies
	if !found {
		c.debug("release metadata not found",
			"package", pkg.Value(),
			"version", version.String(),
		)
		deps.Unknown = true
	} else {
		var doc releaseDocument
		if err := json.Unmarshal(body, &doc); err != nil {
			return pypgrub.Dependencies{}, &pypgrub.ProviderError{
				Package: pkg,
				Version: version.String(),
				Err:     err,
			}
		}
		deps.Constraints = c.parseRequirements(pkg, doc.Info.RequiresDist)
	}

	c.mu.Lock()
	c.deps[key] = deps
	c.mu.Unlock()
	return deps, nil
}

// parseRequirements converts requires_dist lines to dependencies, dropping
// marker-guarded lines and intersecting duplicate entries for one package.
func (c *Client) parseRequirements(pkg pypgrub.Name, lines []string) []pypgrub.Dependency {
	byName := make(map[pypgrub.Name]int)
	deps := make([]pypgrub.Dependency, 0, len(lines))

	for _, line := range lines {
		dep, ok, err := pypgrub.ParseRequirement(line)
		if err != nil {
			c.debug("skipping unparseable requirement",
				"package", pkg.Value(),
				"requirement", line,
				"error", err,
			)
			continue
		}
		if !ok {
			continue
		}

		if i, seen := byName[dep.Package]; seen {
			deps[i].Versions = deps[i].Versions.Intersection(dep.Versions)
			continue
		}
		byName[dep.Package] = len(deps)
		deps = append(deps, dep)
	}

	return deps
}

// get fetches a URL, distinguishing "not found" from transport failure.
func (c *Client) get(endpoint string) (body []byte, found bool, err error) {
	resp, err := c.http.Get(endpoint)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("unexpected status %s from %s", resp.Status, endpoint)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

var _ pypgrub.Provider = (*Client)(nil)
