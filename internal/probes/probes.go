// Package probes defines the fixed battery of smoke tests run against a
// freshly deployed site.
package probes

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/greenlight-ci/greenlight/internal/fetcher"
	"github.com/greenlight-ci/greenlight/internal/links"
)

// Fetcher is the fetch primitive the probes are built from.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.Response, error)
}

// Probe is a single named smoke test. Run returns nil on pass; any
// error is an assertion or transport failure to be captured by the
// retry scheduler.
type Probe struct {
	Name string
	Run  func(ctx context.Context) error
}

// DocPaths is the fixed ordered list of documentation paths checked by
// the documentation probe.
var DocPaths = []string{
	"/getting-started/",
	"/configuration/",
	"/api-reference/",
	"/faq/",
}

// AssetPaths is the fixed list of static-asset paths checked by the
// assets probe.
var AssetPaths = []string{
	"/assets/stylesheets/",
	"/assets/javascripts/",
	"/assets/images/",
}

// SearchIndexPath is the search-index script fetched by the search probe.
const SearchIndexPath = "/search/search_index.json"

// MaxLinkChecks bounds the link-integrity probe so its duration stays
// predictable regardless of page size.
const MaxLinkChecks = 20

// Suite returns the five probes in their fixed execution order.
// Later probes are unaffected by earlier failures.
func Suite(f Fetcher, baseURL string) []Probe {
	baseURL = strings.TrimSuffix(baseURL, "/")
	return []Probe{
		{Name: "Homepage loads", Run: homepageProbe(f, baseURL)},
		{Name: "Documentation pages accessible", Run: docsProbe(f, baseURL)},
		{Name: "Search functionality works", Run: searchProbe(f, baseURL)},
		{Name: "Assets load correctly", Run: assetsProbe(f, baseURL)},
		{Name: "No broken links on homepage", Run: linkIntegrityProbe(f, baseURL)},
	}
}

// homepageProbe checks the base URL serves a non-empty HTML page.
func homepageProbe(f Fetcher, baseURL string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		resp, err := f.Fetch(ctx, baseURL)
		if err != nil {
			return err
		}
		if resp.StatusCode != 200 {
			return &AssertionError{Reason: fmt.Sprintf("homepage returned status %d, expected 200", resp.StatusCode)}
		}
		if !strings.Contains(resp.ContentType(), "text/html") {
			return &AssertionError{Reason: fmt.Sprintf("homepage content-type %q does not contain text/html", resp.ContentType())}
		}
		if resp.Body == "" {
			return &AssertionError{Reason: "homepage body is empty"}
		}
		return nil
	}
}

// docsProbe checks each documentation path returns 200, failing on the
// first path that does not and naming it.
func docsProbe(f Fetcher, baseURL string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		for _, path := range DocPaths {
			resp, err := f.Fetch(ctx, baseURL+path)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", path, err)
			}
			if resp.StatusCode != 200 {
				return &AssertionError{Reason: fmt.Sprintf("documentation page %s returned status %d, expected 200", path, resp.StatusCode)}
			}
		}
		return nil
	}
}

// searchProbe checks the search index is present and non-empty.
func searchProbe(f Fetcher, baseURL string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		resp, err := f.Fetch(ctx, baseURL+SearchIndexPath)
		if err != nil {
			return err
		}
		if resp.StatusCode != 200 {
			return &AssertionError{Reason: fmt.Sprintf("search index returned status %d, expected 200", resp.StatusCode)}
		}
		if resp.Body == "" {
			return &AssertionError{Reason: "search index body is empty"}
		}
		return nil
	}
}

// assetsProbe checks each asset path responds with an accepted status.
// 403 is accepted: it indicates a disabled directory listing, not a
// missing asset.
func assetsProbe(f Fetcher, baseURL string) func(ctx context.Context) error {
	accepted := map[int]bool{200: true, 301: true, 302: true, 403: true}
	return func(ctx context.Context) error {
		for _, path := range AssetPaths {
			resp, err := f.Fetch(ctx, baseURL+path)
			if err != nil {
				return fmt.Errorf("failed to fetch asset %s: %w", path, err)
			}
			if !accepted[resp.StatusCode] {
				return &AssertionError{Reason: fmt.Sprintf("asset %s returned status %d, expected one of 200/301/302/403", path, resp.StatusCode)}
			}
		}
		return nil
	}
}

// linkIntegrityProbe fetches the homepage, extracts same-domain links
// and checks the first MaxLinkChecks of them respond without error and
// below status 400.
//
// The constituent link fetches are not individually retried: a
// transient failure on one link re-runs the whole batch when the
// scheduler retries the probe.
func linkIntegrityProbe(f Fetcher, baseURL string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		resp, err := f.Fetch(ctx, baseURL)
		if err != nil {
			return err
		}
		if resp.StatusCode != 200 {
			return &AssertionError{Reason: fmt.Sprintf("homepage returned status %d, expected 200", resp.StatusCode)}
		}

		found, err := links.ExtractLinks(resp.Body, baseURL)
		if err != nil {
			return err
		}

		checked := found
		if len(checked) > MaxLinkChecks {
			log.Debug().
				Int("links_found", len(found)).
				Int("links_checked", MaxLinkChecks).
				Msg("Truncating link check batch")
			checked = checked[:MaxLinkChecks]
		}

		var broken []string
		for _, link := range checked {
			linkResp, err := f.Fetch(ctx, link)
			if err != nil {
				broken = append(broken, fmt.Sprintf("%s (%v)", link, err))
				continue
			}
			if linkResp.StatusCode >= 400 {
				broken = append(broken, fmt.Sprintf("%s (status %d)", link, linkResp.StatusCode))
			}
		}

		if len(broken) > 0 {
			return &AssertionError{Reason: fmt.Sprintf("found %d broken links: %s", len(broken), strings.Join(broken, ", "))}
		}
		return nil
	}
}
