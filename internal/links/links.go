// Package links extracts same-domain hyperlinks from a fetched page.
package links

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// ExtractLinks scans html for anchor hrefs and returns the absolute
// same-host URLs, deduplicated and in first-seen document order.
//
// Fragment-only, javascript:, mailto: and tel: targets are excluded.
// Root-relative hrefs are resolved against baseURL's scheme and host;
// other relative hrefs are resolved against the host root. Links whose
// resolved host differs from baseURL's host are dropped — keeping
// cross-domain targets available is not this tool's responsibility.
//
// Known limitation: goquery tolerates most broken markup, but anchors
// inside unparseable HTML fragments are silently missed. Extraction is
// best-effort by design.
func ExtractLinks(html, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	seen := make(map[string]struct{})
	var result []string

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if skipHref(href) {
			return
		}

		resolved := resolveHref(href, base)
		if resolved == "" {
			return
		}

		parsed, err := url.Parse(resolved)
		if err != nil || parsed.Host != base.Host {
			return
		}

		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		result = append(result, resolved)
	})

	log.Debug().
		Str("base_url", baseURL).
		Int("links_found", len(result)).
		Msg("Extracted same-domain links")

	return result, nil
}

// skipHref reports whether an href value is a non-navigable target.
func skipHref(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return true
	}
	for _, scheme := range []string{"javascript:", "mailto:", "tel:"} {
		if strings.HasPrefix(href, scheme) {
			return true
		}
	}
	return false
}

// resolveHref turns an href into an absolute URL against base.
// Absolute URLs pass through unchanged; root-relative paths get the
// base's scheme and host; anything else is appended to the host root.
func resolveHref(href string, base *url.URL) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return base.Scheme + "://" + base.Host + href
	}
	return base.Scheme + "://" + base.Host + "/" + href
}
