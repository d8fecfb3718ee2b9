package browser

import (
	"net/url"
	"regexp"
	"strings"
)

// volatileSegment matches path segments that vary per navigation:
// numeric ids, UUIDs, and long hex tokens.
var volatileSegment = regexp.MustCompile(`^(\d+|[0-9a-fA-F-]{16,}|[0-9a-fA-F]{8,})$`)

// KeyFromURL derives a stable page-template key from a URL, so cache
// entries survive repeated navigations to "the same" page. Query,
// fragment, and volatile path segments are dropped.
//
//	https://shop.test/orders/18273/items?tab=all -> shop.test/orders/*/items
func KeyFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if volatileSegment.MatchString(seg) {
			segments[i] = "*"
		}
	}

	key := u.Host
	if joined := strings.Join(segments, "/"); joined != "" {
		key += "/" + joined
	}
	return key
}
