package normalizer

import (
	"net/url"
	"strings"
)

const placeholderSearchURL = "https://news.google.com/search?hl=zh-CN&q="

// ResolveLink returns an absolute http(s) URL for link. Protocol-relative
// links get an https scheme and relative ones are resolved against fallback.
// Empty links and links with any other scheme (javascript:, mailto:) are
// replaced by fallback or, when that is not an http(s) URL either, a news
// search for game.
func ResolveLink(link, fallback, game string) string {
	base := parseHTTPURL(fallback)
	orFallback := func() string {
		if base != nil {
			return base.String()
		}
		return placeholderSearchURL + url.QueryEscape(game)
	}

	link = strings.TrimSpace(link)
	if link == "" {
		return orFallback()
	}
	if strings.HasPrefix(link, "//") {
		if u := parseHTTPURL(link); u != nil {
			return u.String()
		}
		return orFallback()
	}

	u, err := url.Parse(link)
	if err != nil {
		return orFallback()
	}
	if u.Scheme != "" {
		if isHTTP(u) {
			return link
		}
		return orFallback()
	}
	if base == nil {
		return orFallback()
	}
	return base.ResolveReference(u).String()
}

// IsHTTPURL reports whether s is an absolute http or https URL with a host.
// Protocol-relative values count, they resolve to https.
func IsHTTPURL(s string) bool {
	return parseHTTPURL(s) != nil
}

func parseHTTPURL(s string) *url.URL {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "//") {
		s = "https:" + s
	}
	u, err := url.Parse(s)
	if err != nil || !isHTTP(u) {
		return nil
	}
	return u
}

func isHTTP(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Hostname() != ""
}

// IsOfficial reports whether the host of link equals one of domains or is a
// subdomain of one. Comparison is case-insensitive.
func IsOfficial(link string, domains []string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}

	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
