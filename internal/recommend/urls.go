package recommend

import (
	"net/url"
	"strings"
)

// CanonicalURL normalizes a URL for use as a deduplication key: scheme and
// host are lowercased, and the query, fragment and trailing slash are
// removed. Input that does not parse is returned trimmed.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRight(raw, "/")
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		scheme = "https"
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.TrimRight(u.EscapedPath(), "/")
	return scheme + "://" + host + path
}

// hostOf returns the lowercased host of raw without a leading "www.".
func hostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// repositoryURL returns the canonical https://host/owner/repo form when raw
// points into a repository on one of the given code hosts.
func repositoryURL(raw string, codeHosts map[string]bool) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if !codeHosts[host] {
		return ""
	}
	segments := pathSegments(u.Path)
	if len(segments) < 2 {
		return ""
	}
	owner := strings.ToLower(segments[0])
	repo := strings.ToLower(strings.TrimSuffix(segments[1], ".git"))
	if owner == "" || repo == "" || reservedOwners[owner] {
		return ""
	}
	return "https://" + host + "/" + owner + "/" + repo
}

// reservedOwners are first path segments on code hosts that are site
// sections rather than accounts.
var reservedOwners = map[string]bool{
	"topics":      true,
	"search":      true,
	"marketplace": true,
	"explore":     true,
	"orgs":        true,
	"settings":    true,
	"features":    true,
	"collections": true,
	"sponsors":    true,
}

func pathSegments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
