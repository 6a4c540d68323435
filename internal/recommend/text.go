package recommend

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxDescriptionRunes caps Recommendation.Description.
	MaxDescriptionRunes = 280

	// MaxNameRunes caps Recommendation.Name.
	MaxNameRunes = 80

	unknownName = "Unknown MCP"
	ellipsis    = "..."
)

// titleBoilerplate is stripped from either end of a page title.
var (
	titlePrefixes = []string{"GitHub - ", "GitLab - ", "Bitbucket - "}
	titleSuffixes = []string{
		" - GitHub", " · GitHub", " | GitHub", " — GitHub", " – GitHub",
		" - GitLab", " · GitLab", " | GitLab",
		" - Bitbucket", " | Bitbucket",
		" - Codeberg.org",
	}

	// ownerRepoTitle matches GitHub's "owner/repo: description" titles.
	ownerRepoTitle = regexp.MustCompile(`^[\w.-]+/([\w.-]+)(?::\s.*)?$`)
)

// collapseWhitespace folds every whitespace run into a single space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes shortens s to at most max runes, cutting at a word
// boundary when one is reasonably close and appending "...".
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:max-len(ellipsis)])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	cut = strings.TrimRight(cut, " ,.;:-")
	return cut + ellipsis
}

// deriveName builds a display name from the hit title, falling back to the
// repository path and then the source host.
func deriveName(title, repoURL, sourceURL string) string {
	name := collapseWhitespace(title)
	for _, p := range titlePrefixes {
		name = strings.TrimPrefix(name, p)
	}
	for _, s := range titleSuffixes {
		name = strings.TrimSuffix(name, s)
	}
	name = strings.TrimSpace(name)
	repo := repoName(repoURL)
	// Only shorten "owner/repo" titles that name the hit's own repository.
	if m := ownerRepoTitle.FindStringSubmatch(name); m != nil && repo != "" && strings.EqualFold(m[1], repo) {
		name = m[1]
	}
	if name == "" {
		name = repo
	}
	if name == "" {
		name = hostOf(sourceURL)
	}
	if name == "" {
		return unknownName
	}
	return truncateRunes(name, MaxNameRunes)
}

// repoName returns the last path segment of a canonical repository URL.
func repoName(repoURL string) string {
	if repoURL == "" {
		return ""
	}
	segments := pathSegments(strings.TrimPrefix(repoURL, "https://"))
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// installationNotes returns the first install command in text.
func installationNotes(text string) string {
	return collapseWhitespace(installPattern.FindString(text))
}
