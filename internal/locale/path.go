package locale

import "strings"

// BuildPath prefixes an internal link with the locale. API and framework paths are
// returned unchanged, as are paths already under the locale. Query and fragment are
// kept after the rewritten path.
func BuildPath(tag Tag, rawPath string) string {
	if rawPath == "" {
		return "/" + tag.String()
	}

	if !strings.HasPrefix(rawPath, "/") {
		rawPath = "/" + rawPath
	}

	if strings.HasPrefix(rawPath, "/api") || strings.HasPrefix(rawPath, "/_next") {
		return rawPath
	}

	prefix := "/" + tag.String()
	if rawPath == prefix || strings.HasPrefix(rawPath, prefix+"/") ||
		strings.HasPrefix(rawPath, prefix+"?") || strings.HasPrefix(rawPath, prefix+"#") {
		return rawPath
	}

	pathAndQuery, hash, hasHash := strings.Cut(rawPath, "#")
	path, query, hasQuery := strings.Cut(pathAndQuery, "?")

	localized := prefix
	if path != "/" {
		localized += path
	}

	if hasQuery {
		localized += "?" + query
	}

	if hasHash {
		localized += "#" + hash
	}

	return localized
}

// IsPathActive reports whether a navigation target matches the current path. The
// locale root is only active on an exact match; other targets are active for their
// whole subtree.
func IsPathActive(currentPath string, tag Tag, targetPath string) bool {
	localized := BuildPath(tag, targetPath)
	localized, _, _ = strings.Cut(localized, "#")
	localized, _, _ = strings.Cut(localized, "?")

	if localized == "/"+tag.String() {
		return currentPath == localized || currentPath == localized+"/"
	}

	return currentPath == localized || strings.HasPrefix(currentPath, localized+"/")
}

// SwitchPath returns the current path moved to another locale, used by the language switcher.
func (r *Resolver) SwitchPath(currentPath string, to Tag) string {
	rest := currentPath
	if tag, ok := r.FromPath(currentPath); ok {
		rest = strings.TrimPrefix(currentPath, "/"+tag.String())
	}

	if rest == "" {
		rest = "/"
	}

	return BuildPath(to, rest)
}
