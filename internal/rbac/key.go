package rbac

import "strings"

// Resource keys follow the convention "page:<slug>" / "component:<slug>",
// where the slug of a page is derived from its URL path. Every caller must
// build keys through these helpers; a hand-rolled key that drifts from the
// stored one fails open silently.
const (
	pageKeyPrefix      = "page:"
	componentKeyPrefix = "component:"
)

// SlugFromPath converts a URL path into a resource slug by stripping the
// leading slash and replacing the remaining slashes with hyphens, e.g.
// "/settings/access-control" becomes "settings-access-control".
func SlugFromPath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	return strings.ReplaceAll(path, "/", "-")
}

// PageKey builds a page resource key from a slug.
func PageKey(slug string) string {
	return pageKeyPrefix + strings.TrimSpace(slug)
}

// ComponentKey builds a component resource key from a slug.
func ComponentKey(slug string) string {
	return componentKeyPrefix + strings.TrimSpace(slug)
}

// PageKeyFromPath builds a page resource key directly from a URL path.
func PageKeyFromPath(path string) string {
	return PageKey(SlugFromPath(path))
}
