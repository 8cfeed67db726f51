// Package assets turns the opaque image references stored on cart items into
// fetchable URLs.
package assets

import "strings"

// Resolver maps an asset reference to a URL. An empty ref yields "".
type Resolver interface {
	URL(ref string) string
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(ref string) string

func (f ResolverFunc) URL(ref string) string { return f(ref) }

// passthrough reports whether ref is already an absolute URL.
func passthrough(ref string) bool {
	return strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://")
}
