package assets

import (
	"fmt"
	"strings"
)

// Sanity builds cdn.sanity.io image URLs from "image-<hash>-<WxH>-<ext>" refs.
// Without a project id no CDN URL can be formed and refs resolve to "".
type Sanity struct {
	ProjectID string
	Dataset   string
	Width     int // 0 keeps the original size
}

func (s Sanity) URL(ref string) string {
	if ref == "" || passthrough(ref) {
		return ref
	}
	if s.ProjectID == "" {
		return ""
	}
	// image-<hash>-<WxH>-<ext>; the hash itself never contains '-'.
	parts := strings.Split(ref, "-")
	if len(parts) != 4 || parts[0] != "image" {
		return ""
	}
	u := fmt.Sprintf("https://cdn.sanity.io/images/%s/%s/%s-%s.%s",
		s.ProjectID, s.Dataset, parts[1], parts[2], parts[3])
	if s.Width > 0 {
		u += fmt.Sprintf("?w=%d&h=%d&fit=crop&auto=format", s.Width, s.Width)
	}
	return u
}
