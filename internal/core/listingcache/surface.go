package listingcache

import "strings"

// Surface identifies one render surface that keeps its own cache entry
type Surface string

const (
	SurfaceLanding Surface = "landing"
	SurfaceFresh   Surface = "fresh"
	SurfacePopular Surface = "popular"
	SurfaceBrowse  Surface = "browse"
)

const detailPrefix = "detail:"

// DetailSurface returns the surface key for a single listing's detail page
func DetailSurface(listingID string) Surface {
	return Surface(detailPrefix + listingID)
}

// IsDetail reports whether s is a detail surface
func (s Surface) IsDetail() bool {
	return strings.HasPrefix(string(s), detailPrefix)
}

// ListingID returns the listing id of a detail surface, or "" for list surfaces
func (s Surface) ListingID() string {
	id, ok := strings.CutPrefix(string(s), detailPrefix)
	if !ok {
		return ""
	}
	return id
}

// ParseSurface maps a user-facing name to a Surface.
// Unknown names are returned as-is with ok=false.
func ParseSurface(name string) (Surface, bool) {
	s := Surface(strings.ToLower(strings.TrimSpace(name)))
	switch s {
	case SurfaceLanding, SurfaceFresh, SurfacePopular, SurfaceBrowse:
		return s, true
	}
	if s.IsDetail() && s.ListingID() != "" {
		return s, true
	}
	return s, false
}
