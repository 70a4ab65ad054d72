package types

// KnownServices is the ordered table of archival services a creator page can
// belong to. Lookup order is the tie-break when a URL could match more than
// one entry; in practice party URLs are service-exclusive.
var KnownServices = []string{
	"fanbox",
	"patreon",
	"fantia",
	"subscribestar",
	"gumroad",
	"boosty",
	"onlyfans",
	"fansly",
	"candfans",
}

// TotalPostsUnknown marks a creator whose listing page carried no pagination
// summary. Downstream pagination then assumes a single page sized by the
// requested quota alone.
const TotalPostsUnknown = -1

// Creator is the resolved identity of a content creator, built once from the
// listing landing page and read-only for the scrape's duration.
//
// A Creator only exists for a successful resolution; fetch failures surface
// as errors from party.ResolveCreator and never produce a partially
// populated profile.
type Creator struct {
	// URL is the creator landing page as given by the caller.
	URL string `json:"url"`

	// Name is the creator display name, or empty when the landing page
	// carries no itemprop marker.
	Name string `json:"name,omitempty"`

	// Service is the matched entry from KnownServices, or empty when the
	// URL names no known service.
	Service string `json:"service,omitempty"`

	// SiteDomain is the https://<alnum>.su base matched from the URL,
	// used to resolve relative post links. Empty when the URL is not on
	// that domain shape.
	SiteDomain string `json:"site_domain,omitempty"`

	// TotalPosts is the count parsed from the pagination summary, or
	// TotalPostsUnknown when the summary element was absent.
	TotalPosts int `json:"total_posts"`

	// ProfilePictureURL and BannerURL are extracted from the landing page
	// when present. Bodies are fetched separately via media.ProfileCache.
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	BannerURL         string `json:"banner_url,omitempty"`
}
