package types

// ContentKind identifies the category of content a caller requests and the
// category a delivered record belongs to.
type ContentKind string

const (
	ContentSubposts ContentKind = "subposts"
	ContentVideos   ContentKind = "videos"
	ContentImages   ContentKind = "images"
	ContentFiles    ContentKind = "files"

	// ContentOther covers anything a module does not explicitly support.
	ContentOther ContentKind = "other"
)

// AttachmentType classifies an attachment by its filename.
type AttachmentType string

const (
	AttachmentVideo       AttachmentType = "video"
	AttachmentImage       AttachmentType = "image"
	AttachmentGenericFile AttachmentType = "file"
)

// Kind maps an attachment classification to the content kind it is delivered
// under when a caller asks for typed buckets.
func (t AttachmentType) Kind() ContentKind {
	switch t {
	case AttachmentVideo:
		return ContentVideos
	case AttachmentImage:
		return ContentImages
	case AttachmentGenericFile:
		return ContentFiles
	default:
		return ContentOther
	}
}

// ProcessedScrapeData is the only shape handed back to callers. Exactly one
// of Post or Attachment is set, selected by Kind: ContentSubposts carries a
// Post, every other kind carries an Attachment.
type ProcessedScrapeData struct {
	Kind       ContentKind `json:"kind"`
	SourceURL  string      `json:"source_url"`
	Post       *Post       `json:"post,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// ModuleData is the accumulated output of one scrape call.
type ModuleData struct {
	Content []ProcessedScrapeData `json:"content"`
}

// Append adds a record to the output bag.
func (d *ModuleData) Append(rec ProcessedScrapeData) {
	d.Content = append(d.Content, rec)
}

// UnlimitedInstances is the quota sentinel meaning "emit every match".
const UnlimitedInstances = -1

// ScrapeParameters is the caller-owned input to a scrape.
type ScrapeParameters struct {
	// URL is the creator landing page to scrape.
	URL string

	// RequestedContent is the non-empty set of kinds the caller wants.
	RequestedContent []ContentKind

	// ScrapeInstances bounds the number of emitted items per requested
	// kind. UnlimitedInstances (-1) lifts the bound.
	ScrapeInstances int

	// Subposts carries posts produced by a prior ContentSubposts call.
	// Attachment-kind requests are routed from these; no network fetch
	// happens for them.
	Subposts []*Post
}

// Wants reports whether the given kind was requested.
func (p *ScrapeParameters) Wants(kind ContentKind) bool {
	for _, k := range p.RequestedContent {
		if k == kind {
			return true
		}
	}
	return false
}
