package types

import "time"

// TimeLayout is the fixed timestamp format used on post and comment pages.
// Timestamps are timezone-naive; they are parsed as-is.
const TimeLayout = "2006-01-02 15:04:05"

// Author is a snapshot of a creator's display identity at scrape time. It is
// embedded per post, never shared between posts.
type Author struct {
	Username       string `json:"username"`
	URL            string `json:"url,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// Post is a fully-materialized post-detail page.
//
// Posts are built incrementally during extraction and never mutated after
// being handed to the caller.
type Post struct {
	// ID is the numeric post identifier, derived from the canonical URL
	// path segment after /post/ with non-digit characters stripped.
	ID string `json:"id"`

	URL   string `json:"url"`
	Title string `json:"title"`

	// UploadDate is parsed with TimeLayout.
	UploadDate time.Time `json:"upload_date"`

	Description string `json:"description,omitempty"`

	Author Author `json:"author"`

	// Attachments preserves document order: files-section entries first,
	// then attachments-section entries.
	Attachments []*Attachment `json:"attachments,omitempty"`

	// Comments preserves document order.
	Comments []*Comment `json:"comments,omitempty"`
}

// Attachment is a downloadable file referenced by a post.
type Attachment struct {
	URL  string         `json:"url"`
	Name string         `json:"name"`
	Type AttachmentType `json:"type"`

	// Parent is a provenance back-reference, not an ownership edge.
	Parent *Post `json:"-"`

	// Binary holds the attachment body once materialized. It stays nil
	// during extraction and after a failed body fetch; the metadata above
	// survives either way.
	Binary []byte `json:"-"`
}

// Comment is a single comment on a post. Comments carry the author username
// only; the party sites expose no further commenter metadata.
type Comment struct {
	Author   Author    `json:"author"`
	Content  string    `json:"content"`
	PostTime time.Time `json:"post_time"`

	// Parent is a provenance back-reference.
	Parent *Post `json:"-"`
}
