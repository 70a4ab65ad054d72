package party

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/fetcher"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/media"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/types"
)

var (
	postIDPattern = regexp.MustCompile(`/post/(.*)`)
	nonDigits     = regexp.MustCompile(`\D`)
)

// PostFetcher turns a post-detail page into a Post. Fetches run under the
// bounded retry policy; a post that cannot be fetched or parsed is skipped
// (SkipError), never fatal to the enclosing scrape.
type PostFetcher struct {
	fetcher fetcher.Fetcher
	policy  fetcher.Policy
	logger  *slog.Logger
}

// NewPostFetcher creates a PostFetcher.
func NewPostFetcher(f fetcher.Fetcher, policy fetcher.Policy, logger *slog.Logger) *PostFetcher {
	return &PostFetcher{
		fetcher: f,
		policy:  policy,
		logger:  logger.With("component", "post_fetcher"),
	}
}

// FetchPost fetches and parses one post-detail page. The returned error is a
// SkipError when this single post should be dropped; any other error (e.g.
// context cancellation) must stop the enclosing scrape.
func (pf *PostFetcher) FetchPost(ctx context.Context, creator *types.Creator, postURL string) (*types.Post, error) {
	req, err := types.NewRequest(postURL)
	if err != nil {
		return nil, &types.SkipError{Reason: "malformed post URL", Err: err}
	}
	req.Tag = "post"

	resp, err := fetcher.FetchWithRetry(ctx, pf.fetcher, req, pf.policy, pf.logger)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		pf.logger.Warn("post fetch abandoned", "url", postURL, "error", err)
		return nil, &types.SkipError{Reason: "post fetch failed", Err: err}
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, &types.SkipError{Reason: "post markup unreadable", Err: err}
	}

	post, err := pf.parsePost(doc, creator, postURL)
	if err != nil {
		pf.logger.Warn("post skipped", "url", postURL, "error", err)
		return nil, err
	}
	return post, nil
}

// parsePost extracts the full Post entity from a post-detail document.
// Missing title or date elements skip the post rather than crashing the
// scrape; optional sections (description, files, attachments) may be absent.
func (pf *PostFetcher) parsePost(doc *goquery.Document, creator *types.Creator, postURL string) (*types.Post, error) {
	post := &types.Post{
		URL: postURL,
		Author: types.Author{
			Username:       creator.Name,
			URL:            creator.URL,
			ProfilePicture: creator.ProfilePictureURL,
		},
	}

	id, err := extractPostID(postURL)
	if err != nil {
		return nil, &types.SkipError{Reason: "post id unparseable", Err: err}
	}
	post.ID = id

	title, err := extractTitle(doc, id)
	if err != nil {
		return nil, err
	}
	post.Title = title

	uploadDate, err := extractUploadDate(doc)
	if err != nil {
		return nil, err
	}
	post.UploadDate = uploadDate

	post.Description = extractDescription(doc)

	// Document order: files section first, then the attachments list.
	post.Attachments = append(post.Attachments,
		extractAttachments(doc.Find("div.post__files").First(), post)...)
	post.Attachments = append(post.Attachments,
		extractAttachments(doc.Find("ul.post__attachments").First(), post)...)

	post.Comments = pf.extractComments(doc, post)

	return post, nil
}

// extractPostID takes the canonical URL path segment after /post/, strips
// any non-digit characters, and normalizes through an integer round-trip.
// Guards against stray punctuation in the URL.
func extractPostID(postURL string) (string, error) {
	m := postIDPattern.FindStringSubmatch(postURL)
	if m == nil {
		return "", &types.ParseError{URL: postURL, Selector: "/post/", Err: types.ErrInvalidURL}
	}
	digits := nonDigits.ReplaceAllString(m[1], "")
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return "", &types.ParseError{URL: postURL, Selector: "/post/", Err: err}
	}
	return strconv.FormatInt(n, 10), nil
}

// extractTitle reads the title heading's label span. The literal "Untitled"
// is rewritten with the post id so downstream names stay unique.
func extractTitle(doc *goquery.Document, postID string) (string, error) {
	heading := doc.Find("h1.post__title").First()
	if heading.Length() == 0 {
		return "", &types.SkipError{Reason: "post title heading missing"}
	}
	span := heading.ChildrenFiltered("span").First()
	if span.Length() == 0 {
		return "", &types.SkipError{Reason: "post title label missing"}
	}

	// goquery decodes HTML entities when reading text.
	title := span.Text()
	if title == "Untitled" {
		title = "Untitled (Post ID " + postID + ")"
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &types.SkipError{Reason: "post title empty"}
	}
	return title, nil
}

// extractUploadDate isolates the publish container's own text from its
// nested sub-element and parses the fixed-format timestamp.
func extractUploadDate(doc *goquery.Document) (time.Time, error) {
	published := doc.Find("div.post__published").First()
	if published.Length() == 0 || len(published.Nodes) == 0 {
		return time.Time{}, &types.SkipError{Reason: "post publish date missing"}
	}

	raw := textNodes(published.Nodes[0])
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "\n", ""))

	t, err := time.Parse(types.TimeLayout, raw)
	if err != nil {
		return time.Time{}, &types.SkipError{Reason: "post publish date unparseable", Err: err}
	}
	return t, nil
}

// extractDescription joins the content container's direct text with each
// child element's text, newline-separated. An absent container means no
// description, not an error.
func extractDescription(doc *goquery.Document) string {
	content := doc.Find("div.post__content").First()
	if content.Length() == 0 || len(content.Nodes) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(textNodes(content.Nodes[0]))
	content.Children().Each(func(_ int, child *goquery.Selection) {
		b.WriteString(child.Text())
		b.WriteString("\n")
	})
	return strings.TrimSpace(b.String())
}

// extractAttachments collects every element in the container carrying both
// an href and a download attribute, in document order. An empty selection
// yields no attachments.
func extractAttachments(container *goquery.Selection, post *types.Post) []*types.Attachment {
	if container.Length() == 0 {
		return nil
	}

	var atts []*types.Attachment
	container.Find("[href][download]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		download, _ := s.Attr("download")
		name := media.DecodeDownloadName(download)
		atts = append(atts, &types.Attachment{
			URL:    href,
			Name:   name,
			Type:   media.Classify(name),
			Parent: post,
		})
	})
	return atts
}

// extractComments walks every comment article. A comment missing any of its
// six required pieces (header/body/footer sections; author link, body
// paragraph, footer timestamp) is dropped on its own; siblings survive.
func (pf *PostFetcher) extractComments(doc *goquery.Document, post *types.Post) []*types.Comment {
	var comments []*types.Comment

	doc.Find("article.comment").Each(func(i int, article *goquery.Selection) {
		header := article.ChildrenFiltered("header.comment__header").First()
		body := article.ChildrenFiltered("section.comment__body").First()
		footer := article.ChildrenFiltered("footer.comment__footer").First()
		if header.Length() == 0 || body.Length() == 0 || footer.Length() == 0 {
			pf.logger.Debug("comment skipped, section missing", "post", post.ID, "index", i)
			return
		}

		author := header.Find("a").First()
		paragraph := body.Find("p").First()
		timestamp := footer.Find("time").First()
		if author.Length() == 0 || paragraph.Length() == 0 || timestamp.Length() == 0 {
			pf.logger.Debug("comment skipped, field missing", "post", post.ID, "index", i)
			return
		}

		raw := strings.TrimSpace(strings.ReplaceAll(timestamp.Text(), "\n", ""))
		postTime, err := time.Parse(types.TimeLayout, raw)
		if err != nil {
			pf.logger.Debug("comment skipped, bad timestamp", "post", post.ID, "index", i, "error", err)
			return
		}

		comments = append(comments, &types.Comment{
			Author:   types.Author{Username: strings.TrimSpace(author.Text())},
			Content:  paragraph.Text(),
			PostTime: postTime,
			Parent:   post,
		})
	})

	return comments
}
