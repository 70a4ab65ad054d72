package party

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/fetcher"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/types"
)

var siteDomainPattern = regexp.MustCompile(`https://[A-Za-z0-9]+\.su`)

// totalPostsPrefix is the fixed text preceding the post count in the
// listing page's pagination summary.
const totalPostsPrefix = "Showing 1 - 50 of "

// paginationSummaryXPath is where the party sites place the pagination
// summary on a creator landing page.
const paginationSummaryXPath = "/html/body/div[2]/main/section/div[1]/small"

// ResolveCreator fetches the creator landing page once and builds the
// read-only profile used for the rest of the scrape. Any transport error or
// non-2xx response aborts resolution without touching the markup; the caller
// must not proceed with a scrape after a resolution failure.
func ResolveCreator(ctx context.Context, f fetcher.Fetcher, rawURL string, logger *slog.Logger) (*types.Creator, error) {
	req, err := types.NewRequest(rawURL)
	if err != nil {
		return nil, err
	}
	req.Tag = "landing"

	resp, err := f.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &types.FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        types.ErrEmptyResponse,
		}
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: rawURL, Err: err}
	}

	creator := &types.Creator{
		URL:        rawURL,
		TotalPosts: types.TotalPostsUnknown,
	}

	// Display name: first span carrying the itemprop marker.
	creator.Name = strings.TrimSpace(doc.Find("span[itemprop]").First().Text())

	// Archive service: first table entry found in the URL. Table order is
	// the tie-break, though party URLs name exactly one service.
	for _, svc := range types.KnownServices {
		if strings.Contains(rawURL, svc) {
			creator.Service = svc
			break
		}
	}

	if m := siteDomainPattern.FindString(rawURL); m != "" {
		creator.SiteDomain = m
	}

	creator.TotalPosts = extractTotalPosts(resp.Body)

	creator.ProfilePictureURL = profileImageURL(doc, "icons")
	creator.BannerURL = profileImageURL(doc, "banners")

	logger.Debug("creator resolved",
		"url", rawURL,
		"name", creator.Name,
		"service", creator.Service,
		"total_posts", creator.TotalPosts,
	)

	return creator, nil
}

// extractTotalPosts reads the pagination summary. The summary sits at a
// fixed position in the document; a contains() lookup backs it up for pages
// with extra wrapper elements. An absent summary leaves the total unknown
// and pagination falls back to a single-page assumption.
func extractTotalPosts(body []byte) int {
	root, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return types.TotalPostsUnknown
	}

	node := htmlquery.FindOne(root, paginationSummaryXPath)
	if node == nil {
		node = htmlquery.FindOne(root, `//small[contains(text(), "Showing 1 - ")]`)
	}
	if node == nil {
		return types.TotalPostsUnknown
	}

	return parseTotalPosts(htmlquery.InnerText(node))
}

func parseTotalPosts(text string) int {
	text = strings.TrimSpace(strings.ReplaceAll(text, totalPostsPrefix, ""))
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return types.TotalPostsUnknown
	}
	return n
}

// profileImageURL finds the fancy-image img whose src contains the marker
// ("icons" for the profile picture, "banners" for the banner). The sites
// serve these as protocol-relative URLs.
func profileImageURL(doc *goquery.Document, marker string) string {
	var found string
	doc.Find("img.fancy-image__image").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok || !strings.Contains(src, marker) {
			return true
		}
		found = src
		return false
	})
	if found == "" {
		return ""
	}
	if strings.HasPrefix(found, "//") {
		return "https:" + found
	}
	return found
}

// textNodes collects the text of a node's direct text children, skipping
// element children. Shared by the post parser for date and description
// isolation.
func textNodes(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
