package party

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/fetcher"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/types"
)

// ListingScraper fetches one listing page and drives the PostFetcher for
// each entry on it.
type ListingScraper struct {
	fetcher  fetcher.Fetcher
	policy   fetcher.Policy
	posts    *PostFetcher
	pageSize int
	logger   *slog.Logger
}

// NewListingScraper creates a ListingScraper. pageSize is the upstream
// listing convention (50).
func NewListingScraper(f fetcher.Fetcher, policy fetcher.Policy, pageSize int, logger *slog.Logger) *ListingScraper {
	return &ListingScraper{
		fetcher:  f,
		policy:   policy,
		posts:    NewPostFetcher(f, policy, logger),
		pageSize: pageSize,
		logger:   logger.With("component", "listing_scraper"),
	}
}

// ScrapePage fetches listing page pageIndex and extracts up to postLimit
// posts from it. The limit governs how many listing entries are considered,
// not how many succeed; entries whose post fetch is skipped still count.
//
// HTTP 429 on the listing fetch is waited out indefinitely; any other
// failure exhausts the bounded retry budget and then surfaces as an error,
// which the caller must treat as fatal for the whole multi-page scrape.
func (ls *ListingScraper) ScrapePage(ctx context.Context, creator *types.Creator, pageIndex, postLimit int) ([]*types.Post, error) {
	pageURL := fmt.Sprintf("%s?o=%d", creator.URL, pageIndex*ls.pageSize)
	req, err := types.NewRequest(pageURL)
	if err != nil {
		return nil, err
	}
	req.Tag = "listing"

	resp, err := fetcher.FetchWithRetry(ctx, ls.fetcher, req, ls.policy, ls.logger)
	if err != nil {
		return nil, fmt.Errorf("listing page %d: %w", pageIndex, err)
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: pageURL, Err: err}
	}

	posts := make([]*types.Post, 0, postLimit)

	container := doc.Find("div.card-list__items").First()
	if container.Length() == 0 {
		// No posts container on this page; an empty creator renders
		// the listing without one.
		ls.logger.Debug("listing has no posts container", "url", pageURL)
		return posts, nil
	}

	considered := 0
	entries := container.Children()
	for i := range entries.Nodes {
		if considered >= postLimit {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		considered++

		entry := entries.Eq(i)
		href, ok := entry.ChildrenFiltered("a").First().Attr("href")
		if !ok || href == "" {
			ls.logger.Debug("listing entry without post link", "url", pageURL, "index", i)
			continue
		}

		post, err := ls.posts.FetchPost(ctx, creator, ls.resolvePostURL(creator, href))
		if err != nil {
			if types.IsSkip(err) {
				continue
			}
			return nil, err
		}
		posts = append(posts, post)
	}

	ls.logger.Info("listing page scraped",
		"page", pageIndex,
		"considered", considered,
		"posts", len(posts),
	)
	return posts, nil
}

// resolvePostURL makes a listing entry's href absolute against the
// creator's site domain.
func (ls *ListingScraper) resolvePostURL(creator *types.Creator, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return creator.SiteDomain + href
}
