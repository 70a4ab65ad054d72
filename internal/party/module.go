package party

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/config"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/fetcher"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/types"
)

// Module scrapes kemono/coomer party sites. It exposes the capability
// descriptor the host registry dispatches on, plus the single Scrape entry
// point.
type Module struct {
	fetcher  fetcher.Fetcher
	listing  *ListingScraper
	policy   fetcher.Policy
	pageSize int
	logger   *slog.Logger
}

// New creates the party module.
func New(cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger) *Module {
	policy := fetcher.PolicyFromConfig(&cfg.Retry)
	log := logger.With("module", "party")
	return &Module{
		fetcher:  f,
		listing:  NewListingScraper(f, policy, cfg.Scraper.PageSize, log),
		policy:   policy,
		pageSize: cfg.Scraper.PageSize,
		logger:   log,
	}
}

// Name identifies the module to the host.
func (m *Module) Name() string { return "party" }

// Version is the module version reported to the host.
func (m *Module) Version() string { return config.Version }

// Sites lists the site URL prefixes this module can scrape.
func (m *Module) Sites() []string {
	return []string{
		"https://kemono.su",
		"https://coomer.su",
	}
}

// Contents lists the content kinds this module can deliver. Anything else
// is "other" and unsupported.
func (m *Module) Contents() []types.ContentKind {
	return []types.ContentKind{
		types.ContentSubposts,
		types.ContentVideos,
		types.ContentImages,
		types.ContentFiles,
	}
}

// Scrape is the module's sole entry point. It resolves the creator, scrapes
// subposts when requested, and routes attachment kinds out of the
// caller-supplied subposts. A nil error with a populated (possibly empty)
// ModuleData is success; any error is total failure with no partial output.
func (m *Module) Scrape(ctx context.Context, params *types.ScrapeParameters) (*types.ModuleData, error) {
	if len(params.RequestedContent) == 0 {
		return nil, fmt.Errorf("requested content kinds must be non-empty")
	}
	if params.ScrapeInstances != types.UnlimitedInstances && params.ScrapeInstances < 1 {
		return nil, fmt.Errorf("scrape instances must be -1 or positive, got %d", params.ScrapeInstances)
	}

	creator, err := ResolveCreator(ctx, m.fetcher, params.URL, m.logger)
	if err != nil {
		m.logger.Error("creator resolution failed", "url", params.URL, "error", err)
		return nil, err
	}
	m.logger.Info("creator resolved", "name", creator.Name, "service", creator.Service)

	data := &types.ModuleData{}

	if params.Wants(types.ContentSubposts) {
		posts, err := m.scrapeSubposts(ctx, creator, params.ScrapeInstances)
		if err != nil {
			return nil, err
		}
		for _, post := range posts {
			data.Append(types.ProcessedScrapeData{
				Kind:      types.ContentSubposts,
				SourceURL: post.URL,
				Post:      post,
			})
		}
	}

	for _, kind := range []types.ContentKind{types.ContentVideos, types.ContentImages, types.ContentFiles} {
		if !params.Wants(kind) {
			continue
		}
		routeAttachments(data, params.Subposts, kind, params.ScrapeInstances)
	}

	return data, nil
}

// scrapeSubposts runs the page plan. Subposts are complete or absent, never
// partial: the first page failure aborts the whole set, discarding prior
// pages.
func (m *Module) scrapeSubposts(ctx context.Context, creator *types.Creator, quota int) ([]*types.Post, error) {
	// Without a pagination summary the total is unknown; assume a single
	// page sized by the quota alone.
	if creator.TotalPosts == types.TotalPostsUnknown {
		cap := m.pageSize
		if quota != types.UnlimitedInstances && quota < cap {
			cap = quota
		}
		m.logger.Debug("total posts unknown, assuming single page", "cap", cap)
		return m.listing.ScrapePage(ctx, creator, 0, cap)
	}

	plan, err := PlanPages(creator.TotalPosts, quota, m.pageSize)
	if err != nil {
		return nil, err
	}

	if plan.SinglePage {
		m.logger.Debug("scraping single page", "cap", plan.Effective)
		posts, err := m.listing.ScrapePage(ctx, creator, 0, plan.Effective)
		if err != nil {
			m.logger.Error("single-page scrape failed, aborting", "error", err)
			return nil, err
		}
		return posts, nil
	}

	var posts []*types.Post
	for i := 0; i < plan.Pages; i++ {
		m.logger.Info("scraping page", "page", i+1, "pages", plan.Pages)
		pagePosts, err := m.listing.ScrapePage(ctx, creator, i, m.pageSize)
		if err != nil {
			m.logger.Error("page scrape failed, aborting", "page", i+1, "error", err)
			return nil, err
		}
		posts = append(posts, pagePosts...)
	}

	if plan.Leftover > 0 {
		m.logger.Info("scraping final page", "posts", plan.Leftover)
		leftover, err := m.listing.ScrapePage(ctx, creator, plan.Pages, plan.Leftover)
		if err != nil {
			m.logger.Error("final page scrape failed, aborting", "error", err)
			return nil, err
		}
		posts = append(posts, leftover...)
	}

	return posts, nil
}

// routeAttachments scans the caller-supplied subposts and emits attachments
// of the matching kind. The quota counter is shared across posts; scanning
// stops the moment it is reached.
func routeAttachments(data *types.ModuleData, subposts []*types.Post, kind types.ContentKind, quota int) {
	count := 0
	for _, post := range subposts {
		for _, att := range post.Attachments {
			if att.Type.Kind() != kind {
				continue
			}
			if quota != types.UnlimitedInstances && count >= quota {
				return
			}
			data.Append(types.ProcessedScrapeData{
				Kind:       kind,
				SourceURL:  att.URL,
				Attachment: att,
			})
			count++
		}
	}
}
