package party

import (
	"context"
	"testing"

	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/config"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/media"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/types"
)

// newTestModule builds the module over the stub with zero backoff windows so
// retry paths finish instantly. pageSize shrinks the fixtures for multi-page
// scenarios.
func newTestModule(stub *stubFetcher, pageSize int) *Module {
	cfg := config.Default()
	cfg.Retry = config.Retry{MaxAttempts: 2}
	cfg.Scraper.PageSize = pageSize
	return New(cfg, stub, testLogger())
}

func attachment(name string) *types.Attachment {
	return &types.Attachment{
		URL:  "https://c1.kemono.su/data/" + name,
		Name: name,
		Type: media.Classify(name),
	}
}

func subpostsWithAttachments() []*types.Post {
	a := &types.Post{ID: "1", URL: "https://kemono.su/patreon/user/123/post/1"}
	a.Attachments = []*types.Attachment{attachment("clip.mp4"), attachment("art.png")}
	b := &types.Post{ID: "2", URL: "https://kemono.su/patreon/user/123/post/2"}
	b.Attachments = []*types.Attachment{attachment("notes.zip"), attachment("extra.psd")}
	return []*types.Post{a, b}
}

func TestScrapeSubpostsSinglePage(t *testing.T) {
	stub := newStubFetcher()
	stub.page(creatorURL, creatorPage("Example Artist", 2))
	stub.page(creatorURL+"?o=0", listingPage(
		"/patreon/user/123/post/1",
		"/patreon/user/123/post/2",
	))
	stub.page("https://kemono.su/patreon/user/123/post/1", simplePost("First"))
	stub.page("https://kemono.su/patreon/user/123/post/2", simplePost("Second"))

	m := newTestModule(stub, 50)
	data, err := m.Scrape(context.Background(), &types.ScrapeParameters{
		URL:              creatorURL,
		RequestedContent: []types.ContentKind{types.ContentSubposts},
		ScrapeInstances:  types.UnlimitedInstances,
	})
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}

	if len(data.Content) != 2 {
		t.Fatalf("len(Content) = %d, want 2", len(data.Content))
	}
	for i, rec := range data.Content {
		if rec.Kind != types.ContentSubposts {
			t.Errorf("record %d kind = %s", i, rec.Kind)
		}
		if rec.Post == nil || rec.Attachment != nil {
			t.Errorf("record %d must carry a post only", i)
		}
		if rec.SourceURL != rec.Post.URL {
			t.Errorf("record %d source = %q, post URL = %q", i, rec.SourceURL, rec.Post.URL)
		}
	}
	if data.Content[0].Post.Title != "First" || data.Content[1].Post.Title != "Second" {
		t.Errorf("post order lost: %q, %q",
			data.Content[0].Post.Title, data.Content[1].Post.Title)
	}
}

func TestScrapeMultiPageWalksPlan(t *testing.T) {
	// pageSize 2, 5 posts total: two full pages then a leftover page of 1.
	stub := newStubFetcher()
	stub.page(creatorURL, creatorPage("Example Artist", 5))
	stub.page(creatorURL+"?o=0", listingPage("/patreon/user/123/post/1", "/patreon/user/123/post/2"))
	stub.page(creatorURL+"?o=2", listingPage("/patreon/user/123/post/3", "/patreon/user/123/post/4"))
	stub.page(creatorURL+"?o=4", listingPage("/patreon/user/123/post/5", "/patreon/user/123/post/6"))
	for _, id := range []string{"1", "2", "3", "4", "5", "6"} {
		stub.page("https://kemono.su/patreon/user/123/post/"+id, simplePost("Post "+id))
	}

	m := newTestModule(stub, 2)
	data, err := m.Scrape(context.Background(), &types.ScrapeParameters{
		URL:              creatorURL,
		RequestedContent: []types.ContentKind{types.ContentSubposts},
		ScrapeInstances:  types.UnlimitedInstances,
	})
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}

	// The leftover page is limited to 1 even though it lists 2 entries.
	if len(data.Content) != 5 {
		t.Fatalf("len(Content) = %d, want 5", len(data.Content))
	}
	if got := stub.callCount("https://kemono.su/patreon/user/123/post/6"); got != 0 {
		t.Errorf("post past the leftover cap fetched %d times, want 0", got)
	}
}

func TestScrapeAbortsOnPageFailure(t *testing.T) {
	// Page 2 of 3 dies; everything scraped so far is discarded and the last
	// page is never requested.
	stub := newStubFetcher()
	stub.page(creatorURL, creatorPage("Example Artist", 6))
	stub.page(creatorURL+"?o=0", listingPage("/patreon/user/123/post/1", "/patreon/user/123/post/2"))
	stub.status(creatorURL+"?o=2", 500)
	stub.page("https://kemono.su/patreon/user/123/post/1", simplePost("First"))
	stub.page("https://kemono.su/patreon/user/123/post/2", simplePost("Second"))

	m := newTestModule(stub, 2)
	data, err := m.Scrape(context.Background(), &types.ScrapeParameters{
		URL:              creatorURL,
		RequestedContent: []types.ContentKind{types.ContentSubposts},
		ScrapeInstances:  types.UnlimitedInstances,
	})
	if err == nil {
		t.Fatal("expected error when a page fails")
	}
	if data != nil {
		t.Errorf("data = %+v, want nil on abort", data)
	}
	if got := stub.callCount(creatorURL + "?o=4"); got != 0 {
		t.Errorf("page past the failure fetched %d times, want 0", got)
	}
}

func TestScrapeCreatorResolutionFailureAborts(t *testing.T) {
	stub := newStubFetcher()
	stub.status(creatorURL, 503)

	m := newTestModule(stub, 50)
	_, err := m.Scrape(context.Background(), &types.ScrapeParameters{
		URL:              creatorURL,
		RequestedContent: []types.ContentKind{types.ContentSubposts},
		ScrapeInstances:  types.UnlimitedInstances,
	})
	if err == nil {
		t.Fatal("expected error when the landing page fails")
	}
	// Nothing beyond the landing page was requested.
	if len(stub.calls) != 1 {
		t.Errorf("fetches = %v, want landing page only", stub.calls)
	}
}

func TestScrapeUnknownTotalAssumesSinglePage(t *testing.T) {
	stub := newStubFetcher()
	stub.page(creatorURL, creatorPage("Example Artist", -1))
	stub.page(creatorURL+"?o=0", listingPage("/patreon/user/123/post/1"))
	stub.page("https://kemono.su/patreon/user/123/post/1", simplePost("Only"))

	m := newTestModule(stub, 50)
	data, err := m.Scrape(context.Background(), &types.ScrapeParameters{
		URL:              creatorURL,
		RequestedContent: []types.ContentKind{types.ContentSubposts},
		ScrapeInstances:  types.UnlimitedInstances,
	})
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(data.Content) != 1 {
		t.Fatalf("len(Content) = %d, want 1", len(data.Content))
	}
	if got := stub.callCount(creatorURL + "?o=50"); got != 0 {
		t.Errorf("second page fetched %d times, want 0", got)
	}
}

func TestScrapeQuotaBoundsSubposts(t *testing.T) {
	stub := newStubFetcher()
	stub.page(creatorURL, creatorPage("Example Artist", 150))
	stub.page(creatorURL+"?o=0", listingPage(
		"/patreon/user/123/post/1",
		"/patreon/user/123/post/2",
		"/patreon/user/123/post/3",
	))
	stub.page("https://kemono.su/patreon/user/123/post/1", simplePost("First"))
	stub.page("https://kemono.su/patreon/user/123/post/2", simplePost("Second"))

	m := newTestModule(stub, 50)
	data, err := m.Scrape(context.Background(), &types.ScrapeParameters{
		URL:              creatorURL,
		RequestedContent: []types.ContentKind{types.ContentSubposts},
		ScrapeInstances:  2,
	})
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(data.Content) != 2 {
		t.Fatalf("len(Content) = %d, want 2", len(data.Content))
	}
	if got := stub.callCount("https://kemono.su/patreon/user/123/post/3"); got != 0 {
		t.Errorf("post past the quota fetched %d times, want 0", got)
	}
}

func TestScrapeRoutesAttachmentKinds(t *testing.T) {
	stub := newStubFetcher()
	stub.page(creatorURL, creatorPage("Example Artist", 150))

	m := newTestModule(stub, 50)
	data, err := m.Scrape(context.Background(), &types.ScrapeParameters{
		URL:              creatorURL,
		RequestedContent: []types.ContentKind{types.ContentImages},
		ScrapeInstances:  types.UnlimitedInstances,
		Subposts:         subpostsWithAttachments(),
	})
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}

	if len(data.Content) != 1 {
		t.Fatalf("len(Content) = %d, want 1 image", len(data.Content))
	}
	rec := data.Content[0]
	if rec.Kind != types.ContentImages || rec.Attachment == nil || rec.Post != nil {
		t.Errorf("record = %+v", rec)
	}
	if rec.Attachment.Name != "art.png" {
		t.Errorf("attachment = %q, want art.png", rec.Attachment.Name)
	}
	if rec.SourceURL != rec.Attachment.URL {
		t.Errorf("SourceURL = %q", rec.SourceURL)
	}
	// Routing never refetches: only the landing page was requested.
	if len(stub.calls) != 1 {
		t.Errorf("fetches = %v, want landing page only", stub.calls)
	}
}

func TestScrapeAttachmentQuotaSharedAcrossPosts(t *testing.T) {
	// Two generic files live on different posts; a quota of 1 takes the
	// first in post order and stops.
	stub := newStubFetcher()
	stub.page(creatorURL, creatorPage("Example Artist", 150))

	m := newTestModule(stub, 50)
	data, err := m.Scrape(context.Background(), &types.ScrapeParameters{
		URL:              creatorURL,
		RequestedContent: []types.ContentKind{types.ContentFiles},
		ScrapeInstances:  1,
		Subposts:         subpostsWithAttachments(),
	})
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(data.Content) != 1 {
		t.Fatalf("len(Content) = %d, want 1", len(data.Content))
	}
	if data.Content[0].Attachment.Name != "notes.zip" {
		t.Errorf("attachment = %q, want notes.zip", data.Content[0].Attachment.Name)
	}
}

func TestScrapeMixedKindsBucketOrder(t *testing.T) {
	stub := newStubFetcher()
	stub.page(creatorURL, creatorPage("Example Artist", 150))

	m := newTestModule(stub, 50)
	data, err := m.Scrape(context.Background(), &types.ScrapeParameters{
		URL:              creatorURL,
		RequestedContent: []types.ContentKind{types.ContentFiles, types.ContentVideos},
		ScrapeInstances:  types.UnlimitedInstances,
		Subposts:         subpostsWithAttachments(),
	})
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}

	// Kinds are routed in fixed order: videos before files regardless of
	// the requested order.
	if len(data.Content) != 3 {
		t.Fatalf("len(Content) = %d, want 3", len(data.Content))
	}
	if data.Content[0].Kind != types.ContentVideos {
		t.Errorf("first record kind = %s, want videos", data.Content[0].Kind)
	}
	if data.Content[1].Kind != types.ContentFiles || data.Content[2].Kind != types.ContentFiles {
		t.Errorf("file records = %s, %s", data.Content[1].Kind, data.Content[2].Kind)
	}
}

func TestScrapeRejectsBadParameters(t *testing.T) {
	stub := newStubFetcher()
	m := newTestModule(stub, 50)

	_, err := m.Scrape(context.Background(), &types.ScrapeParameters{
		URL:             creatorURL,
		ScrapeInstances: types.UnlimitedInstances,
	})
	if err == nil {
		t.Error("expected error for empty requested kinds")
	}

	_, err = m.Scrape(context.Background(), &types.ScrapeParameters{
		URL:              creatorURL,
		RequestedContent: []types.ContentKind{types.ContentSubposts},
		ScrapeInstances:  0,
	})
	if err == nil {
		t.Error("expected error for zero quota")
	}

	if len(stub.calls) != 0 {
		t.Errorf("fetches = %v, want none before validation passes", stub.calls)
	}
}
